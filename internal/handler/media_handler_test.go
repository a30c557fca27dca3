package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"loaddocs/internal/domain"
	"loaddocs/internal/service"
)

// mockDocumentService lives here rather than in mocks/ because the service
// package's own tests import mocks/.
type mockDocumentService struct {
	mock.Mock
}

func (m *mockDocumentService) Create(ctx context.Context, input *service.CreateDocumentInput) (*domain.Document, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *mockDocumentService) GetStatus(ctx context.Context, docID uuid.UUID) (*service.ProcessingStatus, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProcessingStatus), args.Error(1)
}

func (m *mockDocumentService) Process(ctx context.Context, docID uuid.UUID) (*service.ProcessingStatus, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ProcessingStatus), args.Error(1)
}

func (m *mockDocumentService) ProcessDocument(ctx context.Context, doc *domain.Document, maxAttempts int) {
	m.Called(ctx, doc, maxAttempts)
}

func newMediaRouter(svc service.DocumentService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewMediaHandler(svc)
	r.POST("/media", h.Submit)
	r.GET("/media/:id/status", h.Status)
	r.POST("/media/:id/process", h.Process)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSubmit_QueuesDocument(t *testing.T) {
	svc := new(mockDocumentService)
	driverID := uuid.New()
	docID := uuid.New()

	svc.On("Create", mock.Anything, mock.MatchedBy(func(in *service.CreateDocumentInput) bool {
		return in.DriverID == driverID && in.DocType == domain.DocTypeLicense && in.MediaURL != ""
	})).Return(&domain.Document{ID: docID, DriverID: driverID, Type: domain.DocTypeLicense, Status: domain.DocStatusQueued}, nil)

	w := doJSON(t, newMediaRouter(svc), http.MethodPost, "/media", gin.H{
		"driver_id": driverID.String(),
		"doc_type":  "LICENSE",
		"media_url": "https://example.com/cdl.jpg",
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, docID.String(), data["doc_id"])
	assert.Equal(t, "/api/v1/media/"+docID.String()+"/status", data["processing_url"])
}

func TestSubmit_LowercaseDocTypeAccepted(t *testing.T) {
	svc := new(mockDocumentService)
	driverID := uuid.New()
	svc.On("Create", mock.Anything, mock.MatchedBy(func(in *service.CreateDocumentInput) bool {
		return in.DocType == domain.DocTypeRateCon
	})).Return(&domain.Document{ID: uuid.New(), Status: domain.DocStatusQueued}, nil)

	w := doJSON(t, newMediaRouter(svc), http.MethodPost, "/media", gin.H{
		"driver_id": driverID.String(),
		"doc_type":  "rate_con",
		"media_url": "https://example.com/rc.pdf",
	})

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestSubmit_UnknownDocType(t *testing.T) {
	svc := new(mockDocumentService)

	w := doJSON(t, newMediaRouter(svc), http.MethodPost, "/media", gin.H{
		"driver_id": uuid.NewString(),
		"doc_type":  "W9",
		"media_url": "https://example.com/w9.pdf",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSubmit_MissingMedia(t *testing.T) {
	svc := new(mockDocumentService)

	w := doJSON(t, newMediaRouter(svc), http.MethodPost, "/media", gin.H{
		"driver_id": uuid.NewString(),
		"doc_type":  "LICENSE",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "MISSING_MEDIA", resp.Error.Code)
}

func TestSubmit_DriverNotFoundMapsTo404(t *testing.T) {
	svc := new(mockDocumentService)
	svc.On("Create", mock.Anything, mock.Anything).Return(nil, domain.ErrDriverNotFound)

	w := doJSON(t, newMediaRouter(svc), http.MethodPost, "/media", gin.H{
		"driver_id": uuid.NewString(),
		"doc_type":  "LICENSE",
		"media_url": "https://example.com/cdl.jpg",
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DRIVER_NOT_FOUND", resp.Error.Code)
}

func TestStatus_ReturnsConfidenceAndRetryHint(t *testing.T) {
	svc := new(mockDocumentService)
	docID := uuid.New()
	confidence := 0.55
	verified := false

	svc.On("GetStatus", mock.Anything, docID).Return(&service.ProcessingStatus{
		DocID:      docID,
		Status:     domain.DocStatusParsed,
		Confidence: &confidence,
		Verified:   &verified,
		NeedsRetry: true,
	}, nil)

	w := doJSON(t, newMediaRouter(svc), http.MethodGet, "/media/"+docID.String()+"/status", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.InDelta(t, 0.55, data["confidence"].(float64), 1e-9)
	assert.Equal(t, true, data["needs_retry"])
}

func TestStatus_InvalidID(t *testing.T) {
	w := doJSON(t, newMediaRouter(new(mockDocumentService)), http.MethodGet, "/media/not-a-uuid/status", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcess_ReturnsTier(t *testing.T) {
	svc := new(mockDocumentService)
	docID := uuid.New()
	confidence := 0.95
	verified := true

	svc.On("Process", mock.Anything, docID).Return(&service.ProcessingStatus{
		DocID:      docID,
		Status:     domain.DocStatusParsed,
		Confidence: &confidence,
		Verified:   &verified,
	}, nil)

	w := doJSON(t, newMediaRouter(svc), http.MethodPost, "/media/"+docID.String()+"/process", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "high", data["tier"])
	assert.Equal(t, true, data["verified"])
}
