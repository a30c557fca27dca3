package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"loaddocs/internal/domain"
	"loaddocs/internal/extract"
	"loaddocs/internal/service"
)

// MediaHandler handles document submission and processing endpoints.
type MediaHandler struct {
	docService service.DocumentService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(docService service.DocumentService) *MediaHandler {
	return &MediaHandler{docService: docService}
}

type submitMediaRequest struct {
	DriverID string `form:"driver_id" json:"driver_id" binding:"required"`
	LoadID   string `form:"load_id" json:"load_id"`
	DocType  string `form:"doc_type" json:"doc_type" binding:"required"`
	MediaURL string `form:"media_url" json:"media_url"`
}

// Submit handles POST /media. Accepts either a JSON/form body with media_url
// or a multipart upload with a file part.
func (h *MediaHandler) Submit(c *gin.Context) {
	var req submitMediaRequest
	if err := c.ShouldBind(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	driverID, err := uuid.Parse(req.DriverID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DRIVER_ID", "driver_id must be a UUID")
		return
	}
	docType, ok := domain.ParseDocumentType(strings.ToUpper(req.DocType))
	if !ok {
		RespondError(c, http.StatusBadRequest, "UNKNOWN_DOCUMENT_TYPE", "unknown document type: "+req.DocType)
		return
	}

	input := &service.CreateDocumentInput{
		DriverID: driverID,
		DocType:  docType,
		MediaURL: req.MediaURL,
	}
	if req.LoadID != "" {
		loadID, err := uuid.Parse(req.LoadID)
		if err != nil {
			RespondError(c, http.StatusBadRequest, "INVALID_LOAD_ID", "load_id must be a UUID")
			return
		}
		input.LoadID = &loadID
	}

	if file, header, err := c.Request.FormFile("file"); err == nil {
		defer func() { _ = file.Close() }()
		input.File = file
		input.Header = header
	} else if req.MediaURL == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_MEDIA", "provide either media_url or a file upload")
		return
	}

	doc, err := h.docService.Create(c.Request.Context(), input)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondAccepted(c, gin.H{
		"doc_id":         doc.ID,
		"status":         doc.Status,
		"processing_url": "/api/v1/media/" + doc.ID.String() + "/status",
	})
}

// Status handles GET /media/:id/status.
func (h *MediaHandler) Status(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DOC_ID", "document id must be a UUID")
		return
	}

	status, err := h.docService.GetStatus(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, status)
}

// Process handles POST /media/:id/process, running the pipeline synchronously.
func (h *MediaHandler) Process(c *gin.Context) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_DOC_ID", "document id must be a UUID")
		return
	}

	status, err := h.docService.Process(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	var confidence float64
	if status.Confidence != nil {
		confidence = *status.Confidence
	}
	RespondOK(c, gin.H{
		"doc_id":       status.DocID,
		"status":       status.Status,
		"confidence":   status.Confidence,
		"tier":         extract.TierFor(confidence),
		"verified":     status.Verified,
		"driver_flags": status.DriverFlags,
		"load_flags":   status.LoadFlags,
		"needs_retry":  status.NeedsRetry,
		"error":        status.Error,
	})
}
