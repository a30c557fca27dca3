package ocr

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loaddocs/internal/config"
)

func newTestClient(endpoint string) *Client {
	return NewClient(
		&config.OCRProviderConfig{
			Name:         "datalab",
			Endpoint:     endpoint,
			APIKey:       "test-key",
			Timeout:      5 * time.Second,
			MaxFileBytes: 1024 * 1024,
		},
		&config.OCRConfig{
			PollInterval: 5 * time.Millisecond,
			PollCeiling:  20 * time.Millisecond,
			MaxPolls:     10,
		},
	)
}

func TestClient_SubmitPollComplete(t *testing.T) {
	var polls atomic.Int32
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("X-Api-Key"))
		if polls.Add(1) < 3 {
			_, _ = w.Write([]byte(`{"status":"processing"}`))
			return
		}
		_, _ = w.Write([]byte(`{
			"status": "complete",
			"page_count": 1,
			"pages": [{"page": 1, "text_lines": [
				{"text": "NAME: John Smith", "confidence": 0.97},
				{"text": "DL: D12345678", "confidence": 0.95}
			]}]
		}`))
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, header, err := r.FormFile("file")
		require.NoError(t, err)
		assert.Equal(t, "cdl.pdf", header.Filename)
		_, _ = w.Write([]byte(`{"success": true, "request_id": "req-1", "request_check_url": "` + srv.URL + `/check"}`))
	})

	client := newTestClient(srv.URL + "/submit")
	result, err := client.Recognize(context.Background(), SubmitInput{
		FileBytes: []byte("%PDF-1.4 fake"),
		Filename:  "cdl.pdf",
		MimeType:  "application/pdf",
	})

	require.NoError(t, err)
	assert.Equal(t, "NAME: John Smith\nDL: D12345678", result.FullText)
	assert.InDelta(t, 0.96, result.AverageConfidence, 1e-9)
	assert.Equal(t, int32(3), polls.Load())
}

func TestClient_ValidationRejectsBeforeNetwork(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	t.Cleanup(srv.Close)
	client := newTestClient(srv.URL)

	cases := []struct {
		name  string
		input SubmitInput
	}{
		{"empty file", SubmitInput{FileBytes: nil, Filename: "a.pdf", MimeType: "application/pdf"}},
		{"unsupported mime", SubmitInput{FileBytes: []byte("x"), Filename: "a.txt", MimeType: "text/plain"}},
		{"too many languages", SubmitInput{FileBytes: []byte("x"), Filename: "a.pdf", MimeType: "application/pdf", Languages: []string{"en", "es", "fr", "de", "pt"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.Recognize(context.Background(), tc.input)
			assert.True(t, IsValidationError(err))
		})
	}
	assert.False(t, called)
}

func TestClient_RateLimitMapsToTypedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(srv.URL)
	_, err := client.Recognize(context.Background(), SubmitInput{
		FileBytes: []byte("%PDF-1.4"), Filename: "a.pdf", MimeType: "application/pdf",
	})

	var rlErr *RateLimitError
	require.ErrorAs(t, err, &rlErr)
	assert.Equal(t, 30*time.Second, rlErr.RetryAfter)
	assert.Equal(t, "datalab", rlErr.Provider)
}

func TestClient_AuthenticationFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	client := newTestClient(srv.URL)
	_, err := client.Recognize(context.Background(), SubmitInput{
		FileBytes: []byte("%PDF-1.4"), Filename: "a.pdf", MimeType: "application/pdf",
	})

	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestClient_PollExhaustionTimesOut(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"processing"}`))
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "request_check_url": "` + srv.URL + `/check"}`))
	})

	client := newTestClient(srv.URL + "/submit")
	_, err := client.Recognize(context.Background(), SubmitInput{
		FileBytes: []byte("%PDF-1.4"), Filename: "a.pdf", MimeType: "application/pdf",
	})

	var toErr *TimeoutError
	require.ErrorAs(t, err, &toErr)
	assert.Equal(t, 10, toErr.Attempts)
}

func TestClient_MidPollCancellationIsTypedTimeout(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/check", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"processing"}`))
	})
	mux.HandleFunc("/submit", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success": true, "request_check_url": "` + srv.URL + `/check"}`))
	})

	// Long poll interval so the cancellation lands in the inter-poll wait.
	client := NewClient(
		&config.OCRProviderConfig{Name: "datalab", Endpoint: srv.URL + "/submit", APIKey: "test-key"},
		&config.OCRConfig{PollInterval: 5 * time.Second, PollCeiling: 5 * time.Second, MaxPolls: 10},
	)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := client.Recognize(ctx, SubmitInput{
		FileBytes: []byte("%PDF-1.4"), Filename: "a.pdf", MimeType: "application/pdf",
	})

	var toErr *TimeoutError
	require.ErrorAs(t, err, &toErr)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "datalab", toErr.Provider)
}
