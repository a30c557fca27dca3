package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"loaddocs/internal/config"
)

// Polling defaults, overridable via config.
const (
	defaultPollInterval = 2 * time.Second
	defaultPollCeiling  = 10 * time.Second
	defaultMaxPolls     = 300
)

// SubmitInput carries a document's bytes and metadata into recognition.
type SubmitInput struct {
	FileBytes []byte
	Filename  string
	MimeType  string
	Languages []string
	MaxPages  int
}

// supportedMimeTypes lists the MIME types the providers accept.
var supportedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/png":       true,
	"image/jpeg":      true,
	"image/jpg":       true,
	"image/webp":      true,
	"image/gif":       true,
	"image/tiff":      true,
}

// Client submits documents to a recognition provider over multipart HTTP and
// polls the returned check URL until the provider completes.
//
// Recognize performs no retries of its own; retry and fallback policy belong
// to the caller.
type Client struct {
	provider     string
	endpoint     string
	apiKey       string
	maxFileBytes int64
	pollInterval time.Duration
	pollCeiling  time.Duration
	maxPolls     int
	httpClient   *http.Client
}

// NewClient creates a recognition client for a single provider.
func NewClient(providerCfg *config.OCRProviderConfig, ocrCfg *config.OCRConfig) *Client {
	timeout := providerCfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		provider:     providerCfg.Name,
		endpoint:     providerCfg.Endpoint,
		apiKey:       providerCfg.APIKey,
		maxFileBytes: providerCfg.MaxFileBytes,
		pollInterval: ocrCfg.PollInterval,
		pollCeiling:  ocrCfg.PollCeiling,
		maxPolls:     ocrCfg.MaxPolls,
		httpClient:   &http.Client{Timeout: timeout},
	}
	if c.pollInterval <= 0 {
		c.pollInterval = defaultPollInterval
	}
	if c.pollCeiling <= 0 {
		c.pollCeiling = defaultPollCeiling
	}
	if c.maxPolls <= 0 {
		c.maxPolls = defaultMaxPolls
	}
	return c
}

// submitResponse is the provider's response to a submission.
type submitResponse struct {
	Success         bool   `json:"success"`
	Error           string `json:"error"`
	RequestID       string `json:"request_id"`
	RequestCheckURL string `json:"request_check_url"`
}

// Recognize validates the input, submits it, polls to completion, and
// normalizes the provider payload.
func (c *Client) Recognize(ctx context.Context, input SubmitInput) (*Result, error) {
	if err := c.validate(input); err != nil {
		return nil, err
	}

	checkURL, requestID, err := c.submit(ctx, input)
	if err != nil {
		return nil, err
	}
	log.Printf("ocr.Client: %s accepted %s (request %s), polling", c.provider, input.Filename, requestID)

	payload, err := c.poll(ctx, checkURL)
	if err != nil {
		return nil, err
	}

	result := normalizeResult(payload, c.provider)
	log.Printf("ocr.Client: %s completed %s: %d pages, avg confidence %.3f",
		c.provider, input.Filename, result.PageCount, result.AverageConfidence)
	return result, nil
}

func (c *Client) validate(input SubmitInput) error {
	size := int64(len(input.FileBytes))
	if size <= 0 {
		return &ValidationError{Reason: "file size must be greater than 0"}
	}
	if c.maxFileBytes > 0 && size > c.maxFileBytes {
		return &ValidationError{Reason: fmt.Sprintf("file size %d exceeds maximum of %d bytes", size, c.maxFileBytes)}
	}
	if !supportedMimeTypes[strings.ToLower(input.MimeType)] {
		return &ValidationError{Reason: fmt.Sprintf("unsupported MIME type: %s", input.MimeType)}
	}
	if len(input.Languages) > 4 {
		return &ValidationError{Reason: "maximum 4 language hints allowed"}
	}
	return nil
}

func (c *Client) submit(ctx context.Context, input SubmitInput) (checkURL, requestID string, err error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	part, err := writer.CreateFormFile("file", input.Filename)
	if err != nil {
		return "", "", fmt.Errorf("creating form file: %w", err)
	}
	if _, err := part.Write(input.FileBytes); err != nil {
		return "", "", fmt.Errorf("writing form file: %w", err)
	}
	if len(input.Languages) > 0 {
		if err := writer.WriteField("langs", strings.Join(input.Languages, ",")); err != nil {
			return "", "", fmt.Errorf("writing langs field: %w", err)
		}
	}
	if input.MaxPages > 0 {
		if err := writer.WriteField("max_pages", strconv.Itoa(input.MaxPages)); err != nil {
			return "", "", fmt.Errorf("writing max_pages field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", "", fmt.Errorf("closing multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, &body)
	if err != nil {
		return "", "", fmt.Errorf("creating submit request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", &ProcessingError{Provider: c.provider, Detail: fmt.Sprintf("submit request: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", "", &ProcessingError{Provider: c.provider, Detail: fmt.Sprintf("reading submit response: %v", err)}
	}
	if err := c.checkStatus(resp, respBody); err != nil {
		return "", "", err
	}

	var submitResp submitResponse
	if err := json.Unmarshal(respBody, &submitResp); err != nil {
		return "", "", &ProcessingError{Provider: c.provider, Detail: fmt.Sprintf("decoding submit response: %v", err)}
	}
	if !submitResp.Success {
		detail := submitResp.Error
		if detail == "" {
			detail = "submission rejected"
		}
		return "", "", &ProcessingError{Provider: c.provider, Detail: detail}
	}
	if submitResp.RequestCheckURL == "" {
		return "", "", &ProcessingError{Provider: c.provider, Detail: "no check URL in submit response"}
	}
	return submitResp.RequestCheckURL, submitResp.RequestID, nil
}

// poll checks the status URL until the provider reports completion, sleeping
// the current interval between attempts and doubling it up to the ceiling.
func (c *Client) poll(ctx context.Context, checkURL string) (*providerPayload, error) {
	interval := c.pollInterval

	for attempt := 0; attempt < c.maxPolls; attempt++ {
		payload, done, err := c.checkOnce(ctx, checkURL)
		if err != nil {
			return nil, err
		}
		if done {
			return payload, nil
		}

		select {
		case <-ctx.Done():
			return nil, &TimeoutError{Provider: c.provider, Attempts: attempt + 1, Cause: ctx.Err()}
		case <-time.After(interval):
		}
		interval *= 2
		if interval > c.pollCeiling {
			interval = c.pollCeiling
		}
	}

	return nil, &TimeoutError{Provider: c.provider, Attempts: c.maxPolls}
}

func (c *Client) checkOnce(ctx context.Context, checkURL string) (*providerPayload, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("creating poll request: %w", err)
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, false, &ProcessingError{Provider: c.provider, Detail: fmt.Sprintf("poll request: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, &ProcessingError{Provider: c.provider, Detail: fmt.Sprintf("reading poll response: %v", err)}
	}
	if err := c.checkStatus(resp, respBody); err != nil {
		return nil, false, err
	}

	var payload providerPayload
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return nil, false, &ProcessingError{Provider: c.provider, Detail: fmt.Sprintf("decoding poll response: %v", err)}
	}

	switch payload.Status {
	case "processing":
		return nil, false, nil
	case "complete":
		if payload.Error != "" {
			return nil, false, &ProcessingError{Provider: c.provider, Detail: payload.Error}
		}
		return &payload, true, nil
	default:
		return nil, false, &ProcessingError{Provider: c.provider, Detail: fmt.Sprintf("unexpected status %q", payload.Status)}
	}
}

// checkStatus maps HTTP error statuses to the typed error taxonomy.
func (c *Client) checkStatus(resp *http.Response, body []byte) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return &AuthenticationError{Provider: c.provider}
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
		return NewRateLimitError(c.provider, fmt.Errorf("HTTP 429: %s", string(body)), retryAfter)
	case resp.StatusCode >= 400:
		return &ProcessingError{Provider: c.provider, Detail: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, string(body))}
	}
	return nil
}
