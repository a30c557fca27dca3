package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"loaddocs/internal/config"
	"loaddocs/internal/decision"
	"loaddocs/internal/domain"
	"loaddocs/internal/extract"
	"loaddocs/internal/ocr"
	"loaddocs/internal/port"
	s3storage "loaddocs/internal/storage/s3"
)

// maxMediaDownloadBytes caps files fetched from a media URL.
const maxMediaDownloadBytes = 50 * 1024 * 1024

// CreateDocumentInput is the DTO for submitting a document. Exactly one of
// MediaURL or File must be set.
type CreateDocumentInput struct {
	DriverID uuid.UUID
	LoadID   *uuid.UUID
	DocType  domain.DocumentType
	MediaURL string
	File     multipart.File
	Header   *multipart.FileHeader
}

// ProcessingStatus is the caller-facing view of a document's pipeline state.
type ProcessingStatus struct {
	DocID       uuid.UUID             `json:"doc_id"`
	Status      domain.DocumentStatus `json:"status"`
	Confidence  *float64              `json:"confidence"`
	Verified    *bool                 `json:"verified"`
	DriverFlags *domain.DriverFlags   `json:"driver_flags,omitempty"`
	LoadFlags   *domain.LoadFlags     `json:"load_flags,omitempty"`
	NeedsRetry  bool                  `json:"needs_retry"`
	Error       string                `json:"error,omitempty"`
}

// DocumentService defines the document pipeline contract.
type DocumentService interface {
	Create(ctx context.Context, input *CreateDocumentInput) (*domain.Document, error)
	GetStatus(ctx context.Context, docID uuid.UUID) (*ProcessingStatus, error)
	Process(ctx context.Context, docID uuid.UUID) (*ProcessingStatus, error)
	ProcessDocument(ctx context.Context, doc *domain.Document, maxAttempts int)
}

type documentService struct {
	docRepo    port.DocumentRepository
	driverRepo port.DriverRepository
	loadRepo   port.LoadRepository
	storage    port.ObjectStorage
	recognizer ocr.Recognizer
	registry   *extract.Registry
	engine     *decision.Engine
	crossVal   port.CrossValidator // nil when the booster is disabled
	notifier   port.EventNotifier
	s3cfg      *config.S3Config
	httpClient *http.Client
	now        func() time.Time
}

// NewDocumentService creates a DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	driverRepo port.DriverRepository,
	loadRepo port.LoadRepository,
	storage port.ObjectStorage,
	recognizer ocr.Recognizer,
	registry *extract.Registry,
	engine *decision.Engine,
	crossVal port.CrossValidator,
	notifier port.EventNotifier,
	s3cfg *config.S3Config,
) DocumentService {
	return &documentService{
		docRepo:    docRepo,
		driverRepo: driverRepo,
		loadRepo:   loadRepo,
		storage:    storage,
		recognizer: recognizer,
		registry:   registry,
		engine:     engine,
		crossVal:   crossVal,
		notifier:   notifier,
		s3cfg:      s3cfg,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		now:        time.Now,
	}
}

// Create validates the submission, stores the raw bytes in S3, and enqueues a
// document row for the worker.
func (s *documentService) Create(ctx context.Context, input *CreateDocumentInput) (*domain.Document, error) {
	driver, err := s.driverRepo.GetByID(ctx, input.DriverID)
	if err != nil {
		return nil, err
	}

	fileBytes, ext, contentType, err := s.fetchFile(ctx, input)
	if err != nil {
		return nil, err
	}

	docID := uuid.New()
	key := s3storage.DocumentKey(driver.ID, docID, ext)

	log.Printf("documentService.Create: storing %s document %s for driver %s (%d bytes)",
		input.DocType, docID, driver.ID, len(fileBytes))

	if _, err := s.storage.Upload(ctx, port.UploadInput{
		Bucket:      s.s3cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(fileBytes),
		ContentType: contentType,
		Size:        int64(len(fileBytes)),
	}); err != nil {
		log.Printf("documentService.Create: upload failed for %s: %v", docID, err)
		return nil, domain.ErrUploadFailed
	}

	doc := &domain.Document{
		ID:       docID,
		DriverID: driver.ID,
		LoadID:   input.LoadID,
		Type:     input.DocType,
		URL:      key,
		Status:   domain.DocStatusQueued,
	}
	if err := s.docRepo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document record: %w", err)
	}
	return doc, nil
}

// fetchFile reads the document bytes from either the uploaded multipart file
// or the media URL, validating size and content type on both paths.
func (s *documentService) fetchFile(ctx context.Context, input *CreateDocumentInput) (data []byte, ext, contentType string, err error) {
	switch {
	case input.File != nil && input.Header != nil:
		maxBytes := s.s3cfg.MaxFileSizeMB * 1024 * 1024
		if input.Header.Size > maxBytes {
			return nil, "", "", domain.ErrFileTooLarge
		}
		data, err = io.ReadAll(io.LimitReader(input.File, maxBytes+1))
		if err != nil {
			return nil, "", "", fmt.Errorf("reading upload: %w", err)
		}
		ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(input.Header.Filename), "."))

	case input.MediaURL != "":
		data, err = s.downloadMedia(ctx, input.MediaURL)
		if err != nil {
			return nil, "", "", err
		}
		ext = strings.ToLower(strings.TrimPrefix(filepath.Ext(strings.SplitN(input.MediaURL, "?", 2)[0]), "."))

	default:
		return nil, "", "", domain.ErrEmptyFile
	}

	if len(data) == 0 {
		return nil, "", "", domain.ErrEmptyFile
	}

	sniffLen := len(data)
	if sniffLen > 512 {
		sniffLen = 512
	}
	contentType = http.DetectContentType(data[:sniffLen])
	fileType, ok := domain.AllowedContentTypes[contentType]
	if !ok {
		return nil, "", "", domain.ErrUnsupportedFileType
	}
	if _, known := domain.AllowedExtensions[ext]; !known {
		ext = string(fileType)
	}
	return data, ext, contentType, nil
}

func (s *documentService) downloadMedia(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating media request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrDownloadFailed, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxMediaDownloadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	if len(data) > maxMediaDownloadBytes {
		return nil, domain.ErrFileTooLarge
	}
	return data, nil
}

// GetStatus returns the current pipeline state of a document together with
// the owning records' verification flags.
func (s *documentService) GetStatus(ctx context.Context, docID uuid.UUID) (*ProcessingStatus, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.buildStatus(ctx, doc), nil
}

// Process runs the pipeline synchronously for one document. Used by the CLI
// and the explicit process endpoint.
func (s *documentService) Process(ctx context.Context, docID uuid.UUID) (*ProcessingStatus, error) {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	doc.ProcessAttempts++
	s.ProcessDocument(ctx, doc, 1)

	refreshed, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return nil, err
	}
	return s.buildStatus(ctx, refreshed), nil
}

func (s *documentService) buildStatus(ctx context.Context, doc *domain.Document) *ProcessingStatus {
	status := &ProcessingStatus{
		DocID:      doc.ID,
		Status:     doc.Status,
		Confidence: doc.Confidence,
		Verified:   doc.Verified,
		Error:      doc.ProcessingError,
	}
	if doc.Confidence != nil {
		status.NeedsRetry = extract.NeedsRetry(*doc.Confidence)
	}
	if driver, err := s.driverRepo.GetByID(ctx, doc.DriverID); err == nil {
		status.DriverFlags = &driver.DocFlags
	}
	if doc.LoadID != nil {
		if load, err := s.loadRepo.GetByID(ctx, *doc.LoadID); err == nil {
			status.LoadFlags = &load.Flags
		}
	}
	return status
}

// ProcessDocument runs recognition, extraction, and the business decision for
// one claimed document, persisting the outcome. It never returns an error;
// failures land on the document row.
func (s *documentService) ProcessDocument(ctx context.Context, doc *domain.Document, maxAttempts int) {
	fileBytes, err := s.storage.Download(ctx, s.s3cfg.Bucket, doc.URL)
	if err != nil {
		s.failProcessing(ctx, doc, fmt.Sprintf("downloading document: %v", err))
		return
	}

	sniffLen := len(fileBytes)
	if sniffLen > 512 {
		sniffLen = 512
	}
	recognized, err := s.recognizer.Recognize(ctx, ocr.SubmitInput{
		FileBytes: fileBytes,
		Filename:  filepath.Base(doc.URL),
		MimeType:  http.DetectContentType(fileBytes[:sniffLen]),
	})
	if err != nil {
		s.handleRecognitionError(ctx, doc, err, maxAttempts)
		return
	}

	strategy, err := s.registry.Get(doc.Type)
	if err != nil {
		s.failProcessing(ctx, doc, err.Error())
		return
	}
	result := strategy.Parse(recognized.FullText)
	confidence := s.applyCrossValidation(ctx, doc.Type, recognized.FullText, result.Confidence)

	outcome, err := s.decide(ctx, doc, result, confidence)
	if err != nil {
		s.failProcessing(ctx, doc, fmt.Sprintf("applying decision: %v", err))
		return
	}

	parsed, err := json.Marshal(result.Data)
	if err != nil {
		s.failProcessing(ctx, doc, fmt.Sprintf("encoding parsed data: %v", err))
		return
	}

	verified := result.Verified
	doc.Status = domain.DocStatusParsed
	doc.Confidence = &confidence
	doc.ParsedData = parsed
	doc.Verified = &verified
	doc.ProcessingError = ""
	if err := s.docRepo.Update(ctx, doc); err != nil {
		log.Printf("documentService.ProcessDocument: saving results for %s: %v", doc.ID, err)
		return
	}

	log.Printf("documentService.ProcessDocument: document %s (%s) parsed, confidence %.3f, verified %v",
		doc.ID, doc.Type, confidence, verified)

	if outcome != nil && outcome.EmitInvoiceReady && doc.LoadID != nil {
		s.emitInvoiceReady(ctx, *doc.LoadID, doc.DriverID)
	}
}

// applyCrossValidation runs the optional two-model booster on settlement
// documents. Strategies stay deterministic; the adjustment is applied here.
func (s *documentService) applyCrossValidation(ctx context.Context, docType domain.DocumentType, text string, confidence float64) float64 {
	if s.crossVal == nil {
		return confidence
	}
	if docType != domain.DocTypeInvoice && docType != domain.DocTypeLumper {
		return confidence
	}

	validation, err := s.crossVal.Validate(ctx, extract.NormalizeArtifacts(text))
	if err != nil {
		log.Printf("documentService.applyCrossValidation: booster unavailable: %v", err)
		return confidence
	}
	adjusted := confidence + validation.ConfidenceAdjustment
	if adjusted > 1 {
		adjusted = 1
	}
	if adjusted < 0 {
		adjusted = 0
	}
	return adjusted
}

// decide fetches the owning records, runs the decision engine, and persists
// any flag or status mutations.
func (s *documentService) decide(ctx context.Context, doc *domain.Document, result extract.ParsingResult, confidence float64) (*decision.Outcome, error) {
	input := decision.Input{
		DocType:    doc.Type,
		Data:       result.Data,
		Confidence: confidence,
		Verified:   result.Verified,
		Today:      s.now().UTC(),
	}

	driver, err := s.driverRepo.GetByID(ctx, doc.DriverID)
	if err != nil && !errors.Is(err, domain.ErrDriverNotFound) {
		return nil, err
	}
	input.Driver = driver

	if doc.LoadID != nil {
		load, err := s.loadRepo.GetByID(ctx, *doc.LoadID)
		if err != nil && !errors.Is(err, domain.ErrLoadNotFound) {
			return nil, err
		}
		input.Load = load
	}

	outcome, err := s.engine.Decide(input)
	if err != nil {
		return nil, err
	}

	if outcome.DriverFlags != nil {
		merged, err := s.driverRepo.UpdateFlags(ctx, doc.DriverID, *outcome.DriverFlags)
		if err != nil {
			return nil, err
		}
		outcome.DriverFlags = merged
	}
	if outcome.LoadFlags != nil && doc.LoadID != nil {
		merged, err := s.loadRepo.UpdateFlags(ctx, *doc.LoadID, *outcome.LoadFlags)
		if err != nil {
			return nil, err
		}
		outcome.LoadFlags = merged
		// Readiness is judged on the merged row, not the snapshot the engine
		// saw: a concurrent writer may have completed the pair since the read.
		// MarkInvoiceReady keeps the event exactly-once across all writers.
		outcome.EmitInvoiceReady = merged.RateConVerified && merged.DeliveryConfirmed
		if outcome.LoadStatus != nil {
			if err := s.loadRepo.UpdateStatus(ctx, *doc.LoadID, *outcome.LoadStatus); err != nil {
				return nil, err
			}
		}
	}
	return outcome, nil
}

// emitInvoiceReady publishes the invoice_ready event at most once per load.
// The conditional invoice_ready_at stamp in the repository is the guard:
// whichever caller flips it publishes, everyone else stays silent.
func (s *documentService) emitInvoiceReady(ctx context.Context, loadID, driverID uuid.UUID) {
	won, err := s.loadRepo.MarkInvoiceReady(ctx, loadID)
	if err != nil {
		log.Printf("documentService.emitInvoiceReady: marking load %s: %v", loadID, err)
		return
	}
	if !won {
		return
	}
	s.notifier.InvoiceReady(ctx, loadID, driverID)
}

// handleRecognitionError requeues rate-limited documents that still have
// attempts left; everything else fails permanently.
func (s *documentService) handleRecognitionError(ctx context.Context, doc *domain.Document, recErr error, maxAttempts int) {
	var rlErr *ocr.RateLimitError
	if errors.As(recErr, &rlErr) && doc.ProcessAttempts < maxAttempts {
		doc.Status = domain.DocStatusQueued
		doc.ProcessingError = fmt.Sprintf("rate limited by %s, requeued", rlErr.Provider)
		if err := s.docRepo.Update(ctx, doc); err != nil {
			log.Printf("documentService.handleRecognitionError: requeueing %s: %v", doc.ID, err)
		}
		return
	}
	s.failProcessing(ctx, doc, fmt.Sprintf("recognition failed: %v", recErr))
}

func (s *documentService) failProcessing(ctx context.Context, doc *domain.Document, reason string) {
	log.Printf("documentService: document %s failed: %s", doc.ID, reason)
	doc.Status = domain.DocStatusFailed
	doc.ProcessingError = reason
	if err := s.docRepo.Update(ctx, doc); err != nil {
		log.Printf("documentService.failProcessing: saving failure for %s: %v", doc.ID, err)
	}
}
