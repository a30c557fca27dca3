package service

import (
	"context"
	"log"
	"sync"
	"time"

	"loaddocs/internal/config"
	"loaddocs/internal/port"
)

// processTimeout bounds a single pipeline run, recognition polling included.
const processTimeout = 15 * time.Minute

// ProcessQueueWorker polls for queued documents and dispatches them through
// the pipeline, at most Concurrency at a time.
type ProcessQueueWorker struct {
	docRepo    port.DocumentRepository
	docService DocumentService
	cfg        config.QueueConfig
	wg         sync.WaitGroup
}

// NewProcessQueueWorker creates a ProcessQueueWorker.
func NewProcessQueueWorker(docRepo port.DocumentRepository, docService DocumentService, cfg config.QueueConfig) *ProcessQueueWorker {
	return &ProcessQueueWorker{
		docRepo:    docRepo,
		docService: docService,
		cfg:        cfg,
	}
}

// Start runs the polling loop until ctx is canceled, then blocks until every
// in-flight pipeline run has finished.
func (w *ProcessQueueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.cfg.Concurrency)

	log.Printf("processQueueWorker: started (poll=%s, concurrency=%d, maxRetries=%d)",
		w.cfg.PollInterval, w.cfg.Concurrency, w.cfg.MaxRetries)

	for {
		select {
		case <-ctx.Done():
			log.Printf("processQueueWorker: shutting down, waiting for in-flight documents")
			w.wg.Wait()
			log.Printf("processQueueWorker: shutdown complete")
			return
		case <-ticker.C:
			available := w.cfg.Concurrency - len(sem)
			if available <= 0 {
				continue
			}

			docs, err := w.docRepo.ClaimQueued(ctx, available)
			if err != nil {
				if ctx.Err() != nil {
					continue
				}
				log.Printf("processQueueWorker: ClaimQueued error: %v", err)
				continue
			}

			for i := range docs {
				doc := docs[i] // copy for goroutine

				sem <- struct{}{} // acquire
				w.wg.Add(1)
				go func() {
					defer w.wg.Done()
					defer func() { <-sem }() // release

					// Independent context so claimed documents finish even
					// while the poll loop is shutting down.
					processCtx, cancel := context.WithTimeout(context.Background(), processTimeout)
					defer cancel()

					log.Printf("processQueueWorker: dispatching document %s (attempt %d)", doc.ID, doc.ProcessAttempts)
					w.docService.ProcessDocument(processCtx, &doc, w.cfg.MaxRetries)
				}()
			}
		}
	}
}
