package documents

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"docs-backend/internal/queue"
	"docs-backend/internal/shared/metrics"
	"docs-backend/internal/shared/storage/object"
	"docs-backend/internal/shared/telemetry"
	"docs-backend/internal/uploads"
)

// Processor runs the extraction pipeline for one document. It is the same
// operation whether invoked by the queue consumer or inline by the upload
// path.
type Processor interface {
	ProcessDocument(ctx context.Context, documentID string) error
}

// Service contains business logic for documents.
type Service struct {
	Repo            DocumentsRepo
	Store           object.ObjectStore
	Validator       *uploads.Validator
	Queue           queue.Client
	Processor       Processor
	StorageProvider string
}

// UploadInput carries everything the upload path needs from the request.
type UploadInput struct {
	UserID       string
	FileName     string
	DeclaredMime string
	Data         []byte
	RequestID    string
}

// Upload validates the payload, stores the bytes, records the document with
// status pending, and schedules extraction. If enqueueing fails the same
// processing runs inline and its error is returned to the caller directly.
func (s *Service) Upload(ctx context.Context, in UploadInput) (Document, error) {
	if in.FileName == "" {
		return Document{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}

	sanitized, validatedMime, err := s.Validator.Validate(in.Data, in.FileName, in.DeclaredMime)
	if err != nil {
		metrics.IncUploadsRejected()
		return Document{}, err
	}

	storageKey, size, _, err := s.Store.Save(ctx, in.UserID, sanitized, bytes.NewReader(in.Data))
	if err != nil {
		return Document{}, fmt.Errorf("store upload: %w", err)
	}

	doc := Document{
		ID:               uuid.NewString(),
		UserID:           in.UserID,
		FileName:         sanitized,
		OriginalFilename: in.FileName,
		MimeType:         validatedMime,
		SizeBytes:        size,
		StorageProvider:  s.StorageProvider,
		StorageKey:       storageKey,
		OCRStatus:        StatusPending,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		return Document{}, fmt.Errorf("create document: %w", err)
	}
	metrics.IncDocumentsUploaded()

	if err := s.schedule(ctx, doc, in.RequestID); err != nil {
		latest, getErr := s.Repo.GetByID(ctx, doc.ID)
		if getErr == nil {
			doc = latest
		}
		return doc, err
	}

	latest, err := s.Repo.GetByID(ctx, doc.ID)
	if err != nil {
		return doc, nil
	}
	return latest, nil
}

// schedule enqueues the extraction job, falling back to inline processing
// when the queue is unavailable. The caller never sees a queue error.
func (s *Service) schedule(ctx context.Context, doc Document, requestID string) error {
	if s.Queue != nil {
		msg := queue.Message{
			Job:        queue.JobExtractText,
			DocumentID: doc.ID,
			RequestID:  requestID,
			EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if doc.StorageProvider == "local" {
			msg.LocalPath = doc.StorageKey
		} else {
			msg.RemoteLocator = doc.StorageKey
		}

		err := s.Queue.Send(ctx, msg)
		if err == nil {
			return nil
		}
		telemetry.Warn("documents.enqueue_failed", map[string]any{
			"document_id": doc.ID,
			"request_id":  requestID,
			"error":       err.Error(),
		})
	}

	if s.Processor == nil {
		return fmt.Errorf("no queue and no inline processor configured")
	}

	metrics.IncExtractionInline()
	telemetry.Info("documents.inline_processing", map[string]any{
		"document_id": doc.ID,
		"request_id":  requestID,
	})
	if err := s.Processor.ProcessDocument(ctx, doc.ID); err != nil {
		return fmt.Errorf("inline processing: %w", err)
	}
	return nil
}

// Get returns a document by ID.
func (s *Service) Get(ctx context.Context, documentID string) (Document, error) {
	if documentID == "" {
		return Document{}, fmt.Errorf("%w: document id required", ErrInvalidInput)
	}
	return s.Repo.GetByID(ctx, documentID)
}

// List returns documents for a user, newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// FileURL issues a retrieval URL for the stored bytes.
func (s *Service) FileURL(ctx context.Context, documentID string, ttl time.Duration) (string, error) {
	doc, err := s.Repo.GetByID(ctx, documentID)
	if err != nil {
		return "", err
	}
	url, err := s.Store.SignedURL(ctx, doc.StorageKey, ttl)
	if err != nil {
		return "", fmt.Errorf("signed url for %s: %w", documentID, err)
	}
	return url, nil
}

// PurgeExpired deletes documents older than the cutoff, removing their
// stored objects best-effort. Returns the number of documents removed.
func (s *Service) PurgeExpired(ctx context.Context, cutoff time.Time) (int, error) {
	deleted, err := s.Repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	for _, doc := range deleted {
		if err := s.Store.Delete(ctx, doc.StorageKey); err != nil {
			telemetry.Warn("documents.purge_blob_failed", map[string]any{
				"document_id": doc.ID,
				"storage_key": doc.StorageKey,
				"error":       err.Error(),
			})
		}
	}
	if len(deleted) > 0 {
		telemetry.Info("documents.purged", map[string]any{
			"count":  len(deleted),
			"cutoff": cutoff.Format(time.RFC3339),
		})
	}
	return len(deleted), nil
}
