package pipeline

import (
	"context"
	"errors"
	"fmt"

	"docs-backend/internal/documents"
	"docs-backend/internal/extraction"
	"docs-backend/internal/shared/telemetry"
)

// Processor drives one document through claim, extraction, and terminal
// status. It is invoked by the queue consumer and by the inline fallback on
// the upload path.
type Processor struct {
	Docs        documents.DocumentsRepo
	Extractor   *extraction.Service
	MaxAttempts int
}

// NewProcessor constructs a Processor.
func NewProcessor(docs documents.DocumentsRepo, extractor *extraction.Service, maxAttempts int) *Processor {
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Processor{Docs: docs, Extractor: extractor, MaxAttempts: maxAttempts}
}

// ProcessDocument runs extraction for one document. Completed documents are
// an idempotent no-op. Unrecoverable conditions surface as
// documents.ErrNotFound or documents.ErrAttemptsExhausted so the consumer
// can drop the message instead of retrying.
func (p *Processor) ProcessDocument(ctx context.Context, documentID string) error {
	doc, err := p.Docs.ClaimForProcessing(ctx, documentID, p.MaxAttempts)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrAlreadyCompleted):
			telemetry.Info("pipeline.already_completed", map[string]any{
				"document_id": documentID,
			})
			return nil
		case errors.Is(err, documents.ErrAttemptsExhausted):
			telemetry.Warn("pipeline.attempts_exhausted", map[string]any{
				"document_id": documentID,
				"attempts":    doc.OCRAttempts,
			})
			return fmt.Errorf("document %s: %w", documentID, documents.ErrAttemptsExhausted)
		case errors.Is(err, documents.ErrNotClaimable):
			// Another worker holds the claim. Leave the message for redelivery.
			telemetry.Info("pipeline.claim_contended", map[string]any{
				"document_id": documentID,
				"status":      doc.OCRStatus,
			})
			return fmt.Errorf("document %s not claimable: %w", documentID, documents.ErrNotClaimable)
		default:
			return fmt.Errorf("claim document %s: %w", documentID, err)
		}
	}

	telemetry.Info("pipeline.processing", map[string]any{
		"document_id": doc.ID,
		"attempt":     doc.OCRAttempts,
		"mime_type":   doc.MimeType,
	})

	_, extractErr := p.Extractor.ExtractFromLocator(ctx, doc.ID, doc.StorageKey, doc.MimeType)
	if extractErr != nil {
		if markErr := p.Docs.MarkFailed(ctx, doc.ID); markErr != nil {
			telemetry.Error("pipeline.mark_failed_error", map[string]any{
				"document_id": doc.ID,
				"error":       markErr.Error(),
			})
		}
		fields := map[string]any{
			"document_id": doc.ID,
			"attempt":     doc.OCRAttempts,
			"error":       extractErr.Error(),
		}
		if doc.OCRAttempts >= p.MaxAttempts {
			telemetry.Error("pipeline.failed_permanently", fields)
		} else {
			telemetry.Warn("pipeline.failed", fields)
		}
		return fmt.Errorf("extract document %s: %w", doc.ID, extractErr)
	}

	if err := p.Docs.MarkCompleted(ctx, doc.ID); err != nil {
		return fmt.Errorf("mark completed %s: %w", doc.ID, err)
	}
	return nil
}

var _ documents.Processor = (*Processor)(nil)
