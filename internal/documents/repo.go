package documents

import (
	"context"
	"time"
)

// DocumentsRepo defines persistence operations for documents. Status is
// mutated only through the Claim/Mark methods so every transition is checked
// against the latest persisted value.
type DocumentsRepo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, documentID string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)

	// ClaimForProcessing atomically moves a pending or failed document to
	// processing and increments its attempt counter. It returns
	// ErrAlreadyCompleted, ErrNotClaimable, or ErrAttemptsExhausted when the
	// claim cannot be taken.
	ClaimForProcessing(ctx context.Context, documentID string, maxAttempts int) (Document, error)

	// MarkCompleted transitions processing -> completed. Repeating the call
	// on an already-completed document is a no-op.
	MarkCompleted(ctx context.Context, documentID string) error

	// MarkFailed transitions processing -> failed. It never regresses a
	// completed document.
	MarkFailed(ctx context.Context, documentID string) error

	// DeleteExpired removes documents created before the cutoff and returns
	// them so callers can clean up stored objects. Extraction results are
	// removed with their document.
	DeleteExpired(ctx context.Context, cutoff time.Time) ([]Document, error)
}
