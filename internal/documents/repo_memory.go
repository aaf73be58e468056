package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of DocumentsRepo, used in tests
// and as the fallback when no database is configured.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // id -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Document)}
}

// Create stores a new document with status pending.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	doc.OCRStatus = StatusPending
	doc.OCRAttempts = 0
	if doc.OriginalFilename == "" {
		doc.OriginalFilename = doc.FileName
	}
	if doc.StorageProvider == "" {
		doc.StorageProvider = "local"
	}
	r.data[doc.ID] = doc
	return nil
}

// GetByID returns a document by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	doc, ok := r.data[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	return doc, nil
}

// ListByUser returns documents for a user, newest first, honoring limit/offset.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 20
	}

	r.mu.RLock()
	var docs []Document
	for _, doc := range r.data {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// ClaimForProcessing takes the processing claim under the repo lock.
func (r *MemoryRepo) ClaimForProcessing(ctx context.Context, documentID string, maxAttempts int) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.data[documentID]
	if !ok {
		return Document{}, ErrNotFound
	}
	switch {
	case doc.OCRStatus == StatusCompleted:
		return doc, ErrAlreadyCompleted
	case doc.OCRStatus == StatusProcessing:
		return doc, ErrNotClaimable
	case doc.OCRAttempts >= maxAttempts:
		return doc, ErrAttemptsExhausted
	}

	doc.OCRStatus = StatusProcessing
	doc.OCRAttempts++
	r.data[documentID] = doc
	return doc, nil
}

// MarkCompleted transitions processing -> completed.
func (r *MemoryRepo) MarkCompleted(ctx context.Context, documentID string) error {
	return r.markTerminal(ctx, documentID, StatusCompleted)
}

// MarkFailed transitions processing -> failed.
func (r *MemoryRepo) MarkFailed(ctx context.Context, documentID string) error {
	return r.markTerminal(ctx, documentID, StatusFailed)
}

func (r *MemoryRepo) markTerminal(ctx context.Context, documentID, status string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.data[documentID]
	if !ok {
		return ErrNotFound
	}
	if doc.OCRStatus == status || doc.OCRStatus == StatusCompleted {
		return nil
	}
	if doc.OCRStatus != StatusProcessing {
		return ErrNotClaimable
	}
	doc.OCRStatus = status
	r.data[documentID] = doc
	return nil
}

// DeleteExpired removes documents created before the cutoff.
func (r *MemoryRepo) DeleteExpired(ctx context.Context, cutoff time.Time) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Document
	for id, doc := range r.data {
		if doc.CreatedAt.Before(cutoff) {
			out = append(out, doc)
			delete(r.data, id)
		}
	}
	return out, nil
}

var _ DocumentsRepo = (*MemoryRepo)(nil)
