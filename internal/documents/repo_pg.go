package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements DocumentsRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const docColumns = `id, user_id, file_name, original_filename, mime_type, size_bytes, storage_provider, storage_key, ocr_status, ocr_attempts, created_at`

// Create inserts a new document. Status is forced to pending.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    user_id,
    file_name,
    original_filename,
    mime_type,
    size_bytes,
    storage_provider,
    storage_key,
    ocr_status,
    ocr_attempts,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, 0, $10)`

	originalName := doc.OriginalFilename
	if originalName == "" {
		originalName = doc.FileName
	}
	storageProvider := doc.StorageProvider
	if storageProvider == "" {
		storageProvider = "local"
	}

	var userID sql.NullString
	if doc.UserID != "" {
		userID = sql.NullString{String: doc.UserID, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		userID,
		doc.FileName,
		originalName,
		doc.MimeType,
		doc.SizeBytes,
		storageProvider,
		doc.StorageKey,
		StatusPending,
		doc.CreatedAt,
	)
	return err
}

// GetByID fetches a document by ID.
func (r *PGRepo) GetByID(ctx context.Context, documentID string) (Document, error) {
	const query = `
SELECT ` + docColumns + `
FROM documents
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, documentID))
}

// ListByUser lists documents ordered newest-first.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + docColumns + `
FROM documents
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`

	rows, err := r.DB.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// ClaimForProcessing takes the processing claim with a single conditional
// update so concurrent deliveries of the same job cannot both proceed.
func (r *PGRepo) ClaimForProcessing(ctx context.Context, documentID string, maxAttempts int) (Document, error) {
	const query = `
UPDATE documents
SET ocr_status = $2, ocr_attempts = ocr_attempts + 1
WHERE id = $1
  AND ocr_status IN ($3, $4)
  AND ocr_attempts < $5
RETURNING ` + docColumns

	doc, err := r.scanOne(r.DB.QueryRowContext(ctx, query, documentID, StatusProcessing, StatusPending, StatusFailed, maxAttempts))
	if err == nil {
		return doc, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return Document{}, err
	}

	// Claim refused; classify against the current row.
	current, getErr := r.GetByID(ctx, documentID)
	if getErr != nil {
		return Document{}, getErr
	}
	switch {
	case current.OCRStatus == StatusCompleted:
		return current, ErrAlreadyCompleted
	case current.OCRStatus == StatusFailed && current.OCRAttempts >= maxAttempts:
		return current, ErrAttemptsExhausted
	default:
		return current, ErrNotClaimable
	}
}

// MarkCompleted transitions processing -> completed.
func (r *PGRepo) MarkCompleted(ctx context.Context, documentID string) error {
	return r.markTerminal(ctx, documentID, StatusCompleted)
}

// MarkFailed transitions processing -> failed.
func (r *PGRepo) MarkFailed(ctx context.Context, documentID string) error {
	return r.markTerminal(ctx, documentID, StatusFailed)
}

func (r *PGRepo) markTerminal(ctx context.Context, documentID, status string) error {
	const query = `
UPDATE documents
SET ocr_status = $2
WHERE id = $1 AND ocr_status = $3`
	res, err := r.DB.ExecContext(ctx, query, documentID, status, StatusProcessing)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}

	// Detect the repeated-identical-transition no-op vs. a real conflict.
	current, err := r.GetByID(ctx, documentID)
	if err != nil {
		return err
	}
	if current.OCRStatus == status || current.OCRStatus == StatusCompleted {
		return nil
	}
	return ErrNotClaimable
}

// DeleteExpired removes documents created before the cutoff, returning them
// so blobs can be removed. Extraction results go with the row via FK cascade.
func (r *PGRepo) DeleteExpired(ctx context.Context, cutoff time.Time) ([]Document, error) {
	const query = `
DELETE FROM documents
WHERE created_at < $1
RETURNING ` + docColumns

	rows, err := r.DB.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDoc(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Document, error) {
	doc, err := scanDoc(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func scanDoc(row rowScanner) (Document, error) {
	var doc Document
	var userID sql.NullString
	var originalName sql.NullString
	err := row.Scan(
		&doc.ID,
		&userID,
		&doc.FileName,
		&originalName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.StorageProvider,
		&doc.StorageKey,
		&doc.OCRStatus,
		&doc.OCRAttempts,
		&doc.CreatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if userID.Valid {
		doc.UserID = userID.String
	}
	if originalName.Valid {
		doc.OriginalFilename = originalName.String
	}
	return doc, nil
}

var _ DocumentsRepo = (*PGRepo)(nil)
