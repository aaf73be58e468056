package extraction

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres. The structured hierarchy is stored
// as JSONB alongside the denormalized summary columns.
type PGRepo struct {
	DB *sql.DB
}

// Upsert writes the result, replacing any previous one for the document.
func (r *PGRepo) Upsert(ctx context.Context, result Result) error {
	structured, err := json.Marshal(result.Pages)
	if err != nil {
		return err
	}

	const query = `
INSERT INTO extraction_results (
    document_id,
    full_text,
    confidence,
    language,
    page_count,
    structured,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (document_id) DO UPDATE SET
    full_text  = EXCLUDED.full_text,
    confidence = EXCLUDED.confidence,
    language   = EXCLUDED.language,
    page_count = EXCLUDED.page_count,
    structured = EXCLUDED.structured,
    updated_at = EXCLUDED.updated_at`

	_, err = r.DB.ExecContext(
		ctx,
		query,
		result.DocumentID,
		result.FullText,
		result.Confidence,
		result.Language,
		result.PageCount,
		structured,
		result.UpdatedAt,
	)
	return err
}

// GetByDocument fetches the result for a document.
func (r *PGRepo) GetByDocument(ctx context.Context, documentID string) (Result, error) {
	const query = `
SELECT document_id, full_text, confidence, language, page_count, structured, updated_at
FROM extraction_results
WHERE document_id = $1
LIMIT 1`

	var result Result
	var structured []byte
	err := r.DB.QueryRowContext(ctx, query, documentID).Scan(
		&result.DocumentID,
		&result.FullText,
		&result.Confidence,
		&result.Language,
		&result.PageCount,
		&structured,
		&result.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Result{}, ErrNoResult
		}
		return Result{}, err
	}
	if len(structured) > 0 {
		if err := json.Unmarshal(structured, &result.Pages); err != nil {
			return Result{}, err
		}
	}
	return result, nil
}

var _ Repo = (*PGRepo)(nil)
