package extraction

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestPGRepoUpsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	result := Result{
		DocumentID: "doc-1",
		FullText:   "hello world",
		Confidence: 0.87,
		Language:   "eng",
		PageCount:  1,
		Pages: []ResultPage{{
			Number: 1,
			Blocks: []ResultBlock{{
				Paragraphs: []ResultParagraph{{Text: "hello world", Confidence: 0.87}},
			}},
		}},
		UpdatedAt: time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO extraction_results").
		WithArgs(
			result.DocumentID,
			result.FullText,
			result.Confidence,
			result.Language,
			result.PageCount,
			sqlmock.AnyArg(), // structured JSONB
			result.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Upsert(context.Background(), result); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByDocument(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	structured := `[{"number":1,"blocks":[{"paragraphs":[{"text":"hello","confidence":0.9}]}]}]`

	mock.ExpectQuery("SELECT (.+) FROM extraction_results").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows([]string{
			"document_id", "full_text", "confidence", "language", "page_count", "structured", "updated_at",
		}).AddRow("doc-1", "hello", 0.9, "eng", 1, []byte(structured), now))

	result, err := repo.GetByDocument(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetByDocument: %v", err)
	}
	if result.FullText != "hello" || result.Language != "eng" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if len(result.Pages) != 1 || len(result.Pages[0].Blocks) != 1 {
		t.Fatalf("structured hierarchy not decoded: %+v", result.Pages)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByDocumentMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectQuery("SELECT (.+) FROM extraction_results").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{
			"document_id", "full_text", "confidence", "language", "page_count", "structured", "updated_at",
		}))

	if _, err := repo.GetByDocument(context.Background(), "missing"); !errors.Is(err, ErrNoResult) {
		t.Fatalf("expected ErrNoResult, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
