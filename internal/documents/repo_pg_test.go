package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var docRows = []string{
	"id", "user_id", "file_name", "original_filename", "mime_type", "size_bytes",
	"storage_provider", "storage_key", "ocr_status", "ocr_attempts", "created_at",
}

func TestPGRepoCreateForcesPendingStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	doc := Document{
		ID:              "doc-1",
		UserID:          "user-1",
		FileName:        "scan.pdf",
		MimeType:        "application/pdf",
		SizeBytes:       42,
		StorageProvider: "local",
		StorageKey:      "abc/scan.pdf",
		OCRStatus:       StatusCompleted, // must be ignored
		CreatedAt:       time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID,
			doc.UserID,
			doc.FileName,
			doc.FileName, // original falls back to file name
			doc.MimeType,
			doc.SizeBytes,
			doc.StorageProvider,
			doc.StorageKey,
			StatusPending,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoClaimForProcessing(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	mock.ExpectQuery("UPDATE documents").
		WithArgs("doc-1", StatusProcessing, StatusPending, StatusFailed, 3).
		WillReturnRows(sqlmock.NewRows(docRows).AddRow(
			"doc-1", "user-1", "scan.pdf", "scan.pdf", "application/pdf", int64(42),
			"local", "abc/scan.pdf", StatusProcessing, 1, now,
		))

	doc, err := repo.ClaimForProcessing(context.Background(), "doc-1", 3)
	if err != nil {
		t.Fatalf("ClaimForProcessing: %v", err)
	}
	if doc.OCRStatus != StatusProcessing || doc.OCRAttempts != 1 {
		t.Fatalf("unexpected claim result: %+v", doc)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoClaimRefusedOnCompleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()

	// The conditional update matches no rows, then classification re-reads.
	mock.ExpectQuery("UPDATE documents").
		WithArgs("doc-1", StatusProcessing, StatusPending, StatusFailed, 3).
		WillReturnRows(sqlmock.NewRows(docRows))
	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("doc-1").
		WillReturnRows(sqlmock.NewRows(docRows).AddRow(
			"doc-1", "user-1", "scan.pdf", "scan.pdf", "application/pdf", int64(42),
			"local", "abc/scan.pdf", StatusCompleted, 1, now,
		))

	_, err = repo.ClaimForProcessing(context.Background(), "doc-1", 3)
	if !errors.Is(err, ErrAlreadyCompleted) {
		t.Fatalf("expected ErrAlreadyCompleted, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoMarkCompleted(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}

	mock.ExpectExec("UPDATE documents").
		WithArgs("doc-1", StatusCompleted, StatusProcessing).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkCompleted(context.Background(), "doc-1"); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}
