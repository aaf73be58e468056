package documents

import "time"

// OCR lifecycle statuses. Transitions follow
// pending -> processing -> {completed | failed}; failed may re-enter
// processing while attempts remain. completed is terminal.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Document represents an uploaded file and its OCR lifecycle.
type Document struct {
	ID               string
	UserID           string
	FileName         string
	OriginalFilename string
	MimeType         string
	SizeBytes        int64
	StorageProvider  string
	StorageKey       string
	OCRStatus        string
	OCRAttempts      int
	CreatedAt        time.Time
}
