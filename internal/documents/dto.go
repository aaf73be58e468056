package documents

import "time"

// DocumentResponse is the outward-facing representation of a document.
type DocumentResponse struct {
	DocumentID string    `json:"documentId"`
	FileName   string    `json:"fileName"`
	MimeType   string    `json:"mimeType"`
	SizeBytes  int64     `json:"sizeBytes"`
	Status     string    `json:"status"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// StatusResponse reports the OCR lifecycle state of a document.
type StatusResponse struct {
	DocumentID string `json:"documentId"`
	Status     string `json:"status"`
	Attempts   int    `json:"attempts"`
}

func toResponse(doc Document) DocumentResponse {
	return DocumentResponse{
		DocumentID: doc.ID,
		FileName:   doc.FileName,
		MimeType:   doc.MimeType,
		SizeBytes:  doc.SizeBytes,
		Status:     doc.OCRStatus,
		UploadedAt: doc.CreatedAt,
	}
}

func toStatusResponse(doc Document) StatusResponse {
	return StatusResponse{
		DocumentID: doc.ID,
		Status:     doc.OCRStatus,
		Attempts:   doc.OCRAttempts,
	}
}
