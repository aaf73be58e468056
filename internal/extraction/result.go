package extraction

import (
	"errors"
	"time"
)

// ErrNoResult indicates no extraction result exists for the document.
var ErrNoResult = errors.New("extraction result not found")

// Result is the extraction output for one document. At most one exists per
// document; re-running extraction overwrites it.
type Result struct {
	DocumentID string       `json:"documentId"`
	FullText   string       `json:"fullText"`
	Confidence float64      `json:"confidence"`
	Language   string       `json:"language"`
	PageCount  int          `json:"pageCount"`
	Pages      []ResultPage `json:"pages"`
	UpdatedAt  time.Time    `json:"updatedAt"`
}

// ResultPage is one page of the structured hierarchy.
type ResultPage struct {
	Number int           `json:"number"`
	Blocks []ResultBlock `json:"blocks"`
}

// ResultBlock groups paragraphs within a page.
type ResultBlock struct {
	Paragraphs []ResultParagraph `json:"paragraphs"`
}

// ResultParagraph carries its concatenated text and mean word confidence.
type ResultParagraph struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}
