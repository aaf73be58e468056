package extraction

import "context"

// Recognizer is the external text-recognition capability. Implementations
// are injected at construction time; the pipeline never constructs one at
// call time.
type Recognizer interface {
	// Annotate turns raw bytes into per-page annotations. An empty slice
	// means the recognizer found no text and is treated as a failure by the
	// extraction service.
	Annotate(ctx context.Context, data []byte, mimeType string) ([]PageAnnotation, error)
}

// PageAnnotation is one recognized page: a block/paragraph/word hierarchy
// plus language hints.
type PageAnnotation struct {
	Blocks    []BlockAnnotation
	Languages []LanguageHint
}

// BlockAnnotation groups paragraphs that belong together on the page.
type BlockAnnotation struct {
	Paragraphs []ParagraphAnnotation
}

// ParagraphAnnotation is an ordered run of recognized words.
type ParagraphAnnotation struct {
	Words []WordAnnotation
}

// WordAnnotation is a single recognized word with its confidence in [0,1].
type WordAnnotation struct {
	Text       string
	Confidence float64
}

// LanguageHint is a detected language code with its detection confidence.
type LanguageHint struct {
	Code       string
	Confidence float64
}
