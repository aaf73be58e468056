package extraction

import (
	"context"
	"fmt"
	"strings"
)

// CompositeRecognizer routes by MIME type: images go through OCR, PDFs
// through the text-layer reader, and plain text is annotated directly.
type CompositeRecognizer struct {
	Images Recognizer
	PDF    Recognizer
}

// NewCompositeRecognizer builds the default routing over the given
// sub-recognizers.
func NewCompositeRecognizer(images, pdf Recognizer) *CompositeRecognizer {
	return &CompositeRecognizer{Images: images, PDF: pdf}
}

func (c *CompositeRecognizer) Annotate(ctx context.Context, data []byte, mimeType string) ([]PageAnnotation, error) {
	switch {
	case strings.HasPrefix(mimeType, "image/"):
		return c.Images.Annotate(ctx, data, mimeType)
	case mimeType == "application/pdf":
		return c.PDF.Annotate(ctx, data, mimeType)
	case strings.HasPrefix(mimeType, "text/"):
		annotation := annotateText(string(data))
		if len(annotation.Blocks) == 0 {
			return nil, nil
		}
		return []PageAnnotation{annotation}, nil
	default:
		return nil, fmt.Errorf("unsupported mime type %q", mimeType)
	}
}

var _ Recognizer = (*CompositeRecognizer)(nil)
