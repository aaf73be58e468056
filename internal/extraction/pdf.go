package extraction

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFRecognizer reads the embedded text layer of a PDF. Scanned PDFs without
// a text layer yield no pages, which the extraction service reports as a
// failure rather than an empty success.
type PDFRecognizer struct{}

func (p *PDFRecognizer) Annotate(ctx context.Context, data []byte, _ string) ([]PageAnnotation, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	var pages []PageAnnotation
	for i := 1; i <= reader.NumPage(); i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("read page %d: %w", i, err)
		}
		annotation := annotateText(text)
		if len(annotation.Blocks) == 0 {
			continue
		}
		pages = append(pages, annotation)
	}
	return pages, nil
}

// annotateText shapes plain text into the page hierarchy. Paragraphs split
// on blank lines; every word carries full confidence since nothing was
// recognized optically.
func annotateText(text string) PageAnnotation {
	block := BlockAnnotation{}
	for _, chunk := range strings.Split(text, "\n\n") {
		words := strings.Fields(chunk)
		if len(words) == 0 {
			continue
		}
		paragraph := ParagraphAnnotation{Words: make([]WordAnnotation, 0, len(words))}
		for _, word := range words {
			paragraph.Words = append(paragraph.Words, WordAnnotation{Text: word, Confidence: 1})
		}
		block.Paragraphs = append(block.Paragraphs, paragraph)
	}
	if len(block.Paragraphs) == 0 {
		return PageAnnotation{}
	}
	return PageAnnotation{Blocks: []BlockAnnotation{block}}
}

var _ Recognizer = (*PDFRecognizer)(nil)
