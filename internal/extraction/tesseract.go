package extraction

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractRecognizer annotates raster images with Tesseract. Each input
// image produces exactly one page annotation.
type TesseractRecognizer struct {
	// Languages are Tesseract language codes, e.g. "eng", "deu".
	Languages []string
}

// NewTesseractRecognizer constructs a recognizer for the given languages.
// An empty list falls back to English.
func NewTesseractRecognizer(languages []string) *TesseractRecognizer {
	if len(languages) == 0 {
		languages = []string{"eng"}
	}
	return &TesseractRecognizer{Languages: languages}
}

func (t *TesseractRecognizer) Annotate(ctx context.Context, data []byte, _ string) ([]PageAnnotation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Languages...); err != nil {
		return nil, fmt.Errorf("set languages: %w", err)
	}
	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("load image: %w", err)
	}

	boxes, err := client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("recognize: %w", err)
	}
	if len(boxes) == 0 {
		return nil, nil
	}

	page := PageAnnotation{}
	var (
		block        *BlockAnnotation
		paragraph    *ParagraphAnnotation
		curBlock     = -1
		curParagraph = -1
		sum          float64
		count        int
	)
	flushParagraph := func() {
		if paragraph != nil && len(paragraph.Words) > 0 {
			block.Paragraphs = append(block.Paragraphs, *paragraph)
		}
		paragraph = &ParagraphAnnotation{}
	}
	flushBlock := func() {
		if block != nil {
			flushParagraph()
			if len(block.Paragraphs) > 0 {
				page.Blocks = append(page.Blocks, *block)
			}
		}
		block = &BlockAnnotation{}
		paragraph = &ParagraphAnnotation{}
	}

	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		if box.BlockNum != curBlock {
			flushBlock()
			curBlock = box.BlockNum
			curParagraph = box.ParNum
		} else if box.ParNum != curParagraph {
			flushParagraph()
			curParagraph = box.ParNum
		}
		// Tesseract reports confidence on a 0..100 scale.
		conf := box.Confidence / 100
		paragraph.Words = append(paragraph.Words, WordAnnotation{Text: box.Word, Confidence: conf})
		sum += conf
		count++
	}
	flushBlock()

	if len(page.Blocks) == 0 {
		return nil, nil
	}
	hint := LanguageHint{Code: t.Languages[0]}
	if count > 0 {
		hint.Confidence = sum / float64(count)
	}
	page.Languages = []LanguageHint{hint}
	return []PageAnnotation{page}, nil
}

var _ Recognizer = (*TesseractRecognizer)(nil)
