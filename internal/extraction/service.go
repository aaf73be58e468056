package extraction

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"docs-backend/internal/shared/metrics"
	"docs-backend/internal/shared/storage/object"
	"docs-backend/internal/shared/telemetry"
)

// ErrNoText indicates the recognizer produced no usable output for the
// document. This counts as a processing failure and is retryable.
var ErrNoText = errors.New("no text recognized")

// Service runs recognition and persists assembled results.
type Service struct {
	Recognizer Recognizer
	Repo       Repo
	Store      object.ObjectStore

	// Timeout bounds a single recognition run. Zero means no bound.
	Timeout time.Duration
}

// ExtractFromBytes recognizes the payload, assembles the result, and
// persists it, replacing any earlier result for the document.
func (s *Service) ExtractFromBytes(ctx context.Context, documentID string, data []byte, mimeType string) (Result, error) {
	metrics.IncExtractionStarted()
	started := time.Now()

	runCtx := ctx
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	pages, err := s.Recognizer.Annotate(runCtx, data, mimeType)
	if err != nil {
		metrics.IncExtractionFailed()
		return Result{}, fmt.Errorf("annotate %s: %w", documentID, err)
	}
	if len(pages) == 0 {
		metrics.IncExtractionFailed()
		return Result{}, fmt.Errorf("%w for document %s", ErrNoText, documentID)
	}

	result := assemble(documentID, pages)
	if err := s.Repo.Upsert(ctx, result); err != nil {
		metrics.IncExtractionFailed()
		return Result{}, fmt.Errorf("persist result for %s: %w", documentID, err)
	}

	elapsed := time.Since(started)
	metrics.IncExtractionCompleted()
	metrics.ObserveExtractionDurationMs(float64(elapsed.Milliseconds()))
	telemetry.Info("extraction.completed", map[string]any{
		"document_id": documentID,
		"page_count":  result.PageCount,
		"confidence":  result.Confidence,
		"language":    result.Language,
		"duration_ms": elapsed.Milliseconds(),
	})
	return result, nil
}

// ExtractFromLocator loads the stored bytes and runs ExtractFromBytes.
func (s *Service) ExtractFromLocator(ctx context.Context, documentID, storageKey, mimeType string) (Result, error) {
	reader, err := s.Store.Open(ctx, storageKey)
	if err != nil {
		metrics.IncExtractionFailed()
		return Result{}, fmt.Errorf("open %s: %w", storageKey, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		metrics.IncExtractionFailed()
		return Result{}, fmt.Errorf("read %s: %w", storageKey, err)
	}
	return s.ExtractFromBytes(ctx, documentID, data, mimeType)
}

// GetResult returns the persisted result for a document.
func (s *Service) GetResult(ctx context.Context, documentID string) (Result, error) {
	return s.Repo.GetByDocument(ctx, documentID)
}

// assemble flattens page annotations into the persisted result shape.
func assemble(documentID string, pages []PageAnnotation) Result {
	var (
		pageTexts []string
		out       []ResultPage
		confSum   float64
		confCount int
		langVotes = map[string]int{}
	)

	for i, page := range pages {
		resultPage := ResultPage{Number: i + 1}
		var blockTexts []string

		for _, block := range page.Blocks {
			resultBlock := ResultBlock{}
			var paragraphTexts []string

			for _, paragraph := range block.Paragraphs {
				words := make([]string, 0, len(paragraph.Words))
				var sum float64
				for _, word := range paragraph.Words {
					words = append(words, word.Text)
					sum += word.Confidence
					confSum += word.Confidence
					confCount++
				}
				text := strings.Join(words, " ")
				conf := 0.0
				if len(paragraph.Words) > 0 {
					conf = sum / float64(len(paragraph.Words))
				}
				resultBlock.Paragraphs = append(resultBlock.Paragraphs, ResultParagraph{Text: text, Confidence: conf})
				paragraphTexts = append(paragraphTexts, text)
			}

			resultPage.Blocks = append(resultPage.Blocks, resultBlock)
			blockTexts = append(blockTexts, strings.Join(paragraphTexts, "\n"))
		}

		out = append(out, resultPage)
		pageTexts = append(pageTexts, strings.Join(blockTexts, "\n"))

		if len(page.Languages) > 0 && page.Languages[0].Code != "" {
			langVotes[page.Languages[0].Code]++
		}
	}

	confidence := 0.0
	if confCount > 0 {
		confidence = confSum / float64(confCount)
	}

	language := "unknown"
	best := 0
	for code, votes := range langVotes {
		if votes > best || (votes == best && code < language) {
			language = code
			best = votes
		}
	}

	return Result{
		DocumentID: documentID,
		FullText:   strings.Join(pageTexts, "\n\n"),
		Confidence: confidence,
		Language:   language,
		PageCount:  len(pages),
		Pages:      out,
		UpdatedAt:  time.Now().UTC(),
	}
}
