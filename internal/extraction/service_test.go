package extraction

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"
)

type stubRecognizer struct {
	pages []PageAnnotation
	err   error
	calls int
}

func (s *stubRecognizer) Annotate(_ context.Context, _ []byte, _ string) ([]PageAnnotation, error) {
	s.calls++
	return s.pages, s.err
}

type stubStore struct {
	objects map[string][]byte
}

func (s *stubStore) Save(_ context.Context, _, _ string, _ io.Reader) (string, int64, string, error) {
	return "", 0, "", errors.New("not implemented")
}

func (s *stubStore) Open(_ context.Context, storageKey string) (io.ReadCloser, error) {
	data, ok := s.objects[storageKey]
	if !ok {
		return nil, fmt.Errorf("object %s not found", storageKey)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *stubStore) Delete(_ context.Context, _ string) error { return nil }

func (s *stubStore) Exists(_ context.Context, _ string) (bool, error) { return false, nil }
func (s *stubStore) SignedURL(_ context.Context, _ string, _ time.Duration) (string, error) {
	return "", nil
}
func (s *stubStore) PublicURL(_ string) string { return "" }

func page(lang string, conf float64, words ...string) PageAnnotation {
	paragraph := ParagraphAnnotation{}
	for _, w := range words {
		paragraph.Words = append(paragraph.Words, WordAnnotation{Text: w, Confidence: conf})
	}
	p := PageAnnotation{
		Blocks: []BlockAnnotation{{Paragraphs: []ParagraphAnnotation{paragraph}}},
	}
	if lang != "" {
		p.Languages = []LanguageHint{{Code: lang, Confidence: conf}}
	}
	return p
}

func TestExtractFromBytesAssemblesResult(t *testing.T) {
	rec := &stubRecognizer{pages: []PageAnnotation{
		page("eng", 0.9, "hello", "world"),
		page("eng", 0.7, "second", "page"),
		page("deu", 0.8, "hallo"),
	}}
	svc := &Service{Recognizer: rec, Repo: NewMemoryRepo()}

	result, err := svc.ExtractFromBytes(context.Background(), "doc-1", []byte("payload"), "image/png")
	if err != nil {
		t.Fatalf("ExtractFromBytes: %v", err)
	}

	if result.PageCount != 3 {
		t.Fatalf("expected 3 pages, got %d", result.PageCount)
	}
	if result.FullText != "hello world\n\nsecond page\n\nhallo" {
		t.Fatalf("unexpected full text: %q", result.FullText)
	}
	// Mean over 5 words: (0.9*2 + 0.7*2 + 0.8) / 5.
	want := (0.9*2 + 0.7*2 + 0.8) / 5
	if diff := result.Confidence - want; diff > 1e-9 || diff < -1e-9 {
		t.Fatalf("expected confidence %f, got %f", want, result.Confidence)
	}
	if result.Language != "eng" {
		t.Fatalf("expected dominant language eng, got %s", result.Language)
	}

	stored, err := svc.GetResult(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if stored.FullText != result.FullText {
		t.Fatalf("stored result differs from returned result")
	}
}

func TestExtractFromBytesOverwritesPreviousResult(t *testing.T) {
	rec := &stubRecognizer{pages: []PageAnnotation{page("eng", 0.5, "first")}}
	svc := &Service{Recognizer: rec, Repo: NewMemoryRepo()}

	if _, err := svc.ExtractFromBytes(context.Background(), "doc-1", nil, "image/png"); err != nil {
		t.Fatalf("first extract: %v", err)
	}

	rec.pages = []PageAnnotation{page("eng", 0.9, "second")}
	if _, err := svc.ExtractFromBytes(context.Background(), "doc-1", nil, "image/png"); err != nil {
		t.Fatalf("second extract: %v", err)
	}

	stored, err := svc.GetResult(context.Background(), "doc-1")
	if err != nil {
		t.Fatalf("GetResult: %v", err)
	}
	if stored.FullText != "second" {
		t.Fatalf("expected overwritten result, got %q", stored.FullText)
	}
}

func TestExtractFromBytesFailsOnEmptyRecognition(t *testing.T) {
	svc := &Service{Recognizer: &stubRecognizer{}, Repo: NewMemoryRepo()}

	_, err := svc.ExtractFromBytes(context.Background(), "doc-1", nil, "image/png")
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText, got %v", err)
	}
	if _, err := svc.GetResult(context.Background(), "doc-1"); !errors.Is(err, ErrNoResult) {
		t.Fatalf("failed extraction must not persist a result, got %v", err)
	}
}

func TestExtractFromBytesPropagatesRecognizerError(t *testing.T) {
	svc := &Service{
		Recognizer: &stubRecognizer{err: errors.New("engine crashed")},
		Repo:       NewMemoryRepo(),
	}

	if _, err := svc.ExtractFromBytes(context.Background(), "doc-1", nil, "image/png"); err == nil {
		t.Fatalf("expected recognizer error")
	}
}

func TestExtractFromLocatorReadsStoredBytes(t *testing.T) {
	rec := &stubRecognizer{pages: []PageAnnotation{page("eng", 1, "stored", "bytes")}}
	store := &stubStore{objects: map[string][]byte{"abc/file.txt": []byte("stored bytes")}}
	svc := &Service{Recognizer: rec, Repo: NewMemoryRepo(), Store: store}

	result, err := svc.ExtractFromLocator(context.Background(), "doc-1", "abc/file.txt", "text/plain")
	if err != nil {
		t.Fatalf("ExtractFromLocator: %v", err)
	}
	if result.FullText != "stored bytes" {
		t.Fatalf("unexpected full text: %q", result.FullText)
	}
	if rec.calls != 1 {
		t.Fatalf("expected one recognizer call, got %d", rec.calls)
	}
}

func TestExtractFromLocatorFailsOnMissingObject(t *testing.T) {
	svc := &Service{
		Recognizer: &stubRecognizer{},
		Repo:       NewMemoryRepo(),
		Store:      &stubStore{objects: map[string][]byte{}},
	}

	if _, err := svc.ExtractFromLocator(context.Background(), "doc-1", "gone", "text/plain"); err == nil {
		t.Fatalf("expected error for missing object")
	}
}

func TestAnnotateTextSplitsParagraphs(t *testing.T) {
	annotation := annotateText("first paragraph here\n\nsecond one")
	if len(annotation.Blocks) != 1 {
		t.Fatalf("expected one block, got %d", len(annotation.Blocks))
	}
	paragraphs := annotation.Blocks[0].Paragraphs
	if len(paragraphs) != 2 {
		t.Fatalf("expected two paragraphs, got %d", len(paragraphs))
	}
	if len(paragraphs[0].Words) != 3 || paragraphs[0].Words[0].Text != "first" {
		t.Fatalf("unexpected first paragraph: %+v", paragraphs[0])
	}
}
