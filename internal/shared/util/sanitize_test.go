package util

import (
	"strings"
	"testing"
)

func TestSanitizeFileNameKeepsSafeNames(t *testing.T) {
	got, err := SanitizeFileName("report-2024_v2.pdf")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "report-2024_v2.pdf" {
		t.Fatalf("expected unchanged name, got %s", got)
	}
}

func TestSanitizeFileNameNeutralizesTraversal(t *testing.T) {
	got, err := SanitizeFileName("../../etc/passwd")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if strings.Contains(got, "..") || strings.Contains(got, "/") {
		t.Fatalf("traversal sequence survived: %s", got)
	}
}

func TestSanitizeFileNameReplacesDisallowedRunes(t *testing.T) {
	got, err := SanitizeFileName("my résumé.pdf")
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if got != "my_r_sum_.pdf" {
		t.Fatalf("expected my_r_sum_.pdf, got %s", got)
	}
}

func TestSanitizeFileNameRejectsEmptyResults(t *testing.T) {
	for _, name := range []string{"", "   ", "..."} {
		if _, err := SanitizeFileName(name); err == nil {
			t.Fatalf("expected error for %q", name)
		}
	}
}

func TestSanitizeFileNameTruncatesKeepingExtension(t *testing.T) {
	long := strings.Repeat("a", 200) + ".pdf"
	got, err := SanitizeFileName(long)
	if err != nil {
		t.Fatalf("SanitizeFileName: %v", err)
	}
	if len(got) > 160 {
		t.Fatalf("expected at most 160 chars, got %d", len(got))
	}
	if !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("expected .pdf suffix, got %s", got)
	}
}

func TestHashUserKeyIsStableAndOpaque(t *testing.T) {
	a := HashUserKey("user-1")
	b := HashUserKey("user-1")
	if a != b {
		t.Fatalf("hash not stable: %s vs %s", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("expected 16 hex chars, got %d", len(a))
	}
	if a == HashUserKey("user-2") {
		t.Fatalf("distinct users collided")
	}
	if HashUserKey("") != HashUserKey("anonymous") {
		t.Fatalf("empty id should share the anonymous namespace")
	}
}
