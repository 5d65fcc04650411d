package docstore

import (
	"strings"
	"testing"
)

func TestBuildSnippetEmptyBodyReturnsTitle(t *testing.T) {
	if got := BuildSnippet("", "fox", "notes.md"); got != "notes.md" {
		t.Errorf("got %q, want title", got)
	}
	if got := BuildSnippet("   \n\t ", "fox", "notes.md"); got != "notes.md" {
		t.Errorf("whitespace body: got %q, want title", got)
	}
}

func TestBuildSnippetShortBody(t *testing.T) {
	body := "the quick brown fox"
	if got := BuildSnippet(body, "fox", "t"); got != body {
		t.Errorf("got %q, want whole body", got)
	}
}

func TestBuildSnippetCentersOnMatch(t *testing.T) {
	body := strings.Repeat("x ", 200) + "quick brown fox jumps" + strings.Repeat(" y", 200)
	got := BuildSnippet(body, "FOX", "t")

	if !strings.Contains(got, "fox") {
		t.Fatalf("snippet %q does not contain the match", got)
	}
	if !strings.HasPrefix(got, ellipsis) || !strings.HasSuffix(got, ellipsis) {
		t.Errorf("snippet %q should be clipped on both edges", got)
	}
	if n := len([]rune(got)); n > SnippetWindow+2 {
		t.Errorf("snippet length = %d runes, want at most %d", n, SnippetWindow+2)
	}
}

func TestBuildSnippetTitleOnlyMatch(t *testing.T) {
	body := strings.Repeat("lorem ipsum ", 50)
	got := BuildSnippet(body, "fox", "fox.md")

	if !strings.HasPrefix(got, "lorem ipsum") {
		t.Errorf("got %q, want leading slice of body", got)
	}
	if !strings.HasSuffix(got, ellipsis) {
		t.Errorf("got %q, want trailing ellipsis on clipped body", got)
	}
}

func TestBuildSnippetCollapsesWhitespace(t *testing.T) {
	got := BuildSnippet("alpha\n\nbeta\t\tgamma", "beta", "t")
	if got != "alpha beta gamma" {
		t.Errorf("got %q, want single-spaced text", got)
	}
}

func TestBuildSnippetMatchNearEnd(t *testing.T) {
	body := strings.Repeat("pad ", 100) + "needle"
	got := BuildSnippet(body, "needle", "t")

	if !strings.HasSuffix(got, "needle") {
		t.Errorf("got %q, want window pulled back to include the end", got)
	}
	if !strings.HasPrefix(got, ellipsis) {
		t.Errorf("got %q, want leading ellipsis", got)
	}
}
