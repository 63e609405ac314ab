package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileSourceFetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dates.html")
	page := `<html><body><h3>June</h3><ul><li>Tuition payment due June 4</li></ul></body></html>`
	if err := os.WriteFile(path, []byte(page), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	src := NewFileSource(path, "https://example.edu/dates")
	fixed := time.Date(2025, time.May, 1, 12, 0, 0, 0, time.UTC)
	src.now = func() time.Time { return fixed }

	if src.Type() != SourceTypeFile {
		t.Errorf("type = %s, want file", src.Type())
	}
	if _, err := src.ValidateConnection(context.Background()); err != nil {
		t.Fatalf("ValidateConnection: %v", err)
	}

	doc, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if doc.Root == nil {
		t.Fatal("document has no root")
	}
	if doc.URL != "https://example.edu/dates" {
		t.Errorf("url = %q", doc.URL)
	}
	if got := doc.Year(time.UTC); got != 2025 {
		t.Errorf("year = %d, want 2025", got)
	}
}

func TestFileSourceMissing(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.html"), "")
	if _, err := src.ValidateConnection(context.Background()); err == nil {
		t.Error("ValidateConnection succeeded for a missing file")
	}
	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("Fetch succeeded for a missing file")
	}
}

func TestIsAuthError(t *testing.T) {
	err := fmt.Errorf("fetching: %w", &AuthError{SourceType: SourceTypeWeb, Message: "token expired"})
	if !IsAuthError(err) {
		t.Error("wrapped AuthError not detected")
	}
	if IsAuthError(fmt.Errorf("other")) {
		t.Error("plain error detected as AuthError")
	}
}
