package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"golang.org/x/net/html"
)

// AuthError indicates that authentication has failed or expired for a source.
// It is returned by source clients when a 401 or 403 response is received.
type AuthError struct {
	SourceType SourceType
	Message    string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth error (%s): %s", e.SourceType, e.Message)
}

// IsAuthError reports whether err (or any error in its chain) is an AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// SourceType identifies the kind of document source.
type SourceType string

const (
	SourceTypeWeb  SourceType = "web"
	SourceTypeFile SourceType = "file"
)

// Document is a parsed deadline page.
type Document struct {
	// URL is the address relative links are resolved against. It may be
	// empty for local documents.
	URL string

	Root      *html.Node
	FetchedAt time.Time
}

// Year returns the calendar year the document was fetched in, which is
// the default year for dates without one.
func (d *Document) Year(loc *time.Location) int {
	if loc == nil {
		loc = time.Local
	}
	return d.FetchedAt.In(loc).Year()
}

// Source defines the contract for anything that yields a deadline page.
type Source interface {
	// Type returns the source type identifier.
	Type() SourceType

	// ValidateConnection verifies credentials and connectivity.
	// Returns a human-readable status message on success.
	ValidateConnection(ctx context.Context) (string, error)

	// Fetch retrieves and parses the current document.
	Fetch(ctx context.Context) (*Document, error)
}

// Parse reads an HTML document from r.
func Parse(r io.Reader, url string, fetchedAt time.Time) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parsing html: %w", err)
	}
	return &Document{URL: url, Root: root, FetchedAt: fetchedAt}, nil
}
