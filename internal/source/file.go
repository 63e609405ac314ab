package source

import (
	"context"
	"fmt"
	"os"
	"time"
)

// FileSource reads a saved copy of the deadline page from disk.
type FileSource struct {
	path    string
	baseURL string
	now     func() time.Time
}

// NewFileSource returns a source for the HTML file at path. Relative
// links are resolved against baseURL when it is set.
func NewFileSource(path, baseURL string) *FileSource {
	return &FileSource{path: path, baseURL: baseURL, now: time.Now}
}

// Type implements Source.
func (s *FileSource) Type() SourceType { return SourceTypeFile }

// ValidateConnection checks that the file is readable.
func (s *FileSource) ValidateConnection(_ context.Context) (string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return "", fmt.Errorf("checking %s: %w", s.path, err)
	}
	return fmt.Sprintf("%s (%d bytes)", s.path, info.Size()), nil
}

// Fetch parses the file. The modification time is not used; FetchedAt
// is the time of the call.
func (s *FileSource) Fetch(ctx context.Context) (*Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", s.path, err)
	}
	defer f.Close()

	return Parse(f, s.baseURL, s.now())
}
