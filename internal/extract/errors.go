package extract

import (
	"errors"
	"fmt"
	"time"
)

// ParseError reports a list item that yielded no usable deadline. The
// item is skipped; the rest of the harvest continues.
type ParseError struct {
	Month  time.Month
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	text := []rune(e.Text)
	if len(text) > 60 {
		text = append(text[:57], []rune("...")...)
	}
	return fmt.Sprintf("parse error (%s): %s: %q", e.Month, e.Reason, string(text))
}

// SourceStructureError indicates that the document had no month headings
// at all, so the run yields no candidates.
type SourceStructureError struct {
	Headings int
}

func (e *SourceStructureError) Error() string {
	return fmt.Sprintf("source structure error: no month sections among %d headings", e.Headings)
}

// IsSourceStructureError reports whether err (or any error in its chain)
// is a SourceStructureError.
func IsSourceStructureError(err error) bool {
	var structErr *SourceStructureError
	return errors.As(err, &structErr)
}
