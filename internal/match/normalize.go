// Package match decides whether a freshly extracted deadline is new, a
// recurrence of a stored one, or a near duplicate of one.
package match

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	monthAlt = `(?:january|february|march|april|may|june|july|august|september|october|november|december|sept|jan|feb|mar|apr|jun|jul|aug|sep|oct|nov|dec)\.?`
	dayAlt   = `\d{1,2}(?:st|nd|rd|th)?`
	yearAlt  = `(?:,?\s*\d{4})?`
)

// datePatterns are removed, in order, from lowercased text.
var datePatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:by|due|before|after|on|until)\s+` + monthAlt + `\s+` + dayAlt + yearAlt + `\b`),
	regexp.MustCompile(`\b` + monthAlt + `\s+` + dayAlt + yearAlt + `(?:\s*[-–]\s*(?:` + monthAlt + `\s+)?` + dayAlt + yearAlt + `)?\b`),
	regexp.MustCompile(`\b\d{1,2}/\d{1,2}(?:/\d{2,4})?(?:\s*[-–]\s*\d{1,2}/\d{1,2}(?:/\d{2,4})?)?\b`),
	regexp.MustCompile(`\b\d{1,2}\s*[-–]\s*\d{1,2}\b`),
	regexp.MustCompile(`\b\d{4}\b`),
}

// defaultFiller are words that phrase a deadline without naming it.
var defaultFiller = []string{
	"submit", "due", "deadline", "complete", "by", "before", "after",
	"until", "on", "the", "your", "a", "an",
}

// Normalizer reduces titles and descriptions to a date-free form.
type Normalizer struct {
	filler map[string]struct{}
}

// NewNormalizer returns a Normalizer that drops the given filler words
// from titles. With no words, the stock filler list is used.
func NewNormalizer(filler ...string) *Normalizer {
	if len(filler) == 0 {
		filler = defaultFiller
	}
	n := &Normalizer{filler: make(map[string]struct{}, len(filler))}
	for _, w := range filler {
		n.filler[strings.ToLower(w)] = struct{}{}
	}
	return n
}

// StripDates lowercases s and removes date-like substrings.
func StripDates(s string) string {
	s = strings.ToLower(s)
	for _, re := range datePatterns {
		s = re.ReplaceAllString(s, " ")
	}
	return s
}

// Title returns the normalized form of a title: dates stripped, filler
// words dropped, punctuation trimmed from each word, lowercased.
func (n *Normalizer) Title(title string) string {
	words := strings.Fields(StripDates(title))
	kept := words[:0]
	for _, w := range words {
		w = strings.TrimFunc(w, isPunct)
		if w == "" {
			continue
		}
		if _, ok := n.filler[w]; ok {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// DescriptionSimilarity is the Jaccard similarity of the word sets of
// a and b after date stripping. Two empty descriptions are identical;
// one empty description shares nothing with a non-empty one.
func DescriptionSimilarity(a, b string) float64 {
	wa, wb := wordSet(a), wordSet(b)
	switch {
	case len(wa) == 0 && len(wb) == 0:
		return 1
	case len(wa) == 0 || len(wb) == 0:
		return 0
	}

	inter := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			inter++
		}
	}
	union := len(wa) + len(wb) - inter
	return float64(inter) / float64(union)
}

func wordSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(StripDates(s)) {
		set[w] = struct{}{}
	}
	return set
}

func isPunct(r rune) bool {
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}
