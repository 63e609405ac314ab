// Package extract turns a published deadline page into candidate
// deadline records: it locates month sections, parses free-text dates and
// classifies each list item.
package extract

import (
	"iter"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// monthNames maps lowercase month names and abbreviations to months.
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may": time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// MonthFromName returns the month for a case-insensitive month name or
// three-letter abbreviation.
func MonthFromName(name string) (time.Month, bool) {
	m, ok := monthNames[strings.ToLower(strings.TrimSpace(name))]
	return m, ok
}

var (
	headingSelector = cascadia.MustCompile("h1, h2, h3, h4, h5, h6")
	itemSelector    = cascadia.MustCompile("li")
	linkSelector    = cascadia.MustCompile("a[href]")
)

// Item is one raw list entry under a month heading.
type Item struct {
	Text string
	Href string
}

// Section groups the list items found under one month heading.
type Section struct {
	Month   time.Month
	Heading string
	Items   []Item
}

// Sections returns a lazy sequence over the month sections of doc. Each
// iteration walks the document afresh, so the sequence can be ranged over
// any number of times.
func Sections(doc *html.Node) iter.Seq[Section] {
	return func(yield func(Section) bool) {
		if doc == nil {
			return
		}
		for _, heading := range headingSelector.MatchAll(doc) {
			text := nodeText(heading)
			month, ok := headingMonth(text)
			if !ok {
				continue
			}

			sec := Section{Month: month, Heading: text}
			if list := nextList(heading); list != nil {
				sec.Items = listItems(list)
			}
			if !yield(sec) {
				return
			}
		}
	}
}

// LocateSections collects every month section of doc.
func LocateSections(doc *html.Node) []Section {
	return slices.Collect(Sections(doc))
}

// headingMonth accepts a heading consisting of a month name, optionally
// followed by a four-digit year ("June", "JUNE 2025", "Sept.").
func headingMonth(text string) (time.Month, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, false
	}
	if len(fields) == 2 && !isYear(fields[1]) {
		return 0, false
	}
	return MonthFromName(strings.TrimFunc(fields[0], unicode.IsPunct))
}

func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// nextList walks the following siblings of heading and returns the first
// list element, or nil when another heading or the end comes first.
func nextList(heading *html.Node) *html.Node {
	for n := heading.NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.ElementNode {
			continue
		}
		switch n.DataAtom {
		case atom.Ul, atom.Ol:
			return n
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			return nil
		}
	}
	return nil
}

// listItems extracts the text and first link of every li under list.
func listItems(list *html.Node) []Item {
	var items []Item
	for _, li := range itemSelector.MatchAll(list) {
		item := Item{Text: nodeText(li)}
		if a := linkSelector.MatchFirst(li); a != nil {
			item.Href = strings.TrimSpace(attr(a, "href"))
		}
		items = append(items, item)
	}
	return items
}

// nodeText concatenates the text beneath n and collapses whitespace.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
