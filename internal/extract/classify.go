package extract

import (
	"regexp"
	"strings"

	"github.com/nhle/deadline-harvester/internal/model"
)

// CategoryKeywords lists the keywords that select one category.
type CategoryKeywords struct {
	Category model.Category
	Keywords []string
}

// Lexicon is the keyword configuration of a Classifier. Categories are
// checked in slice order.
type Lexicon struct {
	Categories []CategoryKeywords
	Critical   []string
}

// DefaultLexicon returns the stock category and criticality tables.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Categories: []CategoryKeywords{
			{model.CategoryMedical, []string{"medical", "health", "vaccination", "immunization"}},
			{model.CategoryAcademic, []string{"academic", "transcript", "fee", "essay", "test", "exam", "ap", "ib"}},
			{model.CategoryHousing, []string{"housing", "residence", "room", "dorm"}},
			{model.CategoryFinancial, []string{"tuition", "payment", "bill", "financial", "meal plan"}},
			{model.CategoryOrientation, []string{"orientation", "fpop", "pre-orientation", "arrival"}},
			{model.CategoryAdministrative, []string{"emergency contact", "websis", "kerberos", "id photo"}},
			{model.CategoryRegistration, []string{"registration", "sign up", "application"}},
		},
		Critical: []string{
			"must", "required", "mandatory", "deadline", "due",
			"final", "important", "critical", "essential",
		},
	}
}

// keyword is a compiled lexicon entry.
type keyword struct {
	text string
	word *regexp.Regexp // set for short keywords that must match a whole word
}

// shortKeywordLen is the length at or below which a keyword only matches
// as a whole word, so that "ap" does not match "application".
const shortKeywordLen = 2

func compileKeyword(kw string) keyword {
	kw = strings.ToLower(strings.TrimSpace(kw))
	k := keyword{text: kw}
	if len(kw) <= shortKeywordLen {
		k.word = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return k
}

func (k keyword) in(lower string) bool {
	if k.word != nil {
		return k.word.MatchString(lower)
	}
	return strings.Contains(lower, k.text)
}

type categoryRule struct {
	category model.Category
	keywords []keyword
}

// Classifier assigns a category and a criticality flag from keywords.
// It is immutable and safe for concurrent use.
type Classifier struct {
	rules    []categoryRule
	critical []keyword
}

// NewClassifier compiles lex into a Classifier.
func NewClassifier(lex Lexicon) *Classifier {
	c := &Classifier{}
	for _, ck := range lex.Categories {
		rule := categoryRule{category: ck.Category}
		for _, kw := range ck.Keywords {
			rule.keywords = append(rule.keywords, compileKeyword(kw))
		}
		c.rules = append(c.rules, rule)
	}
	for _, kw := range lex.Critical {
		c.critical = append(c.critical, compileKeyword(kw))
	}
	return c
}

// Category returns the first category, in lexicon order, with a keyword
// present in text, or CategoryGeneral.
func (c *Classifier) Category(text string) model.Category {
	lower := strings.ToLower(text)
	for _, rule := range c.rules {
		for _, kw := range rule.keywords {
			if kw.in(lower) {
				return rule.category
			}
		}
	}
	return model.CategoryGeneral
}

// IsCritical reports whether text contains any criticality keyword.
func (c *Classifier) IsCritical(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range c.critical {
		if kw.in(lower) {
			return true
		}
	}
	return false
}
