// Package profanity detects profane words in a transcript and merges nearby
// occurrences into censorship spans.
package profanity

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Term is a canonical lowercase profanity term together with its
// case-insensitive match pattern.
type Term struct {
	Text    string
	pattern *regexp.Regexp
}

// NewTerm builds a Term from arbitrary user input. Matching is
// case-insensitive and bounded at whole words, so a term never matches as a
// substring of a longer word.
func NewTerm(text string) Term {
	canonical := strings.ToLower(strings.TrimSpace(text))
	return Term{
		Text:    canonical,
		pattern: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(canonical)),
	}
}

// isWordRune reports whether r can be part of a word. The alphabet matches
// token normalization: letters, digits, underscore, apostrophe.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\''
}

// Occurrences returns the [start, end) byte ranges where the term appears in
// text as a whole word. Regexp \b only understands ASCII word characters, so
// the boundary runes are checked by hand against the full Unicode alphabet;
// otherwise a term ending in an accented letter would never match.
func (t Term) Occurrences(text string) [][]int {
	var spans [][]int
	for _, loc := range t.pattern.FindAllStringIndex(text, -1) {
		if before, _ := utf8.DecodeLastRuneInString(text[:loc[0]]); isWordRune(before) {
			continue
		}
		if after, _ := utf8.DecodeRuneInString(text[loc[1]:]); isWordRune(after) {
			continue
		}
		spans = append(spans, loc)
	}
	return spans
}

// Mask replaces every whole-word occurrence of the term in text.
func (t Term) Mask(text, mask string) string {
	spans := t.Occurrences(text)
	if len(spans) == 0 {
		return text
	}
	var b strings.Builder
	prev := 0
	for _, loc := range spans {
		b.WriteString(text[prev:loc[0]])
		b.WriteString(mask)
		prev = loc[1]
	}
	b.WriteString(text[prev:])
	return b.String()
}

// LoadTerms converts a list of words into Terms, dropping empty entries.
func LoadTerms(words []string) []Term {
	terms := make([]Term, 0, len(words))
	for _, word := range words {
		word = strings.ToLower(strings.TrimSpace(word))
		if word == "" {
			continue
		}
		terms = append(terms, NewTerm(word))
	}
	return terms
}

// Hit is a single detected profanity occurrence, before merging.
type Hit struct {
	Word       string  `json:"word"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context"`
	SegmentID  int     `json:"segment_id"`
	ChunkIndex int     `json:"chunk_index"`
}

// Span is a merged censorship interval covering one or more nearby hits.
// Start is the minimum hit start and End the maximum hit end.
type Span struct {
	Start         float64
	End           float64
	Hits          []Hit
	MaxConfidence float64
}

// BestHit returns the highest-confidence hit in the span.
func (s Span) BestHit() (Hit, bool) {
	if len(s.Hits) == 0 {
		return Hit{}, false
	}
	best := s.Hits[0]
	for _, h := range s.Hits[1:] {
		if h.Confidence > best.Confidence {
			best = h
		}
	}
	return best, true
}

// RepresentativeWord is the word of the highest-confidence hit.
func (s Span) RepresentativeWord() string {
	best, ok := s.BestHit()
	if !ok {
		return ""
	}
	return best.Word
}
