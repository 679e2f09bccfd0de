// Package textstat holds the small text measurements shared by the builtin
// lexical analyzers: tokenization, lexicon hits and phrase counts.
package textstat

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}]+(?:['’][\p{L}]+)*`)

// Words splits text into word tokens, preserving case.
func Words(text string) []string {
	return wordPattern.FindAllString(text, -1)
}

// Lexicon is a case-insensitive set of single-word terms.
type Lexicon map[string]struct{}

// NewLexicon builds a lexicon from one or more term lists.
// Blank entries are ignored.
func NewLexicon(lists ...[]string) Lexicon {
	lex := make(Lexicon)
	for _, list := range lists {
		for _, term := range list {
			term = strings.ToLower(strings.TrimSpace(term))
			if term != "" {
				lex[term] = struct{}{}
			}
		}
	}
	return lex
}

// Hits counts tokens present in the lexicon and returns the distinct matches sorted.
func (l Lexicon) Hits(words []string) (int, []string) {
	count := 0
	seen := make(map[string]struct{})
	for _, w := range words {
		lw := strings.ToLower(w)
		if _, ok := l[lw]; ok {
			count++
			seen[lw] = struct{}{}
		}
	}
	return count, sortedKeys(seen)
}

// PhraseMatcher counts case-insensitive, word-bounded phrase occurrences.
type PhraseMatcher struct {
	pattern *regexp.Regexp
}

// NewPhraseMatcher compiles phrases into a single alternation.
// Returns a matcher that never matches when phrases is empty.
func NewPhraseMatcher(phrases []string) *PhraseMatcher {
	quoted := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		// Typographic apostrophes match like straight ones.
		q := regexp.QuoteMeta(strings.ToLower(p))
		q = strings.ReplaceAll(q, "'", "['’]")
		quoted = append(quoted, q)
	}
	if len(quoted) == 0 {
		return &PhraseMatcher{}
	}
	// Longest first so the alternation prefers the full phrase.
	sort.SliceStable(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })
	return &PhraseMatcher{
		pattern: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
	}
}

// Count returns the number of matches and the distinct matched phrases (lower-cased, sorted).
func (m *PhraseMatcher) Count(text string) (int, []string) {
	if m == nil || m.pattern == nil {
		return 0, nil
	}
	matches := m.pattern.FindAllString(text, -1)
	seen := make(map[string]struct{}, len(matches))
	for _, match := range matches {
		seen[strings.ReplaceAll(strings.ToLower(match), "’", "'")] = struct{}{}
	}
	return len(matches), sortedKeys(seen)
}

// IsShouting reports whether a token is an all-caps word of at least minLen letters.
func IsShouting(word string, minLen int) bool {
	letters := 0
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= minLen
}

// Percent returns part/total*100, or 0 when total is zero.
func Percent(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(part) / float64(total) * 100
}

// Penalty scales value by factor and caps the result at max.
func Penalty(value, factor, max float64) float64 {
	p := value * factor
	if p > max {
		return max
	}
	if p < 0 {
		return 0
	}
	return p
}

func sortedKeys(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
