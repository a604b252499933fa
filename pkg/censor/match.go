package censor

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// matcher finds whole-word, case-insensitive occurrences of a literal word.
// Go's \b only knows ASCII word characters, so boundaries are checked here
// against Unicode letters, marks, digits and connector punctuation.
type matcher struct {
	re *regexp.Regexp
}

func newMatcher(word string) *matcher {
	return &matcher{re: regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))}
}

// scan calls fn with the byte offsets of each whole-word occurrence in s
// until fn returns false.
func (m *matcher) scan(s string, fn func(start, end int) bool) {
	for pos := 0; pos < len(s); {
		loc := m.re.FindStringIndex(s[pos:])
		if loc == nil || loc[0] == loc[1] {
			return
		}

		start, end := pos+loc[0], pos+loc[1]
		if isBoundary(s, start) && isBoundary(s, end) {
			if !fn(start, end) {
				return
			}
			pos = end
			continue
		}

		// An occurrence that fails the boundary check may still overlap a
		// valid one, so resume right after its first rune.
		_, size := utf8.DecodeRuneInString(s[start:])
		pos = start + size
	}
}

func (m *matcher) match(s string) bool {
	found := false
	m.scan(s, func(_, _ int) bool {
		found = true
		return false
	})
	return found
}

func (m *matcher) replace(s string, repl func(string) string) string {
	var b strings.Builder
	last, n := 0, 0
	m.scan(s, func(start, end int) bool {
		b.WriteString(s[last:start])
		b.WriteString(repl(s[start:end]))
		last = end
		n++
		return true
	})
	if n == 0 {
		return s
	}

	b.WriteString(s[last:])
	return b.String()
}

// isBoundary reports whether offset i of s sits between a word rune and a
// non-word rune, the way \b does.
func isBoundary(s string, i int) bool {
	before, after := false, false
	if i > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:i])
		before = isWordRune(r)
	}
	if i < len(s) {
		r, _ := utf8.DecodeRuneInString(s[i:])
		after = isWordRune(r)
	}
	return before != after
}

func isWordRune(r rune) bool {
	return unicode.In(r, unicode.L, unicode.M, unicode.Nd, unicode.Pc)
}
