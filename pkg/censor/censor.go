// Important notice: test cases in this package contain examples of explicit
// language required for pattern validation. They are technical test
// artifacts only.

// Package censor provides lexical content filtering and validation.
package censor

import (
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"profanity/pkg/dictionary"
)

type entry struct {
	word string

	lower      *matcher // word lowercased, used by default
	exact      *matcher // word as written, used when CaseSensitive is set
	normalized *matcher // Normalize(word)
}

type table []entry

// Censor moderates text against the word lists of one dictionary store.
// Matchers are compiled once in New; a Censor is safe for concurrent use.
type Censor struct {
	store    *dictionary.Store
	tables   map[dictionary.Language]table
	fallback table
}

// New compiles matchers for every list of store.
func New(store *dictionary.Store) *Censor {
	c := &Censor{
		store:    store,
		tables:   make(map[dictionary.Language]table),
		fallback: compile(store.Fallback()),
	}
	for _, lang := range store.Languages() {
		c.tables[lang] = compile(store.Lookup(lang))
	}

	return c
}

func compile(words dictionary.WordList) table {
	t := make(table, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}

		lower := strings.ToLower(w)
		e := entry{word: w, lower: newMatcher(lower)}

		e.exact = e.lower
		if w != lower {
			e.exact = newMatcher(w)
		}
		e.normalized = e.lower
		if n := Normalize(w); n != lower {
			e.normalized = newMatcher(n)
		}

		t = append(t, e)
	}
	return t
}

// Store returns the dictionary store the censor was built from.
func (c *Censor) Store() *dictionary.Store {
	return c.store
}

// table mirrors Store.Lookup: unknown languages get the fallback list.
func (c *Censor) table(lang dictionary.Language) table {
	if t, ok := c.tables[lang]; ok {
		return t
	}
	return c.fallback
}

var combiningDiacritics = &unicode.RangeTable{
	R16: []unicode.Range16{{Lo: 0x0300, Hi: 0x036f, Stride: 1}},
}

// Normalize decomposes text (NFD), strips combining diacritical marks and
// lowercases the result. It is used for comparison only.
func Normalize(text string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(combiningDiacritics)))
	s, _, err := transform.String(t, text)
	if err != nil {
		s = text
	}
	return strings.ToLower(s)
}

// Moderate scans text for words of the selected language. A word counts as
// detected when it occurs as a whole word either in the text itself or in
// its normalized form. With ReturnFiltered every occurrence found in the
// original text is replaced, word after word, on the same running copy.
func (c *Censor) Moderate(text string, opts *Options) (Result, error) {
	o := opts.resolve()
	if !utf8.ValidString(text) {
		return Result{}, ErrInvalidText
	}
	if err := o.Replace.validate(); err != nil {
		return Result{}, err
	}

	textToCheck := text
	if !o.CaseSensitive {
		textToCheck = strings.ToLower(text)
	}
	normalizedText := Normalize(text)

	res := Result{
		DetectedWords: []string{},
		OriginalText:  text,
	}
	filtered := text
	seen := make(map[string]struct{})

	for _, e := range c.table(o.Language) {
		raw := e.lower
		if o.CaseSensitive {
			raw = e.exact
		}

		if !raw.match(textToCheck) && !e.normalized.match(normalizedText) {
			continue
		}

		if _, ok := seen[e.word]; !ok {
			seen[e.word] = struct{}{}
			res.DetectedWords = append(res.DetectedWords, e.word)
		}

		if o.ReturnFiltered {
			filtered = raw.replace(filtered, o.Replace.apply)
		}
	}

	res.IsClean = len(res.DetectedWords) == 0
	if o.ReturnFiltered {
		res.FilteredText = &filtered
	}

	return res, nil
}

// IsClean reports whether text contains none of the selected words.
func (c *Censor) IsClean(text string, opts *Options) (bool, error) {
	res, err := c.Moderate(text, opts)
	if err != nil {
		return false, err
	}
	return res.IsClean, nil
}

// Filter returns text with every detected word replaced by with. Options'
// ReturnFiltered and Replace fields are ignored. If filtering yields an empty
// string the original text is returned.
func (c *Censor) Filter(text string, with Replacement, opts *Options) (string, error) {
	var o Options
	if opts != nil {
		o = *opts
	}
	o.ReturnFiltered = true
	o.Replace = with

	res, err := c.Moderate(text, &o)
	if err != nil {
		return "", err
	}
	if res.FilteredText == nil || *res.FilteredText == "" {
		return text, nil
	}
	return *res.FilteredText, nil
}

// Check scans comment with default options and returns true if it contains
// banned vocabulary. Invalid input is never reported as banned.
func (c *Censor) Check(comment string) bool {
	clean, err := c.IsClean(comment, nil)
	return err == nil && !clean
}

var defaultCensor = sync.OnceValue(func() *Censor {
	return New(dictionary.Builtin())
})

// Default returns the censor over the bundled dictionaries.
func Default() *Censor {
	return defaultCensor()
}

// Moderate is Default().Moderate.
func Moderate(text string, opts *Options) (Result, error) {
	return Default().Moderate(text, opts)
}

// IsClean is Default().IsClean.
func IsClean(text string, opts *Options) (bool, error) {
	return Default().IsClean(text, opts)
}

// Filter is Default().Filter.
func Filter(text string, with Replacement, opts *Options) (string, error) {
	return Default().Filter(text, with, opts)
}
