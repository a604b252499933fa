// Important notice: the word lists in this package contain explicit language
// and offensive terms. They are data for the filter and nothing else.

// Package dictionary holds the per-language word lists used by the censor.
package dictionary

import (
	"sort"
	"strings"
	"sync"
)

// Language identifies which WordList to use.
type Language string

const (
	PtBR Language = "pt-br"
	En   Language = "en"
	Es   Language = "es"
)

// WordList is an ordered list of offensive terms for one language.
type WordList []string

// Store maps languages to word lists. It is never modified after New returns,
// so a single Store may be shared by any number of goroutines.
type Store struct {
	lists    map[Language]WordList
	fallback WordList
}

// New builds a Store from lists and fallback. Entries are trimmed, empty
// entries are dropped and duplicates within a list keep their first position.
func New(lists map[Language]WordList, fallback WordList) *Store {
	s := &Store{
		lists:    make(map[Language]WordList, len(lists)),
		fallback: clean(fallback),
	}
	for lang, words := range lists {
		s.lists[Language(strings.ToLower(string(lang)))] = clean(words)
	}

	return s
}

// Lookup returns the word list for lang. An empty or unknown language
// yields the fallback list.
func (s *Store) Lookup(lang Language) WordList {
	if words, ok := s.lists[lang]; ok {
		return words.clone()
	}
	return s.fallback.clone()
}

// Has reports whether lang has its own word list.
func (s *Store) Has(lang Language) bool {
	_, ok := s.lists[lang]
	return ok
}

// Languages returns the supported languages in lexical order.
func (s *Store) Languages() []Language {
	langs := make([]Language, 0, len(s.lists))
	for lang := range s.lists {
		langs = append(langs, lang)
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i] < langs[j] })

	return langs
}

// Fallback returns the list used for unknown languages.
func (s *Store) Fallback() WordList {
	return s.fallback.clone()
}

// Dictionaries returns a copy of every language list.
func (s *Store) Dictionaries() map[Language]WordList {
	m := make(map[Language]WordList, len(s.lists))
	for lang, words := range s.lists {
		m[lang] = words.clone()
	}
	return m
}

func (w WordList) clone() WordList {
	out := make(WordList, len(w))
	copy(out, w)
	return out
}

func clean(words WordList) WordList {
	seen := make(map[string]struct{}, len(words))
	out := make(WordList, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

var builtin = sync.OnceValue(func() *Store {
	var union WordList
	for _, words := range []WordList{ptBR, en, es} {
		union = append(union, words...)
	}

	return New(map[Language]WordList{
		PtBR: ptBR,
		En:   en,
		Es:   es,
	}, union)
})

// Builtin returns the store of the bundled dictionaries. Its fallback list is
// the union of all bundled languages, pt-br first.
func Builtin() *Store {
	return builtin()
}

// Lookup is Builtin().Lookup(lang).
func Lookup(lang Language) WordList {
	return Builtin().Lookup(lang)
}

// Default returns the bundled fallback list.
func Default() WordList {
	return Builtin().Fallback()
}

// Dictionaries returns the bundled language lists.
func Dictionaries() map[Language]WordList {
	return Builtin().Dictionaries()
}

func PtBRWords() WordList { return ptBR.clone() }

func EnWords() WordList { return en.clone() }

func EsWords() WordList { return es.clone() }
