package dictionary

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/language"
)

// ErrNoLanguages is returned by LoadFromJSON for a file without any language lists.
var ErrNoLanguages = errors.New("dictionary: no languages defined")

type file struct {
	Fallback  []string            `json:"fallback"`
	Languages map[string][]string `json:"languages"`
}

// LoadFromJSON reads a custom store from a JSON file of the form
//
//	{"fallback": ["..."], "languages": {"en": ["..."]}}
//
// When fallback is omitted the bundled fallback list is used.
func LoadFromJSON(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to decode dictionary %q: %w", path, err)
	}
	if len(f.Languages) == 0 {
		return nil, fmt.Errorf("%w in %q", ErrNoLanguages, path)
	}

	lists := make(map[Language]WordList, len(f.Languages))
	for tag, words := range f.Languages {
		lists[Language(tag)] = words
	}

	fallback := WordList(f.Fallback)
	if f.Fallback == nil {
		fallback = Default()
	}

	return New(lists, fallback), nil
}

// Match maps a user supplied language tag onto one of the store's languages.
// Exact matches win, then the first supported language with the same base
// ("en-US" -> "en", "pt" -> "pt-br"). Anything else comes back lowercased,
// so Lookup treats it as unknown.
func (s *Store) Match(tag string) Language {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return ""
	}

	raw := Language(strings.ToLower(strings.ReplaceAll(tag, "_", "-")))
	if s.Has(raw) {
		return raw
	}

	t, err := language.Parse(string(raw))
	if err != nil {
		return raw
	}
	if canon := Language(strings.ToLower(t.String())); s.Has(canon) {
		return canon
	}

	base, _ := t.Base()
	for _, lang := range s.Languages() {
		lt, err := language.Parse(string(lang))
		if err != nil {
			continue
		}
		if b, _ := lt.Base(); b == base {
			return lang
		}
	}

	return raw
}

// ParseLanguage is Builtin().Match(tag).
func ParseLanguage(tag string) Language {
	return Builtin().Match(tag)
}
