package censor

import (
	"errors"
	"strings"
	"unicode/utf8"

	"profanity/pkg/dictionary"
)

var (
	// ErrInvalidText is returned for input that is not valid UTF-8.
	ErrInvalidText = errors.New("censor: text is not valid UTF-8")
	// ErrInvalidReplacement is returned for a function replacement without a function.
	ErrInvalidReplacement = errors.New("censor: replacement function is nil")
)

// DefaultReplacement is used when Options.Replace is the zero value.
const DefaultReplacement = "***"

type replaceKind int

const (
	replaceDefault replaceKind = iota
	replaceLiteral
	replaceFunc
)

// Replacement is either a literal string or a function of the matched text.
// The zero value replaces matches with DefaultReplacement.
type Replacement struct {
	kind replaceKind
	text string
	fn   func(string) string
}

// ReplaceWith replaces every match with s.
func ReplaceWith(s string) Replacement {
	return Replacement{kind: replaceLiteral, text: s}
}

// ReplaceFunc replaces every match with fn(match).
func ReplaceFunc(fn func(match string) string) Replacement {
	return Replacement{kind: replaceFunc, fn: fn}
}

// Mask keeps the first rune of a match and replaces the rest with r.
func Mask(r rune) Replacement {
	return ReplaceFunc(func(match string) string {
		if match == "" {
			return ""
		}
		_, size := utf8.DecodeRuneInString(match)
		return match[:size] + strings.Repeat(string(r), utf8.RuneCountInString(match[size:]))
	})
}

func (r Replacement) validate() error {
	if r.kind == replaceFunc && r.fn == nil {
		return ErrInvalidReplacement
	}
	return nil
}

func (r Replacement) apply(match string) string {
	switch r.kind {
	case replaceLiteral:
		return r.text
	case replaceFunc:
		return r.fn(match)
	default:
		return DefaultReplacement
	}
}

// Options configure a single Moderate call. A nil *Options means defaults.
type Options struct {
	// CaseSensitive disables lowercasing of text and words before matching.
	CaseSensitive bool
	// ReturnFiltered asks for Result.FilteredText.
	ReturnFiltered bool
	Replace        Replacement
	// Language selects the word list, dictionary.PtBR when empty.
	Language dictionary.Language
}

func (o *Options) resolve() Options {
	var opts Options
	if o != nil {
		opts = *o
	}
	if opts.Language == "" {
		opts.Language = dictionary.PtBR
	}
	return opts
}

// Result of a Moderate call.
type Result struct {
	IsClean       bool     `json:"isClean"`
	DetectedWords []string `json:"detectedWords"`
	OriginalText  string   `json:"originalText"`
	// FilteredText is nil unless Options.ReturnFiltered was set.
	FilteredText *string `json:"filteredText,omitempty"`
}
