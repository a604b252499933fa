package models

import "time"

// Kafka header carrying the kind of a message, and its values.
const (
	KindHeader     = "kind"
	KindRequest    = "request"
	KindModeration = "moderation"
)

// ModerationRequest is the body of /moderate, /check and /filter.
// Text is a pointer so that a missing or null text can be rejected.
type ModerationRequest struct {
	Text           *string `json:"text"`
	Language       string  `json:"language,omitempty"`
	CaseSensitive  bool    `json:"caseSensitive,omitempty"`
	ReturnFiltered bool    `json:"returnFiltered,omitempty"`
	ReplaceWith    *string `json:"replaceWith,omitempty"`
	// Mask, a single character, keeps the first letter of every match and
	// masks the rest with it. It cannot be combined with ReplaceWith.
	Mask string `json:"mask,omitempty"`
}

type FilterResponse struct {
	FilteredText string `json:"filteredText"`
}

type LanguagesResponse struct {
	Languages []string `json:"languages"`
	Default   string   `json:"default"`
}

type DictionaryResponse struct {
	Language string   `json:"language"`
	Words    []string `json:"words"`
	Fallback bool     `json:"fallback,omitempty"`
}

// LogEntry describes one served HTTP request.
type LogEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	IP         string    `json:"ip"`
	StatusCode int       `json:"status_code"`
	RequestID  string    `json:"request_id"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Duration   float64   `json:"duration_sec"`
	Bytes      int       `json:"bytes"`
	Service    string    `json:"service"`
}

// ModerationEvent records the verdict of one moderation call.
type ModerationEvent struct {
	Timestamp     time.Time `json:"timestamp"`
	RequestID     string    `json:"request_id"`
	Service       string    `json:"service"`
	Endpoint      string    `json:"endpoint"`
	Language      string    `json:"language"`
	IsClean       bool      `json:"is_clean"`
	DetectedWords []string  `json:"detected_words"`
	TextLength    int       `json:"text_length"`
}
