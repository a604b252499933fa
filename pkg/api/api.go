package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"profanity/pkg/censor"
	"profanity/pkg/dictionary"
	"profanity/pkg/models"
)

const (
	maxBodySize    = 1 << 20
	publishTimeout = 10 * time.Second
)

// MessageWriter is the part of *kafka.Writer the API uses.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type API struct {
	ServiceName string
	// Language is used for requests that do not name one.
	Language dictionary.Language

	r      *mux.Router
	censor *censor.Censor
	kw     MessageWriter
}

// New builds the API around c. Request logs and moderation verdicts are
// written to kafkaWriter when it is not nil.
func New(name string, c *censor.Censor, kafkaWriter MessageWriter) (*API, error) {
	if c == nil {
		return nil, errors.New("api: censor is required")
	}

	api := API{
		ServiceName: name,
		Language:    dictionary.PtBR,
		r:           mux.NewRouter(),
		censor:      c,
		kw:          kafkaWriter,
	}
	api.endpoints()

	return &api, nil
}

func (api *API) Router() *mux.Router {
	return api.r
}

func (api *API) endpoints() {
	api.r.Use(api.requestIDMiddleware)
	api.r.Use(api.headerMiddleware)

	if api.kw != nil {
		api.r.Use(api.loggingMiddleware)
	}

	api.r.HandleFunc("/moderate", api.moderateHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/check", api.checkHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/filter", api.filterHandler).Methods(http.MethodPost)
	api.r.HandleFunc("/languages", api.languagesHandler).Methods(http.MethodGet)
	api.r.HandleFunc("/dictionaries/{language}", api.dictionaryHandler).Methods(http.MethodGet)
}

func (api *API) moderateHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	text, opts, ok := api.decodeRequest(w, r, "moderateHandler")
	if !ok {
		return
	}

	res, err := api.censor.Moderate(text, opts)
	if err != nil {
		moderationError(w, err, "moderateHandler", sID)
		return
	}
	api.publishVerdict(r, opts.Language, text, res)

	writeJSON(w, http.StatusOK, res, "moderateHandler", sID)
}

// checkHandler answers 200 for clean text and 422 when banned words were
// found. The body is the moderation result in both cases.
func (api *API) checkHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	text, opts, ok := api.decodeRequest(w, r, "checkHandler")
	if !ok {
		return
	}

	res, err := api.censor.Moderate(text, opts)
	if err != nil {
		moderationError(w, err, "checkHandler", sID)
		return
	}
	api.publishVerdict(r, opts.Language, text, res)

	status := http.StatusOK
	if !res.IsClean {
		status = http.StatusUnprocessableEntity
		log.Debugf("[checkHandler][%s] banned words found: %d", sID, len(res.DetectedWords))
	}
	writeJSON(w, status, res, "checkHandler", sID)
}

func (api *API) filterHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	text, opts, ok := api.decodeRequest(w, r, "filterHandler")
	if !ok {
		return
	}

	// Run Moderate directly so the verdict can be published too; the
	// response follows Filter semantics.
	opts.ReturnFiltered = true
	res, err := api.censor.Moderate(text, opts)
	if err != nil {
		moderationError(w, err, "filterHandler", sID)
		return
	}
	api.publishVerdict(r, opts.Language, text, res)

	filtered := *res.FilteredText
	if filtered == "" {
		filtered = text
	}
	writeJSON(w, http.StatusOK, models.FilterResponse{FilteredText: filtered}, "filterHandler", sID)
}

func (api *API) languagesHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	resp := models.LanguagesResponse{Default: string(api.Language)}
	for _, lang := range api.censor.Store().Languages() {
		resp.Languages = append(resp.Languages, string(lang))
	}

	writeJSON(w, http.StatusOK, resp, "languagesHandler", sID)
}

func (api *API) dictionaryHandler(w http.ResponseWriter, r *http.Request) {
	sID := shorten(GetRequestID(r.Context()))

	store := api.censor.Store()
	lang := store.Match(mux.Vars(r)["language"])
	resp := models.DictionaryResponse{
		Language: string(lang),
		Words:    store.Lookup(lang),
		Fallback: !store.Has(lang),
	}
	if resp.Fallback {
		log.Debugf("[dictionaryHandler][%s] unknown language %q, serving fallback list", sID, lang)
	}

	writeJSON(w, http.StatusOK, resp, "dictionaryHandler", sID)
}

// decodeRequest reads a ModerationRequest and turns it into censor options.
// It writes the error response itself and reports false on failure.
func (api *API) decodeRequest(w http.ResponseWriter, r *http.Request, handler string) (string, *censor.Options, bool) {
	sID := shorten(GetRequestID(r.Context()))
	defer r.Body.Close()

	var req models.ModerationRequest
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Errorf("[%s][%s] failed to decode request body: %v", handler, sID, err)
		return "", nil, false
	}

	if req.Text == nil {
		http.Error(w, "Missing text", http.StatusBadRequest)
		log.Debugf("[%s][%s] request without text", handler, sID)
		return "", nil, false
	}

	with, err := replacement(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Debugf("[%s][%s] invalid replacement: %v", handler, sID, err)
		return "", nil, false
	}

	lang := api.censor.Store().Match(req.Language)
	if lang == "" {
		lang = api.Language
	}

	return *req.Text, &censor.Options{
		CaseSensitive:  req.CaseSensitive,
		ReturnFiltered: req.ReturnFiltered,
		Replace:        with,
		Language:       lang,
	}, true
}

func replacement(req models.ModerationRequest) (censor.Replacement, error) {
	switch {
	case req.Mask != "" && req.ReplaceWith != nil:
		return censor.Replacement{}, errors.New("replaceWith and mask are mutually exclusive")
	case req.Mask != "":
		if utf8.RuneCountInString(req.Mask) != 1 {
			return censor.Replacement{}, fmt.Errorf("mask must be a single character, got %q", req.Mask)
		}
		r, _ := utf8.DecodeRuneInString(req.Mask)
		return censor.Mask(r), nil
	case req.ReplaceWith != nil:
		return censor.ReplaceWith(*req.ReplaceWith), nil
	}
	return censor.Replacement{}, nil
}

func moderationError(w http.ResponseWriter, err error, handler, sID string) {
	if errors.Is(err, censor.ErrInvalidText) || errors.Is(err, censor.ErrInvalidReplacement) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		log.Debugf("[%s][%s] rejected input: %v", handler, sID, err)
		return
	}
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	log.Errorf("[%s][%s] moderation failed: %v", handler, sID, err)
}

func writeJSON(w http.ResponseWriter, status int, v any, handler, sID string) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Errorf("[%s][%s] failed to encode response: %v", handler, sID, err)
		return
	}
	log.Debugf("[%s][%s] response sent with status %d", handler, sID, status)
}

// publishVerdict sends the outcome of a moderation call to Kafka.
func (api *API) publishVerdict(r *http.Request, lang dictionary.Language, text string, res censor.Result) {
	if api.kw == nil {
		return
	}

	event := models.ModerationEvent{
		Timestamp:     time.Now(),
		RequestID:     GetRequestID(r.Context()),
		Service:       api.ServiceName,
		Endpoint:      r.URL.Path,
		Language:      string(lang),
		IsClean:       res.IsClean,
		DetectedWords: res.DetectedWords,
		TextLength:    utf8.RuneCountInString(text),
	}
	api.publish(models.KindModeration, event.RequestID, event)
}

func (api *API) publish(kind, reqID string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Errorf("[publish] failed to marshal %s message for request %s: %v", kind, reqID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = api.kw.WriteMessages(ctx, kafka.Message{
		Key:     []byte(reqID),
		Value:   b,
		Headers: []kafka.Header{{Key: models.KindHeader, Value: []byte(kind)}},
	})
	if err != nil {
		log.Errorf("[publish] failed to write %s message to Kafka: %v", kind, err)
		return
	}
	log.Debugf("[publish] %s message sent to Kafka request_id:%s", kind, reqID)
}

// GetRequestID extracts the request ID from the context.
// It returns the request ID as a string if present, otherwise returns an empty string.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(RequestIDKey).(string); ok {
		return v
	}
	return ""
}

// shorten truncates a string to 6 characters if it is longer than 6, appends '...' at the end,
// otherwise it returns the string unchanged.
func shorten(s string) string {
	if len(s) > 6 {
		return s[:6] + "..."
	}
	return s
}
