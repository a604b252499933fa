package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid"
	log "github.com/sirupsen/logrus"

	"profanity/pkg/logger"
	"profanity/pkg/models"
)

type ctxKeyRequestID struct{}

var RequestIDKey = ctxKeyRequestID{}

const (
	requestIDHeader = "X-Request-Id"
	maxRequestIDLen = 128
)

// requestIDMiddleware puts the request ID into the context and the response
// headers. A missing or oversized X-Request-Id is replaced with a new UUID.
func (api *API) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID, err := requestID(r)
		if err != nil {
			log.Errorf("[requestIDMiddleware] %v: %v", r.RemoteAddr, err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		w.Header().Set(requestIDHeader, reqID)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), RequestIDKey, reqID)))
	})
}

func requestID(r *http.Request) (string, error) {
	if id := strings.TrimSpace(r.Header.Get(requestIDHeader)); id != "" && len(id) <= maxRequestIDLen {
		return id, nil
	}

	id, err := uuid.NewV4()
	if err != nil {
		return "", fmt.Errorf("failed to generate request ID: %w", err)
	}
	log.Debugf("[requestIDMiddleware] generated request ID:%s for %v", id, r.RemoteAddr)
	return id.String(), nil
}

// headerMiddleware marks every response as uncacheable JSON.
func (api *API) headerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Content-Type", "application/json")
		h.Set("Cache-Control", "no-store")
		h.Set("X-Content-Type-Options", "nosniff")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware sends a LogEntry for every served request to Kafka.
func (api *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lw := logger.New(w)
		defer func() {
			entry := models.LogEntry{
				Timestamp:  time.Now(),
				IP:         getClientIP(r),
				StatusCode: lw.Status(),
				RequestID:  GetRequestID(r.Context()),
				Method:     r.Method,
				Path:       r.URL.Path,
				Duration:   time.Since(start).Seconds(),
				Bytes:      lw.Bytes(),
				Service:    api.ServiceName,
			}
			api.publish(models.KindRequest, entry.RequestID, entry)
		}()

		next.ServeHTTP(lw, r)
	})
}

func getClientIP(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.RemoteAddr
	}

	return ip
}
