package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"os"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/segmentio/kafka-go"
	log "github.com/sirupsen/logrus"

	"profanity/pkg/models"
)

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	exitCode := m.Run()
	os.Exit(exitCode)
}

type indexCall struct {
	index string
	docID string
	body  string
}

type fakeIndexer struct {
	mu    sync.Mutex
	calls []indexCall
}

func (f *fakeIndexer) index(_ context.Context, index, docID string, body []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, indexCall{index, docID, string(body)})
	return nil
}

func message(t *testing.T, kind string, v any) kafka.Message {
	t.Helper()

	b, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("failed to marshal message: %v", err)
	}
	msg := kafka.Message{Value: b}
	if kind != "" {
		msg.Headers = []kafka.Header{{Key: models.KindHeader, Value: []byte(kind)}}
	}
	return msg
}

func TestKeeper_route(t *testing.T) {
	k := &keeper{requestIndex: "requests", moderationIndex: "moderation"}

	entry := models.LogEntry{RequestID: "req-1", Service: "censorship"}
	event := models.ModerationEvent{RequestID: "req-2", Service: "censorship", DetectedWords: []string{"bad"}}

	tests := []struct {
		name      string
		msg       kafka.Message
		wantIndex string
		wantDocID string
		wantErr   bool
	}{
		{"Request log", message(t, models.KindRequest, entry), "requests", "censorshipreq-1", false},
		{"Log without kind header", message(t, "", entry), "requests", "censorshipreq-1", false},
		{"Moderation event", message(t, models.KindModeration, event), "moderation", "censorshipreq-2", false},
		{"Unknown kind", message(t, "metrics", entry), "", "", true},
		{"Invalid JSON", kafka.Message{Value: []byte("{")}, "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			index, docID, err := k.route(tt.msg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("route() error = %v; want error %v", err, tt.wantErr)
			}
			if index != tt.wantIndex || docID != tt.wantDocID {
				t.Errorf("route() = %q, %q; want %q, %q", index, docID, tt.wantIndex, tt.wantDocID)
			}
		})
	}
}

func TestKeeper_worker(t *testing.T) {
	idx := &fakeIndexer{}
	k := &keeper{idx: idx, requestIndex: "requests", moderationIndex: "moderation"}

	jobs := make(chan kafka.Message, 3)
	jobs <- message(t, models.KindRequest, models.LogEntry{RequestID: "a", Service: "s"})
	jobs <- kafka.Message{Value: []byte("not json")}
	jobs <- message(t, models.KindModeration, models.ModerationEvent{RequestID: "b", Service: "s"})
	close(jobs)

	done := make(chan struct{})
	go func() {
		k.worker(context.Background(), jobs, 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit after the jobs channel was closed")
	}

	var got []string
	for _, c := range idx.calls {
		got = append(got, c.index+"/"+c.docID)
	}
	want := []string{"requests/sa", "moderation/sb"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want indexed %v, got %v", want, got)
	}
}

func TestKeeper_workerCancelled(t *testing.T) {
	k := &keeper{idx: &fakeIndexer{}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		k.worker(ctx, make(chan kafka.Message), 0)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not exit after cancellation")
	}
}

func TestDispatch(t *testing.T) {
	jobs := make(chan kafka.Message, 1)
	msg := kafka.Message{Value: []byte("{}")}

	if !dispatch(context.Background(), jobs, msg) {
		t.Fatal("want message queued while the buffer has room")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan bool)
	go func() { done <- dispatch(ctx, jobs, msg) }()

	select {
	case ok := <-done:
		if ok {
			t.Error("want dispatch to give up on a full buffer after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch blocked on a full buffer after cancellation")
	}
	if len(jobs) != 1 {
		t.Errorf("want 1 queued message, got %d", len(jobs))
	}
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestESIndexer_index(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	transport := roundTripFunc(func(r *http.Request) (*http.Response, error) {
		gotMethod, gotPath = r.Method, r.URL.Path
		if r.Body != nil {
			b, _ := io.ReadAll(r.Body)
			gotBody = string(b)
		}

		h := http.Header{}
		h.Set("Content-Type", "application/json")
		h.Set("X-Elastic-Product", "Elasticsearch")
		return &http.Response{
			StatusCode: http.StatusCreated,
			Header:     h,
			Body:       io.NopCloser(strings.NewReader(`{"result":"created"}`)),
			Request:    r,
		}, nil
	})

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{"http://es.local:9200"},
		Transport: transport,
	})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	idx := &esIndexer{es: es}
	if err := idx.index(context.Background(), "moderation", "censorshipreq-1", []byte(`{"is_clean":false}`)); err != nil {
		t.Fatalf("index returned error: %v", err)
	}

	if gotMethod != http.MethodPut {
		t.Errorf("want method %s, got %s", http.MethodPut, gotMethod)
	}
	if want := "/moderation/_doc/censorshipreq-1"; gotPath != want {
		t.Errorf("want path %q, got %q", want, gotPath)
	}
	if gotBody != `{"is_clean":false}` {
		t.Errorf("unexpected body %q", gotBody)
	}
}
