package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/h2non/gock"
	log "github.com/sirupsen/logrus"

	"profanity/pkg/api"
	"profanity/pkg/censor"
	"profanity/pkg/dictionary"
	"profanity/pkg/models"
)

const serviceURL = "http://moderation.local"

func TestMain(m *testing.M) {
	log.SetLevel(log.PanicLevel)
	exitCode := m.Run()
	os.Exit(exitCode)
}

func strPtr(s string) *string { return &s }

func TestClient_Moderate(t *testing.T) {
	defer gock.Off()

	filtered := "this is ***"
	gock.New(serviceURL).
		Post("/moderate").
		MatchHeader("X-Request-Id", "req-1").
		Reply(http.StatusOK).
		JSON(censor.Result{
			IsClean:       false,
			DetectedWords: []string{"bad"},
			OriginalText:  "this is bad",
			FilteredText:  &filtered,
		})

	c := New(serviceURL + "/")
	ctx := WithRequestID(context.Background(), "req-1")
	res, err := c.Moderate(ctx, models.ModerationRequest{
		Text:           strPtr("this is bad"),
		Language:       "en",
		ReturnFiltered: true,
	})
	if err != nil {
		t.Fatalf("Moderate returned error: %v", err)
	}

	if res.IsClean {
		t.Error("want text reported as not clean")
	}
	if want := []string{"bad"}; !reflect.DeepEqual(res.DetectedWords, want) {
		t.Errorf("want detected words %v, got %v", want, res.DetectedWords)
	}
	if res.FilteredText == nil || *res.FilteredText != filtered {
		t.Errorf("want filtered text %q, got %v", filtered, res.FilteredText)
	}
	if !gock.IsDone() {
		t.Error("want all mocked requests to be consumed")
	}
}

func TestClient_IsClean(t *testing.T) {
	defer gock.Off()

	gock.New(serviceURL).Post("/check").Reply(http.StatusOK).JSON(censor.Result{IsClean: true, DetectedWords: []string{}})
	gock.New(serviceURL).Post("/check").Reply(http.StatusUnprocessableEntity).JSON(censor.Result{DetectedWords: []string{"bad"}})

	c := New(serviceURL)

	clean, err := c.IsClean(context.Background(), "hello", "en")
	if err != nil {
		t.Fatalf("IsClean returned error: %v", err)
	}
	if !clean {
		t.Error("want clean for status 200")
	}

	clean, err = c.IsClean(context.Background(), "bad", "en")
	if err != nil {
		t.Fatalf("IsClean returned error: %v", err)
	}
	if clean {
		t.Error("want not clean for status 422")
	}
}

func TestClient_Filter(t *testing.T) {
	defer gock.Off()

	gock.New(serviceURL).
		Post("/filter").
		Reply(http.StatusOK).
		JSON(models.FilterResponse{FilteredText: "so u###"})

	got, err := New(serviceURL).Filter(context.Background(), models.ModerationRequest{
		Text: strPtr("so ugly"),
		Mask: "#",
	})
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if want := "so u###"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}
}

func TestClient_statusError(t *testing.T) {
	defer gock.Off()

	gock.New(serviceURL).
		Post("/moderate").
		Reply(http.StatusBadRequest).
		BodyString("Missing text\n")

	_, err := New(serviceURL).Moderate(context.Background(), models.ModerationRequest{})

	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("want *StatusError, got %v", err)
	}
	if statusErr.Code != http.StatusBadRequest {
		t.Errorf("want status %v, got %v", http.StatusBadRequest, statusErr.Code)
	}
	if statusErr.Body != "Missing text" {
		t.Errorf("want body %q, got %q", "Missing text", statusErr.Body)
	}
}

func TestClient_Languages(t *testing.T) {
	defer gock.Off()

	want := models.LanguagesResponse{Languages: []string{"en", "es", "pt-br"}, Default: "pt-br"}
	gock.New(serviceURL).Get("/languages").Reply(http.StatusOK).JSON(want)

	got, err := New(serviceURL).Languages(context.Background())
	if err != nil {
		t.Fatalf("Languages returned error: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("want %+v, got %+v", want, got)
	}
}

func TestClient_againstService(t *testing.T) {
	store := dictionary.New(map[dictionary.Language]dictionary.WordList{
		dictionary.En: {"bad"},
	}, nil)
	a, err := api.New("censorship", censor.New(store), nil)
	if err != nil {
		t.Fatalf("failed to create API: %v", err)
	}

	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	c := New(srv.URL, WithHTTPClient(srv.Client()))

	res, err := c.Moderate(context.Background(), models.ModerationRequest{
		Text:     strPtr("this is bad"),
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Moderate returned error: %v", err)
	}
	if want := []string{"bad"}; !reflect.DeepEqual(res.DetectedWords, want) {
		t.Errorf("want detected words %v, got %v", want, res.DetectedWords)
	}

	got, err := c.Filter(context.Background(), models.ModerationRequest{
		Text:     strPtr("this is bad"),
		Language: "en",
	})
	if err != nil {
		t.Fatalf("Filter returned error: %v", err)
	}
	if want := "this is ***"; got != want {
		t.Errorf("want %q, got %q", want, got)
	}

	clean, err := c.IsClean(context.Background(), "this is fine", "en")
	if err != nil {
		t.Fatalf("IsClean returned error: %v", err)
	}
	if !clean {
		t.Error("want clean text")
	}
}

func TestWithTimeout_sharedClient(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute}

	c := New(serviceURL, WithHTTPClient(shared), WithTimeout(time.Second))

	if shared.Timeout != time.Minute {
		t.Errorf("shared client timeout changed to %v", shared.Timeout)
	}
	if c.hc == shared {
		t.Fatal("want a copy of the shared client")
	}
	if c.hc.Timeout != time.Second {
		t.Errorf("want timeout %v, got %v", time.Second, c.hc.Timeout)
	}

	c = New(serviceURL, WithTimeout(time.Second))
	if c.hc.Timeout != time.Second {
		t.Errorf("want timeout %v on the default client, got %v", time.Second, c.hc.Timeout)
	}
}
