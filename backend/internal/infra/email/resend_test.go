package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/resend/resend-go/v2"
)

func TestSendPostsToResend(t *testing.T) {
	var got resend.SendEmailRequest
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/emails" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer re_test" {
			t.Errorf("unexpected auth header: %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email-123"}`))
	}))
	defer ts.Close()

	client, err := NewClient(Config{APIKey: "re_test", From: "3arida <noreply@3arida.ma>", BaseURL: ts.URL, RPS: 100}, ts.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	id, err := client.Send(context.Background(), Message{
		To:      []string{"creator@example.com"},
		Subject: "Your petition was approved",
		HTML:    "<p>Congratulations</p>",
		Text:    "Congratulations",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if id != "email-123" {
		t.Fatalf("unexpected id: %s", id)
	}
	if got.From != "3arida <noreply@3arida.ma>" || len(got.To) != 1 || got.To[0] != "creator@example.com" {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got.Html != "<p>Congratulations</p>" || got.Text != "Congratulations" {
		t.Fatalf("unexpected bodies: html=%q text=%q", got.Html, got.Text)
	}
}

func TestSendSurfacesProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"statusCode":400,"name":"validation_error","message":"invalid from"}`))
	}))
	defer ts.Close()

	client, err := NewClient(Config{APIKey: "re_test", From: "noreply@3arida.ma", BaseURL: ts.URL + "/", RPS: 100}, ts.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: "hi", Text: "x"})
	if err == nil || !strings.Contains(err.Error(), "invalid from") {
		t.Fatalf("expected provider message in error, got %v", err)
	}
}

func TestSendValidatesBeforeCallingResend(t *testing.T) {
	calls := 0
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		_, _ = w.Write([]byte(`{"id":"never"}`))
	}))
	defer ts.Close()

	client, err := NewClient(Config{APIKey: "re_test", From: "noreply@3arida.ma", BaseURL: ts.URL, RPS: 100}, ts.Client())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	if _, err := client.Send(context.Background(), Message{Subject: "hi"}); err == nil {
		t.Fatalf("expected error without recipients")
	}
	if _, err := client.Send(context.Background(), Message{To: []string{"a@example.com"}, Subject: " "}); err == nil {
		t.Fatalf("expected error without subject")
	}
	if calls != 0 {
		t.Fatalf("invalid messages reached the provider %d times", calls)
	}
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(Config{From: "noreply@3arida.ma"}, nil); err == nil {
		t.Fatalf("expected error without api key")
	}
}
