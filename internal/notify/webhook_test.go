package notify

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWebhookSend(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	n := NewWebhookNotifier(srv.URL)
	if err := n.Send(Notification{Title: "Update applied", Message: "1.2.0.0"}); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got["title"] != "Update applied" || got["message"] != "1.2.0.0" {
		t.Errorf("payload %v", got)
	}
}

func TestWebhookErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewWebhookNotifier(srv.URL).Send(Notification{Title: "t"}); err == nil {
		t.Error("expected error for non-2xx response")
	}
}

type fakeNotifier struct {
	sent int
	err  error
}

func (f *fakeNotifier) Send(Notification) error { f.sent++; return f.err }
func (f *fakeNotifier) Name() string            { return "fake" }

func TestMultiNotifierAttemptsAll(t *testing.T) {
	a := &fakeNotifier{err: errors.New("a failed")}
	b := &fakeNotifier{}
	m := NewMultiNotifier(a, b)

	err := m.Send(Notification{Title: "t"})
	if err == nil || err.Error() != "a failed" {
		t.Errorf("err = %v, want first error", err)
	}
	if a.sent != 1 || b.sent != 1 {
		t.Errorf("sends a=%d b=%d, want both attempted", a.sent, b.sent)
	}
}
