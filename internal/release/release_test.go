package release

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestParseChannel(t *testing.T) {
	tests := []struct {
		input string
		want  Channel
	}{
		{"stable", ChannelStable},
		{"Stable", ChannelStable},
		{" experimental ", ChannelExperimental},
		{"none", ChannelUnknown},
		{"", ChannelUnknown},
		{"nightly", ChannelUnknown},
	}
	for _, tt := range tests {
		if got := ParseChannel(tt.input); got != tt.want {
			t.Errorf("ParseChannel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLatestStableUsesLatestEndpoint(t *testing.T) {
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path.Store(r.URL.Path)
		w.Write([]byte(`{"tag_name":"1.2.0.0","assets":[{"name":"botd","browser_download_url":"http://x/botd"}]}`))
	}))
	defer srv.Close()

	rel, err := NewClient(srv.URL).Latest(context.Background(), ChannelStable)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if p := path.Load().(string); p != "/latest" {
		t.Errorf("stable channel hit %q, want /latest", p)
	}
	if rel.Tag != "1.2.0.0" || len(rel.Assets) != 1 || rel.Assets[0].Name != "botd" {
		t.Errorf("unexpected release %+v", rel)
	}
}

func TestLatestExperimentalTakesFirstEntry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("experimental channel hit %q, want bare endpoint", r.URL.Path)
		}
		w.Write([]byte(`[{"tag_name":"1.3.0.0","assets":[]},{"tag_name":"1.2.0.0","assets":[]}]`))
	}))
	defer srv.Close()

	rel, err := NewClient(srv.URL).Latest(context.Background(), ChannelExperimental)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if rel.Tag != "1.3.0.0" {
		t.Errorf("got tag %q, want first entry 1.3.0.0", rel.Tag)
	}
}

func TestLatestEmptyListIsEmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Latest(context.Background(), ChannelExperimental)
	if !errors.Is(err, ErrEmptyFeed) {
		t.Errorf("got %v, want ErrEmptyFeed", err)
	}
}

func TestLatestEmptyTagIsEmptyFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"tag_name":"","assets":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Latest(context.Background(), ChannelStable)
	if !errors.Is(err, ErrEmptyFeed) {
		t.Errorf("got %v, want ErrEmptyFeed", err)
	}
}

func TestLatestMalformedPayloadIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{{{`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Latest(context.Background(), ChannelStable)
	if !errors.Is(err, ErrParse) {
		t.Errorf("got %v, want ErrParse", err)
	}
}

func TestFetchRetriesEmptyBody(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			return // empty body
		}
		w.Write([]byte(`{"tag_name":"1.0.0.0","assets":[]}`))
	}))
	defer srv.Close()

	rel, err := NewClient(srv.URL).Latest(context.Background(), ChannelStable)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if rel.Tag != "1.0.0.0" {
		t.Errorf("got tag %q", rel.Tag)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("fetch called %d times, want 3", got)
	}
}

func TestFetchGivesUpAfterBudget(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Latest(context.Background(), ChannelStable)
	if !errors.Is(err, ErrNetwork) {
		t.Errorf("got %v, want ErrNetwork", err)
	}
	if got := calls.Load(); got != int32(fetchAttempts) {
		t.Errorf("fetch called %d times, want %d", got, fetchAttempts)
	}
}
