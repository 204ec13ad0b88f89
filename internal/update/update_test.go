package update

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"botd/internal/release"
)

type fakeRestarter struct {
	calls int32
	ok    bool
}

func (r *fakeRestarter) Restart() bool {
	atomic.AddInt32(&r.calls, 1)
	return r.ok
}

// newFeed serves a single-release feed whose asset download is backed by
// the same test server.
func newFeed(t *testing.T, tag, assetName string, binary []byte, downloadStatus int) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/latest":
			fmt.Fprintf(w, `{"tag_name":%q,"assets":[{"name":%q,"browser_download_url":%q}]}`,
				tag, assetName, srv.URL+"/dl")
		case "/dl":
			if downloadStatus != http.StatusOK {
				w.WriteHeader(downloadStatus)
				return
			}
			w.Write(binary)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func writeExe(t *testing.T, content string) string {
	t.Helper()
	exe := filepath.Join(t.TempDir(), "botd")
	if err := os.WriteFile(exe, []byte(content), 0755); err != nil {
		t.Fatal(err)
	}
	return exe
}

func TestUpToDateByOrdinalCompare(t *testing.T) {
	// Version tags are compared as plain strings. The last case documents
	// the known consequence for differing digit-group widths.
	tests := []struct {
		local, remote string
		wantUpdate    bool
	}{
		{"1.1.0.0", "1.2.0.0", true},
		{"1.2.0.0", "1.2.0.0", false},
		{"1.3.0.0", "1.2.0.0", false},
		{"1.9", "1.10", false},
	}

	for _, tt := range tests {
		t.Run(tt.local+"_vs_"+tt.remote, func(t *testing.T) {
			exe := writeExe(t, "current")
			srv := newFeed(t, tt.remote, filepath.Base(exe), []byte("next"), http.StatusOK)
			r := &fakeRestarter{ok: true}
			u := New(exe, tt.local, release.ChannelStable, release.NewClient(srv.URL), r)

			if err := u.CheckAndApply(context.Background()); err != nil {
				t.Fatalf("CheckAndApply: %v", err)
			}
			gotUpdate := atomic.LoadInt32(&r.calls) > 0
			if gotUpdate != tt.wantUpdate {
				t.Errorf("update applied = %v, want %v", gotUpdate, tt.wantUpdate)
			}
		})
	}
}

func TestSuccessfulCycle(t *testing.T) {
	exe := writeExe(t, "old-binary")
	srv := newFeed(t, "1.2.0.0", filepath.Base(exe), []byte("new-binary"), http.StatusOK)
	r := &fakeRestarter{ok: true}
	u := New(exe, "1.1.0.0", release.ChannelStable, release.NewClient(srv.URL), r)
	var events []string
	u.OnEvent = func(title, message string) {
		events = append(events, title+": "+message)
	}

	if err := u.CheckAndApply(context.Background()); err != nil {
		t.Fatalf("CheckAndApply: %v", err)
	}

	if got := atomic.LoadInt32(&r.calls); got != 1 {
		t.Errorf("restart invoked %d times, want 1", got)
	}
	if len(events) != 1 || events[0] != "Update applied: 1.1.0.0 -> 1.2.0.0" {
		t.Errorf("events = %v, want one update-applied event", events)
	}
	data, err := os.ReadFile(exe)
	if err != nil || string(data) != "new-binary" {
		t.Errorf("current binary = %q, %v; want new-binary", data, err)
	}
	if fileExists(exe + newSuffix) {
		t.Error(".new left behind")
	}
	// The backup survives until the replacement binary boots; the next
	// process start clears it.
	if !fileExists(exe + oldSuffix) {
		t.Error(".old missing before next boot")
	}
	if err := u.CleanupStale(); err != nil {
		t.Fatalf("CleanupStale: %v", err)
	}
	if fileExists(exe + oldSuffix) {
		t.Error(".old left behind after boot cleanup")
	}
}

func TestDownloadFailureLeavesBinaryUntouched(t *testing.T) {
	exe := writeExe(t, "current")
	srv := newFeed(t, "1.2.0.0", filepath.Base(exe), nil, http.StatusInternalServerError)
	r := &fakeRestarter{ok: true}
	u := New(exe, "1.1.0.0", release.ChannelStable, release.NewClient(srv.URL), r)

	err := u.CheckAndApply(context.Background())
	if !errors.Is(err, ErrDownload) {
		t.Fatalf("got %v, want ErrDownload", err)
	}
	if data, _ := os.ReadFile(exe); string(data) != "current" {
		t.Errorf("current binary modified: %q", data)
	}
	if fileExists(exe+oldSuffix) || fileExists(exe+newSuffix) {
		t.Error("residual swap files after failed download")
	}
	if atomic.LoadInt32(&r.calls) != 0 {
		t.Error("restart invoked despite failed download")
	}
	if u.Disarmed() {
		t.Error("download failure must not disarm future cycles")
	}
}

func TestAssetMismatchAbortsCycle(t *testing.T) {
	exe := writeExe(t, "current")
	srv := newFeed(t, "1.2.0.0", "other-binary", []byte("x"), http.StatusOK)
	u := New(exe, "1.1.0.0", release.ChannelStable, release.NewClient(srv.URL), &fakeRestarter{ok: true})

	err := u.CheckAndApply(context.Background())
	if !errors.Is(err, ErrAssetNotFound) {
		t.Fatalf("got %v, want ErrAssetNotFound", err)
	}
	if fileExists(exe + newSuffix) {
		t.Error("download happened despite asset mismatch")
	}
}

func TestSwapActivationFailureRollsBack(t *testing.T) {
	exe := writeExe(t, "original")
	srv := newFeed(t, "1.2.0.0", filepath.Base(exe), []byte("next"), http.StatusOK)
	r := &fakeRestarter{ok: true}
	u := New(exe, "1.1.0.0", release.ChannelStable, release.NewClient(srv.URL), r)

	var renames int
	u.rename = func(oldpath, newpath string) error {
		renames++
		if renames == 2 { // .new -> current
			return errors.New("injected failure")
		}
		return os.Rename(oldpath, newpath)
	}

	err := u.CheckAndApply(context.Background())
	if !errors.Is(err, ErrSwap) {
		t.Fatalf("got %v, want ErrSwap", err)
	}
	if data, _ := os.ReadFile(exe); string(data) != "original" {
		t.Errorf("binary after rollback = %q, want original", data)
	}
	if fileExists(exe+oldSuffix) || fileExists(exe+newSuffix) {
		t.Error("residual swap files after rollback")
	}
	if atomic.LoadInt32(&r.calls) != 0 {
		t.Error("restart invoked after failed swap")
	}
}

func TestBackupFailureCleansStaged(t *testing.T) {
	exe := writeExe(t, "original")
	srv := newFeed(t, "1.2.0.0", filepath.Base(exe), []byte("next"), http.StatusOK)
	u := New(exe, "1.1.0.0", release.ChannelStable, release.NewClient(srv.URL), &fakeRestarter{ok: true})

	u.rename = func(oldpath, newpath string) error {
		return errors.New("injected failure") // current -> .old
	}

	err := u.CheckAndApply(context.Background())
	if !errors.Is(err, ErrSwap) {
		t.Fatalf("got %v, want ErrSwap", err)
	}
	if data, _ := os.ReadFile(exe); string(data) != "original" {
		t.Errorf("binary modified: %q", data)
	}
	if fileExists(exe + newSuffix) {
		t.Error(".new not cleaned up after backup failure")
	}
}

func TestRollbackFailureIsFatal(t *testing.T) {
	exe := writeExe(t, "original")
	srv := newFeed(t, "1.2.0.0", filepath.Base(exe), []byte("next"), http.StatusOK)
	u := New(exe, "1.1.0.0", release.ChannelStable, release.NewClient(srv.URL), &fakeRestarter{ok: true})

	var renames int
	u.rename = func(oldpath, newpath string) error {
		renames++
		if renames == 1 {
			return os.Rename(oldpath, newpath)
		}
		return errors.New("injected failure") // activation and rollback
	}

	err := u.CheckAndApply(context.Background())
	if !errors.Is(err, ErrRollbackFailed) {
		t.Fatalf("got %v, want ErrRollbackFailed", err)
	}
}

func TestRestartFailureDisarms(t *testing.T) {
	exe := writeExe(t, "old")
	var feedCalls atomic.Int32
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/latest" {
			feedCalls.Add(1)
			fmt.Fprintf(w, `{"tag_name":"1.2.0.0","assets":[{"name":%q,"browser_download_url":%q}]}`,
				filepath.Base(exe), srv.URL+"/dl")
			return
		}
		w.Write([]byte("next"))
	}))
	defer srv.Close()

	r := &fakeRestarter{ok: false}
	u := New(exe, "1.1.0.0", release.ChannelStable, release.NewClient(srv.URL), r)

	err := u.CheckAndApply(context.Background())
	if !errors.Is(err, ErrRestartFailed) {
		t.Fatalf("got %v, want ErrRestartFailed", err)
	}
	if !u.Disarmed() {
		t.Fatal("updater not disarmed after failed restart")
	}

	before := feedCalls.Load()
	if err := u.CheckAndApply(context.Background()); err != nil {
		t.Fatalf("disarmed cycle returned %v", err)
	}
	if feedCalls.Load() != before {
		t.Error("disarmed updater still contacted the feed")
	}
}

func TestCleanupStale(t *testing.T) {
	exe := writeExe(t, "current")
	u := New(exe, "1.0.0.0", release.ChannelStable, nil, nil)

	// Nothing stale is fine.
	if err := u.CleanupStale(); err != nil {
		t.Fatalf("CleanupStale on clean state: %v", err)
	}

	os.WriteFile(exe+oldSuffix, []byte("backup"), 0755)
	os.WriteFile(exe+newSuffix, []byte("staged"), 0755)
	if err := u.CleanupStale(); err != nil {
		t.Fatalf("CleanupStale: %v", err)
	}
	if fileExists(exe+oldSuffix) || fileExists(exe+newSuffix) {
		t.Error("stale files survived cleanup")
	}
}

func TestCleanupStaleFailureAbortsInit(t *testing.T) {
	exe := writeExe(t, "current")
	u := New(exe, "1.0.0.0", release.ChannelStable, nil, nil)

	// A non-empty directory cannot be removed with os.Remove, which is
	// exactly the ambiguous on-disk state the init path must refuse.
	if err := os.MkdirAll(filepath.Join(exe+oldSuffix, "x"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := u.CleanupStale(); err == nil {
		t.Error("expected error for unremovable stale backup")
	}
}
