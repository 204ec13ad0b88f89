// Package update replaces the running binary with newer builds from the
// release feed.
//
// A cycle is: compare versions, find the asset matching the executable's
// file name, download it next to the binary, then activate it with two
// renames (current → .old, .new → current). Every failure before the swap
// leaves the live binary untouched; a failure between the two renames is
// rolled back. The .old backup survives until the next process start so a
// freshly updated binary that boots proves itself before the fallback is
// discarded.
package update

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"botd/internal/logging"
	"botd/internal/release"
)

// CheckInterval is the period of the background update check.
const CheckInterval = 24 * time.Hour

const (
	oldSuffix = ".old"
	newSuffix = ".new"
)

var (
	// ErrAssetNotFound means the release carries no asset named like the
	// running executable.
	ErrAssetNotFound = errors.New("no matching binary asset in release")
	// ErrDownload means staging the new binary failed; the live binary is
	// untouched.
	ErrDownload = errors.New("download of new binary failed")
	// ErrSwap means a rename during activation failed but the previous
	// binary was preserved or restored.
	ErrSwap = errors.New("binary swap failed")
	// ErrRollbackFailed means the swap failed and restoring the backup
	// failed too; the binary may no longer boot.
	ErrRollbackFailed = errors.New("binary swap failed and rollback failed")
	// ErrRestartFailed means the new binary was activated but the new
	// process did not start.
	ErrRestartFailed = errors.New("restart after update failed")
)

// Restarter spawns a replacement process image.
type Restarter interface {
	Restart() bool
}

// Updater drives the self-update cycle for one executable.
type Updater struct {
	exe       string
	version   string
	channel   release.Channel
	feed      *release.Client
	restarter Restarter
	http      *http.Client

	// OnEvent, when set, receives operator-facing lifecycle events
	// (update activated, rollback failed). Called synchronously.
	OnEvent func(title, message string)

	mu       sync.Mutex
	disarmed bool // no further automatic attempts this run
	stop     context.CancelFunc

	// rename is swapped in tests to exercise swap failures.
	rename func(oldpath, newpath string) error
}

// New creates an Updater for the executable at exe running the given
// version string.
func New(exe, version string, ch release.Channel, feed *release.Client, r Restarter) *Updater {
	return &Updater{
		exe:       exe,
		version:   version,
		channel:   ch,
		feed:      feed,
		restarter: r,
		http:      &http.Client{Timeout: 5 * time.Minute},
		rename:    os.Rename,
	}
}

// CleanupStale removes the .old backup a previous successful update left
// behind. The running binary booting is the proof the update took. A
// backup that cannot be removed leaves the on-disk state ambiguous, so the
// error aborts subsystem initialization. A leftover .new from an
// interrupted download is removed best-effort.
func (u *Updater) CleanupStale() error {
	old := u.exe + oldSuffix
	if _, err := os.Stat(old); err == nil {
		if err := os.Remove(old); err != nil {
			return fmt.Errorf("remove stale backup %s: %w", old, err)
		}
		logging.Info("update", "removed stale backup %s", old)
	}

	if staged := u.exe + newSuffix; fileExists(staged) {
		if err := os.Remove(staged); err != nil {
			logging.Warn("update", "could not remove stale staged binary %s: %v", staged, err)
		}
	}
	return nil
}

// Disarmed reports whether automatic updates were disabled for the rest of
// this run after a failed restart.
func (u *Updater) Disarmed() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.disarmed
}

func (u *Updater) disarm() {
	u.mu.Lock()
	u.disarmed = true
	if u.stop != nil {
		u.stop()
	}
	u.mu.Unlock()
}

// CheckAndApply runs one update cycle. A nil return means either the
// binary is current or an update was activated and a restart requested.
// All errors except ErrRollbackFailed leave a working binary in place.
func (u *Updater) CheckAndApply(ctx context.Context) error {
	if u.channel == release.ChannelUnknown {
		return nil
	}
	if u.Disarmed() {
		return nil
	}

	rel, err := u.feed.Latest(ctx, u.channel)
	if err != nil {
		return err
	}

	// Plain ordinal comparison of version strings, matching the release
	// tag policy. Not semver-aware.
	if strings.Compare(u.version, rel.Tag) >= 0 {
		logging.Info("update", "version %s is up to date (remote %s)", u.version, rel.Tag)
		return nil
	}
	logging.Info("update", "new version available: %s -> %s", u.version, rel.Tag)

	asset, err := matchAsset(rel, filepath.Base(u.exe))
	if err != nil {
		return err
	}

	staged := u.exe + newSuffix
	if err := u.download(ctx, asset.DownloadURL, staged); err != nil {
		return err
	}

	if err := u.swap(staged); err != nil {
		return err
	}

	logging.Info("update", "update to %s activated, restarting", rel.Tag)
	u.notify("Update applied", fmt.Sprintf("%s -> %s", u.version, rel.Tag))
	if !u.restarter.Restart() {
		u.disarm()
		logging.Error("update", "automatic updates disabled for this run; restart manually to finish the update")
		return ErrRestartFailed
	}
	return nil
}

// matchAsset finds the asset whose name equals the executable file name.
// No fuzzy matching: a feed that renames its binaries should not be able
// to replace ours by accident.
func matchAsset(rel *release.Release, exeName string) (*release.Asset, error) {
	for i := range rel.Assets {
		a := &rel.Assets[i]
		if a.Name == exeName {
			if a.DownloadURL == "" {
				return nil, fmt.Errorf("%w: asset %q has no download URL", ErrAssetNotFound, a.Name)
			}
			return a, nil
		}
	}
	return nil, fmt.Errorf("%w: release %s has no asset named %q", ErrAssetNotFound, rel.Tag, exeName)
}

// download streams the asset to dst with the executable bit set. A partial
// file is removed on any failure.
func (u *Updater) download(ctx context.Context, url, dst string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	resp, err := u.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d from %s", ErrDownload, resp.StatusCode, url)
	}

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(dst)
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(dst)
		return fmt.Errorf("%w: %v", ErrDownload, err)
	}
	return nil
}

// swap activates the staged binary with two renames: current → .old, then
// .new → current. Each step is an atomic rename within one directory and
// each failure path restores a runnable binary, except when the rollback
// rename itself fails.
func (u *Updater) swap(staged string) error {
	backup := u.exe + oldSuffix

	if err := u.rename(u.exe, backup); err != nil {
		os.Remove(staged)
		return fmt.Errorf("%w: backup rename: %v", ErrSwap, err)
	}

	if err := u.rename(staged, u.exe); err != nil {
		if rbErr := u.rename(backup, u.exe); rbErr != nil {
			logging.Severe("update", "swap failed (%v) and rollback failed (%v): binary at %s may not boot, manual repair required", err, rbErr, u.exe)
			u.notify("Update rollback failed", fmt.Sprintf("binary at %s may not boot, manual repair required", u.exe))
			return fmt.Errorf("%w: %v (rollback: %v)", ErrRollbackFailed, err, rbErr)
		}
		os.Remove(staged)
		logging.Warn("update", "swap failed, previous binary restored: %v", err)
		return fmt.Errorf("%w: activation rename: %v", ErrSwap, err)
	}
	return nil
}

func (u *Updater) notify(title, message string) {
	if u.OnEvent != nil {
		u.OnEvent(title, message)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
