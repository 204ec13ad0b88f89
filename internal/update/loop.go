package update

import (
	"context"
	"errors"
	"time"

	"botd/internal/logging"
	"botd/internal/release"
)

// Start arms the recurring background check. Each firing runs one cycle;
// feed, parse, asset and download failures are logged and retried at the
// next firing. Stop (or a failed restart) cancels future firings. Start
// is a no-op when the channel is unknown.
func (u *Updater) Start(ctx context.Context) {
	if u.channel == release.ChannelUnknown {
		logging.Info("update", "update channel unknown, automatic checks disabled")
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	u.mu.Lock()
	u.stop = cancel
	u.mu.Unlock()

	go u.loop(ctx)
}

// Stop cancels future background checks. A cycle already in flight runs
// to completion.
func (u *Updater) Stop() {
	u.mu.Lock()
	if u.stop != nil {
		u.stop()
		u.stop = nil
	}
	u.mu.Unlock()
}

func (u *Updater) loop(ctx context.Context) {
	ticker := time.NewTicker(CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := u.CheckAndApply(ctx); err != nil {
				if errors.Is(err, ErrRestartFailed) || errors.Is(err, ErrRollbackFailed) {
					return
				}
				logging.Warn("update", "scheduled check failed: %v", err)
			}
		}
	}
}
