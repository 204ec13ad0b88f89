package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"botd/internal/bot"
	"botd/internal/config"
	"botd/internal/console"
	"botd/internal/dispatch"
	"botd/internal/httpserver"
	"botd/internal/limiter"
	"botd/internal/logging"
	mcpserver "botd/internal/mcp"
	"botd/internal/mode"
	"botd/internal/notify"
	"botd/internal/process"
	"botd/internal/release"
	"botd/internal/ui"
	"botd/internal/update"
)

// RunDaemon is the long-lived server entry point for Normal and
// ServerEnabled modes.
func RunDaemon(sel mode.Selection) {
	for _, w := range sel.Warnings {
		logging.Warn("main", "%s", w)
	}

	cfg, err := config.Load()
	if err != nil {
		ui.ShowError("Failed to load config", err)
		os.Exit(1)
	}

	logging.EnableFile(sel.FileLogging)
	if sel.FileLogging {
		if err := logging.Init(config.Dir()); err != nil {
			ui.ShowError("Failed to open log file", err)
			os.Exit(1)
		}
		defer logging.Close()
	}

	guard := process.NewShutdownGuard()
	controller, err := process.NewController(guard)
	if err != nil {
		ui.ShowError("Cannot determine executable path", err)
		os.Exit(1)
	}

	channel := release.ParseChannel(cfg.UpdateChannel)
	if !cfg.AutoUpdates {
		channel = release.ChannelUnknown
	}
	updater := update.New(controller.Executable(), Version, channel, release.NewClient(cfg.ReleaseFeedURL), controller)
	var notifiers []notify.Notifier
	if cfg.WebhookURL != "" {
		notifiers = append(notifiers, notify.NewWebhookNotifier(cfg.WebhookURL))
	}
	if len(notifiers) > 0 {
		sink := notify.NewMultiNotifier(notifiers...)
		updater.OnEvent = func(title, message string) {
			if err := sink.Send(notify.Notification{Title: title, Message: message}); err != nil {
				logging.Warn("main", "notification failed: %v", err)
			}
		}
	}
	if err := updater.CleanupStale(); err != nil {
		ui.ShowError("Ambiguous update state on disk", err)
		os.Exit(1)
	}

	gate := limiter.New()
	loginWait := time.Duration(cfg.LoginLimiterDelay) * time.Millisecond
	prompt := console.NewSession()
	var registry *bot.Registry
	registry = bot.NewRegistry(gate, loginWait,
		func() bot.Connector { return bot.NewHandshakeConnector(2 * time.Second) },
		prompt,
		func() {
			guard.SetWorkersActive(registry.AnyRunning())
			guard.Evaluate()
		})

	interp := &dispatch.Interpreter{
		Registry: registry,
		Updater:  updater,
		Shutdown: guard,
		Version:  Version,
	}

	// The command server starts before bots begin processing, so a client
	// launched alongside the daemon can connect right away.
	var server *httpserver.Server
	if sel.Mode == mode.ServerEnabled {
		server = httpserver.New(cfg.HTTPTokens, Version, interp,
			func() interface{} { return registry.Snapshots() },
			func(listening bool) {
				guard.SetServerActive(listening)
				guard.Evaluate()
			})
		server.Handle("/mcp/", mcpserver.NewSSEHandler(interp, Version))
		if err := server.Start(cfg.HTTPBind); err != nil {
			ui.ShowError("Failed to start command server", err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// One-time startup check; errors are recovered and retried by the
	// recurring background check.
	if err := updater.CheckAndApply(ctx); err != nil {
		logging.Warn("main", "startup update check: %v", err)
	}
	updater.Start(ctx)
	defer updater.Stop()

	startBots(ctx, registry, guard)

	stopServer := func() {
		if server == nil {
			return
		}
		shutCtx, c := context.WithTimeout(context.Background(), 5*time.Second)
		defer c()
		server.Stop(shutCtx)
	}

	go func() {
		<-ctx.Done()
		logging.Info("main", "shutdown requested")
		registry.StopAll()
		stopServer()
	}()

	<-guard.Done()
	// A latch forced by a stop command or an update restart gets here with
	// the command server still serving; drain it so the triggering client
	// receives its response before the process exits. Both calls are
	// idempotent when the signal path already ran them.
	registry.StopAll()
	stopServer()
	logging.Info("main", "all workers idle and command server stopped, exiting")
}

// startBots loads bot definitions and launches the enabled ones. The
// shutdown latch is evaluated afterwards so a daemon with nothing to do
// (and no command server) exits instead of hanging.
func startBots(ctx context.Context, registry *bot.Registry, guard *process.ShutdownGuard) {
	defs, err := config.LoadBots()
	if err != nil {
		ui.ShowError("Failed to load bot definitions", err)
		os.Exit(1)
	}

	for _, def := range defs {
		b, err := registry.Add(def)
		if err != nil {
			logging.Warn("main", "skipping bot: %v", err)
			continue
		}
		if def.Enabled {
			b.Start(ctx)
		}
	}

	guard.SetWorkersActive(registry.AnyRunning())
	guard.Evaluate()
}
