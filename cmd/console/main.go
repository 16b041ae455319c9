package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"asset-console/pkg/auth"
	"asset-console/pkg/config"
	"asset-console/pkg/console"
	"asset-console/pkg/discovery"
	"asset-console/pkg/metrics"
	"asset-console/pkg/notify"
	"asset-console/pkg/rest"
	"asset-console/pkg/store"
	"asset-console/pkg/version"
)

func main() {
	cfg := config.Load()

	apiURL := flag.String("api", cfg.BaseURL, "inventory backend base URL (env CONSOLE_API_URL)")
	token := flag.String("token", cfg.Token, "bearer token for the backend (env CONSOLE_API_TOKEN)")
	pollInterval := flag.Duration("poll-interval", cfg.PollInterval, "active-scan poll cadence")
	journalPath := flag.String("journal", cfg.JournalPath, "sqlite mutation journal path (empty disables)")
	metricsAddr := flag.String("metrics-addr", cfg.MetricsAddr, "prometheus listen address (empty disables)")
	consulAddr := flag.String("consul-addr", cfg.ConsulAddr, "resolve backend URL from consul (requires build tag consul)")
	consulService := flag.String("consul-service", "asset-api", "consul service name for the backend")
	streamScans := flag.Bool("stream-scans", cfg.StreamScans, "subscribe to websocket scan progress")
	showVersion := flag.Bool("v", false, "print version and exit")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	if *showVersion {
		sugar.Infof("console version=%s", version.Build)
		return
	}

	base := *apiURL
	if *consulAddr != "" && discovery.Enabled() {
		if resolved, err := discovery.ResolveBaseURL(*consulAddr, "", *consulService); err != nil {
			sugar.Warnf("consul discovery failed, using configured URL: %v", err)
		} else if resolved != "" {
			base = resolved
			sugar.Infof("backend resolved via consul url=%s", base)
		}
	}

	tokens := auth.Screened{Source: auth.Static(*token)}
	notes := notify.New(notify.DefaultTTL)
	notes.OnChange(func(msg string) {
		if msg != "" {
			sugar.Infof("notice: %s", msg)
		}
	})

	st := store.New()
	api := rest.NewClient(base, &http.Client{Timeout: 15 * time.Second}, tokens, notes, sugar)
	mx := metrics.New(nil)

	var journal *console.Journal
	if *journalPath != "" {
		journal, err = console.OpenJournal(*journalPath, sugar)
		if err != nil {
			sugar.Warnf("journal disabled: %v", err)
			journal = nil
		}
	}
	defer func() { _ = journal.Close() }()

	ui := console.New(console.Options{
		API:          api,
		Store:        st,
		Notes:        notes,
		Logger:       sugar,
		Metrics:      mx,
		Journal:      journal,
		PollInterval: *pollInterval,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	refresh(ctx, sugar, ui)

	go ui.Poller().Run(ctx)
	// Pick up a scan that was already running before we started.
	ui.Poller().Kick()

	if *streamScans {
		if stream := console.NewScanStream(base, tokens, ui.Poller(), sugar); stream != nil {
			go stream.Run(ctx)
		}
	}

	if *metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			srv := &http.Server{Addr: *metricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
			sugar.Infof("metrics listening on %s", *metricsAddr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				sugar.Warnf("metrics server: %v", err)
			}
		}()
	}

	sugar.Infof("console version=%s backend=%s assets=%d", version.Build, base, st.Assets.Len())

	status := time.NewTicker(10 * time.Second)
	defer status.Stop()
	for {
		select {
		case <-ctx.Done():
			sugar.Infof("shutting down")
			return
		case <-status.C:
			if task, ok := st.ActiveScanTask(); ok {
				sugar.Infof("scan %d %s %d%% (%d/%d) current=%s", task.ID, task.Status, task.Progress, task.CompletedIPs, task.TotalIPs, task.CurrentIP)
			}
		}
	}
}

// refresh loads every collection once at startup; failures log and continue
// so a partially reachable backend still yields a usable console.
func refresh(ctx context.Context, sugar *zap.SugaredLogger, ui *console.Console) {
	rctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"assets", func(c context.Context) error { _, err := ui.RefreshAssets(c); return err }},
		{"asset groups", func(c context.Context) error { _, err := ui.RefreshAssetGroups(c); return err }},
		{"labels", func(c context.Context) error { _, err := ui.RefreshLabels(c); return err }},
		{"credentials", func(c context.Context) error { _, err := ui.RefreshCredentials(c); return err }},
		{"scan tasks", func(c context.Context) error { _, err := ui.RefreshScanTasks(c); return err }},
		{"operations", func(c context.Context) error { _, err := ui.RefreshOperations(c); return err }},
		{"jobs", func(c context.Context) error { _, err := ui.RefreshJobs(c); return err }},
	}
	for _, s := range steps {
		if err := s.fn(rctx); err != nil {
			sugar.Warnf("initial %s refresh failed: %v", s.name, err)
		}
	}
}
