package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"homecal/internal/capture"
	"homecal/internal/config"
	"homecal/internal/ics"
	appLog "homecal/internal/log"
	"homecal/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server with periodic ICS refresh and snapshot capture",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func runServe() error {
	cfg, err := loadConfig()
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flagConfigPath)
		return err
	}

	appLog.Info("effective config",
		"listen", cfg.Listen,
		"timezone", cfg.Timezone,
		"week_start", cfg.WeekStart,
		"refresh", cfg.RefreshCron,
		"source_count", len(cfg.Sources),
		"debug", flagDebug,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	server := web.NewServer(cfg, flagDebug)

	// Config hot reload: swap the server's config when the file changes.
	// A changed refresh schedule still needs a restart; that is logged.
	watcher, err := config.Watch(flagConfigPath, func(next *config.Config) {
		if flagListen != "" {
			next.Listen = flagListen
		}
		if next.RefreshCron != cfg.RefreshCron {
			appLog.Info("refresh schedule changed; restart to apply", "refresh", next.RefreshCron)
		}
		server.UpdateConfig(next)
	})
	if err != nil {
		appLog.Error("failed to start config watcher; hot reload disabled", err, "config_path", flagConfigPath)
	} else {
		defer watcher.Close()
	}

	// Periodic refresh: warm the ICS cache and re-capture the preview.
	sched := cron.New()
	if _, err := sched.AddFunc(cfg.RefreshCron, func() {
		refresh(ctx, cfg)
	}); err != nil {
		appLog.Error("invalid refresh cron expression; periodic refresh disabled", err, "refresh", cfg.RefreshCron)
	} else {
		sched.Start()
		defer sched.Stop()
	}

	// Initial refresh once the server is up.
	go func() {
		select {
		case <-time.After(2 * time.Second):
			refresh(ctx, cfg)
		case <-ctx.Done():
		}
	}()

	err = web.StartServer(ctx, server)
	appLog.Info("homecal exiting")
	return err
}

// refresh refetches every configured ICS source into the on-disk cache and
// captures a fresh PNG snapshot of the calendar UI.
func refresh(ctx context.Context, cfg *config.Config) {
	dir := dataDir(cfg)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		appLog.Error("refresh: failed to create data dir", err, "dir", dir)
		return
	}

	sources := make([]ics.Source, 0, len(cfg.Sources))
	for _, src := range cfg.Sources {
		if src.URL == "" {
			continue
		}
		sources = append(sources, ics.Source{ID: src.ID, URL: src.URL})
	}
	if len(sources) > 0 {
		fetcher := ics.NewFetcher(filepath.Join(dir, "ics-cache"))
		_, errs := fetcher.FetchAll(ctx, sources)
		appLog.Info("refresh: ics cache updated", "sources", len(sources), "errors", len(errs))
	}

	err := capture.Snapshot(ctx, capture.Options{
		URL:        "http://" + cfg.Listen + "/",
		OutputPath: filepath.Join(dir, "preview.png"),
	})
	if err != nil {
		appLog.Error("refresh: snapshot capture failed", err)
		return
	}
	appLog.Info("refresh: snapshot captured", "path", filepath.Join(dir, "preview.png"))
}
