package main

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"homecal/internal/capture"
	appLog "homecal/internal/log"
	"homecal/internal/web"
)

var flagSnapshotOut string

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Render one PNG snapshot of the calendar view and exit",
	Long: `snapshot starts a temporary local server, captures the calendar UI
with headless Chromium, writes the PNG, and exits. Useful for wall displays
and e-ink frames that just poll an image.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSnapshot()
	},
}

func init() {
	snapshotCmd.Flags().StringVar(&flagSnapshotOut, "out", "", "output PNG path (default <data_dir>/preview.png)")
}

func runSnapshot() error {
	cfg, err := loadConfig()
	if err != nil {
		appLog.Error("failed to load config", err, "config_path", flagConfigPath)
		return err
	}

	out := flagSnapshotOut
	if out == "" {
		out = filepath.Join(dataDir(cfg), "preview.png")
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Temporary server for the capture target; torn down via ctx.
	server := web.NewServer(cfg, flagDebug)
	go func() {
		if err := web.StartServer(ctx, server); err != nil {
			appLog.Error("snapshot: server error", err)
		}
	}()

	// Give the listener a moment; the capture itself waits for the page's
	// data-ready signal.
	time.Sleep(500 * time.Millisecond)

	err = capture.Snapshot(ctx, capture.Options{
		URL:        "http://" + cfg.Listen + "/",
		OutputPath: out,
	})
	if err != nil {
		appLog.Error("snapshot capture failed", err)
		return err
	}

	appLog.Info("snapshot written", "path", out)
	return nil
}
