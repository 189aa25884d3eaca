package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"homecal/internal/config"
	appLog "homecal/internal/log"
)

var (
	flagConfigPath string
	flagListen     string
	flagDebug      bool
)

var rootCmd = &cobra.Command{
	Use:   "homecal",
	Short: "homecal - household calendar server",
	Long: `homecal aggregates the household's ICS feeds into day/week/month
calendar layouts, serves them over HTTP together with a web UI, and keeps a
rendered PNG snapshot fresh on a cron schedule.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "/etc/homecal/config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&flagListen, "listen", "", "HTTP listen address (overrides config if set)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "debug mode: verbose logging, local ./cache data dir")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(snapshotCmd)
}

// loadConfig loads the config file and applies CLI overrides.
func loadConfig() (*config.Config, error) {
	if flagDebug {
		appLog.SetLevel(appLog.LevelDebug)
	}

	cfg, err := config.Load(flagConfigPath)
	if err != nil {
		return nil, err
	}
	if flagListen != "" {
		cfg.Listen = flagListen
	}
	return cfg, nil
}

// dataDir returns the effective data directory for this process.
func dataDir(cfg *config.Config) string {
	if flagDebug {
		return "./cache"
	}
	return cfg.DataDir
}
