package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/akolanti/docqa/internal/app"
	"github.com/akolanti/docqa/internal/config"
	"github.com/akolanti/docqa/pkg/logger_i"
	"github.com/spf13/cobra"
)

var (
	flagConfig  string
	flagDataDir string
	flagNoSync  bool
)

var rootCmd = &cobra.Command{
	Use:          "docqa",
	Short:        "Ask questions about your documents and get answers that cite document and page",
	SilenceUsage: true,
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "docqa.yaml", "path to the YAML config file")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "data directory, overrides the config file")
	rootCmd.PersistentFlags().BoolVar(&flagNoSync, "no-sync", false, "do not ingest documents already in the storage directory on startup")

	rootCmd.AddCommand(ingestCmd, askCmd, chatCmd, documentsCmd, repairCmd, clearDataCmd, mcpCmd)
}

// openApp loads the settings and builds the pipeline. Logs go to logOut so commands that own
// stdout can keep it clean.
func openApp(ctx context.Context, logOut io.Writer) (*app.App, error) {
	settings, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDataDir != "" {
		settings.DataDir = flagDataDir
	}
	if flagNoSync {
		settings.IngestOnStartup = false
	}
	logger_i.InitWriter(logOut, settings.LogLevel, settings.LogJSON)
	return app.Build(ctx, settings)
}

func closeApp(a *app.App) {
	if err := a.Close(); err != nil {
		logger_i.NewLogger("cli").Error("Error closing the vector index", "error", err)
	}
}
