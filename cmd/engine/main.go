package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cuemby/loadstorm/pkg/engine"
	"github.com/cuemby/loadstorm/pkg/log"
	"github.com/cuemby/loadstorm/pkg/metrics"
)

var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "loadstorm-engine",
	Short: "loadstorm-engine runs CPU, memory, and disk stress tasks on a single node",
	Long: `loadstorm-engine is the per-node worker half of loadstorm, a
cluster stress-testing tool. It accepts stress requests over HTTP,
runs them as cancellable background tasks, and reports task status
back to the controller that dispatched them.`,
	Version: Version,
	RunE:    runEngine,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"loadstorm-engine version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.Flags().String("addr", "0.0.0.0:8080", "Address the engine HTTP server listens on")

	cobra.OnInitialize(initLogging)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func runEngine(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	logger := log.WithComponent("engine")

	metrics.SetVersion(Version)
	metrics.SetCriticalComponents("registry", "http")
	metrics.RegisterComponent("registry", true, "ready")
	metrics.RegisterComponent("http", false, "starting")

	e := engine.New()
	defer e.Close()
	srv := &http.Server{
		Addr:    addr,
		Handler: engine.NewServer(e),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("engine listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	time.Sleep(100 * time.Millisecond)
	metrics.RegisterComponent("http", true, "ready")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info().Msg("shutting down")
	case err := <-errCh:
		return fmt.Errorf("engine server error: %w", err)
	}

	stopped := e.StopAll()
	logger.Info().Int("stopped", stopped).Msg("stop signal sent to active tasks")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
