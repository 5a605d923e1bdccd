package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/cuemby/loadstorm/pkg/cluster/k8sapi"
	"github.com/cuemby/loadstorm/pkg/config"
	"github.com/cuemby/loadstorm/pkg/controller"
	"github.com/cuemby/loadstorm/pkg/log"
	"github.com/cuemby/loadstorm/pkg/metrics"
	"github.com/cuemby/loadstorm/pkg/wireclient"
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
	Use:   "loadstorm-controller",
	Short: "loadstorm-controller dispatches stress tasks across cluster nodes",
	Long: `loadstorm-controller is the cluster-wide half of loadstorm. It
discovers nodes via the Kubernetes API, provisions per-node worker
engines, forwards stress requests to the worker running on a given
node, and broadcasts stop-all across the fleet.`,
	Version: Version,
	RunE:    runController,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"loadstorm-controller version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.Flags().String("addr", "0.0.0.0:8081", "Address the controller HTTP server listens on")
	rootCmd.Flags().String("kubeconfig", "", "Path to kubeconfig (defaults to in-cluster config, falling back to ~/.kube/config)")
	rootCmd.Flags().String("cluster-config", "", "Optional YAML file overriding cluster naming defaults")

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

// loadKubeConfig prefers in-cluster credentials (the controller normally
// runs as a pod) and falls back to a kubeconfig file for local runs.
func loadKubeConfig(explicitPath string) (*rest.Config, error) {
	if cfg, err := rest.InClusterConfig(); err == nil {
		return cfg, nil
	}

	path := explicitPath
	if path == "" {
		if v := os.Getenv("KUBECONFIG"); v != "" {
			path = v
		} else if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, ".kube", "config")
		}
	}

	return clientcmd.BuildConfigFromFlags("", path)
}

func runController(cmd *cobra.Command, args []string) error {
	addr, _ := cmd.Flags().GetString("addr")
	kubeconfigPath, _ := cmd.Flags().GetString("kubeconfig")
	clusterConfigPath, _ := cmd.Flags().GetString("cluster-config")
	logger := log.WithComponent("controller")

	restCfg, err := loadKubeConfig(kubeconfigPath)
	if err != nil {
		return fmt.Errorf("loading kubeconfig: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(restCfg)
	if err != nil {
		return fmt.Errorf("building kubernetes client: %w", err)
	}

	cfg := config.FromEnv()
	if clusterConfigPath != "" {
		cfg, err = config.LoadFile(clusterConfigPath, cfg)
		if err != nil {
			return fmt.Errorf("loading cluster config: %w", err)
		}
	}

	metrics.SetVersion(Version)
	metrics.SetCriticalComponents("cluster", "http")
	metrics.RegisterComponent("cluster", true, "ready")
	metrics.RegisterComponent("http", false, "starting")

	api := k8sapi.New(clientset)
	c := controller.New(api, wireclient.New(), cfg)
	defer c.Close()
	srv := &http.Server{
		Addr:    addr,
		Handler: controller.NewServer(c),
	}

	healthCtx, stopHealthWatch := context.WithCancel(context.Background())
	defer stopHealthWatch()
	go c.WatchClusterHealth(healthCtx, 15*time.Second)

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Str("namespace", cfg.Namespace).Msg("controller listening")
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
		return fmt.Errorf("controller server error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
