package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/starhunt/pkg/api"
	"github.com/cuemby/starhunt/pkg/config"
	"github.com/cuemby/starhunt/pkg/events"
	"github.com/cuemby/starhunt/pkg/hub"
	"github.com/cuemby/starhunt/pkg/log"
	"github.com/cuemby/starhunt/pkg/metadata"
	"github.com/cuemby/starhunt/pkg/metrics"
	"github.com/cuemby/starhunt/pkg/reconciler"
	"github.com/cuemby/starhunt/pkg/storage"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
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
	Use:   "starhunt",
	Short: "Starhunt - real-time shooting star relay",
	Long: `Starhunt relays shooting star sightings between observers.

Observers connect over WebSocket, report the stars they see and receive
every other observer's reports as they arrive. The relay resolves
conflicting reports, expires stale stars and publishes reference
spawn-time and dashboard data from a shared spreadsheet.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"Starhunt version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay",
	Long: `Run the star relay: the WebSocket hub, the expiry sweeper and
periodic sync, the metadata refreshers and the HTTP endpoints.

Configuration is read from defaults, then --config, then PORT and
STARHUNT_* environment variables, then any flag set on the command line.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("config", "", "YAML configuration file")
	serveCmd.Flags().Int("port", 8080, "Port for WebSocket and HTTP")
	serveCmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().Bool("log-json", false, "Write logs as JSON")
	serveCmd.Flags().String("data-dir", "", "Directory for last-good metadata snapshots (disabled when empty)")
	serveCmd.Flags().Bool("trust-client-clock", true, "Order reports by observer timestamps instead of receipt time")
}

// applyFlags overrides cfg with every flag set explicitly on cmd
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-json") {
		cfg.LogJSON, _ = flags.GetBool("log-json")
	}
	if flags.Changed("data-dir") {
		cfg.DataDir, _ = flags.GetString("data-dir")
	}
	if flags.Changed("trust-client-clock") {
		cfg.TrustClientClock, _ = flags.GetBool("trust-client-clock")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	log.Init(log.Config{
		Level:      log.ParseLevel(cfg.LogLevel),
		JSONOutput: cfg.LogJSON,
	})
	logger := log.WithComponent("serve")

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()
	stopEventLog := startEventLog(broker)
	defer stopEventLog()

	h := hub.New(cfg.Hub(), storage.NewMemoryStore(), broker)
	metrics.RegisterComponent("hub", true, "")

	spawnTimes := metadata.NewRefresher(
		metadata.SourceSpawnTimes,
		metadata.SpawnTimeLoader(metadata.NewFetcher(cfg.SpawnTimesURL)),
		cfg.MetadataInterval,
		h.SetSpawnTimes,
	)
	dashboard := metadata.NewRefresher(
		metadata.SourceDashboard,
		metadata.DashboardLoader(metadata.NewFetcher(cfg.DashboardURL)),
		cfg.MetadataInterval,
		h.SetDashboard,
	)

	if cfg.DataDir != "" {
		snapshots, err := storage.NewBoltStore(cfg.DataDir)
		if err != nil {
			return err
		}
		defer func() {
			if err := snapshots.Close(); err != nil {
				log.Errorf("Failed to close metadata snapshots", err)
			}
		}()

		spawnTimes.WithPersister(snapshots).Seed()
		dashboard.WithPersister(snapshots).Seed()
	}

	recon := reconciler.NewReconciler(h, cfg.Reconciler())
	collector := metrics.NewCollector(h, broker, cfg.StatsInterval)
	server := api.NewServer(h, api.Config{
		Addr:    cfg.Addr(),
		Conn:    cfg.Conn(),
		Version: Version,
	})

	recon.Start()
	collector.Start()
	spawnTimes.Start()
	dashboard.Start()

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil {
			errCh <- fmt.Errorf("API server error: %w", err)
		}
	}()

	logger.Info().
		Int("port", cfg.Port).
		Bool("trust_client_clock", cfg.TrustClientClock).
		Str("version", Version).
		Msg("Relay started")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info().Str("signal", sig.String()).Msg("Shutting down")
	case runErr = <-errCh:
		logger.Error().Err(runErr).Msg("Shutting down after server failure")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Warn().Err(err).Msg("HTTP shutdown incomplete")
	}

	spawnTimes.Stop()
	dashboard.Stop()
	recon.Stop()
	collector.Stop()

	metrics.UpdateComponent("hub", false, "shutting down")
	h.Close()

	log.Info("Shutdown complete")
	return runErr
}
