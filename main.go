// Meili Admin is an administration CLI and Prometheus exporter for a
// Meilisearch instance. It manages the index lifecycle (list, get, create,
// update, delete, get-or-create), triggers dumps, and exposes instance
// statistics as Prometheus metrics.
//
// Usage:
//
//	meili_admin serve --config config.yaml [--debug]
//	meili_admin index list --config config.yaml
//	meili_admin dump create --config config.yaml --wait
//
// Configuration is provided via YAML file specifying:
//   - Server settings (host, port, metrics URI, scraping interval)
//   - Meilisearch instance details (scheme, host, port, API key)
//   - OpenTelemetry settings (endpoint, sampling rate)
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/fjacquet/meili_admin/internal/config"
	"github.com/fjacquet/meili_admin/internal/exporter"
	"github.com/fjacquet/meili_admin/internal/logging"
	"github.com/fjacquet/meili_admin/internal/models"
	"github.com/fjacquet/meili_admin/internal/telemetry"
	"github.com/fjacquet/meili_admin/internal/utils"
)

const (
	programName       = "meili_admin"    // Application name
	programVersion    = "1.0.0"          // Application version for telemetry resource attributes
	shutdownTimeout   = 10 * time.Second // Maximum time to wait for graceful shutdown
	readHeaderTimeout = 5 * time.Second  // HTTP server read header timeout
)

var (
	configFile string
	debug      bool
)

// Server encapsulates the HTTP server and its dependencies for serving
// Prometheus metrics. It manages the lifecycle of the HTTP server, the
// Prometheus registry, the Meilisearch collector and the OpenTelemetry
// telemetry manager.
//
// Server errors (such as port binding failures) are communicated through
// the ErrorChan() channel rather than log.Fatal, so the caller can perform
// graceful shutdown even when the server encounters errors.
type Server struct {
	safeCfg          *models.SafeConfig       // Thread-safe configuration for reload support
	httpSrv          *http.Server             // HTTP server instance
	registry         *prometheus.Registry     // Prometheus metrics registry
	telemetryManager *telemetry.Manager       // OpenTelemetry telemetry manager (nil if disabled)
	collector        *exporter.MeiliCollector // Meilisearch collector (for reload and cleanup)
	tracerProvider   trace.TracerProvider     // Injected into rebuilt collectors on reload

	// serverErrChan receives HTTP server errors. It is buffered (capacity 1)
	// so the goroutine can send an error even if the main select hasn't
	// started listening yet.
	serverErrChan chan error
}

// NewServer creates a new server instance with the provided configuration.
// It initializes a new Prometheus registry for metric collection and
// creates a telemetry manager if OpenTelemetry is enabled.
func NewServer(cfg models.Config) *Server {
	var telemetryMgr *telemetry.Manager

	if cfg.IsOTelEnabled() {
		telemetryMgr = telemetry.NewManager(telemetry.Config{
			Enabled:        cfg.OpenTelemetry.Enabled,
			Endpoint:       cfg.OpenTelemetry.Endpoint,
			Insecure:       cfg.OpenTelemetry.Insecure,
			SamplingRate:   cfg.OpenTelemetry.SamplingRate,
			ServiceName:    programName,
			ServiceVersion: programVersion,
			MeiliServer:    cfg.MeiliServer.Host,
		})
	}

	return &Server{
		safeCfg:          models.NewSafeConfig(&cfg),
		registry:         prometheus.NewRegistry(),
		telemetryManager: telemetryMgr,
		serverErrChan:    make(chan error, 1),
	}
}

// Start initializes and starts the HTTP server with the Prometheus metrics
// endpoint. It initializes OpenTelemetry if enabled, registers the
// Meilisearch collector, configures HTTP handlers, and starts the server
// in a goroutine.
//
// The server exposes:
//   - Metrics endpoint at the configured URI (default: /metrics)
//   - Health check endpoint at /health
func (s *Server) Start() error {
	cfg := s.safeCfg.Get()

	if s.telemetryManager != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.telemetryManager.Initialize(ctx); err != nil {
			// Telemetry manager handles graceful degradation
			log.Warnf("Failed to initialize OpenTelemetry: %v. Continuing without tracing.", err)
		}

		if s.telemetryManager.IsEnabled() {
			s.tracerProvider = s.telemetryManager.TracerProvider()

			otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
				propagation.TraceContext{},
				propagation.Baggage{},
			))
			log.Info("OpenTelemetry trace context propagation configured")
		}
	}

	collector, err := s.buildCollector(cfg)
	if err != nil {
		return fmt.Errorf("failed to create collector: %w", err)
	}
	s.collector = collector

	if err := s.registry.Register(collector); err != nil {
		return fmt.Errorf("failed to register collector: %w", err)
	}

	if err := collector.TestConnectivity(context.Background()); err != nil {
		// The exporter still starts; meili_up reports 0 until the instance answers
		log.Warnf("Meilisearch connectivity check failed: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle(cfg.Server.URI, promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", s.healthHandler)

	s.httpSrv = &http.Server{
		Addr:              cfg.GetServerAddress(),
		Handler:           mux,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Infof("Starting %s on %s%s", programName, cfg.GetServerAddress(), cfg.Server.URI)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	return nil
}

// buildCollector creates a Meilisearch collector from finalized configuration.
func (s *Server) buildCollector(cfg *models.Config) (*exporter.MeiliCollector, error) {
	icfg, err := models.NewImmutableConfig(cfg)
	if err != nil {
		return nil, err
	}

	var opts []exporter.CollectorOption
	if s.tracerProvider != nil {
		opts = append(opts, exporter.WithCollectorTracerProvider(s.tracerProvider))
	}

	return exporter.NewMeiliCollector(icfg, opts...), nil
}

// ReloadConfig reloads the configuration file, validating it before
// applying. When the Meilisearch connection settings changed, the
// collector is rebuilt against the new instance and the old one is
// unregistered and closed. Invalid configurations are rejected without
// affecting the running exporter.
func (s *Server) ReloadConfig(configPath string) error {
	serverChanged, err := s.safeCfg.ReloadConfig(configPath)
	if err != nil {
		return err
	}

	if !serverChanged {
		return nil
	}

	collector, err := s.buildCollector(s.safeCfg.Get())
	if err != nil {
		return fmt.Errorf("failed to rebuild collector: %w", err)
	}

	s.registry.Unregister(s.collector)
	if err := s.registry.Register(collector); err != nil {
		return fmt.Errorf("failed to register rebuilt collector: %w", err)
	}

	old := s.collector
	s.collector = collector
	if err := old.Close(); err != nil {
		log.Warnf("Closing previous collector: %v", err)
	}

	log.Info("Collector rebuilt for new Meilisearch connection settings")
	return nil
}

// ErrorChan returns the channel for receiving server errors.
func (s *Server) ErrorChan() <-chan error {
	return s.serverErrChan
}

// Shutdown gracefully shuts down the server components in order:
//
//  1. Stop HTTP server (no new scrapes accepted)
//  2. Shutdown OpenTelemetry (flush pending spans)
//  3. Close collector (drains API connections)
//
// Telemetry is shut down before the client so traces from in-flight
// requests are flushed before connections close.
func (s *Server) Shutdown() error {
	var errs []error

	if s.httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("Shutting down HTTP server...")
		if err := s.httpSrv.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("HTTP server shutdown: %w", err))
		}
	}

	if s.telemetryManager != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info("Shutting down telemetry...")
		if err := s.telemetryManager.Shutdown(ctx); err != nil {
			// Telemetry shutdown warnings are non-fatal
			log.Warnf("Telemetry shutdown warning: %v", err)
		}
	}

	if s.collector != nil {
		log.Info("Closing collector connections...")
		if err := s.collector.Close(); err != nil {
			errs = append(errs, fmt.Errorf("collector close: %w", err))
		}
	}

	close(s.serverErrChan)

	if len(errs) > 0 {
		log.Errorf("Shutdown completed with %d errors", len(errs))
		return errs[0]
	}

	log.Info("Server stopped gracefully")
	return nil
}

// healthHandler provides a simple health check endpoint for load balancers
// and monitoring systems.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK\n")
}

// validateConfig checks if the configuration file exists, loads it, and
// validates its contents.
func validateConfig(configPath string) (*models.Config, error) {
	if !utils.FileExists(configPath) {
		return nil, fmt.Errorf("config file not found: %s", configPath)
	}

	var cfg models.Config
	if err := utils.ReadFile(&cfg, configPath); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setupLogging initializes the logging system with the configured log file.
// If debug mode is enabled, sets the log level to DEBUG for verbose output.
func setupLogging(cfg models.Config, debugMode bool) error {
	if cfg.Server.LogName != "" {
		if err := logging.PrepareLogs(cfg.Server.LogName); err != nil {
			return fmt.Errorf("failed to initialize logging: %w", err)
		}
	}

	if debugMode {
		log.SetLevel(log.DebugLevel)
		log.Debug("Debug mode enabled")
	}

	return nil
}

// waitForShutdown blocks until either a shutdown signal (SIGINT, SIGTERM)
// is received or a server error occurs through the error channel.
func waitForShutdown(serverErr <-chan error) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		log.Infof("Received signal %v, initiating graceful shutdown...", sig)
		return nil
	case err := <-serverErr:
		return err
	}
}

// newServeCmd builds the serve subcommand running the Prometheus exporter.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Prometheus exporter",
		Long:  "Serve Meilisearch instance statistics as Prometheus metrics, with SIGHUP and file-watch config reload",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := validateConfig(configFile)
			if err != nil {
				return err
			}

			if err := setupLogging(*cfg, debug); err != nil {
				return err
			}

			log.Infof("Starting %s...", programName)
			log.Infof("Meilisearch instance: %s", cfg.GetMeiliBaseURL())
			log.Infof("Scraping interval: %s", cfg.Server.ScrapingInterval)
			if debug {
				log.Infof("API Key: %s", cfg.MaskAPIKey())
			}

			server := NewServer(*cfg)
			if err := server.Start(); err != nil {
				return err
			}

			// Config reload via SIGHUP and file watching
			config.SetupSIGHUPHandler(configFile, server.ReloadConfig)
			watcher, err := config.WatchConfigFile(configFile, server.ReloadConfig)
			if err != nil {
				log.Warnf("File watcher setup failed: %v", err)
			} else {
				defer watcher.Close()
			}

			if err := waitForShutdown(server.ErrorChan()); err != nil {
				log.Errorf("Server error: %v", err)
				// Continue to graceful shutdown
			}

			return server.Shutdown()
		},
	}
}

func main() {
	rootCmd := &cobra.Command{
		Use:   programName,
		Short: "Administration CLI and Prometheus exporter for Meilisearch",
		Long:  "Meili Admin manages the index lifecycle of a Meilisearch instance, triggers dumps, and exposes instance statistics as Prometheus metrics",
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (required)")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "Enable debug mode")
	_ = rootCmd.MarkPersistentFlagRequired("config")

	rootCmd.AddCommand(
		newServeCmd(),
		newIndexCmd(),
		newDumpCmd(),
		newHealthCmd(),
		newVersionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
