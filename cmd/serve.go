package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/teemow/calendar-assistant/internal/config"
	"github.com/teemow/calendar-assistant/internal/instrumentation"
	"github.com/teemow/calendar-assistant/internal/resources"
	"github.com/teemow/calendar-assistant/internal/server"
	"github.com/teemow/calendar-assistant/internal/tools/calendar_tools"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server",
		Long: `Start the MCP server exposing the Google Calendar tools.

Supports multiple transport types:
  - stdio: Standard input/output (default)
  - streamable-http: Streamable HTTP server on --http-addr, with /healthz and /readyz

Write tools (create_event, update_event, delete_event) are not registered
when --read-only is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("transport", config.TransportStdio, "Transport type: stdio or streamable-http")
	flags.String("http-addr", ":8080", "HTTP server address (for streamable-http transport)")
	flags.Bool("read-only", false, "Only register tools that do not modify the calendar")
	flags.Duration("request-timeout", 30*time.Second, "Timeout for each Google Calendar API call")
	flags.Bool("metrics-enabled", true, "Serve Prometheus metrics on a dedicated port (streamable-http only)")
	flags.String("metrics-addr", server.DefaultMetricsAddr, "Metrics server address")

	bindFlags(flags, map[string]string{
		config.KeyTransport:      "transport",
		config.KeyHTTPAddr:       "http-addr",
		config.KeyReadOnly:       "read-only",
		config.KeyRequestTimeout: "request-timeout",
		config.KeyMetricsEnabled: "metrics-enabled",
		config.KeyMetricsAddr:    "metrics-addr",
	})

	return cmd
}

func runServe(cfg *config.Config) error {
	logger := slog.Default()

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("instrumentation shutdown failed", "error", err)
		}
	}()

	// Metrics get their own port and are never served next to stdio.
	var metricsServer *server.MetricsServer
	if cfg.Transport != config.TransportStdio && cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = startMetricsServer(cfg.MetricsAddr, provider, logger)
		if err != nil {
			return err
		}
	}

	serverContext := server.NewServerContext(shutdownCtx, newServiceFactory(shutdownCtx, cfg, logger, provider.Metrics()))
	serverContext.SetLogger(logger)
	if provider.Enabled() {
		serverContext.SetMetrics(provider.Metrics())
		serverContext.SetAuditLogger(provider.AuditLogger(logger))
	}
	defer func() {
		if metricsServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("metrics server shutdown failed", "error", err)
			}
		}
		if err := serverContext.Shutdown(); err != nil {
			logger.Warn("server context shutdown failed", "error", err)
		}
	}()

	// Fail at startup rather than on the first tool call when credentials
	// or the token are missing.
	if _, err := serverContext.CalendarService(shutdownCtx); err != nil {
		return fmt.Errorf("failed to initialize Google Calendar client: %w", err)
	}

	mcpSrv := mcpserver.NewMCPServer(serverName, version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false), // Subscribe and listChanged
	)

	opts, err := dispatcherOptions(cfg, logger)
	if err != nil {
		return err
	}
	dispatcher := calendar_tools.RegisterCalendarTools(mcpSrv, serverContext, cfg.ReadOnly, opts...)
	resources.RegisterCalendarResources(mcpSrv, dispatcher,
		resources.NewSettings(serverName, version, cfg.CalendarID, cfg.TimeZone, cfg.ReadOnly))

	if cfg.ReadOnly {
		logger.Info("starting in read-only mode, write tools are not registered")
	}

	switch cfg.Transport {
	case config.TransportStdio:
		return runStdioServer(mcpSrv)
	case config.TransportStreamableHTTP:
		return runStreamableHTTPServer(shutdownCtx, mcpSrv, serverContext, cfg.HTTPAddr, logger)
	default:
		return fmt.Errorf("unsupported transport type: %s (supported: %s, %s)",
			cfg.Transport, config.TransportStdio, config.TransportStreamableHTTP)
	}
}

func startMetricsServer(addr string, provider *instrumentation.Provider, logger *slog.Logger) (*server.MetricsServer, error) {
	metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
		Addr:                    addr,
		InstrumentationProvider: provider,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create metrics server: %w", err)
	}

	metricsReady := make(chan struct{})
	metricsErr := make(chan error, 1)
	go func() {
		if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
			metricsErr <- err
		}
		close(metricsErr)
	}()

	select {
	case <-metricsReady:
		logger.Info("metrics server started", "addr", metricsServer.Addr())
		return metricsServer, nil
	case err := <-metricsErr:
		return nil, fmt.Errorf("metrics server failed to start: %w", err)
	case <-time.After(5 * time.Second):
		return nil, fmt.Errorf("metrics server startup timed out")
	}
}

func runStdioServer(mcpSrv *mcpserver.MCPServer) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := mcpserver.ServeStdio(mcpSrv); err != nil {
			serverDone <- err
		}
	}()

	err := <-serverDone
	if err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

func runStreamableHTTPServer(ctx context.Context, mcpSrv *mcpserver.MCPServer, sc *server.ServerContext, addr string, logger *slog.Logger) error {
	httpServer := server.NewHTTPServer(mcpSrv, sc, addr, version)

	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	logger.Info("MCP server listening",
		"transport", config.TransportStreamableHTTP,
		"addr", addr,
		"endpoint", "/mcp",
		"health", "/healthz, /readyz")

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
		logger.Info("HTTP server stopped")
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}
