package admin

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

	"github.com/linsalefe/pos-plataform/internal/api/handlers"
	"github.com/linsalefe/pos-plataform/internal/config"
	"github.com/linsalefe/pos-plataform/internal/database"
	"github.com/linsalefe/pos-plataform/internal/jobs"
	"github.com/linsalefe/pos-plataform/internal/logging"
	"github.com/linsalefe/pos-plataform/internal/metrics"
	"github.com/linsalefe/pos-plataform/internal/server"
	"github.com/linsalefe/pos-plataform/internal/telemetry"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the lead assistant API server and the summary worker",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides LEADBOT_PORT)")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")
	cmd.Flags().String("migrations", "migrations", "Directory holding the SQL migrations")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}

	logCloser := logging.Setup(logging.Config{Path: cfg.LogPath, Level: cfg.LogLevel})
	defer logCloser.Close()

	shutdownTelemetry := initTelemetry(cfg)
	defer shutdownTelemetry()

	if noMigrate, _ := cmd.Flags().GetBool("no-migrate"); !noMigrate {
		dir, _ := cmd.Flags().GetString("migrations")
		if err := database.Migrate(cfg.DatabaseURL, dir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	m := metrics.New("leadbot")
	a, err := newApp(ctx, cfg, m)
	if err != nil {
		return err
	}
	defer a.Close()
	slog.Info("connected to database")

	var summaryWorker *jobs.Worker
	if cfg.SummaryInterval > 0 {
		processor := jobs.NewSummaryWorker(a.summaries, cfg.SummaryBatchSize)
		summaryWorker = jobs.NewWorker("summaries", processor, cfg.SummaryInterval)
		go summaryWorker.Start(ctx)
	}

	routerCfg := server.RouterConfig{
		MetricsHandler:  m.Handler(),
		AIConfigHandler: handlers.NewAIConfigHandler(a.configs),
		DocumentHandler: handlers.NewDocumentHandler(a.knowledge),
		ContactHandler:  handlers.NewContactHandler(a.contacts),
		ChatHandler:     handlers.NewChatHandler(a.replies, cfg.DefaultChannelID),
		SummaryHandler:  handlers.NewSummaryHandler(a.summaries),
		CalendarHandler: handlers.NewCalendarHandler(a.calendar, cfg.CalendarConsultant),
	}
	if a.auth.Enabled() {
		routerCfg.AuthValidator = a.auth
	} else {
		slog.Warn("LEADBOT_API_TOKENS not set, /api routes are unauthenticated")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server.NewRouter(routerCfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	}
	slog.Info("shutting down")

	if summaryWorker != nil {
		summaryWorker.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exited")
	return nil
}

// initTelemetry starts Sentry when a DSN is configured. Production samples
// 10% of traces, everything else samples all of them.
func initTelemetry(cfg *config.Config) func() {
	if cfg.SentryDSN == "" {
		return func() {}
	}

	sampleRate := 1.0
	if cfg.Environment == "production" {
		sampleRate = 0.1
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		slog.Warn("telemetry init failed, continuing without tracing", slog.Any("error", err))
		return func() {}
	}
	return shutdown
}
