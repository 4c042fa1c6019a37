package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/apklist/apklist/internal/api"
	"github.com/apklist/apklist/internal/catalog"
	"github.com/apklist/apklist/internal/clock/system"
	"github.com/apklist/apklist/internal/config"
	"github.com/apklist/apklist/internal/id/uuid"
	"github.com/apklist/apklist/internal/logging"
	"github.com/apklist/apklist/internal/metrics"
	"github.com/apklist/apklist/internal/page"
	"github.com/apklist/apklist/internal/refresh"
)

// newServeCmd creates the 'serve' subcommand running the refresh loop and
// the HTTP server until SIGINT/SIGTERM.
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Runs the APK list HTTP server",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	metrics.Init()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := catalog.NewClient(catalog.ClientConfig{
		BaseURL:        cfg.Catalog.BaseURL,
		APIKey:         cfg.Auth.APIKey,
		Timeout:        cfg.CatalogTimeout(),
		MaxRetries:     cfg.Catalog.MaxRetries,
		BackoffInitial: cfg.BackoffInitial(),
		BackoffMax:     cfg.BackoffMax(),
	}, logger.Named("catalog"))

	builder, err := page.NewBuilder(cfg.Templates.Dir, logger.Named("page"))
	if err != nil {
		return fmt.Errorf("init page builder: %w", err)
	}
	cache := page.NewCache()

	var wake <-chan struct{}
	if cfg.Templates.Watch {
		if _, statErr := os.Stat(cfg.Templates.Dir); statErr == nil {
			watcher, werr := page.NewWatcher(cfg.Templates.Dir, builder, logger.Named("watch"))
			if werr != nil {
				logger.Warn("template watching disabled", zap.Error(werr))
			} else {
				go watcher.Run(ctx)
				wake = watcher.Changed()
			}
		}
	}

	scheduler := refresh.New(
		client,
		builder,
		cache,
		system.New(),
		uuid.New(),
		refresh.Config{
			UpdateInterval: cfg.UpdateInterval(),
			RetryInterval:  cfg.RetryInterval(),
		},
		wake,
		logger.Named("refresh"),
	)
	go scheduler.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           api.NewServer(cache, logger.Named("api")).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.ListenAddr()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	logger.Info("shutdown complete")
	return nil
}
