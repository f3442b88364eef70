package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	httpapi "github.com/pvforecast/pvwatts-importer/internal/api/http"
	"github.com/pvforecast/pvwatts-importer/internal/cli"
	"github.com/pvforecast/pvwatts-importer/internal/config"
	"github.com/pvforecast/pvwatts-importer/internal/logging"
	"github.com/pvforecast/pvwatts-importer/internal/metrics"
	"github.com/pvforecast/pvwatts-importer/internal/solar"
	"github.com/pvforecast/pvwatts-importer/internal/solar/providers"
)

func main() {
	// Load configuration. A missing PVWATTS_API_KEY stops here.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zlog.Sync()

	// Shared HTTP client for outbound PVWatts calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	m := metrics.New()

	pvwatts, err := providers.NewPVWattsProvider(
		providers.HTTPClientConfig{Client: httpClient},
		cfg.APIKey,
		providers.WithEndpoint(cfg.Endpoint),
		providers.WithRecorder(m),
		providers.WithLogger(zlog.Named("pvwatts")),
	)
	if err != nil {
		zlog.Fatal("failed to build provider", zap.Error(err))
	}

	service := solar.NewService(pvwatts, cfg.Defaults, zlog.Named("service"))

	serve := func(ctx context.Context) error {
		return runServer(ctx, cfg, service, m, zlog)
	}

	cmd, err := cli.New(service, serve)
	if err != nil {
		zlog.Fatal("failed to build cli", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		zlog.Error("command failed", zap.Error(err))
		stop()
		_ = zlog.Sync()
		os.Exit(1)
	}
}

func runServer(ctx context.Context, cfg *config.AppConfig, service *solar.Service, m *metrics.Metrics, zlog *zap.Logger) error {
	app := fiber.New(fiber.Config{
		AppName:               "pvwatts-importer",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			var e *fiber.Error
			if errors.As(err, &e) {
				code = e.Code
			}
			if code >= fiber.StatusInternalServerError {
				zlog.Error("request failed", zap.String("path", c.Path()), zap.Error(err))
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "pvwatts-importer",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(m.Handler()))

	httpapi.RegisterRoutes(app, service, cfg.LocationsFile)

	errCh := make(chan error, 1)
	go func() {
		zlog.Info("http server listening", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Warn("error during shutdown", zap.Error(err))
	}
	return nil
}
