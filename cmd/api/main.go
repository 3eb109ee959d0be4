package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"imagevault/docs"
	"imagevault/internal/config"
	"imagevault/internal/database"
	"imagevault/internal/database/migration"
	handlers "imagevault/internal/http/handler"
	"imagevault/internal/http/middleware"
	"imagevault/internal/logging"
	"imagevault/internal/otel"
	"imagevault/internal/policy"
	"imagevault/internal/repository/postgres"
	"imagevault/internal/service"
	"imagevault/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// @title Image Vault API
// @version 1.0
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	log := logging.New(os.Stdout, cfg.Location(), logging.LevelFromString(cfg.LogLevel))

	if err := run(cfg, log); err != nil {
		log.Error("server_failed", "error", err.Error())
		os.Exit(1)
	}
}

func run(cfg *config.AppConfig, log *slog.Logger) error {
	if cfg.Auth.JWTSecret == "" {
		return errors.New("AUTH_JWT_SECRET is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := otel.Init(ctx, log)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Error("tracing_shutdown_failed", "error", err.Error())
		}
	}()

	// PostgreSQL with pooling via database/sql; otelsql spans come from NewPostgres.
	db, err := database.NewPostgres(ctx, cfg.Database, log)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
		return err
	}

	store, err := storage.New(ctx, cfg.Storage, log)
	if err != nil {
		return err
	}

	imageRepo := postgres.NewImagePostgres(db)
	pol := policy.New(cfg.Images.MaxSizeBytes, policy.DefaultAllowedTypes...)
	presignSvc := service.NewPresignService(store, pol, seconds(cfg.Images.URLExpirySec))
	registrarSvc := service.NewRegistrarService(imageRepo)
	gallerySvc := service.NewGalleryService(imageRepo)
	deletionSvc := service.NewDeletionService(imageRepo, store, log, seconds(cfg.Images.DeleteConfirmSec))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	promMiddleware, err := middleware.NewPrometheusMiddleware(reg)
	if err != nil {
		return err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler:          handlers.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(log))
	app.Use(promMiddleware.Handler())

	app.Get(middleware.MetricsPath, adaptor.HTTPHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	handlers.RegisterRoutes(app, handlers.Deps{
		DB:        db,
		Presign:   presignSvc,
		Registrar: registrarSvc,
		Gallery:   gallerySvc,
		Deletion:  deletionSvc,
		JWTSecret: []byte(cfg.Auth.JWTSecret),
		PageSize:  cfg.Images.PageSize,
	})

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	if cfg.Images.SweepIntervalSec > 0 {
		reconciler := service.NewReconciler(imageRepo, store, log, seconds(cfg.Images.SweepGraceSec))
		go reconciler.Run(ctx, seconds(cfg.Images.SweepIntervalSec))
	}

	addr := ":" + cfg.Port
	errCh := make(chan error, 1)
	go func() {
		log.Info("server_started", "addr", addr, "storage_driver", cfg.Storage.Driver)
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server_stopping")
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
