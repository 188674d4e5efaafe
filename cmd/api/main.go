package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bst-contable/invoice-api/internal/api"
	"github.com/bst-contable/invoice-api/internal/api/handler"
	"github.com/bst-contable/invoice-api/internal/core/service"
	"github.com/bst-contable/invoice-api/internal/export"
	"github.com/bst-contable/invoice-api/internal/infrastructure/config"
	mongodb "github.com/bst-contable/invoice-api/internal/infrastructure/db/mongo"
	redisdb "github.com/bst-contable/invoice-api/internal/infrastructure/db/redis"
	"github.com/bst-contable/invoice-api/internal/infrastructure/gmail"
	"github.com/bst-contable/invoice-api/internal/infrastructure/poller"
	"github.com/bst-contable/invoice-api/internal/infrastructure/queue"
	"github.com/bst-contable/invoice-api/internal/infrastructure/storage"
	"github.com/bst-contable/invoice-api/internal/ocr"
	"github.com/bst-contable/invoice-api/pkg/logger"

	_ "github.com/bst-contable/invoice-api/docs"
)

// @title           BST Facturas API
// @version         1.0
// @description     Invoice management backend: registration, validation workflow, OCR intake, Gmail ingestion, and dashboard aggregates.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Infrastructure ---
	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("mongo disconnect failed")
		}
	}()

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("index creation failed")
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer rdb.Close()
	cache := redisdb.NewCache(rdb)

	files, err := storage.NewDiskStore(cfg.Uploads.Dir, cfg.Uploads.MaxFileSize)
	if err != nil {
		log.Fatal().Err(err).Msg("upload directory unavailable")
	}

	exporter, err := export.NewExcelExporter(cfg.Uploads.ExportDir)
	if err != nil {
		log.Fatal().Err(err).Msg("export directory unavailable")
	}

	mailbox, err := gmail.New(cfg.Gmail.CredentialsPath, cfg.Gmail.TokenPath, logger.Component("gmail"))
	if err != nil {
		log.Fatal().Err(err).Msg("gmail client initialization failed")
	}

	// --- Repositories ---
	userRepo := mongodb.NewUserRepository(db)
	invoiceRepo := mongodb.NewInvoiceRepository(db)
	dashboardRepo := mongodb.NewDashboardRepository(db)
	accountRepo := mongodb.NewAccountRepository(db)

	// --- Services ---
	engine := ocr.NewEngine(logger.Component("ocr"))
	parser := ocr.NewParser()

	invoiceService := service.NewInvoiceService(invoiceRepo, userRepo, files, cache, exporter, log)
	userService := service.NewUserService(userRepo, invoiceRepo, files, cache, log)
	intakeService := service.NewIntakeService(engine, parser, invoiceService, ocr.SupportedFormats(), log)
	ingestionService := service.NewIngestionService(mailbox, intakeService, userRepo, cache, cfg.Gmail.DefaultUserEmail, log)
	dashboardService := service.NewDashboardService(dashboardRepo, cache, log)
	authService := service.NewAuthService(accountRepo, cfg.JWTSecret, 24*time.Hour)

	// --- Background workers ---
	dispatcher := queue.NewDispatcher(ingestionService, logger.Component("dispatcher"))
	dispatcher.Start(ctx)

	warmers := poller.New(logger.Component("poller"),
		poller.Task{
			Name:     "warm-dashboard-stats",
			Interval: 30 * time.Second,
			Run: func(ctx context.Context) error {
				_, err := dashboardService.Stats(ctx)
				return err
			},
		},
		poller.Task{
			Name:     "warm-gmail-stats",
			Interval: 30 * time.Second,
			Run: func(ctx context.Context) error {
				if !mailbox.Authenticated(ctx) {
					return nil
				}
				_, err := ingestionService.Stats(ctx)
				return err
			},
		},
		poller.Task{
			Name:     "warm-gmail-status",
			Interval: time.Minute,
			Run: func(ctx context.Context) error {
				ingestionService.Status(ctx)
				return nil
			},
		},
	)
	warmers.Start(ctx)

	// --- HTTP ---
	e := api.NewRouter(api.Handlers{
		Auth:      handler.NewAuthHandler(authService),
		Users:     handler.NewUserHandler(userService),
		Invoices:  handler.NewInvoiceHandler(invoiceService),
		Intake:    handler.NewIntakeHandler(intakeService, invoiceService),
		Gmail:     handler.NewGmailHandler(ingestionService, mailbox, dispatcher),
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Health:    handler.NewHealthHandler(db, rdb),
	}, cfg.JWTSecret, log)

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()
	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		os.Exit(1)
	}
}
