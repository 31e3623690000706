package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/nightclub-booking/internal/clock"
	"github.com/iliyamo/nightclub-booking/internal/config"
	"github.com/iliyamo/nightclub-booking/internal/database"
	"github.com/iliyamo/nightclub-booking/internal/handler"
	"github.com/iliyamo/nightclub-booking/internal/logger"
	"github.com/iliyamo/nightclub-booking/internal/middleware"
	"github.com/iliyamo/nightclub-booking/internal/queue"
	"github.com/iliyamo/nightclub-booking/internal/repository"
	"github.com/iliyamo/nightclub-booking/internal/router"
	"github.com/iliyamo/nightclub-booking/internal/service"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.WithError(err).Fatal("mysql: connect failed")
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := database.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("mysql: migrate failed")
		}
		log.Info("mysql: schema up to date")
	}

	publisher := queue.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, log)
	defer publisher.Close()

	cacheCfg := config.LoadCacheConfig()
	rdb := config.NewRedisClient(log)
	if rdb != nil {
		defer rdb.Close()
	}

	p := service.Property{
		Tx:                repository.NewTxManager(db),
		Zones:             repository.NewZoneRepo(db),
		Seats:             repository.NewSeatRepo(db),
		Categories:        repository.NewCategoryRepo(db),
		Events:            repository.NewEventRepo(db),
		Bookings:          repository.NewBookingRepo(db),
		Transactions:      repository.NewTransactionRepo(db),
		Publisher:         publisher,
		Clock:             clock.NewSystem(),
		Logger:            log,
		PendingBookingTTL: cfg.PendingBookingTTL,
		AuditRetention:    cfg.AuditRetention,
	}
	audit := repository.NewAuditRepo(db, log)
	p.Audit = audit
	p.AuditLog = audit
	// A nil *RedisCachePurger stored in the interface would not compare
	// equal to nil, so only assign a live one.
	if purger := middleware.NewRedisCachePurger(rdb, cacheCfg.Prefix); purger != nil {
		p.Cache = purger
	}

	events := service.NewEventService(p)
	bookings := service.NewBookingService(p)
	maintenance := service.NewMaintenanceService(p)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(
		middleware.RequestID(),
		middleware.RequestLogger(log),
		echomw.Recover(),
	)

	router.Register(e, router.Handlers{
		Health:   handler.NewHealthHandler(db),
		Events:   handler.NewEventHandler(events, service.NewAvailabilityService(p)),
		Bookings: handler.NewBookingHandler(bookings, service.NewPaymentService(p)),
		Catalog:  handler.NewCatalogHandler(service.NewCatalogService(p)),
		Admin:    handler.NewAdminHandler(service.NewAuditService(p), maintenance),
	}, router.Options{
		JWTSecret: cfg.JWTSecret,
		Cache:     middleware.NewRedisCache(cacheCfg, rdb, log),
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	})

	go maintenance.Run(ctx, cfg.SweepInterval)

	if cfg.JournalConsumer {
		jc := &queue.JournalConsumer{URL: cfg.AMQPURL, Exchange: cfg.AMQPExchange, Path: cfg.JournalPath, Log: log}
		go func() {
			if err := jc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Error("journal consumer stopped")
			}
		}()
	}

	go func() {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("http: listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("http: server failed")
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("http: shutdown failed")
	}
}
