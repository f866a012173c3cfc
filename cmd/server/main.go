// Command server runs the attendance HTTP API.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/iliyamo/attendance-ledger/internal/app"
	"github.com/iliyamo/attendance-ledger/internal/config"
	"github.com/iliyamo/attendance-ledger/internal/coordinator"
	"github.com/iliyamo/attendance-ledger/internal/handler"
	"github.com/iliyamo/attendance-ledger/internal/middleware"
	"github.com/iliyamo/attendance-ledger/internal/queue"
	"github.com/iliyamo/attendance-ledger/internal/router"
	"github.com/iliyamo/attendance-ledger/internal/service"
)

func main() {
	_ = godotenv.Load() // .env is optional

	cfg := config.Load()
	logger, err := config.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	sc, err := config.LoadSyncConfig()
	if err != nil {
		logger.Fatal("invalid sync config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := app.OpenLogStore(ctx, config.LoadStoreConfig(), sc, logger)
	if err != nil {
		logger.Fatal("open log store", zap.Error(err))
	}
	defer closeStore()

	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		logger.Warn("redis unreachable; rate limiting and report cache disabled")
	} else {
		defer func() { _ = rdb.Close() }()
	}

	accessTTL := time.Duration(cfg.AccessTTLMin) * time.Minute
	prefs, err := app.OpenPrefs(config.LoadPrefsConfig(), rdb, accessTTL, logger)
	if err != nil {
		logger.Fatal("open preferences", zap.Error(err))
	}
	defer prefs.Close()

	// a policy chosen by an admin outlives restarts
	policy := sc.Policy
	if p, err := prefs.Settings.Policy(ctx); err == nil {
		policy = p
	}

	opts := coordinator.Options{
		Location:          sc.Location,
		Language:          sc.Language,
		DefaultPassphrase: sc.DefaultPassphrase,
		Policy:            policy,
		WriteTimeout:      sc.WriteTimeout,
		RefreshAfterWrite: sc.RefreshAfterWrite,
		Logger:            logger,
	}
	var pub *service.AMQPPublisher
	if cfg.AMQPEnabled {
		pub = service.NewAMQPPublisher(cfg.RabbitURL, logger)
		opts.Publisher = pub
		go func() {
			if err := queue.StartAttendanceConsumer(ctx, cfg.RabbitURL, cfg.AttendanceLogPath, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("attendance consumer stopped", zap.Error(err))
			}
		}()
	}

	coord := coordinator.New(store, opts)
	if err := coord.Start(ctx); err != nil {
		// keep serving; the background refresh retries and /v1/status shows the error
		logger.Error("initial load failed", zap.Error(err))
	}
	go coord.Run(ctx, sc.Interval)

	reports := handler.NewReportHandler(coord, prefs.Wages, sc.WeekStart, logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	router.RegisterRoutes(e)
	router.RegisterAPI(e, router.Handlers{
		Auth:       handler.NewAuthHandler(cfg, coord, prefs.Sessions, logger),
		Attendance: handler.NewAttendanceHandler(coord),
		Sync:       handler.NewSyncHandler(coord),
		Reports:    reports,
		Admin:      handler.NewAdminHandler(coord, prefs.Wages, prefs.Settings, logger),
	}, router.Deps{
		JWTSecret: cfg.JWTSecret,
		Sessions:  prefs.Sessions,
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, logger),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb, reports.CacheStamp),
	})

	addr := ":" + cfg.Port
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	if err := coord.Close(shutdownCtx); err != nil {
		logger.Warn("pending roster writes did not settle", zap.Error(err))
	}
	if pub != nil {
		_ = pub.Close()
	}
}
