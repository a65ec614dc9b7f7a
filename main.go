package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vladan-gibisoft/MC73/internal/audit"
	"github.com/vladan-gibisoft/MC73/internal/auth"
	billingrepo "github.com/vladan-gibisoft/MC73/internal/billing/infrastructure/postgres"
	"github.com/vladan-gibisoft/MC73/internal/config"
	"github.com/vladan-gibisoft/MC73/internal/logging"
	"github.com/vladan-gibisoft/MC73/internal/observability/metrics"
	"github.com/vladan-gibisoft/MC73/internal/qrimage"
	slipapp "github.com/vladan-gibisoft/MC73/internal/slip/application"
	sliphttp "github.com/vladan-gibisoft/MC73/internal/slip/interfaces/http"
	"github.com/vladan-gibisoft/MC73/internal/slip/layout"
	"github.com/vladan-gibisoft/MC73/internal/slip/pdf"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("service stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("db open: %w", err)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = db.PingContext(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	metrics.Init(db)

	fonts, err := pdf.ResolveFonts(cfg.FontDir)
	if err != nil {
		return err
	}

	provider, closeProvider, err := buildProvider(cfg, logger)
	if err != nil {
		return err
	}
	defer closeProvider()

	engine := layout.NewEngine(cfg.Text)
	newDocument := func() (slipapp.Document, error) {
		doc, err := pdf.New(fonts, pdf.WithTitle(cfg.Text.Title))
		if err != nil {
			return nil, err
		}
		return doc, nil
	}
	assembler, err := slipapp.NewSlipAssembler(provider, newDocument, engine,
		slipapp.WithLogger(logger.Named("assembler")),
		slipapp.WithQRSize(cfg.QRSize),
		slipapp.WithConcurrency(cfg.QRConcurrency),
		slipapp.WithStrictPayload(cfg.QRStrictPayload),
		slipapp.WithQRSource(cfg.QRMode),
	)
	if err != nil {
		return err
	}

	repo := billingrepo.NewRepository(db, billingrepo.WithBuildingID(cfg.BuildingID))
	handler, err := sliphttp.NewHandler(repo, assembler, engine.Text(),
		sliphttp.WithAuditLogger(audit.NewRepository(db)),
		sliphttp.WithLogger(logger.Named("http")),
		sliphttp.WithGenerateTimeout(cfg.GenerateTimeout),
	)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.AccessLog(logger.Named("access")))
	r.Use(middleware.Recoverer)
	if cfg.AuthDisabled {
		logger.Warn("authentication disabled")
	} else {
		policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
		r.Use(auth.NewMiddleware([]byte(cfg.JWTSecret), policy, logger.Named("auth")).Wrap)
	}
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Route("/api/v1", handler.Register)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.GenerateTimeout + 15*time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", cfg.HTTPAddr),
			zap.String("qr_mode", cfg.QRMode),
			zap.Int64("building_id", cfg.BuildingID),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	return srv.Shutdown(shutdownCtx)
}

// buildProvider picks the QR source and wraps it with the Redis cache when
// REDIS_ADDR is set and reachable.
func buildProvider(cfg config.Config, logger *zap.Logger) (qrimage.Provider, func(), error) {
	noop := func() {}

	var provider qrimage.Provider
	switch cfg.QRMode {
	case config.QRModeNone:
		return qrimage.Disabled{}, noop, nil
	case config.QRModeLocal:
		provider = qrimage.NewLocalProvider()
	default:
		remote, err := qrimage.NewRemoteProvider(cfg.QRBaseURL,
			qrimage.WithTimeout(cfg.QRTimeout),
			qrimage.WithLanguage(cfg.QRLanguage),
		)
		if err != nil {
			return nil, noop, err
		}
		provider = remote
	}

	if cfg.RedisAddr == "" {
		return provider, noop, nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unavailable, qr cache disabled", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		_ = rdb.Close()
		return provider, noop, nil
	}
	cached, err := qrimage.NewCachedProvider(provider, rdb, cfg.QRCacheTTL, qrimage.WithCacheLogger(logger.Named("qrcache")))
	if err != nil {
		_ = rdb.Close()
		return nil, noop, err
	}
	return cached, func() { _ = rdb.Close() }, nil
}
