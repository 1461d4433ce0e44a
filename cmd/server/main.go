package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qrjet/qrjet/config"
	appmodel "github.com/qrjet/qrjet/internal/app/model"
	apprepository "github.com/qrjet/qrjet/internal/app/repository"
	appserver "github.com/qrjet/qrjet/internal/app/server"
	appservice "github.com/qrjet/qrjet/internal/app/service"
	"github.com/qrjet/qrjet/internal/infra/logger"
	infraNATS "github.com/qrjet/qrjet/internal/infra/nats"
	infraPostgres "github.com/qrjet/qrjet/internal/infra/postgres"
	infraPrometheus "github.com/qrjet/qrjet/internal/infra/prometheus"
	infraRedis "github.com/qrjet/qrjet/internal/infra/redis"
	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	isDev := os.Getenv("APP_ENV") != "production"
	log := logger.MustInit(logger.Config{
		Development: isDev,
		Level:       os.Getenv("LOG_LEVEL"),
	})
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Configuration loaded successfully",
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("postgres_db", cfg.Postgres.Database),
		zap.String("redis_host", cfg.Redis.Host),
		zap.String("nats_host", cfg.NATS.Host),
		zap.String("geoip_endpoint", cfg.GeoIP.Endpoint),
		zap.String("base_url", cfg.App.BaseURL),
	)

	gormDB, err := infraPostgres.NewGorm(cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to open GORM connection", zap.Error(err))
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatal("Failed to access underlying SQL DB", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := infraPostgres.AutoMigrate(ctx, gormDB,
		&appmodel.User{},
		&appmodel.PricingPlan{},
		&appmodel.QRCode{},
		&appmodel.ScanEvent{},
	); err != nil {
		log.Fatal("Failed to run database migrations", zap.Error(err))
	}

	pool, err := infraPostgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pool.Close()
	log.Info("Connected to Postgres successfully")

	redisClient, err := infraRedis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("Connected to Redis successfully")

	natsConn, js, err := infraNATS.Connect(cfg.NATS)
	if err != nil {
		log.Warn("NATS unavailable, scan tracking runs in-process", zap.Error(err))
		js = nil
	} else {
		defer natsConn.Drain()
		log.Info("Connected to NATS successfully", zap.Bool("jetstream_ready", js != nil))
	}

	metrics := infraPrometheus.NewMetrics()
	if !isDev {
		promServer := infraPrometheus.NewServer(cfg.Prometheus)
		go func() {
			log.Info("Starting Prometheus metrics server",
				zap.Int("port", cfg.Prometheus.Port))
			if err := promServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Prometheus metrics server stopped unexpectedly", zap.Error(err))
			}
		}()
		defer func() {
			if err := promServer.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Warn("Failed to close Prometheus server", zap.Error(err))
			}
		}()
	} else {
		log.Info("Skipping Prometheus metrics server in development mode")
	}

	codeRepo := apprepository.NewQRCodeRepository(gormDB)
	eventRepo := apprepository.NewScanEventRepository(gormDB)
	userRepo := apprepository.NewUserRepository(gormDB)
	planRepo := apprepository.NewPlanRepository(gormDB)
	counterRepo := apprepository.NewCounterRepository(pool)

	if err := planRepo.EnsureDefaults(ctx); err != nil {
		log.Fatal("Failed to seed pricing plans", zap.Error(err))
	}

	filter := appservice.NewCodeFilter(0, 0)
	if err := filter.Warm(ctx, codeRepo); err != nil {
		log.Warn("Failed to warm code filter, continuing without it", zap.Error(err))
		filter = nil
	}

	geo := appservice.NewGeolocator(log, redisClient, appservice.GeolocatorConfig{
		Endpoint: cfg.GeoIP.Endpoint,
		Timeout:  parseDuration(cfg.GeoIP.Timeout),
		CacheTTL: parseDuration(cfg.GeoIP.CacheTTL),
		Observe: func(outcome string) {
			metrics.GeoLookupsTotal.WithLabelValues(outcome).Inc()
		},
	})
	tracker := appservice.NewScanTracker(log, eventRepo, geo)

	var dispatcher appservice.ScanDispatcher
	var direct *appservice.DirectDispatcher
	if js != nil {
		consumer := appservice.NewScanConsumer(js, log, tracker)
		if err := consumer.Start(); err != nil {
			log.Fatal("Failed to start scan consumer", zap.Error(err))
		}
		dispatcher = appservice.NewScanPublisher(js, log)
	} else {
		direct = appservice.NewDirectDispatcher(tracker)
		dispatcher = direct
	}

	resolver := appservice.NewResolver(log, codeRepo, counterRepo, dispatcher, filter, appservice.ResolverConfig{
		BaseURL: cfg.App.BaseURL,
	})
	qrService := appservice.NewQRService(codeRepo, eventRepo, userRepo, planRepo, filter)

	server := appserver.New(appserver.Dependencies{
		Logger:     log,
		Redis:      redisClient,
		Resolver:   resolver,
		QRService:  qrService,
		Users:      userRepo,
		Plans:      planRepo,
		Metrics:    metrics,
		AuthSecret: []byte(cfg.App.AuthSecret),
	})

	port := cfg.App.Port
	if port == 0 {
		port = 8080
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Listen(fmt.Sprintf(":%d", port))
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatal("Fiber server exited", zap.Error(err))
		}
	case sig := <-stop:
		log.Info("Shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("Server shutdown failed", zap.Error(err))
		}
	}

	// Let detached counter increments and in-process tracking settle
	// before connections are torn down by the deferred closers.
	resolver.Drain()
	if direct != nil {
		direct.Drain()
	}
}

func parseDuration(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
