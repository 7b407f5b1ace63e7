package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/davidleathers/takedown-compliance-engine/internal/api/rest"
	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/auth"
	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/cache"
	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/config"
	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/content"
	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/matching"
	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/notification"
	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/repository"
	"github.com/davidleathers/takedown-compliance-engine/internal/infrastructure/telemetry"
	"github.com/davidleathers/takedown-compliance-engine/internal/metrics"
	"github.com/davidleathers/takedown-compliance-engine/internal/service/assessment"
	fingerprintsvc "github.com/davidleathers/takedown-compliance-engine/internal/service/fingerprint"
	noticesvc "github.com/davidleathers/takedown-compliance-engine/internal/service/notice"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := telemetry.SetupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telConfig := &telemetry.Config{
		ServiceName:    "tde-api",
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		Enabled:        cfg.Telemetry.Enabled,
		SamplingRate:   cfg.Telemetry.SamplingRate,
	}
	provider, err := telemetry.InitializeOpenTelemetry(ctx, telConfig)
	if err != nil {
		log.Fatalf("Failed to initialize telemetry: %v", err)
	}
	defer func() {
		if err := provider.Shutdown(context.Background()); err != nil {
			logger.Error("telemetry shutdown failed", slog.Any("error", err))
		}
	}()

	if err := run(ctx, cfg, logger); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	zapLogger, err := newZapLogger(cfg.Environment)
	if err != nil {
		return err
	}
	defer zapLogger.Sync() //nolint:errcheck

	pool, err := repository.NewPool(ctx, &cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	registry, err := metrics.NewRegistry("takedown-compliance-engine")
	if err != nil {
		return err
	}

	noticeRepo := repository.NewNoticeRepository(pool)
	counterRepo := repository.NewCounterNoticeRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	infringerRepo := repository.NewInfringerRepository(pool)
	scanRepo := repository.NewScanRepository(pool)
	flaggers := repository.NewTrustedFlaggerRepository(pool)

	// The trust registry degrades to direct database lookups when redis
	// is unreachable at startup.
	var trust noticesvc.TrustRegistry = flaggers
	if redisClient, err := cache.NewRedisClient(&cfg.Redis); err != nil {
		logger.Warn("redis unavailable, trust lookups will not be cached", slog.Any("error", err))
	} else {
		defer redisClient.Close()
		trust = cache.NewTrustCache(redisClient, flaggers, cfg.Redis.TrustTTL, zapLogger)
	}

	contentClient := content.NewClient(cfg.Compliance.ContentServiceURL, 0)
	notifier := notification.NewLogNotifier(zapLogger)

	scanProvider := matching.NewHTTPProvider(
		cfg.Compliance.ScanProviderName, cfg.Compliance.ScanProviderURL, 0)
	scanner := fingerprintsvc.NewService(
		scanProvider,
		scanRepo,
		contentClient,
		auditRepo,
		notification.NewLogReviewQueue(zapLogger),
		cfg.Compliance.ConfidenceThreshold,
		zapLogger,
	).WithMetrics(registry)

	assessor := assessment.NewFailOpenAssessor(
		assessment.NewHTTPAssessor(cfg.Compliance.AssessmentURL, cfg.Compliance.AssessmentTimeout),
		zapLogger,
	).WithMetrics(registry)

	notices := noticesvc.NewService(
		noticeRepo,
		counterRepo,
		auditRepo,
		infringerRepo,
		contentClient,
		notifier,
		trust,
		scanner,
		assessor,
		noticesvc.Config{
			StrikeThreshold:           cfg.Compliance.StrikeThreshold,
			CounterNoticeBusinessDays: cfg.Compliance.CounterNoticeBusinessDays,
		},
		zapLogger,
	)

	authSvc, err := auth.NewService(cfg.Security.JWTSecret, cfg.Security.TokenExpiry)
	if err != nil {
		return err
	}

	handler := rest.NewHandler(notices, logger).WithMetrics(registry)
	router := rest.NewRouter(handler, authSvc, rest.RouterConfig{
		IntakeRateLimit: cfg.Security.RateLimit.RequestsPerSecond,
		IntakeRateBurst: cfg.Security.RateLimit.BurstSize,
		Logger:          logger,
	})

	server := rest.NewServer(&cfg.Server, instrumentHTTP(router), logger)
	logger.Info("starting takedown compliance engine",
		slog.String("version", cfg.Version),
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Server.Port),
	)
	return server.Run(ctx)
}

func newZapLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
