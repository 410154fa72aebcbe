package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/application"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/config"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/infrastructure/messaging"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/infrastructure/monitoring"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/infrastructure/persistence/clickhouse"
	"github.com/derril-tech/ai-social-engineering-defense-trainer/internal/infrastructure/persistence/postgres"
	redisstore "github.com/derril-tech/ai-social-engineering-defense-trainer/internal/infrastructure/persistence/redis"
	httpserver "github.com/derril-tech/ai-social-engineering-defense-trainer/internal/interfaces/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Stores.
	redisConn, err := redisstore.NewConnection(&cfg.Redis, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to redis", err)
	}
	defer redisConn.Close()

	chConn, err := clickhouse.NewConnection(&cfg.ClickHouse, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to clickhouse", err)
	}
	defer chConn.Close()

	pgPool, err := postgres.NewPool(ctx, &cfg.Postgres, appLogger)
	if err != nil {
		appLogger.Fatal(ctx, "failed to connect to postgres", err)
	}
	defer pgPool.Close()

	// Infrastructure.
	metrics := monitoring.NewMetrics()
	riskStore := redisstore.NewRiskStore(redisConn, appLogger)
	eventReader := clickhouse.NewEventReader(chConn, cfg.ClickHouse.QueryTimeoutDuration(), appLogger)
	orgRepo := postgres.NewOrgRepository(pgPool, appLogger)
	publisher := messaging.NewKafkaPublisher(cfg.Kafka, appLogger)
	defer publisher.Close()

	// Application services.
	dispatcher := application.NewAdaptiveDispatcher(publisher, riskStore, application.TriggerAlways, appLogger)
	riskService := application.NewRiskService(eventReader, riskStore, publisher, dispatcher, appLogger)

	scheduler := application.NewScheduler(
		orgRepo, riskStore, riskService,
		time.Duration(cfg.Risk.RecalcInterval)*time.Second,
		time.Duration(cfg.Risk.RecalcRetryInterval)*time.Second,
		cfg.Risk.RecalcTopUsers,
		appLogger,
	)
	scheduler.CycleHook = metrics.RecordSchedulerCycle

	consumer := messaging.NewRiskConsumer(cfg.Kafka, riskService, publisher, metrics, appLogger)
	defer consumer.Close()

	// Operational HTTP surface.
	server := httpserver.NewServer(&cfg.Server, map[string]httpserver.HealthCheck{
		"redis":      redisConn.Ping,
		"clickhouse": chConn.Ping,
		"postgres":   pgPool.Ping,
	}, appLogger)

	go func() {
		if err := server.Start(); err != nil {
			appLogger.Fatal(ctx, "http server failed", err)
		}
	}()

	go scheduler.Run(ctx)

	if err := consumer.Run(ctx); err != nil {
		appLogger.Error(ctx, "consumer exited with error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(shutdownCtx, "http server shutdown failed", err)
	}

	appLogger.Info(context.Background(), "risk engine stopped")
}
