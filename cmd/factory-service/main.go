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
	goredis "github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "github.com/uptrace/bun/driver/sqliteshim"

	"ms-passes/internal/config"
	"ms-passes/internal/factory"
	factory_api "ms-passes/internal/factory/api"
	factory_db "ms-passes/internal/factory/db"
	factory_redis "ms-passes/internal/factory/redis"
	"ms-passes/internal/kafka"
	"ms-passes/internal/logger"
	"ms-passes/internal/models"
)

func openDatabase(cfg *config.Config, log *logger.Logger) *bun.DB {
	sqldb, err := sql.Open("sqlite", cfg.SQLite.DSN)
	if err != nil {
		log.Error("DB", fmt.Sprintf("Failed to open SQLite: %v", err))
		os.Exit(1)
	}
	if err := sqldb.Ping(); err != nil {
		log.Error("DB", fmt.Sprintf("Failed to connect to SQLite: %v", err))
		os.Exit(1)
	}
	log.Info("DB", "SQLite connection successful")

	return bun.NewDB(sqldb, sqlitedialect.New())
}

func migrate(ctx context.Context, bunDB *bun.DB) error {
	tables := []interface{}{
		(*models.FactoryConfig)(nil),
		(*models.Collection)(nil),
		(*models.ArtistSymbol)(nil),
	}
	for _, table := range tables {
		if _, err := bunDB.NewCreateTable().Model(table).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func seedConfig(registry *factory_db.DB, cfg *config.Config, log *logger.Logger) {
	if _, err := registry.GetConfig(); err == nil {
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Error("DB", fmt.Sprintf("Failed to read factory config: %v", err))
		os.Exit(1)
	}

	defaults := cfg.Factory
	err := registry.SaveConfig(&models.FactoryConfig{
		Admin:            defaults.Admin,
		TemplateID:       defaults.TemplateID,
		PassPrice:        defaults.PassPrice,
		PassDuration:     defaults.PassDuration,
		GracePeriod:      defaults.GracePeriod,
		SettlementDenom:  defaults.SettlementDenom,
		PaymentAddress:   defaults.PaymentAddress,
		HousePercentage:  defaults.HousePercentage,
		ArtistPercentage: defaults.ArtistPercentage,
	})
	if err != nil {
		log.Error("DB", fmt.Sprintf("Failed to seed factory config: %v", err))
		os.Exit(1)
	}
	log.Info("FACTORY", "Seeded factory config from environment defaults")
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger("factory-service")
	defer log.Close()

	ctx := context.Background()
	bunDB := openDatabase(cfg, log)
	defer bunDB.Close()

	if err := migrate(ctx, bunDB); err != nil {
		log.Error("DB", fmt.Sprintf("Migration failed: %v", err))
		os.Exit(1)
	}

	registry := &factory_db.DB{Bun: bunDB}
	seedConfig(registry, cfg, log)

	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Error("REDIS", fmt.Sprintf("Failed to connect to Redis: %v", err))
		os.Exit(1)
	}
	log.Info("REDIS", "Redis connection successful")

	topics := []string{cfg.Kafka.Topics.CreationRequests, cfg.Kafka.Topics.CreationAcks}
	if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, topics, log); err != nil {
		log.Warn("KAFKA", fmt.Sprintf("Topic bootstrap failed (continuing): %v", err))
	}

	producer := kafka.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topics.CreationRequests)
	defer producer.Close()

	service := factory.NewService(
		registry,
		factory_redis.NewSymbolLock(redisClient, log),
		producer,
		log,
	)

	consumerCtx, stopConsumer := context.WithCancel(ctx)
	defer stopConsumer()
	consumer := kafka.NewAckConsumer(cfg.Kafka.Brokers, cfg.Kafka.Topics.CreationAcks, cfg.Kafka.GroupID, log)
	defer consumer.Close()
	go consumer.Start(consumerCtx, func(ack models.CreationAck) error {
		_, err := service.ResolveCreation(ack)
		return err
	})

	handler := &factory_api.Handler{FactoryService: service}
	r := chi.NewRouter()
	r.Route("/factory", handler.Routes)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", "Factory service on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP", fmt.Sprintf("HTTP error: %v", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	stopConsumer()
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("HTTP", "Factory service shutdown complete")
}
