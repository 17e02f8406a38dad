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
	"ms-passes/internal/logger"
	"ms-passes/internal/models"
	"ms-passes/internal/passes"
	passes_api "ms-passes/internal/passes/api"
	"ms-passes/internal/passes/cache"
	passes_db "ms-passes/internal/passes/db"
	"ms-passes/internal/passes/qr"
	"ms-passes/internal/payment"
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
		(*models.CollectionConfig)(nil),
		(*models.Pass)(nil),
		(*models.TokenCounter)(nil),
		(*models.Payout)(nil),
	}
	for _, table := range tables {
		if _, err := bunDB.NewCreateTable().Model(table).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// seedConfig writes the collection config on first boot. The provisioner
// passes the creation request parameters through the environment.
func seedConfig(tokenDB *passes_db.DB, cfg *config.Config, log *logger.Logger) {
	if _, err := tokenDB.GetConfig(); err == nil {
		return
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Error("DB", fmt.Sprintf("Failed to read collection config: %v", err))
		os.Exit(1)
	}

	defaults := cfg.Factory
	err := tokenDB.SaveConfig(&models.CollectionConfig{
		Name:             os.Getenv("COLLECTION_NAME"),
		Symbol:           os.Getenv("COLLECTION_SYMBOL"),
		Artist:           os.Getenv("COLLECTION_ARTIST"),
		Minter:           os.Getenv("COLLECTION_MINTER"),
		PassPrice:        defaults.PassPrice,
		PassDuration:     defaults.PassDuration,
		GracePeriod:      defaults.GracePeriod,
		SettlementDenom:  defaults.SettlementDenom,
		PaymentAddress:   defaults.PaymentAddress,
		CollectionInfo:   os.Getenv("COLLECTION_INFO"),
		HousePercentage:  defaults.HousePercentage,
		ArtistPercentage: defaults.ArtistPercentage,
	})
	if err != nil {
		log.Error("DB", fmt.Sprintf("Failed to seed collection config: %v", err))
		os.Exit(1)
	}
	log.Info("PASS", "Seeded collection config from environment")
}

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.NewLogger("collection-service")
	defer log.Close()

	ctx := context.Background()
	bunDB := openDatabase(cfg, log)
	defer bunDB.Close()

	if err := migrate(ctx, bunDB); err != nil {
		log.Error("DB", fmt.Sprintf("Migration failed: %v", err))
		os.Exit(1)
	}

	tokenDB := &passes_db.DB{Bun: bunDB}
	seedConfig(tokenDB, cfg, log)

	var validityCache passes.ValidityCache
	redisClient := goredis.NewClient(&goredis.Options{Addr: cfg.Redis.Addr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Warn("REDIS", fmt.Sprintf("Redis unavailable, validity cache disabled: %v", err))
	} else {
		log.Info("REDIS", "Redis connection successful")
		validityCache = cache.NewRedis(redisClient)
	}

	service := passes.NewService(tokenDB, &payment.Ledger{Bun: bunDB}, validityCache, log)
	handler := &passes_api.Handler{
		PassService: service,
		QR:          qr.NewGenerator(os.Getenv("QR_SECRET_KEY")),
	}

	r := chi.NewRouter()
	r.Route("/collection", handler.Routes)

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP", "Collection service on "+cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP", fmt.Sprintf("HTTP error: %v", err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_ = server.Shutdown(ctxShutdown)
	log.Info("HTTP", "Collection service shutdown complete")
}
