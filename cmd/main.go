package main

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/akylbek/acquirer-service/internal/api"
	"github.com/akylbek/acquirer-service/internal/config"
	"github.com/akylbek/acquirer-service/internal/events"
	"github.com/akylbek/acquirer-service/internal/interfaces"
	"github.com/akylbek/acquirer-service/internal/issuer"
	"github.com/akylbek/acquirer-service/internal/payment"
	"github.com/akylbek/acquirer-service/internal/repository"
	"github.com/akylbek/acquirer-service/internal/telemetry"
	"github.com/akylbek/acquirer-service/internal/validation"
)

func main() {
	// Initialize telemetry
	if err := telemetry.InitTelemetry("acquirer-service"); err != nil {
		panic(fmt.Sprintf("Failed to initialize telemetry: %v", err))
	}
	defer telemetry.Shutdown(context.Background())

	telemetry.Logger.Info("Starting Acquirer Service")

	cfg := config.Load()

	var (
		transactionRepo interfaces.TransactionRepository
		merchantRepo    interfaces.MerchantRepository
	)

	// Connect to PostgreSQL; fall back to in-memory stores when no
	// database is configured (local development).
	if cfg.DatabaseURL != "" {
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			telemetry.Logger.Fatal("Failed to connect to database", zap.Error(err))
		}
		defer db.Close()

		txRepo := repository.NewTransactionRepository(db)
		if err := txRepo.InitDB(); err != nil {
			telemetry.Logger.Fatal("Failed to initialize transactions table", zap.Error(err))
		}
		mRepo := repository.NewMerchantRepository(db)
		if err := mRepo.InitDB(); err != nil {
			telemetry.Logger.Fatal("Failed to initialize merchants table", zap.Error(err))
		}
		transactionRepo = txRepo
		merchantRepo = mRepo
	} else {
		telemetry.Logger.Warn("DATABASE_URL not set, using in-memory stores")
		transactionRepo = repository.NewMemoryTransactionRepository()
		merchantRepo = repository.NewMemoryMerchantRepository()
	}

	if err := repository.SeedDefaultMerchants(context.Background(), merchantRepo, telemetry.Logger); err != nil {
		telemetry.Logger.Fatal("Failed to seed merchants", zap.Error(err))
	}

	// Connect to Redis
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	}

	// Connect to Kafka
	var publisher payment.Publisher
	if cfg.KafkaBrokers != "" {
		kafkaPublisher := events.NewPublisher(cfg.KafkaBrokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	validator, err := validation.NewEngine(cfg.Rules)
	if err != nil {
		telemetry.Logger.Fatal("Failed to build validation engine", zap.Error(err))
	}

	authorizer := issuer.NewSimulator(cfg.Issuer,
		rand.New(rand.NewSource(time.Now().UnixNano())), telemetry.Logger)

	service := payment.NewService(transactionRepo, merchantRepo, validator,
		authorizer, publisher, telemetry.Logger)

	r := api.NewRouter(service, redisClient)

	// Setup HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	// Start server in goroutine
	go func() {
		telemetry.Logger.Info("Acquirer Service starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			telemetry.Logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	telemetry.Logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		telemetry.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	telemetry.Logger.Info("Server exited")
}
