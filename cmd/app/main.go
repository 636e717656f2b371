package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"tracker/cmd"
	"tracker/internal/adapters/out/natsbus"
	"tracker/internal/adapters/out/postgres/orderrepo"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB := mustOpenDatabase(configs)
	if err := gormDB.AutoMigrate(&orderrepo.OrderDTO{}); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	natsConn, err := natsbus.Connect(configs.NatsURL, logger)
	if err != nil {
		log.Fatalf("NATS connection failed: %v", err)
	}

	root, err := cmd.NewCompositionRoot(configs, gormDB, natsConn, logger)
	if err != nil {
		log.Fatalf("Composition root failed: %v", err)
	}

	ctx := context.Background()
	if err = root.Engine().Restore(ctx); err != nil {
		log.Fatalf("Simulation restore failed: %v", err)
	}

	if err = root.Relay().Start(); err != nil {
		log.Fatalf("Event relay failed to start: %v", err)
	}

	jobManager := root.CreateJobManager()
	if err = jobManager.StartAll(); err != nil {
		log.Fatalf("Jobs failed to start: %v", err)
	}

	e := echo.New()
	root.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Web server failed: %v", err)
		}
	}()

	shutdownCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-shutdownCtx.Done()

	logger.Info("Shutting down")
	jobManager.StopAll()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err = e.Shutdown(stopCtx); err != nil {
		logger.Error("Web server shutdown failed", "error", err)
	}

	if err = root.Relay().Close(); err != nil {
		logger.Error("Relay shutdown failed", "error", err)
	}
	if err = root.Publisher().Close(); err != nil {
		logger.Error("Publisher drain failed", "error", err)
	}
}

func mustOpenDatabase(configs cmd.Config) *gorm.DB {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost,
		configs.DBPort,
		configs.DBUser,
		configs.DBPassword,
		configs.DBName,
		configs.DBSslMode,
	)

	gormDB, err := gorm.Open(gormpostgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	return gormDB
}

func getConfigs() cmd.Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Warnf("No .env file loaded: %v", err)
	}

	return cmd.Config{
		HTTPPort:      envOr("HTTP_PORT", "8080"),
		DBHost:        envOr("DB_HOST", "localhost"),
		DBPort:        envOr("DB_PORT", "5432"),
		DBUser:        envOr("DB_USER", "postgres"),
		DBPassword:    envOr("DB_PASSWORD", "postgres"),
		DBName:        envOr("DB_NAME", "tracker"),
		DBSslMode:     envOr("DB_SSLMODE", "disable"),
		NatsURL:       envOr("NATS_URL", "nats://localhost:4222"),
		EventTopic:    envOr("EVENT_TOPIC", ""),
		OrsAPIKey:     os.Getenv("ORS_API_KEY"),
		OrsBaseURL:    envOr("ORS_BASE_URL", ""),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RouteCacheTTL: envDuration("ROUTE_CACHE_TTL", time.Hour),
		TickCronSpec:  envOr("TICK_CRON_SPEC", "*/2 * * * * *"),
		StepSize:      envFloat("STEP_SIZE", 0.005),
		Epsilon:       envFloat("EPSILON", 0.0001),
		RouteTimeout:  envDuration("ROUTE_TIMEOUT", 10*time.Second),
	}
}

func envOr(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Fatalf("Invalid %s value %q: %v", key, raw, err)
	}
	return value
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}

	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Fatalf("Invalid %s value %q: %v", key, raw, err)
	}
	return value
}
