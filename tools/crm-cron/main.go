package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/humphreyotieno1/alx-backend-graphql-crm/jobs"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/logger"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds the scheduler settings.
type Config struct {
	AppEnv            string
	GraphQLURL        string
	HeartbeatLog      string
	RemindersLog      string
	RestockLog        string
	HeartbeatInterval time.Duration
	RemindersInterval time.Duration
	RestockInterval   time.Duration
	RestockAmount     int
	RequestTimeout    time.Duration
	RunOnStart        bool
}

func LoadConfig() Config {
	_ = godotenv.Load()
	return Config{
		AppEnv:            getEnv("APP_ENV", "development"),
		GraphQLURL:        getEnv("GRAPHQL_URL", "http://localhost:8000/graphql"),
		HeartbeatLog:      getEnv("HEARTBEAT_LOG", "/tmp/crm_heartbeat_log.txt"),
		RemindersLog:      getEnv("ORDER_REMINDERS_LOG", "/tmp/order_reminders_log.txt"),
		RestockLog:        getEnv("LOW_STOCK_LOG", "/tmp/low_stock_updates_log.txt"),
		HeartbeatInterval: getDuration("HEARTBEAT_INTERVAL", 5*time.Minute),
		RemindersInterval: getDuration("ORDER_REMINDERS_INTERVAL", 24*time.Hour),
		RestockInterval:   getDuration("LOW_STOCK_INTERVAL", 12*time.Hour),
		RestockAmount:     getInt("RESTOCK_AMOUNT", 20),
		RequestTimeout:    getDuration("GRAPHQL_TIMEOUT", 10*time.Second),
		RunOnStart:        os.Getenv("RUN_ON_START") == "true",
	}
}

func main() {
	cfg := LoadConfig()

	zl, err := logger.Initialize(cfg.AppEnv, nil)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	client := jobs.NewClient(cfg.GraphQLURL, cfg.RequestTimeout)
	scheduler := jobs.NewScheduler(cfg.RequestTimeout*3, zl,
		jobs.Schedule{Job: jobs.NewHeartbeat(client, cfg.HeartbeatLog, zl), Interval: cfg.HeartbeatInterval, RunOnStart: cfg.RunOnStart},
		jobs.Schedule{Job: jobs.NewOrderReminders(client, cfg.RemindersLog, zl), Interval: cfg.RemindersInterval, RunOnStart: cfg.RunOnStart},
		jobs.Schedule{Job: jobs.NewLowStockRestock(client, cfg.RestockAmount, cfg.RestockLog, zl), Interval: cfg.RestockInterval, RunOnStart: cfg.RunOnStart},
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	zl.Info("CRM cron started", zap.String("graphql_url", cfg.GraphQLURL))
	scheduler.Start(ctx)
	zl.Info("CRM cron stopped")
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil && v > 0 {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return fallback
}
