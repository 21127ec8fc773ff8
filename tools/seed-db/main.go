package main

import (
	"context"
	"flag"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/humphreyotieno1/alx-backend-graphql-crm/database"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/logger"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/seed"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	var seedValue int64
	var orders int
	flag.Int64Var(&seedValue, "seed", time.Now().UnixNano(), "random seed for the generated orders")
	flag.IntVar(&orders, "orders", seed.DefaultOrderCount, "number of random orders to create")
	flag.Parse()

	zl, err := logger.New(os.Getenv("APP_ENV"), nil)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer zl.Sync()

	cfg := database.Config{
		Host:     os.Getenv("POSTGRES_HOST"),
		Port:     envOr("POSTGRES_PORT", "5432"),
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		DBName:   os.Getenv("POSTGRES_DB"),
		SSLMode:  envOr("POSTGRES_SSLMODE", "disable"),
	}
	if cfg.Host == "" || cfg.User == "" || cfg.DBName == "" {
		zl.Fatal("POSTGRES_HOST, POSTGRES_USER and POSTGRES_DB must be set")
	}

	db, err := database.ConnectPostgres(cfg, zl)
	if err != nil {
		zl.Fatal("DB connection failed", zap.Error(err))
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	zl.Info("Seeding database...", zap.Int64("seed", seedValue))
	if _, err := seed.NewSeeder(db, rand.New(rand.NewSource(seedValue)), orders, zl).Run(ctx); err != nil {
		zl.Fatal("Seeding failed", zap.Error(err))
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
