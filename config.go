package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/humphreyotieno1/alx-backend-graphql-crm/database"
	aws_pkg "github.com/humphreyotieno1/alx-backend-graphql-crm/pkg/aws"
	"github.com/joho/godotenv"
)

const dbSecretName = "crm/DB_CREDENTIALS"

// Config holds all configuration for the CRM service.
type Config struct {
	Port     string
	AppEnv   string
	Postgres database.Config

	// Optional collaborators; empty disables them.
	RedisURL         string
	KafkaBrokers     []string
	OrderEventsTopic string
	OrderSNSTopicARN string

	CloudWatchEnabled  bool
	CORSOrigins        []string
	RateLimitPerMinute int
	RateLimitBurst     int
}

// LoadConfig reads configuration from the environment (and an optional
// .env file) with an optional Secrets Manager override of DB credentials.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:   getEnv("PORT", "8000"),
		AppEnv: getEnv("APP_ENV", "development"),
		Postgres: database.Config{
			Host:     os.Getenv("POSTGRES_HOST"),
			Port:     getEnv("POSTGRES_PORT", "5432"),
			User:     os.Getenv("POSTGRES_USER"),
			Password: os.Getenv("POSTGRES_PASSWORD"),
			DBName:   os.Getenv("POSTGRES_DB"),
			SSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
			TimeZone: getEnv("POSTGRES_TIMEZONE", "UTC"),
		},
		RedisURL:           os.Getenv("REDIS_URL"),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic:   getEnv("ORDER_EVENTS_TOPIC", "crm.order-events"),
		OrderSNSTopicARN:   os.Getenv("ORDER_SNS_TOPIC_ARN"),
		CloudWatchEnabled:  os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CORSOrigins:        splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 100),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 50),
	}

	// Override DB credentials from Secrets Manager when running on AWS
	if os.Getenv("AWS_USE_SECRETS") == "true" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err == nil {
			sm := aws_pkg.NewSecretsClient(awsCfg)
			if m, err := sm.GetSecretMap(context.Background(), dbSecretName); err == nil {
				applyDBSecret(&cfg.Postgres, m)
			}
		}
	}

	if cfg.Postgres.User == "" || cfg.Postgres.Password == "" || cfg.Postgres.DBName == "" || cfg.Postgres.Host == "" {
		return nil, fmt.Errorf("database config incomplete")
	}
	return cfg, nil
}

func applyDBSecret(pg *database.Config, m map[string]string) {
	for key, dst := range map[string]*string{
		"POSTGRES_USER":     &pg.User,
		"POSTGRES_PASSWORD": &pg.Password,
		"POSTGRES_DB":       &pg.DBName,
		"POSTGRES_HOST":     &pg.Host,
		"POSTGRES_PORT":     &pg.Port,
	} {
		if v, ok := m[key]; ok && v != "" {
			*dst = v
		}
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
