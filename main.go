package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/cache"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/controllers"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/database"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/events"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/graph"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/logger"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/middleware"
	aws_pkg "github.com/humphreyotieno1/alx-backend-graphql-crm/pkg/aws"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/repository"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/routes"
	"github.com/humphreyotieno1/alx-backend-graphql-crm/services"
	"go.uber.org/zap"
)

const serviceName = "crm-service"

func main() {
	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Config load failed: %v", err)
	}

	// --- Logging (optionally shipped to CloudWatch Logs) ---
	var logSink *aws_pkg.CloudWatchLogsClient
	if cfg.CloudWatchEnabled {
		if logSink, err = aws_pkg.NewCloudWatchLogsClient(context.Background(), serviceName); err != nil {
			log.Printf("CloudWatch Logs init failed (non-fatal): %v", err)
			logSink = nil
		}
	}
	var zl *zap.Logger
	if logSink != nil {
		zl, err = logger.Initialize(cfg.AppEnv, logSink)
	} else {
		zl, err = logger.Initialize(cfg.AppEnv, nil)
	}
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer zl.Sync()

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- Database ---
	db, err := database.ConnectPostgres(cfg.Postgres, zl)
	if err != nil {
		zl.Fatal("DB connection failed", zap.Error(err))
	}
	store := repository.NewGormStore(db)

	// --- Product cache (non-fatal) ---
	var productCache services.ProductCache
	if cfg.RedisURL != "" {
		rdb, err := cache.NewRedisClient(context.Background(), cfg.RedisURL)
		if err != nil {
			zl.Warn("Redis unavailable, product cache disabled", zap.Error(err))
		} else {
			defer rdb.Close()
			productCache = cache.NewProductCache(rdb, cache.DefaultCacheTTL, zl)
		}
	}

	// --- AWS setup ---
	var metrics services.MetricsRecorder
	metricsClient, err := aws_pkg.NewMetricsClient(context.Background())
	if err != nil {
		zl.Warn("CloudWatch metrics client init failed (non-fatal)", zap.Error(err))
	} else {
		metrics = metricsClient
	}

	var snsClient aws_pkg.SNSPublisher
	if cfg.OrderSNSTopicARN != "" {
		if awsCfg, err := aws_pkg.LoadAWSConfig(context.Background()); err != nil {
			zl.Warn("AWS config load failed, SNS order events disabled", zap.Error(err))
		} else {
			snsClient = aws_pkg.NewSNSClient(awsCfg)
		}
	}

	// --- Kafka ---
	var producer *events.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = events.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic, zl)
		defer producer.Close()
	}
	var publisher services.OrderEventPublisher
	if producer != nil || snsClient != nil {
		publisher = events.NewOrderPublisher(producer, snsClient, cfg.OrderSNSTopicARN, zl)
	}

	// --- Dependency injection ---
	validator := services.NewInputValidator()
	customerService := services.NewCustomerService(store, validator, zl)
	productService := services.NewProductService(store, validator, productCache, metrics, zl)
	orderService := services.NewOrderService(store, productCache, publisher, metrics, zl)

	schema, err := graph.NewSchema(&graph.Resolver{
		Customers: customerService,
		Products:  productService,
		Orders:    orderService,
		Logger:    zl,
	})
	if err != nil {
		zl.Fatal("GraphQL schema build failed", zap.Error(err))
	}

	// --- HTTP router ---
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics(metricsClient, serviceName))
	r.Use(middleware.RequestLogger(zl))
	r.Use(middleware.SecurityHeaders())
	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.Timeout(30 * time.Second))

	limiter := middleware.NewRateLimiter(middleware.PerMinute(cfg.RateLimitPerMinute), cfg.RateLimitBurst, 10*time.Minute)
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				limiter.Sweep()
			}
		}
	}()

	routes.RegisterGraphQLRoutes(r, controllers.NewGraphQLController(schema, zl), middleware.RateLimit(limiter))
	routes.RegisterHealthRoutes(r, controllers.NewHealthController(store, serviceName))

	// --- HTTP server ---
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		zl.Info("CRM Service started", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("Initiating graceful shutdown...")
	httpShutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(httpShutdownCtx); err != nil {
		zl.Error("Server shutdown error", zap.Error(err))
	}

	if err := database.Close(db); err != nil {
		zl.Error("Database close error", zap.Error(err))
	}

	zl.Info("CRM Service stopped gracefully")
}
