package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/config"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/api"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/broker"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/checkout"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/redisclient"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/service"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/store"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/util"
	"github.com/ShandyAuliaSafiri/Backend-POS-Kasir/internal/worker"

	"github.com/gin-gonic/gin"
)

func main() {

	cfg := config.Load()

	if err := util.InitLogger(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer util.SyncLogger()

	logger := util.GetLogger()
	logger.Info("Starting POS service")

	tp, err := util.InitTracer("pos-service", cfg.Observ.JaegerEndpoint)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer: %v", err)
		}
	}()

	db, err := store.NewStore(cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Database connected")

	redisClient, err := redisclient.NewClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Redis connected")

	producer := broker.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicSales)
	defer producer.Close()
	log.Println("Kafka producer initialized")

	eventPublisher := broker.NewEventPublisher(producer)

	engine := checkout.NewEngine(db, checkout.Config{
		MaxAttempts:        cfg.Checkout.MaxAttempts,
		BaseBackoff:        cfg.Checkout.BaseBackoff,
		MaxBackoff:         cfg.Checkout.MaxBackoff,
		AttemptTimeout:     cfg.Checkout.AttemptTimeout,
		RejectUnderpayment: cfg.Checkout.RejectUnderpayment,
	})

	checkoutService := service.NewCheckoutService(engine, db, redisClient, eventPublisher)
	productService := service.NewProductService(db)
	reportService := service.NewReportService(db)

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	saleConsumer := broker.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicSales, cfg.Kafka.ConsumerGroup)
	stockAlertWorker := worker.NewStockAlertWorker(saleConsumer, db, redisClient, cfg.Checkout.LowStockThreshold)
	go func() {
		if err := stockAlertWorker.Start(workerCtx); err != nil {
			log.Printf("Stock alert worker error: %v", err)
		}
	}()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	handler := api.NewHandler(checkoutService, productService, reportService)
	handler.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	workerCancel()
	stockAlertWorker.Stop()

	log.Println("Server exited")
}
