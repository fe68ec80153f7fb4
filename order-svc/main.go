package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"foodexpress/config"
	httpapi "foodexpress/order-svc/internal/api/http"
	"foodexpress/order-svc/internal/client"
	"foodexpress/order-svc/internal/service"
	"foodexpress/order-svc/internal/storage"
	"foodexpress/pkg/httpx"
	"foodexpress/pkg/logger"
	"foodexpress/pkg/retry"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("order-svc")
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.App.Env, cfg.App.Name)
	defer logger.Sync()

	db := config.MustInitPostgres(cfg.DB)
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		logger.Fatal("Failed to prepare order schema", zap.Error(err))
	}

	rdb := config.MustInitRedis(cfg.Redis)
	defer rdb.Close()

	writer := config.NewKafkaWriter(cfg.Kafka, cfg.Kafka.NotificationTopic)
	defer writer.Close()
	publisher := storage.NewKafkaPublisher(writer)

	httpClient := &http.Client{}
	carts := client.NewCartClient(cfg.Services.CartURL, httpClient)
	restaurants := client.NewRestaurantClient(cfg.Services.RestaurantURL, httpClient)
	lock := storage.NewPlacementLock(rdb, cfg.Placement.LockTTL)

	orders := service.NewOrderService(repo, repo, lock, carts, restaurants, publisher,
		service.DefaultQRGenerator{BaseURL: cfg.Placement.PublicBaseURL},
		service.PlacementOptions{
			StepTimeout:    cfg.Placement.StepTimeout,
			PersistTimeout: cfg.Placement.PersistTimeout,
			Retry: retry.Config{
				MaxAttempts:   cfg.Placement.MaxAttempts,
				InitialDelay:  cfg.Placement.InitialBackoff,
				MaxDelay:      cfg.Placement.MaxBackoff,
				BackoffFactor: 2,
				JitterEnabled: true,
			},
		})

	worker := service.NewFollowUpWorker(repo, carts, publisher, service.FollowUpOptions{
		PollInterval: cfg.Followups.PollInterval,
		BatchSize:    cfg.Followups.BatchSize,
		MaxAttempts:  cfg.Followups.MaxAttempts,
		BaseDelay:    cfg.Followups.BaseDelay,
		MaxDelay:     cfg.Followups.MaxDelay,
		StepTimeout:  cfg.Placement.StepTimeout,
	})

	handler := httpapi.NewHandler(orders)
	router := httpapi.NewRouter(handler, cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Run(ctx)
	}()

	if err := httpx.Run(ctx, "order-svc", cfg.Server, router); err != nil {
		logger.Error("Order service stopped", zap.Error(err))
	}
	stop()
	wg.Wait()
}
