package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"foodexpress/config"
	"foodexpress/notification-svc/internal/service"
	"foodexpress/notification-svc/internal/storage"
	"foodexpress/pkg/httpx"
	"foodexpress/pkg/logger"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("notification-svc")
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.App.Env, cfg.App.Name)
	defer logger.Sync()

	rdb := config.MustInitRedis(cfg.Redis)
	defer rdb.Close()

	reader := config.NewKafkaReader(cfg.Kafka, cfg.Kafka.NotificationTopic, cfg.Kafka.NotificationGroup)
	defer reader.Close()

	consumer := service.NewConsumer(reader, storage.NewStore(rdb, storage.DefaultDedupTTL), service.LogNotifier{})

	r := mux.NewRouter()
	r.HandleFunc("/health", httpx.Health("notification-svc")).Methods("GET")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		consumer.Start(ctx)
	}()

	logger.Info("Notification service configured",
		zap.String("topic", cfg.Kafka.NotificationTopic),
		zap.String("group", cfg.Kafka.NotificationGroup))
	if err := httpx.Run(ctx, "notification-svc", cfg.Server, httpx.Wrap(r, cfg.Server)); err != nil {
		logger.Error("Notification service stopped", zap.Error(err))
	}
	stop()
	wg.Wait()
}
