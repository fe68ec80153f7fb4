package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "foodexpress/cart-svc/internal/api/http"
	"foodexpress/cart-svc/internal/client"
	"foodexpress/cart-svc/internal/domain"
	"foodexpress/cart-svc/internal/service"
	"foodexpress/cart-svc/internal/storage"
	"foodexpress/config"
	"foodexpress/pkg/httpx"
	"foodexpress/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("cart-svc")
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.App.Env, cfg.App.Name)
	defer logger.Sync()

	rdb := config.MustInitRedis(cfg.Redis)
	defer rdb.Close()

	policy := domain.Policy{MaxItems: cfg.Cart.MaxItems, TTL: cfg.Cart.TTL()}
	store := storage.NewCartStore(rdb, policy.TTL)
	catalog := client.NewCatalogClient(cfg.Services.RestaurantURL, cfg.Services.UserURL,
		cfg.Cart.CatalogTimeout, &http.Client{})
	carts := service.NewCartService(store, catalog, policy, cfg.Cart.MaxConflictRetries)

	handler := httpapi.NewHandler(carts)
	router := httpapi.NewRouter(handler, cfg.Server)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Cart service configured",
		zap.Int("max_items", policy.MaxItems),
		zap.Duration("ttl", policy.TTL))
	if err := httpx.Run(ctx, "cart-svc", cfg.Server, router); err != nil {
		logger.Fatal("Cart service stopped", zap.Error(err))
	}
}
