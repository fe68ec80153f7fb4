package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"foodexpress/api-gateway/internal/gateway"
	"foodexpress/config"
	"foodexpress/pkg/httpx"
	"foodexpress/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load("api-gateway")
	if err != nil {
		panic(err)
	}
	logger.Init(cfg.Log.Level, cfg.Log.Format, cfg.App.Env, cfg.App.Name)
	defer logger.Sync()

	gw := gateway.NewGateway(gateway.Config{
		CartSvcURL:  cfg.Services.CartURL,
		OrderSvcURL: cfg.Services.OrderURL,
	}, &http.Client{Timeout: cfg.Server.WriteTimeout})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Gateway routes configured",
		zap.String("cart_svc", cfg.Services.CartURL),
		zap.String("order_svc", cfg.Services.OrderURL))
	if err := httpx.Run(ctx, "api-gateway", cfg.Server, httpx.Wrap(gw.SetupRoutes(), cfg.Server)); err != nil {
		logger.Fatal("API gateway stopped", zap.Error(err))
	}
}
