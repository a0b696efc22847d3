package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sheon-shop/storefront/internal/config"
	"github.com/sheon-shop/storefront/internal/handoff"
	kafkax "github.com/sheon-shop/storefront/internal/kafka"
	"github.com/sheon-shop/storefront/internal/logging"
	"github.com/sheon-shop/storefront/internal/orders"
	"github.com/sheon-shop/storefront/internal/redisx"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.ServiceName+"-handoff", cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	svc := &handoff.Service{
		Redis:       rdb,
		Sender:      handoff.LogSender{Log: log},
		Phone:       cfg.HandoffPhone,
		ServiceName: cfg.ServiceName + "-handoff",
		Log:         log,
	}

	cons := kafkax.NewConsumer(cfg.KafkaBrokers, cfg.HandoffGroup, orders.TopicOrderPlaced, cfg.HandoffWorkers, log)
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Info("handoff consumer started",
			zap.String("group", cfg.HandoffGroup),
			zap.String("topic", orders.TopicOrderPlaced),
			zap.Int("workers", cfg.HandoffWorkers))
		if err := cons.Start(ctx, svc.HandleOrderPlaced); err != nil && ctx.Err() == nil {
			log.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sig:
	case <-ctx.Done():
	}
	log.Info("shutting down consumer")
	cancel()
	<-done
}
