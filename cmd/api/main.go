package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sheon-shop/storefront/internal/checkout"
	"github.com/sheon-shop/storefront/internal/config"
	"github.com/sheon-shop/storefront/internal/httpx"
	"github.com/sheon-shop/storefront/internal/inventory"
	kafkax "github.com/sheon-shop/storefront/internal/kafka"
	"github.com/sheon-shop/storefront/internal/kv"
	"github.com/sheon-shop/storefront/internal/logging"
	"github.com/sheon-shop/storefront/internal/mongostore"
	"github.com/sheon-shop/storefront/internal/orders"
	"github.com/sheon-shop/storefront/internal/postgres"
	"github.com/sheon-shop/storefront/internal/redisx"
	"github.com/sheon-shop/storefront/internal/store"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	log, err := logging.New(cfg.ServiceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Record store
	records, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Fatal("store connect", zap.String("driver", cfg.StoreDriver), zap.Error(err))
	}
	defer closeStore()

	// Redis-backed sessions, locks and status cache; memory mode runs without infra.
	var (
		sessions kv.Store         = kv.NewMemory()
		locker   inventory.Locker = inventory.NewLocalLocker()
		status   *redisx.StatusCache
		rdb      *redis.Client
	)
	if cfg.StoreDriver != "memory" {
		rdb = redisx.New(cfg.RedisAddr)
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Warn("redis ping failed", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		sessions = &redisx.KV{Redis: rdb}
		locker = &redisx.Locker{Redis: rdb, TTL: cfg.LockTTL, Log: log}
		status = &redisx.StatusCache{Redis: rdb}
	}

	// Kafka producers
	pPlaced := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderPlaced, 1024, log)
	pPlaced.Start(ctx)
	pStatus := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderStatusChanged, 1024, log)
	pStatus.Start(ctx)

	inv := &inventory.Service{Store: records, Locker: locker, Log: log}
	repo := &orders.Repo{Store: records, Log: log}
	engine := &orders.Engine{Orders: repo, Stock: inv, Locker: locker, Log: log}
	co := &checkout.Service{
		Orders:       repo,
		Publisher:    pPlaced,
		ShippingFee:  cfg.ShippingFee,
		HandoffPhone: cfg.HandoffPhone,
		ServiceName:  cfg.ServiceName,
		Log:          log,
	}

	router := httpx.NewRouter(log)
	shop := &httpx.ShopHandler{Inventory: inv, Orders: repo, Checkout: co, KV: sessions, Status: status, Log: log}
	shop.Register(router)
	admin := &httpx.AdminHandler{
		Orders:      repo,
		Engine:      engine,
		Inventory:   inv,
		Status:      status,
		Publisher:   pStatus,
		ShippingFee: cfg.ShippingFee,
		Service:     cfg.ServiceName,
		Secret:      cfg.AdminJWTSecret,
		Log:         log,
	}
	admin.Register(router)
	if cfg.AdminJWTSecret == "" {
		log.Warn("ADMIN_JWT_SECRET is empty, operator routes are open")
	}

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("http listening", zap.String("addr", cfg.HTTPAddr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	pPlaced.Close()
	pStatus.Close()
	pPlaced.WaitClosed()
	pStatus.WaitClosed()
	cancel()
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (store.RecordStore, func(), error) {
	switch cfg.StoreDriver {
	case "memory":
		return store.NewMemory(), func() {}, nil
	case "mongo":
		client, recs, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, nil, err
		}
		return recs, func() { _ = client.Disconnect(context.Background()) }, nil
	default:
		if cfg.StoreDriver != "postgres" {
			log.Warn("unknown STORE_DRIVER, using postgres", zap.String("driver", cfg.StoreDriver))
		}
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		recs := &postgres.Records{DB: db}
		if err := recs.Migrate(ctx, store.CollectionOrders, store.CollectionProducts); err != nil {
			db.Close()
			return nil, nil, err
		}
		return recs, db.Close, nil
	}
}
