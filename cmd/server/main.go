package main

import (
	"context"
	"log"
	"time"

	"checkout-service/internal/config"
	httpctrl "checkout-service/internal/controllers/http"
	"checkout-service/internal/infra/mysql"
	"checkout-service/internal/infra/onramp"
	"checkout-service/internal/infra/oracle"
	"checkout-service/internal/infra/rabbitmq"
	solanainfra "checkout-service/internal/infra/solana"
	mysqlrepo "checkout-service/internal/repository/mysql"
	"checkout-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.FromEnv()

	if cfg.Solana.PlatformWallet == "" {
		log.Fatal("PLATFORM_WALLET must be set; refusing to take payments without a recipient")
	}

	db, err := mysql.NewMySQL(cfg.MySQL)
	if err != nil {
		log.Fatalf("db: connect: %v", err)
	}

	sqlDB, _ := db.DB()
	sqlDB.SetMaxOpenConns(1000)
	sqlDB.SetMaxIdleConns(200)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(1 * time.Minute)

	orderRepo := mysqlrepo.NewOrderRepository(db)
	cartRepo := mysqlrepo.NewCartRepository(db)

	publisher, err := rabbitmq.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
	if err != nil {
		log.Fatalf("failed to init publisher: %v", err)
	}
	defer publisher.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Redis.Addr,
		DB:           0,
		PoolSize:     200,
		MinIdleConns: 20,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})

	rates := oracle.NewRateClient(cfg.Oracle.FeedURL, cfg.Oracle.RefreshInterval, cfg.Oracle.SeedRate)
	rates.SetRedisClient(redisClient)

	chainClient := solanainfra.NewClient(cfg.Solana.RPCEndpoint)

	builder, err := solanainfra.NewBuilder(chainClient, cfg.Solana.USDCMint, cfg.Solana.FeeBufferLamports)
	if err != nil {
		log.Fatalf("failed to init transaction builder: %v", err)
	}
	tracker := solanainfra.NewTracker(chainClient, cfg.Solana.ConfirmInterval, cfg.Solana.ConfirmAttempts)
	inspector := solanainfra.NewInspector(chainClient)

	orders := services.NewOrderService(orderRepo, cartRepo, rates, publisher, services.PaymentPolicy{
		Recipient:  cfg.Solana.PlatformWallet,
		FeeBps:     cfg.Payment.FeeBps,
		MinimumUSD: cfg.Payment.MinimumUSD,
	})

	intents := services.NewRedisIntentStore(redisClient, cfg.Payment.IntentTTL)
	orders.SetIntentStore(intents)

	reconcile := services.NewReconcileService(orders, inspector, intents, cfg.Solana.PlatformWallet, cfg.Solana.USDCMint)

	rampClient := onramp.NewClient(cfg.OnRamp.BaseURL, cfg.OnRamp.APIKey, 10*time.Second)

	handler := httpctrl.NewHandler(orders, reconcile, rates, builder, tracker, rampClient, redisClient, cfg.Solana.PlatformWallet)

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	handler.RegisterRoutes(r)

	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		log.Printf("Starting checkout service on %s", cfg.Server.Addr())
		return r.Run(cfg.Server.Addr())
	})
	g.Go(func() error {
		rates.Run(ctx)
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("server run: %v", err)
	}
}
