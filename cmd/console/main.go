package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/rjdelacruz/go-fuel-console.git/internal/auth"
	"github.com/rjdelacruz/go-fuel-console.git/internal/config"
	"github.com/rjdelacruz/go-fuel-console.git/internal/gateway"
	"github.com/rjdelacruz/go-fuel-console.git/internal/httpx"
	kafkax "github.com/rjdelacruz/go-fuel-console.git/internal/kafka"
	"github.com/rjdelacruz/go-fuel-console.git/internal/logger"
	"github.com/rjdelacruz/go-fuel-console.git/internal/orders"
	"github.com/rjdelacruz/go-fuel-console.git/internal/redisx"
	"github.com/rjdelacruz/go-fuel-console.git/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if err := logger.Initialize(cfg.LogLevel, cfg.Env); err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Log.Sync() }()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	if err := gateway.RunMigrations(cfg.PostgresDSN); err != nil {
		logger.Log.Fatal("migrations", zap.Error(err))
	}
	db, err := gateway.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Log.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for the change feed
	prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderChanges, 1024, logger.Log)
	prod.Start(ctx)

	gw := &gateway.Gateway{
		DB:       db,
		Producer: prod,
		Service:  cfg.ServiceName,
		Log:      logger.Log,
	}

	// In-memory order list, seeded then reconciled from the feed
	st := store.New(gw, logger.Log)
	if err := st.Load(ctx); err != nil {
		logger.Log.Fatal("initial order load", zap.Error(err))
	}
	feed := &kafkax.ChangeSource{
		Consumer: kafkax.NewConsumer(cfg.KafkaBrokers, cfg.FeedGroup, orders.TopicOrderChanges, cfg.FeedWorkers, logger.Log),
		Redis:    rdb,
		Service:  cfg.ServiceName,
		Log:      logger.Log,
	}
	sub := st.Subscribe(ctx, feed)

	// Auth
	authSvc := auth.NewService(gw, auth.NewTokenService(cfg.AuthSecret), &auth.RedisRevocationList{Client: rdb})

	// HTTP
	router := httpx.NewRouter()
	ah := &httpx.AuthHandler{Auth: authSvc}
	ah.Register(router)
	router.Group(func(r chi.Router) {
		r.Use(ah.RequireSession)
		ah.RegisterProtected(r)
		(&httpx.OrdersHandler{Store: st, Writer: gw, Gateway: gw}).Register(r)
		(&httpx.ProductsHandler{Catalog: gw}).Register(r)
		(&httpx.PeopleHandler{Directory: gw}).Register(r)
		(&httpx.ReportsHandler{Source: gw, Redis: rdb}).Register(r)
	})

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Log.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Log.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	sub.Close()       // stop the feed before the producer drains
	prod.Close()      // close inbox, flush pending publishes
	cancel()          // stop producer loop
	prod.WaitClosed() // drain
}
