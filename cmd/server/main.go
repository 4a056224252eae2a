package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskfan/internal/cache"
	"taskfan/internal/config"
	"taskfan/internal/database"
	"taskfan/internal/fanout"
	"taskfan/internal/handlers"
	"taskfan/internal/monitoring"
	"taskfan/internal/realtime"
	"taskfan/internal/services"
	"taskfan/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// The cache is optional at runtime: if redis is unreachable the pipeline
	// keeps working with every read going straight to the store.
	cacheStore := cache.NewRedisCache(&cache.CacheConfig{
		Addr:         cfg.GetRedisAddr(),
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		PoolSize:     cfg.Redis.PoolSize,
		MinIdleConns: cfg.Redis.MinIdleConns,
		MaxRetries:   cfg.Redis.MaxRetries,
		DialTimeout:  cfg.Redis.DialTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err := cacheStore.Health(); err != nil {
		log.Printf("redis unreachable, cache degraded to pass-through: %v", err)
	}

	hub := realtime.NewHub()
	queue := worker.NewJobQueue(cacheStore.Client())
	fan := fanout.New(db, hub, queue)
	orchestrator := services.NewOrchestrator(db, cacheStore, fan, cfg.Cache.TTL)

	deliveryWorker := worker.NewWorker(worker.WorkerConfig{
		RedisClient:  cacheStore.Client(),
		Concurrency:  cfg.Worker.Concurrency,
		PollInterval: cfg.Worker.PollInterval,
	})
	deliveryWorker.RegisterHandler(worker.JobTypeNotificationDelivery, func(ctx context.Context, job *worker.Job) error {
		// Delivery hook: out-of-band channels (email, push) plug in here.
		log.Printf("delivering notification %v to %v", job.Payload["notification_id"], job.Payload["recipient_id"])
		return nil
	})
	deliveryWorker.Start(cfg.Worker.Concurrency)
	defer deliveryWorker.Stop()

	healthChecker := monitoring.NewHealthChecker()
	healthChecker.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	healthChecker.Register("cache", func(ctx context.Context) error {
		return cacheStore.Health()
	})

	router := handlers.NewRouter(cfg, handlers.RouterDeps{
		DB:            db,
		Orchestrator:  orchestrator,
		Auth:          services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL),
		Notifications: services.NewNotificationService(),
		Users:         services.NewUserService(),
		Hub:           hub,
		HealthChecker: healthChecker,
	})

	server := &http.Server{
		Addr:         cfg.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Printf("server listening on %s", cfg.GetServerAddr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	if err := cacheStore.Close(); err != nil {
		log.Printf("failed to close cache: %v", err)
	}
}
