package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"widgetstore/internal/cache"
	"widgetstore/internal/config"
	"widgetstore/internal/database"
	"widgetstore/internal/handlers"
	"widgetstore/internal/queue"
	"widgetstore/internal/repository"
	"widgetstore/internal/services"
	"widgetstore/internal/shipping"
	"widgetstore/internal/storage"
	"widgetstore/internal/worker"
)

const (
	kafkaGroupID    = "widgetstore-worker"
	shutdownTimeout = 15 * time.Second
)

type orderQueue interface {
	queue.Publisher
	queue.Consumer
}

func main() {
	config.Load()
	cfg := config.AppEnv

	if cfg.JWTSecret == "" {
		if gin.Mode() == gin.ReleaseMode {
			log.Fatal("JWT_SECRET is required in release mode")
		}
		log.Println("⚠️ JWT_SECRET not set, using an insecure development secret")
		cfg.JWTSecret = "dev-secret"
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal(err)
	}
	defer disconnect(client)

	db := client.Database(cfg.DBName)
	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureDocumentIndexes(db, cfg.DocumentsCollection); err != nil {
		log.Printf("⚠️ document index warning: %v", err)
	}
	if err := database.EnsureUserIndexes(db); err != nil {
		log.Printf("⚠️ user index warning: %v", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Printf("⚠️ review index warning: %v", err)
	}

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("invalid REDIS_URL: %v", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	products := repository.NewMongoProductRepository(db, cfg.DocumentsCollection)
	orders := repository.NewMongoOrderRepository(db, cfg.DocumentsCollection)
	productCache := cache.NewRedisProductCache(rdb, cfg.ProductCacheTTL)

	orderQ, closeQueue := newOrderQueue(ctx, cfg, rdb)
	defer closeQueue()
	publisher := queue.NewBreakerPublisher(orderQ, queue.BreakerSettings{})

	sweeper := shipping.NewSweeper(orders, nil)
	productService := services.NewProductService(
		products,
		productCache,
		storage.NewLocalImageStore(cfg.UploadDir, cfg.PublicBaseURL),
		nil,
	)

	var wg sync.WaitGroup

	if cfg.EnableWorker {
		processor := worker.NewOrderProcessor(orders, products, productCache, nil)
		wg.Add(1)
		go func() {
			defer wg.Done()
			log.Printf("[WORKER] [INFO] consuming %s via %s", cfg.OrdersQueueName, cfg.QueueDriver)
			if err := orderQ.Consume(ctx, cfg.OrdersQueueName, processor.Handle); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("[WORKER] [ERROR] consumer stopped: %v", err)
				stop()
			}
		}()
	}

	var scheduler *shipping.Scheduler
	if cfg.EnableSweeper {
		scheduler, err = shipping.NewScheduler(sweeper, cfg.ShippingSchedule, 0)
		if err != nil {
			log.Fatal(err)
		}
		scheduler.Start(ctx)
	}

	r := gin.Default()
	if strings.HasPrefix(cfg.PublicBaseURL, "/") {
		r.Static(cfg.PublicBaseURL, cfg.UploadDir)
	}

	handlers.RegisterRoutes(r, handlers.Dependencies{
		JWTSecret: cfg.JWTSecret,
		Auth: services.NewAuthService(
			repository.NewMongoUserRepository(db, database.UsersCollection),
			cfg.JWTSecret,
			cfg.AccessTokenTTL,
			cfg.AdminSecretKey,
			nil,
		),
		Products: productService,
		Reviews: services.NewReviewService(
			repository.NewMongoReviewRepository(db, database.ReviewsCollection),
			products,
			nil,
		),
		Orders:  services.NewOrderService(orders, products, publisher, cfg.OrdersQueueName, nil),
		Sweeper: sweeper,
		Ping: func(ctx context.Context) error {
			return database.Ping(ctx, db)
		},
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Println("HTTP server listening on", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("HTTP server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	wg.Wait()
}

// newOrderQueue picks the transport named by QUEUE_DRIVER. For redis, any
// messages a previous process left in flight are put back first.
func newOrderQueue(ctx context.Context, cfg config.Config, rdb *redis.Client) (orderQueue, func()) {
	switch cfg.QueueDriver {
	case "kafka":
		q := queue.NewKafkaQueue(cfg.KafkaBrokers, kafkaGroupID, cfg.QueueMaxDequeue)
		return q, func() {
			if err := q.Close(); err != nil {
				log.Printf("[QUEUE] [WARN] kafka close: %v", err)
			}
		}
	case "redis":
		q := queue.NewRedisQueue(rdb, queue.RedisOptions{
			MaxDequeue:  cfg.QueueMaxDequeue,
			PollTimeout: cfg.QueuePollTime,
		})
		if n, err := q.Recover(ctx, cfg.OrdersQueueName); err != nil {
			log.Printf("[QUEUE] [WARN] recover %s: %v", cfg.OrdersQueueName, err)
		} else if n > 0 {
			log.Printf("[QUEUE] [INFO] requeued %d in-flight messages on %s", n, cfg.OrdersQueueName)
		}
		return q, func() {}
	default:
		log.Fatalf("unknown QUEUE_DRIVER %q", cfg.QueueDriver)
		return nil, nil
	}
}

func disconnect(client *mongo.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Printf("MongoDB disconnect: %v", err)
	}
}
