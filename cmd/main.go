/**
 * @description
 * This is the main entry point for the finance memory service. It is
 * responsible for initializing all components of the service, including
 * configuration, the document store, LLM provider clients, the RabbitMQ
 * producer, the optional Redis rate limiter, the background refresh scheduler,
 * and the HTTP server. It wires everything together and starts the service.
 *
 * @dependencies
 * - log, net/http: Standard Go libraries for logging and HTTP server functionality.
 * - github.com/jackc/pgx/v5/pgxpool: PostgreSQL connection pool.
 * - github.com/joho/godotenv: .env loading for local development.
 * - github.com/redis/go-redis/v9: Redis client for distributed rate limiting.
 * - internal/api, internal/app, internal/config, internal/store: Internal packages for the service.
 * - pkg/groqclient, pkg/geminiclient: Clients for the LLM provider APIs.
 * - pkg/rabbitmq: Client for RabbitMQ.
 */

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/wo-aiml-user/finance-agent/internal/api"
	"github.com/wo-aiml-user/finance-agent/internal/app"
	"github.com/wo-aiml-user/finance-agent/internal/config"
	"github.com/wo-aiml-user/finance-agent/internal/store"
	"github.com/wo-aiml-user/finance-agent/pkg/geminiclient"
	"github.com/wo-aiml-user/finance-agent/pkg/groqclient"
	"github.com/wo-aiml-user/finance-agent/pkg/rabbitmq"
)

func main() {
	// Load a local .env file if present; environment variables win.
	if err := godotenv.Load(); err == nil {
		log.Println("level=info component=bootstrap msg=\"loaded .env file\"")
	}

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("level=fatal component=bootstrap msg=\"config load failed\" err=%v", err)
	}
	if strings.TrimSpace(cfg.GroqAPIKey) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"analysis provider key must be configured\" env=GROQ_API_KEY")
	}
	if strings.TrimSpace(cfg.GoogleAPIKey) == "" {
		log.Fatalf("level=fatal component=bootstrap msg=\"suggestions provider key must be configured\" env=GOOGLE_API_KEY")
	}

	log.Printf("level=info component=bootstrap msg=\"starting memory-service\" port=%s store=%s", cfg.ServerPort, cfg.StoreBackend)

	// Select the document store backend. Postgres is the production default;
	// the in-memory store serves local development and tests.
	var repository store.Repository
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database url parse failed\" err=%v", err)
		}
		poolConfig.MaxConns = 50
		poolConfig.MinConns = 5
		poolConfig.MaxConnLifetime = 30 * time.Minute
		poolConfig.MaxConnIdleTime = 5 * time.Minute

		dbpool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"database connection failed\" err=%v", err)
		}
		defer dbpool.Close()

		pgRepo := store.NewPostgresRepository(dbpool)
		schemaCtx, cancelSchema := context.WithTimeout(context.Background(), 30*time.Second)
		if err := pgRepo.EnsureSchema(schemaCtx); err != nil {
			cancelSchema()
			log.Fatalf("level=fatal component=bootstrap msg=\"schema migration failed\" err=%v", err)
		}
		cancelSchema()
		repository = pgRepo
		log.Println("level=info component=bootstrap msg=\"database connected\"")
	case config.StoreBackendMemory:
		repository = store.NewMemoryRepository()
		log.Println("level=warn component=bootstrap msg=\"using in-memory store; documents will not survive a restart\"")
	default:
		log.Fatalf("level=fatal component=bootstrap msg=\"unknown store backend\" store=%s", cfg.StoreBackend)
	}

	// Initialize the RabbitMQ producer to publish memory lifecycle events.
	// The service degrades to a no-op publisher when the broker is unreachable.
	var producer rabbitmq.Publisher
	if strings.TrimSpace(cfg.RabbitMQURL) == "" {
		log.Println("level=warn component=bootstrap msg=\"rabbitmq url missing; event publishing disabled\" env=RABBITMQ_URL")
		producer = &rabbitmq.NoopPublisher{}
	} else {
		eventProducer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			log.Printf("level=warn component=bootstrap msg=\"rabbitmq producer unavailable; using fallback\" err=%v", err)
			producer = &rabbitmq.NoopPublisher{}
		} else {
			defer eventProducer.Close()
			producer = eventProducer
			log.Println("level=info component=bootstrap msg=\"rabbitmq producer connected\"")
		}
	}

	// Initialize the LLM provider clients.
	analysisClient := groqclient.NewClient(cfg.GroqAPIBaseURL, cfg.GroqAPIKey)
	suggestionClient := geminiclient.NewClient(cfg.GeminiAPIBaseURL, cfg.GoogleAPIKey)

	memoryService := app.NewService(repository, analysisClient, suggestionClient, producer, app.Config{
		AnalysisModel:                 cfg.AnalysisModel,
		AnalysisTemperature:           cfg.AnalysisTemperature,
		SuggestionsModel:              cfg.SuggestionsModel,
		EventExchange:                 cfg.MemoryEventExchange,
		MemoryBuildRateLimitPerMinute: cfg.MemoryBuildRateLimitPerMinute,
		SuggestionsRateLimitPerMinute: cfg.SuggestionsRateLimitPerMinute,
	})

	// Distributed rate limiting is optional: without Redis the service still
	// runs, it just stops throttling LLM calls.
	rateLimitingEnabled := cfg.MemoryBuildRateLimitPerMinute > 0 || cfg.SuggestionsRateLimitPerMinute > 0
	if rateLimitingEnabled {
		if strings.TrimSpace(cfg.RedisURL) == "" {
			log.Println("level=warn component=bootstrap msg=\"redis url missing; rate limiting disabled\" env=REDIS_URL")
		} else {
			redisOptions, parseErr := redis.ParseURL(cfg.RedisURL)
			if parseErr != nil {
				log.Printf("level=warn component=bootstrap msg=\"redis url parse failed; rate limiting disabled\" err=%v", parseErr)
			} else {
				redisClient := redis.NewClient(redisOptions)
				pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
				pingErr := redisClient.Ping(pingCtx).Err()
				cancelPing()
				if pingErr != nil {
					log.Printf("level=warn component=bootstrap msg=\"redis ping failed; rate limiting disabled\" err=%v", pingErr)
					redisClient.Close()
				} else {
					defer redisClient.Close()
					memoryService.SetRateLimiter(app.NewRedisRateLimiter(redisClient, cfg.RedisRateLimitPrefix))
					log.Println("level=info component=bootstrap msg=\"redis connected\"")
				}
			}
		}
	}

	// Start the stale-memory refresh scheduler when a cron spec is configured.
	if strings.TrimSpace(cfg.MemoryRefreshSchedule) != "" {
		jobs := app.NewJobs(memoryService, time.Duration(cfg.MemoryRefreshMaxAgeHours)*time.Hour)
		scheduler, err := app.NewScheduler(jobs, cfg.MemoryRefreshSchedule)
		if err != nil {
			log.Fatalf("level=fatal component=bootstrap msg=\"refresh schedule parse failed\" schedule=%q err=%v", cfg.MemoryRefreshSchedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("level=info component=bootstrap msg=\"stale memory refresh scheduled\" schedule=%q max_age_hours=%d", cfg.MemoryRefreshSchedule, cfg.MemoryRefreshMaxAgeHours)
	}

	handlers := api.NewMemoryHandlers(memoryService)
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		log.Println("level=warn component=bootstrap msg=\"jwt secret missing; service auth disabled\" env=JWT_SECRET")
	}
	router := api.NewRouter(handlers, strings.TrimSpace(cfg.JWTSecret))

	serverAddr := fmt.Sprintf(":%s", cfg.ServerPort)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		log.Printf("level=info component=http msg=\"server listening\" addr=%s", serverAddr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("level=fatal component=http msg=\"server stopped unexpectedly\" err=%v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Println("level=info component=http msg=\"shutdown started\"")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("level=error component=http msg=\"shutdown failed\" err=%v", err)
	}

	log.Println("level=info component=http msg=\"shutdown complete\"")
}
