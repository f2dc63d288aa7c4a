package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fortuna/ligatipp/internal/api/rest"
	"github.com/fortuna/ligatipp/internal/api/websocket"
	"github.com/fortuna/ligatipp/internal/cache"
	"github.com/fortuna/ligatipp/internal/config"
	"github.com/fortuna/ligatipp/internal/ingest/fussballdaten"
	"github.com/fortuna/ligatipp/internal/names"
	"github.com/fortuna/ligatipp/internal/predictions"
	"github.com/fortuna/ligatipp/internal/publisher"
	"github.com/fortuna/ligatipp/internal/reconcile"
	"github.com/fortuna/ligatipp/internal/scheduler"
	"github.com/fortuna/ligatipp/internal/store"
	"github.com/fortuna/ligatipp/internal/store/local"
)

const (
	serviceName    = "ligatipp"
	serviceVersion = "1.0.0"
)

func main() {
	log.Printf("Starting %s v%s - Bundesliga Results & Predictions Service", serviceName, serviceVersion)

	cfg := config.Load()

	resolver := loadResolver(cfg)

	// Initialize database connection
	db, err := store.NewDatabase(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	log.Println("✓ Connected to database")

	// Run migrations
	if err := db.RunMigrations(); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// Local season-file store
	fileStore, err := local.NewFileStore(cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open season-file store at %s: %v", cfg.DataDir, err)
	}
	log.Printf("✓ Season-file store at %s", cfg.DataDir)

	// Initialize Redis client with retry logic
	var redisCache *cache.RedisCache
	maxRetries := 30
	retryDelay := 2 * time.Second

	log.Println("Connecting to Redis...")
	for i := 0; i < maxRetries; i++ {
		redisCache, err = cache.NewRedisCache(cfg.RedisURL)
		if err == nil {
			break
		}

		if i < maxRetries-1 {
			log.Printf("Redis connection attempt %d/%d failed: %v (retrying in %v)", i+1, maxRetries, err, retryDelay)
			time.Sleep(retryDelay)
		} else {
			log.Fatalf("Failed to connect to Redis after %d attempts: %v", maxRetries, err)
		}
	}
	defer redisCache.Close()

	log.Println("✓ Connected to Redis")

	// Reconciliation engine over both backends. Every settled result is
	// published to the stream and invalidates cached standings.
	notifier := reconcile.MultiNotifier{
		publisher.NewRedisStreamPublisher(redisCache.Client()),
		cache.NewInvalidator(redisCache),
	}
	engine := reconcile.NewEngine([]reconcile.Sink{
		reconcile.NewDatabaseSink(db),
		reconcile.NewFileSink(fileStore),
	}, notifier)

	// Scraper
	var client *fussballdaten.Client
	if cfg.SourceBaseURL != "" {
		client, err = fussballdaten.NewClientWithBaseURL(cfg.SourceBaseURL)
	} else {
		client, err = fussballdaten.NewClient()
	}
	if err != nil {
		log.Fatalf("Failed to start scraper client: %v", err)
	}

	parserCfg := fussballdaten.DefaultParserConfig()
	parserCfg.CurrentMatchday = cfg.CurrentMatchday
	ingester := fussballdaten.NewIngester(client, resolver, parserCfg, redisCache)

	// Predictions
	preds := predictions.NewService(db)

	// Scheduler
	schedCfg := scheduler.DefaultConfig()
	schedCfg.PollInterval = cfg.PollInterval
	schedCfg.Season = cfg.Season
	schedCfg.CurrentMatchday = cfg.CurrentMatchday

	sched := scheduler.NewOrchestrator(ingester, engine, preds, schedCfg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go sched.Start(ctx)
	log.Println("✓ Scheduler started")

	// Initialize REST API server
	restServer := rest.NewServer(cfg.RESTPort, db, preds, resolver, engine, redisCache, cfg.Season)
	go func() {
		log.Printf("Starting REST API server on port %s", cfg.RESTPort)
		if err := restServer.Start(); err != nil {
			log.Printf("REST server error: %v", err)
		}
	}()

	// Initialize WebSocket server
	wsServer := websocket.NewServer(redisCache)
	go func() {
		log.Printf("Starting WebSocket server on port %s", cfg.WSPort)
		if err := wsServer.Start(ctx, cfg.WSPort); err != nil {
			log.Printf("WebSocket server error: %v", err)
		}
	}()

	log.Printf("✓ %s v%s started successfully", serviceName, serviceVersion)
	log.Printf("  REST API: http://0.0.0.0:%s", cfg.RESTPort)
	log.Printf("  WebSocket: ws://0.0.0.0:%s", cfg.WSPort)

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	cancel()
	sched.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := restServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("REST API server shutdown error: %v", err)
	}
	if err := wsServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("WebSocket server shutdown error: %v", err)
	}

	log.Printf("%s stopped", serviceName)
}

// loadResolver builds the club-name resolver, from a rule file when one
// is configured.
func loadResolver(cfg config.Config) *names.Resolver {
	if cfg.RulesFile == "" {
		return names.Default()
	}

	f, err := os.Open(cfg.RulesFile)
	if err != nil {
		log.Fatalf("Failed to open name rules %s: %v", cfg.RulesFile, err)
	}
	defer f.Close()

	resolver, err := names.LoadRules(f)
	if err != nil {
		log.Fatalf("Failed to load name rules %s: %v", cfg.RulesFile, err)
	}
	log.Printf("✓ Name rules loaded from %s", cfg.RulesFile)
	return resolver
}
