package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bekalpaslan/cosmograph/internal/config"
	"github.com/bekalpaslan/cosmograph/internal/engine"
	"github.com/bekalpaslan/cosmograph/internal/events"
	"github.com/bekalpaslan/cosmograph/internal/handler"
	"github.com/bekalpaslan/cosmograph/internal/hub"
	"github.com/bekalpaslan/cosmograph/internal/loader"
	"github.com/bekalpaslan/cosmograph/internal/repository/sqlite"
	"github.com/bekalpaslan/cosmograph/internal/service"
	"github.com/bekalpaslan/cosmograph/internal/watcher"
)

func main() {
	// Command line flags override the config file
	configPath := flag.String("config", "", "config file path")
	addr := flag.String("addr", "", "HTTP listen address")
	dbPath := flag.String("db", "", "SQLite database path")
	seedPath := flag.String("seed", "", "seed universe YAML path")
	flag.Parse()

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting Cosmograph server...")

	// Load configuration
	var cfg *config.Config
	var cfgPath string
	var err error
	if *configPath != "" {
		cfg, cfgPath, err = config.LoadFromPath(*configPath)
	} else {
		cfg, cfgPath, err = config.Load()
	}
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfgPath != "" {
		log.Printf("Config loaded from %s", cfgPath)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}
	if *seedPath != "" {
		cfg.Seed.Path = *seedPath
	}

	// Initialize SQLite repository
	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer repo.Close()
	log.Printf("Database opened: %s", cfg.Database.Path)

	// Initialize event bus
	eventBus := service.NewEventBus()

	// Initialize WebSocket hub
	wsHub := hub.New()
	go wsHub.Run()

	// Connect event bus to WebSocket hub
	eventChan := make(chan events.Event, 100)
	eventBus.Subscribe(eventChan)
	go func() {
		for event := range eventChan {
			wsHub.Broadcast(event)
		}
	}()

	// Initialize services
	evolutionSvc := service.NewEvolutionService(repo, eventBus)
	if cfg.Evolution.TickThrottle != nil {
		evolutionSvc = evolutionSvc.WithThrottle(cfg.Evolution.TickThrottle.Duration())
	}
	universeSvc := service.NewUniverseService(repo, eventBus)
	discoverySvc := service.NewDiscoveryService(repo, eventBus, evolutionSvc)

	// Import the seed universe if configured
	if cfg.Seed.Path != "" {
		if err := seedUniverse(context.Background(), universeSvc, cfg.Seed.Path); err != nil {
			log.Fatalf("Failed to seed universe: %v", err)
		}
	}

	// Background workers
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workers, workerCtx := errgroup.WithContext(workerCtx)

	// Watch the seed file and re-import on change
	if cfg.Seed.Path != "" && cfg.Seed.Watch {
		seedWatcher := watcher.New(cfg.Seed.Path, func() {
			if err := seedUniverse(workerCtx, universeSvc, cfg.Seed.Path); err != nil {
				log.Printf("Seed reload failed: %v", err)
			}
		})
		workers.Go(func() error {
			if err := seedWatcher.Watch(workerCtx); err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}

	// Setup routes
	mux := http.NewServeMux()
	universeHandler := handler.NewUniverseHandler(universeSvc, discoverySvc)
	cadences := engine.DefaultSchedulerConfig()
	if cfg.Discovery.ActiveInterval != nil {
		cadences.ActiveInterval = cfg.Discovery.ActiveInterval.Duration()
	}
	if cfg.Discovery.IdleInterval != nil {
		cadences.IdleInterval = cfg.Discovery.IdleInterval.Duration()
	}
	if cfg.Discovery.IdleThreshold != nil {
		cadences.IdleThreshold = cfg.Discovery.IdleThreshold.Duration()
	}
	universeHandler.SetDiscoveryCadences(cadences.ActiveInterval, cadences.IdleInterval, cadences.IdleThreshold)
	universeHandler.Routes(mux)
	mux.Handle("GET /ws", wsHub)

	// Apply middleware
	finalHandler := handler.Chain(mux,
		handler.Recover,
		handler.CORS,
		handler.Logger,
	)

	// Create server
	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      finalHandler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server listening on %s", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	// Stop background workers
	workerCancel()
	if err := workers.Wait(); err != nil {
		log.Printf("Worker shutdown error: %v", err)
	}

	// Graceful server shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}

// seedUniverse loads the seed YAML and imports it, preserving any discovery
// state already accrued for known regions.
func seedUniverse(ctx context.Context, universe *service.UniverseService, path string) error {
	graph, triggers, err := loader.LoadYAML(path)
	if err != nil {
		return err
	}
	if err := universe.Seed(ctx, graph, triggers); err != nil {
		return err
	}
	log.Printf("Seeded universe from %s: %d regions, %d bridges, %d triggers",
		path, len(graph.Regions), len(graph.Bridges), len(triggers))
	return nil
}
