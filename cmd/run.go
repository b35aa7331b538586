package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"longshot/application"
	"longshot/config"
	"longshot/database"
	"longshot/domain/interfaces"
	"longshot/domain/services"
	"longshot/infrastructure"
	"longshot/repository"
	"longshot/server"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting longshot...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()
	log.Info("Database connection established")

	// NATS is optional; without it events stay in-process only
	var publisher interfaces.EventPublisher
	var natsClient *infrastructure.NATSClient
	if cfg.NATSServers != "" {
		log.Info("Connecting to NATS...")
		natsClient = infrastructure.NewNATSClient(cfg.NATSServers)
		if err := natsClient.Connect(ctx); err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsClient.Close()

		natsPublisher := infrastructure.NewNATSEventPublisher(natsClient)
		if err := natsPublisher.EnsureEventStream(); err != nil {
			return fmt.Errorf("failed to ensure event stream: %w", err)
		}
		publisher = natsPublisher
		log.Info("NATS connection established")
	} else {
		log.Warn("NATS_SERVERS not set, domain events will not be published")
		publisher = infrastructure.NewNoopEventPublisher()
	}

	// Redis caches oracle prices; without it every lookup hits the oracle
	var priceCache *redis.Client
	if cfg.RedisAddr != "" {
		priceCache = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := priceCache.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer priceCache.Close()
		log.Info("Redis connection established")
	} else {
		log.Warn("REDIS_ADDR not set, oracle price caching disabled")
	}

	uowFactory := repository.NewUnitOfWorkFactory(db, publisher)

	oracle := infrastructure.NewHTTPPriceOracle(cfg.OracleBaseURL, cfg.OracleTimeout, priceCache, cfg.PriceCacheTTL)
	signalFeed := infrastructure.NewDexSignalFeed(cfg.SignalFeedBaseURL, cfg.OracleTimeout)

	log.Info("Initializing services...")
	ledgerService := services.NewLedgerService(uowFactory)
	bettingService := services.NewBettingService(uowFactory)
	catalogService := services.NewMarketCatalogService(uowFactory)
	resolutionService := services.NewResolutionService(uowFactory, oracle)
	generatorService := services.NewMarketGeneratorService(uowFactory, signalFeed, services.NewNarrativeClassifier())

	httpServer := server.New(cfg, server.Handlers{
		Markets: server.NewMarketHandler(catalogService),
		Bets:    server.NewBetHandler(bettingService),
		Points:  server.NewPointsHandler(ledgerService),
		Admin:   server.NewAdminHandler(catalogService, generatorService, resolutionService),
	}, db)

	stopGeneration := application.NewGenerationWorker(generatorService).Start(ctx, cfg.GenerationInterval)
	defer stopGeneration()
	stopResolution := application.NewResolutionWorker(resolutionService).Start(ctx, cfg.ResolutionInterval)
	defer stopResolution()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return httpServer.Start()
	})
	g.Go(func() error {
		<-ctx.Done()

		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	log.Infof("Service is running in %s mode", cfg.Environment)

	if err := g.Wait(); err != nil {
		return fmt.Errorf("http server failed: %w", err)
	}

	log.Info("Shutdown completed")
	return nil
}
