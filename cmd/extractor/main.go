package main

import (
	"context"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/dispatcher"
	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	"github.com/muhammadchandra19/tick-extractor/internal/infrastructure/questdb/tick"
	"github.com/muhammadchandra19/tick-extractor/internal/lifecycle"
	"github.com/muhammadchandra19/tick-extractor/internal/routing"
	"github.com/muhammadchandra19/tick-extractor/internal/sink/kafka"
	"github.com/muhammadchandra19/tick-extractor/internal/usecase/extractor"
	"github.com/muhammadchandra19/tick-extractor/internal/worker"
	"github.com/muhammadchandra19/tick-extractor/pkg/config"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
	"github.com/muhammadchandra19/tick-extractor/pkg/questdb"
	"github.com/redis/go-redis/v9"
)

func main() {
	var (
		brokersFlag = flag.String("brokers", "", "comma separated broker list, empty means all routed brokers")
		fromFlag    = flag.String("from", "", "window start, RFC3339")
		toFlag      = flag.String("to", "", "window end, RFC3339, exclusive")
		spawn       = flag.Bool("spawn", false, "launch the worker fleet instead of extracting")
		teardown    = flag.Bool("teardown", false, "stop the worker fleet instead of extracting")
		storeTicks  = flag.Bool("store", true, "persist extracted ticks to QuestDB")
		publish     = flag.Bool("publish", false, "publish extracted ticks to Kafka")
	)
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(logger.WithLoggingLevel(logger.Level(cfg.App.LogLevel)))
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	table, err := routing.Load(cfg.Extractor.RoutingFile)
	if err != nil {
		appLogger.Error(err)
		return
	}

	creds, err := worker.LoadCredentials(cfg.Extractor.CredentialsFile)
	if err != nil {
		appLogger.Error(err)
		return
	}

	mode := extraction.DataMode(cfg.Extractor.Mode)
	resolver := worker.NewResolver(table, creds, mode, time.Duration(cfg.Extractor.RequestTimeout)*time.Second, appLogger)

	if *spawn {
		runSpawn(ctx, cfg, table, appLogger)
		return
	}
	if *teardown {
		runTeardown(ctx, cfg, table, resolver, appLogger)
		return
	}

	windowStart, windowEnd, err := parseWindow(*fromFlag, *toFlag)
	if err != nil {
		appLogger.Error(err)
		return
	}

	var repository tick.TickRepository
	if *storeTicks {
		client, err := questdb.NewClient(ctx, cfg.QuestDB)
		if err != nil {
			appLogger.Error(err)
			return
		}
		defer client.Close()
		repository = tick.NewRepository(client)
	}

	var publisher extractor.TickPublisher
	if *publish {
		kafkaPublisher := kafka.NewPublisher(kafka.NewWriter(cfg.Kafka), appLogger)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	usecase := extractor.NewUsecase(
		table,
		dispatcher.NewDispatcher(resolver, appLogger),
		repository,
		publisher,
		appLogger,
	)

	brokers := splitBrokers(*brokersFlag)
	results, err := usecase.RunCycle(ctx, brokers, windowStart, windowEnd, mode,
		cfg.Extractor.CheckConnection, cfg.Extractor.MaxConcurrency)
	if err != nil {
		appLogger.Error(err)
	}

	failed := 0
	for _, result := range results {
		if result.Failed() {
			failed++
		}
	}
	appLogger.InfoContext(ctx, "extraction run complete",
		logger.NewField("pairs", len(results)),
		logger.NewField("failed", failed),
	)
}

func runSpawn(
	ctx context.Context,
	cfg *config.Config,
	table *routing.Table,
	appLogger logger.Interface,
) {
	registryClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer registryClient.Close()

	spawner := lifecycle.NewSpawner(
		cfg.Lifecycle.WorkerBinary,
		lifecycle.NewRedisRegistry(registryClient, cfg.Redis.HashKey),
		appLogger,
	)

	for _, broker := range table.Brokers() {
		routes, err := table.SymbolRoutes(broker)
		if err != nil {
			appLogger.Error(err)
			continue
		}
		for _, route := range routes {
			key := extraction.Key{Broker: broker, Symbol: route.Symbol}
			if _, err := spawner.Spawn(ctx, key); err != nil {
				appLogger.Error(err)
			}
		}
	}
}

func runTeardown(
	ctx context.Context,
	cfg *config.Config,
	table *routing.Table,
	resolver extraction.HandleResolver,
	appLogger logger.Interface,
) {
	registryClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer registryClient.Close()

	manager := lifecycle.NewManager(
		table,
		resolver,
		lifecycle.NewHostGateway(),
		lifecycle.NewRedisRegistry(registryClient, cfg.Redis.HashKey),
		cfg.Lifecycle,
		appLogger,
	)
	if err := manager.Teardown(ctx); err != nil {
		appLogger.Error(err)
	}
}

func parseWindow(from, to string) (time.Time, time.Time, error) {
	windowStart, err := time.Parse(time.RFC3339, from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	windowEnd, err := time.Parse(time.RFC3339, to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return windowStart, windowEnd, nil
}

func splitBrokers(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	brokers := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	return brokers
}
