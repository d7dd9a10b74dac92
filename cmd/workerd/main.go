package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/muhammadchandra19/tick-extractor/internal/routing"
	"github.com/muhammadchandra19/tick-extractor/internal/workerd"
	"github.com/muhammadchandra19/tick-extractor/pkg/config"
	"github.com/muhammadchandra19/tick-extractor/pkg/logger"
)

func main() {
	var (
		broker    = flag.String("broker", "", "broker this worker serves")
		symbol    = flag.String("symbol", "", "symbol this worker serves")
		basePrice = flag.Float64("base-price", 1.0, "starting price for the simulated feed")
		interval  = flag.Duration("interval", time.Second, "simulated tick interval")
	)
	flag.Parse()

	if *broker == "" || *symbol == "" {
		log.Fatal("-broker and -symbol are required")
	}

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

	port, err := table.Resolve(*broker, *symbol)
	if err != nil {
		appLogger.Error(err)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connector := workerd.NewSimulatedConnector(*basePrice, *interval, time.Now().UnixNano())
	server := workerd.NewServer(*broker, *symbol, port, connector, appLogger)

	if err := server.Run(ctx); err != nil && err != context.Canceled {
		appLogger.Error(err)
	}
}
