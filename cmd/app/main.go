package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"Manifold/internal/di"
	"Manifold/pkg/config"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config/config.yaml", "config file path")
	flag.Parse()

	// Load config
	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	log.Printf("env=%s symbols=%s horizons=%v", cfg.Environment, strings.Join(cfg.Monitor.Symbols, ","), cfg.Monitor.Horizons)

	// Wire DI: Initialize all dependencies
	app, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("app initialization failed: %v", err)
	}

	log.Printf("clickhouse: db=%s kafka=%t redis=%t", cfg.ClickHouse.Database, cfg.Kafka.Enabled, cfg.Redis.Enabled)

	// Run application (blocks until signal)
	if err := app.Run(); err != nil {
		log.Printf("app error: %v", err)
		os.Exit(1)
	}
}
