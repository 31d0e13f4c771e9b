// Command indexer rebuilds the semantic food index from the catalog.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mealrec/config"
	"mealrec/repository"
	"mealrec/services"

	"github.com/rs/zerolog"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config (optional)")
	flag.Parse()
	os.Exit(run(*configPath))
}

func run(configPath string) int {
	cfg, err := config.Load(configPath)
	if err != nil {
		boot := zerolog.New(os.Stderr)
		boot.Error().Err(err).Msg("load config")
		return 1
	}
	log := config.NewLogger(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Error().Err(err).Msg("init database")
		return 1
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Error().Err(err).Msg("get sql handle")
		return 1
	}
	defer sqlDB.Close()

	embedder := services.NewEmbeddingClient(cfg.Embedding, nil)
	index := services.NewVectorIndex(db, embedder)
	defer index.Close()

	start := time.Now()
	n, err := services.NewIndexer(repository.NewFoodRepository(db), embedder, index, log).Run(ctx)
	if err != nil {
		log.Error().Err(err).Int("indexed", n).Msg("indexing failed")
		return 1
	}
	total, _ := index.Count(ctx)
	log.Info().Int("indexed", n).Int64("index_size", total).Dur("took", time.Since(start)).Msg("indexing complete")
	return 0
}
