// Command memora is a per-user knowledge store with semantic search.
package main

import (
	"fmt"
	"os"

	"github.com/custodia-labs/memora/internal/adapters/driven/config/file"
	"github.com/custodia-labs/memora/internal/adapters/driven/embedding"
	"github.com/custodia-labs/memora/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/memora/internal/adapters/driving/cli"
	"github.com/custodia-labs/memora/internal/chunker"
	"github.com/custodia-labs/memora/internal/core/services"
	"github.com/custodia-labs/memora/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("opening config: %w", err)
	}
	settings := file.SettingsFromConfig(configStore)

	store, err := sqlite.NewStore("")
	if err != nil {
		return fmt.Errorf("opening storage: %w", err)
	}
	defer store.Close()

	embedder, err := embedding.CreateAndValidateProvider(&settings.Embedding)
	if err != nil {
		// Ingestion still works without a provider; chunks persist
		// unembedded and a later re-embed picks them up.
		logger.Warn("embedding provider unavailable: %v", err)
		embedder = nil
	}
	if embedder != nil {
		defer embedder.Close()
	}

	splitter := chunker.New(chunker.WithMaxChunkSize(settings.Chunking.MaxChunkSize))

	knowledge := services.NewKnowledgeStore(store, embedder, splitter)
	query := services.NewQueryEngine(store, embedder)

	return cli.Execute(cli.Deps{
		Knowledge: knowledge,
		Query:     query,
		Config:    configStore,
		Version:   version,
	})
}
