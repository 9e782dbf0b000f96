// Package embedding provides factory functions for creating embedding
// provider adapters from settings.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/memora/internal/adapters/driven/embedding/ollama"
	"github.com/custodia-labs/memora/internal/adapters/driven/embedding/openai"
	"github.com/custodia-labs/memora/internal/core/domain"
	"github.com/custodia-labs/memora/internal/core/ports/driven"
)

// pingTimeout is the maximum time to wait for provider connectivity validation.
const pingTimeout = 5 * time.Second

// CreateAndValidateProvider creates an embedding provider and validates
// connectivity. Returns (nil, nil) when no provider is configured; ingestion
// then persists chunks unembedded.
func CreateAndValidateProvider(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	provider, err := CreateProvider(settings)
	if err != nil {
		return nil, fmt.Errorf("%w: %w. Run 'memora config' to fix",
			domain.ErrEmbeddingUnavailable, err)
	}
	if provider == nil {
		return nil, nil
	}

	// Validate connectivity.
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := provider.Ping(ctx); err != nil {
		provider.Close()
		return nil, fmt.Errorf("provider unreachable: %w. Run 'memora config' to fix", err)
	}

	return provider, nil
}

// CreateProvider creates the appropriate embedding provider based on settings.
// Returns nil if the provider is not configured.
func CreateProvider(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOllama:
		return createOllama(settings), nil

	case domain.AIProviderOpenAI:
		return createOpenAI(settings)

	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", settings.Provider)
	}
}

// createOllama creates an Ollama embedding provider.
func createOllama(settings *domain.EmbeddingSettings) driven.EmbeddingProvider {
	dimensions := domain.EmbeddingDimensions()[settings.Model]
	if dimensions == 0 {
		dimensions = ollama.DefaultDimensions
	}

	return ollama.NewProvider(ollama.Config{
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}

// createOpenAI creates an OpenAI embedding provider.
func createOpenAI(settings *domain.EmbeddingSettings) (driven.EmbeddingProvider, error) {
	dimensions := domain.EmbeddingDimensions()[settings.Model]

	return openai.NewProvider(openai.Config{
		APIKey:     settings.APIKey,
		BaseURL:    settings.BaseURL,
		Model:      settings.Model,
		Dimensions: dimensions,
	})
}
