// Package ollama provides an embedding provider adapter using Ollama.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/memora/internal/core/domain"
	"github.com/custodia-labs/memora/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.EmbeddingProvider = (*Provider)(nil)

// Default configuration values.
const (
	DefaultBaseURL    = "http://localhost:11434"
	DefaultModel      = "nomic-embed-text"
	DefaultTimeout    = 30 * time.Second
	DefaultDimensions = 768 // nomic-embed-text default

	// DefaultRequestsPerSecond throttles embedding calls so a large ingest
	// does not starve a local Ollama of resources.
	DefaultRequestsPerSecond = 20
)

// Config holds configuration for the Ollama embedding provider.
type Config struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434).
	BaseURL string

	// Model is the embedding model to use (default: nomic-embed-text).
	Model string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration

	// Dimensions is the embedding vector size (model-dependent).
	Dimensions int

	// RequestsPerSecond caps the request rate (default: 20).
	RequestsPerSecond float64
}

// Provider generates embeddings using Ollama.
type Provider struct {
	client     *http.Client
	baseURL    string
	model      string
	dimensions int
	limiter    *rate.Limiter
}

// embedRequest is the Ollama API request format.
type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

// embedResponse is the Ollama API response format.
type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// NewProvider creates a new Ollama embedding provider.
func NewProvider(cfg Config) *Provider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Dimensions == 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.RequestsPerSecond == 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}

	return &Provider{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL:    cfg.BaseURL,
		model:      cfg.Model,
		dimensions: cfg.Dimensions,
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
	}
}

// Embed generates a vector embedding for the given text.
func (p *Provider) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqBody := embedRequest{
		Model:  p.model,
		Prompt: text,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.baseURL+"/api/embeddings",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: ollama: %v", domain.ErrEmbeddingTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, classify(resp.StatusCode, string(body))
	}

	var embedResp embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// Convert float64 to float32
	embedding := make([]float32, len(embedResp.Embedding))
	for i, v := range embedResp.Embedding {
		embedding[i] = float32(v)
	}

	return embedding, nil
}

// EmbedBatch generates embeddings for multiple texts.
// Ollama has no native batch API, so texts are embedded one by one.
func (p *Provider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		embedding, err := p.Embed(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("embed text %d: %w", i, err)
		}
		embeddings[i] = embedding
	}
	return embeddings, nil
}

// Dimensions returns the embedding vector size.
func (p *Provider) Dimensions() int {
	return p.dimensions
}

// ModelName returns the name of the embedding model being used.
func (p *Provider) ModelName() string {
	return p.model
}

// Ping validates the provider is reachable by checking the /api/tags endpoint.
// This is a lightweight check that validates connectivity without running inference.
func (p *Provider) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return fmt.Errorf("ollama: failed to create ping request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: ollama: ping failed: %v", domain.ErrEmbeddingUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: ollama: API returned status %d: %s",
			domain.ErrEmbeddingUnavailable, resp.StatusCode, string(body))
	}
	return nil
}

// Close releases resources.
func (p *Provider) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// classify maps an HTTP failure to the retryable or permanent error class.
// 429 and server errors are worth retrying; other client errors are not.
func classify(status int, body string) error {
	if status == http.StatusTooManyRequests || status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: ollama error (status %d): %s", domain.ErrEmbeddingTransient, status, body)
	}
	return fmt.Errorf("%w: ollama error (status %d): %s", domain.ErrEmbeddingPermanent, status, body)
}
