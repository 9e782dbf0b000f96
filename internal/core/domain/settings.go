package domain

const unknownDescription = "Unknown"

// AIProvider identifies an embedding service provider.
type AIProvider string

// Available embedding providers.
const (
	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is the OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"
)

// IsValid returns true if the provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if the provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	default:
		return unknownDescription
	}
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	// Provider is the embedding service provider.
	Provider AIProvider

	// Model is the embedding model name.
	Model string

	// BaseURL is the API endpoint (for Ollama).
	BaseURL string

	// APIKey is the API key (for OpenAI).
	APIKey string
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// ChunkingSettings holds document chunking configuration.
type ChunkingSettings struct {
	// MaxChunkSize is the chunk size budget in bytes.
	MaxChunkSize int
}

// AppSettings holds all application settings.
type AppSettings struct {
	// Embedding holds embedding provider settings.
	Embedding EmbeddingSettings

	// Chunking holds document chunking settings.
	Chunking ChunkingSettings
}

// DefaultAppSettings returns settings with sensible defaults.
// The embedding provider is left unconfigured; documents ingested without one
// are persisted unembedded and excluded from search until a re-embed.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Embedding: EmbeddingSettings{},
		Chunking: ChunkingSettings{
			MaxChunkSize: 1000,
		},
	}
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama: "nomic-embed-text",
		AIProviderOpenAI: "text-embedding-3-small",
	}
}

// EmbeddingDimensions returns the vector size for known embedding models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		"nomic-embed-text":       768,
		"all-minilm":             384,
		"mxbai-embed-large":      1024,
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
	}
}
