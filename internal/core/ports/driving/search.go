package driving

import (
	"context"

	"github.com/custodia-labs/memora/internal/core/domain"
)

// QueryService answers semantic similarity queries over a user's chunks.
type QueryService interface {
	// Search embeds the query text and returns the user's top-k most
	// similar chunks, sorted by descending cosine similarity with ties
	// broken by more recent chunk creation.
	Search(ctx context.Context, userID, query string, opts domain.SearchOptions) ([]domain.QueryResult, error)
}
