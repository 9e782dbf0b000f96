package domain

// DefaultTopK is the number of results returned when the caller does not ask
// for a specific count.
const DefaultTopK = 10

// SearchOptions configures a similarity query.
type SearchOptions struct {
	// TopK is the maximum number of results. Defaults to DefaultTopK when
	// zero or negative. Fewer results are returned when fewer candidates
	// exist; the result set is never padded.
	TopK int
}

// QueryResult is a single similarity search hit.
type QueryResult struct {
	// Chunk is the matched chunk, embedding included.
	Chunk KnowledgeChunk

	// Score is the cosine similarity between the query vector and the
	// chunk's embedding.
	Score float64
}
