package core

import "context"

// Embedder generates vector embeddings for text.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the embedding vector size produced by the model.
	// The vector index must be created with a matching dimension.
	Dimensions() int
}

// CompletionOptions configures a single chat completion.
type CompletionOptions struct {
	Temperature float32
	MaxTokens   int
}

// ChatModel generates text from a system instruction and a user turn.
type ChatModel interface {
	Complete(ctx context.Context, system, user string, opts CompletionOptions) (string, error)
}

// VectorRecord is one stored chunk: the id, its embedding, and the
// original text kept as metadata so it can be returned by queries.
type VectorRecord struct {
	ID     string
	Values []float32
	Text   string
}

// Match is a single similarity-search result. Score is cosine similarity;
// stores return matches ordered by descending score.
type Match struct {
	ID    string
	Score float32
	Text  string
}

// VectorStore persists embeddings and answers top-k similarity queries.
// Upserting an existing id overwrites the previous record.
type VectorStore interface {
	EnsureIndex(ctx context.Context, dimension int) error
	Upsert(ctx context.Context, rec VectorRecord) error
	Query(ctx context.Context, vector []float32, topK int) ([]Match, error)
}
