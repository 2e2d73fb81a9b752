package core

import (
	"context"

	"github.com/google/uuid"
)

// Previews returned to the caller are capped at this many bytes.
const previewLength = 100

type IngestService struct {
	providers *Providers
}

func NewIngestService(p *Providers) *IngestService {
	return &IngestService{providers: p}
}

type IngestResult struct {
	ID      string
	Preview string
}

// Ingest embeds text and upserts it into the vector store. When chunkID
// is empty a fresh UUID is generated; re-using an id overwrites the
// previous record (the store's last-write-wins semantics).
func (s *IngestService) Ingest(ctx context.Context, text, chunkID string) (*IngestResult, error) {
	if text == "" {
		return nil, &ValidationError{Message: "text content is required"}
	}

	if err := s.providers.EnsureReady(ctx); err != nil {
		return nil, err
	}

	embedding, err := s.providers.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, &ProviderError{Op: "embedding text", Err: err}
	}

	id := chunkID
	if id == "" {
		id = uuid.NewString()
	}

	rec := VectorRecord{ID: id, Values: embedding, Text: text}
	if err := s.providers.Store.Upsert(ctx, rec); err != nil {
		return nil, &ProviderError{Op: "upserting vector", Err: err}
	}

	return &IngestResult{ID: id, Preview: preview(text)}, nil
}

func preview(text string) string {
	if len(text) <= previewLength {
		return text
	}
	return text[:previewLength] + "..."
}
