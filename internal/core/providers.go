package core

import (
	"context"
	"log"
	"sync"
)

// Providers bundles the external service clients used by the services.
// The clients themselves are constructed once in main; EnsureReady adds
// the lazy part of startup, making sure the vector index exists before
// the first upsert or query.
type Providers struct {
	Embedder Embedder
	Chat     ChatModel
	Store    VectorStore

	mu    sync.Mutex
	ready bool
}

func NewProviders(embedder Embedder, chat ChatModel, store VectorStore) *Providers {
	return &Providers{
		Embedder: embedder,
		Chat:     chat,
		Store:    store,
	}
}

// EnsureReady guarantees the vector index exists. The first successful
// call does the work; later calls return immediately. A failed attempt
// does not mark the holder ready, so the next request retries.
func (p *Providers) EnsureReady(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}

	if err := p.Store.EnsureIndex(ctx, p.Embedder.Dimensions()); err != nil {
		log.Printf("Vector index initialization failed: %v", err)
		return &InitializationError{Err: err}
	}

	p.ready = true
	log.Printf("Vector index ready (dimension %d)", p.Embedder.Dimensions())
	return nil
}
