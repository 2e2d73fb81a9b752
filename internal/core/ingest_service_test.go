package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIngestFixture() (*IngestService, *fakeEmbedder, *fakeStore) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{}
	svc := NewIngestService(NewProviders(embedder, &fakeChat{}, store))
	return svc, embedder, store
}

func TestIngestGeneratesUniqueIDs(t *testing.T) {
	svc, _, _ := newIngestFixture()

	first, err := svc.Ingest(context.Background(), "first chunk", "")
	require.NoError(t, err)
	second, err := svc.Ingest(context.Background(), "second chunk", "")
	require.NoError(t, err)

	require.NotEmpty(t, first.ID)
	require.NotEmpty(t, second.ID)
	require.NotEqual(t, first.ID, second.ID)
}

func TestIngestOverwritesSameID(t *testing.T) {
	svc, _, store := newIngestFixture()

	_, err := svc.Ingest(context.Background(), "original text", "X")
	require.NoError(t, err)
	_, err = svc.Ingest(context.Background(), "replacement text", "X")
	require.NoError(t, err)

	require.Len(t, store.records, 1)
	require.Equal(t, "replacement text", store.records["X"].Text)
}

func TestIngestEmptyTextFailsValidation(t *testing.T) {
	svc, embedder, store := newIngestFixture()

	_, err := svc.Ingest(context.Background(), "", "")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "text content is required", validationErr.Message)

	// Validation must reject before any provider call.
	assert.Zero(t, embedder.embedCalls)
	assert.Zero(t, store.upsertCalls)
	assert.Zero(t, store.ensureCalls)
}

func TestIngestPreviewTruncation(t *testing.T) {
	svc, _, _ := newIngestFixture()

	long := strings.Repeat("a", 150)
	result, err := svc.Ingest(context.Background(), long, "doc1")
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("a", 100)+"...", result.Preview)

	short, err := svc.Ingest(context.Background(), "short text", "doc2")
	require.NoError(t, err)
	assert.Equal(t, "short text", short.Preview)
}

func TestIngestEmbeddingFailure(t *testing.T) {
	svc, embedder, store := newIngestFixture()
	embedder.err = errors.New("rate limited")

	_, err := svc.Ingest(context.Background(), "some text", "")

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Contains(t, err.Error(), "rate limited")
	assert.Zero(t, store.upsertCalls)
}

func TestIngestUpsertFailure(t *testing.T) {
	svc, _, store := newIngestFixture()
	store.upsertErr = errors.New("upstream unavailable")

	_, err := svc.Ingest(context.Background(), "some text", "doc1")

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Contains(t, err.Error(), "upstream unavailable")
}
