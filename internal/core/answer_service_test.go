package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAnswerFixture(matches []Match) (*AnswerService, *fakeEmbedder, *fakeStore, *fakeChat) {
	embedder := &fakeEmbedder{}
	store := &fakeStore{matches: matches}
	chat := &fakeChat{}
	svc := NewAnswerService(NewProviders(embedder, chat, store))
	return svc, embedder, store, chat
}

func TestAnswerExactMatchUsesStrictInstruction(t *testing.T) {
	matches := []Match{
		{ID: "other", Score: 0.91, Text: "unrelated content"},
		{ID: "doc1", Score: 0.42, Text: "The sky is blue."},
	}
	svc, _, _, chat := newAnswerFixture(matches)

	result, err := svc.Answer(context.Background(), "What color is the sky?", "doc1")
	require.NoError(t, err)

	// Exact id wins even when a different match scores higher.
	assert.Contains(t, chat.lastSystem, "The sky is blue.")
	assert.NotContains(t, chat.lastSystem, "unrelated content")
	assert.Contains(t, chat.lastSystem, "I'm sorry, I don't know.")
	assert.Equal(t, "What color is the sky?", chat.lastUser)
	assert.Equal(t, "What color is the sky?", result.Question)
	assert.Equal(t, "stub answer", result.Answer)
}

func TestAnswerFallsBackToBestMatch(t *testing.T) {
	matches := []Match{
		{ID: "doc7", Score: 0.82, Text: "Water boils at 100 degrees Celsius."},
		{ID: "doc8", Score: 0.60, Text: "Other content."},
	}
	svc, _, _, chat := newAnswerFixture(matches)

	_, err := svc.Answer(context.Background(), "When does water boil?", "nonexistent-id")
	require.NoError(t, err)

	assert.Contains(t, chat.lastSystem, "Water boils at 100 degrees Celsius.")
	// The lenient instruction omits the refusal sentence.
	assert.NotContains(t, chat.lastSystem, "I'm sorry, I don't know.")
}

func TestAnswerBestMatchAtThresholdIsAccepted(t *testing.T) {
	matches := []Match{{ID: "doc7", Score: 0.5, Text: "borderline content"}}
	svc, _, _, chat := newAnswerFixture(matches)

	_, err := svc.Answer(context.Background(), "a question", "nonexistent-id")
	require.NoError(t, err)
	assert.Equal(t, 1, chat.calls)
}

func TestAnswerBelowThresholdReturnsNoContext(t *testing.T) {
	matches := []Match{{ID: "doc7", Score: 0.49, Text: "barely related"}}
	svc, _, _, chat := newAnswerFixture(matches)

	_, err := svc.Answer(context.Background(), "a question", "nonexistent-id")

	require.ErrorIs(t, err, ErrNoRelevantContext)
	assert.Zero(t, chat.calls)
}

func TestAnswerNoMatchesReturnsNoContext(t *testing.T) {
	svc, _, _, chat := newAnswerFixture(nil)

	_, err := svc.Answer(context.Background(), "a question", "doc1")

	require.ErrorIs(t, err, ErrNoRelevantContext)
	assert.Zero(t, chat.calls)
}

func TestAnswerValidatesBeforeEmbedding(t *testing.T) {
	svc, embedder, store, _ := newAnswerFixture(nil)

	var validationErr *ValidationError

	_, err := svc.Answer(context.Background(), "", "doc1")
	require.ErrorAs(t, err, &validationErr)

	_, err = svc.Answer(context.Background(), "a question", "")
	require.ErrorAs(t, err, &validationErr)

	assert.Zero(t, embedder.embedCalls)
	assert.Zero(t, store.queryCalls)
}

func TestAnswerGenerationParameters(t *testing.T) {
	matches := []Match{{ID: "doc1", Score: 0.9, Text: "context"}}
	svc, _, _, chat := newAnswerFixture(matches)

	_, err := svc.Answer(context.Background(), "a question", "doc1")
	require.NoError(t, err)

	assert.InDelta(t, 0.7, chat.lastOpts.Temperature, 0.001)
	assert.Equal(t, 500, chat.lastOpts.MaxTokens)
}

func TestAnswerEmbeddingFailure(t *testing.T) {
	svc, embedder, store, chat := newAnswerFixture(nil)
	embedder.err = errors.New("embedding service down")

	_, err := svc.Answer(context.Background(), "a question", "doc1")

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	require.NotErrorIs(t, err, ErrNoRelevantContext)
	assert.Zero(t, store.queryCalls)
	assert.Zero(t, chat.calls)
}

func TestAnswerQueryFailureIsNotConflatedWithNoMatch(t *testing.T) {
	svc, _, store, _ := newAnswerFixture(nil)
	store.queryErr = errors.New("index unavailable")

	_, err := svc.Answer(context.Background(), "a question", "doc1")

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	require.NotErrorIs(t, err, ErrNoRelevantContext)
}

func TestAnswerChatFailure(t *testing.T) {
	matches := []Match{{ID: "doc1", Score: 0.9, Text: "context"}}
	svc, _, _, chat := newAnswerFixture(matches)
	chat.respond = func(system, user string) (string, error) {
		return "", errors.New("model overloaded")
	}

	_, err := svc.Answer(context.Background(), "a question", "doc1")

	var providerErr *ProviderError
	require.ErrorAs(t, err, &providerErr)
	assert.Contains(t, err.Error(), "model overloaded")
}
