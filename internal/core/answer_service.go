package core

import (
	"context"
	"log"
)

const (
	// TopKMatches is how many similarity matches are requested per question.
	TopKMatches = 5
	// SimilarityThreshold is the minimum best-match score accepted when the
	// requested document id is not among the matches. Below it we refuse to
	// answer rather than ground the model on unrelated text.
	SimilarityThreshold = 0.5
)

const (
	strictSystemInstruction = "You are a helpful assistant. Answer the question using only the context provided. " +
		"Resolve paraphrases and synonyms in the question against the context. " +
		"If the answer cannot be found in the context, reply exactly: \"I'm sorry, I don't know.\" " +
		"Keep your answers concise."

	lenientSystemInstruction = "You are a helpful assistant. Answer the question using the context provided. " +
		"Keep your answers concise."
)

const (
	answerTemperature = 0.7
	answerMaxTokens   = 500
)

type AnswerService struct {
	providers *Providers
}

func NewAnswerService(p *Providers) *AnswerService {
	return &AnswerService{providers: p}
}

type AnswerResult struct {
	Question string
	Answer   string
}

// Answer embeds the question, retrieves the most similar stored chunks,
// and asks the chat model for an answer grounded on the selected chunk.
// An exact documentID match gets the strict instruction; otherwise the
// best-scoring match is used with the lenient one, provided it clears
// SimilarityThreshold. Returns ErrNoRelevantContext when nothing usable
// was retrieved.
func (s *AnswerService) Answer(ctx context.Context, question, documentID string) (*AnswerResult, error) {
	if question == "" {
		return nil, &ValidationError{Message: "question is required"}
	}
	if documentID == "" {
		return nil, &ValidationError{Message: "documentID is required"}
	}

	if err := s.providers.EnsureReady(ctx); err != nil {
		return nil, err
	}

	embedding, err := s.providers.Embedder.Embed(ctx, question)
	if err != nil {
		return nil, &ProviderError{Op: "embedding question", Err: err}
	}

	matches, err := s.providers.Store.Query(ctx, embedding, TopKMatches)
	if err != nil {
		return nil, &ProviderError{Op: "querying vector store", Err: err}
	}
	if len(matches) == 0 {
		return nil, ErrNoRelevantContext
	}

	var contextText, instruction string
	if m, ok := exactMatch(matches, documentID); ok {
		contextText = m.Text
		instruction = strictSystemInstruction
		log.Printf("Answering from exact match %q (score %.3f)", m.ID, m.Score)
	} else if best := matches[0]; best.Score >= SimilarityThreshold {
		// Matches arrive sorted by descending score.
		contextText = best.Text
		instruction = lenientSystemInstruction
		log.Printf("No match for document %q, falling back to best match %q (score %.3f)", documentID, best.ID, best.Score)
	} else {
		log.Printf("Best match %q scored %.3f, below threshold %.2f", matches[0].ID, matches[0].Score, SimilarityThreshold)
		return nil, ErrNoRelevantContext
	}

	system := instruction + "\n\nContext:\n" + contextText
	opts := CompletionOptions{Temperature: answerTemperature, MaxTokens: answerMaxTokens}
	answer, err := s.providers.Chat.Complete(ctx, system, question, opts)
	if err != nil {
		return nil, &ProviderError{Op: "generating answer", Err: err}
	}

	return &AnswerResult{Question: question, Answer: answer}, nil
}

func exactMatch(matches []Match, documentID string) (Match, bool) {
	for _, m := range matches {
		if m.ID == documentID {
			return m, true
		}
	}
	return Match{}, false
}
