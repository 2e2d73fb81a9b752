package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"sync"

	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"ragworks.io/askbridge/internal/core"
	"ragworks.io/askbridge/internal/utils"
)

// SQLiteStore is a local implementation of the vector store port, used
// with VECTOR_BACKEND=sqlite. Queries are brute-force cosine similarity
// over all stored chunks, which is fine at the scale this backend is for
// (development and tests without a Pinecone account).
type SQLiteStore struct {
	mu        sync.RWMutex
	db        *sql.DB
	dimension int
}

func NewSQLiteStore(dataSourceName string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err = store.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS chunks (
        id TEXT PRIMARY KEY,
        text TEXT NOT NULL,
        embedding_json TEXT NOT NULL, -- JSON-encoded []float32
        created_at DATETIME DEFAULT CURRENT_TIMESTAMP
    );
    `
	_, err := s.db.Exec(schema)
	return err
}

// EnsureIndex records the expected embedding dimension. The table itself
// is created on open, so there is no remote collection to wait for.
func (s *SQLiteStore) EnsureIndex(ctx context.Context, dimension int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	return nil
}

func (s *SQLiteStore) Upsert(ctx context.Context, rec core.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dimension > 0 && len(rec.Values) != s.dimension {
		return fmt.Errorf("embedding has %d dimensions, index expects %d", len(rec.Values), s.dimension)
	}

	embeddingJSON, err := json.Marshal(rec.Values)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO chunks (id, text, embedding_json) VALUES (?, ?, ?)",
		rec.ID, rec.Text, string(embeddingJSON))
	if err != nil {
		return fmt.Errorf("failed to upsert chunk: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Query(ctx context.Context, vec []float32, topK int) ([]core.Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, "SELECT id, text, embedding_json FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var matches []core.Match
	for rows.Next() {
		var id, text, embeddingJSON string
		if err := rows.Scan(&id, &text, &embeddingJSON); err != nil {
			return nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}

		var embedding []float32
		if err := json.Unmarshal([]byte(embeddingJSON), &embedding); err != nil {
			log.Printf("Skipping chunk %q with unreadable embedding: %v", id, err)
			continue
		}

		score, err := utils.CosineSimilarity(vec, embedding)
		if err != nil {
			log.Printf("Skipping chunk %q: %v", id, err)
			continue
		}
		matches = append(matches, core.Match{ID: id, Score: score, Text: text})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chunk rows: %w", err)
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
