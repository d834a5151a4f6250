package vector

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// Entry is a stored chunk with its embedding.
type Entry struct {
	ID       string
	Document string
	Vector   []float64
	Metadata map[string]string
}

// SearchResult is a single similarity match.
type SearchResult struct {
	Document string            `json:"document"`
	Metadata map[string]string `json:"metadata"`
	Distance float64           `json:"distance"`
}

// Store is an in-memory embedding index searched by cosine distance.
type Store struct {
	mu      sync.RWMutex
	dim     int
	entries []Entry
}

// NewStore builds an empty index for vectors of the given dimension.
func NewStore(dim int) (*Store, error) {
	if dim <= 0 {
		return nil, fmt.Errorf("embedding dimension must be positive")
	}
	return &Store{dim: dim}, nil
}

// Add appends documents with their embeddings and metadata.
func (s *Store) Add(texts []string, vectors [][]float64, metadatas []map[string]string) error {
	if len(texts) != len(vectors) || len(texts) != len(metadatas) {
		return fmt.Errorf("texts, vectors and metadatas must have equal length")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, text := range texts {
		if len(vectors[i]) != s.dim {
			return fmt.Errorf("vector %d has dimension %d, want %d", i, len(vectors[i]), s.dim)
		}
		s.entries = append(s.entries, Entry{
			ID:       fmt.Sprintf("doc_%d", len(s.entries)),
			Document: text,
			Vector:   vectors[i],
			Metadata: metadatas[i],
		})
	}
	return nil
}

// Search returns up to k entries closest to the query vector.
func (s *Store) Search(query []float64, k int) ([]SearchResult, error) {
	if len(query) != s.dim {
		return nil, fmt.Errorf("query has dimension %d, want %d", len(query), s.dim)
	}
	if k <= 0 {
		k = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) == 0 {
		return nil, nil
	}

	results := make([]SearchResult, 0, len(s.entries))
	for _, entry := range s.entries {
		results = append(results, SearchResult{
			Document: entry.Document,
			Metadata: entry.Metadata,
			Distance: cosineDistance(query, entry.Vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Distance < results[j].Distance })
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Count reports how many chunks are stored.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func cosineDistance(a, b []float64) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
