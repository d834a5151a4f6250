package vector

import (
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// HashingEmbedder produces deterministic bag-of-words embeddings by
// hashing tokens into a fixed number of buckets. It needs no model
// weights, which keeps ingestion self-contained and reproducible.
type HashingEmbedder struct {
	dim int
}

// NewHashingEmbedder builds an embedder emitting vectors of the given dimension.
func NewHashingEmbedder(dim int) *HashingEmbedder {
	if dim <= 0 {
		dim = 256
	}
	return &HashingEmbedder{dim: dim}
}

// Dim reports the embedding dimension.
func (e *HashingEmbedder) Dim() int {
	return e.dim
}

// Embed converts text into an L2-normalised term-frequency vector.
func (e *HashingEmbedder) Embed(text string) []float64 {
	vec := make([]float64, e.dim)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vec[int(h.Sum32())%e.dim]++
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec
}

// EmbedBatch embeds every text in order.
func (e *HashingEmbedder) EmbedBatch(texts []string) [][]float64 {
	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vectors[i] = e.Embed(text)
	}
	return vectors
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
