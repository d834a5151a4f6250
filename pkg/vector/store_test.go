package vector

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAddValidatesLengths(t *testing.T) {
	store, err := NewStore(8)
	require.NoError(t, err)

	err = store.Add([]string{"a"}, [][]float64{}, []map[string]string{})
	require.Error(t, err)

	err = store.Add([]string{"a"}, [][]float64{{1, 2}}, []map[string]string{{"source": "x"}})
	require.Error(t, err, "dimension mismatch must be rejected")
}

func TestStoreSearchRanksByCosineDistance(t *testing.T) {
	embedder := NewHashingEmbedder(64)
	store, err := NewStore(embedder.Dim())
	require.NoError(t, err)

	texts := []string{
		"fractions and decimals lesson",
		"photosynthesis in plants",
		"introduction to fractions",
	}
	metas := []map[string]string{
		{"source": "math.txt"},
		{"source": "bio.txt"},
		{"source": "math2.txt"},
	}
	require.NoError(t, store.Add(texts, embedder.EmbedBatch(texts), metas))
	require.Equal(t, 3, store.Count())

	results, err := store.Search(embedder.Embed("fractions"), 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Document, "fractions")
	assert.Less(t, results[0].Distance, results[1].Distance+1e-9)
}

func TestStoreSearchEmptyIndex(t *testing.T) {
	embedder := NewHashingEmbedder(16)
	store, err := NewStore(16)
	require.NoError(t, err)

	results, err := store.Search(embedder.Embed("anything"), 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestHashingEmbedderDeterministic(t *testing.T) {
	embedder := NewHashingEmbedder(32)
	a := embedder.Embed("Weekly Topic Plan")
	b := embedder.Embed("weekly topic plan")
	assert.Equal(t, a, b, "tokenisation is case-insensitive")
}
