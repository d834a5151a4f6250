package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lessonforge/planner-api/internal/dto"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
	"github.com/lessonforge/planner-api/pkg/vector"
)

func newIngestFixture(t *testing.T) *IngestService {
	store, err := vector.NewStore(64)
	require.NoError(t, err)
	return NewIngestService(
		vector.NewHashingEmbedder(64),
		store,
		nil,
		IngestConfig{ChunkSize: 10, ChunkOverlap: 2},
		nil, nil,
	)
}

func TestIngestIndexesSupportedDocuments(t *testing.T) {
	svc := newIngestFixture(t)

	resp, err := svc.Ingest(context.Background(), []IngestFile{
		{Name: "fractions.txt", Content: []byte("fractions are parts of a whole number divided into equal pieces")},
		{Name: "diagram.png", Content: []byte{0x89, 0x50}},
		{Name: "blank.md", Content: []byte("   \n  ")},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.DocumentsIngested)
	assert.Equal(t, []string{"diagram.png"}, resp.UnsupportedFiles)
	assert.Equal(t, []string{"blank.md"}, resp.EmptyDocuments)
	assert.Greater(t, resp.ChunksCreated, 0)
}

func TestIngestChunksOverlap(t *testing.T) {
	words := make([]string, 25)
	for i := range words {
		words[i] = "w"
	}
	chunks := chunkWords(strings.Join(words, " "), 10, 2)
	// Step of 8 over 25 words: [0,10) [8,18) [16,25)
	require.Len(t, chunks, 3)
	assert.Len(t, strings.Fields(chunks[0]), 10)
	assert.Len(t, strings.Fields(chunks[2]), 9)
}

func TestIngestRejectsEmptyUpload(t *testing.T) {
	svc := newIngestFixture(t)

	_, err := svc.Ingest(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDisabledServiceAnswersUnavailable(t *testing.T) {
	svc := NewIngestService(nil, nil, nil, IngestConfig{}, nil, nil)

	_, err := svc.Query(context.Background(), dto.QueryRequest{Query: "fractions"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrVectorUnavailable.Code, appErrors.FromError(err).Code)

	_, err = svc.Ingest(context.Background(), []IngestFile{{Name: "a.txt", Content: []byte("text")}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrVectorUnavailable.Code, appErrors.FromError(err).Code)
}

func TestQueryUnavailableWhenIndexEmpty(t *testing.T) {
	svc := newIngestFixture(t)

	_, err := svc.Query(context.Background(), dto.QueryRequest{Query: "fractions"})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrVectorUnavailable.Code, appErr.Code)
	assert.Equal(t, 503, appErr.Status)
}

func TestQueryReturnsRankedResults(t *testing.T) {
	svc := newIngestFixture(t)

	_, err := svc.Ingest(context.Background(), []IngestFile{
		{Name: "math.txt", Content: []byte("fractions and decimals lesson plan")},
		{Name: "history.txt", Content: []byte("the french revolution of seventeen eighty nine")},
	})
	require.NoError(t, err)

	resp, err := svc.Query(context.Background(), dto.QueryRequest{Query: "fractions decimals", NResults: 1})
	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Contains(t, resp.Results[0].Document, "fractions")
	assert.Equal(t, "math.txt", resp.Results[0].Metadata["source"])
}
