package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lessonforge/planner-api/internal/dto"
	appErrors "github.com/lessonforge/planner-api/pkg/errors"
	"github.com/lessonforge/planner-api/pkg/vector"
)

type documentEmbedder interface {
	EmbedBatch(texts []string) [][]float64
	Dim() int
}

type vectorIndex interface {
	Add(texts []string, vectors [][]float64, metadatas []map[string]string) error
	Search(query []float64, k int) ([]vector.SearchResult, error)
	Count() int
}

type documentArchive interface {
	Save(name string, data []byte) (string, error)
}

// IngestFile is one uploaded document.
type IngestFile struct {
	Name    string
	Content []byte
}

// IngestConfig governs chunking and embedding.
type IngestConfig struct {
	ChunkSize    int
	ChunkOverlap int
}

// IngestService splits uploaded documents into overlapping word windows,
// embeds them and feeds the vector index backing topic search.
type IngestService struct {
	embedder  documentEmbedder
	index     vectorIndex
	archive   documentArchive
	cfg       IngestConfig
	validator *validator.Validate
	logger    *zap.Logger
}

// NewIngestService wires ingestion dependencies. The archive may be nil when
// uploads should not be kept on disk.
func NewIngestService(
	embedder documentEmbedder,
	index vectorIndex,
	archive documentArchive,
	cfg IngestConfig,
	validate *validator.Validate,
	logger *zap.Logger,
) *IngestService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 200
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = cfg.ChunkSize / 5
	}
	return &IngestService{
		embedder:  embedder,
		index:     index,
		archive:   archive,
		cfg:       cfg,
		validator: validate,
		logger:    logger,
	}
}

// Ingest chunks and indexes the given documents. Files with unsupported
// extensions and empty documents are skipped and reported, never fatal.
func (s *IngestService) Ingest(ctx context.Context, files []IngestFile) (*dto.IngestResponse, error) {
	if s.index == nil || s.embedder == nil {
		return nil, appErrors.Clone(appErrors.ErrVectorUnavailable, "vector store is not available")
	}
	if len(files) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "no files provided")
	}

	resp := &dto.IngestResponse{}
	var texts []string
	var metadatas []map[string]string

	for _, file := range files {
		if !supportedDocument(file.Name) {
			resp.UnsupportedFiles = append(resp.UnsupportedFiles, file.Name)
			continue
		}
		content := string(bytes.TrimSpace(file.Content))
		if content == "" {
			resp.EmptyDocuments = append(resp.EmptyDocuments, file.Name)
			continue
		}

		if s.archive != nil {
			if _, err := s.archive.Save(filepath.Base(file.Name), file.Content); err != nil {
				s.logger.Warn("failed to archive document", zap.String("file", file.Name), zap.Error(err))
			}
		}

		chunks := chunkWords(content, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
		for i, chunk := range chunks {
			texts = append(texts, chunk)
			metadatas = append(metadatas, map[string]string{
				"source":      filepath.Base(file.Name),
				"chunk_index": fmt.Sprintf("%d", i),
			})
		}
		resp.DocumentsIngested++
	}

	if len(texts) > 0 {
		vectors := s.embedder.EmbedBatch(texts)
		if err := s.index.Add(texts, vectors, metadatas); err != nil {
			return nil, fmt.Errorf("index chunks: %w", err)
		}
	}
	resp.ChunksCreated = len(texts)

	s.logger.Info("documents ingested",
		zap.Int("documents", resp.DocumentsIngested),
		zap.Int("chunks", resp.ChunksCreated),
		zap.Int("unsupported", len(resp.UnsupportedFiles)))
	return resp, nil
}

// Query embeds the query text and returns the nearest indexed chunks.
func (s *IngestService) Query(ctx context.Context, req dto.QueryRequest) (*dto.QueryResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	if s.index == nil || s.embedder == nil || s.index.Count() == 0 {
		return nil, appErrors.Clone(appErrors.ErrVectorUnavailable, "vector store is not available")
	}

	embedded := s.embedder.EmbedBatch([]string{req.Query})
	results, err := s.index.Search(embedded[0], req.NResults)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return &dto.QueryResponse{Query: req.Query, Results: results}, nil
}

func supportedDocument(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".txt", ".md":
		return true
	default:
		return false
	}
}

// chunkWords slides a fixed-size word window over the text, stepping by
// size minus overlap so adjacent chunks share context.
func chunkWords(text string, size, overlap int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= size {
		return []string{strings.Join(words, " ")}
	}
	step := size - overlap
	var chunks []string
	for start := 0; start < len(words); start += step {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
