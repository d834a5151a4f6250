package dto

import "github.com/lessonforge/planner-api/pkg/vector"

// IngestResponse summarises one ingestion run.
type IngestResponse struct {
	DocumentsIngested int      `json:"documents_ingested"`
	ChunksCreated     int      `json:"chunks_created"`
	UnsupportedFiles  []string `json:"unsupported_files,omitempty"`
	EmptyDocuments    []string `json:"empty_documents,omitempty"`
}

// QueryRequest asks the vector store for similar chunks.
type QueryRequest struct {
	Query    string `json:"query" validate:"required,min=1"`
	NResults int    `json:"n_results" validate:"omitempty,min=1,max=50"`
}

// QueryResponse carries ranked similarity matches.
type QueryResponse struct {
	Query   string                `json:"query"`
	Results []vector.SearchResult `json:"results"`
}
