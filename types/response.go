package types

// DataResponse is the common envelope for JSON responses.
type DataResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// SearchHit is one chunk returned from the search index, with its match
// distance.
type SearchHit struct {
	Chunk    Chunk   `json:"chunk"`
	Distance float32 `json:"distance"`
}

// SearchResponse wraps the hits for a search request.
type SearchResponse struct {
	Hits []SearchHit `json:"hits"`
}

// Ingest pipeline stages reported over the status channel.
const (
	IngestStageAnalyzing = "analyzing"
	IngestStageChunking  = "chunking"
	IngestStageEmbedding = "embedding"
	IngestStageIndexing  = "indexing"
	IngestStageCompleted = "completed"
	IngestStageFailed    = "failed"
)

// IngestStatus is a progress update emitted while a document moves through
// the ingestion pipeline.
type IngestStatus struct {
	DocumentID string  `json:"document_id,omitempty"`
	Stage      string  `json:"stage"`
	Message    string  `json:"message,omitempty"`
	Progress   float64 `json:"progress,omitempty"`
	ChunkCount int     `json:"chunk_count,omitempty"`
	PageCount  int     `json:"page_count,omitempty"`
}
