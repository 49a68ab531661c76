package service

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/chunking"
	"github.com/casedocsearch/ingest-be/database"
	"github.com/casedocsearch/ingest-be/types"
	"github.com/casedocsearch/ingest-be/utils"
)

// Chunk texts sent to the embedding provider per request.
const embedBatchSize = 100

// IngestService runs the full ingestion pipeline for one document: layout
// analysis, parsing, chunking, embedding and indexing. Progress is
// reported through an optional status channel so callers can stream it to
// a client.
type IngestService struct {
	uploadDir string
	analysis  *AnalysisService
	chunker   *chunking.DocumentChunker
	embedder  Embedder
	store     *database.ChunkStore
	namespace uuid.UUID
}

func NewIngestService(
	uploadDir string,
	analysis *AnalysisService,
	chunker *chunking.DocumentChunker,
	embedder Embedder,
	store *database.ChunkStore,
	namespace uuid.UUID,
) *IngestService {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		panic(err)
	}
	return &IngestService{
		uploadDir: uploadDir,
		analysis:  analysis,
		chunker:   chunker,
		embedder:  embedder,
		store:     store,
		namespace: namespace,
	}
}

// SaveUpload stores an uploaded file under the upload directory with a
// sanitized, timestamped name and returns the stored path.
func (s *IngestService) SaveUpload(file *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !supportedExtension(ext) {
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	originalName := strings.TrimSuffix(file.Filename, ext)
	timestamp := time.Now().Unix()
	filename := fmt.Sprintf("%s_%d%s", originalName, timestamp, ext)

	filename = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, filename)

	path := filepath.Join(s.uploadDir, filename)
	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err = io.Copy(dst, src); err != nil {
		return "", err
	}
	return path, nil
}

func supportedExtension(ext string) bool {
	switch ext {
	case ".pdf", ".png", ".jpg", ".jpeg", ".tiff":
		return true
	}
	return false
}

// IngestFile runs the pipeline on a file stored on disk. The status channel
// may be nil; when provided it receives stage updates but is never closed
// by this method.
func (s *IngestService) IngestFile(
	ctx context.Context,
	filePath string,
	req types.IngestRequest,
	statusChan chan<- types.IngestStatus,
) (*types.ProcessedDocument, error) {
	emitStatus(statusChan, types.IngestStatus{
		Stage:   types.IngestStageAnalyzing,
		Message: "analyzing document layout",
	})

	payload, err := s.analysis.Analyze(ctx, filePath)
	if err != nil {
		emitStatus(statusChan, types.IngestStatus{Stage: types.IngestStageFailed, Message: err.Error()})
		return nil, err
	}

	return s.IngestPayload(ctx, payload, req, statusChan)
}

// IngestPayload runs the pipeline on an already-analyzed raw payload, e.g.
// one loaded from disk for offline reprocessing.
func (s *IngestService) IngestPayload(
	ctx context.Context,
	payload *types.AnalysisPayload,
	req types.IngestRequest,
	statusChan chan<- types.IngestStatus,
) (*types.ProcessedDocument, error) {
	doc, err := ParseAnalysisPayload(payload)
	if err != nil {
		emitStatus(statusChan, types.IngestStatus{Stage: types.IngestStageFailed, Message: err.Error()})
		return nil, err
	}

	meta := s.buildMetadata(req, payload, doc)
	log.Info().
		Str("document_id", meta.DocumentID).
		Str("file", meta.SourceFileName).
		Int("pages", meta.PageCount).
		Msg("ingesting document")

	emitStatus(statusChan, types.IngestStatus{
		DocumentID: meta.DocumentID,
		Stage:      types.IngestStageChunking,
		Message:    "segmenting document into chunks",
		PageCount:  meta.PageCount,
	})

	processed, err := s.chunker.Chunk(doc, meta, payload)
	if err != nil {
		emitStatus(statusChan, types.IngestStatus{
			DocumentID: meta.DocumentID,
			Stage:      types.IngestStageFailed,
			Message:    err.Error(),
		})
		return nil, err
	}

	if err := s.embedChunks(ctx, processed.Chunks, meta.DocumentID, statusChan); err != nil {
		emitStatus(statusChan, types.IngestStatus{
			DocumentID: meta.DocumentID,
			Stage:      types.IngestStageFailed,
			Message:    err.Error(),
		})
		return nil, err
	}

	emitStatus(statusChan, types.IngestStatus{
		DocumentID: meta.DocumentID,
		Stage:      types.IngestStageIndexing,
		Message:    "writing chunks to the search index",
		ChunkCount: len(processed.Chunks),
		PageCount:  meta.PageCount,
	})

	if err := s.store.IndexDocument(ctx, meta.DocumentID, processed.Chunks); err != nil {
		emitStatus(statusChan, types.IngestStatus{
			DocumentID: meta.DocumentID,
			Stage:      types.IngestStageFailed,
			Message:    err.Error(),
		})
		return nil, err
	}

	emitStatus(statusChan, types.IngestStatus{
		DocumentID: meta.DocumentID,
		Stage:      types.IngestStageCompleted,
		Message:    "document ingested",
		Progress:   1,
		ChunkCount: len(processed.Chunks),
		PageCount:  meta.PageCount,
	})

	return processed, nil
}

// buildMetadata derives the document identity from the request. The
// document id is a deterministic UUID of the natural key, so re-ingesting
// the same file replaces its chunks instead of duplicating them.
func (s *IngestService) buildMetadata(
	req types.IngestRequest,
	payload *types.AnalysisPayload,
	doc *types.Document,
) types.DocumentMetadata {
	pageCount := payload.DocumentMetadata.Pages
	if pageCount == 0 {
		pageCount = len(doc.Pages)
	}

	return types.DocumentMetadata{
		DocumentID:         utils.DocumentUUID(s.namespace, req.SourceFileName, req.CorrespondenceType, req.CaseRef, -1),
		SourceFileName:     req.SourceFileName,
		PageCount:          pageCount,
		CaseRef:            req.CaseRef,
		ReceivedDate:       req.ReceivedDate,
		CorrespondenceType: req.CorrespondenceType,
	}
}

// embedChunks fills in each chunk's embedding in place, batching requests
// to the provider.
func (s *IngestService) embedChunks(
	ctx context.Context,
	chunks []types.Chunk,
	documentID string,
	statusChan chan<- types.IngestStatus,
) error {
	total := len(chunks)
	for i := 0; i < total; i += embedBatchSize {
		end := i + embedBatchSize
		if end > total {
			end = total
		}

		texts := make([]string, 0, end-i)
		for j := i; j < end; j++ {
			texts = append(texts, chunks[j].Text)
		}

		emitStatus(statusChan, types.IngestStatus{
			DocumentID: documentID,
			Stage:      types.IngestStageEmbedding,
			Message:    "generating embeddings",
			Progress:   float64(i) / float64(total),
			ChunkCount: total,
		})

		vectors, err := s.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("failed to embed chunks %d-%d: %w", i, end, err)
		}
		if len(vectors) != len(texts) {
			return fmt.Errorf("embedding batch %d-%d returned %d vectors for %d texts", i, end, len(vectors), len(texts))
		}

		for j := i; j < end; j++ {
			chunks[j].Embedding = vectors[j-i]
		}
	}
	return nil
}

// EmbedQuery embeds a single search query with the same provider used for
// chunks.
func (s *IngestService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	vectors, err := s.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, err
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("expected one query vector, got %d", len(vectors))
	}
	return vectors[0], nil
}

func emitStatus(c chan<- types.IngestStatus, status types.IngestStatus) {
	if c == nil {
		return
	}
	c <- status
}
