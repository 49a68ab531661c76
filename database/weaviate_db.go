package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/weaviate/weaviate-go-client/v4/weaviate"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/auth"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/filters"
	"github.com/weaviate/weaviate-go-client/v4/weaviate/graphql"
	"github.com/weaviate/weaviate/entities/models"

	"github.com/casedocsearch/ingest-be/config"
	"github.com/casedocsearch/ingest-be/types"
	"github.com/casedocsearch/ingest-be/utils"
)

const BATCH_SIZE = 200

var (
	CHUNK_CLASS        = "DocumentChunk"
	CHUNK_CLASS_OBJECT = &models.Class{
		Class: CHUNK_CLASS,
		Properties: []*models.Property{
			{Name: "chunk_id", DataType: []string{"text"}},
			{Name: "document_id", DataType: []string{"text"}},
			{Name: "chunk_text", DataType: []string{"text"}},
			{Name: "chunk_type", DataType: []string{"text"}},
			{Name: "confidence", DataType: []string{"number"}},
			{Name: "page_number", DataType: []string{"int"}},
			{Name: "chunk_index", DataType: []string{"int"}},
			{Name: "page_count", DataType: []string{"int"}},
			{Name: "case_ref", DataType: []string{"text"}},
			{Name: "received_date", DataType: []string{"text"}},
			{Name: "correspondence_type", DataType: []string{"text"}},
			{Name: "source_file_name", DataType: []string{"text"}},
			{Name: "character_count", DataType: []string{"int"}},
			{Name: "word_count", DataType: []string{"int"}},
			{Name: "bbox_left", DataType: []string{"number"}},
			{Name: "bbox_top", DataType: []string{"number"}},
			{Name: "bbox_width", DataType: []string{"number"}},
			{Name: "bbox_height", DataType: []string{"number"}},
		},
		// Vectors are supplied by the embedding provider, never computed
		// inside the index.
		Vectorizer:      "none",
		VectorIndexType: "hnsw",
	}
)

// ChunkStore persists chunks and their embeddings in a weaviate class and
// answers nearest-vector queries over them. Object ids are deterministic
// UUIDs derived from each chunk's chunk_id, so re-indexing a document
// overwrites its previous objects instead of duplicating them.
type ChunkStore struct {
	client    *weaviate.Client
	namespace uuid.UUID
}

func NewChunkStore(config config.WeaviateConfig, namespace uuid.UUID) (*ChunkStore, error) {
	var scheme string
	if strings.Contains(config.Host, "https") {
		scheme = "https"
	} else {
		scheme = "http"
	}
	host := strings.TrimPrefix(config.Host, scheme+"://")
	cfg := weaviate.Config{
		Host:   host,
		Scheme: scheme,
	}
	if config.APIKey != "" {
		cfg.AuthConfig = auth.ApiKey{
			Value: config.APIKey,
		}
		cfg.Headers = map[string]string{
			"X-Weaviate-Api-Key":     config.APIKey,
			"X-Weaviate-Cluster-Url": fmt.Sprintf("%s://%s", scheme, host),
		}
	}
	client, err := weaviate.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create weaviate client: %v", err)
	}

	schema, err := client.Schema().Getter().Do(context.Background())
	if err != nil {
		return nil, fmt.Errorf("failed to get schema: %v", err)
	}

	hasChunkClass := false
	for _, class := range schema.Classes {
		if class.Class == CHUNK_CLASS {
			hasChunkClass = true
			break
		}
	}
	// Create DocumentChunk class if it doesn't exist
	if !hasChunkClass {
		err = client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
		if err != nil {
			return nil, fmt.Errorf("failed to create DocumentChunk class: %v", err)
		}
	}
	return &ChunkStore{
		client:    client,
		namespace: namespace,
	}, nil
}

// ReInit drops and recreates the chunk class, wiping all indexed chunks.
func (s *ChunkStore) ReInit() error {
	err := s.client.Schema().ClassDeleter().WithClassName(CHUNK_CLASS).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to delete DocumentChunk class: %v", err)
	}

	err = s.client.Schema().ClassCreator().WithClass(CHUNK_CLASS_OBJECT).Do(context.Background())
	if err != nil {
		return fmt.Errorf("failed to create DocumentChunk class: %v", err)
	}
	return nil
}

// IndexDocument replaces a document's chunks in the index. Existing chunks
// for the same document id are deleted first so a shrunken re-ingest never
// leaves stale objects behind.
func (s *ChunkStore) IndexDocument(ctx context.Context, documentID string, chunks []types.Chunk) error {
	if err := s.DeleteByDocumentID(ctx, documentID); err != nil {
		return fmt.Errorf("failed to clear previous chunks for document %s: %v", documentID, err)
	}

	total := len(chunks)
	for i := 0; i < total; i += BATCH_SIZE {
		end := i + BATCH_SIZE
		if end > total {
			end = total
		}

		batcher := s.client.Batch().ObjectsBatcher()
		for j := i; j < end; j++ {
			batcher = batcher.WithObjects(s.chunkObject(&chunks[j]))
		}

		resp, err := batcher.Do(ctx)
		if err != nil {
			return fmt.Errorf("failed to insert batch %d-%d: %v", i, end, err)
		}
		for _, obj := range resp {
			if obj.Result != nil && obj.Result.Errors != nil && len(obj.Result.Errors.Error) > 0 {
				return fmt.Errorf("failed to insert object %s: %s", obj.ID, obj.Result.Errors.Error[0].Message)
			}
		}

		log.Info().
			Str("document_id", documentID).
			Int("from", i).
			Int("to", end).
			Int("total", total).
			Msg("inserted chunk batch")
	}

	return nil
}

func (s *ChunkStore) chunkObject(chunk *types.Chunk) *models.Object {
	properties := map[string]interface{}{
		"chunk_id":            chunk.ChunkID,
		"document_id":         chunk.DocumentID,
		"chunk_text":          chunk.Text,
		"chunk_type":          string(chunk.LayoutType),
		"confidence":          chunk.Confidence,
		"page_number":         chunk.PageNumber,
		"chunk_index":         chunk.ChunkIndex,
		"page_count":          chunk.PageCount,
		"case_ref":            chunk.CaseRef,
		"received_date":       chunk.ReceivedDate,
		"correspondence_type": chunk.CorrespondenceType,
		"source_file_name":    chunk.SourceFileName,
		"character_count":     chunk.CharacterCount,
		"word_count":          chunk.WordCount,
		"bbox_left":           chunk.BBox.Left,
		"bbox_top":            chunk.BBox.Top,
		"bbox_width":          chunk.BBox.Width,
		"bbox_height":         chunk.BBox.Height,
	}

	obj := &models.Object{
		Class:      CHUNK_CLASS,
		ID:         strfmt.UUID(utils.ChunkUUID(s.namespace, chunk.ChunkID)),
		Properties: properties,
	}
	if chunk.Embedding != nil {
		obj.Vector = chunk.Embedding
	}
	return obj
}

// DeleteByDocumentID removes every indexed chunk belonging to the document.
func (s *ChunkStore) DeleteByDocumentID(ctx context.Context, documentID string) error {
	where := filters.Where().
		WithPath([]string{"document_id"}).
		WithOperator(filters.Equal).
		WithValueText(documentID)

	resp, err := s.client.Batch().ObjectsBatchDeleter().
		WithClassName(CHUNK_CLASS).
		WithWhere(where).
		Do(ctx)
	if err != nil {
		return err
	}
	if resp != nil && resp.Results != nil {
		log.Debug().
			Str("document_id", documentID).
			Int64("deleted", resp.Results.Successful).
			Msg("deleted previous chunks")
	}
	return nil
}

// SearchSimilar runs a nearest-vector query over the indexed chunks,
// optionally restricted to one case reference.
func (s *ChunkStore) SearchSimilar(ctx context.Context, vector []float32, caseRef string, limit int) ([]types.SearchHit, error) {
	fields := []graphql.Field{
		{Name: "chunk_id"},
		{Name: "document_id"},
		{Name: "chunk_text"},
		{Name: "chunk_type"},
		{Name: "confidence"},
		{Name: "page_number"},
		{Name: "chunk_index"},
		{Name: "page_count"},
		{Name: "case_ref"},
		{Name: "received_date"},
		{Name: "correspondence_type"},
		{Name: "source_file_name"},
		{Name: "character_count"},
		{Name: "word_count"},
		{Name: "bbox_left"},
		{Name: "bbox_top"},
		{Name: "bbox_width"},
		{Name: "bbox_height"},
		{Name: "_additional", Fields: []graphql.Field{{Name: "distance"}, {Name: "id"}}},
	}

	nearVector := s.client.GraphQL().NearVectorArgBuilder().WithVector(vector)

	getBuilder := s.client.GraphQL().Get().
		WithClassName(CHUNK_CLASS).
		WithFields(fields...).
		WithNearVector(nearVector)
	if limit > 0 {
		getBuilder = getBuilder.WithLimit(limit)
	}
	if caseRef != "" {
		getBuilder = getBuilder.WithWhere(filters.Where().
			WithPath([]string{"case_ref"}).
			WithOperator(filters.Equal).
			WithValueText(caseRef))
	}

	result, err := getBuilder.Do(ctx)
	if err != nil {
		return nil, err
	}
	if result.Errors != nil {
		return nil, fmt.Errorf("search failed: %v", result.Errors[0].Message)
	}

	var hits []types.SearchHit
	if data, ok := result.Data["Get"].(map[string]interface{})[CHUNK_CLASS].([]interface{}); ok {
		for _, item := range data {
			obj, ok := item.(map[string]interface{})
			if !ok {
				continue
			}

			hit := types.SearchHit{
				Chunk: types.Chunk{
					ChunkID:            getString(obj, "chunk_id"),
					DocumentID:         getString(obj, "document_id"),
					Text:               getString(obj, "chunk_text"),
					LayoutType:         types.LayoutType(getString(obj, "chunk_type")),
					Confidence:         getFloat(obj, "confidence"),
					PageNumber:         getInt(obj, "page_number"),
					ChunkIndex:         getInt(obj, "chunk_index"),
					PageCount:          getInt(obj, "page_count"),
					CaseRef:            getString(obj, "case_ref"),
					ReceivedDate:       getString(obj, "received_date"),
					CorrespondenceType: getString(obj, "correspondence_type"),
					SourceFileName:     getString(obj, "source_file_name"),
					CharacterCount:     getInt(obj, "character_count"),
					WordCount:          getInt(obj, "word_count"),
					BBox: types.BoundingBox{
						Left:   getFloat(obj, "bbox_left"),
						Top:    getFloat(obj, "bbox_top"),
						Width:  getFloat(obj, "bbox_width"),
						Height: getFloat(obj, "bbox_height"),
					},
				},
			}

			if additional, ok := obj["_additional"].(map[string]interface{}); ok {
				if distance, ok := additional["distance"].(float64); ok {
					hit.Distance = float32(distance)
				}
			}

			hits = append(hits, hit)
		}
	}

	return hits, nil
}

// Helper functions
func getString(obj map[string]interface{}, key string) string {
	if v, ok := obj[key].(string); ok {
		return v
	}
	return ""
}

func getFloat(obj map[string]interface{}, key string) float64 {
	if v, ok := obj[key].(float64); ok {
		return v
	}
	return 0
}

func getInt(obj map[string]interface{}, key string) int {
	if v, ok := obj[key].(float64); ok {
		return int(v)
	}
	return 0
}
