package types

import (
	"fmt"
	"strings"
)

// AtomicChunk is the smallest chunk unit produced directly by a chunking
// strategy, before merging. Atomic chunks live only within a single page's
// processing and are never exposed outside the chunking engine.
type AtomicChunk struct {
	Text       string
	BBox       BoundingBox
	LayoutType LayoutType
	Confidence float64
	PageNumber int
	ChunkIndex int
}

// WordCount returns the whitespace-separated word count of the chunk text.
func (c AtomicChunk) WordCount() int {
	return len(strings.Fields(c.Text))
}

// Chunk is the merged, externally consumed unit of text handed to the
// embedding generator and the search index. ChunkIndex is page-local
// (reset to zero for every page); global uniqueness comes from ChunkID,
// which is derived from (document_id, page_number, chunk_index).
type Chunk struct {
	ChunkID            string      `json:"chunk_id"`
	DocumentID         string      `json:"document_id"`
	Text               string      `json:"chunk_text"`
	BBox               BoundingBox `json:"bounding_box"`
	LayoutType         LayoutType  `json:"chunk_type"`
	Confidence         float64     `json:"confidence"`
	PageNumber         int         `json:"page_number"`
	ChunkIndex         int         `json:"chunk_index"`
	PageCount          int         `json:"page_count"`
	CaseRef            string      `json:"case_ref,omitempty"`
	ReceivedDate       string      `json:"received_date,omitempty"`
	CorrespondenceType string      `json:"correspondence_type,omitempty"`
	SourceFileName     string      `json:"source_file_name"`
	CharacterCount     int         `json:"character_count"`
	WordCount          int         `json:"word_count"`
	Embedding          []float32   `json:"embedding,omitempty"`
}

// ChunkID derives the globally unique chunk identifier from the document,
// page and page-local index.
func ChunkID(documentID string, pageNumber, chunkIndex int) string {
	return fmt.Sprintf("%s_p%d_c%d", documentID, pageNumber, chunkIndex)
}

// NewChunk builds a final chunk. Character and word counts are computed
// here from the text and never mutated afterwards.
func NewChunk(
	meta DocumentMetadata,
	text string,
	bbox BoundingBox,
	layoutType LayoutType,
	confidence float64,
	pageNumber, chunkIndex int,
) Chunk {
	return Chunk{
		ChunkID:            ChunkID(meta.DocumentID, pageNumber, chunkIndex),
		DocumentID:         meta.DocumentID,
		Text:               text,
		BBox:               bbox,
		LayoutType:         layoutType,
		Confidence:         confidence,
		PageNumber:         pageNumber,
		ChunkIndex:         chunkIndex,
		PageCount:          meta.PageCount,
		CaseRef:            meta.CaseRef,
		ReceivedDate:       meta.ReceivedDate,
		CorrespondenceType: meta.CorrespondenceType,
		SourceFileName:     meta.SourceFileName,
		CharacterCount:     len(text),
		WordCount:          len(strings.Fields(text)),
	}
}
