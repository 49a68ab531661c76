package chunking

import (
	"math"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/types"
)

// ChunkMerger greedily regroups a page's atomic chunks into final chunks
// bounded by a word budget and spatial contiguity. It reduces
// fragmentation from many small atomic chunks without merging across
// unrelated regions of the page (e.g. two columns). The merger never
// splits a chunk, only groups them, so a single oversized chunk passes
// through on its own.
type ChunkMerger struct {
	wordLimit      int
	maxVerticalGap float64
}

// NewChunkMerger builds a merger with the given word budget and maximum
// absolute vertical distance, in normalized page units, between the bottom
// of one chunk and the top of the next.
func NewChunkMerger(wordLimit int, maxVerticalGap float64) *ChunkMerger {
	return &ChunkMerger{wordLimit: wordLimit, maxVerticalGap: maxVerticalGap}
}

// Merge folds the atomic chunks, assumed to be in reading order, into
// merged chunks. ChunkIndex restarts at zero for every invocation, so the
// indexes it assigns are page-local.
func (m *ChunkMerger) Merge(atomic []types.AtomicChunk, meta types.DocumentMetadata) []types.Chunk {
	if len(atomic) == 0 {
		return nil
	}

	var merged []types.Chunk
	var buffer []types.AtomicChunk
	bufferWords := 0
	currentPage := atomic[0].PageNumber
	chunkIndex := 0

	for _, chunk := range atomic {
		words := chunk.WordCount()

		shouldFlush := false
		if len(buffer) > 0 {
			last := buffer[len(buffer)-1]
			switch {
			case chunk.PageNumber != currentPage:
				shouldFlush = true
			case bufferWords+words > m.wordLimit:
				shouldFlush = true
			default:
				// The absolute value catches both a large gap downward and
				// a jump back up to the top of a new column or region.
				gap := chunk.BBox.Top - last.BBox.Bottom()
				if math.Abs(gap) > m.maxVerticalGap {
					shouldFlush = true
				}
			}
		}

		if shouldFlush {
			merged = append(merged, m.mergeBuffer(buffer, meta, chunkIndex))
			chunkIndex++
			buffer = nil
			bufferWords = 0
		}

		if chunk.PageNumber != currentPage {
			currentPage = chunk.PageNumber
		}

		buffer = append(buffer, chunk)
		bufferWords += words
	}

	if len(buffer) > 0 {
		merged = append(merged, m.mergeBuffer(buffer, meta, chunkIndex))
	}

	log.Debug().
		Int("atomic", len(atomic)).
		Int("merged", len(merged)).
		Int("word_limit", m.wordLimit).
		Float64("max_vertical_gap", m.maxVerticalGap).
		Msg("grouped atomic chunks into page-level chunks")

	return merged
}

// mergeBuffer combines the buffered chunks into one final chunk. Layout
// type, confidence and page number are taken from the first buffered chunk
// as an approximation; they are not recomputed across the group.
func (m *ChunkMerger) mergeBuffer(buffer []types.AtomicChunk, meta types.DocumentMetadata, chunkIndex int) types.Chunk {
	texts := make([]string, len(buffer))
	boxes := make([]types.BoundingBox, len(buffer))
	for i, c := range buffer {
		texts[i] = c.Text
		boxes[i] = c.BBox
	}

	text := strings.TrimSpace(strings.Join(texts, " "))
	bbox := types.CombineOrFallback(boxes, buffer[0].BBox)
	first := buffer[0]

	return types.NewChunk(meta, text, bbox, first.LayoutType, first.Confidence, first.PageNumber, chunkIndex)
}
