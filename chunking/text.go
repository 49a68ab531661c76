package chunking

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/types"
)

// TextStrategy chunks free-text blocks (paragraphs, headers, titles,
// section headers, footers) by greedily accumulating consecutive child
// lines while the joined text stays within the character budget. A single
// line longer than the budget becomes a chunk of its own; lines are never
// split and never dropped.
type TextStrategy struct {
	maximumChunkSize int
}

func NewTextStrategy(cfg Config) *TextStrategy {
	return &TextStrategy{maximumChunkSize: cfg.MaximumChunkSize}
}

func (s *TextStrategy) Chunk(
	block *types.LayoutBlock,
	pageNumber int,
	meta types.DocumentMetadata,
	chunkIndexStart int,
	raw *types.AnalysisPayload,
) ([]types.AtomicChunk, error) {
	var chunks []types.AtomicChunk
	chunkIndex := chunkIndexStart

	var lines []string
	var boxes []types.BoundingBox

	for _, child := range block.Children {
		line, ok := child.(*types.Line)
		if !ok {
			log.Debug().
				Str("block_id", block.ID).
				Str("block_type", string(block.Type)).
				Msgf("ignoring non-line child %T in text block", child)
			continue
		}

		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}

		if s.wouldExceedSizeLimit(lines, text) && len(lines) > 0 {
			chunks = append(chunks, newAtomicChunk(strings.Join(lines, " "), boxes, block, pageNumber, chunkIndex))
			chunkIndex++
			lines = nil
			boxes = nil
		}

		lines = append(lines, text)
		boxes = append(boxes, line.BBox)
	}

	if len(lines) > 0 {
		chunks = append(chunks, newAtomicChunk(strings.Join(lines, " "), boxes, block, pageNumber, chunkIndex))
	}

	return chunks, nil
}

// wouldExceedSizeLimit reports whether appending newLine to the current
// accumulation would push the joined text past the character budget.
func (s *TextStrategy) wouldExceedSizeLimit(current []string, newLine string) bool {
	if len(current) == 0 {
		return len(newLine) > s.maximumChunkSize
	}
	combined := strings.Join(current, " ") + " " + newLine
	return len(combined) > s.maximumChunkSize
}
