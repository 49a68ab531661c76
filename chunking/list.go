package chunking

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/types"
)

// ListStrategy chunks list blocks: each nested text sub-block becomes its
// own chunk, in original order. Anything else is skipped with a warning.
type ListStrategy struct{}

func NewListStrategy() *ListStrategy {
	return &ListStrategy{}
}

func (s *ListStrategy) Chunk(
	block *types.LayoutBlock,
	pageNumber int,
	meta types.DocumentMetadata,
	chunkIndexStart int,
	raw *types.AnalysisPayload,
) ([]types.AtomicChunk, error) {
	var chunks []types.AtomicChunk
	chunkIndex := chunkIndexStart

	for _, child := range block.Children {
		item, ok := child.(*types.LayoutBlock)
		if !ok || item.Type != types.LayoutText {
			log.Warn().
				Str("block_id", block.ID).
				Msgf("skipping unexpected list child of type %T in list block", child)
			continue
		}

		text := strings.TrimSpace(item.Text)
		if text == "" {
			continue
		}

		chunks = append(chunks, newAtomicChunk(
			text,
			[]types.BoundingBox{item.BBox},
			block,
			pageNumber,
			chunkIndex,
		))
		chunkIndex++
	}

	return chunks, nil
}
