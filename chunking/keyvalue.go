package chunking

import (
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/types"
)

// KeyValueStrategy chunks mixed key-value blocks: each form pair becomes a
// "<key>: <value>" chunk and each standalone line becomes its own chunk.
// Unrecognized children are skipped with a warning; unlike tables, this
// block type is deliberately lenient.
type KeyValueStrategy struct{}

func NewKeyValueStrategy() *KeyValueStrategy {
	return &KeyValueStrategy{}
}

func (s *KeyValueStrategy) Chunk(
	block *types.LayoutBlock,
	pageNumber int,
	meta types.DocumentMetadata,
	chunkIndexStart int,
	raw *types.AnalysisPayload,
) ([]types.AtomicChunk, error) {
	var chunks []types.AtomicChunk

	for _, child := range block.Children {
		switch c := child.(type) {
		case *types.KeyValuePair:
			if len(c.KeyWords) == 0 || c.ValueText == "" {
				continue
			}
			keyText := strings.TrimRight(strings.TrimSpace(strings.Join(c.KeyWords, " ")), ": ")
			valueText := strings.TrimSpace(c.ValueText)
			text := keyText + ": " + valueText

			chunks = append(chunks, newAtomicChunk(
				text,
				[]types.BoundingBox{c.BBox},
				block,
				pageNumber,
				chunkIndexStart+len(chunks),
			))

		case *types.Line:
			text := strings.TrimSpace(c.Text)
			if text == "" {
				continue
			}
			chunks = append(chunks, newAtomicChunk(
				text,
				[]types.BoundingBox{c.BBox},
				block,
				pageNumber,
				chunkIndexStart+len(chunks),
			))

		default:
			log.Warn().
				Str("block_id", block.ID).
				Msgf("skipping unexpected child of type %T in key-value block", child)
		}
	}

	log.Debug().Str("block_id", block.ID).Int("chunks", len(chunks)).Msg("chunked key-value block")
	return chunks, nil
}
