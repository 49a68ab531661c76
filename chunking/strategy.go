package chunking

import (
	"github.com/casedocsearch/ingest-be/types"
)

// Strategy converts one layout block into an ordered list of atomic
// chunks. chunkIndexStart is the running atomic index on the current page;
// the caller advances it by the number of chunks returned. Implementations
// must never return a chunk with empty or whitespace-only text.
type Strategy interface {
	Chunk(
		block *types.LayoutBlock,
		pageNumber int,
		meta types.DocumentMetadata,
		chunkIndexStart int,
		raw *types.AnalysisPayload,
	) ([]types.AtomicChunk, error)
}

// rawPayloadRequirer is implemented by strategies that cannot deliver
// their full behaviour without the raw analysis payload attached.
type rawPayloadRequirer interface {
	NeedsRawPayload() bool
}

// newAtomicChunk builds an atomic chunk for a block, combining the given
// boxes and falling back to the block's own box when none were collected.
func newAtomicChunk(
	text string,
	boxes []types.BoundingBox,
	block *types.LayoutBlock,
	pageNumber, chunkIndex int,
) types.AtomicChunk {
	return types.AtomicChunk{
		Text:       text,
		BBox:       types.CombineOrFallback(boxes, block.BBox),
		LayoutType: block.Type,
		Confidence: block.Confidence,
		PageNumber: pageNumber,
		ChunkIndex: chunkIndex,
	}
}
