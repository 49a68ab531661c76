package chunking

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/types"
)

// TableStrategy chunks table blocks. The analysis service expresses a
// table either as a grid of cells grouped under a table object, or as a
// bag of plain text lines with no cell structure; the first child decides
// which variant applies for the whole block.
type TableStrategy struct {
	cells cellTableChunker
	lines lineTableChunker
}

func NewTableStrategy(cfg Config) *TableStrategy {
	return &TableStrategy{
		cells: cellTableChunker{},
		lines: lineTableChunker{cfg: cfg},
	}
}

// NeedsRawPayload reports that the line variant relies on the raw analysis
// payload to repair lines dropped by the upstream parse.
func (s *TableStrategy) NeedsRawPayload() bool {
	return true
}

func (s *TableStrategy) Chunk(
	block *types.LayoutBlock,
	pageNumber int,
	meta types.DocumentMetadata,
	chunkIndexStart int,
	raw *types.AnalysisPayload,
) ([]types.AtomicChunk, error) {
	if len(block.Children) == 0 {
		// A table block with no content indicates a corrupt parse.
		return nil, newChunkErrorf(
			"table block %s (%s) has no children, this indicates a parsing error",
			block.ID, block.Type,
		)
	}

	switch block.Children[0].(type) {
	case *types.Table:
		log.Debug().Str("block_id", block.ID).Msg("chunking cell-structured table")
		return s.cells.chunk(block, pageNumber, chunkIndexStart)
	case *types.Line:
		log.Debug().Str("block_id", block.ID).Msg("chunking line-structured table")
		return s.lines.chunk(block, pageNumber, chunkIndexStart, raw)
	default:
		return nil, newChunkErrorf(
			"unsupported %s structure in block %s: children are of type %T",
			block.Type, block.ID, block.Children[0],
		)
	}
}

// cellTableChunker handles tables with explicit grid structure: one chunk
// per non-empty row.
type cellTableChunker struct{}

func (c cellTableChunker) chunk(
	block *types.LayoutBlock,
	pageNumber, chunkIndexStart int,
) ([]types.AtomicChunk, error) {
	var cells []types.TableCell
	for _, child := range block.Children {
		table, ok := child.(*types.Table)
		if !ok {
			// Mixed children inside a cell-structured table are a corrupt
			// parse, not something to skip over.
			return nil, newChunkErrorf(
				"inconsistent cell-structured table block %s: unexpected child of type %T",
				block.ID, child,
			)
		}
		cells = append(cells, table.Cells...)
	}

	rows := make(map[int][]types.TableCell)
	for _, cell := range cells {
		rows[cell.RowIndex] = append(rows[cell.RowIndex], cell)
	}

	rowIndexes := make([]int, 0, len(rows))
	for idx := range rows {
		rowIndexes = append(rowIndexes, idx)
	}
	sort.Ints(rowIndexes)

	var chunks []types.AtomicChunk
	chunkIndex := chunkIndexStart

	for _, rowIdx := range rowIndexes {
		row := rows[rowIdx]
		sort.Slice(row, func(i, j int) bool {
			if row[i].ColIndex != row[j].ColIndex {
				return row[i].ColIndex < row[j].ColIndex
			}
			return row[i].ID < row[j].ID
		})

		// A merged grid cell arrives as repeated cells with identical text,
		// so each distinct text contributes once per row.
		seen := make(map[string]bool)
		var texts []string
		var boxes []types.BoundingBox
		for _, cell := range row {
			boxes = append(boxes, cell.BBox)
			text := strings.TrimSpace(cell.Text)
			if text == "" || seen[text] {
				continue
			}
			seen[text] = true
			texts = append(texts, text)
		}

		rowText := strings.Join(texts, " ")
		if rowText == "" {
			continue
		}

		chunks = append(chunks, newAtomicChunk(rowText, boxes, block, pageNumber, chunkIndex))
		chunkIndex++
	}

	log.Debug().Str("block_id", block.ID).Int("chunks", len(chunks)).Msg("chunked cell-structured table")
	return chunks, nil
}
