package chunking

import (
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/types"
)

// textBlock is a line-variant working record: one text line with its
// geometry, detached from the parsed child tree.
type textBlock struct {
	text       string
	bbox       types.BoundingBox
	confidence float64
}

// lineTableChunker handles tables that arrive as plain text lines with no
// grid structure. Lines are grouped into visual rows by vertical
// alignment; small tables are emitted as a single chunk to avoid
// fragmenting them, larger ones as one chunk per row.
type lineTableChunker struct {
	cfg Config
}

func (c lineTableChunker) chunk(
	block *types.LayoutBlock,
	pageNumber, chunkIndexStart int,
	raw *types.AnalysisPayload,
) ([]types.AtomicChunk, error) {
	blocks := convertLinesToTextBlocks(block.Children)

	if raw != nil {
		missed := recoverMissedLines(block, raw)
		if len(missed) > 0 {
			log.Debug().
				Str("block_id", block.ID).
				Int("recovered", len(missed)).
				Msg("recovered lines dropped by the upstream parse")
			blocks = append(blocks, missed...)
		}
	} else {
		log.Warn().
			Str("block_id", block.ID).
			Msg("no raw analysis payload attached, skipping missed line repair")
	}

	sortTextBlocks(blocks)

	if len(blocks) == 0 {
		return nil, nil
	}

	rows := groupIntoVisualRows(blocks, c.cfg.YToleranceRatio)

	rowTexts := make([]string, len(rows))
	for i, row := range rows {
		rowTexts[i] = joinRowText(row)
	}
	blockText := strings.Join(rowTexts, "\n")

	// Small tables stay together: splitting a handful of short rows into
	// separate chunks destroys their meaning for retrieval.
	if len(blockText) < c.cfg.LineChunkCharLimit {
		boxes := make([]types.BoundingBox, len(blocks))
		for i, b := range blocks {
			boxes[i] = b.bbox
		}
		return []types.AtomicChunk{
			newAtomicChunk(blockText, boxes, block, pageNumber, chunkIndexStart),
		}, nil
	}

	var chunks []types.AtomicChunk
	for i, row := range rows {
		if len(row) == 0 || strings.TrimSpace(rowTexts[i]) == "" {
			continue
		}

		sorted := make([]textBlock, len(row))
		copy(sorted, row)
		sort.SliceStable(sorted, func(a, b int) bool { return sorted[a].bbox.Left < sorted[b].bbox.Left })

		boxes := make([]types.BoundingBox, len(sorted))
		for j, b := range sorted {
			boxes[j] = b.bbox
		}

		chunks = append(chunks, newAtomicChunk(rowTexts[i], boxes, block, pageNumber, chunkIndexStart+len(chunks)))
	}

	log.Debug().Str("block_id", block.ID).Int("chunks", len(chunks)).Msg("chunked line-structured table by visual row")
	return chunks, nil
}

// convertLinesToTextBlocks converts the block's line children, dropping
// anything without usable text.
func convertLinesToTextBlocks(children []types.BlockChild) []textBlock {
	var blocks []textBlock
	for _, child := range children {
		line, ok := child.(*types.Line)
		if !ok {
			continue
		}
		text := strings.TrimSpace(line.Text)
		if text == "" {
			continue
		}
		blocks = append(blocks, textBlock{text: text, bbox: line.BBox, confidence: line.Confidence})
	}
	sortTextBlocks(blocks)
	return blocks
}

// recoverMissedLines works around an upstream defect: lines listed in the
// block's CHILD relationships but silently missing from the attached
// children are rebuilt directly from the raw payload's geometry.
func recoverMissedLines(block *types.LayoutBlock, raw *types.AnalysisPayload) []textBlock {
	idMap := raw.BlockMap()
	layoutJSON, ok := idMap[block.ID]
	if !ok {
		return nil
	}

	expected := make(map[string]bool)
	for _, id := range layoutJSON.ChildIDs() {
		expected[id] = true
	}
	for _, child := range block.Children {
		if line, ok := child.(*types.Line); ok {
			delete(expected, line.ID)
		}
	}

	var missed []textBlock
	for id := range expected {
		rawBlock, ok := idMap[id]
		if !ok || rawBlock.BlockType != types.BlockTypeLine {
			continue
		}
		text := strings.TrimSpace(rawBlock.Text)
		if text == "" {
			continue
		}
		missed = append(missed, textBlock{
			text:       text,
			bbox:       rawBlock.Geometry.BBox(),
			confidence: rawBlock.Confidence,
		})
	}
	return missed
}

// sortTextBlocks orders blocks into reading order by (top, left).
func sortTextBlocks(blocks []textBlock) {
	sort.SliceStable(blocks, func(i, j int) bool {
		if blocks[i].bbox.Top != blocks[j].bbox.Top {
			return blocks[i].bbox.Top < blocks[j].bbox.Top
		}
		return blocks[i].bbox.Left < blocks[j].bbox.Left
	})
}

// groupIntoVisualRows clusters blocks whose vertical centers sit within a
// tolerance derived from the mean line height. A block joins the current
// row when its center is strictly closer than the tolerance to the row's
// first block; otherwise it starts a new row.
func groupIntoVisualRows(blocks []textBlock, yToleranceRatio float64) [][]textBlock {
	if len(blocks) == 0 {
		return nil
	}

	var heightSum float64
	var heightCount int
	for _, b := range blocks {
		if b.bbox.Height > 0 {
			heightSum += b.bbox.Height
			heightCount++
		}
	}
	if heightCount == 0 {
		rows := make([][]textBlock, len(blocks))
		for i, b := range blocks {
			rows[i] = []textBlock{b}
		}
		return rows
	}

	tolerance := heightSum / float64(heightCount) * yToleranceRatio

	var rows [][]textBlock
	var current []textBlock

	for _, b := range blocks {
		if len(current) == 0 {
			current = []textBlock{b}
			continue
		}
		dist := b.bbox.CenterY() - current[0].bbox.CenterY()
		if dist < 0 {
			dist = -dist
		}
		if dist < tolerance {
			current = append(current, b)
		} else {
			rows = append(rows, current)
			current = []textBlock{b}
		}
	}
	if len(current) > 0 {
		rows = append(rows, current)
	}

	return rows
}

// joinRowText joins a visual row's texts left to right with single spaces.
func joinRowText(row []textBlock) string {
	sorted := make([]textBlock, len(row))
	copy(sorted, row)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].bbox.Left < sorted[j].bbox.Left })

	texts := make([]string, len(sorted))
	for i, b := range sorted {
		texts[i] = b.text
	}
	return strings.Join(texts, " ")
}
