package service

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/types"
)

// ParseAnalysisPayload resolves the raw block/relationship graph into the
// ordered page and layout block structure the chunking engine consumes.
// Blocks whose ids are referenced but missing from the payload are logged
// and skipped rather than failing the whole document.
func ParseAnalysisPayload(payload *types.AnalysisPayload) (*types.Document, error) {
	if payload == nil || len(payload.Blocks) == 0 {
		return nil, fmt.Errorf("analysis payload contains no blocks")
	}

	blockMap := payload.BlockMap()

	var pageBlocks []*types.AnalysisBlock
	for i := range payload.Blocks {
		if payload.Blocks[i].BlockType == types.BlockTypePage {
			pageBlocks = append(pageBlocks, &payload.Blocks[i])
		}
	}
	if len(pageBlocks) == 0 {
		return nil, fmt.Errorf("analysis payload contains no page blocks")
	}
	sort.SliceStable(pageBlocks, func(i, j int) bool {
		return pageBlocks[i].Page < pageBlocks[j].Page
	})

	doc := &types.Document{Pages: make([]types.Page, 0, len(pageBlocks))}

	for i, pb := range pageBlocks {
		pageNumber := pb.Page
		if pageNumber == 0 {
			pageNumber = i + 1
		}

		page := types.Page{
			PageNumber: pageNumber,
			Width:      pb.Geometry.BBox().Width,
			Height:     pb.Geometry.BBox().Height,
		}

		for _, childID := range pb.ChildIDs() {
			child, ok := blockMap[childID]
			if !ok {
				log.Warn().Str("block_id", childID).Int("page", pageNumber).Msg("page references unknown block")
				continue
			}
			if !strings.HasPrefix(child.BlockType, "LAYOUT_") {
				continue
			}
			page.Blocks = append(page.Blocks, parseLayoutBlock(child, blockMap))
		}

		doc.Pages = append(doc.Pages, page)
	}

	return doc, nil
}

// parseLayoutBlock materializes one layout block and its children. A
// layout block's children may be lines, tables, form keys or nested
// layout blocks depending on its type.
func parseLayoutBlock(block *types.AnalysisBlock, blockMap map[string]*types.AnalysisBlock) *types.LayoutBlock {
	out := &types.LayoutBlock{
		ID:         block.ID,
		Type:       types.LayoutType(block.BlockType),
		BBox:       block.Geometry.BBox(),
		Confidence: block.Confidence,
	}

	var texts []string
	for _, childID := range block.ChildIDs() {
		child, ok := blockMap[childID]
		if !ok {
			log.Warn().Str("block_id", childID).Str("parent_id", block.ID).Msg("layout block references unknown block")
			continue
		}

		switch {
		case child.BlockType == types.BlockTypeLine:
			line := &types.Line{
				ID:         child.ID,
				Text:       child.Text,
				BBox:       child.Geometry.BBox(),
				Confidence: child.Confidence,
			}
			out.Children = append(out.Children, line)
			if line.Text != "" {
				texts = append(texts, line.Text)
			}

		case child.BlockType == types.BlockTypeTable:
			table := parseTable(child, blockMap)
			out.Children = append(out.Children, table)
			for _, cell := range table.Cells {
				if cell.Text != "" {
					texts = append(texts, cell.Text)
				}
			}

		case child.BlockType == types.BlockTypeKeyValueSet:
			if !hasEntityType(child, types.EntityTypeKey) {
				continue
			}
			pair := parseKeyValuePair(child, blockMap)
			out.Children = append(out.Children, pair)
			if len(pair.KeyWords) > 0 {
				texts = append(texts, strings.Join(pair.KeyWords, " "))
			}
			if pair.ValueText != "" {
				texts = append(texts, pair.ValueText)
			}

		case strings.HasPrefix(child.BlockType, "LAYOUT_"):
			nested := parseLayoutBlock(child, blockMap)
			out.Children = append(out.Children, nested)
			if nested.Text != "" {
				texts = append(texts, nested.Text)
			}

		default:
			log.Debug().
				Str("block_id", child.ID).
				Str("block_type", child.BlockType).
				Msg("ignoring unsupported child block type")
		}
	}

	out.Text = strings.Join(texts, " ")
	return out
}

func parseTable(block *types.AnalysisBlock, blockMap map[string]*types.AnalysisBlock) *types.Table {
	table := &types.Table{ID: block.ID, BBox: block.Geometry.BBox()}

	for _, cellID := range block.ChildIDs() {
		cell, ok := blockMap[cellID]
		if !ok || cell.BlockType != types.BlockTypeCell {
			continue
		}
		table.Cells = append(table.Cells, types.TableCell{
			ID:       cell.ID,
			RowIndex: cell.RowIndex,
			ColIndex: cell.ColumnIndex,
			Text:     joinWordText(cell, blockMap),
			BBox:     cell.Geometry.BBox(),
		})
	}

	return table
}

// parseKeyValuePair resolves a form KEY block: its own WORD children give
// the key words, and its VALUE relationship leads to the block whose WORD
// children give the value text. The pair's box spans key and value.
func parseKeyValuePair(block *types.AnalysisBlock, blockMap map[string]*types.AnalysisBlock) *types.KeyValuePair {
	pair := &types.KeyValuePair{BBox: block.Geometry.BBox()}

	for _, wordID := range block.ChildIDs() {
		word, ok := blockMap[wordID]
		if !ok || word.BlockType != types.BlockTypeWord {
			continue
		}
		pair.KeyWords = append(pair.KeyWords, word.Text)
	}

	for _, valueID := range block.RelatedIDs(types.RelationshipValue) {
		value, ok := blockMap[valueID]
		if !ok {
			log.Warn().Str("block_id", valueID).Str("key_id", block.ID).Msg("form key references unknown value block")
			continue
		}
		pair.ValueText = joinWordText(value, blockMap)

		boxes := []types.BoundingBox{pair.BBox, value.Geometry.BBox()}
		pair.BBox = types.CombineOrFallback(boxes, pair.BBox)
	}

	return pair
}

func joinWordText(block *types.AnalysisBlock, blockMap map[string]*types.AnalysisBlock) string {
	var words []string
	for _, wordID := range block.ChildIDs() {
		word, ok := blockMap[wordID]
		if !ok || word.BlockType != types.BlockTypeWord {
			continue
		}
		if word.Text != "" {
			words = append(words, word.Text)
		}
	}
	return strings.Join(words, " ")
}

func hasEntityType(block *types.AnalysisBlock, entityType string) bool {
	for _, et := range block.EntityTypes {
		if et == entityType {
			return true
		}
	}
	return false
}
