package service

import (
	"testing"

	"github.com/casedocsearch/ingest-be/types"
)

func geometry(left, top, width, height float64) types.AnalysisGeometry {
	var g types.AnalysisGeometry
	g.BoundingBox.Left = left
	g.BoundingBox.Top = top
	g.BoundingBox.Width = width
	g.BoundingBox.Height = height
	return g
}

func childRel(ids ...string) []types.AnalysisRelationship {
	return []types.AnalysisRelationship{{Type: types.RelationshipChild, IDs: ids}}
}

func TestParseAnalysisPayloadEmpty(t *testing.T) {
	if _, err := ParseAnalysisPayload(nil); err == nil {
		t.Error("expected an error for a nil payload")
	}
	if _, err := ParseAnalysisPayload(&types.AnalysisPayload{}); err == nil {
		t.Error("expected an error for a payload with no blocks")
	}
	noPage := &types.AnalysisPayload{Blocks: []types.AnalysisBlock{
		{ID: "l1", BlockType: types.BlockTypeLine, Text: "floating"},
	}}
	if _, err := ParseAnalysisPayload(noPage); err == nil {
		t.Error("expected an error for a payload with no page blocks")
	}
}

func TestParseAnalysisPayloadTextLayout(t *testing.T) {
	payload := &types.AnalysisPayload{
		Blocks: []types.AnalysisBlock{
			{ID: "page1", BlockType: types.BlockTypePage, Page: 1, Geometry: geometry(0, 0, 1, 1), Relationships: childRel("layout1")},
			{ID: "layout1", BlockType: "LAYOUT_TEXT", Confidence: 0.95, Geometry: geometry(0.1, 0.1, 0.8, 0.2), Relationships: childRel("line1", "line2")},
			{ID: "line1", BlockType: types.BlockTypeLine, Text: "First line", Confidence: 0.99, Geometry: geometry(0.1, 0.1, 0.8, 0.02)},
			{ID: "line2", BlockType: types.BlockTypeLine, Text: "Second line", Confidence: 0.98, Geometry: geometry(0.1, 0.14, 0.8, 0.02)},
		},
	}
	payload.DocumentMetadata.Pages = 1

	doc, err := ParseAnalysisPayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 1 {
		t.Fatalf("got %d pages, want 1", len(doc.Pages))
	}

	page := doc.Pages[0]
	if page.PageNumber != 1 {
		t.Errorf("PageNumber = %d", page.PageNumber)
	}
	if len(page.Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(page.Blocks))
	}

	block := page.Blocks[0]
	if block.Type != types.LayoutText {
		t.Errorf("Type = %v", block.Type)
	}
	if block.Text != "First line Second line" {
		t.Errorf("Text = %q", block.Text)
	}
	if len(block.Children) != 2 {
		t.Fatalf("got %d children, want 2", len(block.Children))
	}
	first, ok := block.Children[0].(*types.Line)
	if !ok {
		t.Fatalf("child is %T, want *types.Line", block.Children[0])
	}
	if first.ID != "line1" || first.Text != "First line" {
		t.Errorf("first line = %+v", first)
	}
}

func TestParseAnalysisPayloadTable(t *testing.T) {
	payload := &types.AnalysisPayload{
		Blocks: []types.AnalysisBlock{
			{ID: "page1", BlockType: types.BlockTypePage, Page: 1, Relationships: childRel("layout1")},
			{ID: "layout1", BlockType: "LAYOUT_TABLE", Relationships: childRel("table1")},
			{ID: "table1", BlockType: types.BlockTypeTable, Geometry: geometry(0.1, 0.1, 0.8, 0.4), Relationships: childRel("cell1", "cell2")},
			{ID: "cell1", BlockType: types.BlockTypeCell, RowIndex: 1, ColumnIndex: 1, Geometry: geometry(0.1, 0.1, 0.4, 0.05), Relationships: childRel("w1", "w2")},
			{ID: "cell2", BlockType: types.BlockTypeCell, RowIndex: 1, ColumnIndex: 2, Geometry: geometry(0.5, 0.1, 0.4, 0.05), Relationships: childRel("w3")},
			{ID: "w1", BlockType: types.BlockTypeWord, Text: "Full"},
			{ID: "w2", BlockType: types.BlockTypeWord, Text: "Name"},
			{ID: "w3", BlockType: types.BlockTypeWord, Text: "Age"},
		},
	}

	doc, err := ParseAnalysisPayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	block := doc.Pages[0].Blocks[0]
	if block.Type != types.LayoutTable {
		t.Fatalf("Type = %v", block.Type)
	}

	table, ok := block.Children[0].(*types.Table)
	if !ok {
		t.Fatalf("child is %T, want *types.Table", block.Children[0])
	}
	if len(table.Cells) != 2 {
		t.Fatalf("got %d cells, want 2", len(table.Cells))
	}
	if table.Cells[0].Text != "Full Name" || table.Cells[1].Text != "Age" {
		t.Errorf("cell texts = %q, %q", table.Cells[0].Text, table.Cells[1].Text)
	}
	if table.Cells[0].RowIndex != 1 || table.Cells[0].ColIndex != 1 {
		t.Errorf("cell indexes = %d/%d", table.Cells[0].RowIndex, table.Cells[0].ColIndex)
	}
}

func TestParseAnalysisPayloadKeyValue(t *testing.T) {
	payload := &types.AnalysisPayload{
		Blocks: []types.AnalysisBlock{
			{ID: "page1", BlockType: types.BlockTypePage, Page: 1, Relationships: childRel("layout1")},
			{ID: "layout1", BlockType: "LAYOUT_KEY_VALUE", Relationships: childRel("key1", "value1")},
			{
				ID:          "key1",
				BlockType:   types.BlockTypeKeyValueSet,
				EntityTypes: []string{types.EntityTypeKey},
				Geometry:    geometry(0.1, 0.1, 0.2, 0.02),
				Relationships: []types.AnalysisRelationship{
					{Type: types.RelationshipChild, IDs: []string{"kw1", "kw2"}},
					{Type: types.RelationshipValue, IDs: []string{"value1"}},
				},
			},
			{
				ID:            "value1",
				BlockType:     types.BlockTypeKeyValueSet,
				EntityTypes:   []string{types.EntityTypeValue},
				Geometry:      geometry(0.4, 0.1, 0.2, 0.02),
				Relationships: childRel("vw1"),
			},
			{ID: "kw1", BlockType: types.BlockTypeWord, Text: "Case"},
			{ID: "kw2", BlockType: types.BlockTypeWord, Text: "Ref"},
			{ID: "vw1", BlockType: types.BlockTypeWord, Text: "AB-123"},
		},
	}

	doc, err := ParseAnalysisPayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	block := doc.Pages[0].Blocks[0]

	// The VALUE side of the form pair must not surface as a second child.
	if len(block.Children) != 1 {
		t.Fatalf("got %d children, want 1", len(block.Children))
	}
	pair, ok := block.Children[0].(*types.KeyValuePair)
	if !ok {
		t.Fatalf("child is %T, want *types.KeyValuePair", block.Children[0])
	}
	if len(pair.KeyWords) != 2 || pair.KeyWords[0] != "Case" || pair.KeyWords[1] != "Ref" {
		t.Errorf("KeyWords = %v", pair.KeyWords)
	}
	if pair.ValueText != "AB-123" {
		t.Errorf("ValueText = %q", pair.ValueText)
	}
	// The pair's box spans key and value.
	if pair.BBox.Left != 0.1 {
		t.Errorf("BBox.Left = %v, want 0.1", pair.BBox.Left)
	}
	if r := pair.BBox.Right(); r < 0.59 || r > 0.61 {
		t.Errorf("BBox.Right() = %v, want ~0.6", r)
	}
}

func TestParseAnalysisPayloadNestedLayout(t *testing.T) {
	payload := &types.AnalysisPayload{
		Blocks: []types.AnalysisBlock{
			{ID: "page1", BlockType: types.BlockTypePage, Page: 1, Relationships: childRel("list1")},
			{ID: "list1", BlockType: "LAYOUT_LIST", Relationships: childRel("item1")},
			{ID: "item1", BlockType: "LAYOUT_TEXT", Relationships: childRel("line1")},
			{ID: "line1", BlockType: types.BlockTypeLine, Text: "bullet point", Geometry: geometry(0.1, 0.1, 0.5, 0.02)},
		},
	}

	doc, err := ParseAnalysisPayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	list := doc.Pages[0].Blocks[0]
	if list.Type != types.LayoutList {
		t.Fatalf("Type = %v", list.Type)
	}

	item, ok := list.Children[0].(*types.LayoutBlock)
	if !ok {
		t.Fatalf("child is %T, want *types.LayoutBlock", list.Children[0])
	}
	if item.Type != types.LayoutText || item.Text != "bullet point" {
		t.Errorf("item = %+v", item)
	}
	if list.Text != "bullet point" {
		t.Errorf("list text = %q", list.Text)
	}
}

func TestParseAnalysisPayloadSkipsUnknownReferences(t *testing.T) {
	payload := &types.AnalysisPayload{
		Blocks: []types.AnalysisBlock{
			{ID: "page1", BlockType: types.BlockTypePage, Page: 1, Relationships: childRel("layout1", "ghost")},
			{ID: "layout1", BlockType: "LAYOUT_TEXT", Relationships: childRel("line1", "missing-line")},
			{ID: "line1", BlockType: types.BlockTypeLine, Text: "present", Geometry: geometry(0.1, 0.1, 0.5, 0.02)},
		},
	}

	doc, err := ParseAnalysisPayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages[0].Blocks) != 1 {
		t.Fatalf("got %d blocks, want 1", len(doc.Pages[0].Blocks))
	}
	if len(doc.Pages[0].Blocks[0].Children) != 1 {
		t.Errorf("unknown references must be skipped, got %d children", len(doc.Pages[0].Blocks[0].Children))
	}
}

func TestParseAnalysisPayloadOrdersPages(t *testing.T) {
	payload := &types.AnalysisPayload{
		Blocks: []types.AnalysisBlock{
			{ID: "page2", BlockType: types.BlockTypePage, Page: 2},
			{ID: "page1", BlockType: types.BlockTypePage, Page: 1},
		},
	}

	doc, err := ParseAnalysisPayload(payload)
	if err != nil {
		t.Fatal(err)
	}
	if len(doc.Pages) != 2 {
		t.Fatalf("got %d pages, want 2", len(doc.Pages))
	}
	if doc.Pages[0].PageNumber != 1 || doc.Pages[1].PageNumber != 2 {
		t.Errorf("page order = %d, %d", doc.Pages[0].PageNumber, doc.Pages[1].PageNumber)
	}
}
