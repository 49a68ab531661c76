package chunking

import (
	"errors"
	"testing"

	"github.com/casedocsearch/ingest-be/types"
)

func chunkerMeta() types.DocumentMetadata {
	return types.DocumentMetadata{
		DocumentID:     "doc-1",
		SourceFileName: "letter.pdf",
		PageCount:      2,
		CaseRef:        "CASE-7",
	}
}

func pageWithTextBlock(pageNumber int, blockID string, lines ...*types.Line) types.Page {
	block := &types.LayoutBlock{
		ID:   blockID,
		Type: types.LayoutText,
		Text: "has content",
		BBox: types.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.8, Height: 0.3},
	}
	for _, l := range lines {
		block.Children = append(block.Children, l)
	}
	return types.Page{PageNumber: pageNumber, Width: 1, Height: 1, Blocks: []*types.LayoutBlock{block}}
}

func TestChunkerSinglePageDocument(t *testing.T) {
	c := NewDocumentChunker(DefaultConfig())
	doc := &types.Document{Pages: []types.Page{
		pageWithTextBlock(1, "b1",
			line("l1", "Dear sir or madam,", 0.10),
			line("l2", "thank you for your letter.", 0.13),
			line("l3", "Kind regards.", 0.16),
		),
	}}

	processed, err := c.Chunk(doc, chunkerMeta(), &types.AnalysisPayload{})
	if err != nil {
		t.Fatal(err)
	}

	if len(processed.Chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(processed.Chunks))
	}
	chunk := processed.Chunks[0]
	if chunk.Text != "Dear sir or madam, thank you for your letter. Kind regards." {
		t.Errorf("Text = %q", chunk.Text)
	}
	if chunk.ChunkID != "doc-1_p1_c0" {
		t.Errorf("ChunkID = %q", chunk.ChunkID)
	}
	if chunk.ChunkIndex != 0 || chunk.PageNumber != 1 {
		t.Errorf("index/page = %d/%d", chunk.ChunkIndex, chunk.PageNumber)
	}
	if chunk.CaseRef != "CASE-7" || chunk.PageCount != 2 {
		t.Errorf("metadata not carried onto chunk: %+v", chunk)
	}

	if len(processed.Pages) != 1 || processed.Pages[0].PageNumber != 1 {
		t.Errorf("pages = %+v", processed.Pages)
	}
}

func TestChunkerResetsIndexPerPage(t *testing.T) {
	c := NewDocumentChunker(DefaultConfig())
	doc := &types.Document{Pages: []types.Page{
		pageWithTextBlock(1, "b1", line("l1", "page one text", 0.1)),
		pageWithTextBlock(2, "b2", line("l2", "page two text", 0.1)),
	}}

	processed, err := c.Chunk(doc, chunkerMeta(), &types.AnalysisPayload{})
	if err != nil {
		t.Fatal(err)
	}
	if len(processed.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(processed.Chunks))
	}

	first, second := processed.Chunks[0], processed.Chunks[1]
	if first.ChunkIndex != 0 || second.ChunkIndex != 0 {
		t.Errorf("chunk indexes = %d, %d, want both 0", first.ChunkIndex, second.ChunkIndex)
	}
	if first.ChunkID != "doc-1_p1_c0" || second.ChunkID != "doc-1_p2_c0" {
		t.Errorf("chunk ids = %q, %q", first.ChunkID, second.ChunkID)
	}
}

func TestChunkerValidatesMetadataFirst(t *testing.T) {
	c := NewDocumentChunker(DefaultConfig())
	doc := &types.Document{Pages: []types.Page{
		pageWithTextBlock(1, "b1", line("l1", "text", 0.1)),
	}}

	_, err := c.Chunk(doc, types.DocumentMetadata{}, &types.AnalysisPayload{})
	if err == nil {
		t.Fatal("expected a validation error")
	}

	var ve *types.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *types.ValidationError, got %T: %v", err, err)
	}
	var ce *ChunkError
	if errors.As(err, &ce) {
		t.Error("validation failures must not be wrapped as chunk errors")
	}
}

func TestChunkerRejectsEmptyDocument(t *testing.T) {
	c := NewDocumentChunker(DefaultConfig())

	for _, doc := range []*types.Document{nil, {}} {
		_, err := c.Chunk(doc, chunkerMeta(), &types.AnalysisPayload{})
		if err == nil {
			t.Fatal("expected an error for a document with no pages")
		}
		var ce *ChunkError
		if !errors.As(err, &ce) {
			t.Errorf("expected *ChunkError, got %T", err)
		}
	}
}

func TestChunkerRequiresRawPayload(t *testing.T) {
	c := NewDocumentChunker(DefaultConfig())
	doc := &types.Document{Pages: []types.Page{
		pageWithTextBlock(1, "b1", line("l1", "text", 0.1)),
	}}

	_, err := c.Chunk(doc, chunkerMeta(), nil)
	if err == nil {
		t.Fatal("expected an error when the raw payload is missing")
	}
	var ce *ChunkError
	if !errors.As(err, &ce) {
		t.Errorf("expected *ChunkError, got %T", err)
	}
}

func TestChunkerSkipsBlocksWithoutStrategyOrText(t *testing.T) {
	c := NewDocumentChunker(DefaultConfig())

	figure := &types.LayoutBlock{ID: "fig", Type: types.LayoutFigure, Text: "chart"}
	empty := &types.LayoutBlock{ID: "empty", Type: types.LayoutText, Text: "   "}
	text := &types.LayoutBlock{
		ID:       "b1",
		Type:     types.LayoutText,
		Text:     "has content",
		Children: []types.BlockChild{line("l1", "kept text", 0.1)},
	}

	doc := &types.Document{Pages: []types.Page{{
		PageNumber: 1,
		Blocks:     []*types.LayoutBlock{figure, empty, text},
	}}}

	processed, err := c.Chunk(doc, chunkerMeta(), &types.AnalysisPayload{})
	if err != nil {
		t.Fatal(err)
	}
	if len(processed.Chunks) != 1 || processed.Chunks[0].Text != "kept text" {
		t.Fatalf("got %+v, want only the text block's chunk", processed.Chunks)
	}
}

func TestChunkerAbortsOnStructuralError(t *testing.T) {
	c := NewDocumentChunker(DefaultConfig())

	goodPage := pageWithTextBlock(1, "b1", line("l1", "fine", 0.1))
	badPage := types.Page{PageNumber: 2, Blocks: []*types.LayoutBlock{{
		ID:   "broken-table",
		Type: types.LayoutTable,
		Text: "has content",
		// No children: structurally invalid.
	}}}

	_, err := c.Chunk(&types.Document{Pages: []types.Page{goodPage, badPage}}, chunkerMeta(), &types.AnalysisPayload{})
	if err == nil {
		t.Fatal("expected the whole document to fail")
	}
	var ce *ChunkError
	if !errors.As(err, &ce) {
		t.Errorf("expected *ChunkError, got %T: %v", err, err)
	}
}

func TestChunkerMixedBlockTypes(t *testing.T) {
	c := NewDocumentChunker(DefaultConfig())

	header := &types.LayoutBlock{
		ID:       "h1",
		Type:     types.LayoutHeader,
		Text:     "has content",
		Children: []types.BlockChild{line("hl", "ACME Corp", 0.02)},
	}
	kv := &types.LayoutBlock{
		ID:   "kv1",
		Type: types.LayoutKeyValue,
		Text: "has content",
		BBox: types.BoundingBox{Left: 0.1, Top: 0.75, Width: 0.5, Height: 0.05},
		Children: []types.BlockChild{
			&types.KeyValuePair{
				KeyWords:  []string{"Case"},
				ValueText: "CASE-7",
				BBox:      types.BoundingBox{Left: 0.1, Top: 0.75, Width: 0.5, Height: 0.02},
			},
		},
	}

	doc := &types.Document{Pages: []types.Page{{
		PageNumber: 1,
		Blocks:     []*types.LayoutBlock{header, kv},
	}}}

	processed, err := c.Chunk(doc, chunkerMeta(), &types.AnalysisPayload{})
	if err != nil {
		t.Fatal(err)
	}

	// The header and the form field sit far apart vertically, so the
	// merger keeps them separate.
	if len(processed.Chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(processed.Chunks))
	}
	if processed.Chunks[0].Text != "ACME Corp" || processed.Chunks[1].Text != "Case: CASE-7" {
		t.Errorf("texts = %q, %q", processed.Chunks[0].Text, processed.Chunks[1].Text)
	}
}
