package chunking

import (
	"testing"

	"github.com/casedocsearch/ingest-be/types"
)

func textBlockWithLines(lines ...*types.Line) *types.LayoutBlock {
	block := &types.LayoutBlock{
		ID:   "block-1",
		Type: types.LayoutText,
		Text: "placeholder",
		BBox: types.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.8, Height: 0.3},
	}
	for _, l := range lines {
		block.Children = append(block.Children, l)
	}
	return block
}

func line(id, text string, top float64) *types.Line {
	return &types.Line{
		ID:   id,
		Text: text,
		BBox: types.BoundingBox{Left: 0.1, Top: top, Width: 0.5, Height: 0.02},
	}
}

func TestTextStrategyAccumulatesUntilBudget(t *testing.T) {
	s := NewTextStrategy(Config{MaximumChunkSize: 10})
	block := textBlockWithLines(
		line("l1", "aaaa", 0.10),
		line("l2", "bbbbb", 0.13),
		line("l3", "ccccc", 0.16),
	)

	chunks, err := s.Chunk(block, 1, types.DocumentMetadata{}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}

	// "aaaa bbbbb" is exactly 10 characters, so it fits; adding "ccccc"
	// would exceed the budget and starts a new chunk.
	want := []string{"aaaa bbbbb", "ccccc"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i, w := range want {
		if chunks[i].Text != w {
			t.Errorf("chunk[%d].Text = %q, want %q", i, chunks[i].Text, w)
		}
		if chunks[i].ChunkIndex != i {
			t.Errorf("chunk[%d].ChunkIndex = %d, want %d", i, chunks[i].ChunkIndex, i)
		}
	}
}

func TestTextStrategyOversizedLineKeptWhole(t *testing.T) {
	s := NewTextStrategy(Config{MaximumChunkSize: 5})
	block := textBlockWithLines(line("l1", "abcdefgh", 0.1))

	chunks, err := s.Chunk(block, 1, types.DocumentMetadata{}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].Text != "abcdefgh" {
		t.Fatalf("oversized line must become one whole chunk, got %+v", chunks)
	}
}

func TestTextStrategySkipsEmptyAndForeignChildren(t *testing.T) {
	s := NewTextStrategy(Config{MaximumChunkSize: 100})
	block := textBlockWithLines(
		line("l1", "  ", 0.1),
		line("l2", "real text", 0.2),
	)
	block.Children = append(block.Children, &types.Table{ID: "t1"})

	chunks, err := s.Chunk(block, 1, types.DocumentMetadata{}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].Text != "real text" {
		t.Fatalf("got %+v, want single chunk of the non-empty line", chunks)
	}
}

func TestTextStrategyChunkIndexStart(t *testing.T) {
	s := NewTextStrategy(Config{MaximumChunkSize: 4})
	block := textBlockWithLines(
		line("l1", "aaaa", 0.1),
		line("l2", "bbbb", 0.2),
	)

	chunks, err := s.Chunk(block, 1, types.DocumentMetadata{}, 5, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].ChunkIndex != 5 || chunks[1].ChunkIndex != 6 {
		t.Errorf("indexes = %d, %d, want 5, 6", chunks[0].ChunkIndex, chunks[1].ChunkIndex)
	}
}

func TestTextStrategyCombinesLineBoxes(t *testing.T) {
	s := NewTextStrategy(Config{MaximumChunkSize: 100})
	l1 := line("l1", "first", 0.10)
	l2 := line("l2", "second", 0.20)
	block := textBlockWithLines(l1, l2)

	chunks, err := s.Chunk(block, 1, types.DocumentMetadata{}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks, want 1", len(chunks))
	}

	want := types.CombineOrFallback([]types.BoundingBox{l1.BBox, l2.BBox}, block.BBox)
	if chunks[0].BBox != want {
		t.Errorf("BBox = %+v, want %+v", chunks[0].BBox, want)
	}
	if chunks[0].LayoutType != types.LayoutText {
		t.Errorf("LayoutType = %v", chunks[0].LayoutType)
	}
}
