package chunking

import (
	"testing"

	"github.com/casedocsearch/ingest-be/types"
)

func keyValueBlock(children ...types.BlockChild) *types.LayoutBlock {
	return &types.LayoutBlock{
		ID:       "kv-block",
		Type:     types.LayoutKeyValue,
		Text:     "placeholder",
		BBox:     types.BoundingBox{Left: 0.1, Top: 0.1, Width: 0.8, Height: 0.2},
		Children: children,
	}
}

func TestKeyValueStrategyFormatsPairs(t *testing.T) {
	tests := []struct {
		name     string
		keyWords []string
		value    string
		want     string
	}{
		{"plain key", []string{"Name"}, "John Doe", "Name: John Doe"},
		{"key with trailing colon", []string{"Name:"}, "John Doe", "Name: John Doe"},
		{"colon as its own word", []string{"Name", ":"}, "John Doe", "Name: John Doe"},
		{"multi-word key", []string{"Date", "of", "Birth"}, "1980-05-01", "Date of Birth: 1980-05-01"},
		{"value with padding", []string{"Ref"}, "  AB-123  ", "Ref: AB-123"},
	}

	s := NewKeyValueStrategy()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := keyValueBlock(&types.KeyValuePair{KeyWords: tt.keyWords, ValueText: tt.value})
			chunks, err := s.Chunk(block, 1, types.DocumentMetadata{}, 0, nil)
			if err != nil {
				t.Fatal(err)
			}
			if len(chunks) != 1 {
				t.Fatalf("got %d chunks, want 1", len(chunks))
			}
			if chunks[0].Text != tt.want {
				t.Errorf("Text = %q, want %q", chunks[0].Text, tt.want)
			}
		})
	}
}

func TestKeyValueStrategySkipsIncompletePairs(t *testing.T) {
	s := NewKeyValueStrategy()
	block := keyValueBlock(
		&types.KeyValuePair{KeyWords: nil, ValueText: "orphan value"},
		&types.KeyValuePair{KeyWords: []string{"Key"}, ValueText: ""},
		&types.KeyValuePair{KeyWords: []string{"Kept"}, ValueText: "yes"},
	)

	chunks, err := s.Chunk(block, 1, types.DocumentMetadata{}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].Text != "Kept: yes" {
		t.Fatalf("incomplete pairs must be skipped, got %+v", chunks)
	}
}

func TestKeyValueStrategyLineChildrenBecomeChunks(t *testing.T) {
	s := NewKeyValueStrategy()
	block := keyValueBlock(
		&types.KeyValuePair{KeyWords: []string{"Name"}, ValueText: "Jo"},
		&types.Line{ID: "l1", Text: "Standalone remark"},
		&types.Line{ID: "l2", Text: "   "},
	)

	chunks, err := s.Chunk(block, 1, types.DocumentMetadata{}, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0].Text != "Name: Jo" || chunks[1].Text != "Standalone remark" {
		t.Errorf("texts = %q, %q", chunks[0].Text, chunks[1].Text)
	}
	if chunks[0].ChunkIndex != 2 || chunks[1].ChunkIndex != 3 {
		t.Errorf("indexes = %d, %d, want 2, 3", chunks[0].ChunkIndex, chunks[1].ChunkIndex)
	}
}

func TestKeyValueStrategyIgnoresUnexpectedChildren(t *testing.T) {
	s := NewKeyValueStrategy()
	block := keyValueBlock(
		&types.Table{ID: "t1"},
		&types.KeyValuePair{KeyWords: []string{"Key"}, ValueText: "value"},
	)

	chunks, err := s.Chunk(block, 1, types.DocumentMetadata{}, 0, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(chunks) != 1 || chunks[0].Text != "Key: value" {
		t.Fatalf("unexpected children must be skipped without error, got %+v", chunks)
	}
}
