package types

// Block types appearing in the raw analysis payload.
const (
	BlockTypePage        = "PAGE"
	BlockTypeLine        = "LINE"
	BlockTypeWord        = "WORD"
	BlockTypeTable       = "TABLE"
	BlockTypeCell        = "CELL"
	BlockTypeKeyValueSet = "KEY_VALUE_SET"
)

// Relationship and entity type markers used in the payload graph.
const (
	RelationshipChild = "CHILD"
	RelationshipValue = "VALUE"
	EntityTypeKey     = "KEY"
	EntityTypeValue   = "VALUE"
)

// AnalysisGeometry carries the normalized bounding box of a raw block, in
// the analysis service's wire casing.
type AnalysisGeometry struct {
	BoundingBox struct {
		Width  float64 `json:"Width"`
		Height float64 `json:"Height"`
		Left   float64 `json:"Left"`
		Top    float64 `json:"Top"`
	} `json:"BoundingBox"`
}

// BBox converts the wire geometry into the engine's bounding box type.
func (g AnalysisGeometry) BBox() BoundingBox {
	return BoundingBox{
		Left:   g.BoundingBox.Left,
		Top:    g.BoundingBox.Top,
		Width:  g.BoundingBox.Width,
		Height: g.BoundingBox.Height,
	}
}

// AnalysisRelationship links a block to related block ids, e.g. its
// children or the value set of a form key.
type AnalysisRelationship struct {
	Type string   `json:"Type"`
	IDs  []string `json:"Ids"`
}

// AnalysisBlock is one node of the raw block/relationship graph returned
// by the document analysis service.
type AnalysisBlock struct {
	ID            string                 `json:"Id"`
	BlockType     string                 `json:"BlockType"`
	Text          string                 `json:"Text,omitempty"`
	Confidence    float64                `json:"Confidence,omitempty"`
	Page          int                    `json:"Page,omitempty"`
	EntityTypes   []string               `json:"EntityTypes,omitempty"`
	RowIndex      int                    `json:"RowIndex,omitempty"`
	ColumnIndex   int                    `json:"ColumnIndex,omitempty"`
	Geometry      AnalysisGeometry       `json:"Geometry"`
	Relationships []AnalysisRelationship `json:"Relationships,omitempty"`
}

// ChildIDs returns the ids listed under the block's CHILD relationships.
func (b *AnalysisBlock) ChildIDs() []string {
	var ids []string
	for _, rel := range b.Relationships {
		if rel.Type == RelationshipChild {
			ids = append(ids, rel.IDs...)
		}
	}
	return ids
}

// RelatedIDs returns the ids listed under relationships of the given type.
func (b *AnalysisBlock) RelatedIDs(relType string) []string {
	var ids []string
	for _, rel := range b.Relationships {
		if rel.Type == relType {
			ids = append(ids, rel.IDs...)
		}
	}
	return ids
}

// AnalysisPayload is the raw output of the document analysis service: a
// flat list of blocks wired together by id references. The chunking engine
// only needs it to compensate for lines the parsed representation drops.
type AnalysisPayload struct {
	DocumentMetadata struct {
		Pages int `json:"Pages"`
	} `json:"DocumentMetadata"`
	Blocks []AnalysisBlock `json:"Blocks"`
}

// BlockMap indexes the payload's blocks by id.
func (p *AnalysisPayload) BlockMap() map[string]*AnalysisBlock {
	m := make(map[string]*AnalysisBlock, len(p.Blocks))
	for i := range p.Blocks {
		m[p.Blocks[i].ID] = &p.Blocks[i]
	}
	return m
}
