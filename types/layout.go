package types

// LayoutType classifies a layout block as reported by the document
// analysis service.
type LayoutType string

const (
	LayoutText          LayoutType = "LAYOUT_TEXT"
	LayoutHeader        LayoutType = "LAYOUT_HEADER"
	LayoutTitle         LayoutType = "LAYOUT_TITLE"
	LayoutSectionHeader LayoutType = "LAYOUT_SECTION_HEADER"
	LayoutFooter        LayoutType = "LAYOUT_FOOTER"
	LayoutTable         LayoutType = "LAYOUT_TABLE"
	LayoutKeyValue      LayoutType = "LAYOUT_KEY_VALUE"
	LayoutList          LayoutType = "LAYOUT_LIST"
	LayoutFigure        LayoutType = "LAYOUT_FIGURE"
)

// BlockChild is the union of child element kinds a layout block can carry.
// Children are owned exclusively by their parent block; the analysis
// service produces them once and they are treated as read-only afterwards.
type BlockChild interface {
	isBlockChild()
}

// Line is a single text line with its geometry.
type Line struct {
	ID         string
	Text       string
	BBox       BoundingBox
	Confidence float64
}

func (*Line) isBlockChild() {}

// TableCell is a single grid cell. The upstream service expresses a merged
// grid cell as repeated cells sharing identical text and geometry, so
// consumers must deduplicate exact text repeats within a row.
type TableCell struct {
	ID       string
	RowIndex int
	ColIndex int
	Text     string
	BBox     BoundingBox
}

// Table groups the grid cells of a cell-structured table block.
type Table struct {
	ID    string
	Cells []TableCell
	BBox  BoundingBox
}

func (*Table) isBlockChild() {}

// KeyValuePair is a form field: the key as its ordered words plus the
// value text.
type KeyValuePair struct {
	KeyWords  []string
	ValueText string
	BBox      BoundingBox
}

func (*KeyValuePair) isBlockChild() {}

// LayoutBlock is one classified region of a page. Depending on Type its
// children are lines, tables, key-value pairs or nested sub-blocks.
type LayoutBlock struct {
	ID         string
	Type       LayoutType
	Text       string
	BBox       BoundingBox
	Confidence float64
	Children   []BlockChild
}

func (*LayoutBlock) isBlockChild() {}

// Page holds the layout blocks of one page in reading order.
type Page struct {
	PageNumber int
	Width      float64
	Height     float64
	Blocks     []*LayoutBlock
}

// Document is the parsed output of the analysis service: ordered pages of
// ordered layout blocks with normalized geometry.
type Document struct {
	Pages []Page
}
