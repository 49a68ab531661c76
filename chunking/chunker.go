package chunking

import (
	"errors"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/casedocsearch/ingest-be/types"
)

// DocumentChunker walks a parsed document's pages and layout blocks in
// order, dispatches each block to the strategy registered for its type,
// and merges every page's atomic chunks into that page's final chunks.
type DocumentChunker struct {
	cfg        Config
	strategies map[types.LayoutType]Strategy
}

// NewDocumentChunker builds a chunker with the default strategy registry:
// the text strategy for all free-text block kinds, plus the table,
// key-value and list strategies. Figure blocks have no strategy and are
// skipped.
func NewDocumentChunker(cfg Config) *DocumentChunker {
	text := NewTextStrategy(cfg)
	return &DocumentChunker{
		cfg: cfg,
		strategies: map[types.LayoutType]Strategy{
			types.LayoutText:          text,
			types.LayoutHeader:        text,
			types.LayoutTitle:         text,
			types.LayoutSectionHeader: text,
			types.LayoutFooter:        text,
			types.LayoutTable:         NewTableStrategy(cfg),
			types.LayoutKeyValue:      NewKeyValueStrategy(),
			types.LayoutList:          NewListStrategy(),
		},
	}
}

// Chunk converts the parsed document into a ProcessedDocument. Any
// structural failure aborts the whole document: no partial results are
// returned. Metadata is validated before any chunking begins.
func (c *DocumentChunker) Chunk(
	doc *types.Document,
	meta types.DocumentMetadata,
	raw *types.AnalysisPayload,
) (*types.ProcessedDocument, error) {
	if err := meta.Validate(); err != nil {
		return nil, err
	}

	if doc == nil || len(doc.Pages) == 0 {
		return nil, newChunkErrorf("document %s must contain at least one page", meta.DocumentID)
	}

	if raw == nil && c.requiresRawPayload() {
		return nil, newChunkErrorf(
			"document %s is missing the raw analysis payload required by a registered strategy",
			meta.DocumentID,
		)
	}

	var allChunks []types.Chunk
	pages := make([]types.PageRecord, 0, len(doc.Pages))

	for i := range doc.Pages {
		page := &doc.Pages[i]
		log.Debug().Int("page", page.PageNumber).Int("pages", len(doc.Pages)).Msg("chunking page")

		pageChunks, err := c.processPage(page, meta, raw)
		if err != nil {
			log.Error().Err(err).Str("document_id", meta.DocumentID).Msg("error extracting chunks from document")
			var ce *ChunkError
			if errors.As(err, &ce) {
				return nil, err
			}
			return nil, wrapChunkError(err, "error extracting chunks from document %s", meta.DocumentID)
		}

		allChunks = append(allChunks, pageChunks...)
		pages = append(pages, types.PageRecord{
			DocumentID: meta.DocumentID,
			PageNumber: page.PageNumber,
			PageWidth:  page.Width,
			PageHeight: page.Height,
		})
	}

	log.Info().
		Str("document_id", meta.DocumentID).
		Int("chunks", len(allChunks)).
		Int("pages", len(pages)).
		Msg("extracted chunks from document")

	return &types.ProcessedDocument{Chunks: allChunks, Pages: pages, Metadata: meta}, nil
}

// processPage runs the strategies over one page's blocks and merges the
// collected atomic chunks. The running atomic index continues across
// blocks within the page; the merger then assigns page-local indexes
// starting at zero.
func (c *DocumentChunker) processPage(
	page *types.Page,
	meta types.DocumentMetadata,
	raw *types.AnalysisPayload,
) ([]types.Chunk, error) {
	var atomic []types.AtomicChunk
	currentIndex := 0

	for _, block := range page.Blocks {
		strategy, ok := c.strategies[block.Type]
		if !ok || strings.TrimSpace(block.Text) == "" {
			log.Info().
				Str("block_id", block.ID).
				Str("block_type", string(block.Type)).
				Msg("skipping layout block with no strategy or no text")
			continue
		}

		blockChunks, err := strategy.Chunk(block, page.PageNumber, meta, currentIndex, raw)
		if err != nil {
			return nil, err
		}

		atomic = append(atomic, blockChunks...)
		currentIndex += len(blockChunks)
	}

	merger := NewChunkMerger(c.cfg.WordLimit, c.cfg.MaxVerticalGap)
	return merger.Merge(atomic, meta), nil
}

// requiresRawPayload reports whether any registered strategy needs the raw
// analysis payload attached to the document.
func (c *DocumentChunker) requiresRawPayload() bool {
	for _, s := range c.strategies {
		if r, ok := s.(rawPayloadRequirer); ok && r.NeedsRawPayload() {
			return true
		}
	}
	return false
}
