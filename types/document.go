package types

import "fmt"

// ValidationError reports malformed document metadata. It is raised before
// any chunking starts and is never recovered locally.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid document metadata: %s %s", e.Field, e.Reason)
}

// DocumentMetadata carries the caller-supplied identity of a document being
// ingested. It is immutable once validated.
type DocumentMetadata struct {
	DocumentID         string `json:"document_id"`
	SourceFileName     string `json:"source_file_name"`
	PageCount          int    `json:"page_count"`
	CaseRef            string `json:"case_ref,omitempty"`
	ReceivedDate       string `json:"received_date,omitempty"` // ISO date, e.g. 2025-06-30
	CorrespondenceType string `json:"correspondence_type,omitempty"`
}

// Validate enforces the metadata invariants. Chunking must not begin when
// this returns an error.
func (m DocumentMetadata) Validate() error {
	if m.DocumentID == "" {
		return &ValidationError{Field: "document_id", Reason: "must not be empty"}
	}
	if m.SourceFileName == "" {
		return &ValidationError{Field: "source_file_name", Reason: "must not be empty"}
	}
	if m.PageCount <= 0 {
		return &ValidationError{Field: "page_count", Reason: "must be greater than zero"}
	}
	return nil
}

// PageRecord is a single page's entry in the processed output, used by the
// front end to render page images alongside search hits.
type PageRecord struct {
	DocumentID   string  `json:"document_id"`
	PageNumber   int     `json:"page_num"`
	PageImageURI string  `json:"page_image_uri,omitempty"`
	Text         string  `json:"text,omitempty"`
	PageWidth    float64 `json:"page_width"`
	PageHeight   float64 `json:"page_height"`
}

// ProcessedDocument is the chunking engine's sole output: the merged
// chunks, one record per page, and the metadata they were built from.
type ProcessedDocument struct {
	Chunks   []Chunk          `json:"chunks"`
	Pages    []PageRecord     `json:"pages"`
	Metadata DocumentMetadata `json:"metadata"`
}
