package types

// IngestRequest carries the caller-supplied identity of a document to be
// ingested, alongside the uploaded file itself.
type IngestRequest struct {
	SourceFileName     string `json:"source_file_name"`
	CaseRef            string `json:"case_ref"`
	ReceivedDate       string `json:"received_date"`
	CorrespondenceType string `json:"correspondence_type"`
}

// SearchRequest is a chunk search over the index.
type SearchRequest struct {
	Query   string `json:"query"`
	CaseRef string `json:"case_ref,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}
