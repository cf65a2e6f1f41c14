// Package search provides full-text search over stored documents:
// Meilisearch when configured and healthy, PostgreSQL FTS otherwise.
package search

// Result is a single search hit returned to the caller.
type Result struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Query describes a search request.
type Query struct {
	Text   string
	Limit  int
	Offset int
}

// Response is the envelope returned by the search endpoint.
type Response struct {
	Results []Result `json:"results"`
	Total   int      `json:"total"`
	Query   string   `json:"query"`
}

// Searcher can execute a full-text search.
type Searcher interface {
	Search(q Query) ([]Result, int, error)
	Healthy() bool
}

// DocumentRecord is the data indexed per document. IssueCount is the issue
// total from the document's last analysis, surfaced so writers can find
// drafts that still need attention.
type DocumentRecord struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PlainText  string `json:"plainText"`
	IssueCount int    `json:"issueCount"`
}
