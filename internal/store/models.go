package store

import (
	"encoding/json"
	"time"
)

// Document is a stored rich document: the body is the editor's ProseMirror
// JSON, PlainText is the projection cached for full-text search.
type Document struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Doc       json.RawMessage `json:"doc"`
	PlainText string          `json:"plainText"`
	UpdatedAt time.Time       `json:"updatedAt"`
}
