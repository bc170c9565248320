package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// Metadata describes an ingested brand document.
type Metadata struct {
	Source    string `json:"source"`             // file path, upload name or URL
	Format    Format `json:"format"`             // detected document format
	Timestamp string `json:"timestamp"`          // RFC3339
	Hash      string `json:"hash"`               // SHA256 of the cleaned text
	Pages     int    `json:"pages,omitempty"`    // PDF pages read
	Skipped   int    `json:"skipped,omitempty"`  // PDF pages that yielded no text
	Rendered  bool   `json:"rendered,omitempty"` // text came from a headless browser
	Chars     int    `json:"chars"`              // length of the cleaned text
}

// NewMetadata creates Metadata for cleaned text with the current timestamp.
func NewMetadata(content, source string, format Format) *Metadata {
	return &Metadata{
		Source:    source,
		Format:    format,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      computeHash(content),
		Chars:     len(content),
	}
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}

// ToJSON marshals Metadata to pretty-printed JSON.
func (m *Metadata) ToJSON() ([]byte, error) {
	jsonBytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal metadata to JSON: %w", err)
	}
	return jsonBytes, nil
}
