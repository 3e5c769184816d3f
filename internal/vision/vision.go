// Package vision sends menu photos to an OpenAI-compatible vision API
// and parses the structured OCR + translation result.
package vision

import (
	"context"
	"errors"
)

var (
	ErrUnavailable = errors.New("vision api unavailable")
	ErrBadResponse = errors.New("vision api returned an unusable response")
)

// MenuItem is one recognized line of a menu or package.
type MenuItem struct {
	Original    string `json:"original"`
	Reading     string `json:"reading,omitempty"`
	Translation string `json:"translation"`
	Notes       string `json:"notes,omitempty"`
	Price       string `json:"price,omitempty"`
}

// Result is the parsed output for one image.
type Result struct {
	Items      []MenuItem `json:"items"`
	SourceText string     `json:"sourceText,omitempty"`
}

// Analyzer turns a photographed menu into translated items. Implemented
// by Client in production and by stubs in tests and the dev server.
type Analyzer interface {
	Analyze(ctx context.Context, imageBase64 string, targetLanguage string) (*Result, error)
}
