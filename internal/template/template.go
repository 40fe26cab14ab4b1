// Package template provides workflow template management. It supports
// loading and managing both built-in and user-defined workflow graphs.
package template

import (
	"github.com/zjrosen/comfyctl/internal/graph"
)

// Source indicates where a template originated from.
type Source int

const (
	// SourceBuiltIn indicates a template bundled with the application.
	SourceBuiltIn Source = iota
	// SourceUser indicates a template from the user's configuration directory.
	SourceUser
)

// String returns a human-readable representation of the Source.
func (s Source) String() string {
	switch s {
	case SourceBuiltIn:
		return "built-in"
	case SourceUser:
		return "user"
	default:
		return "unknown"
	}
}

// Template is one workflow graph template. The raw JSON is kept so every
// Prompt() call hands out a fresh graph; mutating one generation's graph
// never leaks into the next.
type Template struct {
	// ID is derived from the filename (e.g., "text2img" from "text2img.json").
	ID string

	// Source indicates whether this is a built-in or user-defined template.
	Source Source

	// FilePath is the absolute path for user templates (empty for built-in).
	FilePath string

	raw []byte
}

// Prompt parses the template into a new workflow graph.
func (t Template) Prompt() (*graph.Prompt, error) {
	return graph.ParsePrompt(t.raw)
}
