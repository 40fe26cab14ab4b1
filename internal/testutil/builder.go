// Package testutil provides test helpers for constructing workflow graphs.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/comfyctl/internal/graph"
)

// PromptBuilder accumulates nodes and builds a workflow graph with them in
// insertion order.
type PromptBuilder struct {
	t     *testing.T
	ids   []string
	nodes []graph.Node
}

// NewPromptBuilder creates a builder bound to the given test.
func NewPromptBuilder(t *testing.T) *PromptBuilder {
	t.Helper()
	return &PromptBuilder{t: t}
}

// WithNode appends a node under the given id.
func (b *PromptBuilder) WithNode(id string, n graph.Node) *PromptBuilder {
	b.ids = append(b.ids, id)
	b.nodes = append(b.nodes, n)
	return b
}

// Build assembles the graph, failing the test on duplicate ids.
func (b *PromptBuilder) Build() *graph.Prompt {
	b.t.Helper()
	p := graph.NewPrompt()
	for i, id := range b.ids {
		require.NoError(b.t, p.Add(id, b.nodes[i]))
	}
	return p
}
