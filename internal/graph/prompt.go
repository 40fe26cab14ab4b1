// Package graph holds the workflow-graph model for ComfyUI prompts and the
// resolution engine that locates and mutates typed nodes within them.
//
// A Prompt is an ordered set of named nodes wired together by links. The
// same logical parameter (seed, prompt text, model, size) lives on
// different node kinds depending on how the workflow author built the
// graph, so callers go through Setters and the read-side getters, which
// resolve the right node with a small set of documented heuristics instead
// of hard-coding graph shape.
package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"iter"
)

// Prompt is a workflow graph: an ordered mapping from node id to node.
// Insertion order is preserved because it determines the scan order for
// unanchored resolution queries. The graph owns its nodes; mutation goes
// through node field handles obtained from Get.
type Prompt struct {
	order []string
	nodes map[string]*entry
}

// entry pairs a decoded node with the parts of its JSON envelope the
// engine does not interpret (the _meta object ComfyUI attaches to nodes).
type entry struct {
	node Node
	meta json.RawMessage
}

// NewPrompt returns an empty workflow graph.
func NewPrompt() *Prompt {
	return &Prompt{nodes: make(map[string]*entry)}
}

// Add appends a node under the given id. Ids are unique within a graph;
// adding a duplicate fails.
func (p *Prompt) Add(id string, n Node) error {
	if p.nodes == nil {
		p.nodes = make(map[string]*entry)
	}
	if _, ok := p.nodes[id]; ok {
		return fmt.Errorf("duplicate node id %q", id)
	}
	p.order = append(p.order, id)
	p.nodes[id] = &entry{node: n}
	return nil
}

// Get returns the node stored under id. Fails with NotFoundError when the
// id is absent. Nodes are stored by pointer, so the returned node is the
// mutable instance owned by the graph.
func (p *Prompt) Get(id string) (Node, error) {
	e, ok := p.nodes[id]
	if !ok {
		return nil, &NotFoundError{ID: id}
	}
	return e.node, nil
}

// Len returns the number of nodes in the graph.
func (p *Prompt) Len() int { return len(p.order) }

// Nodes iterates over (id, node) pairs in insertion order.
func (p *Prompt) Nodes() iter.Seq2[string, Node] {
	return func(yield func(string, Node) bool) {
		for _, id := range p.order {
			if !yield(id, p.nodes[id].node) {
				return
			}
		}
	}
}

// MarshalJSON encodes the graph back into the ComfyUI prompt shape,
// emitting nodes in insertion order.
func (p *Prompt) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, id := range p.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(id)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		e := p.nodes[id]
		inputs, err := encodeInputs(e.node)
		if err != nil {
			return nil, fmt.Errorf("encoding inputs of node %q: %w", id, err)
		}
		buf.WriteString(`{"inputs":`)
		buf.Write(inputs)
		buf.WriteString(`,"class_type":`)
		classType, err := json.Marshal(e.node.Kind())
		if err != nil {
			return nil, err
		}
		buf.Write(classType)
		if len(e.meta) > 0 {
			buf.WriteString(`,"_meta":`)
			buf.Write(e.meta)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// nodeEnvelope is the JSON wrapper around a node's inputs.
type nodeEnvelope struct {
	Inputs    json.RawMessage `json:"inputs"`
	ClassType string          `json:"class_type"`
	Meta      json.RawMessage `json:"_meta,omitempty"`
}

// UnmarshalJSON decodes a ComfyUI prompt document, preserving the node
// order of the source JSON. Unknown class_type tags decode to GenericNode
// so that graphs using nodes outside the typed set still round-trip.
func (p *Prompt) UnmarshalJSON(data []byte) error {
	p.order = nil
	p.nodes = make(map[string]*entry)

	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decoding prompt: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("prompt document must be a JSON object")
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("decoding prompt: %w", err)
		}
		id, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("prompt keys must be strings")
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("decoding node %q: %w", id, err)
		}
		var env nodeEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return fmt.Errorf("decoding node %q: %w", id, err)
		}
		node, err := decodeNode(env.ClassType, env.Inputs)
		if err != nil {
			return fmt.Errorf("decoding node %q inputs: %w", id, err)
		}

		if _, dup := p.nodes[id]; dup {
			return fmt.Errorf("duplicate node id %q", id)
		}
		p.order = append(p.order, id)
		p.nodes[id] = &entry{node: node, meta: env.Meta}
	}

	// Consume the closing brace.
	if _, err := dec.Token(); err != nil {
		return fmt.Errorf("decoding prompt: %w", err)
	}
	return nil
}

// ParsePrompt decodes a ComfyUI prompt JSON document.
func ParsePrompt(data []byte) (*Prompt, error) {
	p := NewPrompt()
	if err := json.Unmarshal(data, p); err != nil {
		return nil, err
	}
	return p, nil
}
