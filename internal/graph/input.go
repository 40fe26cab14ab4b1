package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeRef identifies another node's output: the target node id and the
// index of the output slot. It encodes as the two-element JSON array
// ComfyUI uses for links, e.g. ["4", 0].
type NodeRef struct {
	NodeID string
	Slot   int
}

// MarshalJSON encodes the reference as [id, slot].
func (r NodeRef) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{r.NodeID, r.Slot})
}

// UnmarshalJSON decodes a [id, slot] array.
func (r *NodeRef) UnmarshalJSON(data []byte) error {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("decoding node reference: %w", err)
	}
	if len(parts) != 2 {
		return fmt.Errorf("node reference has %d elements, want 2", len(parts))
	}
	if err := json.Unmarshal(parts[0], &r.NodeID); err != nil {
		return fmt.Errorf("decoding node reference id: %w", err)
	}
	if err := json.Unmarshal(parts[1], &r.Slot); err != nil {
		return fmt.Errorf("decoding node reference slot: %w", err)
	}
	return nil
}

// Input is a value-field slot on a typed node. A populated slot holds
// either a literal value or a link to another node's output; an absent
// slot (nil pointer in the owning struct) was never written by the
// workflow author. The engine never invents values for absent slots.
type Input[T any] struct {
	value *T
	link  *NodeRef
}

// NewValue returns an input slot holding a literal value.
func NewValue[T any](v T) *Input[T] {
	return &Input[T]{value: &v}
}

// NewLink returns an input slot fed by another node's output.
func NewLink[T any](nodeID string, slot int) *Input[T] {
	return &Input[T]{link: &NodeRef{NodeID: nodeID, Slot: slot}}
}

// Value returns the literal value stored in the slot. It fails with
// ErrFieldUnset when the slot is absent or link-fed.
func (in *Input[T]) Value() (T, error) {
	p, err := in.Mutable()
	if err != nil {
		var zero T
		return zero, err
	}
	return *p, nil
}

// Mutable returns a writable handle to the slot's literal value. It fails
// with ErrFieldUnset when the slot is absent or link-fed, so callers can
// never overwrite a link or materialize a value the workflow left out.
// Safe to call on a nil receiver.
func (in *Input[T]) Mutable() (*T, error) {
	if in == nil || in.value == nil || in.link != nil {
		return nil, ErrFieldUnset
	}
	return in.value, nil
}

// SetValue writes a literal value into the slot. Same failure mode as
// Mutable.
func (in *Input[T]) SetValue(v T) error {
	p, err := in.Mutable()
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Link returns the node reference feeding the slot, if any.
func (in *Input[T]) Link() (NodeRef, bool) {
	if in == nil || in.link == nil {
		return NodeRef{}, false
	}
	return *in.link, true
}

// MarshalJSON encodes a link as [id, slot] and a literal as the bare value.
func (in Input[T]) MarshalJSON() ([]byte, error) {
	if in.link != nil {
		return json.Marshal(*in.link)
	}
	if in.value != nil {
		return json.Marshal(*in.value)
	}
	return []byte("null"), nil
}

// UnmarshalJSON decodes either a [id, slot] link array or a literal value.
func (in *Input[T]) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ref NodeRef
		if err := json.Unmarshal(trimmed, &ref); err != nil {
			return err
		}
		in.link = &ref
		in.value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	in.value = &v
	in.link = nil
	return nil
}
