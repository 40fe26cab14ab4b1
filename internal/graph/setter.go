package graph

import (
	"errors"
	"fmt"
)

// Setter resolves a target node in a workflow graph and writes exactly one
// value field on it. A Setter is built from the value to apply, used for a
// single call, and discarded; it keeps no state between calls.
//
// All implementations share the same three entry points:
//
//   - Apply resolves the target with the unanchored heuristics.
//   - ApplyFrom scopes resolution by an anchor node id.
//   - ApplyTo bypasses resolution and writes to the named node directly.
//
// On success exactly one node's field changes; on failure the graph is
// untouched.
type Setter interface {
	Apply(p *Prompt) error
	ApplyFrom(p *Prompt, anchorID string) error
	ApplyTo(p *Prompt, nodeID string) error
}

// TextSetter writes prompt text into the text-encode node feeding a
// sampler's positive conditioning input.
type TextSetter struct {
	Text string
}

func (s TextSetter) Apply(p *Prompt) error { return s.apply(p, "") }

func (s TextSetter) ApplyFrom(p *Prompt, anchorID string) error { return s.apply(p, anchorID) }

func (s TextSetter) apply(p *Prompt, anchor string) error {
	id, err := findConditioning(p, anchor, false)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s TextSetter) ApplyTo(p *Prompt, nodeID string) error {
	enc, err := NodeAs[*CLIPTextEncode](p, nodeID)
	if err != nil {
		return err
	}
	if err := enc.Text.SetValue(s.Text); err != nil {
		return fmt.Errorf("writing text of node %q: %w", nodeID, err)
	}
	return nil
}

// NegativeTextSetter writes prompt text into the text-encode node feeding a
// sampler's negative conditioning input. The field write is delegated to
// TextSetter; only the link followed during resolution differs.
type NegativeTextSetter struct {
	Text string
}

func (s NegativeTextSetter) Apply(p *Prompt) error { return s.apply(p, "") }

func (s NegativeTextSetter) ApplyFrom(p *Prompt, anchorID string) error { return s.apply(p, anchorID) }

func (s NegativeTextSetter) apply(p *Prompt, anchor string) error {
	id, err := findConditioning(p, anchor, true)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s NegativeTextSetter) ApplyTo(p *Prompt, nodeID string) error {
	return TextSetter{Text: s.Text}.ApplyTo(p, nodeID)
}

// ModelSetter writes the checkpoint name on the checkpoint-loader node.
// There is no meaningful anchor for this parameter, so ApplyFrom only
// accepts an anchor that is itself the loader node.
type ModelSetter struct {
	Model string
}

func (s ModelSetter) Apply(p *Prompt) error {
	id, err := FindByKind[*CheckpointLoaderSimple](p)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s ModelSetter) ApplyFrom(p *Prompt, anchorID string) error {
	id, err := FindNode[*CheckpointLoaderSimple](p, anchorID)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s ModelSetter) ApplyTo(p *Prompt, nodeID string) error {
	loader, err := NodeAs[*CheckpointLoaderSimple](p, nodeID)
	if err != nil {
		return err
	}
	if err := loader.CkptName.SetValue(s.Model); err != nil {
		return fmt.Errorf("writing ckpt_name of node %q: %w", nodeID, err)
	}
	return nil
}

// SizeSetter writes the latent canvas dimensions. A zero dimension means
// "leave unspecified" and is skipped, not written; callers set one axis at
// a time by zeroing the other. Both writes are validated before either
// lands so a failure leaves the node untouched.
type SizeSetter struct {
	Width  int64
	Height int64
}

func (s SizeSetter) Apply(p *Prompt) error {
	id, err := FindByKind[*EmptyLatentImage](p)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s SizeSetter) ApplyFrom(p *Prompt, anchorID string) error {
	id, err := FindNode[*EmptyLatentImage](p, anchorID)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s SizeSetter) ApplyTo(p *Prompt, nodeID string) error {
	latent, err := NodeAs[*EmptyLatentImage](p, nodeID)
	if err != nil {
		return err
	}

	var width, height *int64
	if s.Width > 0 {
		width, err = latent.Width.Mutable()
		if err != nil {
			return fmt.Errorf("writing width of node %q: %w", nodeID, err)
		}
	}
	if s.Height > 0 {
		height, err = latent.Height.Mutable()
		if err != nil {
			return fmt.Errorf("writing height of node %q: %w", nodeID, err)
		}
	}
	if width != nil {
		*width = s.Width
	}
	if height != nil {
		*height = s.Height
	}
	return nil
}

// ksamplerSeedSetter writes the seed field of a KSampler node.
type ksamplerSeedSetter struct {
	Seed int64
}

func (s ksamplerSeedSetter) Apply(p *Prompt) error {
	id, err := FindByKind[*KSampler](p)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s ksamplerSeedSetter) ApplyFrom(p *Prompt, anchorID string) error {
	id, err := FindNode[*KSampler](p, anchorID)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s ksamplerSeedSetter) ApplyTo(p *Prompt, nodeID string) error {
	sampler, err := NodeAs[*KSampler](p, nodeID)
	if err != nil {
		return err
	}
	if err := sampler.Seed.SetValue(s.Seed); err != nil {
		return fmt.Errorf("writing seed of node %q: %w", nodeID, err)
	}
	return nil
}

// samplerCustomSeedSetter writes the noise_seed field of a SamplerCustom
// node. Same parameter as ksamplerSeedSetter, different field name.
type samplerCustomSeedSetter struct {
	Seed int64
}

func (s samplerCustomSeedSetter) Apply(p *Prompt) error {
	id, err := FindByKind[*SamplerCustom](p)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s samplerCustomSeedSetter) ApplyFrom(p *Prompt, anchorID string) error {
	id, err := FindNode[*SamplerCustom](p, anchorID)
	if err != nil {
		return err
	}
	return s.ApplyTo(p, id)
}

func (s samplerCustomSeedSetter) ApplyTo(p *Prompt, nodeID string) error {
	sampler, err := NodeAs[*SamplerCustom](p, nodeID)
	if err != nil {
		return err
	}
	if err := sampler.NoiseSeed.SetValue(s.Seed); err != nil {
		return fmt.Errorf("writing noise_seed of node %q: %w", nodeID, err)
	}
	return nil
}

// NewSeedSetter returns a Setter that writes the sampler seed regardless of
// which recognized sampler kind the workflow uses: it tries the KSampler
// field first and falls back to the SamplerCustom field.
func NewSeedSetter(seed int64) Setter {
	return DelegatingSetter{
		First:  ksamplerSeedSetter{Seed: seed},
		Second: samplerCustomSeedSetter{Seed: seed},
	}
}

// DelegatingSetter composes two Setters targeting different node kinds for
// the same logical parameter. The first delegate is attempted in full; on
// any failure the second runs with the same value. First success wins, so
// at most one write ever takes effect. When both fail, the returned error
// carries both causes.
type DelegatingSetter struct {
	First  Setter
	Second Setter
}

func (s DelegatingSetter) Apply(p *Prompt) error {
	return s.delegate(func(d Setter) error { return d.Apply(p) })
}

func (s DelegatingSetter) ApplyFrom(p *Prompt, anchorID string) error {
	return s.delegate(func(d Setter) error { return d.ApplyFrom(p, anchorID) })
}

func (s DelegatingSetter) ApplyTo(p *Prompt, nodeID string) error {
	return s.delegate(func(d Setter) error { return d.ApplyTo(p, nodeID) })
}

func (s DelegatingSetter) delegate(apply func(Setter) error) error {
	firstErr := apply(s.First)
	if firstErr == nil {
		return nil
	}
	secondErr := apply(s.Second)
	if secondErr == nil {
		return nil
	}
	return fmt.Errorf("value could not be set on either candidate kind: %w", errors.Join(firstErr, secondErr))
}
