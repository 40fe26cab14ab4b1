package graph

import "fmt"

// Read-side mirror of the setters: the same resolution heuristics, used to
// inspect the parameters a workflow currently carries.

// PromptText returns the positive prompt text, resolving the text-encode
// node through the single sampler in the graph.
func PromptText(p *Prompt) (string, error) {
	return promptTextFrom(p, "", false)
}

// PromptTextFrom is PromptText scoped by an anchor sampler node.
func PromptTextFrom(p *Prompt, anchor string) (string, error) {
	return promptTextFrom(p, anchor, false)
}

// NegativePromptText returns the negative prompt text.
func NegativePromptText(p *Prompt) (string, error) {
	return promptTextFrom(p, "", true)
}

// NegativePromptTextFrom is NegativePromptText scoped by an anchor sampler node.
func NegativePromptTextFrom(p *Prompt, anchor string) (string, error) {
	return promptTextFrom(p, anchor, true)
}

func promptTextFrom(p *Prompt, anchor string, negative bool) (string, error) {
	id, err := findConditioning(p, anchor, negative)
	if err != nil {
		return "", err
	}
	enc, err := NodeAs[*CLIPTextEncode](p, id)
	if err != nil {
		return "", err
	}
	text, err := enc.Text.Value()
	if err != nil {
		return "", fmt.Errorf("reading text of node %q: %w", id, err)
	}
	return text, nil
}

// ModelName returns the checkpoint name from the single checkpoint-loader
// node in the graph.
func ModelName(p *Prompt) (string, error) {
	id, err := FindByKind[*CheckpointLoaderSimple](p)
	if err != nil {
		return "", err
	}
	loader, err := NodeAs[*CheckpointLoaderSimple](p, id)
	if err != nil {
		return "", err
	}
	name, err := loader.CkptName.Value()
	if err != nil {
		return "", fmt.Errorf("reading ckpt_name of node %q: %w", id, err)
	}
	return name, nil
}

// Size returns the width and height of the single latent-image node in the
// graph.
func Size(p *Prompt) (width, height int64, err error) {
	id, err := FindByKind[*EmptyLatentImage](p)
	if err != nil {
		return 0, 0, err
	}
	latent, err := NodeAs[*EmptyLatentImage](p, id)
	if err != nil {
		return 0, 0, err
	}
	width, err = latent.Width.Value()
	if err != nil {
		return 0, 0, fmt.Errorf("reading width of node %q: %w", id, err)
	}
	height, err = latent.Height.Value()
	if err != nil {
		return 0, 0, fmt.Errorf("reading height of node %q: %w", id, err)
	}
	return width, height, nil
}

// Seed returns the sampler seed, whichever of the recognized sampler kinds
// the workflow uses.
func Seed(p *Prompt) (int64, error) {
	return SeedFrom(p, "")
}

// SeedFrom is Seed scoped by an anchor sampler node.
func SeedFrom(p *Prompt, anchor string) (int64, error) {
	id, _, err := findSampler(p, anchor)
	if err != nil {
		return 0, err
	}
	n, err := p.Get(id)
	if err != nil {
		return 0, err
	}
	switch s := n.(type) {
	case *KSampler:
		seed, err := s.Seed.Value()
		if err != nil {
			return 0, fmt.Errorf("reading seed of node %q: %w", id, err)
		}
		return seed, nil
	case *SamplerCustom:
		seed, err := s.NoiseSeed.Value()
		if err != nil {
			return 0, fmt.Errorf("reading noise_seed of node %q: %w", id, err)
		}
		return seed, nil
	default:
		return 0, &NotFoundError{Kind: KindKSampler, ID: id}
	}
}
