package graph

// Resolution heuristics. Two query modes exist:
//
//   - Unanchored: scan the whole graph in insertion order for the requested
//     kind. Exactly one match resolves; zero matches fail with ErrNotFound
//     and two or more with ErrAmbiguous, because the caller has no
//     unambiguous target and must supply an anchor or a concrete node id.
//
//   - Anchored: a caller-supplied anchor node is verified to be of the
//     requested kind (for sampler-shaped parameters the anchor *is* the
//     target), or used as the start of a single named-link hop (for
//     conditioning text, where the sampler's positive and negative links
//     must not be confused).
//
// The two steps are kept as separate functions so the fallback order is
// visible at the call site and testable independently of any parameter.

// FindByKind returns the id of the single node of kind T in the graph.
func FindByKind[T Node](p *Prompt) (string, error) {
	var zero T
	kind := zero.Kind()

	var found []string
	for id, n := range p.Nodes() {
		if n.Kind() == kind {
			found = append(found, id)
		}
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return "", &NotFoundError{Kind: kind}
	default:
		return "", &AmbiguousError{Kind: kind, Count: len(found)}
	}
}

// NodeAs fetches the node stored under id and downcasts it to kind T.
func NodeAs[T Node](p *Prompt, id string) (T, error) {
	n, err := p.Get(id)
	if err != nil {
		var zero T
		return zero, err
	}
	t, err := As[T](n)
	if err != nil {
		var zero T
		kerr := err.(*KindMismatchError)
		kerr.ID = id
		return zero, kerr
	}
	return t, nil
}

// FindNode resolves the id of a kind-T node, scoped by an optional anchor.
// With an anchor it verifies the anchor itself is of kind T; without one it
// falls back to the unanchored scan. This is the implicit-anchor step the
// setters build on.
func FindNode[T Node](p *Prompt, anchor string) (string, error) {
	if anchor == "" {
		return FindByKind[T](p)
	}
	if _, err := NodeAs[T](p, anchor); err != nil {
		return "", err
	}
	return anchor, nil
}

// samplerLinks exposes the conditioning links shared by the recognized
// sampler kinds.
type samplerLinks struct {
	positive *NodeRef
	negative *NodeRef
}

// findSampler resolves a sampler node: the anchor when given (it must be
// one of the recognized sampler kinds), otherwise the single sampler found
// by the unanchored scan, trying KSampler before SamplerCustom.
func findSampler(p *Prompt, anchor string) (string, samplerLinks, error) {
	resolve := func(id string) (samplerLinks, error) {
		n, err := p.Get(id)
		if err != nil {
			return samplerLinks{}, err
		}
		switch s := n.(type) {
		case *KSampler:
			return samplerLinks{positive: s.Positive, negative: s.Negative}, nil
		case *SamplerCustom:
			return samplerLinks{positive: s.Positive, negative: s.Negative}, nil
		default:
			return samplerLinks{}, &NotFoundError{Kind: KindKSampler, ID: id}
		}
	}

	if anchor != "" {
		links, err := resolve(anchor)
		if err != nil {
			return "", samplerLinks{}, err
		}
		return anchor, links, nil
	}

	id, err := FindByKind[*KSampler](p)
	if err != nil {
		id, err = FindByKind[*SamplerCustom](p)
	}
	if err != nil {
		return "", samplerLinks{}, err
	}
	links, err := resolve(id)
	if err != nil {
		return "", samplerLinks{}, err
	}
	return id, links, nil
}

// findConditioning resolves the text-encode node feeding a sampler's
// positive or negative conditioning input. The link is named, not guessed:
// "the node supplying positive conditioning" and "the node supplying
// negative conditioning" are distinct even when both land on the same kind.
func findConditioning(p *Prompt, anchor string, negative bool) (string, error) {
	_, links, err := findSampler(p, anchor)
	if err != nil {
		return "", err
	}
	ref := links.positive
	if negative {
		ref = links.negative
	}
	if ref == nil {
		return "", &NotFoundError{Kind: KindCLIPTextEncode}
	}
	// Verify the link lands on a text-encode node.
	if _, err := NodeAs[*CLIPTextEncode](p, ref.NodeID); err != nil {
		return "", err
	}
	return ref.NodeID, nil
}
