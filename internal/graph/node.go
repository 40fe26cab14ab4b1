package graph

import "encoding/json"

// Node kind discriminators, matching the ComfyUI class_type tags.
const (
	KindKSampler               = "KSampler"
	KindSamplerCustom          = "SamplerCustom"
	KindCLIPTextEncode         = "CLIPTextEncode"
	KindCheckpointLoaderSimple = "CheckpointLoaderSimple"
	KindEmptyLatentImage       = "EmptyLatentImage"
)

// Node is one processing step in a workflow graph. The set of typed kinds
// is closed: adding one means adding a struct here and a case to decodeNode,
// both checked at compile time. Kinds outside the set round-trip through
// GenericNode untouched.
type Node interface {
	// Kind returns the node's class_type discriminator.
	Kind() string
}

// KSampler is the stock ComfyUI sampler node.
type KSampler struct {
	Seed        *Input[int64]   `json:"seed,omitempty"`
	Steps       *Input[int64]   `json:"steps,omitempty"`
	CFG         *Input[float64] `json:"cfg,omitempty"`
	SamplerName *Input[string]  `json:"sampler_name,omitempty"`
	Scheduler   *Input[string]  `json:"scheduler,omitempty"`
	Denoise     *Input[float64] `json:"denoise,omitempty"`
	Model       *NodeRef        `json:"model,omitempty"`
	Positive    *NodeRef        `json:"positive,omitempty"`
	Negative    *NodeRef        `json:"negative,omitempty"`
	LatentImage *NodeRef        `json:"latent_image,omitempty"`
}

func (n *KSampler) Kind() string { return KindKSampler }

// SamplerCustom is the custom-sampling sampler node. Its seed field is
// named noise_seed, unlike KSampler's seed.
type SamplerCustom struct {
	AddNoise    *Input[bool]    `json:"add_noise,omitempty"`
	NoiseSeed   *Input[int64]   `json:"noise_seed,omitempty"`
	CFG         *Input[float64] `json:"cfg,omitempty"`
	Model       *NodeRef        `json:"model,omitempty"`
	Positive    *NodeRef        `json:"positive,omitempty"`
	Negative    *NodeRef        `json:"negative,omitempty"`
	Sampler     *NodeRef        `json:"sampler,omitempty"`
	Sigmas      *NodeRef        `json:"sigmas,omitempty"`
	LatentImage *NodeRef        `json:"latent_image,omitempty"`
}

func (n *SamplerCustom) Kind() string { return KindSamplerCustom }

// CLIPTextEncode encodes prompt text into conditioning.
type CLIPTextEncode struct {
	Text *Input[string] `json:"text,omitempty"`
	Clip *NodeRef       `json:"clip,omitempty"`
}

func (n *CLIPTextEncode) Kind() string { return KindCLIPTextEncode }

// CheckpointLoaderSimple loads a model checkpoint by name.
type CheckpointLoaderSimple struct {
	CkptName *Input[string] `json:"ckpt_name,omitempty"`
}

func (n *CheckpointLoaderSimple) Kind() string { return KindCheckpointLoaderSimple }

// EmptyLatentImage allocates the latent canvas the sampler draws on.
type EmptyLatentImage struct {
	Width     *Input[int64] `json:"width,omitempty"`
	Height    *Input[int64] `json:"height,omitempty"`
	BatchSize *Input[int64] `json:"batch_size,omitempty"`
}

func (n *EmptyLatentImage) Kind() string { return KindEmptyLatentImage }

// GenericNode carries a node of a kind the engine does not type. Its
// inputs are kept as raw JSON so unknown nodes survive a decode/encode
// round trip byte-for-byte. Generic nodes are never resolution targets.
type GenericNode struct {
	ClassType string
	Inputs    json.RawMessage
}

// Kind returns the stored class_type tag. A GenericNode carries no fixed
// tag, so the nil node used as a type argument to As or FindByKind reports
// an empty kind instead of panicking; it can never match a typed node.
func (n *GenericNode) Kind() string {
	if n == nil {
		return ""
	}
	return n.ClassType
}

// decodeNode builds a typed node from a class_type tag and its raw inputs.
// The switch is the single exhaustive mapping from tags to kinds.
func decodeNode(classType string, inputs json.RawMessage) (Node, error) {
	var n Node
	switch classType {
	case KindKSampler:
		n = &KSampler{}
	case KindSamplerCustom:
		n = &SamplerCustom{}
	case KindCLIPTextEncode:
		n = &CLIPTextEncode{}
	case KindCheckpointLoaderSimple:
		n = &CheckpointLoaderSimple{}
	case KindEmptyLatentImage:
		n = &EmptyLatentImage{}
	default:
		return &GenericNode{ClassType: classType, Inputs: inputs}, nil
	}
	if len(inputs) > 0 {
		if err := json.Unmarshal(inputs, n); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// encodeInputs serializes a node's inputs object.
func encodeInputs(n Node) (json.RawMessage, error) {
	if g, ok := n.(*GenericNode); ok {
		if len(g.Inputs) == 0 {
			return json.RawMessage("{}"), nil
		}
		return g.Inputs, nil
	}
	return json.Marshal(n)
}

// As downcasts a generic Node to a concrete kind. It fails with a
// KindMismatchError when the stored kind differs from the requested one.
func As[T Node](n Node) (T, error) {
	t, ok := n.(T)
	if !ok {
		var zero T
		return zero, &KindMismatchError{Want: zero.Kind(), Got: n.Kind()}
	}
	return t, nil
}
