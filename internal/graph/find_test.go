package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPrompt assembles a graph from (id, node) pairs, in order.
func buildPrompt(t *testing.T, ids []string, nodes []Node) *Prompt {
	t.Helper()
	p := NewPrompt()
	for i, id := range ids {
		require.NoError(t, p.Add(id, nodes[i]))
	}
	return p
}

func TestFindByKind_SingleMatch(t *testing.T) {
	p := buildPrompt(t,
		[]string{"a", "b", "c"},
		[]Node{
			&CLIPTextEncode{Text: NewValue("x")},
			&CheckpointLoaderSimple{CkptName: NewValue("m")},
			&CLIPTextEncode{Text: NewValue("y")},
		})

	id, err := FindByKind[*CheckpointLoaderSimple](p)
	require.NoError(t, err)
	assert.Equal(t, "b", id)
}

func TestFindByKind_ZeroMatches(t *testing.T) {
	p := buildPrompt(t, []string{"a"}, []Node{&CLIPTextEncode{Text: NewValue("x")}})

	_, err := FindByKind[*KSampler](p)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindByKind_MultipleMatches(t *testing.T) {
	p := buildPrompt(t,
		[]string{"a", "b"},
		[]Node{
			&CLIPTextEncode{Text: NewValue("x")},
			&CLIPTextEncode{Text: NewValue("y")},
		})

	_, err := FindByKind[*CLIPTextEncode](p)
	assert.ErrorIs(t, err, ErrAmbiguous)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFindNode_AnchorVerifiesKind(t *testing.T) {
	p := buildPrompt(t,
		[]string{"a", "b"},
		[]Node{
			&KSampler{Seed: NewValue[int64](1)},
			&CLIPTextEncode{Text: NewValue("x")},
		})

	id, err := FindNode[*KSampler](p, "a")
	require.NoError(t, err)
	assert.Equal(t, "a", id)

	_, err = FindNode[*KSampler](p, "b")
	assert.ErrorIs(t, err, ErrKindMismatch)

	_, err = FindNode[*KSampler](p, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindSampler_AnchoredRejectsNonSampler(t *testing.T) {
	p := buildPrompt(t,
		[]string{"enc", "s"},
		[]Node{
			&CLIPTextEncode{Text: NewValue("x")},
			&KSampler{Positive: &NodeRef{NodeID: "enc", Slot: 0}},
		})

	_, _, err := findSampler(p, "enc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindSampler_UnanchoredFallsBackToSamplerCustom(t *testing.T) {
	p := buildPrompt(t,
		[]string{"s"},
		[]Node{&SamplerCustom{NoiseSeed: NewValue[int64](1)}})

	id, _, err := findSampler(p, "")
	require.NoError(t, err)
	assert.Equal(t, "s", id)
}

func TestFindConditioning_NamedLinksAreDistinct(t *testing.T) {
	p := buildPrompt(t,
		[]string{"pos", "neg", "s"},
		[]Node{
			&CLIPTextEncode{Text: NewValue("good")},
			&CLIPTextEncode{Text: NewValue("bad")},
			&KSampler{
				Positive: &NodeRef{NodeID: "pos", Slot: 0},
				Negative: &NodeRef{NodeID: "neg", Slot: 0},
			},
		})

	id, err := findConditioning(p, "s", false)
	require.NoError(t, err)
	assert.Equal(t, "pos", id)

	id, err = findConditioning(p, "s", true)
	require.NoError(t, err)
	assert.Equal(t, "neg", id)
}

func TestFindConditioning_MissingLinkFails(t *testing.T) {
	p := buildPrompt(t,
		[]string{"s"},
		[]Node{&KSampler{Seed: NewValue[int64](1)}})

	_, err := findConditioning(p, "s", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindConditioning_DanglingLinkFails(t *testing.T) {
	p := buildPrompt(t,
		[]string{"s"},
		[]Node{&KSampler{Positive: &NodeRef{NodeID: "ghost", Slot: 0}}})

	_, err := findConditioning(p, "s", false)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAs_GenericNodeIsNeverATypedKind(t *testing.T) {
	_, err := As[*GenericNode](&KSampler{Seed: NewValue[int64](1)})
	assert.ErrorIs(t, err, ErrKindMismatch)

	p := buildPrompt(t, []string{"a"}, []Node{&KSampler{Seed: NewValue[int64](1)}})
	_, err = FindByKind[*GenericNode](p)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindConditioning_LinkMustLandOnTextEncode(t *testing.T) {
	p := buildPrompt(t,
		[]string{"latent", "s"},
		[]Node{
			&EmptyLatentImage{Width: NewValue[int64](512)},
			&KSampler{Positive: &NodeRef{NodeID: "latent", Slot: 0}},
		})

	_, err := findConditioning(p, "s", false)
	assert.ErrorIs(t, err, ErrKindMismatch)
}
