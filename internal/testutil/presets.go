package testutil

import (
	"testing"

	"github.com/zjrosen/comfyctl/internal/graph"
)

// Text2ImgPrompt builds the canonical KSampler text-to-image graph: loader,
// latent canvas, two text encoders, sampler. Node ids match the stock
// ComfyUI template so anchored tests can reference them directly.
func Text2ImgPrompt(t *testing.T) *graph.Prompt {
	t.Helper()
	return NewPromptBuilder(t).
		WithNode("3", &graph.KSampler{
			Seed:        graph.NewValue[int64](42),
			Steps:       graph.NewValue[int64](20),
			CFG:         graph.NewValue(8.0),
			SamplerName: graph.NewValue("euler"),
			Scheduler:   graph.NewValue("normal"),
			Denoise:     graph.NewValue(1.0),
			Model:       &graph.NodeRef{NodeID: "4", Slot: 0},
			Positive:    &graph.NodeRef{NodeID: "6", Slot: 0},
			Negative:    &graph.NodeRef{NodeID: "7", Slot: 0},
			LatentImage: &graph.NodeRef{NodeID: "5", Slot: 0},
		}).
		WithNode("4", &graph.CheckpointLoaderSimple{
			CkptName: graph.NewValue("v1-5-pruned-emaonly.safetensors"),
		}).
		WithNode("5", &graph.EmptyLatentImage{
			Width:     graph.NewValue[int64](512),
			Height:    graph.NewValue[int64](512),
			BatchSize: graph.NewValue[int64](1),
		}).
		WithNode("6", &graph.CLIPTextEncode{
			Text: graph.NewValue("a photo of a cat"),
			Clip: &graph.NodeRef{NodeID: "4", Slot: 1},
		}).
		WithNode("7", &graph.CLIPTextEncode{
			Text: graph.NewValue("blurry, low quality"),
			Clip: &graph.NodeRef{NodeID: "4", Slot: 1},
		}).
		Build()
}

// SamplerCustomPrompt builds a custom-sampling graph where the seed lives
// on a SamplerCustom node's noise_seed field.
func SamplerCustomPrompt(t *testing.T) *graph.Prompt {
	t.Helper()
	return NewPromptBuilder(t).
		WithNode("13", &graph.SamplerCustom{
			AddNoise:    graph.NewValue(true),
			NoiseSeed:   graph.NewValue[int64](7),
			CFG:         graph.NewValue(8.0),
			Model:       &graph.NodeRef{NodeID: "4", Slot: 0},
			Positive:    &graph.NodeRef{NodeID: "6", Slot: 0},
			Negative:    &graph.NodeRef{NodeID: "7", Slot: 0},
			Sampler:     &graph.NodeRef{NodeID: "14", Slot: 0},
			Sigmas:      &graph.NodeRef{NodeID: "22", Slot: 0},
			LatentImage: &graph.NodeRef{NodeID: "5", Slot: 0},
		}).
		WithNode("4", &graph.CheckpointLoaderSimple{
			CkptName: graph.NewValue("v1-5-pruned-emaonly.safetensors"),
		}).
		WithNode("5", &graph.EmptyLatentImage{
			Width:     graph.NewValue[int64](512),
			Height:    graph.NewValue[int64](512),
			BatchSize: graph.NewValue[int64](1),
		}).
		WithNode("6", &graph.CLIPTextEncode{
			Text: graph.NewValue("a photo of a cat"),
			Clip: &graph.NodeRef{NodeID: "4", Slot: 1},
		}).
		WithNode("7", &graph.CLIPTextEncode{
			Text: graph.NewValue("blurry, low quality"),
			Clip: &graph.NodeRef{NodeID: "4", Slot: 1},
		}).
		Build()
}
