package comfy

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/zjrosen/comfyctl/internal/graph"
	"github.com/zjrosen/comfyctl/internal/log"
	"github.com/zjrosen/comfyctl/internal/pubsub"
)

// Image is one generated image with its bytes already downloaded.
type Image struct {
	Ref  ImageRef
	Data []byte
}

// Progress reports sampling progress for a running generation.
type Progress struct {
	PromptID string
	Node     string
	Value    int
	Max      int
}

// Result is a finished generation: the server-assigned prompt id and the
// images the run produced.
type Result struct {
	PromptID string
	Images   []Image
}

// Generate queues a workflow and blocks until the server finishes it, then
// downloads every image the run produced. When onProgress is non-nil it is
// called for each progress frame belonging to this prompt.
func (c *Client) Generate(ctx context.Context, p *graph.Prompt, onProgress func(Progress)) (Result, error) {
	ctx, span := c.tracer.Start(ctx, "comfy.Generate")
	defer span.End()

	// Subscribe before queueing so no frame can slip past between the
	// POST and the first read.
	updates, err := c.Updates(ctx)
	if err != nil {
		return Result{}, err
	}

	queued, err := c.QueuePrompt(ctx, p)
	if err != nil {
		return Result{}, err
	}
	span.SetAttributes(attribute.String("prompt.id", queued.PromptID))

	if err := c.waitForCompletion(ctx, updates, queued.PromptID, onProgress); err != nil {
		return Result{}, err
	}

	entry, err := c.History(ctx, queued.PromptID)
	if err != nil {
		return Result{}, err
	}

	refs := entry.Images()
	images := make([]Image, 0, len(refs))
	for _, ref := range refs {
		data, err := c.View(ctx, ref)
		if err != nil {
			return Result{}, fmt.Errorf("fetching image %q: %w", ref.Filename, err)
		}
		images = append(images, Image{Ref: ref, Data: data})
	}

	log.Info(log.CatComfy, "generation finished", "promptID", queued.PromptID, "images", len(images))
	span.SetAttributes(attribute.Int("images.count", len(images)))
	return Result{PromptID: queued.PromptID, Images: images}, nil
}

func (c *Client) waitForCompletion(ctx context.Context, updates <-chan pubsub.Event[Update], promptID string, onProgress func(Progress)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-updates:
			if !ok {
				return fmt.Errorf("update stream closed before prompt %q finished", promptID)
			}
			u := event.Payload
			if u.PromptID != "" && u.PromptID != promptID {
				continue
			}
			switch event.Type {
			case pubsub.FailedEvent:
				return fmt.Errorf("prompt %q failed on node %q", promptID, u.Node)
			case pubsub.CompletedEvent:
				return nil
			case pubsub.ProgressEvent:
				if onProgress != nil && u.Kind == "progress" {
					onProgress(Progress{PromptID: promptID, Node: u.Node, Value: u.Value, Max: u.Max})
				}
			}
		}
	}
}
