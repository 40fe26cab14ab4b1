package comfy

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zjrosen/comfyctl/internal/graph"
)

// checkpointInput is the loader input whose option list is the installed
// checkpoint files.
const checkpointInput = "ckpt_name"

// Checkpoints lists the model checkpoints installed on the server, as
// reported by the checkpoint loader's object info. Results are cached.
func (c *Client) Checkpoints(ctx context.Context) ([]string, error) {
	return c.objectInfo.Get(ctx, graph.KindCheckpointLoaderSimple, graph.KindCheckpointLoaderSimple, objectInfoTTL)
}

// fetchNodeOptions reads /object_info for a node class and returns the
// option list of one of its required inputs. The checkpoint file input is
// preferred when present; otherwise inputs are tried in name order so the
// pick stays stable when several inputs carry option lists.
func (c *Client) fetchNodeOptions(ctx context.Context, nodeClass string) ([]string, error) {
	ctx, span := c.tracer.Start(ctx, "comfy.ObjectInfo")
	defer span.End()

	var info map[string]struct {
		Input struct {
			Required map[string][]json.RawMessage `json:"required"`
		} `json:"input"`
	}
	if err := c.getJSON(ctx, "/object_info/"+nodeClass, &info); err != nil {
		return nil, err
	}

	node, ok := info[nodeClass]
	if !ok {
		return nil, fmt.Errorf("server has no node class %q", nodeClass)
	}

	if options, ok := optionList(node.Input.Required[checkpointInput]); ok {
		return options, nil
	}

	names := make([]string, 0, len(node.Input.Required))
	for name := range node.Input.Required {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if options, ok := optionList(node.Input.Required[name]); ok {
			return options, nil
		}
	}
	return nil, fmt.Errorf("node class %q has no option inputs", nodeClass)
}

// optionList decodes a required-input tuple. Option inputs encode as
// [["a", "b", ...], {...}]; the first element is the option list. Inputs
// whose first element is a type tag rather than a list are not options.
func optionList(input []json.RawMessage) ([]string, bool) {
	if len(input) == 0 {
		return nil, false
	}
	var options []string
	if err := json.Unmarshal(input[0], &options); err != nil {
		return nil, false
	}
	return options, true
}
