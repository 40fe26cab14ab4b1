package comfy

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ImageRef locates a generated image on the server.
type ImageRef struct {
	Filename  string `json:"filename"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

// NodeOutput holds the images a single node produced.
type NodeOutput struct {
	Images []ImageRef `json:"images"`
}

// HistoryEntry is one finished execution in the server's history.
type HistoryEntry struct {
	Outputs map[string]NodeOutput `json:"outputs"`
	Status  struct {
		StatusStr string `json:"status_str"`
		Completed bool   `json:"completed"`
	} `json:"status"`
}

// History fetches the execution record for a prompt id. The record only
// exists once the server has finished (or failed) the prompt.
func (c *Client) History(ctx context.Context, promptID string) (HistoryEntry, error) {
	ctx, span := c.tracer.Start(ctx, "comfy.History",
		trace.WithAttributes(attribute.String("prompt.id", promptID)))
	defer span.End()

	var entries map[string]HistoryEntry
	if err := c.getJSON(ctx, "/history/"+promptID, &entries); err != nil {
		return HistoryEntry{}, err
	}

	entry, ok := entries[promptID]
	if !ok {
		return HistoryEntry{}, fmt.Errorf("no history entry for prompt %q", promptID)
	}
	return entry, nil
}

// Images flattens the entry's outputs into a single list of refs,
// iterating nodes in map order since the server keys outputs by node id.
func (e HistoryEntry) Images() []ImageRef {
	var refs []ImageRef
	for _, out := range e.Outputs {
		refs = append(refs, out.Images...)
	}
	return refs
}

// View downloads an image's bytes from the server.
func (c *Client) View(ctx context.Context, ref ImageRef) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, "comfy.View",
		trace.WithAttributes(attribute.String("image.filename", ref.Filename)))
	defer span.End()

	q := url.Values{}
	q.Set("filename", ref.Filename)
	q.Set("subfolder", ref.Subfolder)
	q.Set("type", ref.Type)

	u := *c.baseURL
	u.Path = "/view"
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %q: %w", ref.Filename, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server returned %s for image %q", resp.Status, ref.Filename)
	}
	return io.ReadAll(resp.Body)
}
