// Package comfy is a client for the ComfyUI HTTP and websocket APIs. It
// queues workflow graphs, follows execution progress, and retrieves the
// generated images.
package comfy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/comfyctl/internal/cache"
	"github.com/zjrosen/comfyctl/internal/graph"
	"github.com/zjrosen/comfyctl/internal/log"
	"github.com/zjrosen/comfyctl/internal/pubsub"
)

const objectInfoTTL = 10 * time.Minute

// Client talks to a single ComfyUI server. The client id is generated once
// per Client and sent with every queued prompt so websocket updates can be
// correlated back to this process.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	clientID uuid.UUID
	tracer   trace.Tracer

	objectInfo *cache.ReadThrough[string, []string, string]
	updates    *pubsub.Broker[Update]
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTracer sets the tracer used for request spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) { c.tracer = tracer }
}

// WithClientID overrides the generated client id.
func WithClientID(id uuid.UUID) Option {
	return func(c *Client) { c.clientID = id }
}

// NewClient creates a client for the ComfyUI server at baseURL,
// e.g. "http://localhost:8188".
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing server url %q: %w", baseURL, err)
	}

	c := &Client{
		baseURL:  u,
		http:     &http.Client{Timeout: 2 * time.Minute},
		clientID: uuid.New(),
		tracer:   noop.NewTracerProvider().Tracer("comfy"),
		updates:  pubsub.NewBroker[Update](),
	}
	for _, opt := range opts {
		opt(c)
	}

	manager := cache.NewInMemoryManager[string, []string]("object-info", cache.DefaultExpiration, cache.DefaultCleanupInterval)
	c.objectInfo = cache.NewReadThrough[string, []string, string](manager, c.fetchNodeOptions, false)

	return c, nil
}

// ClientID returns the id this client registers with the server.
func (c *Client) ClientID() uuid.UUID { return c.clientID }

// QueueResponse is the server's acknowledgement of a queued prompt.
type QueueResponse struct {
	PromptID   string          `json:"prompt_id"`
	Number     int             `json:"number"`
	NodeErrors json.RawMessage `json:"node_errors,omitempty"`
}

type promptRequest struct {
	Prompt   *graph.Prompt `json:"prompt"`
	ClientID uuid.UUID     `json:"client_id"`
}

// QueuePrompt submits a workflow graph for execution and returns the
// server-assigned prompt id.
func (c *Client) QueuePrompt(ctx context.Context, p *graph.Prompt) (QueueResponse, error) {
	ctx, span := c.tracer.Start(ctx, "comfy.QueuePrompt",
		trace.WithAttributes(attribute.Int("prompt.nodes", p.Len())))
	defer span.End()

	var resp QueueResponse
	err := c.postJSON(ctx, "/prompt", promptRequest{Prompt: p, ClientID: c.clientID}, &resp)
	if err != nil {
		return QueueResponse{}, err
	}

	log.Info(log.CatComfy, "prompt queued", "promptID", resp.PromptID, "number", resp.Number)
	span.SetAttributes(attribute.String("prompt.id", resp.PromptID))
	return resp, nil
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sending request to %s: %w", req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %s for %s: %s", resp.Status, req.URL.Path, text)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response from %s: %w", req.URL.Path, err)
	}
	return nil
}

func (c *Client) endpoint(path string) string {
	u := *c.baseURL
	u.Path = path
	return u.String()
}
