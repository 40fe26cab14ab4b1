package comfy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/gorilla/websocket"

	"github.com/zjrosen/comfyctl/internal/log"
	"github.com/zjrosen/comfyctl/internal/pubsub"
)

// Update is one execution event from the server's websocket. Fields are
// populated per kind: Node and Progress for progress frames, Node for
// executing frames, empty Node with a PromptID for the final frame.
type Update struct {
	Kind     string
	PromptID string
	Node     string
	Value    int
	Max      int
}

// Done reports whether this update marks the end of a prompt's execution.
// The server signals completion with an executing frame whose node is null.
func (u Update) Done() bool {
	return u.Kind == "executing" && u.Node == ""
}

type wsMessage struct {
	Type string `json:"type"`
	Data struct {
		PromptID string  `json:"prompt_id"`
		Node     *string `json:"node"`
		Value    int     `json:"value"`
		Max      int     `json:"max"`
	} `json:"data"`
}

// Updates subscribes to execution events. The first call dials the
// server's websocket; the returned channel closes when ctx is cancelled.
func (c *Client) Updates(ctx context.Context) (<-chan pubsub.Event[Update], error) {
	conn, err := c.dialWS(ctx)
	if err != nil {
		return nil, err
	}

	go c.readLoop(ctx, conn)

	return c.updates.Subscribe(ctx), nil
}

func (c *Client) dialWS(ctx context.Context) (*websocket.Conn, error) {
	u := *c.baseURL
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"
	u.RawQuery = url.Values{"clientId": {c.clientID.String()}}.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("dialing websocket %s: %w", u.String(), err)
	}
	return conn, nil
}

func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	defer func() { _ = conn.Close() }()

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				log.ErrorErr(log.CatComfy, "websocket read failed", err)
			}
			return
		}
		// Binary frames carry preview images; only text frames carry events.
		if msgType != websocket.TextMessage {
			continue
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Warn(log.CatComfy, "unparseable websocket frame", "error", err)
			continue
		}

		update := Update{
			Kind:     msg.Type,
			PromptID: msg.Data.PromptID,
			Value:    msg.Data.Value,
			Max:      msg.Data.Max,
		}
		if msg.Data.Node != nil {
			update.Node = *msg.Data.Node
		}

		switch msg.Type {
		case "progress":
			c.updates.Publish(pubsub.ProgressEvent, update)
		case "executing":
			if update.Done() {
				c.updates.Publish(pubsub.CompletedEvent, update)
			} else {
				c.updates.Publish(pubsub.ProgressEvent, update)
			}
		case "execution_error":
			c.updates.Publish(pubsub.FailedEvent, update)
		case "status":
			// Queue depth chatter; not tied to a prompt.
		default:
			log.Debug(log.CatComfy, "unhandled websocket event", "type", msg.Type)
		}
	}
}
