package collab

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"golang.org/x/time/rate"
)

const (
	writeWait    = 10 * time.Second
	pingPeriod   = 30 * time.Second
	maxMsgSize   = 16 * 1024
	sendBuffer   = 256
	actionBurst  = 20
	actionRefill = 100 * time.Millisecond
)

// Client is one websocket connection attached to a run.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	closeOnce sync.Once

	UserID      string
	DisplayName string
	RunID       string
	ClientID    string
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, runID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		RunID:       runID,
		ClientID:    clientID,
	}
}

// Pump runs the write loop in the background and reads until the connection
// drops, then detaches the client from the hub.
func (c *Client) Pump(ctx context.Context) {
	go c.WritePump(ctx)
	c.ReadPump(ctx)
}

// ReadPump forwards player actions to the hub. Anything that is not an action
// is dropped here, and bursts above actionBurst are throttled.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)
	limiter := newActionLimiter()

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read error", "error", err, "user", c.UserID)
			}
			return
		}

		msg, ok := c.decodeAction(data)
		if !ok {
			continue
		}
		if !limiter.Allow() {
			slog.Warn("action rate exceeded", "user", c.UserID, "run", c.RunID)
			continue
		}
		c.hub.submit(c, msg)
	}
}

// decodeAction parses an inbound frame and stamps it with the sender's ids.
func (c *Client) decodeAction(data []byte) (*Message, bool) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		slog.Warn("invalid message", "error", err, "user", c.UserID)
		return nil, false
	}
	if !strings.HasPrefix(msg.Type, "action.") {
		slog.Debug("ignoring non-action message", "type", msg.Type, "user", c.UserID)
		return nil, false
	}

	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.RunID = c.RunID
	return &msg, true
}

// WritePump drains the send queue to the connection and keeps it alive with pings.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.write(ctx, frame); err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

func (c *Client) write(ctx context.Context, frame []byte) error {
	writeCtx, cancel := context.WithTimeout(ctx, writeWait)
	defer cancel()
	return c.conn.Write(writeCtx, websocket.MessageText, frame)
}

// Send queues a message. It must only be called from the hub goroutine.
// A full queue drops the message; the next state.update carries the full state.
func (c *Client) Send(msg *Message) {
	frame, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case c.send <- frame:
	default:
		slog.Warn("send queue full, dropping message", "user", c.UserID, "type", msg.Type)
	}
}

// Close stops the write pump once its queue drains.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.send) })
}

// newActionLimiter allows bursts of actionBurst, refilled one action per actionRefill.
func newActionLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Every(actionRefill), actionBurst)
}
