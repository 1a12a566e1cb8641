// Package client connects to a roulette server over WebSocket.
package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/roulette/internal/protocol"
)

// ErrDisconnected is returned once the connection has gone away.
var ErrDisconnected = errors.New("disconnected from server")

// Client represents a WebSocket client for the roulette server. Messages
// are delivered in arrival order through Next.
type Client struct {
	serverURL     string
	conn          *websocket.Conn
	send          chan *protocol.Message
	receive       chan *protocol.Message
	logger        *log.Logger
	ctx           context.Context
	cancel        context.CancelFunc
	mu            sync.RWMutex
	connected     bool
	participantID string
	name          string
	closeOnce     sync.Once
}

// NewClient creates a new WebSocket client
func NewClient(serverURL string, logger *log.Logger) *Client {
	ctx, cancel := context.WithCancel(context.Background())

	return &Client{
		serverURL: serverURL,
		send:      make(chan *protocol.Message, 256),
		receive:   make(chan *protocol.Message, 256),
		logger:    logger.WithPrefix("client"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Connect establishes a WebSocket connection to the server
func (c *Client) Connect(ctx context.Context) error {
	c.logger.Info("Connecting to server", "url", c.serverURL)

	u, err := url.Parse(c.serverURL)
	if err != nil {
		return fmt.Errorf("invalid server URL: %w", err)
	}

	// Convert http/https to ws/wss
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path = "/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.connected = true
	c.mu.Unlock()

	go c.readPump()
	go c.writePump()

	c.logger.Info("Connected to server")
	return nil
}

// Disconnect closes the WebSocket connection
func (c *Client) Disconnect() error {
	c.closeOnce.Do(func() {
		c.cancel()

		c.mu.Lock()
		defer c.mu.Unlock()

		if c.conn != nil {
			_ = c.conn.Close() // Ignore close errors during shutdown
			c.connected = false
		}
		c.logger.Info("Disconnected from server")
	})
	return nil
}

// IsConnected returns whether the client is connected
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// Send queues a message for the server
func (c *Client) Send(typ protocol.MessageType, data any) error {
	msg, err := protocol.NewMessage(typ, data)
	if err != nil {
		return err
	}
	if c.ctx.Err() != nil {
		return ErrDisconnected
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return ErrDisconnected
	default:
		return errors.New("send buffer full")
	}
}

// Next returns the next message from the server.
func (c *Client) Next(ctx context.Context) (*protocol.Message, error) {
	select {
	case msg, ok := <-c.receive:
		if !ok {
			return nil, ErrDisconnected
		}
		return msg, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// WaitFor skips messages until one of the given type arrives. An error
// message from the server ends the wait.
func (c *Client) WaitFor(ctx context.Context, typ protocol.MessageType) (*protocol.Message, error) {
	for {
		msg, err := c.Next(ctx)
		if err != nil {
			return nil, err
		}
		switch msg.Type {
		case typ:
			return msg, nil
		case protocol.TypeError:
			return nil, ServerError(msg)
		}
	}
}

// Hello introduces the client and records the assigned participant id.
func (c *Client) Hello(ctx context.Context, name string) error {
	if err := c.Send(protocol.TypeHello, protocol.Hello{Name: name}); err != nil {
		return err
	}
	msg, err := c.WaitFor(ctx, protocol.TypeWelcome)
	if err != nil {
		return err
	}
	var welcome protocol.Welcome
	if err := msg.Decode(&welcome); err != nil {
		return err
	}

	c.mu.Lock()
	c.participantID = welcome.ParticipantID
	c.name = welcome.Name
	c.mu.Unlock()
	c.logger.Info("Welcomed", "name", welcome.Name, "participant", welcome.ParticipantID)
	return nil
}

// ParticipantID returns the id assigned by the server
func (c *Client) ParticipantID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.participantID
}

// Name returns the accepted display name
func (c *Client) Name() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.name
}

// ServerError converts an error message into a Go error.
func ServerError(msg *protocol.Message) error {
	var e protocol.Error
	if err := msg.Decode(&e); err != nil {
		return fmt.Errorf("undecodable server error: %w", err)
	}
	return fmt.Errorf("server error %s: %s", e.Code, e.Message)
}

// readPump handles incoming messages from the server
func (c *Client) readPump() {
	defer func() {
		c.mu.Lock()
		c.connected = false
		c.mu.Unlock()
		close(c.receive)
	}()

	for {
		var msg protocol.Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			return
		}

		c.logger.Debug("Received message", "type", msg.Type)

		select {
		case c.receive <- &msg:
		case <-c.ctx.Done():
			return
		}
	}
}

// writePump handles outgoing messages to the server
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second) // Ping interval
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}
	}
}
