package server

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/gameid"
	"github.com/lox/roulette/internal/protocol"
)

// Connection represents a WebSocket connection to a client
type Connection struct {
	conn      *websocket.Conn
	send      chan *protocol.Message
	playerID  string
	name      string
	logger    *log.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	mu        sync.RWMutex
	closeOnce sync.Once
	server    *Server
}

// NewConnection creates a new connection wrapper
func NewConnection(conn *websocket.Conn, logger *log.Logger, server *Server) *Connection {
	ctx, cancel := context.WithCancel(context.Background())

	return &Connection{
		conn:   conn,
		send:   make(chan *protocol.Message, 256),
		logger: logger.WithPrefix("conn"),
		ctx:    ctx,
		cancel: cancel,
		server: server,
	}
}

// Start begins handling the connection
func (c *Connection) Start() {
	go c.writePump()
	go c.readPump()
}

// Close closes the connection
func (c *Connection) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.cancel()
		c.mu.Lock()
		close(c.send)
		c.send = nil
		c.mu.Unlock()
		err = c.conn.Close()
	})
	return err
}

// SendMessage queues a message for the client
func (c *Connection) SendMessage(msg *protocol.Message) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.send == nil {
		return ErrConnectionClosed
	}
	select {
	case c.send <- msg:
		return nil
	case <-c.ctx.Done():
		return c.ctx.Err()
	default:
		c.logger.Warn("Connection send buffer full, closing connection")
		go func() { _ = c.Close() }()
		return ErrConnectionClosed
	}
}

// SetPlayer associates this connection with a player
func (c *Connection) SetPlayer(playerID, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.playerID = playerID
	c.name = name
}

// GetPlayer returns the associated player ID
func (c *Connection) GetPlayer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.playerID
}

// Seat returns the player's roster entry.
func (c *Connection) Seat() game.Seat {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return game.Seat{ID: c.playerID, Name: c.name}
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	maxNameLength = 32
)

var (
	ErrConnectionClosed = websocket.ErrCloseSent
)

// readPump handles incoming messages from the client
func (c *Connection) readPump() {
	defer func() { _ = c.Close() }() // Ignore close errors during cleanup

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		var msg protocol.Message
		err := c.conn.ReadJSON(&msg)
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Error("WebSocket error", "error", err)
			}
			break
		}

		c.handleMessage(&msg)
	}
}

// writePump handles outgoing messages to the client
func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	c.mu.RLock()
	send := c.send
	c.mu.RUnlock()
	defer func() {
		ticker.Stop()
		_ = c.conn.Close() // Ignore close errors during cleanup
	}()

	for {
		select {
		case message, ok := <-send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.Error("Failed to write message", "error", err)
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.ctx.Done():
			return
		}
	}
}

// handleMessage processes incoming messages from the client
func (c *Connection) handleMessage(msg *protocol.Message) {
	c.logger.Debug("Received message", "type", msg.Type, "player", c.GetPlayer())

	if msg.Type != protocol.TypeHello && c.GetPlayer() == "" {
		c.sendError("not_authenticated", "Say hello first")
		return
	}

	switch msg.Type {
	case protocol.TypeHello:
		var data protocol.Hello
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "Failed to parse hello data")
			return
		}
		c.handleHello(data)

	case protocol.TypeCreateRoom:
		c.handleCreateRoom()

	case protocol.TypeJoinRoom:
		var data protocol.JoinRoom
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "Failed to parse join room data")
			return
		}
		c.handleJoinRoom(data)

	case protocol.TypeLeaveRoom:
		c.handleLeaveRoom()

	case protocol.TypeKick:
		var data protocol.Kick
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "Failed to parse kick data")
			return
		}
		c.handleKick(data)

	case protocol.TypeStartRoom:
		c.handleStartRoom()

	case protocol.TypePlayDealer:
		c.handlePlayDealer()

	case protocol.TypeAction:
		var data protocol.Action
		if err := msg.Decode(&data); err != nil {
			c.sendError("invalid_message", "Failed to parse action data")
			return
		}
		c.handleAction(data)

	case protocol.TypeGetState:
		c.handleGetState()

	case protocol.TypeForfeit:
		c.handleForfeit()

	default:
		c.sendError("unknown_message_type", "Unknown message type: "+msg.Type.String())
	}
}

// sendError sends an error message to the client
func (c *Connection) sendError(code, message string) {
	errorMsg, err := protocol.NewMessage(protocol.TypeError, protocol.Error{
		Code:    code,
		Message: message,
	})
	if err != nil {
		c.logger.Error("Failed to create error message", "error", err)
		return
	}

	_ = c.SendMessage(errorMsg) // Ignore send errors during error handling
}

func (c *Connection) sendErr(err error) {
	c.sendError(errorCode(err), err.Error())
}

func (c *Connection) handleHello(data protocol.Hello) {
	name := strings.TrimSpace(data.Name)
	c.logger.Info("Hello", "name", name)

	if c.GetPlayer() != "" {
		c.sendError("already_authenticated", "Already said hello")
		return
	}
	if name == "" || len(name) > maxNameLength {
		c.sendError("invalid_name", "Name must be 1-32 characters")
		return
	}

	id := gameid.ParticipantID()
	c.SetPlayer(id, name)

	_ = c.SendMessage(protocol.MustMessage(protocol.TypeWelcome, protocol.Welcome{
		ParticipantID: id,
		Name:          name,
	}))
}

func (c *Connection) inSession() bool {
	_, ok := c.server.sessions.SessionFor(c.GetPlayer())
	return ok
}

func (c *Connection) handleCreateRoom() {
	if c.inSession() {
		c.sendError("already_playing", "Finish your current game first")
		return
	}
	room, err := c.server.lobby.Create(c.Seat())
	if err != nil {
		c.sendErr(err)
		return
	}
	c.server.broadcastRoom(room)
}

func (c *Connection) handleJoinRoom(data protocol.JoinRoom) {
	if c.inSession() {
		c.sendError("already_playing", "Finish your current game first")
		return
	}
	room, err := c.server.lobby.Join(data.Code, c.Seat())
	if err != nil {
		c.sendErr(err)
		return
	}
	c.server.broadcastRoom(room)
}

func (c *Connection) handleLeaveRoom() {
	room, closed, err := c.server.lobby.Leave(c.GetPlayer())
	if err != nil {
		c.sendErr(err)
		return
	}
	_ = c.SendMessage(protocol.MustMessage(protocol.TypeRoomLeft, protocol.RoomLeft{Code: room.Code}))
	if !closed {
		c.server.broadcastRoom(room)
	}
}

func (c *Connection) handleKick(data protocol.Kick) {
	room, err := c.server.lobby.Kick(c.GetPlayer(), data.Participant)
	if err != nil {
		c.sendErr(err)
		return
	}
	_ = c.server.SendToPlayer(data.Participant,
		protocol.MustMessage(protocol.TypeRoomLeft, protocol.RoomLeft{Code: room.Code, Kicked: true}))
	c.server.broadcastRoom(room)
}

func (c *Connection) handleStartRoom() {
	room, err := c.server.lobby.Start(c.GetPlayer())
	if err != nil {
		c.sendErr(err)
		return
	}
	if _, err := c.server.sessions.Create(game.Melee, room.Members); err != nil {
		c.sendErr(err)
	}
}

func (c *Connection) handlePlayDealer() {
	if _, ok := c.server.lobby.RoomOf(c.GetPlayer()); ok {
		c.sendError("in_room", "Leave your room before playing the dealer")
		return
	}
	if _, err := c.server.sessions.Create(game.Duel, []game.Seat{c.Seat()}); err != nil {
		c.sendErr(err)
	}
}

func (c *Connection) handleAction(data protocol.Action) {
	if _, err := c.server.sessions.Submit(c.GetPlayer(), data.ToGame()); err != nil {
		c.sendErr(err)
	}
	// Accepted actions are answered by the engine's events.
}

func (c *Connection) handleGetState() {
	view, err := c.server.sessions.View(c.GetPlayer())
	if err != nil {
		c.sendErr(err)
		return
	}
	_ = c.SendMessage(protocol.MustMessage(protocol.TypeState, protocol.State{View: view}))
}

func (c *Connection) handleForfeit() {
	if err := c.server.sessions.Forfeit(c.GetPlayer()); err != nil {
		c.sendErr(err)
	}
}
