package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/lobby"
	"github.com/lox/roulette/internal/protocol"
	"github.com/lox/roulette/internal/session"
	"golang.org/x/sync/errgroup"
)

// Options configures a Server.
type Options struct {
	Lobby  lobby.Config
	Pacing PacingConfig
	// Clock drives pacing; nil uses the real clock.
	Clock quartz.Clock
	// Seed makes sessions reproducible when set.
	Seed *int64
}

// Server represents the WebSocket server
type Server struct {
	upgrader    websocket.Upgrader
	connections map[*Connection]bool
	register    chan *Connection
	unregister  chan *Connection
	logger      *log.Logger
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	runOnce     sync.Once

	lobby    *lobby.Lobby
	sessions *session.Manager
	pacer    *Pacer
}

// NewServer creates a new WebSocket server
func NewServer(opts Options, logger *log.Logger) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]bool),
		register:    make(chan *Connection),
		unregister:  make(chan *Connection),
		logger:      logger.WithPrefix("server"),
		ctx:         ctx,
		cancel:      cancel,
		lobby:       lobby.New(opts.Lobby, logger),
		pacer:       NewPacer(opts.Clock, opts.Pacing),
	}

	var managerOpts []session.Option
	if opts.Seed != nil {
		managerOpts = append(managerOpts, session.WithSeed(*opts.Seed))
	}
	s.sessions = session.NewManager(s, logger, managerOpts...)
	return s
}

// Handler returns the HTTP handler serving /ws and /health.
func (s *Server) Handler() http.Handler {
	s.runOnce.Do(func() { go s.run() })

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start serves on addr until ctx is cancelled.
func (s *Server) Start(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Stop()
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Stop stops the WebSocket server
func (s *Server) Stop() error {
	s.cancel()

	s.mu.Lock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.Unlock()

	return nil
}

// run handles connection lifecycle
func (s *Server) run() {
	for {
		select {
		case conn := <-s.register:
			s.mu.Lock()
			s.connections[conn] = true
			total := len(s.connections)
			s.mu.Unlock()
			s.logger.Info("Client connected", "total", total)

		case conn := <-s.unregister:
			s.mu.Lock()
			_, ok := s.connections[conn]
			delete(s.connections, conn)
			total := len(s.connections)
			s.mu.Unlock()
			if !ok {
				continue
			}
			_ = conn.Close() // Ignore close errors during unregistration
			s.logger.Info("Client disconnected", "total", total)

			// Leaving a room or a match broadcasts to others, so it runs
			// outside the lifecycle loop.
			if id := conn.GetPlayer(); id != "" {
				go s.cleanup(id)
			}

		case <-s.ctx.Done():
			return
		}
	}
}

// cleanup removes a disconnected player from their room and match.
func (s *Server) cleanup(participantID string) {
	if room, closed, err := s.lobby.Leave(participantID); err == nil && !closed {
		s.broadcastRoom(room)
	}
	s.sessions.Forget(participantID)
	if err := s.sessions.Forfeit(participantID); err != nil && !errors.Is(err, session.ErrNoSession) {
		s.logger.Warn("Forfeit on disconnect failed", "participant", participantID, "error", err)
	}
}

// handleWebSocket handles WebSocket upgrade requests
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	client := NewConnection(conn, s.logger, s)
	select {
	case s.register <- client:
	case <-s.ctx.Done():
		_ = conn.Close()
		return
	}
	client.Start()

	go func() {
		<-client.ctx.Done()
		select {
		case s.unregister <- client:
		case <-s.ctx.Done():
		}
	}()
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// Broadcast implements session.Notifier.
func (s *Server) Broadcast(sessionID string, recipients []string, event game.Event) {
	if err := s.pacer.Wait(s.ctx, event); err != nil {
		return
	}
	msg, err := protocol.NewMessage(protocol.TypeEvent, protocol.Event{SessionID: sessionID, Event: event})
	if err != nil {
		s.logger.Error("Failed to encode event", "type", event.Type, "error", err)
		return
	}

	count := 0
	for _, id := range recipients {
		if err := s.SendToPlayer(id, msg); err == nil {
			count++
		}
	}
	s.logger.Debug("Broadcasted event", "session", sessionID, "type", event.Type, "recipients", count)
}

// Whisper implements session.Notifier.
func (s *Server) Whisper(sessionID, participantID string, event game.Event) {
	if participantID == game.DealerID {
		return
	}
	if err := s.pacer.Wait(s.ctx, event); err != nil {
		return
	}
	msg, err := protocol.NewMessage(protocol.TypeEvent, protocol.Event{SessionID: sessionID, Event: event})
	if err != nil {
		s.logger.Error("Failed to encode event", "type", event.Type, "error", err)
		return
	}
	if err := s.SendToPlayer(participantID, msg); err != nil {
		s.logger.Debug("Whisper dropped", "participant", participantID, "error", err)
	}
}

// broadcastRoom sends the room's state to all its members.
func (s *Server) broadcastRoom(room lobby.Room) {
	msg := protocol.MustMessage(protocol.TypeRoomUpdate, protocol.RoomUpdate{Room: room})
	for _, m := range room.Members {
		_ = s.SendToPlayer(m.ID, msg)
	}
}

// SendToPlayer sends a message to a specific player
func (s *Server) SendToPlayer(playerID string, msg *protocol.Message) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for conn := range s.connections {
		if conn.GetPlayer() == playerID {
			return conn.SendMessage(msg)
		}
	}

	return fmt.Errorf("player not found: %s", playerID)
}

// GetConnectedPlayers returns a list of connected player IDs
func (s *Server) GetConnectedPlayers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var players []string
	for conn := range s.connections {
		if playerID := conn.GetPlayer(); playerID != "" {
			players = append(players, playerID)
		}
	}

	return players
}

// Sessions exposes the session manager.
func (s *Server) Sessions() *session.Manager {
	return s.sessions
}

// Lobby exposes the waiting rooms.
func (s *Server) Lobby() *lobby.Lobby {
	return s.lobby
}
