// Package session keeps the live game sessions of a server and serialises
// every action per session.
package session

import (
	"errors"
	"fmt"
	"io"
	rand "math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/gameid"
	"github.com/lox/roulette/internal/randutil"
)

var (
	ErrNoSession      = errors.New("no active session")
	ErrAlreadyPlaying = errors.New("already in a session")
)

// Notifier delivers engine events to players. Broadcast goes to every
// human of the session; Whisper to a single participant. Calls for one
// session never overlap and arrive in engine order.
type Notifier interface {
	Broadcast(sessionID string, recipients []string, event game.Event)
	Whisper(sessionID, participantID string, event game.Event)
}

// Option configures a Manager.
type Option func(*Manager)

// WithSeed makes every session reproducible: the n-th session created uses
// a child seed derived from seed.
func WithSeed(seed int64) Option {
	return func(m *Manager) {
		var n atomic.Int64
		m.newRand = func() *rand.Rand {
			return randutil.New(randutil.Derive(seed, int(n.Add(1))))
		}
	}
}

// WithSessionOptions appends engine options applied to every new session.
func WithSessionOptions(opts ...game.SessionOption) Option {
	return func(m *Manager) {
		m.sessionOpts = append(m.sessionOpts, opts...)
	}
}

type entry struct {
	mu      sync.Mutex // guards session
	session *game.Session
	humans  []string

	// delivering is taken before mu is released and held until the
	// action's events are handed to the notifier.
	delivering sync.Mutex
}

// Manager owns the live sessions, keyed by session id.
type Manager struct {
	mu            sync.RWMutex
	sessions      map[string]*entry
	byParticipant map[string]string
	finished      map[string]string // participant -> last finished session

	notifier    Notifier
	logger      *log.Logger
	newRand     func() *rand.Rand
	sessionOpts []game.SessionOption
}

// NewManager creates an empty manager. A nil notifier drops all events.
func NewManager(notifier Notifier, logger *log.Logger, opts ...Option) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	m := &Manager{
		sessions:      make(map[string]*entry),
		byParticipant: make(map[string]string),
		finished:      make(map[string]string),
		notifier:      notifier,
		logger:        logger.WithPrefix("session"),
		newRand: func() *rand.Rand {
			return randutil.New(randutil.Seed(nil))
		},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new session for roster and delivers its opening events.
func (m *Manager) Create(mode game.Mode, roster []game.Seat) (string, error) {
	m.mu.Lock()
	for _, seat := range roster {
		if existing, ok := m.byParticipant[seat.ID]; ok {
			m.mu.Unlock()
			return "", fmt.Errorf("%w: %s is in %s", ErrAlreadyPlaying, seat.Name, existing)
		}
	}

	id := gameid.SessionID()
	opts := append([]game.SessionOption{game.WithID(id), game.WithLogger(m.logger)}, m.sessionOpts...)
	s, err := game.NewSession(m.newRand(), mode, roster, opts...)
	if err != nil {
		m.mu.Unlock()
		return "", err
	}
	e := &entry{session: s}
	for _, seat := range roster {
		e.humans = append(e.humans, seat.ID)
	}

	m.sessions[id] = e
	for _, seat := range roster {
		m.byParticipant[seat.ID] = id
		delete(m.finished, seat.ID)
	}
	// Nobody can act before the opening events are out.
	e.mu.Lock()
	m.mu.Unlock()

	events := s.Start()
	m.logger.Info("Session started", "session", id, "mode", mode, "players", len(roster))
	m.commit(id, e, events, "")
	return id, nil
}

// Submit applies an action for participantID in their session. Once the
// session has finished its players get game.ErrGameInactive.
func (m *Manager) Submit(participantID string, action game.Action) ([]game.Event, error) {
	id, e, err := m.lookup(participantID)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	events, err := e.session.Submit(participantID, action)
	if err != nil {
		e.mu.Unlock()
		m.logger.Debug("Action rejected", "session", id, "participant", participantID,
			"kind", action.Kind, "error", err)
		return nil, err
	}
	m.commit(id, e, events, "")
	return events, nil
}

// Forfeit eliminates participantID from their session.
func (m *Manager) Forfeit(participantID string) error {
	id, e, err := m.lookup(participantID)
	if err != nil {
		return err
	}

	e.mu.Lock()
	events, err := e.session.Forfeit(participantID)
	if err != nil {
		e.mu.Unlock()
		return err
	}
	m.commit(id, e, events, participantID)
	return nil
}

// commit hands events to the notifier in engine order and drops the session
// once it is over. The caller holds e.mu; commit releases it. A departing
// participant is released straight away.
func (m *Manager) commit(id string, e *entry, events []game.Event, departing string) {
	active := e.session.Active
	e.delivering.Lock()
	defer e.delivering.Unlock()
	e.mu.Unlock()

	if departing != "" {
		m.mu.Lock()
		if m.byParticipant[departing] == id {
			delete(m.byParticipant, departing)
		}
		m.mu.Unlock()
	}
	if !active {
		m.Remove(id)
	}
	m.deliver(id, e.humans, events)
}

// View returns the state visible to participantID.
func (m *Manager) View(participantID string) (game.View, error) {
	_, e, err := m.lookup(participantID)
	if err != nil {
		return game.View{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.View(participantID), nil
}

// Get returns the public view of a session.
func (m *Manager) Get(sessionID string) (game.View, bool) {
	m.mu.RLock()
	e, ok := m.sessions[sessionID]
	m.mu.RUnlock()
	if !ok {
		return game.View{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.View(""), true
}

// SessionFor returns the id of the session participantID plays in.
func (m *Manager) SessionFor(participantID string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byParticipant[participantID]
	return id, ok
}

// Remove drops a session and releases its participants. Players still
// seated when it goes are told game.ErrGameInactive until they start
// another session or are forgotten.
func (m *Manager) Remove(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.sessions[sessionID]
	if !ok {
		return
	}
	delete(m.sessions, sessionID)
	for _, id := range e.humans {
		if m.byParticipant[id] == sessionID {
			delete(m.byParticipant, id)
			m.finished[id] = sessionID
		}
	}
	m.logger.Info("Session removed", "session", sessionID)
}

// Forget drops everything the manager remembers about a participant who
// is not currently playing.
func (m *Manager) Forget(participantID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.finished, participantID)
}

// Len returns the number of live sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) lookup(participantID string) (string, *entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.byParticipant[participantID]
	if !ok {
		if last, ok := m.finished[participantID]; ok {
			return "", nil, fmt.Errorf("%w: session %s has finished", game.ErrGameInactive, last)
		}
		return "", nil, ErrNoSession
	}
	e, ok := m.sessions[id]
	if !ok {
		return "", nil, ErrNoSession
	}
	return id, e, nil
}

func (m *Manager) deliver(sessionID string, humans []string, events []game.Event) {
	if m.notifier == nil {
		return
	}
	for _, e := range events {
		if e.Private() {
			m.notifier.Whisper(sessionID, e.Audience, e)
			continue
		}
		m.notifier.Broadcast(sessionID, humans, e)
	}
}
