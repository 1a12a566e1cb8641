// Package lobby gathers players into rooms before a melee starts.
package lobby

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/gameid"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrRoomFull         = errors.New("room is full")
	ErrAlreadyJoined    = errors.New("already in a room")
	ErrNotMember        = errors.New("not in this room")
	ErrNotCreator       = errors.New("only the room creator can do that")
	ErrNotEnoughPlayers = errors.New("not enough players to start")
	ErrKickSelf         = errors.New("cannot kick yourself")
)

// Config controls room capacity and code format.
type Config struct {
	MaxPlayers int
	CodeLength int
	// RandSource makes room codes reproducible in tests. Nil uses crypto/rand.
	RandSource gameid.RandSource
}

// Room is a snapshot of one waiting room.
type Room struct {
	Code    string      `json:"code"`
	Creator string      `json:"creator"`
	Members []game.Seat `json:"members"`
}

// Has reports whether participant id is in the room.
func (r Room) Has(id string) bool {
	return slices.ContainsFunc(r.Members, func(s game.Seat) bool { return s.ID == id })
}

func (r *Room) clone() Room {
	return Room{Code: r.Code, Creator: r.Creator, Members: slices.Clone(r.Members)}
}

// Lobby tracks open rooms. A participant is in at most one room.
type Lobby struct {
	mu         sync.Mutex
	rooms      map[string]*Room
	memberOf   map[string]string
	gen        *gameid.Generator
	maxPlayers int
	logger     *log.Logger
}

// New creates an empty lobby.
func New(cfg Config, logger *log.Logger) *Lobby {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if cfg.MaxPlayers <= 0 || cfg.MaxPlayers > game.MaxMeleePlayers {
		cfg.MaxPlayers = game.MaxMeleePlayers
	}
	return &Lobby{
		rooms:      make(map[string]*Room),
		memberOf:   make(map[string]string),
		gen:        gameid.NewGenerator(cfg.RandSource, cfg.CodeLength),
		maxPlayers: cfg.MaxPlayers,
		logger:     logger.WithPrefix("lobby"),
	}
}

// Create opens a room with seat as its creator and first member.
func (l *Lobby) Create(seat game.Seat) (Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if code, ok := l.memberOf[seat.ID]; ok {
		return Room{}, fmt.Errorf("%w: %s", ErrAlreadyJoined, code)
	}

	code := l.gen.UniqueRoomCode(func(c string) bool {
		_, taken := l.rooms[c]
		return taken
	})
	room := &Room{Code: code, Creator: seat.ID, Members: []game.Seat{seat}}
	l.rooms[code] = room
	l.memberOf[seat.ID] = code

	l.logger.Info("Room created", "code", code, "creator", seat.Name)
	return room.clone(), nil
}

// Join adds seat to the room with the given code.
func (l *Lobby) Join(code string, seat game.Seat) (Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	code = gameid.Normalize(code)
	room, ok := l.rooms[code]
	if !ok {
		return Room{}, fmt.Errorf("%w: %s", ErrRoomNotFound, code)
	}
	if existing, ok := l.memberOf[seat.ID]; ok {
		return Room{}, fmt.Errorf("%w: %s", ErrAlreadyJoined, existing)
	}
	if len(room.Members) >= l.maxPlayers {
		return Room{}, fmt.Errorf("%w: %d/%d", ErrRoomFull, len(room.Members), l.maxPlayers)
	}

	room.Members = append(room.Members, seat)
	l.memberOf[seat.ID] = code
	l.logger.Info("Player joined room", "code", code, "player", seat.Name, "members", len(room.Members))
	return room.clone(), nil
}

// Leave removes participant id from their room. The creator role passes to
// the longest-standing member; an empty room is closed. closed reports
// whether the room no longer exists.
func (l *Lobby) Leave(id string) (room Room, closed bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.roomOf(id)
	if err != nil {
		return Room{}, false, err
	}
	l.remove(r, id)

	if len(r.Members) == 0 {
		delete(l.rooms, r.Code)
		l.logger.Info("Room closed", "code", r.Code)
		return r.clone(), true, nil
	}
	if r.Creator == id {
		r.Creator = r.Members[0].ID
		l.logger.Info("Room creator changed", "code", r.Code, "creator", r.Members[0].Name)
	}
	return r.clone(), false, nil
}

// Kick removes target from the creator's room.
func (l *Lobby) Kick(creatorID, targetID string) (Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.roomOf(creatorID)
	if err != nil {
		return Room{}, err
	}
	if r.Creator != creatorID {
		return Room{}, ErrNotCreator
	}
	if targetID == creatorID {
		return Room{}, ErrKickSelf
	}
	if !r.Has(targetID) {
		return Room{}, fmt.Errorf("%w: %s", ErrNotMember, targetID)
	}

	l.remove(r, targetID)
	l.logger.Info("Player kicked", "code", r.Code, "player", targetID)
	return r.clone(), nil
}

// Start closes the creator's room and returns its members as a melee roster
// in join order.
func (l *Lobby) Start(creatorID string) (Room, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.roomOf(creatorID)
	if err != nil {
		return Room{}, err
	}
	if r.Creator != creatorID {
		return Room{}, ErrNotCreator
	}
	if len(r.Members) < game.MinMeleePlayers {
		return Room{}, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughPlayers, game.MinMeleePlayers, len(r.Members))
	}

	delete(l.rooms, r.Code)
	for _, m := range r.Members {
		delete(l.memberOf, m.ID)
	}
	l.logger.Info("Room started", "code", r.Code, "players", len(r.Members))
	return r.clone(), nil
}

// Get returns a snapshot of the room with the given code.
func (l *Lobby) Get(code string) (Room, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, ok := l.rooms[gameid.Normalize(code)]
	if !ok {
		return Room{}, false
	}
	return r.clone(), true
}

// RoomOf returns the room participant id is waiting in.
func (l *Lobby) RoomOf(id string) (Room, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	r, err := l.roomOf(id)
	if err != nil {
		return Room{}, false
	}
	return r.clone(), true
}

// Len returns the number of open rooms.
func (l *Lobby) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.rooms)
}

func (l *Lobby) roomOf(id string) (*Room, error) {
	code, ok := l.memberOf[id]
	if !ok {
		return nil, ErrNotMember
	}
	return l.rooms[code], nil
}

func (l *Lobby) remove(r *Room, id string) {
	r.Members = slices.DeleteFunc(r.Members, func(s game.Seat) bool { return s.ID == id })
	delete(l.memberOf, id)
}
