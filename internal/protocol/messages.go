// Package protocol defines the JSON messages exchanged over the websocket.
package protocol

import (
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/lobby"
)

// MessageType identifies the type of message
type MessageType string

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

const (
	// Client -> Server
	TypeHello      MessageType = "hello"
	TypeCreateRoom MessageType = "create_room"
	TypeJoinRoom   MessageType = "join_room"
	TypeLeaveRoom  MessageType = "leave_room"
	TypeKick       MessageType = "kick"
	TypeStartRoom  MessageType = "start_room"
	TypePlayDealer MessageType = "play_dealer"
	TypeAction     MessageType = "action"
	TypeGetState   MessageType = "get_state"
	TypeForfeit    MessageType = "forfeit"

	// Server -> Client
	TypeWelcome    MessageType = "welcome"
	TypeRoomUpdate MessageType = "room_update"
	TypeRoomLeft   MessageType = "room_left"
	TypeEvent      MessageType = "event"
	TypeState      MessageType = "state"
	TypeError      MessageType = "error"
)

// Client -> Server Messages

// Hello is the first message a client sends
type Hello struct {
	Name string `json:"name"`
}

// JoinRoom asks to join a waiting room by code
type JoinRoom struct {
	Code string `json:"code"`
}

// Kick asks the room creator's server to remove a member
type Kick struct {
	Participant string `json:"participant"`
}

// Action is one move in a running session
type Action struct {
	Kind   game.ActionKind `json:"kind"`
	Item   game.Item       `json:"item,omitempty"`
	Target string          `json:"target,omitempty"`
}

// ToGame converts the wire action into an engine action.
func (a Action) ToGame() game.Action {
	return game.Action{Kind: a.Kind, Item: a.Item, Target: a.Target}
}

// Server -> Client Messages

// Welcome confirms the hello and assigns the participant id
type Welcome struct {
	ParticipantID string `json:"participantId"`
	Name          string `json:"name"`
}

// RoomUpdate carries the current state of a waiting room
type RoomUpdate struct {
	Room lobby.Room `json:"room"`
}

// RoomLeft tells a player they are no longer in a room
type RoomLeft struct {
	Code   string `json:"code"`
	Kicked bool   `json:"kicked,omitempty"`
}

// Event wraps one engine notification
type Event struct {
	SessionID string `json:"sessionId"`
	game.Event
}

// State carries the viewer's snapshot of a session
type State struct {
	View game.View `json:"view"`
}

// Error message
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
