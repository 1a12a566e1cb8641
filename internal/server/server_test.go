package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/lobby"
	"github.com/lox/roulette/internal/protocol"
	"github.com/lox/roulette/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerHealth(t *testing.T) {
	t.Parallel()
	srv := NewServer(Options{}, testLogger())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	srv.handleHealth(w, req)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected status 200, got %d", resp.StatusCode)
	}
}

func TestHelloRequired(t *testing.T) {
	t.Parallel()
	_, url := startTestServer(t)

	c := dialTestClient(t, url)
	c.send(protocol.TypePlayDealer, nil)
	assert.Equal(t, "not_authenticated", c.errorCode())

	c.send(protocol.TypeHello, protocol.Hello{Name: "   "})
	assert.Equal(t, "invalid_name", c.errorCode())

	c.hello("Alice")
	assert.NotEmpty(t, c.id)

	c.send(protocol.TypeHello, protocol.Hello{Name: "Alice again"})
	assert.Equal(t, "already_authenticated", c.errorCode())

	c.send(protocol.MessageType("dance"), nil)
	assert.Equal(t, "unknown_message_type", c.errorCode())
}

func TestDuelOverWebSocket(t *testing.T) {
	t.Parallel()
	_, url := startTestServer(t)

	c := dialTestClient(t, url)
	c.hello("Alice")

	c.send(protocol.TypePlayDealer, nil)
	start := c.waitForEvent("session_start")
	assert.NotEmpty(t, start.SessionID)
	assert.Equal(t, 1, start.Round)
	turn := c.waitForEvent("turn")
	assert.Equal(t, c.id, turn.Actor)

	c.send(protocol.TypeGetState, nil)
	var state protocol.State
	c.decode(c.waitFor(protocol.TypeState), &state)
	assert.Equal(t, game.Duel, state.View.Mode)
	assert.Equal(t, c.id, state.View.Turn)
	require.Len(t, state.View.Participants, 2)
	assert.Equal(t, start.Live+start.Blank, state.View.Live+state.View.Blank)

	c.send(protocol.TypePlayDealer, nil)
	assert.Equal(t, "already_playing", c.errorCode())

	c.send(protocol.TypeAction, protocol.Action{Kind: game.ActionShoot, Target: "ghost"})
	assert.Equal(t, "invalid_target", c.errorCode())

	c.send(protocol.TypeAction, protocol.Action{Kind: game.ActionUse})
	assert.Equal(t, "item_not_owned", c.errorCode())

	c.send(protocol.TypeAction, protocol.Action{Kind: game.ActionReadPeek})
	assert.Equal(t, "no_peek", c.errorCode())

	c.send(protocol.TypeAction, protocol.Action{Kind: game.ActionShoot, Target: game.DealerID})
	shot := c.waitForEvent("shot")
	assert.Equal(t, c.id, shot.Actor)
	assert.Equal(t, game.DealerID, shot.Target)

	c.send(protocol.TypeForfeit, nil)
	over := c.waitForEvent("game_over")
	assert.Equal(t, game.DealerID, over.Winner)

	c.send(protocol.TypeGetState, nil)
	assert.Equal(t, "no_session", c.errorCode())
}

func TestRoomToMelee(t *testing.T) {
	t.Parallel()
	srv, url := startTestServer(t)

	alice := dialTestClient(t, url)
	alice.hello("Alice")
	bob := dialTestClient(t, url)
	bob.hello("Bob")

	alice.send(protocol.TypeCreateRoom, nil)
	var update protocol.RoomUpdate
	alice.decode(alice.waitFor(protocol.TypeRoomUpdate), &update)
	code := update.Room.Code
	assert.Equal(t, alice.id, update.Room.Creator)

	bob.send(protocol.TypeJoinRoom, protocol.JoinRoom{Code: "NOPE00"})
	assert.Equal(t, "room_not_found", bob.errorCode())

	bob.send(protocol.TypeJoinRoom, protocol.JoinRoom{Code: code})
	bob.decode(bob.waitFor(protocol.TypeRoomUpdate), &update)
	assert.Len(t, update.Room.Members, 2)
	alice.decode(alice.waitFor(protocol.TypeRoomUpdate), &update)
	assert.Len(t, update.Room.Members, 2)

	bob.send(protocol.TypeStartRoom, nil)
	assert.Equal(t, "not_creator", bob.errorCode())

	bob.send(protocol.TypePlayDealer, nil)
	assert.Equal(t, "in_room", bob.errorCode())

	alice.send(protocol.TypeStartRoom, nil)
	aStart := alice.waitForEvent("session_start")
	bStart := bob.waitForEvent("session_start")
	assert.Equal(t, aStart.SessionID, bStart.SessionID)
	assert.Zero(t, srv.Lobby().Len())

	alice.send(protocol.TypeGetState, nil)
	var state protocol.State
	alice.decode(alice.waitFor(protocol.TypeState), &state)
	assert.Equal(t, game.Melee, state.View.Mode)
	assert.Equal(t, alice.id, state.View.Turn, "the creator sits first")

	bob.send(protocol.TypeAction, protocol.Action{Kind: game.ActionShoot, Target: alice.id})
	assert.Equal(t, "out_of_turn", bob.errorCode())

	// Bob walks away mid-match and Alice wins by default.
	require.NoError(t, bob.conn.Close())
	over := alice.waitForEvent("game_over")
	assert.Equal(t, alice.id, over.Winner)
}

func TestKickAndLeave(t *testing.T) {
	t.Parallel()
	_, url := startTestServer(t)

	alice := dialTestClient(t, url)
	alice.hello("Alice")
	bob := dialTestClient(t, url)
	bob.hello("Bob")

	alice.send(protocol.TypeCreateRoom, nil)
	var update protocol.RoomUpdate
	alice.decode(alice.waitFor(protocol.TypeRoomUpdate), &update)

	bob.send(protocol.TypeJoinRoom, protocol.JoinRoom{Code: update.Room.Code})
	bob.waitFor(protocol.TypeRoomUpdate)

	alice.send(protocol.TypeKick, protocol.Kick{Participant: bob.id})
	var left protocol.RoomLeft
	bob.decode(bob.waitFor(protocol.TypeRoomLeft), &left)
	assert.True(t, left.Kicked)
	assert.Equal(t, update.Room.Code, left.Code)

	alice.send(protocol.TypeStartRoom, nil)
	assert.Equal(t, "not_enough_players", alice.errorCode())

	alice.send(protocol.TypeLeaveRoom, nil)
	alice.decode(alice.waitFor(protocol.TypeRoomLeft), &left)
	assert.False(t, left.Kicked)

	alice.send(protocol.TypeLeaveRoom, nil)
	assert.Equal(t, "not_in_room", alice.errorCode())
}

func TestErrorCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err  error
		want string
	}{
		{game.ErrOutOfTurn, "out_of_turn"},
		{fmt.Errorf("%w: Knife", game.ErrItemNotOwned), "item_not_owned"},
		{lobby.ErrRoomFull, "room_full"},
		{session.ErrNoSession, "no_session"},
		{errors.New("boom"), "internal_error"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorCode(tt.err), tt.err.Error())
	}
}

func TestWaitForHealthy(t *testing.T) {
	t.Parallel()
	_, url := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, WaitForHealthy(ctx, url))
	require.NoError(t, WaitForHealthy(ctx, strings.TrimSuffix(strings.Replace(url, "ws://", "http://", 1), "/ws")))

	short, cancelShort := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancelShort()
	err := WaitForHealthy(short, "http://127.0.0.1:1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
