package tui

import (
	"context"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/lox/roulette/internal/client"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/lobby"
	"github.com/lox/roulette/internal/protocol"
	"github.com/lox/roulette/internal/randutil"
	"github.com/lox/roulette/internal/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

func startServer(t *testing.T) string {
	t.Helper()
	seed := int64(42)
	srv := server.NewServer(server.Options{
		Lobby: lobby.Config{RandSource: randutil.New(seed)},
		Seed:  &seed,
	}, quietLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Stop()
	})
	return ts.URL
}

// remotePlayer is a networked model plus the connection feeding it.
type remotePlayer struct {
	*Model
	conn *client.Client
}

func joinServer(t *testing.T, ctx context.Context, url, name string) *remotePlayer {
	t.Helper()
	c := client.NewClient(url, quietLogger())
	require.NoError(t, c.Connect(ctx))
	t.Cleanup(func() { _ = c.Disconnect() })
	require.NoError(t, c.Hello(ctx, name))

	m, err := NewRemoteModel(ctx, Options{Remote: c, Logger: quietLogger()})
	require.NoError(t, err)
	return &remotePlayer{Model: m, conn: c}
}

// pump feeds server messages through Update until done holds.
func (p *remotePlayer) pump(t *testing.T, ctx context.Context, done func() bool) {
	t.Helper()
	for !done() {
		msg, err := p.conn.Next(ctx)
		require.NoError(t, err)
		p.Update(serverMsg{msg: msg})
		drain(p.Model)
	}
}

func TestRemoteModelNeedsHello(t *testing.T) {
	_, err := NewRemoteModel(context.Background(), Options{})
	assert.Error(t, err)

	c := client.NewClient("http://localhost", quietLogger())
	_, err = NewRemoteModel(context.Background(), Options{Remote: c})
	assert.ErrorContains(t, err, "hello")
}

func TestRemoteDuel(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	alice := joinServer(t, ctx, startServer(t), "Alice")
	alice.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, alice.View(), "Type 'new' to face the dealer")
	assert.Contains(t, alice.View(), "=== Lobby ===")

	alice.handleInput("shoot dealer")
	assert.True(t, logContains(alice.Model, "No game running."))

	alice.handleInput("new")
	alice.pump(t, ctx, func() bool {
		return alice.view.Active && len(alice.view.Participants) == 2
	})
	assert.True(t, logContains(alice.Model, "=== Round 1 ==="))
	assert.Equal(t, game.Duel, alice.view.Mode)
	assert.Equal(t, 1, alice.games)

	for i := 0; i < 2000 && alice.view.Active; i++ {
		msg, err := alice.conn.Next(ctx)
		require.NoError(t, err)
		alice.Update(serverMsg{msg: msg})
		drain(alice.Model)
		if msg.Type == protocol.TypeState && alice.view.Active && alice.view.Turn == alice.playerID {
			alice.handleInput("shoot dealer")
		}
	}
	require.False(t, alice.view.Active)
	assert.True(t, logContains(alice.Model, "Game over."))
	assert.True(t, logContains(alice.Model, "Type 'new' to face the dealer"))
	assert.Contains(t, alice.View(), "Game over. Type 'new'")

	// The finished game no longer accepts moves.
	alice.handleInput("shoot dealer")
	assert.True(t, logContains(alice.Model, "No game running."))
}

func TestRemoteMelee(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	url := startServer(t)
	alice := joinServer(t, ctx, url, "Alice")
	bob := joinServer(t, ctx, url, "Bob")

	alice.handleInput("create")
	alice.pump(t, ctx, func() bool { return alice.room != nil })
	code := alice.room.Code

	bob.handleInput("join " + code)
	bob.pump(t, ctx, func() bool { return bob.room != nil && len(bob.room.Members) == 2 })
	alice.pump(t, ctx, func() bool { return len(alice.room.Members) == 2 })
	assert.True(t, logContains(alice.Model, "Room "+code+": Alice (creator), Bob"))

	alice.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, alice.View(), "=== Room "+code+" ===")
	assert.Contains(t, alice.View(), "The creator types 'start'.")

	alice.handleInput("kick zed")
	assert.True(t, logContains(alice.Model, `nobody called "zed"`))

	alice.handleInput("start")
	ready := func(p *remotePlayer) func() bool {
		return func() bool { return p.view.Active && len(p.view.Participants) == 2 }
	}
	alice.pump(t, ctx, ready(alice))
	bob.pump(t, ctx, ready(bob))
	assert.Nil(t, alice.room)
	assert.Equal(t, game.Melee, bob.view.Mode)
	assert.Equal(t, alice.playerID, bob.view.Turn, "the creator sits first")

	bob.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Contains(t, bob.View(), "Waiting for Alice.")

	alice.handleInput("shoot bob")
	shot := func(p *remotePlayer) func() bool {
		return func() bool { return logContains(p.Model, "Alice shoots Bob...") }
	}
	alice.pump(t, ctx, shot(alice))
	bob.pump(t, ctx, shot(bob))

	bob.handleInput("forfeit")
	over := func(p *remotePlayer) func() bool {
		return func() bool { return !p.view.Active }
	}
	bob.pump(t, ctx, over(bob))
	alice.pump(t, ctx, over(alice))

	assert.Equal(t, alice.playerID, alice.view.Outcome.Winner)
	assert.True(t, logContains(alice.Model, "Bob left the table."))
	assert.Equal(t, 0, lives(bob.view, bob.playerID))
}

func TestRemoteDisconnect(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	alice := joinServer(t, ctx, startServer(t), "Alice")
	_, cmd := alice.Update(disconnectedMsg{err: client.ErrDisconnected})
	assert.NotNil(t, cmd)
	assert.True(t, alice.quitting)
	assert.ErrorIs(t, alice.err, client.ErrDisconnected)
}

func lives(v game.View, id string) int {
	for _, p := range v.Participants {
		if p.ID == id {
			return p.Lives
		}
	}
	return -1
}
