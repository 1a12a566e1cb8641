package protocol

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionWireFormat(t *testing.T) {
	var msg Message
	raw := `{"type":"action","data":{"kind":"use","item":"beer"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.Equal(t, TypeAction, msg.Type)

	var action Action
	require.NoError(t, msg.Decode(&action))
	assert.Equal(t, game.Use(game.Beer), action.ToGame())

	raw = `{"type":"action","data":{"kind":"shoot","target":"self"}}`
	require.NoError(t, json.Unmarshal([]byte(raw), &msg))
	var shot Action
	require.NoError(t, msg.Decode(&shot))
	assert.Equal(t, game.Shoot(game.TargetSelf), shot.ToGame())
}

func TestDecodeErrors(t *testing.T) {
	msg := Message{Type: TypeJoinRoom}
	var join JoinRoom
	assert.Error(t, msg.Decode(&join), "missing data")

	msg.Data = json.RawMessage(`{"code": 5}`)
	assert.Error(t, msg.Decode(&join))

	var action Action
	msg = Message{Type: TypeAction, Data: json.RawMessage(`{"kind":"use","item":"rope"}`)}
	assert.Error(t, msg.Decode(&action), "unknown items are rejected at the edge")
}

func TestEventIsFlattened(t *testing.T) {
	live := game.Live
	msg, err := NewMessage(TypeEvent, Event{
		SessionID: "s1",
		Event: game.Event{
			Type:   game.EventShot,
			Actor:  "u1",
			Target: game.DealerID,
			Shell:  &live,
			Text:   "Alice shoots Dealer... live!",
		},
	})
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(msg.Data, &fields))
	assert.Equal(t, "s1", fields["sessionId"])
	assert.Equal(t, "shot", fields["type"])
	assert.Equal(t, "live", fields["shell"])
	assert.NotContains(t, fields, "audience")

	var back Event
	require.NoError(t, msg.Decode(&back))
	require.NotNil(t, back.Shell)
	assert.Equal(t, game.Live, *back.Shell)
}

func TestLethalDamageKeepsZeroLives(t *testing.T) {
	msg := MustMessage(TypeEvent, Event{
		SessionID: "s1",
		Event: game.Event{
			Type:   game.EventDamage,
			Actor:  game.DealerID,
			Target: "u1",
			Damage: 2,
			Lives:  0,
		},
	})
	assert.Contains(t, string(msg.Data), `"lives":0`)

	var back Event
	require.NoError(t, msg.Decode(&back))
	assert.Zero(t, back.Lives)
}

func TestStateCarriesItemsByName(t *testing.T) {
	s, err := game.NewSession(randutil.New(1), game.Duel, []game.Seat{{ID: "u1", Name: "Alice"}},
		game.WithItems("u1", game.Knife, game.Phone))
	require.NoError(t, err)

	msg := MustMessage(TypeState, State{View: s.View("u1")})
	assert.Contains(t, string(msg.Data), `"items":["knife","phone"]`)
	assert.NotContains(t, string(msg.Data), "shells")
}

func TestNewMessageConcurrent(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			msg, err := NewMessage(TypeHello, Hello{Name: "bot"})
			if err != nil {
				t.Errorf("encode: %v", err)
				return
			}
			var hello Hello
			if err := msg.Decode(&hello); err != nil || hello.Name != "bot" {
				t.Errorf("round trip %d: %v %q", i, err, hello.Name)
			}
		}(i)
	}
	wg.Wait()
}
