package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lox/roulette/internal/client"
	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/lobby"
	"github.com/lox/roulette/internal/protocol"
	"github.com/lox/roulette/internal/render"
)

// serverMsg carries one message from the server into the update loop.
type serverMsg struct {
	msg *protocol.Message
}

// disconnectedMsg ends a networked game.
type disconnectedMsg struct {
	err error
}

// NewRemoteModel creates a model that plays on a server through an already
// welcomed client. Duels and melees both run there.
func NewRemoteModel(ctx context.Context, opts Options) (*Model, error) {
	if opts.Remote == nil || opts.Remote.ParticipantID() == "" {
		return nil, errors.New("say hello to the server before playing")
	}
	opts.Name = opts.Remote.Name()
	// The server already paces its events.
	opts.Pacing = false

	m := newModel(opts)
	m.ctx = ctx
	m.remote = opts.Remote
	m.playerID = opts.Remote.ParticipantID()
	return m, nil
}

// listen waits for the next server message.
func (m *Model) listen() tea.Cmd {
	c, ctx := m.remote, m.ctx
	return func() tea.Msg {
		msg, err := c.Next(ctx)
		if err != nil {
			return disconnectedMsg{err: err}
		}
		return serverMsg{msg: msg}
	}
}

// handleServer applies one server message to the model.
func (m *Model) handleServer(msg *protocol.Message) tea.Cmd {
	switch msg.Type {
	case protocol.TypeEvent:
		var e protocol.Event
		if err := msg.Decode(&e); err != nil {
			m.logger.Error("Failed to decode event", "error", err)
			return nil
		}
		m.observe(e)
		return m.startReveal()

	case protocol.TypeState:
		var state protocol.State
		if err := msg.Decode(&state); err != nil {
			m.logger.Error("Failed to decode state", "error", err)
			return nil
		}
		m.view = state.View

	case protocol.TypeRoomUpdate:
		var update protocol.RoomUpdate
		if err := msg.Decode(&update); err != nil {
			m.logger.Error("Failed to decode room", "error", err)
			return nil
		}
		m.room = &update.Room
		m.AddLogEntry(render.InfoStyle.Render(roomLine(update.Room)))

	case protocol.TypeRoomLeft:
		var left protocol.RoomLeft
		if err := msg.Decode(&left); err != nil {
			m.logger.Error("Failed to decode room_left", "error", err)
			return nil
		}
		m.room = nil
		if left.Kicked {
			m.AddLogEntry(render.ErrorStyle.Render(fmt.Sprintf("You were removed from room %s.", left.Code)))
		} else {
			m.AddLogEntry(render.InfoStyle.Render(fmt.Sprintf("You left room %s.", left.Code)))
		}

	case protocol.TypeError:
		var e protocol.Error
		if err := msg.Decode(&e); err != nil {
			m.logger.Error("Failed to decode error", "error", err)
			return nil
		}
		// A state request can cross the end of the game.
		if !m.view.Active && (e.Code == "game_inactive" || e.Code == "no_session") {
			m.logger.Debug("Ignoring late error", "code", e.Code)
			return nil
		}
		m.AddLogEntry(render.ErrorStyle.Render(e.Message))

	default:
		m.logger.Debug("Ignoring message", "type", msg.Type)
	}
	return nil
}

// observe folds an event into the cached view and queues it for display.
func (m *Model) observe(e protocol.Event) {
	ev := e.Event
	switch ev.Type {
	case game.EventSessionStart:
		m.room = nil
		m.games++
		m.view = game.View{
			SessionID: e.SessionID,
			Round:     ev.Round,
			Live:      ev.Live,
			Blank:     ev.Blank,
			Active:    true,
		}
		m.requestState()
	case game.EventReload:
		m.view.Round, m.view.Live, m.view.Blank = ev.Round, ev.Live, ev.Blank
	case game.EventTurn:
		m.view.Turn = ev.Actor
		m.requestState()
	case game.EventDamage:
		m.setLives(ev.Target, ev.Lives)
	case game.EventEliminated:
		m.setLives(ev.Actor, 0)
	case game.EventGameOver:
		m.view.Active = false
		m.view.Turn = ""
		m.view.Outcome = game.Outcome{Winner: ev.Winner, MutualLoss: ev.Winner == ""}
	}

	m.enqueue([]game.Event{ev})
	if ev.Type == game.EventGameOver {
		m.enqueueNote("Type 'new' to face the dealer, 'create' or 'join <code>' for a melee.")
	}
}

func (m *Model) setLives(id string, lives int) {
	for i := range m.view.Participants {
		if m.view.Participants[i].ID == id {
			m.view.Participants[i].Lives = lives
		}
	}
}

func (m *Model) requestState() {
	m.send(protocol.TypeGetState, nil)
}

func (m *Model) send(typ protocol.MessageType, data any) {
	if err := m.remote.Send(typ, data); err != nil {
		m.logger.Warn("Failed to send", "type", typ, "error", err)
		m.AddLogEntry(render.ErrorStyle.Render(err.Error()))
	}
}

// handleRemote turns a typed command into a request to the server. Results
// come back as server messages.
func (m *Model) handleRemote(cmd command) tea.Cmd {
	switch cmd.kind {
	case cmdStatus:
		switch {
		case m.view.SessionID != "":
			m.AddLogEntry(render.Status(m.view))
		case m.room != nil:
			m.AddLogEntry(render.InfoStyle.Render(roomLine(*m.room)))
		default:
			m.AddLogEntry(render.InfoStyle.Render("Not at a table."))
		}
	case cmdNew:
		m.send(protocol.TypePlayDealer, nil)
	case cmdForfeit:
		m.send(protocol.TypeForfeit, nil)
	case cmdCreate:
		m.send(protocol.TypeCreateRoom, nil)
	case cmdJoin:
		m.send(protocol.TypeJoinRoom, protocol.JoinRoom{Code: cmd.arg})
	case cmdStart:
		m.send(protocol.TypeStartRoom, nil)
	case cmdLeave:
		m.send(protocol.TypeLeaveRoom, nil)
	case cmdKick:
		if m.room == nil {
			m.AddLogEntry(render.ErrorStyle.Render("You are not in a room."))
			return nil
		}
		id, err := memberID(*m.room, cmd.arg)
		if err != nil {
			m.AddLogEntry(render.ErrorStyle.Render(err.Error()))
			return nil
		}
		m.send(protocol.TypeKick, protocol.Kick{Participant: id})
	case cmdAction:
		if !m.view.Active {
			m.AddLogEntry(render.ErrorStyle.Render("No game running. Type 'new', 'create' or 'join <code>'."))
			return nil
		}
		action, err := resolveAction(m.view, cmd.action)
		if err != nil {
			m.AddLogEntry(render.ErrorStyle.Render(err.Error()))
			return nil
		}
		m.send(protocol.TypeAction, protocol.Action{
			Kind:   action.Kind,
			Item:   action.Item,
			Target: action.Target,
		})
	}
	return nil
}

// resolveAction swaps a player name typed as a shot target for their id.
func resolveAction(view game.View, action game.Action) (game.Action, error) {
	if action.Kind != game.ActionShoot || action.Target == game.TargetSelf || action.Target == game.DealerID {
		return action, nil
	}
	id, err := resolveName(view, action.Target)
	if err != nil {
		return action, err
	}
	action.Target = id
	return action, nil
}

func memberID(room lobby.Room, name string) (string, error) {
	for _, seat := range room.Members {
		if seat.ID == name || strings.EqualFold(seat.Name, name) {
			return seat.ID, nil
		}
	}
	return "", fmt.Errorf("nobody called %q in room %s", name, room.Code)
}

// roomLine summarises a waiting room.
func roomLine(room lobby.Room) string {
	names := make([]string, len(room.Members))
	for i, seat := range room.Members {
		names[i] = seat.Name
		if seat.ID == room.Creator {
			names[i] += " (creator)"
		}
	}
	return fmt.Sprintf("Room %s: %s", room.Code, strings.Join(names, ", "))
}

// roomStatus renders the sidebar while waiting for a game on a server.
func roomStatus(room *lobby.Room) string {
	if room == nil {
		return render.HeaderStyle.Render("=== Lobby ===") + "\n" +
			render.InfoStyle.Render("No table yet.")
	}
	lines := []string{render.HeaderStyle.Render(fmt.Sprintf("=== Room %s ===", room.Code))}
	for _, seat := range room.Members {
		line := seat.Name
		if seat.ID == room.Creator {
			line += " (creator)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// connectRemote dials url and introduces the player.
func connectRemote(ctx context.Context, opts Options, url string) (*client.Client, error) {
	c := client.NewClient(url, opts.Logger)
	if err := c.Connect(ctx); err != nil {
		return nil, err
	}
	if err := c.Hello(ctx, opts.Name); err != nil {
		_ = c.Disconnect()
		return nil, err
	}
	return c, nil
}
