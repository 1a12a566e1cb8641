package game

import "time"

// EventType identifies a notification produced by the engine.
type EventType string

const (
	EventSessionStart   EventType = "session_start"
	EventItemUsed       EventType = "item_used"
	EventItemNoop       EventType = "item_noop"
	EventItemStolen     EventType = "item_stolen"
	EventReveal         EventType = "reveal"
	EventPeek           EventType = "peek"
	EventShot           EventType = "shot"
	EventDamage         EventType = "damage"
	EventExtraTurn      EventType = "extra_turn"
	EventRestrainedSkip EventType = "restrained_skip"
	EventTurn           EventType = "turn"
	EventReload         EventType = "reload"
	EventEliminated     EventType = "eliminated"
	EventGameOver       EventType = "game_over"
)

// String returns the string representation of the event type
func (et EventType) String() string {
	return string(et)
}

// Suggested pauses applied by the presentation layer before delivering an
// event. The engine itself never sleeps.
const (
	ItemDelay = 300 * time.Millisecond
	ShotDelay = 800 * time.Millisecond
)

// Event is one notification in the ordered sequence returned by the engine.
// An empty Audience means broadcast to every participant of the session;
// otherwise only the named participant may see it.
type Event struct {
	Type     EventType     `json:"type"`
	Actor    string        `json:"actor,omitempty"`
	Target   string        `json:"target,omitempty"`
	Item     Item          `json:"item,omitempty"`
	Shell    *Shell        `json:"shell,omitempty"`
	Damage   int           `json:"damage,omitempty"`
	Lives    int           `json:"lives"`
	Position int           `json:"position,omitempty"`
	Round    int           `json:"round,omitempty"`
	Live     int           `json:"live,omitempty"`
	Blank    int           `json:"blank,omitempty"`
	Winner   string        `json:"winner,omitempty"`
	Audience string        `json:"audience,omitempty"`
	Delay    time.Duration `json:"delay,omitempty"`
	Text     string        `json:"text"`
}

// Private reports whether the event must only reach its Audience.
func (e Event) Private() bool {
	return e.Audience != ""
}

// VisibleTo reports whether participant id may see the event.
func (e Event) VisibleTo(id string) bool {
	return e.Audience == "" || e.Audience == id
}

func shellPtr(s Shell) *Shell {
	return &s
}
