package game

// Life and roster limits.
const (
	MaxLives        = 5
	StartLives      = 5
	InitialItems    = 2
	KnifeDamage     = 2
	MinMeleePlayers = 2
	MaxMeleePlayers = 10
)

// DealerID is the participant id of the scripted opponent in duel mode.
const DealerID = "dealer"

// Seat is a roster entry handed over by the lobby. The identity is fixed at
// roster construction and never re-derived from display text.
type Seat struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Peek is a private, single-read disclosure of a shell behind the front.
// Position is 1-based as shown to players (2 is the shell after the front).
type Peek struct {
	Position int   `json:"position"`
	Shell    Shell `json:"shell"`
}

// Participant is one seat in a session.
type Participant struct {
	ID         string
	Name       string
	Lives      int
	Inventory  Inventory
	Restrained bool
	Dealer     bool

	// bonusDamage is set by the knife and cleared by the next shot.
	bonusDamage int
	peek        *Peek
}

func newParticipant(seat Seat, items []Item) *Participant {
	return &Participant{
		ID:        seat.ID,
		Name:      seat.Name,
		Lives:     StartLives,
		Inventory: NewInventory(items...),
	}
}

// Alive reports whether the participant still has lives.
func (p *Participant) Alive() bool {
	return p.Lives > 0
}

// BonusDamage returns the damage the participant's next live shell deals.
func (p *Participant) BonusDamage() int {
	if p.bonusDamage > 0 {
		return p.bonusDamage
	}
	return 1
}

// HasPeek reports whether an unread phone peek is pending.
func (p *Participant) HasPeek() bool {
	return p.peek != nil
}

func (p *Participant) heal() bool {
	if p.Lives >= MaxLives {
		return false
	}
	p.Lives++
	return true
}

func (p *Participant) clearPending() {
	p.bonusDamage = 0
	p.peek = nil
}
