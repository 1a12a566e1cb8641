package game

// ParticipantView is the public face of one seat.
type ParticipantView struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Lives      int    `json:"lives"`
	Items      []Item `json:"items"`
	Restrained bool   `json:"restrained,omitempty"`
	Dealer     bool   `json:"dealer,omitempty"`
}

// View is the state a participant is allowed to see. It carries the chamber
// counts but never the order of the shells.
type View struct {
	SessionID    string            `json:"sessionId"`
	Mode         Mode              `json:"mode"`
	Round        int               `json:"round"`
	Live         int               `json:"live"`
	Blank        int               `json:"blank"`
	Turn         string            `json:"turn,omitempty"`
	Phase        string            `json:"phase"`
	ExtraTurn    bool              `json:"extraTurn,omitempty"`
	Active       bool              `json:"active"`
	Outcome      Outcome           `json:"outcome"`
	Participants []ParticipantView `json:"participants"`
	// PeekReady tells the viewer a phone peek is waiting to be read.
	PeekReady bool `json:"peekReady,omitempty"`
}

// View builds the state visible to participant id. Unknown ids get the
// public part only.
func (s *Session) View(id string) View {
	v := View{
		SessionID:    s.ID,
		Mode:         s.Mode,
		Round:        s.Round,
		Live:         s.Chamber.Live(),
		Blank:        s.Chamber.Blank(),
		Phase:        s.phase.String(),
		ExtraTurn:    s.ExtraTurn,
		Active:       s.Active,
		Outcome:      s.Outcome,
		Participants: make([]ParticipantView, 0, len(s.Participants)),
	}
	if s.Active {
		v.Turn = s.Current().ID
	}
	for _, p := range s.Participants {
		v.Participants = append(v.Participants, ParticipantView{
			ID:         p.ID,
			Name:       p.Name,
			Lives:      p.Lives,
			Items:      p.Inventory.Items(),
			Restrained: p.Restrained,
			Dealer:     p.Dealer,
		})
	}
	if p := s.Participant(id); p != nil {
		v.PeekReady = p.HasPeek()
	}
	return v
}

// Participant returns the view of one seat.
func (v View) Participant(id string) (ParticipantView, bool) {
	for _, p := range v.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return ParticipantView{}, false
}
