package game

import "errors"

// Errors returned to the submitting participant. None of them mutate the
// session, so the caller may retry with a corrected action.
var (
	ErrItemNotOwned   = errors.New("item not owned")
	ErrInvalidTarget  = errors.New("invalid target")
	ErrOutOfTurn      = errors.New("not your turn")
	ErrGameInactive   = errors.New("game is over")
	ErrTargetRequired = errors.New("knife is out, choose a target")
	ErrNotParticipant = errors.New("not a participant of this session")
	ErrNoPeek         = errors.New("no phone peek to read")
	ErrUnknownAction  = errors.New("unknown action")
	ErrInvalidRoster  = errors.New("invalid roster")
)

// ErrChamberEmpty is raised internally when a shot meets an exhausted
// chamber. The engine always answers it with a reload.
var ErrChamberEmpty = errors.New("chamber empty")
