package server

import (
	"errors"

	"github.com/lox/roulette/internal/game"
	"github.com/lox/roulette/internal/lobby"
	"github.com/lox/roulette/internal/session"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{game.ErrItemNotOwned, "item_not_owned"},
	{game.ErrInvalidTarget, "invalid_target"},
	{game.ErrOutOfTurn, "out_of_turn"},
	{game.ErrGameInactive, "game_inactive"},
	{game.ErrTargetRequired, "target_required"},
	{game.ErrNotParticipant, "not_participant"},
	{game.ErrNoPeek, "no_peek"},
	{game.ErrUnknownAction, "unknown_action"},
	{game.ErrInvalidRoster, "invalid_roster"},
	{lobby.ErrRoomNotFound, "room_not_found"},
	{lobby.ErrRoomFull, "room_full"},
	{lobby.ErrAlreadyJoined, "already_joined"},
	{lobby.ErrNotMember, "not_in_room"},
	{lobby.ErrNotCreator, "not_creator"},
	{lobby.ErrNotEnoughPlayers, "not_enough_players"},
	{lobby.ErrKickSelf, "kick_self"},
	{session.ErrNoSession, "no_session"},
	{session.ErrAlreadyPlaying, "already_playing"},
}

// errorCode returns the protocol error code for err.
func errorCode(err error) string {
	for _, ec := range errorCodes {
		if errors.Is(err, ec.err) {
			return ec.code
		}
	}
	return "internal_error"
}
