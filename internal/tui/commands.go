package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lox/roulette/internal/game"
)

type commandKind int

const (
	cmdAction commandKind = iota
	cmdStatus
	cmdHelp
	cmdNew
	cmdForfeit
	cmdQuit

	// Room commands, only meaningful against a server.
	cmdCreate
	cmdJoin
	cmdStart
	cmdLeave
	cmdKick
)

type command struct {
	kind   commandKind
	action game.Action
	arg    string // room code or player name
}

var errEmptyCommand = errors.New("type a command, or 'help'")

// helpLines lists the commands accepted by the input box.
var helpLines = []string{
	"Commands:",
	"  shoot self | shoot dealer   fire the shotgun (s self, s d)",
	"  shoot <name>                fire at another player in a melee",
	"  use <item>                  use an item from your inventory (u beer)",
	"  <item>                      shorthand for use, e.g. magnifier",
	"  peek                        read what your phone told you",
	"  status                      print the table status",
	"  new                         start a new duel once this one is over",
	"  forfeit                     give up the current game",
	"  quit                        leave the table",
}

// roomHelpLines lists the commands available when playing on a server.
var roomHelpLines = []string{
	"On a server:",
	"  create                      open a room for a melee",
	"  join <code>                 join a friend's room",
	"  start                       start the melee (room creator)",
	"  kick <name>                 remove a player (room creator)",
	"  leave                       leave the room",
}

// parseCommand turns a line of input into a command.
func parseCommand(input string) (command, error) {
	fields := strings.Fields(strings.ToLower(strings.TrimSpace(input)))
	if len(fields) == 0 {
		return command{}, errEmptyCommand
	}
	verb, args := fields[0], fields[1:]

	switch verb {
	case "shoot", "s", "fire":
		if len(args) != 1 {
			return command{}, errors.New("shoot whom? try 'shoot self' or 'shoot dealer'")
		}
		return command{kind: cmdAction, action: game.Shoot(parseTarget(args[0]))}, nil

	case "use", "u":
		if len(args) == 0 {
			return command{}, errors.New("use what? try 'use beer'")
		}
		item, err := game.ParseItem(strings.Join(args, " "))
		if err != nil {
			return command{}, err
		}
		return command{kind: cmdAction, action: game.Use(item)}, nil

	case "peek", "p":
		return command{kind: cmdAction, action: game.ReadPeek()}, nil
	case "status":
		return command{kind: cmdStatus}, nil
	case "help", "h", "?":
		return command{kind: cmdHelp}, nil
	case "new":
		return command{kind: cmdNew}, nil
	case "forfeit", "ff":
		return command{kind: cmdForfeit}, nil
	case "create":
		return command{kind: cmdCreate}, nil
	case "join", "j":
		if len(args) != 1 {
			return command{}, errors.New("join which room? try 'join ABC123'")
		}
		return command{kind: cmdJoin, arg: strings.ToUpper(args[0])}, nil
	case "start":
		return command{kind: cmdStart}, nil
	case "leave":
		return command{kind: cmdLeave}, nil
	case "kick":
		if len(args) != 1 {
			return command{}, errors.New("kick whom? try 'kick bob'")
		}
		return command{kind: cmdKick, arg: args[0]}, nil
	case "quit", "exit", "q":
		return command{kind: cmdQuit}, nil
	}

	if item, err := game.ParseItem(strings.Join(fields, " ")); err == nil {
		return command{kind: cmdAction, action: game.Use(item)}, nil
	}
	return command{}, fmt.Errorf("unknown command %q, try 'help'", verb)
}

// parseTarget maps the shorthands onto engine targets. Anything else is a
// player name, resolved against the table when the shot is taken.
func parseTarget(s string) string {
	switch s {
	case "self", "me", "myself":
		return game.TargetSelf
	case "dealer", "d", "them":
		return game.DealerID
	}
	return s
}

// resolveName finds the participant called name (or with that id) in view.
func resolveName(view game.View, name string) (string, error) {
	for _, p := range view.Participants {
		if p.ID == name || strings.EqualFold(p.Name, name) {
			return p.ID, nil
		}
	}
	return "", fmt.Errorf("nobody called %q at this table", name)
}
