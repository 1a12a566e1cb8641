// Package render turns session views and engine events into the text shown
// to players.
package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lox/roulette/internal/game"
)

// HiddenLives is shown instead of the count once a participant is low.
const HiddenLives = "???"

// Lives formats a life count, hiding it at 2 or fewer.
func Lives(n int) string {
	if n > 2 {
		return strconv.Itoa(n)
	}
	return HiddenLives
}

// Items lists an inventory by label, or "Empty".
func Items(items []game.Item) string {
	if len(items) == 0 {
		return "Empty"
	}
	labels := make([]string, len(items))
	for i, item := range items {
		labels[i] = item.Label()
	}
	return strings.Join(labels, ", ")
}

// Status renders the round header, lives, shell counts, inventories and the
// turn line for a view.
func Status(v game.View) string {
	lines := []string{
		HeaderStyle.Render(fmt.Sprintf("=== Round %d ===", v.Round)),
	}

	lives := make([]string, 0, len(v.Participants))
	items := make([]string, 0, len(v.Participants))
	for _, p := range v.Participants {
		entry := fmt.Sprintf("%s (%s ⚡)", p.Name, Lives(p.Lives))
		if p.Restrained {
			entry += " ⛓"
		}
		if p.Lives <= 0 {
			entry = InfoStyle.Render(entry)
		}
		lives = append(lives, entry)
		items = append(items, fmt.Sprintf("%s: %s", p.Name, ItemStyle.Render(Items(p.Items))))
	}
	lines = append(lines,
		"Lives: "+strings.Join(lives, " | "),
		fmt.Sprintf("Shells: %s, %s",
			LiveStyle.Render(fmt.Sprintf("%d live", v.Live)),
			BlankStyle.Render(fmt.Sprintf("%d blank", v.Blank))),
		"Items: "+strings.Join(items, " | "),
	)

	switch {
	case !v.Active && v.Outcome.MutualLoss:
		lines = append(lines, ErrorStyle.Render("Nobody survived."))
	case !v.Active && v.Outcome.Winner != "":
		lines = append(lines, SuccessStyle.Render("Winner: "+nameOf(v, v.Outcome.Winner)))
	case v.Active:
		turn := "Turn: " + nameOf(v, v.Turn)
		if v.Phase == game.AwaitingTarget.String() {
			turn += " (choose a target)"
		} else if v.ExtraTurn {
			turn += " (extra turn)"
		}
		lines = append(lines, TurnStyle.Render(turn))
	}
	if v.PeekReady {
		lines = append(lines, InfoStyle.Render("Your phone has something to tell you."))
	}
	return strings.Join(lines, "\n")
}

// Event renders one event line, styled by what happened.
func Event(e game.Event) string {
	switch e.Type {
	case game.EventSessionStart, game.EventReload:
		return HeaderStyle.Render(e.Text)
	case game.EventShot:
		if e.Shell != nil && *e.Shell == game.Live {
			return LiveStyle.Render(e.Text)
		}
		return BlankStyle.Render(e.Text)
	case game.EventDamage, game.EventEliminated:
		return ErrorStyle.Render(e.Text)
	case game.EventGameOver:
		return SuccessStyle.Render(e.Text)
	case game.EventReveal, game.EventPeek:
		return WarningStyle.Render(e.Text)
	case game.EventTurn:
		return TurnStyle.Render(e.Text)
	case game.EventItemUsed, game.EventItemStolen, game.EventItemNoop:
		return ItemStyle.Render(e.Text)
	default:
		return PlayerInfoStyle.Render(e.Text)
	}
}

func nameOf(v game.View, id string) string {
	for _, p := range v.Participants {
		if p.ID == id {
			return p.Name
		}
	}
	return id
}
