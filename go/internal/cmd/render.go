package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/codenames/go/internal/room"
)

const tilesPerRow = 5

// renderer prints the projected room view. Rendering is derivation only;
// it reads a state clone and the session, never mutating either.
type renderer struct {
	mu      sync.Mutex
	out     io.Writer
	session *room.Session
	clock   clockwork.Clock
}

func newRenderer(out io.Writer, session *room.Session, clock clockwork.Clock) *renderer {
	return &renderer{out: out, session: session, clock: clock}
}

func (r *renderer) Render(state *room.State) {
	view := room.Project(state, r.session.Username())
	remaining := room.Remaining(state, r.clock.Now())

	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintf(r.out, "\n=== room %s [%s]", view.RoomCode, view.GameState)
	if view.GameState == room.GameActive {
		fmt.Fprintf(r.out, " | %s team, %ds left", view.CurrentTurnTeam, remaining)
	}
	fmt.Fprintln(r.out, " ===")

	for i, tile := range view.Tiles {
		label := tile.Word
		if tile.Revealed {
			label = "·"
		}
		if tile.ShowPattern {
			fmt.Fprintf(r.out, "%2d %-12s(%s) ", i, label, tile.Pattern)
		} else {
			fmt.Fprintf(r.out, "%2d %-12s     ", i, label)
		}
		if (i+1)%tilesPerRow == 0 {
			fmt.Fprintln(r.out)
		}
	}
	if len(view.Tiles)%tilesPerRow != 0 {
		fmt.Fprintln(r.out)
	}

	if view.CurrentHint != "" {
		fmt.Fprintf(r.out, "hint: %s\n", view.CurrentHint)
	}
	if view.EndMessage != "" {
		fmt.Fprintf(r.out, "%s\n", view.EndMessage)
	}

	fmt.Fprint(r.out, "players:")
	for _, p := range view.Players {
		fmt.Fprintf(r.out, " %s(%s/%s)", p.Username, p.Team, p.Role)
	}
	fmt.Fprintln(r.out)

	var actions []string
	if view.CanStartGame {
		actions = append(actions, "start")
	}
	if view.CanEndTurn {
		actions = append(actions, "end", "click <n>")
	}
	if view.CanSubmitHint {
		actions = append(actions, "hint <text>")
	}
	if len(actions) > 0 {
		fmt.Fprintf(r.out, "available: %v\n", actions)
	}
}

// RenderCountdown updates just the countdown line between full renders.
func (r *renderer) RenderCountdown(remaining int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "\r%3ds left ", remaining)
}
