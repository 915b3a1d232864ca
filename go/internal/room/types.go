package room

import (
	"fmt"
	"time"
)

// Team identifies one of the two sides.
type Team string

const (
	TeamRed  Team = "Red"
	TeamBlue Team = "Blue"
)

// Role is a player's role within their team. At most one Spymaster per
// team; the backend enforces this, the join flow pre-checks it.
type Role string

const (
	RoleAgent     Role = "Agent"
	RoleSpymaster Role = "Spymaster"
)

// GameState is the room's position in the game lifecycle. Transitions are
// driven entirely by backend events: waiting → active ⇄ paused, active →
// ended. Ended is terminal.
type GameState string

const (
	GameWaiting GameState = "waiting"
	GameActive  GameState = "active"
	GamePaused  GameState = "paused"
	GameEnded   GameState = "ended"
)

// Player is one member of the room.
type Player struct {
	Username string
	Team     Team
	Role     Role
}

// State is the client's view of the room. It is owned exclusively by the
// Reconciler; everything else reads clones.
type State struct {
	RoomCode string
	Players  []Player

	WordSet       []string
	RevealedTiles []bool
	Patterns      []string

	GameState       GameState
	CurrentTurnTeam Team
	TimerDeadline   time.Time
	EndMessage      string

	CurrentHint   string
	HintSubmitted bool
}

// PlayerByUsername finds the player with the given username.
func (s *State) PlayerByUsername(username string) (Player, bool) {
	for _, p := range s.Players {
		if p.Username == username {
			return p, true
		}
	}
	return Player{}, false
}

// CanRevealTile reports whether player may reveal tile index right now.
// Reveals are allowed only mid-game, on the player's own team's turn, on
// an unrevealed tile, and never for Spymasters.
func (s *State) CanRevealTile(player Player, index int) bool {
	if s.GameState != GameActive {
		return false
	}
	if player.Team != s.CurrentTurnTeam {
		return false
	}
	if player.Role == RoleSpymaster {
		return false
	}
	if index < 0 || index >= len(s.RevealedTiles) {
		return false
	}
	return !s.RevealedTiles[index]
}

// CanSubmitHint reports whether player may submit a hint right now.
func (s *State) CanSubmitHint(player Player) bool {
	return s.GameState == GameActive &&
		player.Role == RoleSpymaster &&
		player.Team == s.CurrentTurnTeam &&
		!s.HintSubmitted
}

// Validate checks the structural invariants the backend promises.
func (s *State) Validate() error {
	if len(s.RevealedTiles) != len(s.WordSet) || len(s.Patterns) != len(s.WordSet) {
		return fmt.Errorf("board length mismatch: %d words, %d revealed, %d patterns",
			len(s.WordSet), len(s.RevealedTiles), len(s.Patterns))
	}
	turnDefined := s.CurrentTurnTeam != ""
	if turnDefined != (s.GameState == GameActive || s.GameState == GamePaused) {
		return fmt.Errorf("currentTurnTeam %q inconsistent with gameState %q", s.CurrentTurnTeam, s.GameState)
	}
	deadlineDefined := !s.TimerDeadline.IsZero()
	if deadlineDefined != (s.GameState == GameActive) {
		return fmt.Errorf("timerDeadline inconsistent with gameState %q", s.GameState)
	}
	return nil
}

// Clone deep-copies the state so readers never alias the reconciler's
// slices.
func (s *State) Clone() *State {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Players = append([]Player(nil), s.Players...)
	clone.WordSet = append([]string(nil), s.WordSet...)
	clone.RevealedTiles = append([]bool(nil), s.RevealedTiles...)
	clone.Patterns = append([]string(nil), s.Patterns...)
	return &clone
}
