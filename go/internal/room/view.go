package room

// TileView is one renderable cell of the word grid.
type TileView struct {
	Word     string
	Revealed bool

	// Pattern is the tile's team affiliation, empty unless ShowPattern.
	Pattern     string
	ShowPattern bool

	// CanReveal reports whether clicking this tile should emit a reveal.
	CanReveal bool
}

// View is the renderable projection of a room for one local player.
type View struct {
	RoomCode string
	You      Player
	Known    bool // whether the local username matched a player

	Players []Player
	Tiles   []TileView

	GameState       GameState
	CurrentTurnTeam Team
	EndMessage      string

	CurrentHint string

	CanStartGame  bool
	CanEndTurn    bool
	CanSubmitHint bool
}

// Project maps the reconciled state plus the local player identity to
// renderable view data. It is pure: it never mutates state and calling it
// twice with the same inputs yields the same output, so it is safe to run
// on every render.
func Project(state *State, localUsername string) View {
	if state == nil {
		return View{}
	}

	view := View{
		RoomCode:        state.RoomCode,
		Players:         append([]Player(nil), state.Players...),
		GameState:       state.GameState,
		CurrentTurnTeam: state.CurrentTurnTeam,
		EndMessage:      state.EndMessage,
		CurrentHint:     state.CurrentHint,
	}

	view.You, view.Known = state.PlayerByUsername(localUsername)
	isSpymaster := view.Known && view.You.Role == RoleSpymaster

	view.Tiles = make([]TileView, len(state.WordSet))
	for i, word := range state.WordSet {
		revealed := state.RevealedTiles[i]
		tile := TileView{
			Word:     word,
			Revealed: revealed,
		}
		// Spymasters see every tile's affiliation; everyone else only
		// sees it once the tile is revealed.
		if isSpymaster || revealed {
			tile.Pattern = state.Patterns[i]
			tile.ShowPattern = true
		}
		if view.Known {
			tile.CanReveal = state.CanRevealTile(view.You, i)
		}
		view.Tiles[i] = tile
	}

	if view.Known {
		view.CanStartGame = state.GameState == GameWaiting && view.You.Role == RoleSpymaster
		view.CanEndTurn = state.GameState == GameActive &&
			view.You.Team == state.CurrentTurnTeam &&
			view.You.Role != RoleSpymaster
		view.CanSubmitHint = state.CanSubmitHint(view.You)
	}

	return view
}
