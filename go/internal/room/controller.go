package room

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/codenames/go/internal/api"
	"github.com/mcdev12/codenames/go/internal/events"
)

// ActionAPI is the REST surface local actions need, satisfied by
// *api.Client.
type ActionAPI interface {
	StartGame(roomCode string) error
	EndTurn(roomCode string) error
	LeaveRoom(roomCode, username string) (*api.LeaveRoomResponse, error)
}

// Controller relays user actions to the backend, applying the local
// guards first so that ineligible actions are suppressed without a
// network call.
type Controller struct {
	api      ActionAPI
	emitter  Emitter
	rec      *Reconciler
	session  *Session
	roomCode string
	onNotice NoticeFunc
}

// NewController creates a controller for the given room. onNotice may be
// nil.
func NewController(actionAPI ActionAPI, emitter Emitter, rec *Reconciler, session *Session, roomCode string, onNotice NoticeFunc) *Controller {
	if onNotice == nil {
		onNotice = func(string) {}
	}
	return &Controller{
		api:      actionAPI,
		emitter:  emitter,
		rec:      rec,
		session:  session,
		roomCode: roomCode,
		onNotice: onNotice,
	}
}

// RevealTile handles a click on tile index. When any guard fails (game
// not active, not the local team's turn, tile already revealed, local
// player is a Spymaster) the click is suppressed locally and nothing is
// sent. Returns whether the reveal was emitted.
func (c *Controller) RevealTile(index int) bool {
	state := c.rec.State()
	if state == nil {
		return false
	}
	player, ok := state.PlayerByUsername(c.session.Username())
	if !ok || !state.CanRevealTile(player, index) {
		return false
	}

	// Optimistic local reveal; the backend confirms via updateTile.
	c.rec.MarkTileRevealed(index)

	if err := c.emitter.Send(events.EventTypeTileClicked, events.TileClickedPayload{
		RoomCode: c.roomCode,
		Index:    index,
	}); err != nil {
		log.Error().Err(err).Int("index", index).Msg("failed to send tileClicked")
		return false
	}
	return true
}

// SubmitHint submits a hint for the current turn. Guarded: only the
// Spymaster of the team whose turn it is may submit, once per turn, while
// the game is active. Returns whether the hint was emitted.
func (c *Controller) SubmitHint(hint string) bool {
	hint = strings.TrimSpace(hint)
	if hint == "" {
		return false
	}

	state := c.rec.State()
	if state == nil {
		return false
	}
	player, ok := state.PlayerByUsername(c.session.Username())
	if !ok || !state.CanSubmitHint(player) {
		return false
	}

	if err := c.emitter.Send(events.EventTypeSubmitHint, events.SubmitHintPayload{
		RoomCode: c.roomCode,
		Hint:     hint,
		Username: player.Username,
	}); err != nil {
		log.Error().Err(err).Msg("failed to send submitHint")
		return false
	}

	c.rec.MarkHintSubmitted()
	return true
}

// StartGame asks the backend to start the game. A rejection is surfaced
// as a notice; the authoritative gameStarted (or gameStartFailed) event
// arrives over the push channel.
func (c *Controller) StartGame() error {
	if err := c.api.StartGame(c.roomCode); err != nil {
		c.onNotice(err.Error())
		return err
	}
	return nil
}

// EndTurn asks the backend to end the current turn. The turnSwitched
// event remains authoritative.
func (c *Controller) EndTurn() error {
	if err := c.api.EndTurn(c.roomCode); err != nil {
		c.onNotice(err.Error())
		return err
	}
	return nil
}

// Leave removes the local player from the room, announces the departure
// on the push channel, and unbinds the session identity.
func (c *Controller) Leave() error {
	username := c.session.Username()
	resp, err := c.api.LeaveRoom(c.roomCode, username)
	if err != nil {
		return fmt.Errorf("leave room %s: %w", c.roomCode, err)
	}

	if err := c.emitter.Send(events.EventTypePlayerLeft, events.PlayerLeftPayload{
		RoomCode: c.roomCode,
		Players:  resp.Players,
	}); err != nil {
		log.Error().Err(err).Msg("failed to send playerLeft")
	}

	c.session.Clear()
	return nil
}
