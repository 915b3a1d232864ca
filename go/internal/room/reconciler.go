package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/codenames/go/internal/api"
	"github.com/mcdev12/codenames/go/internal/events"
	"github.com/mcdev12/codenames/go/internal/transport"
)

// NoticeFunc receives a user-facing message (pause/resume reasons, game
// results, rejected actions). Each notice is delivered exactly once per
// triggering event.
type NoticeFunc func(message string)

// EventSource is the subscription half of the push channel, satisfied by
// *transport.Client.
type EventSource interface {
	Subscribe(eventType events.EventType, handler transport.Handler) (unsubscribe func())
}

// ReconcilerConfig holds tuning for event application.
type ReconcilerConfig struct {
	// TurnDuration is the length of a turn, used when the backend reports
	// a turn start time instead of a deadline, and on resume, which
	// carries no time at all.
	TurnDuration time.Duration

	// TurnSwitchDebounce delays committing a turnSwitched event so a
	// burst of switches settles before the view moves. Only turn switches
	// are buffered; every other event commits immediately.
	TurnSwitchDebounce time.Duration
}

// DefaultReconcilerConfig returns the defaults matching the backend's own
// turn length.
func DefaultReconcilerConfig() ReconcilerConfig {
	return ReconcilerConfig{
		TurnDuration:       50 * time.Second,
		TurnSwitchDebounce: 200 * time.Millisecond,
	}
}

// Reconciler is the sole owner of the client-side room state. Poll
// snapshots and push events both feed it; each event applies a
// partial-field merge so that, for example, a turn switch never clobbers
// the player list. The backend stamps no sequence numbers on events, so
// arrival order is trusted as-is; monotonic tile reveals and wholesale
// field replacement keep most stale deliveries harmless.
type Reconciler struct {
	mu     sync.Mutex
	state  *State
	closed bool

	clock  clockwork.Clock
	config ReconcilerConfig

	onNotice NoticeFunc

	pendingTurn clockwork.Timer

	listenersMu sync.Mutex
	listeners   map[int]func()
	nextID      int
}

// NewReconciler creates a reconciler. onNotice may be nil.
func NewReconciler(clock clockwork.Clock, config ReconcilerConfig, onNotice NoticeFunc) *Reconciler {
	if onNotice == nil {
		onNotice = func(string) {}
	}
	return &Reconciler{
		clock:     clock,
		config:    config,
		onNotice:  onNotice,
		listeners: make(map[int]func()),
	}
}

// State returns a deep copy of the current room state, or nil before the
// first snapshot lands.
func (r *Reconciler) State() *State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state.Clone()
}

// Listen registers fn to run after every committed change. Returns the
// matching unsubscribe.
func (r *Reconciler) Listen(fn func()) (unsubscribe func()) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()

	id := r.nextID
	r.nextID++
	r.listeners[id] = fn

	return func() {
		r.listenersMu.Lock()
		defer r.listenersMu.Unlock()
		delete(r.listeners, id)
	}
}

// Bind subscribes the reconciler to every push event it consumes and
// returns a single teardown releasing all of them.
func (r *Reconciler) Bind(source EventSource) (teardown func()) {
	consumed := []events.EventType{
		events.EventTypeUpdatePlayers,
		events.EventTypeUpdateTile,
		events.EventTypeGameStarted,
		events.EventTypeTurnSwitched,
		events.EventTypeGamePaused,
		events.EventTypeGameResumed,
		events.EventTypeGameEnded,
		events.EventTypeGameStartFailed,
		events.EventTypeNewHint,
		events.EventTypeHintRejected,
	}

	unsubscribes := make([]func(), 0, len(consumed))
	for _, eventType := range consumed {
		unsubscribes = append(unsubscribes, source.Subscribe(eventType, func(event *events.Event) {
			if err := r.Apply(event); err != nil {
				log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to apply push event")
			}
		}))
	}

	return func() {
		for _, unsub := range unsubscribes {
			unsub()
		}
	}
}

// ApplySnapshot replaces the room state wholesale from a poll response.
// Hint fields are preserved; snapshots do not carry them. A genuinely
// stale snapshot can regress players/gameState/tiles; without sequence
// numbers from the backend there is no way to detect that, so it is an
// accepted gap rather than client-side ordering logic the backend cannot
// support.
func (r *Reconciler) ApplySnapshot(snapshot *api.RoomSnapshot) {
	next := r.stateFromSnapshot(snapshot)

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.state != nil {
		next.CurrentHint = r.state.CurrentHint
		next.HintSubmitted = r.state.HintSubmitted
	}
	if err := next.Validate(); err != nil {
		log.Warn().Err(err).Str("room_code", next.RoomCode).Msg("snapshot violates state invariants")
	}
	r.state = next
	r.mu.Unlock()

	r.notifyListeners()
}

// SetHintFromPoll merges a hint fetched over REST. It never touches the
// submitted flag; that is owned by the newHint event and the submit path.
func (r *Reconciler) SetHintFromPoll(hint string) {
	r.mu.Lock()
	if r.closed || r.state == nil || r.state.CurrentHint == hint {
		r.mu.Unlock()
		return
	}
	r.state.CurrentHint = hint
	r.mu.Unlock()

	r.notifyListeners()
}

// MarkTileRevealed applies an optimistic local reveal ahead of the
// backend's confirming updateTile event. Same monotonic rule: never
// unset.
func (r *Reconciler) MarkTileRevealed(index int) {
	r.applyTile(events.UpdateTilePayload{Index: index})
}

// MarkHintSubmitted records that the local Spymaster submitted a hint
// this turn, so the submit affordance hides before the newHint event
// confirms.
func (r *Reconciler) MarkHintSubmitted() {
	r.mu.Lock()
	if r.closed || r.state == nil {
		r.mu.Unlock()
		return
	}
	r.state.HintSubmitted = true
	r.mu.Unlock()

	r.notifyListeners()
}

// Apply folds one push event into the room state.
func (r *Reconciler) Apply(event *events.Event) error {
	payload, err := events.ParsePayload(event)
	if err != nil {
		return err
	}

	switch event.Type {
	case events.EventTypeUpdatePlayers:
		r.applyPlayers(payload.(events.UpdatePlayersPayload))
	case events.EventTypeUpdateTile:
		r.applyTile(payload.(events.UpdateTilePayload))
	case events.EventTypeGameStarted:
		r.applyGameStarted(payload.(events.TurnPayload))
	case events.EventTypeTurnSwitched:
		r.applyTurnSwitched(payload.(events.TurnPayload))
	case events.EventTypeGamePaused:
		r.applyPause(payload.(events.NoticePayload))
	case events.EventTypeGameResumed:
		r.applyResume(payload.(events.NoticePayload))
	case events.EventTypeGameEnded:
		r.applyGameEnded(payload.(events.GameEndedPayload))
	case events.EventTypeGameStartFailed:
		// No state mutation; surfaced to the user only.
		r.onNotice(payload.(events.NoticePayload).Message)
	case events.EventTypeNewHint:
		r.applyNewHint(payload.(string))
	case events.EventTypeHintRejected:
		r.onNotice(payload.(events.NoticePayload).Message)
	default:
		return fmt.Errorf("unexpected event type %q", event.Type)
	}
	return nil
}

// Close cancels any pending debounced commit. Further events are dropped.
func (r *Reconciler) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	r.stopPendingTurnLocked()
}

func (r *Reconciler) applyPlayers(players events.UpdatePlayersPayload) {
	r.mu.Lock()
	if !r.mutableLocked(events.EventTypeUpdatePlayers) {
		r.mu.Unlock()
		return
	}
	r.state.Players = playersFromWire(players)
	r.mu.Unlock()

	r.notifyListeners()
}

func (r *Reconciler) applyTile(payload events.UpdateTilePayload) {
	r.mu.Lock()
	if !r.mutableLocked(events.EventTypeUpdateTile) {
		r.mu.Unlock()
		return
	}
	if payload.Index < 0 || payload.Index >= len(r.state.RevealedTiles) {
		r.mu.Unlock()
		log.Warn().Int("index", payload.Index).Msg("updateTile index out of range")
		return
	}
	// Monotonic: reveals never unset.
	r.state.RevealedTiles[payload.Index] = true
	r.mu.Unlock()

	r.notifyListeners()
}

func (r *Reconciler) applyGameStarted(payload events.TurnPayload) {
	r.mu.Lock()
	if !r.mutableLocked(events.EventTypeGameStarted) {
		r.mu.Unlock()
		return
	}
	r.state.GameState = GameActive
	r.state.CurrentTurnTeam = Team(payload.CurrentTurnTeam)
	r.state.TimerDeadline = r.deadlineFrom(payload)
	r.mu.Unlock()

	r.notifyListeners()
}

// applyTurnSwitched buffers the switch briefly so bursts of switch events
// settle before the view moves. A newer switch replaces a pending one.
func (r *Reconciler) applyTurnSwitched(payload events.TurnPayload) {
	r.mu.Lock()
	if !r.mutableLocked(events.EventTypeTurnSwitched) {
		r.mu.Unlock()
		return
	}

	r.stopPendingTurnLocked()
	if r.config.TurnSwitchDebounce <= 0 {
		r.commitTurnSwitchLocked(payload)
		r.mu.Unlock()
		r.notifyListeners()
		return
	}
	r.pendingTurn = r.clock.AfterFunc(r.config.TurnSwitchDebounce, func() {
		r.mu.Lock()
		r.pendingTurn = nil
		if !r.mutableLocked(events.EventTypeTurnSwitched) {
			r.mu.Unlock()
			return
		}
		r.commitTurnSwitchLocked(payload)
		r.mu.Unlock()

		r.notifyListeners()
	})
	r.mu.Unlock()
}

func (r *Reconciler) commitTurnSwitchLocked(payload events.TurnPayload) {
	r.state.GameState = GameActive
	r.state.CurrentTurnTeam = Team(payload.CurrentTurnTeam)
	r.state.TimerDeadline = r.deadlineFrom(payload)
	// The new turn has no hint yet.
	r.state.CurrentHint = ""
	r.state.HintSubmitted = false
}

func (r *Reconciler) applyPause(payload events.NoticePayload) {
	r.mu.Lock()
	if !r.mutableLocked(events.EventTypeGamePaused) {
		r.mu.Unlock()
		return
	}
	r.state.GameState = GamePaused
	r.state.TimerDeadline = time.Time{}
	r.mu.Unlock()

	r.onNotice(payload.Message)
	r.notifyListeners()
}

func (r *Reconciler) applyResume(payload events.NoticePayload) {
	r.mu.Lock()
	if !r.mutableLocked(events.EventTypeGameResumed) {
		r.mu.Unlock()
		return
	}
	r.state.GameState = GameActive
	// Resume carries no time; the turn restarts full-length.
	r.state.TimerDeadline = r.clock.Now().Add(r.config.TurnDuration)
	r.mu.Unlock()

	r.onNotice(payload.Message)
	r.notifyListeners()
}

func (r *Reconciler) applyGameEnded(payload events.GameEndedPayload) {
	r.mu.Lock()
	if r.closed || r.state == nil {
		r.mu.Unlock()
		return
	}
	r.stopPendingTurnLocked()
	r.state.GameState = GameEnded
	r.state.EndMessage = payload.Result
	r.state.CurrentTurnTeam = ""
	r.state.TimerDeadline = time.Time{}
	r.mu.Unlock()

	r.onNotice(payload.Result)
	r.notifyListeners()
}

func (r *Reconciler) applyNewHint(hint string) {
	r.mu.Lock()
	if !r.mutableLocked(events.EventTypeNewHint) {
		r.mu.Unlock()
		return
	}
	r.state.CurrentHint = hint
	r.state.HintSubmitted = true
	r.mu.Unlock()

	r.notifyListeners()
}

// mutableLocked guards every state-mutating event: nothing lands before
// the first snapshot, and nothing lands after the game ended. The backend
// should not emit past the end, but a stray late event must be a no-op
// rather than a crash.
func (r *Reconciler) mutableLocked(eventType events.EventType) bool {
	if r.closed || r.state == nil {
		return false
	}
	if r.state.GameState == GameEnded {
		log.Debug().Str("event_type", string(eventType)).Msg("dropping event for ended game")
		return false
	}
	return true
}

func (r *Reconciler) stopPendingTurnLocked() {
	if r.pendingTurn != nil {
		r.pendingTurn.Stop()
		r.pendingTurn = nil
	}
}

// deadlineFrom resolves the turn boundary from a turn payload, preferring
// an absolute deadline over the legacy start-time form.
func (r *Reconciler) deadlineFrom(payload events.TurnPayload) time.Time {
	switch {
	case payload.TimerDeadline > 0:
		return time.UnixMilli(payload.TimerDeadline)
	case payload.TimerStartTime > 0:
		return time.UnixMilli(payload.TimerStartTime).Add(r.config.TurnDuration)
	default:
		return r.clock.Now().Add(r.config.TurnDuration)
	}
}

func (r *Reconciler) stateFromSnapshot(snapshot *api.RoomSnapshot) *State {
	state := &State{
		RoomCode:      snapshot.RoomCode,
		Players:       playersFromWire(snapshot.Players),
		WordSet:       append([]string(nil), snapshot.WordSet...),
		RevealedTiles: append([]bool(nil), snapshot.RevealedTiles...),
		Patterns:      append([]string(nil), snapshot.Patterns...),
		GameState:     GameState(snapshot.GameState),
		EndMessage:    snapshot.EndMessage,
	}
	if state.GameState == "" {
		state.GameState = GameWaiting
	}

	switch state.GameState {
	case GameActive:
		state.CurrentTurnTeam = Team(snapshot.CurrentTurnTeam)
		state.TimerDeadline = r.deadlineFrom(events.TurnPayload{
			TimerDeadline:  snapshot.TimerDeadline,
			TimerStartTime: snapshot.TimerStartTime,
		})
	case GamePaused:
		state.CurrentTurnTeam = Team(snapshot.CurrentTurnTeam)
	}
	return state
}

func (r *Reconciler) notifyListeners() {
	r.listenersMu.Lock()
	listeners := make([]func(), 0, len(r.listeners))
	for _, fn := range r.listeners {
		listeners = append(listeners, fn)
	}
	r.listenersMu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

func playersFromWire(players []events.Player) []Player {
	out := make([]Player, 0, len(players))
	for _, p := range players {
		out = append(out, Player{
			Username: p.Username,
			Team:     Team(p.Team),
			Role:     Role(p.Role),
		})
	}
	return out
}
