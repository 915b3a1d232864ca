package room

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/codenames/go/internal/events"
)

// Emitter is the send half of the push channel, satisfied by
// *transport.Client.
type Emitter interface {
	Send(eventType events.EventType, payload interface{}) error
}

// Remaining computes the displayed countdown for state at wall-clock time
// now: max(0, floor(deadline - now)) in whole seconds, and 0 whenever the
// game is not active. It is a pure function of the deadline and the
// clock, never of previously displayed values, which keeps the display
// correct across suspension, re-renders and reconnects.
func Remaining(state *State, now time.Time) int {
	if state == nil || state.GameState != GameActive || state.TimerDeadline.IsZero() {
		return 0
	}
	remaining := state.TimerDeadline.Sub(now)
	if remaining <= 0 {
		return 0
	}
	return int(remaining / time.Second)
}

// TurnClock recomputes the countdown from the server-owned deadline on a
// fixed 1s tick while the game is active. When the countdown hits zero it
// notifies the backend once per deadline; that is advisory only, and the
// authoritative turn transition still arrives as a turnSwitched event.
type TurnClock struct {
	clock    clockwork.Clock
	rec      *Reconciler
	emitter  Emitter
	roomCode string

	// onTick receives the recomputed remaining seconds on every tick
	// while the game is active.
	onTick func(remaining int)

	mu               sync.Mutex
	notifiedDeadline time.Time

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewTurnClock creates a turn clock reading from rec. onTick may be nil.
func NewTurnClock(clock clockwork.Clock, rec *Reconciler, emitter Emitter, roomCode string, onTick func(remaining int)) *TurnClock {
	if onTick == nil {
		onTick = func(int) {}
	}
	return &TurnClock{
		clock:    clock,
		rec:      rec,
		emitter:  emitter,
		roomCode: roomCode,
		onTick:   onTick,
		stop:     make(chan struct{}),
	}
}

// Start begins ticking until Stop.
func (tc *TurnClock) Start() {
	tc.wg.Add(1)
	go tc.loop()
}

// Stop tears down the tick timer. Safe to call more than once.
func (tc *TurnClock) Stop() {
	tc.stopOnce.Do(func() {
		close(tc.stop)
	})
	tc.wg.Wait()
}

func (tc *TurnClock) loop() {
	defer tc.wg.Done()

	ticker := tc.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-tc.stop:
			return
		case <-ticker.Chan():
			tc.tick()
		}
	}
}

func (tc *TurnClock) tick() {
	state := tc.rec.State()
	if state == nil || state.GameState != GameActive {
		return
	}

	remaining := Remaining(state, tc.clock.Now())
	if remaining == 0 {
		tc.notifyExpired(state.TimerDeadline)
	}
	tc.onTick(remaining)
}

// notifyExpired sends the advisory timerExpired event, at most once per
// deadline. The guard resets itself whenever the deadline moves.
func (tc *TurnClock) notifyExpired(deadline time.Time) {
	tc.mu.Lock()
	if tc.notifiedDeadline.Equal(deadline) {
		tc.mu.Unlock()
		return
	}
	tc.notifiedDeadline = deadline
	tc.mu.Unlock()

	if err := tc.emitter.Send(events.EventTypeTimerExpired, events.RoomPayload{RoomCode: tc.roomCode}); err != nil {
		log.Error().Err(err).Str("room_code", tc.roomCode).Msg("failed to send timerExpired")
	}
}
