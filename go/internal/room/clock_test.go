package room

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/codenames/go/internal/events"
)

type fakeEmitter struct {
	mu    sync.Mutex
	sends []events.EventType
}

func (f *fakeEmitter) Send(eventType events.EventType, payload interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, eventType)
	return nil
}

func (f *fakeEmitter) count(eventType events.EventType) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, sent := range f.sends {
		if sent == eventType {
			n++
		}
	}
	return n
}

func TestRemaining(t *testing.T) {
	now := time.Now()
	active := &State{GameState: GameActive, TimerDeadline: now.Add(50 * time.Second)}

	tests := []struct {
		name  string
		state *State
		now   time.Time
		want  int
	}{
		{"nil state", nil, now, 0},
		{"full turn", active, now, 50},
		{"mid turn", active, now.Add(10 * time.Second), 40},
		{"floors partial seconds", active, now.Add(48500 * time.Millisecond), 1},
		{"at deadline", active, now.Add(50 * time.Second), 0},
		{"past deadline never negative", active, now.Add(2 * time.Minute), 0},
		{"paused", &State{GameState: GamePaused, TimerDeadline: now.Add(50 * time.Second)}, now, 0},
		{"waiting", &State{GameState: GameWaiting}, now, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Remaining(tt.state, tt.now); got != tt.want {
				t.Errorf("Remaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTurnClockCountsDownToZero(t *testing.T) {
	// The wire carries millisecond epochs, so the clock must sit on a
	// whole millisecond or the deadline round-trip loses the nanos and
	// lands just shy of a second boundary.
	clk := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	r := NewReconciler(clk, DefaultReconcilerConfig(), nil)
	r.ApplySnapshot(testSnapshot())
	mustApply(t, r, events.EventTypeGameStarted, events.TurnPayload{
		CurrentTurnTeam: "Red",
		TimerDeadline:   clk.Now().Add(50 * time.Second).UnixMilli(),
	})

	emitter := &fakeEmitter{}
	ticks := make(chan int, 64)
	tc := NewTurnClock(clk, r, emitter, "ABCD", func(remaining int) {
		ticks <- remaining
	})
	tc.Start()
	defer tc.Stop()

	clk.BlockUntil(1)

	previous := 50
	for i := 0; i < 50; i++ {
		clk.Advance(time.Second)

		var remaining int
		select {
		case remaining = <-ticks:
		case <-time.After(2 * time.Second):
			t.Fatalf("no tick after advance %d", i+1)
		}

		if remaining < 0 {
			t.Fatalf("remaining went negative: %d", remaining)
		}
		if remaining >= previous {
			t.Fatalf("remaining did not strictly decrease: %d then %d", previous, remaining)
		}
		previous = remaining
	}

	if previous != 0 {
		t.Fatalf("remaining = %d after full turn, want 0", previous)
	}
	if got := emitter.count(events.EventTypeTimerExpired); got != 1 {
		t.Fatalf("timerExpired sent %d times, want 1", got)
	}

	// Further ticks past the deadline stay at zero and do not re-notify.
	clk.Advance(time.Second)
	select {
	case remaining := <-ticks:
		if remaining != 0 {
			t.Fatalf("remaining after deadline = %d, want 0", remaining)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no tick after deadline")
	}
	if got := emitter.count(events.EventTypeTimerExpired); got != 1 {
		t.Fatalf("timerExpired re-sent for the same deadline: %d", got)
	}
}

func TestTurnClockSilentWhileNotActive(t *testing.T) {
	clk := clockwork.NewFakeClock()
	r := NewReconciler(clk, DefaultReconcilerConfig(), nil)
	r.ApplySnapshot(testSnapshot()) // waiting

	emitter := &fakeEmitter{}
	ticks := make(chan int, 64)
	tc := NewTurnClock(clk, r, emitter, "ABCD", func(remaining int) {
		ticks <- remaining
	})
	tc.Start()
	defer tc.Stop()

	clk.BlockUntil(1)
	clk.Advance(5 * time.Second)

	select {
	case remaining := <-ticks:
		t.Fatalf("unexpected tick %d while waiting", remaining)
	case <-time.After(100 * time.Millisecond):
	}
	if got := emitter.count(events.EventTypeTimerExpired); got != 0 {
		t.Fatalf("timerExpired sent %d times while waiting", got)
	}
}

func TestTurnClockExpiryGuardResetsOnNewDeadline(t *testing.T) {
	clk := clockwork.NewFakeClockAt(time.UnixMilli(1_700_000_000_000))
	r := NewReconciler(clk, ReconcilerConfig{TurnDuration: 50 * time.Second}, nil)
	r.ApplySnapshot(testSnapshot())
	mustApply(t, r, events.EventTypeGameStarted, events.TurnPayload{
		CurrentTurnTeam: "Red",
		TimerDeadline:   clk.Now().Add(time.Second).UnixMilli(),
	})

	emitter := &fakeEmitter{}
	ticks := make(chan int, 64)
	tc := NewTurnClock(clk, r, emitter, "ABCD", func(remaining int) {
		ticks <- remaining
	})
	tc.Start()
	defer tc.Stop()

	clk.BlockUntil(1)
	clk.Advance(time.Second)
	<-ticks
	if got := emitter.count(events.EventTypeTimerExpired); got != 1 {
		t.Fatalf("timerExpired sent %d times, want 1", got)
	}

	// The authoritative switch arrives with a fresh deadline (zero
	// debounce config commits it synchronously); its own expiry notifies
	// again.
	mustApply(t, r, events.EventTypeTurnSwitched, events.TurnPayload{
		CurrentTurnTeam: "Blue",
		TimerDeadline:   clk.Now().Add(time.Second).UnixMilli(),
	})
	clk.Advance(time.Second)
	<-ticks

	if got := emitter.count(events.EventTypeTimerExpired); got != 2 {
		t.Fatalf("timerExpired sent %d times after new deadline, want 2", got)
	}
}
