package room

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/codenames/go/internal/api"
	"github.com/mcdev12/codenames/go/internal/events"
)

type fakeActionAPI struct {
	calls     []string
	startErr  error
	endErr    error
	leaveResp *api.LeaveRoomResponse
	leaveErr  error
}

func (f *fakeActionAPI) StartGame(roomCode string) error {
	f.calls = append(f.calls, "start")
	return f.startErr
}

func (f *fakeActionAPI) EndTurn(roomCode string) error {
	f.calls = append(f.calls, "end")
	return f.endErr
}

func (f *fakeActionAPI) LeaveRoom(roomCode, username string) (*api.LeaveRoomResponse, error) {
	f.calls = append(f.calls, "leave:"+username)
	return f.leaveResp, f.leaveErr
}

func newControllerFixture(t *testing.T) (*Controller, *Reconciler, *fakeEmitter, *Session, *fakeActionAPI) {
	t.Helper()
	clk := clockwork.NewFakeClock()
	rec := NewReconciler(clk, ReconcilerConfig{TurnDuration: 50 * time.Second}, nil)
	rec.ApplySnapshot(testSnapshot())

	emitter := &fakeEmitter{}
	session := &Session{}
	actionAPI := &fakeActionAPI{leaveResp: &api.LeaveRoomResponse{Players: nil}}
	ctrl := NewController(actionAPI, emitter, rec, session, "ABCD", nil)
	return ctrl, rec, emitter, session, actionAPI
}

func startGame(t *testing.T, rec *Reconciler, team string) {
	t.Helper()
	mustApply(t, rec, events.EventTypeGameStarted, events.TurnPayload{
		CurrentTurnTeam: team,
		TimerDeadline:   time.Now().Add(50 * time.Second).UnixMilli(),
	})
}

func TestRevealTileEmitsOnlyWhenPermitted(t *testing.T) {
	ctrl, rec, emitter, session, _ := newControllerFixture(t)
	session.Bind("bob") // Red Agent
	startGame(t, rec, "Red")

	if !ctrl.RevealTile(0) {
		t.Fatal("eligible reveal suppressed")
	}
	if got := emitter.count(events.EventTypeTileClicked); got != 1 {
		t.Fatalf("tileClicked sent %d times, want 1", got)
	}
	if !rec.State().RevealedTiles[0] {
		t.Fatal("optimistic local reveal missing")
	}

	// Already revealed: suppressed locally, nothing sent.
	if ctrl.RevealTile(0) {
		t.Fatal("re-reveal permitted")
	}
	if got := emitter.count(events.EventTypeTileClicked); got != 1 {
		t.Fatalf("tileClicked sent %d times after suppressed click, want 1", got)
	}
}

func TestRevealTileSuppressedByEachGuard(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, rec *Reconciler, session *Session)
	}{
		{"game paused", func(t *testing.T, rec *Reconciler, session *Session) {
			session.Bind("bob")
			startGame(t, rec, "Red")
			mustApply(t, rec, events.EventTypeGamePaused, events.NoticePayload{Message: "paused"})
		}},
		{"game ended", func(t *testing.T, rec *Reconciler, session *Session) {
			session.Bind("bob")
			startGame(t, rec, "Red")
			mustApply(t, rec, events.EventTypeGameEnded, events.GameEndedPayload{Result: "Blue team wins!"})
		}},
		{"not your turn", func(t *testing.T, rec *Reconciler, session *Session) {
			session.Bind("bob")
			startGame(t, rec, "Blue")
		}},
		{"spymaster", func(t *testing.T, rec *Reconciler, session *Session) {
			session.Bind("alice")
			startGame(t, rec, "Red")
		}},
		{"game not started", func(t *testing.T, rec *Reconciler, session *Session) {
			session.Bind("bob")
		}},
		{"no identity", func(t *testing.T, rec *Reconciler, session *Session) {
			startGame(t, rec, "Red")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl, rec, emitter, session, _ := newControllerFixture(t)
			tt.setup(t, rec, session)

			if ctrl.RevealTile(0) {
				t.Fatal("reveal permitted")
			}
			if got := emitter.count(events.EventTypeTileClicked); got != 0 {
				t.Fatalf("tileClicked sent %d times, want 0", got)
			}
		})
	}
}

func TestSubmitHintGuards(t *testing.T) {
	ctrl, rec, emitter, session, _ := newControllerFixture(t)
	session.Bind("alice") // Red Spymaster
	startGame(t, rec, "Red")

	if ctrl.SubmitHint("   ") {
		t.Fatal("blank hint permitted")
	}
	if !ctrl.SubmitHint("ocean 3") {
		t.Fatal("eligible hint suppressed")
	}
	if got := emitter.count(events.EventTypeSubmitHint); got != 1 {
		t.Fatalf("submitHint sent %d times, want 1", got)
	}
	if !rec.State().HintSubmitted {
		t.Fatal("submitted flag not set locally")
	}

	// One hint per turn.
	if ctrl.SubmitHint("river 2") {
		t.Fatal("second hint permitted in same turn")
	}

	// Agents never submit, even on a fresh turn.
	session.Bind("bob")
	mustApply(t, rec, events.EventTypeTurnSwitched, events.TurnPayload{
		CurrentTurnTeam: "Red",
		TimerDeadline:   time.Now().Add(50 * time.Second).UnixMilli(),
	})
	if ctrl.SubmitHint("sneaky 1") {
		t.Fatal("agent submitted a hint")
	}
}

func TestStartGameSurfacesRejection(t *testing.T) {
	clk := clockwork.NewFakeClock()
	rec := NewReconciler(clk, DefaultReconcilerConfig(), nil)
	rec.ApplySnapshot(testSnapshot())

	var notices []string
	actionAPI := &fakeActionAPI{startErr: errors.New("start game: backend returned 400: not enough players")}
	ctrl := NewController(actionAPI, &fakeEmitter{}, rec, &Session{}, "ABCD", func(msg string) {
		notices = append(notices, msg)
	})

	if err := ctrl.StartGame(); err == nil {
		t.Fatal("expected start rejection")
	}
	if len(notices) != 1 {
		t.Fatalf("notices = %v, want the rejection surfaced once", notices)
	}
	if rec.State().GameState != GameWaiting {
		t.Fatal("rejected start mutated game state")
	}
}

func TestLeaveAnnouncesAndClearsSession(t *testing.T) {
	ctrl, _, emitter, session, actionAPI := newControllerFixture(t)
	session.Bind("bob")
	actionAPI.leaveResp = &api.LeaveRoomResponse{
		Players: []events.Player{
			{Username: "alice", Team: "Red", Role: "Spymaster"},
		},
	}

	if err := ctrl.Leave(); err != nil {
		t.Fatalf("leave: %v", err)
	}
	if got := emitter.count(events.EventTypePlayerLeft); got != 1 {
		t.Fatalf("playerLeft sent %d times, want 1", got)
	}
	if session.Username() != "" {
		t.Fatal("session identity survived leave")
	}
}

func TestLeaveFailureKeepsSession(t *testing.T) {
	ctrl, _, emitter, session, actionAPI := newControllerFixture(t)
	session.Bind("bob")
	actionAPI.leaveErr = errors.New("leave room: backend returned 500")

	if err := ctrl.Leave(); err == nil {
		t.Fatal("expected leave failure")
	}
	if got := emitter.count(events.EventTypePlayerLeft); got != 0 {
		t.Fatalf("playerLeft sent %d times after failed leave", got)
	}
	if session.Username() != "bob" {
		t.Fatal("session cleared despite failed leave")
	}
}
