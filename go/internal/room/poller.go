package room

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/codenames/go/internal/api"
)

// SnapshotSource is the REST surface the poller needs, satisfied by
// *api.Client.
type SnapshotSource interface {
	GetRoom(roomCode string) (*api.RoomSnapshot, error)
	GetHint(roomCode string) (string, error)
}

// PollerConfig holds polling cadence.
type PollerConfig struct {
	SnapshotInterval time.Duration
	HintInterval     time.Duration

	// LeaveGrace is how long an invalid room is shown before the leave
	// callback fires, covering rooms that were deleted or never existed.
	LeaveGrace time.Duration
}

// DefaultPollerConfig returns the cadence the original client used.
func DefaultPollerConfig() PollerConfig {
	return PollerConfig{
		SnapshotInterval: 2 * time.Second,
		HintInterval:     5 * time.Second,
		LeaveGrace:       1 * time.Second,
	}
}

// Poller periodically refetches the full room snapshot as a correctness
// backstop against missed push events, plus the current hint on a slower
// cadence. Push delivery and poll responses may interleave either way;
// the reconciler's merge rules absorb that.
type Poller struct {
	clock    clockwork.Clock
	source   SnapshotSource
	rec      *Reconciler
	roomCode string
	config   PollerConfig

	// onLeave fires after LeaveGrace once the room proves invalid; the
	// caller navigates away from the room view.
	onLeave func()

	mu         sync.Mutex
	lastErr    error
	graceTimer clockwork.Timer

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewPoller creates a poller feeding rec. onLeave may be nil.
func NewPoller(clock clockwork.Clock, source SnapshotSource, rec *Reconciler, roomCode string, config PollerConfig, onLeave func()) *Poller {
	if onLeave == nil {
		onLeave = func() {}
	}
	return &Poller{
		clock:    clock,
		source:   source,
		rec:      rec,
		roomCode: roomCode,
		config:   config,
		onLeave:  onLeave,
		stop:     make(chan struct{}),
	}
}

// Start fetches once immediately, then polls on the configured intervals
// until Stop.
func (p *Poller) Start() {
	p.fetchSnapshot()
	p.fetchHint()

	p.wg.Add(1)
	go p.loop()
}

// Stop tears down the poll tickers and any pending leave timer. Safe to
// call more than once.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		close(p.stop)
	})
	p.wg.Wait()

	p.mu.Lock()
	if p.graceTimer != nil {
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
	p.mu.Unlock()
}

// Err returns the current error flag: the last snapshot failure, or nil
// after a valid response.
func (p *Poller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func (p *Poller) loop() {
	defer p.wg.Done()

	snapshotTicker := p.clock.NewTicker(p.config.SnapshotInterval)
	defer snapshotTicker.Stop()
	hintTicker := p.clock.NewTicker(p.config.HintInterval)
	defer hintTicker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-snapshotTicker.Chan():
			p.fetchSnapshot()
		case <-hintTicker.Chan():
			p.fetchHint()
		}
	}
}

func (p *Poller) fetchSnapshot() {
	snapshot, err := p.source.GetRoom(p.roomCode)
	if err != nil {
		log.Warn().Err(err).Str("room_code", p.roomCode).Msg("snapshot fetch failed")
		p.flagInvalid(err)
		return
	}
	if len(snapshot.Players) == 0 {
		// An empty room means it was deleted or never existed.
		log.Warn().Str("room_code", p.roomCode).Msg("snapshot has no players")
		p.flagInvalid(api.ErrRoomNotFound)
		return
	}

	p.mu.Lock()
	p.lastErr = nil
	if p.graceTimer != nil {
		// The room recovered before the grace delay expired.
		p.graceTimer.Stop()
		p.graceTimer = nil
	}
	p.mu.Unlock()

	p.rec.ApplySnapshot(snapshot)
}

func (p *Poller) fetchHint() {
	hint, err := p.source.GetHint(p.roomCode)
	if err != nil {
		// Transient; the next tick retries.
		log.Debug().Err(err).Str("room_code", p.roomCode).Msg("hint fetch failed")
		return
	}
	p.rec.SetHintFromPoll(hint)
}

func (p *Poller) flagInvalid(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.lastErr = err
	if p.graceTimer != nil {
		return
	}
	p.graceTimer = p.clock.AfterFunc(p.config.LeaveGrace, func() {
		select {
		case <-p.stop:
		default:
			p.onLeave()
		}
	})
}
