package console

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"asset-console/pkg/metrics"
	"asset-console/pkg/model"
	"asset-console/pkg/notify"
	"asset-console/pkg/store"
)

// PollerState is the poller's lifecycle position.
type PollerState int

const (
	// Idle: no active scan, no timer running.
	Idle PollerState = iota
	// Polling: a scan is (believed) active; ticks refresh it.
	Polling
)

// PollerOptions wires a Poller. Fetch and Store are required.
type PollerOptions struct {
	Fetch    func(ctx context.Context) (*model.ScanTask, error)
	Store    *store.Store
	Notes    *notify.Channel
	Logger   *zap.SugaredLogger
	Metrics  *metrics.Metrics
	Clock    Clock
	Interval time.Duration
}

// Poller tracks the single active scan task: while one exists it re-fetches
// the status every interval, and when the task disappears (or turns
// terminal) it publishes one "scan completed" notification and goes idle.
// The notification is edge-triggered: only the transition from a seen task
// to none fires it, never an idle tick.
//
// Every observation is epoch-guarded against the store, so a cancel that
// cleared the slot while a tick was in flight wins over the tick's stale
// "still running" answer.
type Poller struct {
	fetch    func(ctx context.Context) (*model.ScanTask, error)
	store    *store.Store
	notes    *notify.Channel
	log      *zap.SugaredLogger
	metrics  *metrics.Metrics
	clock    Clock
	interval time.Duration

	mu    sync.Mutex
	state PollerState
	kick  chan struct{}
}

func NewPoller(opts PollerOptions) *Poller {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultPollInterval
	}
	return &Poller{
		fetch:    opts.Fetch,
		store:    opts.Store,
		notes:    opts.Notes,
		log:      opts.Logger,
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		interval: opts.Interval,
		kick:     make(chan struct{}, 1),
	}
}

// State returns the current lifecycle position.
func (p *Poller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Kick forces Idle -> Polling with an immediate tick, so starting a scan
// does not wait a full interval to show up.
func (p *Poller) Kick() {
	p.mu.Lock()
	p.state = Polling
	p.mu.Unlock()
	select {
	case p.kick <- struct{}{}:
	default:
	}
}

// Idle drops the poller back to Idle without a notification. The cancel
// path uses it after its optimistic clear.
func (p *Poller) Idle() {
	p.mu.Lock()
	p.state = Idle
	p.mu.Unlock()
}

// Run drives ticks until ctx is cancelled. The ticker only exists while
// Polling; going idle stops it so no timer outlives its use.
func (p *Poller) Run(ctx context.Context) {
	var ticker Ticker
	stopTicker := func() {
		if ticker != nil {
			ticker.Stop()
			ticker = nil
		}
	}
	defer stopTicker()
	for {
		var tickC <-chan time.Time
		if p.State() == Polling {
			if ticker == nil {
				ticker = p.clock.NewTicker(p.interval)
			}
			tickC = ticker.Chan()
		} else {
			stopTicker()
		}
		select {
		case <-ctx.Done():
			return
		case <-p.kick:
			p.Tick(ctx)
		case <-tickC:
			p.Tick(ctx)
		}
	}
}

// Tick performs one poll round trip and applies the observation. Fetch
// errors are swallowed: the previous known state stands until the next
// successful tick, since this is a read-only refresh of server truth.
func (p *Poller) Tick(ctx context.Context) {
	if p.State() != Polling {
		return
	}
	if p.metrics != nil {
		p.metrics.PollTicksTotal.Inc()
	}
	epoch := p.store.ScanEpoch()
	task, err := p.fetch(ctx)
	if err != nil {
		if p.metrics != nil {
			p.metrics.PollErrorsTotal.Inc()
		}
		p.log.Debugf("poll tick failed, keeping last known state: %v", err)
		return
	}
	p.apply(epoch, task)
}

// Observe feeds an out-of-band observation (e.g. a pushed websocket
// progress frame) through the same epoch-guarded path as a poll tick.
// Frames for the most recently cancelled task are dropped: they were queued
// on the socket before the cancel landed, and the cancel wins.
func (p *Poller) Observe(task *model.ScanTask) {
	if task != nil && task.Active() && p.store.ScanCancelled(task.ID) {
		return
	}
	p.apply(p.store.ScanEpoch(), task)
	if task != nil && task.Active() && p.State() != Polling {
		// A scan is running that the poller did not know about.
		p.Kick()
	}
}

func (p *Poller) apply(epoch uint64, task *model.ScanTask) {
	if task != nil && task.Active() {
		p.store.SetActiveScanTaskIf(epoch, task)
		return
	}
	// Null or terminal: a valid end-of-scan observation, not an error.
	_, had := p.store.ActiveScanTask()
	if !p.store.SetActiveScanTaskIf(epoch, nil) {
		// The epoch moved while this observation was in flight: a cancel or
		// a newly started scan owns the slot now, and decides the state.
		return
	}
	p.Idle()
	if had {
		p.log.Infof("active scan finished")
		if p.notes != nil {
			p.notes.Publish("scan completed")
		}
		if p.metrics != nil {
			p.metrics.NotificationsTotal.Inc()
		}
	}
}
