// Package console is the client-side synchronization core: a mutation
// facade that drives every change through the backend and patches the store
// with the server's echo, plus the active-scan poller and its feeders.
package console

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"asset-console/pkg/metrics"
	"asset-console/pkg/notify"
	"asset-console/pkg/rest"
	"asset-console/pkg/store"
)

const DefaultPollInterval = 2500 * time.Millisecond

// Options wires a Console. API and Store are required; everything else is
// optional so tests can build minimal instances.
type Options struct {
	API          *rest.Client
	Store        *store.Store
	Notes        *notify.Channel
	Logger       *zap.SugaredLogger
	Metrics      *metrics.Metrics
	Journal      *Journal
	PollInterval time.Duration
	Clock        Clock
}

// Console exposes one method per (entity, verb) pair. Mutations are
// pessimistic: local state changes only after the backend confirms, and the
// server's returned representation is what gets applied - never the request
// payload. The single deliberate exception is scan cancel (see scans.go).
type Console struct {
	api     *rest.Client
	store   *store.Store
	notes   *notify.Channel
	log     *zap.SugaredLogger
	metrics *metrics.Metrics
	journal *Journal
	poller  *Poller
}

func New(opts Options) *Console {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop().Sugar()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	c := &Console{
		api:     opts.API,
		store:   opts.Store,
		notes:   opts.Notes,
		log:     opts.Logger,
		metrics: opts.Metrics,
		journal: opts.Journal,
	}
	c.poller = NewPoller(PollerOptions{
		Fetch:    c.fetchActiveScanTask,
		Store:    opts.Store,
		Notes:    opts.Notes,
		Logger:   opts.Logger,
		Metrics:  opts.Metrics,
		Clock:    opts.Clock,
		Interval: opts.PollInterval,
	})
	return c
}

// Store returns the underlying store for read-only snapshots.
func (c *Console) Store() *store.Store { return c.store }

// Poller returns the active-scan poller; the owner runs it.
func (c *Console) Poller() *Poller { return c.poller }

// publish sets the transient status message and counts it.
func (c *Console) publish(format string, args ...interface{}) {
	if c.notes == nil {
		return
	}
	c.notes.Publish(fmt.Sprintf(format, args...))
	if c.metrics != nil {
		c.metrics.NotificationsTotal.Inc()
	}
}

// mutated records bookkeeping for one confirmed mutation.
func (c *Console) mutated(entity, verb string, id int64, detail string) {
	c.log.Infof("%s %s id=%d %s", entity, verb, id, detail)
	if c.metrics != nil {
		c.metrics.MutationsTotal.Inc()
	}
	c.journal.Record(entity, verb, id, detail)
}

func (c *Console) mutationFailed() {
	if c.metrics != nil {
		c.metrics.MutationErrorsTotal.Inc()
	}
}
