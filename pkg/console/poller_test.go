package console

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"asset-console/pkg/model"
	"asset-console/pkg/notify"
	"asset-console/pkg/store"
)

type fakeClock struct {
	mu      sync.Mutex
	tickers []*fakeTicker
}

func (f *fakeClock) NewTicker(time.Duration) Ticker {
	t := &fakeTicker{c: make(chan time.Time, 1)}
	f.mu.Lock()
	f.tickers = append(f.tickers, t)
	f.mu.Unlock()
	return t
}

func (f *fakeClock) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *fakeClock) fire(i int) {
	f.mu.Lock()
	t := f.tickers[i]
	f.mu.Unlock()
	t.c <- time.Now()
}

type fakeTicker struct {
	c       chan time.Time
	stopped atomic.Bool
}

func (t *fakeTicker) Chan() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()                  { t.stopped.Store(true) }

// scriptFetch returns the scripted observations in order, repeating the last
// one once the script runs out.
func scriptFetch(script ...*model.ScanTask) func(context.Context) (*model.ScanTask, error) {
	var i atomic.Int32
	return func(context.Context) (*model.ScanTask, error) {
		n := int(i.Add(1)) - 1
		if n >= len(script) {
			n = len(script) - 1
		}
		return script[n], nil
	}
}

func testPoller(fetch func(context.Context) (*model.ScanTask, error)) (*Poller, *store.Store, *atomic.Int32) {
	st := store.New()
	notes := notify.New(time.Minute)
	var changes atomic.Int32
	notes.OnChange(func(msg string) {
		if msg != "" {
			changes.Add(1)
		}
	})
	p := NewPoller(PollerOptions{
		Fetch:    fetch,
		Store:    st,
		Notes:    notes,
		Interval: time.Hour, // direct Tick calls in tests
	})
	return p, st, &changes
}

func TestCompletionNotifiesExactlyOnce(t *testing.T) {
	p, st, changes := testPoller(scriptFetch(runningScan(1), runningScan(1), nil))
	p.Kick()

	ctx := context.Background()
	p.Tick(ctx)
	p.Tick(ctx)
	_, ok := st.ActiveScanTask()
	require.True(t, ok)
	assert.Zero(t, changes.Load(), "progress ticks must stay silent")

	p.Tick(ctx)
	_, ok = st.ActiveScanTask()
	assert.False(t, ok)
	assert.Equal(t, Idle, p.State())
	assert.Equal(t, int32(1), changes.Load())

	// Idle ticks are no-ops, never a second notification.
	p.Tick(ctx)
	assert.Equal(t, int32(1), changes.Load())
}

func TestNeverSeenScanNeverNotifies(t *testing.T) {
	p, _, changes := testPoller(scriptFetch(nil))
	p.Kick()
	p.Tick(context.Background())
	assert.Equal(t, Idle, p.State())
	assert.Zero(t, changes.Load())
}

func TestTerminalEchoCountsAsCompletion(t *testing.T) {
	done := runningScan(3)
	done.Status = model.ScanStatusCompleted
	p, st, changes := testPoller(scriptFetch(runningScan(3), done))
	p.Kick()

	ctx := context.Background()
	p.Tick(ctx)
	p.Tick(ctx)
	_, ok := st.ActiveScanTask()
	assert.False(t, ok)
	assert.Equal(t, int32(1), changes.Load())
}

func TestFetchErrorKeepsLastKnownState(t *testing.T) {
	var fail atomic.Bool
	fetch := func(context.Context) (*model.ScanTask, error) {
		if fail.Load() {
			return nil, errors.New("backend away")
		}
		return runningScan(1), nil
	}
	p, st, changes := testPoller(fetch)
	p.Kick()

	ctx := context.Background()
	p.Tick(ctx)
	fail.Store(true)
	p.Tick(ctx)

	_, ok := st.ActiveScanTask()
	assert.True(t, ok, "an error tick must not clear the active scan")
	assert.Equal(t, Polling, p.State())
	assert.Zero(t, changes.Load())
}

func TestCancelWinsOverInFlightTick(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(context.Context) (*model.ScanTask, error) {
		close(started)
		<-release
		return runningScan(1), nil
	}
	p, st, changes := testPoller(fetch)
	st.SetActiveScanTask(runningScan(1))
	p.Kick()

	done := make(chan struct{})
	go func() {
		p.Tick(context.Background())
		close(done)
	}()

	<-started
	// Cancel path: clear optimistically, then drop the poller.
	st.MarkScanCancelled(1)
	p.Idle()
	close(release)
	<-done

	_, ok := st.ActiveScanTask()
	assert.False(t, ok, "stale tick must not resurrect a cancelled scan")
	assert.Equal(t, Idle, p.State())
	assert.Zero(t, changes.Load())
}

func TestStaleNilTickKeepsNewScanPolling(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	fetch := func(context.Context) (*model.ScanTask, error) {
		close(started)
		<-release
		return nil, nil
	}
	p, st, changes := testPoller(fetch)
	p.Kick()

	done := make(chan struct{})
	go func() {
		p.Tick(context.Background())
		close(done)
	}()

	<-started
	// A new scan starts while the old tick is still in flight.
	st.SetActiveScanTask(runningScan(7))
	p.Kick()
	close(release)
	<-done

	assert.Equal(t, Polling, p.State(), "a stale nil tick must not idle a freshly started scan")
	got, ok := st.ActiveScanTask()
	require.True(t, ok)
	assert.Equal(t, int64(7), got.ID)
	assert.Zero(t, changes.Load())
}

func TestBufferedFrameCannotResurrectCancelledScan(t *testing.T) {
	p, st, changes := testPoller(scriptFetch(nil))
	st.SetActiveScanTask(runningScan(5))
	p.Kick()
	// The cancel lands first; the frame below was already queued on the
	// socket when it did.
	st.MarkScanCancelled(5)
	p.Idle()

	p.Observe(runningScan(5))

	_, ok := st.ActiveScanTask()
	assert.False(t, ok, "a buffered progress frame must not resurrect a cancelled scan")
	assert.Equal(t, Idle, p.State())
	assert.Zero(t, changes.Load())

	// A different scan observed afterwards is taken at face value.
	p.Observe(runningScan(6))
	got, ok := st.ActiveScanTask()
	require.True(t, ok)
	assert.Equal(t, int64(6), got.ID)
	assert.Equal(t, Polling, p.State())
}

func TestObserveKicksOnUnseenActiveScan(t *testing.T) {
	p, st, _ := testPoller(scriptFetch(runningScan(9)))
	require.Equal(t, Idle, p.State())

	p.Observe(runningScan(9))
	got, ok := st.ActiveScanTask()
	require.True(t, ok)
	assert.Equal(t, int64(9), got.ID)
	assert.Equal(t, Polling, p.State())

	p.Observe(nil)
	_, ok = st.ActiveScanTask()
	assert.False(t, ok)
	assert.Equal(t, Idle, p.State())
}

func TestRunTicksAndStopsCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)

	clock := &fakeClock{}
	var calls atomic.Int32
	fetch := func(context.Context) (*model.ScanTask, error) {
		if calls.Add(1) == 1 {
			return runningScan(5), nil
		}
		return nil, nil
	}
	st := store.New()
	p := NewPoller(PollerOptions{
		Fetch:    fetch,
		Store:    st,
		Clock:    clock,
		Interval: time.Second,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	p.Kick()
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return clock.count() == 1 }, time.Second, time.Millisecond)

	clock.fire(0)
	require.Eventually(t, func() bool { return p.State() == Idle }, time.Second, time.Millisecond)
	assert.Equal(t, int32(2), calls.Load())

	// Going idle must stop the ticker so no timer outlives the scan.
	require.Eventually(t, func() bool {
		clock.mu.Lock()
		defer clock.mu.Unlock()
		return clock.tickers[0].stopped.Load()
	}, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

func runningScan(id int64) *model.ScanTask {
	return &model.ScanTask{
		ID:       id,
		Target:   "10.0.0.0/24",
		ScanType: model.ScanTypeQuick,
		Status:   model.ScanStatusRunning,
		Progress: 40,
	}
}
