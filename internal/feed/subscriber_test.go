package feed

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgnsrekt/glassbox/internal/cue"
	"github.com/dgnsrekt/glassbox/internal/dashboard"
)

type fakeConn struct {
	frames    chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn(frames ...string) *fakeConn {
	c := &fakeConn{frames: make(chan []byte, len(frames)), closed: make(chan struct{})}
	for _, f := range frames {
		c.frames <- []byte(f)
	}
	return c
}

func (c *fakeConn) hangUp() { close(c.frames) }

func (c *fakeConn) ReadText() ([]byte, error) {
	select {
	case f, ok := <-c.frames:
		if !ok {
			return nil, io.EOF
		}
		return f, nil
	case <-c.closed:
		return nil, net.ErrClosed
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

type fakeDialer struct {
	mu    sync.Mutex
	conns []*fakeConn
	dials int
}

func (d *fakeDialer) Dial(context.Context, string) (Conn, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dials++
	if len(d.conns) == 0 {
		return nil, errors.New("connection refused")
	}
	c := d.conns[0]
	d.conns = d.conns[1:]
	return c, nil
}

func (d *fakeDialer) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dials
}

type fakeTimers struct {
	mu      sync.Mutex
	fns     []func()
	delays  []time.Duration
	stopped int
}

func (f *fakeTimers) afterFunc(d time.Duration, fn func()) func() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fns = append(f.fns, fn)
	f.delays = append(f.delays, d)
	return func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.stopped++
		return true
	}
}

func (f *fakeTimers) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.fns)
}

func (f *fakeTimers) fire(i int) {
	f.mu.Lock()
	fn := f.fns[i]
	f.mu.Unlock()
	fn()
}

type cueRecorder struct {
	mu        sync.Mutex
	sounds    []cue.Sound
	announced []string
}

func (r *cueRecorder) Play(s cue.Sound) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sounds = append(r.sounds, s)
	return true
}

func (r *cueRecorder) Announce(event, _ string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.announced = append(r.announced, event)
	return true
}

func (r *cueRecorder) played() []cue.Sound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]cue.Sound(nil), r.sounds...)
}

type diagRecorder struct {
	mu      sync.Mutex
	reasons []string
}

func (d *diagRecorder) Record(reason string, _ []byte, _ error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.reasons = append(d.reasons, reason)
}

func (d *diagRecorder) recorded() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.reasons...)
}

type harness struct {
	sub    *Subscriber
	store  *dashboard.Store
	dialer *fakeDialer
	timers *fakeTimers
	cues   *cueRecorder
	diag   *diagRecorder
}

func newHarness(t *testing.T, conns ...*fakeConn) *harness {
	t.Helper()
	h := &harness{
		store: dashboard.NewStore(dashboard.DefaultLogCapacity, []dashboard.TrackedSymbol{
			{Symbol: "SOL", Reference: decimal.RequireFromString("146.20")},
		}),
		dialer: &fakeDialer{conns: conns},
		timers: &fakeTimers{},
		cues:   &cueRecorder{},
		diag:   &diagRecorder{},
	}
	sub, err := New(Config{URL: "ws://relay.test/signals/stream", Dialer: h.dialer, Store: h.store, Cues: h.cues, Diag: h.diag})
	require.NoError(t, err)
	sub.afterFunc = h.timers.afterFunc
	sub.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	h.sub = sub
	return h
}

func messages(s *dashboard.Store) []string {
	var out []string
	for _, e := range s.Logs() {
		out = append(out, e.Message)
	}
	return out
}

func TestNewValidates(t *testing.T) {
	_, err := New(Config{URL: "ws://x"})
	require.Error(t, err)
	_, err = New(Config{Store: dashboard.NewStore(1, nil)})
	require.Error(t, err)

	s, err := New(Config{URL: "ws://x", Store: dashboard.NewStore(1, nil)})
	require.NoError(t, err)
	assert.Equal(t, DefaultReconnectDelay, s.delay)
}

func TestRepeatedCloseArmsSingleTimer(t *testing.T) {
	h := newHarness(t)

	h.sub.disconnected(errors.New("first"))
	h.sub.disconnected(errors.New("second"))
	h.sub.disconnected(nil)

	require.Equal(t, 1, h.timers.count())
	assert.Equal(t, DefaultReconnectDelay, h.timers.delays[0])
	assert.Equal(t, dashboard.StateDisconnected, h.sub.State())
	assert.Equal(t, []string{MessageDisconnected}, messages(h.store))

	h.timers.fire(0)
	assert.Len(t, h.sub.wake, 1)

	h.sub.disconnected(errors.New("after fire"))
	assert.Equal(t, 2, h.timers.count())
}

func TestRunConsumesFramesAndReconnects(t *testing.T) {
	conn := newFakeConn(
		`{"type":"AI_SCAN","message":"Scanning SOL","id":"m1"}`,
		`{"topic":"trade-signals","event":"price","payload":{"symbol":"SOL/USDT","price":150}}`,
		`{"type":`,
		`{"topic":"trade-signals","event":"trade","payload":{"side":"sell","amount":1,"symbol":"SOL","price":150}}`,
	)
	conn.hangUp()
	h := newHarness(t, conn)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- h.sub.Run(ctx) }()

	require.Eventually(t, func() bool {
		return h.timers.count() == 1 && len(h.cues.played()) == 4
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, dashboard.StateDisconnected, h.sub.State())
	assert.Equal(t, []string{MessageConnected, "Scanning SOL", "SELL 1 SOL @ 150", MessageDisconnected}, messages(h.store))

	st, ok := h.store.Price("SOL")
	require.True(t, ok)
	assert.True(t, decimal.RequireFromString("150").Equal(st.Price))

	assert.Equal(t, []string{"decode"}, h.diag.recorded())
	assert.Equal(t, []cue.Sound{cue.SoundSuccess, cue.SoundTick, cue.SoundTrade, cue.SoundError}, h.cues.played())

	// Dial failure behaves like a close.
	h.timers.fire(0)
	require.Eventually(t, func() bool { return h.timers.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, h.dialer.count())

	cancel()
	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 1, h.timers.stopped)

	h.timers.fire(1)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 2, h.dialer.count(), "no dial after cancel")
}

func TestCloseDuringReadStopsWithoutReconnect(t *testing.T) {
	conn := newFakeConn()
	h := newHarness(t, conn)

	errCh := make(chan error, 1)
	go func() { errCh <- h.sub.Run(context.Background()) }()

	require.Eventually(t, func() bool { return h.sub.State() == dashboard.StateConnected }, time.Second, 5*time.Millisecond)
	h.sub.Close()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
	assert.Zero(t, h.timers.count())
	assert.Equal(t, dashboard.StateDisconnected, h.sub.State())
	assert.Equal(t, []string{MessageConnected}, messages(h.store))
	h.sub.Close()
}

type blockingDialer struct {
	started chan struct{}
}

func (d *blockingDialer) Dial(ctx context.Context, _ string) (Conn, error) {
	close(d.started)
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestCloseAbortsPendingDial(t *testing.T) {
	h := newHarness(t)
	dialer := &blockingDialer{started: make(chan struct{})}
	h.sub.dialer = dialer

	errCh := make(chan error, 1)
	go func() { errCh <- h.sub.Run(context.Background()) }()

	select {
	case <-dialer.started:
	case <-time.After(time.Second):
		t.Fatal("dial never started")
	}
	assert.Equal(t, dashboard.StateConnecting, h.sub.State())
	h.sub.Close()

	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close with a dial in flight")
	}
	assert.Zero(t, h.timers.count())
	assert.Equal(t, dashboard.StateDisconnected, h.sub.State())
	assert.Empty(t, messages(h.store))
}
