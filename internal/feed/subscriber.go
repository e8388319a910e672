// Package feed keeps the dashboard subscribed to the signal stream. It
// owns the connection state machine and reconnects on a fixed delay.
package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/dgnsrekt/glassbox/internal/cue"
	"github.com/dgnsrekt/glassbox/internal/dashboard"
	"github.com/dgnsrekt/glassbox/internal/diag"
	"github.com/dgnsrekt/glassbox/internal/ingest"
)

const (
	// DefaultReconnectDelay is the fixed wait between a close and the next dial.
	DefaultReconnectDelay = 3 * time.Second

	MessageConnected    = "Connected to Nexus-7 trade signal stream"
	MessageDisconnected = "Connection closed. Reconnecting..."
)

// Cues receives feedback requests. *cue.Dispatcher satisfies it.
type Cues interface {
	Play(s cue.Sound) bool
	Announce(event, details string) bool
}

// Config wires a Subscriber.
type Config struct {
	URL            string
	ReconnectDelay time.Duration
	Dialer         Dialer
	Store          *dashboard.Store
	Cues           Cues
	Diag           diag.Sink
}

// Subscriber consumes the stream at URL into Store. Every close, read
// error or dial failure leads to a single reconnect after the delay.
type Subscriber struct {
	url    string
	delay  time.Duration
	dialer Dialer
	store  *dashboard.Store
	cues   Cues
	diag   diag.Sink

	now       func() time.Time
	afterFunc func(time.Duration, func()) (stop func() bool)

	wake      chan struct{}
	done      chan struct{}
	closeOnce sync.Once

	mu     sync.Mutex
	conn   Conn
	stop   func() bool
	cancel context.CancelFunc
	closed bool
}

type nopCues struct{}

func (nopCues) Play(cue.Sound) bool          { return false }
func (nopCues) Announce(string, string) bool { return false }

// New builds a Subscriber. Store is required.
func New(cfg Config) (*Subscriber, error) {
	if cfg.Store == nil {
		return nil, errors.New("feed: store is required")
	}
	if cfg.URL == "" {
		return nil, errors.New("feed: url is required")
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = DefaultReconnectDelay
	}
	if cfg.Dialer == nil {
		cfg.Dialer = WSDialer{}
	}
	if cfg.Cues == nil {
		cfg.Cues = nopCues{}
	}
	if cfg.Diag == nil {
		cfg.Diag = diag.Discard{}
	}
	return &Subscriber{
		url:    cfg.URL,
		delay:  cfg.ReconnectDelay,
		dialer: cfg.Dialer,
		store:  cfg.Store,
		cues:   cfg.Cues,
		diag:   cfg.Diag,
		now:    time.Now,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}, nil
}

// Run dials immediately and keeps the subscription alive until ctx is
// done or Close is called.
func (s *Subscriber) Run(ctx context.Context) error {
	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return parent.Err()
	}
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()

	s.signalWake()
	for {
		select {
		case <-s.done:
			return parent.Err()
		case <-s.wake:
			s.session(ctx)
		}
	}
}

// Close drops the connection, aborts an in-flight dial, cancels any
// pending reconnect and prevents further dials. It is safe to call more
// than once.
func (s *Subscriber) Close() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		if s.stop != nil {
			s.stop()
			s.stop = nil
		}
		conn := s.conn
		s.conn = nil
		cancel := s.cancel
		s.store.SetConnection(dashboard.StateDisconnected)
		s.mu.Unlock()

		if cancel != nil {
			cancel()
		}
		if conn != nil {
			if err := conn.Close(); err != nil {
				slog.Debug("feed connection close failed", "error", err)
			}
		}
		close(s.done)
	})
}

// State returns the current connection state.
func (s *Subscriber) State() dashboard.ConnectionState {
	return s.store.Connection()
}

func (s *Subscriber) signalWake() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// session runs one connect attempt and its read loop.
func (s *Subscriber) session(ctx context.Context) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.store.SetConnection(dashboard.StateConnecting)
	s.mu.Unlock()

	conn, err := s.dialer.Dial(ctx, s.url)
	if err != nil {
		slog.Warn("feed dial failed", "url", s.url, "error", err)
		s.disconnected(err)
		return
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		_ = conn.Close()
		return
	}
	s.conn = conn
	s.store.SetConnection(dashboard.StateConnected)
	s.mu.Unlock()

	slog.Info("feed connected", "url", s.url)
	s.systemLog(MessageConnected)
	s.cues.Play(cue.SoundSuccess)

	for {
		frame, err := conn.ReadText()
		if err != nil {
			slog.Debug("feed read loop exit", "error", err)
			s.disconnected(err)
			return
		}
		s.handleFrame(frame)
	}
}

// disconnected moves to the disconnected state and arms the reconnect
// timer. While a timer is pending further calls are no-ops.
func (s *Subscriber) disconnected(cause error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	conn := s.conn
	s.conn = nil
	if s.stop != nil {
		s.mu.Unlock()
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	s.store.SetConnection(dashboard.StateDisconnected)
	s.stop = s.afterFunc(s.delay, s.reconnect)
	s.mu.Unlock()

	if conn != nil {
		if err := conn.Close(); err != nil {
			slog.Debug("feed connection close failed", "error", err)
		}
	}
	slog.Info("feed disconnected", "error", cause, "retry_in", s.delay)
	s.systemLog(MessageDisconnected)
	s.cues.Play(cue.SoundError)
}

func (s *Subscriber) reconnect() {
	s.mu.Lock()
	s.stop = nil
	closed := s.closed
	s.mu.Unlock()
	if !closed {
		s.signalWake()
	}
}

func (s *Subscriber) handleFrame(frame []byte) {
	u, err := ingest.Decode(frame, s.now())
	if err != nil {
		slog.Debug("feed frame dropped", "error", err)
		s.diag.Record("decode", frame, err)
		return
	}
	if u.Empty() {
		s.diag.Record("empty", frame, nil)
		return
	}

	for _, e := range u.ApplyTo(s.store) {
		sound := cue.ForCategory(e.Category)
		if u.Opportunity != nil && e.Category == dashboard.CategoryAI {
			sound = cue.SoundOpportunity
		}
		s.cues.Play(sound)
	}
	for _, a := range u.Announcements {
		s.cues.Announce(a.Event, a.Details)
	}
}

func (s *Subscriber) systemLog(msg string) {
	s.store.AppendLog(dashboard.LogEntry{
		Timestamp: ingest.DisplayTime("", s.now()),
		Category:  dashboard.CategorySystem,
		Message:   msg,
	})
}
