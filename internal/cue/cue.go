// Package cue delivers audible feedback for dashboard events. Cues are
// fire-and-forget: a slow or failing player never stalls the subscriber.
package cue

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/dgnsrekt/glassbox/internal/dashboard"
)

// Sound names a short feedback tone.
type Sound string

const (
	SoundTrade       Sound = "trade"
	SoundOpportunity Sound = "opportunity"
	SoundAlert       Sound = "alert"
	SoundSuccess     Sound = "success"
	SoundError       Sound = "error"
	SoundTick        Sound = "tick"
)

// ForCategory picks the tone played when a log entry of c arrives.
func ForCategory(c dashboard.Category) Sound {
	switch c {
	case dashboard.CategoryExecution:
		return SoundTrade
	case dashboard.CategoryRisk:
		return SoundAlert
	default:
		return SoundTick
	}
}

// Player plays a tone.
type Player interface {
	Play(s Sound) error
}

// Announcer speaks a short summary of an event.
type Announcer interface {
	Announce(event, details string) error
}

// Config controls a Dispatcher. Volume belongs to the Player.
type Config struct {
	Enabled   bool
	QueueSize int
}

const defaultQueueSize = 32

type request struct {
	sound   Sound
	event   string
	details string
}

// Dispatcher runs cues on a single goroutine fed by a bounded queue.
type Dispatcher struct {
	cfg       Config
	player    Player
	announcer Announcer

	mu      sync.Mutex
	closed  bool
	queue   chan request
	wg      sync.WaitGroup
	dropped atomic.Int64
}

// NewDispatcher starts the delivery goroutine. Nil collaborators are
// replaced with Nop.
func NewDispatcher(cfg Config, player Player, announcer Announcer) *Dispatcher {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if player == nil {
		player = Nop{}
	}
	if announcer == nil {
		announcer = Nop{}
	}
	d := &Dispatcher{
		cfg:       cfg,
		player:    player,
		announcer: announcer,
		queue:     make(chan request, cfg.QueueSize),
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

// Play queues a tone. It reports false when cues are disabled, the queue
// is full or the dispatcher is closed.
func (d *Dispatcher) Play(s Sound) bool {
	return d.enqueue(request{sound: s})
}

// Announce queues a spoken summary.
func (d *Dispatcher) Announce(event, details string) bool {
	return d.enqueue(request{event: event, details: details})
}

// Dropped counts cues discarded because the queue was full.
func (d *Dispatcher) Dropped() int64 {
	return d.dropped.Load()
}

// Close stops accepting cues and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.queue)
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) enqueue(r request) bool {
	if !d.cfg.Enabled {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	select {
	case d.queue <- r:
		return true
	default:
		d.dropped.Add(1)
		slog.Debug("cue queue full, dropping", "sound", r.sound, "event", r.event)
		return false
	}
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	for r := range d.queue {
		if err := d.deliver(r); err != nil {
			slog.Debug("cue failed", "sound", r.sound, "event", r.event, "error", err)
		}
	}
}

func (d *Dispatcher) deliver(r request) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("cue: panic: %v", p)
		}
	}()
	if r.sound != "" {
		return d.player.Play(r.sound)
	}
	return d.announcer.Announce(r.event, r.details)
}

// LogPlayer writes cues to slog instead of a sound device.
type LogPlayer struct {
	Volume float64
}

func (p LogPlayer) Play(s Sound) error {
	slog.Info("cue", "sound", s, "volume", p.Volume)
	return nil
}

func (p LogPlayer) Announce(event, details string) error {
	slog.Info("announce", "event", event, "details", details)
	return nil
}

// Nop discards every cue.
type Nop struct{}

func (Nop) Play(Sound) error              { return nil }
func (Nop) Announce(string, string) error { return nil }
