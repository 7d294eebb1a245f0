// Package progress carries stage-boundary progress out of long-running runs.
package progress

import (
	"sync"
	"time"
)

// Reporter receives (stage, percent, message) at stage boundaries.
type Reporter interface {
	Report(stage string, percent int, message string)
}

// Func adapts a plain function to Reporter. A nil Func is a no-op.
type Func func(stage string, percent int, message string)

func (f Func) Report(stage string, percent int, message string) {
	if f != nil {
		f(stage, percent, message)
	}
}

// Nop discards every report.
var Nop Reporter = Func(nil)

type Event struct {
	Stage   string    `json:"stage"`
	Percent int       `json:"percent"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// Channel publishes events on a buffered channel. Reports never block: when
// the buffer is full the event is dropped and counted.
type Channel struct {
	mu      sync.Mutex
	ch      chan Event
	closed  bool
	dropped int
}

func NewChannel(buffer int) *Channel {
	if buffer <= 0 {
		buffer = 32
	}
	return &Channel{ch: make(chan Event, buffer)}
}

func (c *Channel) Events() <-chan Event { return c.ch }

func (c *Channel) Report(stage string, percent int, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.ch <- Event{Stage: stage, Percent: percent, Message: message, At: time.Now().UTC()}:
	default:
		c.dropped++
	}
}

// Close ends the stream. Reports after Close are ignored.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

func (c *Channel) Dropped() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dropped
}

// Recorder keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Report(stage string, percent int, message string) {
	r.mu.Lock()
	r.events = append(r.events, Event{Stage: stage, Percent: percent, Message: message, At: time.Now().UTC()})
	r.mu.Unlock()
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Percents returns the reported percentages in order.
func (r *Recorder) Percents() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.events))
	for i, e := range r.events {
		out[i] = e.Percent
	}
	return out
}
