// Package tick provides the millisecond counter that paces gravity, and the
// periodic timers that drive both the counter and the input sampler.
//
// On the development board these are two timer interrupts. Here a Timer runs
// handlers at a fixed period; HostTimer does so with real time and
// ManualTimer only when told to, which is what tests use.
package tick

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sabem/board/logger"
)

// Counter counts milliseconds. It is written by the 1ms timer handler and
// read, and occasionally reset, by the game loop. It is not a wall clock.
type Counter struct {
	ms atomic.Uint32
}

// Tick adds one millisecond. This is the 1ms timer handler.
func (c *Counter) Tick() {
	c.ms.Add(1)
}

// Milliseconds returns the number of ticks since the last Reset.
func (c *Counter) Milliseconds() uint32 {
	return c.ms.Load()
}

// Reset sets the counter back to zero.
func (c *Counter) Reset() {
	c.ms.Store(0)
}

// Set the counter to an arbitrary value. Only useful in tests.
func (c *Counter) Set(ms uint32) {
	c.ms.Store(ms)
}

// Timer calls handlers periodically.
type Timer interface {
	// Every registers a handler that is called once every period.
	Every(period time.Duration, handler func())
}

// HostTimer runs each handler on its own goroutine using a time.Ticker.
type HostTimer struct {
	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

// NewHostTimer returns a timer that is ready to accept handlers.
func NewHostTimer() *HostTimer {
	return &HostTimer{stop: make(chan struct{})}
}

// Every starts calling handler every period until Stop is called.
func (t *HostTimer) Every(period time.Duration, handler func()) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(period)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
				handler()
			}
		}
	}()
}

// Stop all handlers and wait until none of them is running anymore.
func (t *HostTimer) Stop() {
	t.stopped.Do(func() {
		close(t.stop)
	})
	t.wg.Wait()
}

// ManualTimer only moves forward when Advance is called.
type ManualTimer struct {
	now      time.Duration
	handlers []*manualHandler
}

type manualHandler struct {
	period  time.Duration
	next    time.Duration
	handler func()
}

// Every registers a handler. Its first call is one period from now.
func (t *ManualTimer) Every(period time.Duration, handler func()) {
	if period <= 0 {
		logger.Panicf("tick: non-positive timer period %v", period)
	}
	t.handlers = append(t.handlers, &manualHandler{
		period:  period,
		next:    t.now + period,
		handler: handler,
	})
}

// Advance moves time forward by d, calling every handler once for each period
// that elapsed. Calls are made in time order; handlers that are due at the
// same moment run in registration order.
func (t *ManualTimer) Advance(d time.Duration) {
	end := t.now + d
	for {
		due := make([]*manualHandler, 0, len(t.handlers))
		for _, h := range t.handlers {
			if h.next <= end {
				due = append(due, h)
			}
		}
		if len(due) == 0 {
			break
		}
		sort.SliceStable(due, func(i, j int) bool {
			return due[i].next < due[j].next
		})
		h := due[0]
		t.now = h.next
		h.next += h.period
		h.handler()
	}
	t.now = end
}

// Now returns how much time has been advanced in total.
func (t *ManualTimer) Now() time.Duration {
	return t.now
}
