// Package input turns the level of the 5-way joystick into discrete press
// events.
//
// Sample is meant to be called every 20ms from a timer. It compares the
// current joystick direction with the one read on the previous call and
// publishes transitions into a single-slot register. The game loop empties the
// register with Poll. The register only holds one event: a transition that
// happens while an event is still pending is dropped, which is fine for a
// debouncer.
package input

import (
	"sync/atomic"

	"github.com/sabem/board/joystick"
)

// Event is a single input transition read from the slot.
type Event uint8

const (
	// None means there was no pending event.
	None = Event(joystick.None)

	// Presses, one per joystick direction.
	Up     = Event(joystick.Up)
	Down   = Event(joystick.Down)
	Left   = Event(joystick.Left)
	Right  = Event(joystick.Right)
	Center = Event(joystick.Center)

	// Idle is published when the joystick goes back to rest. It is different
	// from None so that a menu can tell "nothing happened" apart from "the
	// joystick was released".
	Idle Event = 0xA5
)

// Pressed returns whether the event is a press (not None and not Idle).
func (e Event) Pressed() bool {
	return e != None && e != Idle
}

func (e Event) String() string {
	switch e {
	case None:
		return "none"
	case Idle:
		return "idle"
	default:
		return joystick.Direction(e).String()
	}
}

// Joystick is the level-read input the sampler is polling.
type Joystick interface {
	Read() joystick.Direction
}

// Poller is the consumer side of a sampler.
type Poller interface {
	Poll() Event
}

// Sampler is an edge-detecting debouncer over a joystick.
type Sampler struct {
	stick Joystick

	// Direction read on the previous Sample call. Only used by Sample.
	previous joystick.Direction

	// Pending event, or 0 (None) when empty.
	slot atomic.Uint32
}

// NewSampler returns a sampler reading the given joystick.
func NewSampler(stick Joystick) *Sampler {
	return &Sampler{stick: stick}
}

// Sample reads the joystick once and publishes a press on a rest→direction
// transition, or Idle on a direction→rest transition. Nothing is published
// while the joystick is held steady, or while the previous event hasn't been
// polled yet.
func (s *Sampler) Sample() {
	current := s.stick.Read()
	switch {
	case s.previous == joystick.None && current != joystick.None:
		s.slot.CompareAndSwap(uint32(None), uint32(current))
	case s.previous != joystick.None && current == joystick.None:
		s.slot.CompareAndSwap(uint32(None), uint32(Idle))
	}
	s.previous = current
}

// Poll returns the pending event and empties the slot. It returns None when no
// event is pending.
func (s *Sampler) Poll() Event {
	return Event(s.slot.Swap(uint32(None)))
}
