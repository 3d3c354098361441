package input

import (
	"testing"

	"github.com/sabem/board/joystick"
	"github.com/stretchr/testify/assert"
)

type fakeJoystick struct {
	held joystick.Direction
}

func (j *fakeJoystick) Read() joystick.Direction {
	return j.held
}

func TestPressAndRelease(t *testing.T) {
	stick := &fakeJoystick{}
	s := NewSampler(stick)

	s.Sample()
	assert.Equal(t, None, s.Poll(), "nothing happens at rest")

	stick.held = joystick.Left
	s.Sample()
	assert.Equal(t, Left, s.Poll())
	assert.Equal(t, None, s.Poll(), "slot is cleared by Poll")

	// holding the direction doesn't repeat the press
	s.Sample()
	s.Sample()
	assert.Equal(t, None, s.Poll())

	stick.held = joystick.None
	s.Sample()
	assert.Equal(t, Idle, s.Poll())
	assert.Equal(t, None, s.Poll())
}

func TestPendingEventNotOverwritten(t *testing.T) {
	stick := &fakeJoystick{}
	s := NewSampler(stick)

	stick.held = joystick.Up
	s.Sample()
	stick.held = joystick.None
	s.Sample() // release is lost: the press is still pending
	stick.held = joystick.Down
	s.Sample() // so is the second press

	assert.Equal(t, Up, s.Poll())
	assert.Equal(t, None, s.Poll())

	// The sampler did track the transitions, so releasing now publishes Idle.
	stick.held = joystick.None
	s.Sample()
	assert.Equal(t, Idle, s.Poll())
}

func TestDirectionChangeWithoutRest(t *testing.T) {
	stick := &fakeJoystick{held: joystick.Right}
	s := NewSampler(stick)

	s.Sample()
	assert.Equal(t, Right, s.Poll())

	// Sliding from right to center without passing through rest is not a new
	// press.
	stick.held = joystick.Center
	s.Sample()
	assert.Equal(t, None, s.Poll())
}

func TestPressed(t *testing.T) {
	for _, tc := range []struct {
		event   Event
		pressed bool
	}{
		{None, false},
		{Idle, false},
		{Up, true},
		{Down, true},
		{Left, true},
		{Right, true},
		{Center, true},
	} {
		assert.Equal(t, tc.pressed, tc.event.Pressed(), "event %s", tc.event)
	}
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "none", None.String())
	assert.Equal(t, "center", Center.String())
}
