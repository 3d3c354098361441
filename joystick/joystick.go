// Package joystick describes the state of the 5-way joystick found on the
// development board: one of four directions, the center push, or at rest.
package joystick

// Direction is the direction the joystick is currently held in.
type Direction uint8

// List of all joystick states.
const (
	None Direction = iota // at rest
	Up
	Down
	Left
	Right
	Center
)

func (d Direction) String() string {
	switch d {
	case None:
		return "none"
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	case Center:
		return "center"
	default:
		return "invalid"
	}
}

// Mask is a set of directions held at the same time, as read from the
// individual switches of the joystick.
type Mask uint8

// With returns the mask with d added.
func (m Mask) With(d Direction) Mask {
	if d == None {
		return m
	}
	return m | 1<<(d-1)
}

// Without returns the mask with d removed.
func (m Mask) Without(d Direction) Mask {
	if d == None {
		return m
	}
	return m &^ (1 << (d - 1))
}

// Has returns whether d is part of the mask.
func (m Mask) Has(d Direction) bool {
	return d != None && m&(1<<(d-1)) != 0
}

// Direction resolves a set of held switches to a single direction. When more
// than one switch is closed the first one in the order up, down, left, right,
// center wins.
func (m Mask) Direction() Direction {
	for _, d := range [...]Direction{Up, Down, Left, Right, Center} {
		if m.Has(d) {
			return d
		}
	}
	return None
}
