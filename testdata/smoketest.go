package main

import (
	"github.com/aykevl/tinygl/pixel"
	"github.com/sabem/board"
	"github.com/sabem/board/joystick"
)

func main() {
	// Verify board name constant.
	var _ string = board.Name

	// Assert that board.Display implements board.Displayer.
	checkScreen(board.Display.Configure())

	// Assert that Display uses the usual interface.
	var _ interface {
		Configure() board.Displayer[pixel.RGB565BE]
		Size() (int16, int16)
		PPI() int
	} = board.Display

	// Assert that board.Joystick uses the usual interface.
	var _ interface {
		Configure()
		Read() joystick.Direction
	} = board.Joystick
}

func checkScreen[T pixel.Color](display board.Displayer[T]) {
}
