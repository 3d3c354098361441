package render

import (
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/freemono"
	"tinygo.org/x/tinyfont/proggy"
)

// Screen size of the LCD the game was laid out for.
const (
	ScreenWidth  = 480
	ScreenHeight = 272
)

// BlockSize is the size in pixels of a single board cell.
const BlockSize = 15

// Surface is what the game draws on. Coordinates are in screen pixels and
// anything outside the screen is clipped.
type Surface interface {
	// Clear fills the whole screen with a single colour.
	Clear(c Color)

	// DrawBlock draws a single shaded BlockSize×BlockSize block with its top
	// left corner at (px, py). A black block erases.
	DrawBlock(px, py int16, c Color)

	// DrawText draws a single line of text with its top left corner at
	// (px, py), on a box of the background colour.
	DrawText(px, py int16, fg, bg Color, font Font, text string)

	// FillRect fills the rectangle between two corners, both inclusive.
	FillRect(x0, y0, x1, y1 int16, c Color)
}

// Font is one of the three text sizes of the LCD.
type Font uint8

const (
	Small  Font = iota // 8x16 on the LCD
	Medium             // 12x24
	Large              // 16x32
)

type fontFace struct {
	face   *tinyfont.Font
	height int16 // height of the background box
	ascent int16 // distance from the top of the box to the baseline
}

var fontFaces = [...]fontFace{
	Small:  {&proggy.TinySZ8pt7b, 16, 12},
	Medium: {&freemono.Regular12pt7b, 24, 17},
	Large:  {&freemono.Bold12pt7b, 32, 23},
}

// Height returns the height of a line of text in this font.
func (f Font) Height() int16 {
	return f.face().height
}

// Width returns the width of the text when drawn in this font.
func (f Font) Width(text string) int16 {
	_, outbox := tinyfont.LineWidth(f.face().face, text)
	return int16(outbox)
}

func (f Font) face() *fontFace {
	if int(f) >= len(fontFaces) {
		return &fontFaces[Small]
	}
	return &fontFaces[f]
}
