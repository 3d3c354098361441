package render

import (
	"image/color"

	"github.com/aykevl/tinygl/pixel"
)

// Color is the 16-bit colour tag used everywhere on the LCD. A zero value is
// black, which the playfield also uses for "empty".
type Color = pixel.RGB565BE

// RGB converts a 24-bit colour to the 16-bit (5:6:5) LCD format. The result is
// stored big endian, as pixel.RGB565BE defines.
func RGB(r, g, b uint8) Color {
	val := uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b&0xF8)>>3
	return Color(val>>8 | val<<8)
}

// components returns the 8-bit red, green and blue values of c. The low bits
// lost in the conversion to 5:6:5 are filled in from the high bits so white
// stays white.
func components(c Color) (r, g, b uint8) {
	val := uint16(c)>>8 | uint16(c)<<8
	r = uint8(val>>11) << 3
	g = uint8(val>>5&0x3f) << 2
	b = uint8(val&0x1f) << 3
	return r | r>>5, g | g>>6, b | b>>5
}

// RGBA returns c as a standard library colour.
func RGBA(c Color) color.RGBA {
	r, g, b := components(c)
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

// Colours of the firmware palette.
var (
	Black   = RGB(0, 0, 0)
	White   = RGB(255, 255, 255)
	Red     = RGB(255, 0, 0)
	Green   = RGB(0, 255, 0)
	Blue    = RGB(0, 0, 255)
	Cyan    = RGB(0, 255, 255)
	Magenta = RGB(255, 0, 255)
	Yellow  = RGB(255, 255, 0)
	Orange  = RGB(255, 128, 0)
)

// shade mixes c with white (positive amount) or black (negative amount).
// The amount is in 1/8ths.
func shade(c Color, amount int) Color {
	r, g, b := components(c)
	mix := func(v uint8) uint8 {
		if amount >= 0 {
			return v + uint8((int(255-v)*amount)/8)
		}
		return v - uint8((int(v)*-amount)/8)
	}
	return RGB(mix(r), mix(g), mix(b))
}
