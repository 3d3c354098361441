package render

import (
	"fmt"
	"image/color"
	"sync"

	"tinygo.org/x/tinyfont"
)

// Displayer is the display a framebuffer is flushed to. It has the same
// methods as the board displays.
type Displayer interface {
	Size() (width, height int16)
	DrawRGBBitmap8(x, y int16, buf []uint8, w, h int16) error
	Display() error
}

// Framebuffer is an in-memory copy of the screen, like the SDRAM framebuffer
// the LCD controller scans out. The game draws into it from the main loop while
// Display copies the changed part to the real display, usually from a timer.
type Framebuffer struct {
	lock   sync.Mutex
	width  int16
	height int16
	pix    []Color

	// Changed area since the last Display call, inclusive.
	dirty              bool
	dx0, dy0, dx1, dy1 int16

	flushLock sync.Mutex
	display   Displayer
	buf       []byte
}

// NewFramebuffer returns a black framebuffer the size of the display.
func NewFramebuffer(display Displayer) *Framebuffer {
	width, height := display.Size()
	fb := &Framebuffer{
		width:   width,
		height:  height,
		pix:     make([]Color, int(width)*int(height)),
		display: display,
	}
	fb.markDirty(0, 0, width-1, height-1)
	return fb
}

// Size returns the framebuffer size in pixels.
func (fb *Framebuffer) Size() (width, height int16) {
	return fb.width, fb.height
}

// Pixel returns the colour at the given position, or black outside the
// screen.
func (fb *Framebuffer) Pixel(x, y int16) Color {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return Black
	}
	return fb.pix[int(y)*int(fb.width)+int(x)]
}

// Clear fills the whole screen.
func (fb *Framebuffer) Clear(c Color) {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	for i := range fb.pix {
		fb.pix[i] = c
	}
	fb.markDirty(0, 0, fb.width-1, fb.height-1)
}

// FillRect fills the rectangle between (x0, y0) and (x1, y1), both inclusive.
// The corners may be given in any order.
func (fb *Framebuffer) FillRect(x0, y0, x1, y1 int16, c Color) {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	fb.fill(x0, y0, x1, y1, c)
}

// DrawBlock draws a board cell. Coloured blocks get a lighter top and left
// edge and a darker bottom and right edge, black blocks are drawn flat.
func (fb *Framebuffer) DrawBlock(px, py int16, c Color) {
	fb.lock.Lock()
	defer fb.lock.Unlock()
	x1, y1 := px+BlockSize-1, py+BlockSize-1
	fb.fill(px, py, x1, y1, c)
	if c == Black {
		return
	}
	light, dark := shade(c, 3), shade(c, -3)
	fb.fill(px, py, x1, py, light)
	fb.fill(px, py, px, y1, light)
	fb.fill(px+1, y1, x1, y1, dark)
	fb.fill(x1, py+1, x1, y1, dark)
}

// DrawText draws a line of text on a background box. The box is exactly as
// wide as the text.
func (fb *Framebuffer) DrawText(px, py int16, fg, bg Color, font Font, text string) {
	face := font.face()
	width := font.Width(text)

	fb.lock.Lock()
	defer fb.lock.Unlock()
	if width > 0 {
		fb.fill(px, py, px+width-1, py+face.height-1, bg)
	}
	tinyfont.WriteLine(glyphCanvas{fb}, face.face, px, py+face.ascent, text, RGBA(fg))
}

// fill is FillRect without locking.
func (fb *Framebuffer) fill(x0, y0, x1, y1 int16, c Color) {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	x0, y0 = max(x0, 0), max(y0, 0)
	x1, y1 = min(x1, fb.width-1), min(y1, fb.height-1)
	if x0 > x1 || y0 > y1 {
		return
	}
	for y := int(y0); y <= int(y1); y++ {
		row := fb.pix[y*int(fb.width):]
		for x := int(x0); x <= int(x1); x++ {
			row[x] = c
		}
	}
	fb.markDirty(x0, y0, x1, y1)
}

// markDirty grows the dirty area. The coordinates must already be clipped.
func (fb *Framebuffer) markDirty(x0, y0, x1, y1 int16) {
	if !fb.dirty {
		fb.dirty = true
		fb.dx0, fb.dy0, fb.dx1, fb.dy1 = x0, y0, x1, y1
		return
	}
	fb.dx0, fb.dy0 = min(fb.dx0, x0), min(fb.dy0, y0)
	fb.dx1, fb.dy1 = max(fb.dx1, x1), max(fb.dy1, y1)
}

// Display sends the area that changed since the previous call to the
// display. It does nothing when nothing changed.
func (fb *Framebuffer) Display() error {
	fb.flushLock.Lock()
	defer fb.flushLock.Unlock()

	fb.lock.Lock()
	if !fb.dirty {
		fb.lock.Unlock()
		return nil
	}
	x0, y0, x1, y1 := fb.dx0, fb.dy0, fb.dx1, fb.dy1
	fb.dirty = false
	width, height := x1-x0+1, y1-y0+1
	size := int(width) * int(height) * 2
	if cap(fb.buf) < size {
		fb.buf = make([]byte, size)
	}
	buf := fb.buf[:size]
	i := 0
	for y := int(y0); y <= int(y1); y++ {
		row := fb.pix[y*int(fb.width)+int(x0) : y*int(fb.width)+int(x1)+1]
		for _, c := range row {
			// RGB565BE keeps the bytes in display order.
			buf[i] = byte(c)
			buf[i+1] = byte(c >> 8)
			i += 2
		}
	}
	fb.lock.Unlock()

	if err := fb.display.DrawRGBBitmap8(x0, y0, buf, width, height); err != nil {
		return fmt.Errorf("render: flush %dx%d at (%d, %d): %w", width, height, x0, y0, err)
	}
	if err := fb.display.Display(); err != nil {
		return fmt.Errorf("render: display: %w", err)
	}
	return nil
}

// glyphCanvas lets tinyfont draw into a framebuffer that is already locked.
type glyphCanvas struct {
	fb *Framebuffer
}

func (g glyphCanvas) Size() (x, y int16) {
	return g.fb.width, g.fb.height
}

func (g glyphCanvas) SetPixel(x, y int16, c color.RGBA) {
	fb := g.fb
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return
	}
	fb.pix[int(y)*int(fb.width)+int(x)] = RGB(c.R, c.G, c.B)
	fb.markDirty(x, y, x, y)
}

func (g glyphCanvas) Display() error {
	return nil
}
