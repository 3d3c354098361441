package board

import (
	"errors"
	"sync"
	"time"

	"github.com/aykevl/tinygl/pixel"
	"github.com/sabem/board/joystick"
)

// Settings for the simulator. These can be modified at any time, but it is
// recommended to modify them before configuring any of the board peripherals.
//
// The defaults match the 480x272 LCD of the development board the game was
// written for.
var Simulator = struct {
	WindowTitle string

	// Width and height in virtual pixels (matching Size()). The window will
	// take up more physical pixels on high-DPI screens.
	WindowWidth  int
	WindowHeight int

	// Pixels per inch. The default is 120, which matches many commonly used
	// high-DPI screens (for example, Apple screens).
	WindowPPI int

	// How long it takes to send one pixel to the window. Zero means as fast as
	// possible. Setting it to a few hundred nanoseconds makes drawing about as
	// slow as an SPI display, which shows how much a program redraws.
	WindowDrawSpeed time.Duration
}{
	WindowTitle:  "Tetris",
	WindowWidth:  480,
	WindowHeight: 272,
	WindowPPI:    120, // common on many modern displays (for example Retina is 254 / 2 = 127)
}

// The display interface shared by all supported displays.
type Displayer[T pixel.Color] interface {
	// The display size in pixels. This must match Display.Size().
	Size() (width, height int16)

	// Write data to the display in the usual row-major order (which matches the
	// usual order of text on a page: first left to right and then each line top
	// to bottom).
	//
	// TODO: this interface is likely to change because it requires unsafely
	// casting a []T to []uint8 in user code.
	DrawRGBBitmap8(x, y int16, buf []uint8, w, h int16) error

	// Display the written image on screen. This call may or may not be
	// necessary depending on the screen, but it's better to call it anyway.
	Display() error
}

var errOutOfBounds = errors.New("board: drawing out of bounds")

// heldDirections is the joystick state on boards that only see key press and
// release events, like the simulator window.
type heldDirections struct {
	lock sync.Mutex
	mask joystick.Mask
}

func (h *heldDirections) press(d joystick.Direction) {
	h.lock.Lock()
	h.mask = h.mask.With(d)
	h.lock.Unlock()
}

func (h *heldDirections) release(d joystick.Direction) {
	h.lock.Lock()
	h.mask = h.mask.Without(d)
	h.lock.Unlock()
}

// direction returns the held direction. When several are held, the one read
// first by the joystick pins wins.
func (h *heldDirections) direction() joystick.Direction {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.mask.Direction()
}

// downscaled shows a large RGB565 image on a smaller display by keeping only
// every factor-th pixel in both directions. The image is centred on the
// target display.
type downscaled struct {
	target           Displayer[pixel.RGB565BE]
	width, height    int16
	factor           int16
	offsetX, offsetY int16
	buf              []byte
}

func newDownscaled(target Displayer[pixel.RGB565BE], width, height, factor int16) *downscaled {
	targetWidth, targetHeight := target.Size()
	return &downscaled{
		target:  target,
		width:   width,
		height:  height,
		factor:  factor,
		offsetX: max(0, (targetWidth-(width+factor-1)/factor)/2),
		offsetY: max(0, (targetHeight-(height+factor-1)/factor)/2),
	}
}

func (d *downscaled) Size() (width, height int16) {
	return d.width, d.height
}

func (d *downscaled) Display() error {
	return d.target.Display()
}

func (d *downscaled) DrawRGBBitmap8(x, y int16, buf []uint8, w, h int16) error {
	if x < 0 || y < 0 || w <= 0 || h <= 0 || x+w > d.width || y+h > d.height {
		return errOutOfBounds
	}
	if len(buf) < int(w)*int(h)*2 {
		return errors.New("board: bitmap buffer too small")
	}

	// Target pixels whose source pixel lies in the bitmap.
	f := d.factor
	x0, x1 := (x+f-1)/f, (x+w-1)/f
	y0, y1 := (y+f-1)/f, (y+h-1)/f
	targetWidth, targetHeight := d.target.Size()
	x1 = min(x1, targetWidth-d.offsetX-1)
	y1 = min(y1, targetHeight-d.offsetY-1)
	if x0 > x1 || y0 > y1 {
		return nil
	}

	tw, th := int(x1-x0+1), int(y1-y0+1)
	if cap(d.buf) < tw*th*2 {
		d.buf = make([]byte, tw*th*2)
	}
	out := d.buf[:tw*th*2]
	for ty := 0; ty < th; ty++ {
		sy := (int(y0)+ty)*int(f) - int(y)
		for tx := 0; tx < tw; tx++ {
			sx := (int(x0)+tx)*int(f) - int(x)
			src := (sy*int(w) + sx) * 2
			dst := (ty*tw + tx) * 2
			out[dst] = buf[src]
			out[dst+1] = buf[src+1]
		}
	}
	return d.target.DrawRGBBitmap8(d.offsetX+x0, d.offsetY+y0, out, int16(tw), int16(th))
}
