//go:build gameboyadvance

package board

import (
	"device/gba"
	"errors"
	"runtime/volatile"
	"unsafe"

	"github.com/aykevl/tinygl/pixel"
	"github.com/sabem/board/joystick"
	"tinygo.org/x/drivers"
)

const (
	Name = "gameboy-advance"
)

var (
	Display  = mainDisplay{}
	Joystick = gbaJoystick{}
)

// The game draws a 480x272 image, every second pixel of which fits on the
// 240x160 screen.
const (
	imageWidth  = 480
	imageHeight = 272
)

type mainDisplay struct{}

// Pixels per inch of the drawn image: the screen has 99 but only shows every
// second pixel.
func (d mainDisplay) PPI() int {
	return 99 * 2
}

// Size returns the size of the image the display accepts.
func (d mainDisplay) Size() (width, height int16) {
	return imageWidth, imageHeight
}

func (d mainDisplay) Configure() Displayer[pixel.RGB565BE] {
	// Use video mode 3 (in BG2, a 16bpp bitmap in VRAM) and Enable BG2.
	gba.DISP.DISPCNT.Set(gba.DISPCNT_BGMODE_3<<gba.DISPCNT_BGMODE_Pos |
		gba.DISPCNT_SCREENDISPLAY_BG2_ENABLE<<gba.DISPCNT_SCREENDISPLAY_BG2_Pos)
	return newDownscaled(gbaDisplay{}, imageWidth, imageHeight, 2)
}

type gbaDisplay struct{}

var displayFrameBuffer = (*[160 * 240]volatile.Register16)(unsafe.Pointer(uintptr(gba.MEM_VRAM)))

func (d gbaDisplay) Size() (x, y int16) {
	return 240, 160
}

func (d gbaDisplay) Display() error {
	// Nothing to do here.
	return nil
}

// DrawRGBBitmap8 takes big endian RGB565 pixels and stores them as the
// little endian BGR555 pixels of mode 3.
func (d gbaDisplay) DrawRGBBitmap8(x, y int16, buf []byte, width, height int16) error {
	for bufY := 0; bufY < int(height); bufY++ {
		for bufX := 0; bufX < int(width); bufX++ {
			index := bufY*int(width) + bufX
			val := uint16(buf[index*2+0])<<8 | uint16(buf[index*2+1])
			r := val >> 11
			g := (val >> 6) & 0x1f
			b := val & 0x1f
			displayFrameBuffer[(int(y)+bufY)*240+int(x)+bufX].Set(b<<10 | g<<5 | r)
		}
	}
	return nil
}

func (d gbaDisplay) Sleep(sleepEnabled bool) error {
	return nil // nothing to do here
}

var errNoRotation = errors.New("error: SetRotation isn't supported")

func (d gbaDisplay) Rotation() drivers.Rotation {
	return drivers.Rotation0
}

func (d gbaDisplay) SetRotation(rotation drivers.Rotation) error {
	return errNoRotation
}

type gbaJoystick struct{}

func (j gbaJoystick) Configure() {
	// nothing to configure
}

// Key bits of KEYINPUT that act as the joystick. The D-pad is the four
// directions, A presses the joystick.
var directions = [8]joystick.Direction{
	0: joystick.Center, // A
	4: joystick.Right,
	5: joystick.Left,
	6: joystick.Up,
	7: joystick.Down,
}

func (j gbaJoystick) Read() joystick.Direction {
	// Keys are active low.
	state := gba.KEY.INPUT.Get() ^ 0x3ff
	var mask joystick.Mask
	for bit, d := range directions {
		if d != joystick.None && state&(1<<bit) != 0 {
			mask = mask.With(d)
		}
	}
	return mask.Direction()
}
