//go:build pybadge

package board

import (
	"machine"

	"github.com/aykevl/tinygl/pixel"
	"github.com/sabem/board/joystick"
	"tinygo.org/x/drivers/shifter"
	"tinygo.org/x/drivers/st7735"
)

const (
	Name = "pybadge"
)

var (
	Display  = mainDisplay{}
	Joystick = &shifterJoystick{}
)

// The game draws a 480x272 image. Every third pixel of it is shown on the
// 160x128 screen.
const (
	imageWidth  = 480
	imageHeight = 272
)

type mainDisplay struct{}

// Size returns the size of the image the display accepts.
func (d mainDisplay) Size() (width, height int16) {
	return imageWidth, imageHeight
}

// Pixels per inch of the drawn image. The screen is 36mm wide (about 113 PPI)
// and shows every third pixel.
func (d mainDisplay) PPI() int {
	return 113 * 3
}

func (d mainDisplay) Configure() Displayer[pixel.RGB565BE] {
	machine.SPI1.Configure(machine.SPIConfig{
		SCK:       machine.SPI1_SCK_PIN,
		SDO:       machine.SPI1_SDO_PIN,
		SDI:       machine.SPI1_SDI_PIN,
		Frequency: 15_000_000, // datasheet for st7735 says 66ns (~15.15MHz) is the max speed
	})

	display := st7735.New(machine.SPI1, machine.TFT_RST, machine.TFT_DC, machine.TFT_CS, machine.TFT_LITE)
	display.Configure(st7735.Config{
		Rotation: st7735.ROTATION_90,
	})
	return newDownscaled(&display, imageWidth, imageHeight, 3)
}

type shifterJoystick struct {
	shifter.Device
}

func (j *shifterJoystick) Configure() {
	j.Device = shifter.NewButtons()
	j.Device.Configure()
}

// Bits of the button shift register that act as the joystick. The D-pad is
// the four directions, A presses the joystick.
var directions = [8]joystick.Direction{
	0: joystick.Left,
	1: joystick.Up,
	2: joystick.Down,
	3: joystick.Right,
	6: joystick.Center, // A
}

func (j *shifterJoystick) Read() joystick.Direction {
	state, _ := j.Device.ReadInput()
	var mask joystick.Mask
	for bit, d := range directions {
		if d != joystick.None && state&(1<<bit) != 0 {
			mask = mask.With(d)
		}
	}
	return mask.Direction()
}
