//go:build !baremetal && !terminal

package board

// The simulator window for the development board: a 480x272 RGB565 LCD and a
// 5-way joystick, which is mapped to the arrow keys plus Enter or Space.
//
// The board API doesn't use a mainloop of any kind, which would not be
// necessary anyway on embedded systems. But it is necessary on OSes, so to work
// around this the simulator is actually run in a separate process by starting
// the current process again and communicating over pipes (stdin/stdout in the
// simulator process).

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/sabem/board/joystick"
	"golang.org/x/image/draw"
)

const runWindowCommand = "run-simulator-window"

func init() {
	if len(os.Args) >= 2 && os.Args[1] == runWindowCommand {
		// This is the simulator process.
		// Run the entire window in an init function, because that's the only
		// way to do this with the API that is exposed by the board package.
		windowMain()
		os.Exit(0)
	}
}

var (
	displayImageLock sync.Mutex
	displayImage     *image.RGBA
)

// Background around the display when the window is larger than the display.
var bezelColor = color.RGBA{R: 48, G: 48, B: 48, A: 255}

// The main function for the window process.
func windowMain() {
	// Create a raster image to use as a display buffer.
	displayImage = image.NewRGBA(image.Rect(0, 0, Simulator.WindowWidth, Simulator.WindowHeight))
	display := &displayWidget{}
	display.Generator = func(w, h int) image.Image {
		displayImageLock.Lock()
		defer displayImageLock.Unlock()
		img := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.Draw(img, img.Bounds(), image.NewUniform(bezelColor), image.Pt(0, 0), draw.Src)
		draw.NearestNeighbor.Scale(img, scaledRect(displayImage.Bounds(), w, h), displayImage, displayImage.Bounds(), draw.Src, nil)
		return img
	}

	// Create a window.
	a := app.New()
	w := a.NewWindow(Simulator.WindowTitle)
	w.SetPadded(false)
	w.SetFixedSize(true)
	w.SetContent(display)

	// Listen for keyboard events, and translate them to joystick directions.
	if deskCanvas, ok := w.Canvas().(desktop.Canvas); ok {
		deskCanvas.SetOnKeyDown(func(event *fyne.KeyEvent) {
			if d := decodeFyneKey(event.Name); d != joystick.None {
				fmt.Printf("keypress %d\n", d)
			}
		})
		deskCanvas.SetOnKeyUp(func(event *fyne.KeyEvent) {
			if d := decodeFyneKey(event.Name); d != joystick.None {
				fmt.Printf("keyrelease %d\n", d)
			}
		})
	}

	// Listen for events from the parent process (which includes display data).
	go windowReceiveEvents(os.Stdin, w, display)

	// Show the window.
	w.ShowAndRun()
}

// scaledRect returns the largest area with the aspect ratio of the display
// that fits in a w×h window, scaled by a whole number and centred.
func scaledRect(display image.Rectangle, w, h int) image.Rectangle {
	scale := min(w/display.Dx(), h/display.Dy())
	if scale < 1 {
		scale = 1
	}
	width := display.Dx() * scale
	height := display.Dy() * scale
	x := (w - width) / 2
	y := (h - height) / 2
	return image.Rect(x, y, x+width, y+height)
}

// Goroutine that listens for commands from the parent process.
func windowReceiveEvents(input io.Reader, w fyne.Window, display *displayWidget) {
	r := bufio.NewReader(input)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			// The parent process exited.
			os.Exit(0)
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd := fields[0]
		switch cmd {
		case "display":
			var width, height int
			fmt.Sscanf(line, "%s %d %d\n", &cmd, &width, &height)
			displayImageLock.Lock()
			displayImage = image.NewRGBA(image.Rect(0, 0, width, height))
			display.SetMinSize(fyne.NewSize(float32(width), float32(height)))
			displayImageLock.Unlock()
		case "title":
			w.SetTitle(strings.TrimSpace(line[len("title"):]))
		case "draw":
			// Read the image data (which is a single line).
			var startX, startY, width int
			fmt.Sscanf(line, "%s %d %d %d\n", &cmd, &startX, &startY, &width)
			buf := make([]byte, width*2)
			io.ReadFull(r, buf)

			// Draw the image data to the image buffer.
			displayImageLock.Lock()
			drawLine(displayImage, startX, startY, buf)
			displayImageLock.Unlock()
			display.Refresh()
		default:
			fmt.Fprintln(os.Stderr, "unknown command:", cmd)
		}
	}
}

// drawLine decodes one line of big endian RGB565 pixels into the image.
func drawLine(img *image.RGBA, startX, y int, buf []byte) {
	for x := 0; x < len(buf)/2; x++ {
		img.SetRGBA(startX+x, y, decodeRGB565(buf[x*2], buf[x*2+1]))
	}
}

// decodeRGB565 expands a big endian RGB565 pixel to 8 bits per channel.
func decodeRGB565(hi, lo byte) color.RGBA {
	val := uint16(hi)<<8 | uint16(lo)
	r := uint8(val>>11) << 3
	g := uint8(val>>5) << 2
	b := uint8(val) << 3
	return color.RGBA{
		R: r | r>>5,
		G: g | g>>6,
		B: b | b>>5,
		A: 255,
	}
}

func decodeFyneKey(key fyne.KeyName) joystick.Direction {
	switch key {
	case fyne.KeyLeft:
		return joystick.Left
	case fyne.KeyRight:
		return joystick.Right
	case fyne.KeyUp:
		return joystick.Up
	case fyne.KeyDown:
		return joystick.Down
	case fyne.KeyReturn, fyne.KeyEnter, fyne.KeySpace:
		return joystick.Center
	default:
		return joystick.None
	}
}

// Wrapper for canvas.Raster so it can be used as a widget.
type displayWidget struct {
	canvas.Raster
}

func (r *displayWidget) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(&r.Raster)
}
