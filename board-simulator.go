//go:build !baremetal && !terminal

package board

// The generic board exists for testing locally without running on real
// hardware. This avoids potentially long edit-flash-test cycles.

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/aykevl/tinygl/pixel"
	"github.com/sabem/board/joystick"
	"tinygo.org/x/drivers"
)

const (
	// The board name, as passed to TinyGo in the "-target" flag.
	// This is the special name "simulator" for the simulator.
	Name = "simulator"
)

// List of all devices.
//
// Support varies by board, but all boards have the following peripherals
// defined.
var (
	Display  = mainDisplay{}
	Joystick = simulatedJoystick{}
)

type mainDisplay struct{}

type fyneScreen struct {
	width  int
	height int
	held   heldDirections
}

var screen = &fyneScreen{}

// Configure returns a new display ready to draw on.
func (d mainDisplay) Configure() Displayer[pixel.RGB565BE] {
	startWindow()
	screen.width = Simulator.WindowWidth
	screen.height = Simulator.WindowHeight
	windowSendCommand(fmt.Sprintf("display %d %d", screen.width, screen.height), nil)
	return screen
}

// Size returns the display size in pixels, also before it is configured.
func (d mainDisplay) Size() (width, height int16) {
	return int16(Simulator.WindowWidth), int16(Simulator.WindowHeight)
}

// Pixels per inch for this display.
func (d mainDisplay) PPI() int {
	return Simulator.WindowPPI
}

func (s *fyneScreen) Display() error {
	// Nothing to do here.
	return nil
}

func (s *fyneScreen) DrawRGBBitmap8(x, y int16, buf []byte, width, height int16) error {
	displayWidth, displayHeight := s.Size()
	if x < 0 || y < 0 || width <= 0 || height <= 0 ||
		x+width > displayWidth || y+height > displayHeight {
		return errOutOfBounds
	}
	if len(buf) < int(width)*int(height)*2 {
		return errors.New("board: bitmap buffer too small")
	}
	drawStart := time.Now()
	for bufy := 0; bufy < int(height); bufy++ {
		// Delay drawing a bit, to simulate a slow SPI bus.
		if Simulator.WindowDrawSpeed != 0 {
			expected := drawStart.Add(Simulator.WindowDrawSpeed * time.Duration(bufy*int(width)))
			if delay := time.Until(expected); delay > 0 {
				time.Sleep(delay)
			}
		}

		index := (bufy * int(width)) * 2
		lineBuf := buf[index : index+int(width)*2]
		windowSendCommand(fmt.Sprintf("draw %d %d %d", x, int(y)+bufy, width), lineBuf)
	}
	return nil
}

func (s *fyneScreen) Size() (width, height int16) {
	return int16(s.width), int16(s.height)
}

// Set sleep mode for this screen.
func (s *fyneScreen) Sleep(sleepEnabled bool) error {
	// This is a no-op.
	return nil
}

var errNoRotation = errors.New("error: SetRotation isn't supported")

func (s *fyneScreen) Rotation() drivers.Rotation {
	return drivers.Rotation0
}

func (s *fyneScreen) SetRotation(rotation drivers.Rotation) error {
	return errNoRotation
}

type simulatedJoystick struct{}

// Configure the joystick. The arrow keys of the simulator window are the four
// directions, Enter and Space press the joystick.
func (j simulatedJoystick) Configure() {
	startWindow()
}

// Read returns the direction the joystick is currently held in.
func (j simulatedJoystick) Read() joystick.Direction {
	return screen.held.direction()
}

var (
	fyneStart    sync.Once
	windowLock   sync.Mutex
	windowStdin  io.WriteCloser
	windowStdout io.ReadCloser
)

// Ensure the window is running in a separate process, starting it if necessary.
func startWindow() {
	// Create a main loop for Fyne.
	windowRunning := make(chan struct{})
	fyneStart.Do(func() {
		// Start the separate process that manages the window.
		go func() {
			cmd := exec.Command(os.Args[0], runWindowCommand)
			cmd.Stderr = os.Stderr
			windowStdin, _ = cmd.StdinPipe()
			windowStdout, _ = cmd.StdoutPipe()
			err := cmd.Start()
			if err != nil {
				fmt.Fprintln(os.Stdout, "could not start window process:", err)
				os.Exit(1)
			}
			close(windowRunning)
			err = cmd.Wait()
			if err != nil {
				if exitErr, ok := err.(*exec.ExitError); ok {
					os.Exit(exitErr.ExitCode())
				}
				os.Exit(1)
			}
			// The window was closed, so exit.
			os.Exit(0)
		}()
		<-windowRunning

		// Listen for keyboard events.
		go windowListenEvents(windowStdout, &screen.held)

		// Do some initialization.
		windowSendCommand("title "+Simulator.WindowTitle, nil)
	})
}

// Send a command to the separate process that manages the window.
// The command is a single line (without newline). The data part is optional
// binary data that can be sent with the command. The size of this binary data
// must be part of the textual command.
func windowSendCommand(command string, data []byte) {
	windowLock.Lock()
	defer windowLock.Unlock()

	windowStdin.Write([]byte(command + "\n"))
	windowStdin.Write(data)
}

// Goroutine that listens for key events from the window process and keeps
// track of the held joystick directions.
func windowListenEvents(events io.Reader, held *heldDirections) {
	r := bufio.NewReader(events)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				fmt.Fprintln(os.Stderr, "failed to read I/O events from child process:", err)
			}
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd := fields[0]
		switch cmd {
		case "keypress", "keyrelease":
			var direction joystick.Direction
			fmt.Sscanf(line, "%s %d", &cmd, &direction)
			if cmd == "keypress" {
				held.press(direction)
			} else {
				held.release(direction)
			}
		default:
			fmt.Fprintln(os.Stderr, "unknown command:", cmd)
		}
	}
}
