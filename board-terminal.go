//go:build !baremetal && terminal

package board

// A board that runs in a terminal, for machines without a graphical desktop.
// Every block of 15x15 pixels is shown as two character cells in 24-bit colour,
// which is enough for the playfield but not for text.

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aykevl/tinygl/pixel"
	"github.com/sabem/board/joystick"
	"golang.org/x/term"
)

const (
	// The board name. Not a TinyGo target: select it with -tags=terminal.
	Name = "terminal"
)

var (
	Display  = mainDisplay{}
	Joystick = &terminalJoystick{}
)

// Size of the emulated LCD and of the blocks shown as one cell pair.
const (
	terminalWidth  = 480
	terminalHeight = 272
	terminalBlock  = 15
)

// How long a key counts as held. Terminals only send key presses (repeated
// while the key is held), never releases.
const keyHoldTime = 60 * time.Millisecond

var (
	terminalSetup    sync.Once
	terminalState    *term.State
	terminalSetupErr error
)

// Switch the terminal to raw mode, once.
func setupTerminal() error {
	terminalSetup.Do(func() {
		fd := int(os.Stdin.Fd())
		if !term.IsTerminal(fd) {
			terminalSetupErr = errors.New("board: stdin is not a terminal")
			return
		}
		terminalState, terminalSetupErr = term.MakeRaw(fd)
		if terminalSetupErr == nil {
			// Hide the cursor and clear the screen.
			fmt.Fprint(os.Stdout, "\x1b[?25l\x1b[2J")
		}
	})
	return terminalSetupErr
}

// Put the terminal back in the state it was in and exit.
func restoreTerminalAndExit(code int) {
	fmt.Fprint(os.Stdout, "\x1b[0m\x1b[?25h\x1b[2J\x1b[H")
	if terminalState != nil {
		term.Restore(int(os.Stdin.Fd()), terminalState)
	}
	os.Exit(code)
}

type mainDisplay struct{}

// Configure returns a new display ready to draw on. It exits the program when
// stdin is not a terminal.
func (d mainDisplay) Configure() Displayer[pixel.RGB565BE] {
	if err := setupTerminal(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	s := &terminalScreen{
		pixels: make([]byte, terminalWidth*terminalHeight*2),
		out:    bufio.NewWriterSize(os.Stdout, 64*1024),
	}
	// Centre the image when the terminal is large enough.
	if cols, rows, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		s.left = max(0, (cols-2*terminalWidth/terminalBlock)/2)
		s.top = max(0, (rows-terminalHeight/terminalBlock)/2)
	}
	return s
}

// Size returns the display size in pixels.
func (d mainDisplay) Size() (width, height int16) {
	return terminalWidth, terminalHeight
}

// Pixels per inch, for a terminal cell that is about 1/12 inch high.
func (d mainDisplay) PPI() int {
	return 12 * terminalBlock
}

type terminalScreen struct {
	lock      sync.Mutex
	pixels    []byte // big endian RGB565, like the LCD
	shown     [terminalHeight / terminalBlock][terminalWidth / terminalBlock]uint16
	drawn     bool
	left, top int
	out       *bufio.Writer
}

func (s *terminalScreen) Size() (width, height int16) {
	return terminalWidth, terminalHeight
}

func (s *terminalScreen) DrawRGBBitmap8(x, y int16, buf []byte, width, height int16) error {
	if x < 0 || y < 0 || width <= 0 || height <= 0 ||
		x+width > terminalWidth || y+height > terminalHeight {
		return errOutOfBounds
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	for row := 0; row < int(height); row++ {
		src := buf[row*int(width)*2 : (row+1)*int(width)*2]
		copy(s.pixels[((int(y)+row)*terminalWidth+int(x))*2:], src)
	}
	return nil
}

// Display updates the cells whose block changed colour. A block takes the
// colour of its centre pixel.
func (s *terminalScreen) Display() error {
	s.lock.Lock()
	defer s.lock.Unlock()
	for row := range s.shown {
		for col := range s.shown[row] {
			cx := col*terminalBlock + terminalBlock/2
			cy := row*terminalBlock + terminalBlock/2
			i := (cy*terminalWidth + cx) * 2
			val := uint16(s.pixels[i])<<8 | uint16(s.pixels[i+1])
			if s.drawn && s.shown[row][col] == val {
				continue
			}
			s.shown[row][col] = val
			r, g, b := uint8(val>>11)<<3, uint8(val>>5)<<2, uint8(val)<<3
			fmt.Fprintf(s.out, "\x1b[%d;%dH\x1b[48;2;%d;%d;%dm  ", s.top+row+1, s.left+2*col+1, r|r>>5, g|g>>6, b|b>>5)
		}
	}
	s.drawn = true
	fmt.Fprint(s.out, "\x1b[0m")
	return s.out.Flush()
}

type terminalJoystick struct {
	start     sync.Once
	lock      sync.Mutex
	direction joystick.Direction
	pressed   time.Time
}

// Configure starts reading keys. The arrow keys are the four directions,
// Enter and Space press the joystick, q or Ctrl-C quits.
func (j *terminalJoystick) Configure() {
	j.start.Do(func() {
		if err := setupTerminal(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		go j.readKeys(bufio.NewReader(os.Stdin))
	})
}

// Read returns the direction of the most recent key, if it was pressed
// recently enough to still count as held.
func (j *terminalJoystick) Read() joystick.Direction {
	j.lock.Lock()
	defer j.lock.Unlock()
	if time.Since(j.pressed) > keyHoldTime {
		return joystick.None
	}
	return j.direction
}

func (j *terminalJoystick) readKeys(r *bufio.Reader) {
	var keys keyDecoder
	for {
		c, err := r.ReadByte()
		if err != nil {
			restoreTerminalAndExit(0)
		}
		switch d := keys.feed(c); d {
		case joystick.None:
		case quitKey:
			restoreTerminalAndExit(0)
		default:
			j.lock.Lock()
			j.direction = d
			j.pressed = time.Now()
			j.lock.Unlock()
		}
	}
}

// Returned by keyDecoder.feed for the keys that quit the program.
const quitKey = joystick.Direction(0xff)

// keyDecoder turns the bytes of ANSI arrow key sequences (ESC [ A..D) and a
// few plain keys into joystick directions.
type keyDecoder struct {
	state uint8 // 0: plain, 1: after ESC, 2: after ESC [
}

func (k *keyDecoder) feed(c byte) joystick.Direction {
	switch k.state {
	case 1:
		if c == '[' || c == 'O' {
			k.state = 2
			return joystick.None
		}
		k.state = 0
	case 2:
		k.state = 0
		switch c {
		case 'A':
			return joystick.Up
		case 'B':
			return joystick.Down
		case 'C':
			return joystick.Right
		case 'D':
			return joystick.Left
		}
		return joystick.None
	}
	switch c {
	case 0x1b:
		k.state = 1
	case ' ', '\r', '\n':
		return joystick.Center
	case 'q', 'Q', 0x03:
		return quitKey
	}
	return joystick.None
}
