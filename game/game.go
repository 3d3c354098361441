// Package game implements the Tetris game loop on top of the playfield and
// piece catalog.
//
// The loop never blocks on I/O. Each call to Step polls the input slot once and
// checks the millisecond counter once, the same way the firmware main loop
// reads the two variables its timer interrupts write to.
package game

import (
	"math/rand/v2"
	"runtime"

	"github.com/sabem/board/input"
	"github.com/sabem/board/playfield"
	"github.com/sabem/board/render"
	"github.com/sabem/board/tetromino"
)

// Gravity and scoring constants.
const (
	InitialPeriod  = 750 // gravity period at level 1, in ms
	PeriodStep     = 50  // the period gets this much shorter per level
	SoftDropPeriod = 50
	MaxLevel       = 9
	LinesPerLevel  = 10
	PointsPerLine  = 10
)

// Screen layout, in pixels.
const (
	BoardX   = 7 * render.BlockSize
	BoardY   = 0
	MarqueeX = 18 * render.BlockSize
	MarqueeY = 0
)

// Clock is the millisecond counter that paces gravity. tick.Counter
// implements it.
type Clock interface {
	Milliseconds() uint32
	Reset()
}

// Config holds the settings of an engine. The zero value is usable.
type Config struct {
	// Seed for the piece randomizer. When zero, every game is seeded from
	// the clock when it starts.
	Seed uint64

	// Idle is called by blocking loops (menu, game over, Play) between two
	// iterations. It defaults to runtime.Gosched.
	Idle func()

	// ReleaseCancelsSoftDrop makes the release of the joystick restore the
	// gravity period too, not only a press. The firmware did this, which turns
	// Down into a hold-to-drop key.
	ReleaseCancelsSoftDrop bool
}

// State is the state of the game after a Step.
type State uint8

const (
	Playing State = iota
	GameOver
)

func (s State) String() string {
	switch s {
	case Playing:
		return "playing"
	case GameOver:
		return "game over"
	default:
		return "invalid"
	}
}

// Stats is a snapshot of the progress of a game.
type Stats struct {
	Lines  uint32
	Score  uint32
	Level  uint32
	Period uint32 // current gravity period in ms
}

// Engine owns all the state of a game.
type Engine struct {
	screen render.Surface
	input  input.Poller
	clock  Clock
	config Config

	rand  *rand.Rand
	board playfield.Board

	active tetromino.Piece
	next   tetromino.Piece
	x, y   int

	lines  uint32
	score  uint32
	level  uint32
	period uint32
	saved  uint32 // period to go back to after a soft drop
	state  State
}

// New returns an engine drawing on the given surface. No game is running until
// Start (or Play) is called.
func New(screen render.Surface, poller input.Poller, clock Clock, config Config) *Engine {
	if config.Idle == nil {
		config.Idle = runtime.Gosched
	}
	return &Engine{
		screen: screen,
		input:  poller,
		clock:  clock,
		config: config,
		board:  playfield.New(BoardX, BoardY),
		level:  1,
		period: InitialPeriod,
		saved:  InitialPeriod,
		state:  GameOver,
	}
}

// Stats returns the current lines, score, level and gravity period.
func (e *Engine) Stats() Stats {
	return Stats{
		Lines:  e.lines,
		Score:  e.score,
		Level:  e.level,
		Period: e.period,
	}
}

// State returns the current state of the game.
func (e *Engine) State() State {
	return e.state
}

// Board returns the board of the current game.
func (e *Engine) Board() *playfield.Board {
	return &e.board
}

// Active returns the falling piece and its position on the board.
func (e *Engine) Active() (piece tetromino.Piece, x, y int) {
	return e.active, e.x, e.y
}

// Next returns the piece that will be spawned after the active one.
func (e *Engine) Next() tetromino.Piece {
	return e.next
}

// periodForLevel returns the gravity period in ms at the given level.
func periodForLevel(level uint32) uint32 {
	return InitialPeriod - PeriodStep*(level-1)
}
