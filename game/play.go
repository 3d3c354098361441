package game

import (
	"context"
	"math/rand/v2"

	"github.com/sabem/board/input"
	"github.com/sabem/board/logger"
	"github.com/sabem/board/playfield"
	"github.com/sabem/board/render"
	"github.com/sabem/board/tetromino"
)

// Second word of the PCG seed. Only the first word changes between games.
const seedStream = 0x7e7215

// Start a new game: clear the screen and the board, paint the playfield and
// the marquee and spawn the first piece.
func (e *Engine) Start() {
	seed := e.config.Seed
	if seed == 0 {
		seed = uint64(e.clock.Milliseconds())
	}
	e.rand = rand.New(rand.NewPCG(seed, seedStream))
	e.clock.Reset()

	e.board.Reset()
	e.lines = 0
	e.score = 0
	e.level = 1
	e.period = periodForLevel(e.level)
	e.saved = e.period
	e.state = Playing

	e.screen.Clear(render.Black)
	e.drawWalls()
	e.drawBoard()
	e.drawMarquee()

	e.next = tetromino.Random(e.rand)
	e.spawn()
	e.drawLines()
	e.drawScore()
	e.drawLevel()

	logger.Logf("game", "start (seed %d)", seed)
}

// Step runs one iteration of the game loop: one gravity step when the
// gravity period has elapsed, otherwise the handling of at most one input
// event. It returns GameOver once the stack reaches the top; further calls
// do nothing.
func (e *Engine) Step() State {
	if e.state != Playing {
		return e.state
	}
	event := e.input.Poll()
	if e.clock.Milliseconds() >= e.period {
		e.clock.Reset()
		e.gravity()
	} else if event.Pressed() || (event == input.Idle && e.config.ReleaseCancelsSoftDrop) {
		// Any press ends a soft drop.
		e.period = e.saved
		switch event {
		case input.Up:
			e.rotate(tetromino.Right)
		case input.Center:
			e.rotate(tetromino.Left)
		case input.Left:
			e.move(-1)
		case input.Right:
			e.move(1)
		case input.Down:
			e.saved = e.period
			e.period = SoftDropPeriod
		}
	}
	return e.state
}

// gravity moves the active piece one row down, or locks it when it can't.
func (e *Engine) gravity() {
	if !e.board.Collides(&e.active, e.x, e.y+1) {
		e.erasePiece()
		e.y++
		e.drawPiece()
		return
	}

	if playfield.Overflows(&e.active, e.y) {
		e.state = GameOver
		logger.Logf("game", "game over: %d lines, %d points, level %d", e.lines, e.score, e.level)
		return
	}

	e.board.Commit(&e.active, e.x, e.y)
	if n := uint32(e.board.ClearFullRows()); n > 0 {
		e.drawBoard()
		e.lines += n
		e.score += n * PointsPerLine * e.level
		e.drawLines()
		e.drawScore()
		if e.level < MaxLevel {
			level := min(e.lines/LinesPerLevel+1, MaxLevel)
			if level != e.level {
				logger.Logf("game", "level %d", level)
			}
			e.level = level
			e.drawLevel()
			e.period = periodForLevel(e.level)
		}
	}
	e.spawn()
}

// spawn makes the next piece the active one, centred above the board.
func (e *Engine) spawn() {
	e.active = e.next
	e.next = tetromino.Random(e.rand)
	e.x = (playfield.Width + e.active.Size - tetromino.MatrixSize) / 2
	e.y = -e.active.Size
	e.drawPiece()
	e.drawNext()
}

// rotate the active piece if the rotated piece fits where it is.
func (e *Engine) rotate(dir tetromino.Direction) {
	probe := e.active
	probe.Rotate(dir)
	if e.board.Collides(&probe, e.x, e.y) {
		return
	}
	e.erasePiece()
	e.active = probe
	e.drawPiece()
}

// move the active piece sideways if it fits there.
func (e *Engine) move(dx int) {
	if e.board.Collides(&e.active, e.x+dx, e.y) {
		return
	}
	e.erasePiece()
	e.x += dx
	e.drawPiece()
}

// waitForPress blocks until the joystick is pressed. A pending release
// doesn't count, so a joystick that is still held from the previous screen
// needs to be released and pressed again.
func (e *Engine) waitForPress(ctx context.Context) (input.Event, error) {
	for {
		if event := e.input.Poll(); event.Pressed() {
			return event, nil
		}
		if err := ctx.Err(); err != nil {
			return input.None, err
		}
		e.config.Idle()
	}
}

// Menu shows the title screen and waits until the joystick is pressed.
func (e *Engine) Menu(ctx context.Context) error {
	e.drawTitle()
	_, err := e.waitForPress(ctx)
	return err
}

// Play a whole game: start it, run the loop until game over, show the game
// over banner and wait for a press. It returns the final stats, or the context
// error if the context was cancelled first.
func (e *Engine) Play(ctx context.Context) (Stats, error) {
	e.Start()
	for e.Step() == Playing {
		if err := ctx.Err(); err != nil {
			return e.Stats(), err
		}
		e.config.Idle()
	}
	e.drawGameOver()
	if _, err := e.waitForPress(ctx); err != nil {
		return e.Stats(), err
	}
	return e.Stats(), nil
}

// Run alternates between the menu and a game until the context is
// cancelled.
func (e *Engine) Run(ctx context.Context) error {
	for {
		e.screen.Clear(render.Black)
		if err := e.Menu(ctx); err != nil {
			return err
		}
		if _, err := e.Play(ctx); err != nil {
			return err
		}
	}
}
