package game

import (
	"bytes"
	"context"
	"math/rand/v2"
	"testing"

	"github.com/sabem/board/input"
	"github.com/sabem/board/logger"
	"github.com/sabem/board/playfield"
	"github.com/sabem/board/render"
	"github.com/sabem/board/tetromino"
	"github.com/sabem/board/tick"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type drawnText struct {
	x, y   int16
	fg, bg render.Color
	font   render.Font
	text   string
}

// fakeSurface remembers the last colour drawn at every block position.
type fakeSurface struct {
	blocks map[[2]int16]render.Color
	texts  []drawnText
	clears int
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{blocks: make(map[[2]int16]render.Color)}
}

func (s *fakeSurface) Clear(c render.Color) {
	s.clears++
	s.blocks = make(map[[2]int16]render.Color)
	s.texts = nil
}

func (s *fakeSurface) DrawBlock(px, py int16, c render.Color) {
	s.blocks[[2]int16{px, py}] = c
}

func (s *fakeSurface) DrawText(px, py int16, fg, bg render.Color, font render.Font, text string) {
	s.texts = append(s.texts, drawnText{px, py, fg, bg, font, text})
}

func (s *fakeSurface) FillRect(x0, y0, x1, y1 int16, c render.Color) {
	for pos := range s.blocks {
		if pos[0] >= x0 && pos[0] <= x1 && pos[1] >= y0 && pos[1] <= y1 {
			s.blocks[pos] = c
		}
	}
}

// cell returns the colour drawn at a board cell.
func (s *fakeSurface) cell(col, row int) render.Color {
	return s.blocks[[2]int16{int16(BoardX + col*block), int16(BoardY + row*block)}]
}

// hasText reports whether the text was drawn at the given position.
func (s *fakeSurface) hasText(x, y int16, text string) bool {
	for _, t := range s.texts {
		if t.x == x && t.y == y && t.text == text {
			return true
		}
	}
	return false
}

// fakeInput returns queued events, then None.
type fakeInput struct {
	events []input.Event
}

func (in *fakeInput) push(events ...input.Event) {
	in.events = append(in.events, events...)
}

func (in *fakeInput) Poll() input.Event {
	if len(in.events) == 0 {
		return input.None
	}
	event := in.events[0]
	in.events = in.events[1:]
	return event
}

type pollerFunc func() input.Event

func (f pollerFunc) Poll() input.Event {
	return f()
}

type harness struct {
	*Engine
	screen *fakeSurface
	input  *fakeInput
	clock  *tick.Counter
}

// newHarness returns a started game with a fixed seed.
func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		screen: newFakeSurface(),
		input:  &fakeInput{},
		clock:  &tick.Counter{},
	}
	h.Engine = New(h.screen, h.input, h.clock, Config{Seed: 1, Idle: func() {}})
	h.Start()
	return h
}

// place replaces the active piece.
func (h *harness) place(p tetromino.Piece, x, y int) {
	h.erasePiece()
	h.active, h.x, h.y = p, x, y
	h.drawPiece()
}

// fall runs one gravity step.
func (h *harness) fall() State {
	h.clock.Set(h.period)
	return h.Step()
}

// press handles a single input event.
func (h *harness) press(event input.Event) State {
	h.input.push(event)
	return h.Step()
}

// dropUntilLock runs gravity until a new piece is spawned.
func (h *harness) dropUntilLock(t *testing.T) {
	t.Helper()
	for i := 0; i < 2*playfield.Height; i++ {
		y := h.y
		require.Equal(t, Playing, h.fall())
		if h.y != y+1 {
			return
		}
	}
	t.Fatal("piece never locked")
}

func horizontalI() tetromino.Piece {
	p := tetromino.New(tetromino.I)
	p.Rotate(tetromino.Right)
	return p
}

func fillRow(b *playfield.Board, row int, except ...int) {
	for col := 0; col < playfield.Width; col++ {
		b.Cells[row][col] = render.White
	}
	for _, col := range except {
		b.Cells[row][col] = 0
	}
}

func TestNewEngineIsIdle(t *testing.T) {
	e := New(newFakeSurface(), &fakeInput{}, &tick.Counter{}, Config{})
	assert.Equal(t, GameOver, e.Step())
	assert.Equal(t, Stats{Level: 1, Period: InitialPeriod}, e.Stats())
	assert.NotNil(t, e.config.Idle)
}

func TestStart(t *testing.T) {
	logger.Clear()
	h := newHarness(t)

	assert.Equal(t, Playing, h.State())
	assert.Equal(t, Stats{Lines: 0, Score: 0, Level: 1, Period: 750}, h.Stats())
	assert.Zero(t, h.Board().Occupied())
	assert.Equal(t, int16(105), h.Board().OriginX)

	// Walls and floor.
	for row := int16(0); row <= playfield.Height; row++ {
		assert.Equal(t, render.White, h.screen.blocks[[2]int16{90, row * block}])
		assert.Equal(t, render.White, h.screen.blocks[[2]int16{255, row * block}])
	}
	for x := int16(90); x <= 255; x += block {
		assert.Equal(t, render.White, h.screen.blocks[[2]int16{x, 255}])
	}

	// Marquee.
	assert.Equal(t, render.White, h.screen.blocks[[2]int16{MarqueeX + 5*block, 0}])
	assert.True(t, h.screen.hasText(MarqueeX, linesRow*block-1, "       0"))
	assert.True(t, h.screen.hasText(MarqueeX, scoreRow*block-1, "       0"))
	assert.True(t, h.screen.hasText(MarqueeX, levelRow*block-1, "       1"))
	var labels []string
	for _, text := range h.screen.texts {
		if text.fg == render.Cyan {
			labels = append(labels, text.text)
		}
	}
	assert.Equal(t, []string{"NEXT", "LINES", "SCORE", "LEVEL"}, labels)

	var log bytes.Buffer
	logger.Write(&log)
	assert.Contains(t, log.String(), "game: start (seed 1)")
}

func TestSpawnPosition(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 20; i++ {
		p, x, y := h.Active()
		assert.Equal(t, (playfield.Width+p.Size-4)/2, x, "%s", p.Kind)
		assert.Equal(t, -p.Size, y, "%s", p.Kind)

		// Entirely above the board, so nothing is drawn yet.
		for row := 0; row < playfield.Height; row++ {
			for col := 0; col < playfield.Width; col++ {
				require.Equal(t, render.Black, h.screen.cell(col, row))
			}
		}

		h.spawn()
	}
	p, x, _ := h.Active()
	if p.Size == 4 {
		assert.Equal(t, 5, x, "I spawns in the middle")
	}
}

func TestSpawnTakesNextPiece(t *testing.T) {
	h := newHarness(t)
	next := h.Next()
	h.spawn()
	active, _, _ := h.Active()
	assert.Equal(t, next, active)
}

func TestSameSeedSameGame(t *testing.T) {
	a, b := newHarness(t), newHarness(t)
	for i := 0; i < 50; i++ {
		require.Equal(t, a.Next(), b.Next())
		a.spawn()
		b.spawn()
	}
}

func TestSeedFromClock(t *testing.T) {
	logger.Clear()
	clock := &tick.Counter{}
	clock.Set(1234)
	e := New(newFakeSurface(), &fakeInput{}, clock, Config{})
	e.Start()
	assert.Zero(t, clock.Milliseconds(), "counter is reset at start")

	var log bytes.Buffer
	logger.Write(&log)
	assert.Contains(t, log.String(), "start (seed 1234)")
}

func TestNextPreview(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 10; i++ {
		next := h.Next()
		offset := int16((4 - next.Size) * block / 2)
		filled := 0
		for pos, c := range h.screen.blocks {
			if pos[0] >= MarqueeX && pos[0] < MarqueeX+5*block && pos[1] >= 2*block && pos[1] < 6*block && c != render.Black {
				filled++
			}
		}
		assert.Equal(t, 4, filled, "%s", next.Kind)
		next.Each(func(i, j int) {
			pos := [2]int16{MarqueeX + offset + int16(j*block), 2*block + offset + int16(i*block)}
			assert.Equal(t, next.Color, h.screen.blocks[pos])
		})
		h.spawn()
	}
}

func TestGravity(t *testing.T) {
	h := newHarness(t)
	h.place(tetromino.New(tetromino.O), 4, -2)

	// Not yet.
	h.clock.Set(h.period - 1)
	h.Step()
	_, _, y := h.Active()
	assert.Equal(t, -2, y)
	assert.Equal(t, uint32(749), h.clock.Milliseconds())

	const n = 10
	for i := 0; i < n; i++ {
		h.fall()
	}
	_, x, y := h.Active()
	assert.Equal(t, -2+n, y)
	assert.Equal(t, 4, x)
	assert.Zero(t, h.clock.Milliseconds(), "gravity resets the counter")

	// Drawn where it is now, erased where it was.
	assert.Equal(t, render.Blue, h.screen.cell(4, 8))
	assert.Equal(t, render.Blue, h.screen.cell(5, 9))
	assert.Equal(t, render.Black, h.screen.cell(4, 7))
	assert.Zero(t, h.Board().Occupied(), "nothing locked yet")
}

func TestGravityTakesPrecedenceOverInput(t *testing.T) {
	h := newHarness(t)
	h.place(tetromino.New(tetromino.O), 4, 0)
	h.input.push(input.Left)
	h.fall()
	_, x, y := h.Active()
	assert.Equal(t, 4, x)
	assert.Equal(t, 1, y)

	// The event was consumed by the gravity step.
	h.Step()
	_, x, _ = h.Active()
	assert.Equal(t, 4, x)
}

func TestLockWithoutClear(t *testing.T) {
	h := newHarness(t)
	h.place(tetromino.New(tetromino.O), 0, 15)
	next := h.Next()
	h.fall()

	assert.Equal(t, 4, h.Board().Occupied())
	assert.Equal(t, render.Blue, h.Board().Cell(0, 15))
	assert.Equal(t, Stats{Level: 1, Period: 750}, h.Stats())
	active, _, y := h.Active()
	assert.Equal(t, next, active)
	assert.Equal(t, -active.Size, y)
}

func TestSingleLineClear(t *testing.T) {
	h := newHarness(t)
	fillRow(h.Board(), playfield.Height-1, 6, 7, 8, 9)
	h.drawBoard()

	h.place(horizontalI(), 5, -4)
	h.press(input.Right)
	_, x, _ := h.Active()
	require.Equal(t, 6, x)

	h.dropUntilLock(t)
	assert.Equal(t, Stats{Lines: 1, Score: 10, Level: 1, Period: 750}, h.Stats())
	assert.Zero(t, h.Board().Occupied())
	assert.Equal(t, render.Black, h.screen.cell(0, playfield.Height-1), "board repainted")
	assert.True(t, h.screen.hasText(MarqueeX, linesRow*block-1, "       1"))
	assert.True(t, h.screen.hasText(MarqueeX, scoreRow*block-1, "      10"))
}

func TestLevelAdvance(t *testing.T) {
	logger.Clear()
	h := newHarness(t)
	h.lines = 9
	fillRow(h.Board(), playfield.Height-1, 9)
	vertical := tetromino.New(tetromino.I)
	h.place(vertical, 8, -4)
	h.dropUntilLock(t)

	// The I fills column 9 of the last four rows, one of which was full.
	assert.Equal(t, Stats{Lines: 10, Score: 10, Level: 2, Period: 700}, h.Stats())
	assert.True(t, h.screen.hasText(MarqueeX, levelRow*block-1, "       2"))

	var log bytes.Buffer
	logger.Write(&log)
	assert.Contains(t, log.String(), "game: level 2")

	// Lines cleared at level 2 are worth twice as much.
	fillRow(h.Board(), playfield.Height-1, 0, 1)
	h.place(tetromino.New(tetromino.O), 0, 13)
	h.dropUntilLock(t)
	assert.Equal(t, Stats{Lines: 11, Score: 30, Level: 2, Period: 700}, h.Stats())
}

func TestLevelCap(t *testing.T) {
	h := newHarness(t)
	h.lines = 118
	h.level = 9
	h.period = periodForLevel(9)
	h.saved = h.period
	for row := 13; row < playfield.Height; row++ {
		fillRow(h.Board(), row, 9)
	}
	h.place(tetromino.New(tetromino.I), 8, -4)
	h.dropUntilLock(t)

	assert.Equal(t, Stats{Lines: 122, Score: 4 * 10 * 9, Level: 9, Period: 350}, h.Stats())
}

func TestFourLineClear(t *testing.T) {
	h := newHarness(t)
	for row := 13; row < playfield.Height; row++ {
		fillRow(h.Board(), row, 9)
	}
	h.Board().Cells[12][0] = render.Red
	h.place(tetromino.New(tetromino.I), 8, -4)
	h.dropUntilLock(t)

	assert.Equal(t, Stats{Lines: 4, Score: 40, Level: 1, Period: 750}, h.Stats())
	assert.Equal(t, 1, h.Board().Occupied())
	assert.Equal(t, render.Red, h.Board().Cell(0, 16))
}

func TestSoftDrop(t *testing.T) {
	h := newHarness(t)
	h.place(tetromino.New(tetromino.T), 4, 0)

	h.press(input.Down)
	assert.Equal(t, uint32(50), h.period)
	assert.Equal(t, uint32(750), h.saved)

	// Holding down still counts, the counter just has to reach 50ms.
	h.clock.Set(50)
	h.Step()
	_, _, y := h.Active()
	assert.Equal(t, 1, y)

	// Releasing the joystick doesn't end the soft drop.
	h.press(input.Idle)
	assert.Equal(t, uint32(50), h.period)

	h.press(input.Left)
	assert.Equal(t, uint32(750), h.period)
	_, x, _ := h.Active()
	assert.Equal(t, 3, x, "the move is done too")
}

func TestSoftDropPressedTwice(t *testing.T) {
	h := newHarness(t)
	h.place(tetromino.New(tetromino.T), 4, 0)
	h.press(input.Down)
	h.press(input.Down)
	assert.Equal(t, uint32(50), h.period)
	assert.Equal(t, uint32(750), h.saved)
	h.press(input.Up)
	assert.Equal(t, uint32(750), h.period)
}

func TestReleaseCancelsSoftDrop(t *testing.T) {
	h := newHarness(t)
	h.config.ReleaseCancelsSoftDrop = true
	h.place(tetromino.New(tetromino.T), 4, 0)
	h.press(input.Down)
	assert.Equal(t, uint32(50), h.period)
	h.press(input.Idle)
	assert.Equal(t, uint32(750), h.period)
	_, x, y := h.Active()
	assert.Equal(t, [2]int{4, 0}, [2]int{x, y})
}

func TestPressRestoresSavedPeriodAfterLevelUp(t *testing.T) {
	h := newHarness(t)
	h.level = 2
	h.period = periodForLevel(2)
	h.place(tetromino.New(tetromino.O), 4, 0)

	// The saved period is only updated by Down, so it still holds the level 1
	// period.
	h.press(input.Right)
	assert.Equal(t, uint32(750), h.period)
}

func TestMoves(t *testing.T) {
	h := newHarness(t)
	o := tetromino.New(tetromino.O)
	h.place(o, 1, 5)

	h.press(input.Left)
	_, x, _ := h.Active()
	assert.Equal(t, 0, x)
	assert.Equal(t, render.Blue, h.screen.cell(0, 5))
	assert.Equal(t, render.Black, h.screen.cell(2, 5))

	h.press(input.Left)
	_, x, _ = h.Active()
	assert.Equal(t, 0, x, "blocked by the wall")

	h.Board().Cells[6][2] = render.Red
	h.press(input.Right)
	_, x, _ = h.Active()
	assert.Equal(t, 0, x, "blocked by a settled block")
}

func TestRotate(t *testing.T) {
	h := newHarness(t)
	h.place(tetromino.New(tetromino.T), 4, 5)

	h.press(input.Up)
	p, _, _ := h.Active()
	expected := tetromino.New(tetromino.T)
	expected.Rotate(tetromino.Right)
	assert.Equal(t, expected, p)

	h.press(input.Center)
	p, _, _ = h.Active()
	assert.Equal(t, tetromino.New(tetromino.T), p)
	assert.Equal(t, render.Black, h.screen.cell(5, 7), "rotated cell erased")
	assert.Equal(t, render.Green, h.screen.cell(4, 6))
}

func TestRotationBlocked(t *testing.T) {
	h := newHarness(t)
	h.place(tetromino.New(tetromino.T), 0, 5)
	// Rotated right, the T would need cell (1, 7).
	h.Board().Cells[7][1] = render.Red

	h.press(input.Up)
	p, x, y := h.Active()
	assert.Equal(t, tetromino.New(tetromino.T), p)
	assert.Equal(t, [2]int{0, 5}, [2]int{x, y})

	// So does rotating left.
	h.press(input.Center)
	p, _, _ = h.Active()
	assert.Equal(t, tetromino.New(tetromino.T), p)
}

func TestGameOver(t *testing.T) {
	logger.Clear()
	h := newHarness(t)
	for row := 1; row < playfield.Height; row++ {
		h.Board().Cells[row][5] = render.White
	}
	h.place(tetromino.New(tetromino.I), 4, -4)

	assert.Equal(t, Playing, h.fall(), "row 0 is still free")
	assert.Equal(t, GameOver, h.fall())
	occupied := h.Board().Occupied()
	assert.Equal(t, GameOver, h.fall(), "stays over")
	assert.Equal(t, occupied, h.Board().Occupied(), "the last piece isn't committed")

	var log bytes.Buffer
	logger.Write(&log)
	assert.Contains(t, log.String(), "game: game over: 0 lines, 0 points, level 1")
}

func TestRandomPlay(t *testing.T) {
	h := newHarness(t)
	r := rand.New(rand.NewPCG(3, 4))
	events := []input.Event{input.None, input.Idle, input.Up, input.Down, input.Left, input.Right, input.Center}
	var last Stats
	for i := 0; i < 20000 && h.State() == Playing; i++ {
		h.input.push(events[r.IntN(len(events))])
		h.clock.Set(uint32(r.IntN(800)))
		h.Step()

		stats := h.Stats()
		require.GreaterOrEqual(t, stats.Lines, last.Lines)
		require.GreaterOrEqual(t, stats.Score, last.Score)
		require.True(t, stats.Level >= 1 && stats.Level <= MaxLevel)
		last = stats

		for row := 0; row < playfield.Height; row++ {
			require.False(t, h.Board().RowFull(row))
		}
		if h.State() == Playing {
			p, x, y := h.Active()
			require.False(t, h.Board().Collides(&p, x, y), "active piece overlaps at (%d, %d)", x, y)
		}
	}
}

func TestMenu(t *testing.T) {
	screen := newFakeSurface()
	in := &fakeInput{}
	in.push(input.Idle, input.None, input.Idle, input.Left)
	e := New(screen, in, &tick.Counter{}, Config{Idle: func() {}})

	require.NoError(t, e.Menu(context.Background()))
	assert.Empty(t, in.events, "all events consumed")

	// T of TETRIS.
	assert.Equal(t, render.Red, screen.blocks[[2]int16{75, 75}])
	assert.Equal(t, render.Red, screen.blocks[[2]int16{90, 135}])
	assert.Equal(t, render.Black, screen.blocks[[2]int16{75, 90}])
	// Last S.
	assert.Equal(t, render.Yellow, screen.blocks[[2]int16{75 + 20*block, 75 + 4*block}])
	assert.Len(t, screen.blocks, 5*21)
	require.Len(t, screen.texts, 1)
	assert.Equal(t, titleMessage, screen.texts[0].text)
	assert.Equal(t, int16(200), screen.texts[0].y)
}

func TestMenuCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	e := New(newFakeSurface(), &fakeInput{}, &tick.Counter{}, Config{Idle: func() {
		calls++
		if calls == 3 {
			cancel()
		}
	}})
	assert.ErrorIs(t, e.Menu(ctx), context.Canceled)
	assert.Equal(t, 3, calls)
}

func TestPlay(t *testing.T) {
	screen := newFakeSurface()
	clock := &tick.Counter{}
	var e *Engine
	poller := pollerFunc(func() input.Event {
		if e.State() == GameOver {
			return input.Center
		}
		return input.None
	})
	// Every idle call lets a full gravity period elapse.
	e = New(screen, poller, clock, Config{Seed: 7, Idle: func() { clock.Set(InitialPeriod) }})

	stats, err := e.Play(context.Background())
	require.NoError(t, err)
	assert.Equal(t, GameOver, e.State())
	assert.Equal(t, Stats{Level: 1, Period: 750}, stats)
	assert.True(t, screen.hasText(90, 120, gameOverMessage))
	assert.Greater(t, e.Board().Occupied(), 0)
}

func TestRun(t *testing.T) {
	screen := newFakeSurface()
	clock := &tick.Counter{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var e *Engine
	poller := pollerFunc(func() input.Event {
		if e.State() == GameOver {
			return input.Center
		}
		return input.None
	})
	e = New(screen, poller, clock, Config{Seed: 7, Idle: func() {
		clock.Set(InitialPeriod)
		// Each game clears the screen twice: once for the menu and once when
		// it starts.
		if screen.clears == 4 {
			cancel()
		}
	}})

	assert.ErrorIs(t, e.Run(ctx), context.Canceled)
	assert.Equal(t, 4, screen.clears)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "playing", Playing.String())
	assert.Equal(t, "game over", GameOver.String())
}
