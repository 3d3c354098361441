// Command tetris plays Tetris on the board it is built for. On a desktop that
// is the simulator window, or the terminal when built with -tags=terminal.
//
// The game runs the same way it does on the development board: a 1ms timer
// counts milliseconds for gravity, a 20ms timer samples the joystick and the
// main loop polls both. A third timer copies the framebuffer to the display,
// like the LCD controller does on the board.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/sabem/board"
	"github.com/sabem/board/game"
	"github.com/sabem/board/input"
	"github.com/sabem/board/logger"
	"github.com/sabem/board/render"
	"github.com/sabem/board/tick"
)

// Timer periods.
const (
	tickPeriod    = time.Millisecond
	samplePeriod  = 20 * time.Millisecond
	refreshPeriod = 33 * time.Millisecond
)

func main() {
	seed := flag.Uint64("seed", 0, "seed for the piece randomizer (0: seed from the tick counter)")
	verbose := flag.Bool("v", false, "echo the log to stderr")
	title := flag.String("title", board.Simulator.WindowTitle, "simulator window title")
	hold := flag.Bool("hold", false, "soft drop only while down is held")
	flag.Parse()

	if *verbose {
		logger.SetEcho(os.Stderr)
	}
	board.Simulator.WindowTitle = *title

	if err := run(*seed, *hold); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, "tetris:", err)
		os.Exit(1)
	}
}

func run(seed uint64, hold bool) error {
	display := board.Display.Configure()
	board.Joystick.Configure()
	width, height := display.Size()
	logger.Logf("main", "board %s, display %dx%d", board.Name, width, height)

	framebuffer := render.NewFramebuffer(display)
	var clock tick.Counter
	sampler := input.NewSampler(board.Joystick)

	timer := tick.NewHostTimer()
	defer timer.Stop()
	timer.Every(tickPeriod, clock.Tick)
	timer.Every(samplePeriod, sampler.Sample)
	timer.Every(refreshPeriod, func() {
		if err := framebuffer.Display(); err != nil {
			logger.Logf("display", "%v", err)
		}
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	engine := game.New(framebuffer, sampler, &clock, game.Config{
		Seed:                   seed,
		Idle:                   func() { time.Sleep(time.Millisecond) },
		ReleaseCancelsSoftDrop: hold,
	})
	err := engine.Run(ctx)
	logger.Logf("main", "stopped: %v", err)
	return err
}
