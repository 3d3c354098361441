package game

import (
	"fmt"

	"github.com/sabem/board/playfield"
	"github.com/sabem/board/render"
	"github.com/sabem/board/tetromino"
)

const block = render.BlockSize

// Title logo, one block per entry. It spells TETRIS.
var title = func() (logo [5][21]render.Color) {
	const (
		_ = iota
		r
		c
		g
		b
		m
		y
	)
	colors := [...]render.Color{
		r: render.Red,
		c: render.Cyan,
		g: render.Green,
		b: render.Blue,
		m: render.Magenta,
		y: render.Yellow,
	}
	rows := [5][21]uint8{
		{r, r, r, 0, c, c, c, 0, g, g, g, 0, b, b, b, 0, m, 0, y, y, y},
		{0, r, 0, 0, c, 0, 0, 0, 0, g, 0, 0, b, 0, b, 0, m, 0, y, 0, 0},
		{0, r, 0, 0, c, c, c, 0, 0, g, 0, 0, b, b, b, 0, m, 0, y, y, y},
		{0, r, 0, 0, c, 0, 0, 0, 0, g, 0, 0, b, b, 0, 0, m, 0, 0, 0, y},
		{0, r, 0, 0, c, c, c, 0, 0, g, 0, 0, b, 0, b, 0, m, 0, y, y, y},
	}
	for i := range rows {
		for j, v := range rows[i] {
			logo[i][j] = colors[v]
		}
	}
	return
}()

const (
	titleMessage    = "PRESS THE JOYSTICK TO START"
	gameOverMessage = " G A M E O V E R "
)

// drawTitle paints the menu screen.
func (e *Engine) drawTitle() {
	for i := range title {
		for j, c := range title[i] {
			e.screen.DrawBlock(int16(block*(5+j)), int16(block*(5+i)), c)
		}
	}
	x := (render.ScreenWidth - render.Small.Width(titleMessage)) / 2
	e.screen.DrawText(x, 200, render.White, render.Black, render.Small, titleMessage)
}

// drawGameOver paints the game over banner across the board.
func (e *Engine) drawGameOver() {
	e.screen.DrawText(e.board.OriginX-block, block*8, render.Red, render.Black, render.Large, gameOverMessage)
}

// drawWalls paints the white walls left and right of the board and the floor
// below it.
func (e *Engine) drawWalls() {
	ox, oy := e.board.OriginX, e.board.OriginY
	for row := int16(0); row <= playfield.Height; row++ {
		e.screen.DrawBlock(ox-block, oy+row*block, render.White)
		e.screen.DrawBlock(ox+playfield.Width*block, oy+row*block, render.White)
	}
	for col := int16(0); col <= playfield.Width; col++ {
		e.screen.DrawBlock(ox+(col-1)*block, oy+playfield.Height*block, render.White)
	}
}

// drawBoard repaints every cell of the board, empty cells included.
func (e *Engine) drawBoard() {
	for row := 0; row < playfield.Height; row++ {
		for col := 0; col < playfield.Width; col++ {
			px, py := e.cellPosition(col, row)
			e.screen.DrawBlock(px, py, e.board.Cell(col, row))
		}
	}
}

// cellPosition returns the screen position of a board cell.
func (e *Engine) cellPosition(col, row int) (px, py int16) {
	return e.board.OriginX + int16(col*block), e.board.OriginY + int16(row*block)
}

// paintPiece draws the active piece in the given colour. Cells above the
// board are skipped.
func (e *Engine) paintPiece(c render.Color) {
	e.active.Each(func(i, j int) {
		if e.y+i < 0 {
			return
		}
		px, py := e.cellPosition(e.x+j, e.y+i)
		e.screen.DrawBlock(px, py, c)
	})
}

func (e *Engine) drawPiece() {
	e.paintPiece(e.active.Color)
}

func (e *Engine) erasePiece() {
	e.paintPiece(render.Black)
}

// Marquee rows, in blocks from the top.
const (
	nextRow  = 2 // preview area, 4 blocks high
	linesRow = 8
	scoreRow = 11
	levelRow = 14
)

// drawMarquee paints the frame and labels of the marquee. The values are
// drawn separately.
func (e *Engine) drawMarquee() {
	for i := int16(0); i < 5; i++ {
		x := MarqueeX + i*block
		for _, row := range []int16{0, 6, 9, 12, 15, 16, 17} {
			e.screen.DrawBlock(x, MarqueeY+row*block, render.White)
		}
	}
	for row := int16(0); row < 18; row++ {
		e.screen.DrawBlock(MarqueeX+5*block, MarqueeY+row*block, render.White)
	}

	label := func(row int16, text string) {
		x := MarqueeX + (5*block-render.Small.Width(text))/2
		e.screen.DrawText(x, MarqueeY+row*block, render.Cyan, render.Black, render.Small, text)
	}
	label(1, "NEXT")
	label(7, "LINES")
	label(10, "SCORE")
	label(13, "LEVEL")
}

// drawValue prints a number right aligned in the marquee.
func (e *Engine) drawValue(row int16, value uint32) {
	text := fmt.Sprintf("%8d", value)
	e.screen.DrawText(MarqueeX, MarqueeY+row*block-1, render.White, render.Black, render.Small, text)
}

func (e *Engine) drawLines() {
	e.drawValue(linesRow, e.lines)
}

func (e *Engine) drawScore() {
	e.drawValue(scoreRow, e.score)
}

func (e *Engine) drawLevel() {
	e.drawValue(levelRow, e.level)
}

// drawNext paints the next piece centred in the preview area.
func (e *Engine) drawNext() {
	top := int16(MarqueeY + nextRow*block)
	e.screen.FillRect(MarqueeX, top, MarqueeX+5*block-1, top+4*block-1, render.Black)

	offset := int16((tetromino.MatrixSize - e.next.Size) * block / 2)
	e.next.Each(func(i, j int) {
		e.screen.DrawBlock(MarqueeX+offset+int16(j*block), top+offset+int16(i*block), e.next.Color)
	})
}
