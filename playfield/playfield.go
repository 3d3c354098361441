// Package playfield implements the Tetris board: the grid of settled blocks
// and the tests the game loop runs against it.
//
// Piece positions are given as the board cell (x, y) of the top-left corner of
// the piece matrix. The y coordinate may be negative while a piece enters from
// above the board: those rows are never tested against the grid, but they do
// count for Overflows.
package playfield

import (
	"github.com/sabem/board/logger"
	"github.com/sabem/board/render"
	"github.com/sabem/board/tetromino"
)

// Board dimensions, in cells.
const (
	Height = 17
	Width  = 10
)

// Board is the grid of settled blocks. A zero cell is empty, any other value
// is the colour of the piece that was committed there.
type Board struct {
	Cells [Height][Width]render.Color

	// Position of the board on the screen in pixels. Only used for drawing.
	OriginX, OriginY int16
}

// New returns an empty board drawn at the given pixel origin.
func New(originX, originY int16) Board {
	return Board{
		OriginX: originX,
		OriginY: originY,
	}
}

// Reset empties the board, keeping its origin.
func (b *Board) Reset() {
	b.Cells = [Height][Width]render.Color{}
}

// Cell returns the contents of a single cell.
func (b *Board) Cell(col, row int) render.Color {
	return b.Cells[row][col]
}

// Collides reports whether the piece placed at (x, y) hits a wall, the floor
// or a settled block. Cells above the board never collide.
func (b *Board) Collides(p *tetromino.Piece, x, y int) bool {
	collides := false
	p.Each(func(i, j int) {
		col, row := x+j, y+i
		switch {
		case col < 0 || col >= Width || row >= Height:
			collides = true
		case row >= 0 && b.Cells[row][col] != 0:
			collides = true
		}
	})
	return collides
}

// Overflows reports whether any filled cell of the piece at row y lies above
// the top of the board. This is the game over test at lock time.
func Overflows(p *tetromino.Piece, y int) bool {
	overflows := false
	p.Each(func(i, j int) {
		if y+i < 0 {
			overflows = true
		}
	})
	return overflows
}

// Commit merges the piece at (x, y) into the board. Cells that fall outside
// the board are dropped, so the caller must check Overflows first.
func (b *Board) Commit(p *tetromino.Piece, x, y int) {
	p.Each(func(i, j int) {
		col, row := x+j, y+i
		if row >= 0 && row < Height && col >= 0 && col < Width {
			b.Cells[row][col] = p.Color
		}
	})
}

// RowFull reports whether the row has no empty cell.
func (b *Board) RowFull(row int) bool {
	for _, c := range b.Cells[row] {
		if c == 0 {
			return false
		}
	}
	return true
}

// ClearFullRows removes every full row and returns how many were removed.
//
// Rows are scanned top to bottom and the row index always advances, also after
// a clear. The rows above a cleared row have been checked already and moving
// them down by one doesn't make them full, so the count is still correct when
// several rows fill up at the same time.
func (b *Board) ClearFullRows() uint {
	var cleared uint
	for row := 0; row < Height; row++ {
		if b.RowFull(row) {
			b.ClearRow(row)
			cleared++
		}
	}
	return cleared
}

// ClearRow removes the given row. Everything above it moves down by one and
// the top row becomes empty.
func (b *Board) ClearRow(row int) {
	if row < 0 || row >= Height {
		logger.Panicf("playfield: row %d out of range", row)
	}
	for i := row; i > 0; i-- {
		b.Cells[i] = b.Cells[i-1]
	}
	b.Cells[0] = [Width]render.Color{}
}

// Occupied returns the number of non-empty cells.
func (b *Board) Occupied() int {
	n := 0
	for row := range b.Cells {
		for _, c := range b.Cells[row] {
			if c != 0 {
				n++
			}
		}
	}
	return n
}
