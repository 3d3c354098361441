// Package tetromino contains the seven Tetris pieces and the rotation of a
// piece inside its bounding box.
//
// A Piece is a plain value: New copies one of the catalog templates, and a
// copy of the active piece can be rotated to probe whether the rotation fits
// before the active piece itself is touched.
package tetromino

import (
	"math/rand/v2"

	"github.com/sabem/board/logger"
	"github.com/sabem/board/render"
)

// MatrixSize is the side of the cell matrix stored in every piece. Only the
// top-left Size×Size part of it is used by a given piece.
const MatrixSize = 4

// Kind identifies one of the seven tetrominoes.
type Kind uint8

// List of all pieces.
const (
	I Kind = iota // straight line of four
	O             // 2×2 square
	S
	Z
	L
	J // mirrored L
	T

	// Count is the number of different pieces.
	Count = 7
)

func (k Kind) String() string {
	if k >= Count {
		return "Kind(?)"
	}
	return [Count]string{"I", "O", "S", "Z", "L", "J", "T"}[k]
}

// Direction of a 90 degree rotation.
type Direction uint8

const (
	Right Direction = iota // clockwise
	Left                   // counterclockwise
)

// Piece is a tetromino in some orientation.
type Piece struct {
	Kind  Kind
	Size  int // side of the square bounding box used for rotation: 2, 3 or 4
	Color render.Color
	Cells [MatrixSize][MatrixSize]uint8
}

var catalog = [Count]Piece{
	I: {
		Kind:  I,
		Size:  4,
		Color: render.Red,
		Cells: [MatrixSize][MatrixSize]uint8{
			{0, 1, 0, 0},
			{0, 1, 0, 0},
			{0, 1, 0, 0},
			{0, 1, 0, 0},
		},
	},
	O: {
		Kind:  O,
		Size:  2,
		Color: render.Blue,
		Cells: [MatrixSize][MatrixSize]uint8{
			{1, 1, 0, 0},
			{1, 1, 0, 0},
		},
	},
	S: {
		Kind:  S,
		Size:  3,
		Color: render.Cyan,
		Cells: [MatrixSize][MatrixSize]uint8{
			{0, 1, 1, 0},
			{1, 1, 0, 0},
		},
	},
	Z: {
		Kind:  Z,
		Size:  3,
		Color: render.Magenta,
		Cells: [MatrixSize][MatrixSize]uint8{
			{1, 1, 0, 0},
			{0, 1, 1, 0},
		},
	},
	L: {
		Kind:  L,
		Size:  3,
		Color: render.Yellow,
		Cells: [MatrixSize][MatrixSize]uint8{
			{0, 1, 0, 0},
			{0, 1, 0, 0},
			{0, 1, 1, 0},
		},
	},
	J: {
		Kind:  J,
		Size:  3,
		Color: render.Orange,
		Cells: [MatrixSize][MatrixSize]uint8{
			{0, 1, 0, 0},
			{0, 1, 0, 0},
			{1, 1, 0, 0},
		},
	},
	T: {
		Kind:  T,
		Size:  3,
		Color: render.Green,
		Cells: [MatrixSize][MatrixSize]uint8{
			{0, 1, 0, 0},
			{1, 1, 1, 0},
		},
	},
}

// New returns a fresh piece of the given kind in its initial orientation.
func New(kind Kind) Piece {
	if kind >= Count {
		logger.Panicf("tetromino: unknown piece kind %d", kind)
	}
	return catalog[kind]
}

// Random returns a new piece of a kind drawn uniformly from all seven.
func Random(r *rand.Rand) Piece {
	return New(Kind(r.IntN(Count)))
}

// Rotate the piece 90 degrees in place. Only the Size×Size part of the matrix
// takes part; everything outside it stays zero.
func (p *Piece) Rotate(dir Direction) {
	var rotated [MatrixSize][MatrixSize]uint8
	n := p.Size
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if dir == Right {
				rotated[j][n-1-i] = p.Cells[i][j]
			} else {
				rotated[n-1-j][i] = p.Cells[i][j]
			}
		}
	}
	p.Cells = rotated
}

// Each calls fn for every filled cell, with the row and column inside the
// piece matrix.
func (p *Piece) Each(fn func(row, col int)) {
	for i := 0; i < p.Size; i++ {
		for j := 0; j < p.Size; j++ {
			if p.Cells[i][j] != 0 {
				fn(i, j)
			}
		}
	}
}

// Filled returns the number of filled cells (always 4 for a valid piece).
func (p *Piece) Filled() int {
	n := 0
	p.Each(func(row, col int) {
		n++
	})
	return n
}
