package gol

import (
	"fmt"
	"strings"

	"uk.ac.bris.cs/halolife/util"
)

// Board is a row-major grid of cells. A worker's board is its tile plus a
// one-cell ghost margin on every side.
type Board struct {
	Width  int
	Height int
	Cells  []bool
}

// Header describes the global board and run length. It is read once by rank 0
// and sent to every worker.
type Header struct {
	Width       int
	Height      int
	Generations int
}

func NewBoard(width, height int) *Board {
	if width < 0 || height < 0 {
		panic(fmt.Sprintf("gol: invalid board size %dx%d", width, height))
	}
	return &Board{Width: width, Height: height, Cells: make([]bool, width*height)}
}

func (b *Board) index(x, y int) int {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		panic(fmt.Sprintf("gol: cell (%d,%d) outside %dx%d board", x, y, b.Width, b.Height))
	}
	return y*b.Width + x
}

// Alive reports the state of a cell. Coordinates outside the board are dead.
func (b *Board) Alive(x, y int) bool {
	if x < 0 || y < 0 || x >= b.Width || y >= b.Height {
		return false
	}
	return b.Cells[y*b.Width+x]
}

func (b *Board) Set(x, y int, alive bool) {
	b.Cells[b.index(x, y)] = alive
}

// Row returns the cells of row y, sharing storage with the board.
func (b *Board) Row(y int) []bool {
	start := b.index(0, y)
	return b.Cells[start : start+b.Width]
}

func (b *Board) Clone() *Board {
	c := NewBoard(b.Width, b.Height)
	copy(c.Cells, b.Cells)
	return c
}

func (b *Board) Equal(o *Board) bool {
	if b.Width != o.Width || b.Height != o.Height {
		return false
	}
	for i := range b.Cells {
		if b.Cells[i] != o.Cells[i] {
			return false
		}
	}
	return true
}

// AliveCells lists every live cell, row by row.
func (b *Board) AliveCells() []util.Cell {
	var cells []util.Cell
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if b.Cells[y*b.Width+x] {
				cells = append(cells, util.Cell{X: x, Y: y})
			}
		}
	}
	return cells
}

// String renders the board in the file format's row layout, margins included.
func (b *Board) String() string {
	var sb strings.Builder
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			if x > 0 {
				sb.WriteByte(' ')
			}
			if b.Cells[y*b.Width+x] {
				sb.WriteByte('1')
			} else {
				sb.WriteByte('0')
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
