package gol

import "fmt"

// StepRegion advances every cell of r by one generation. Neighbours are read
// from src only and results written to dst only, so separate regions of one
// generation can be stepped in any order. Cells beyond the edge of src count
// as dead.
func StepRegion(r Region, src, dst *Board) {
	if src.Width != dst.Width || src.Height != dst.Height {
		panic(fmt.Sprintf("gol: stepping %dx%d board into %dx%d board",
			src.Width, src.Height, dst.Width, dst.Height))
	}
	if r.empty() {
		return
	}
	if r.X < 0 || r.Y < 0 || r.X+r.Width > src.Width || r.Y+r.Height > src.Height {
		panic(fmt.Sprintf("gol: region %+v outside %dx%d board", r, src.Width, src.Height))
	}
	for y := r.Y; y < r.Y+r.Height; y++ {
		for x := r.X; x < r.X+r.Width; x++ {
			dst.Cells[y*dst.Width+x] = nextState(src.Alive(x, y), aliveNeighbours(src, x, y))
		}
	}
}

func aliveNeighbours(b *Board, x, y int) int {
	n := 0
	for j := y - 1; j <= y+1; j++ {
		for i := x - 1; i <= x+1; i++ {
			if (i != x || j != y) && b.Alive(i, j) {
				n++
			}
		}
	}
	return n
}

func nextState(alive bool, neighbours int) bool {
	if alive {
		// overcrowding at 4 or more, isolation at 1 or fewer
		return neighbours == 2 || neighbours == 3
	}
	return neighbours == 3
}
