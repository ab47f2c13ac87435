package gol

import (
	"math/rand"
	"strings"
	"testing"
)

// parseBoard builds a board from rows of 0 and 1 characters.
func parseBoard(t *testing.T, rows ...string) *Board {
	t.Helper()
	b := NewBoard(len(rows[0]), len(rows))
	for y, row := range rows {
		if len(row) != b.Width {
			t.Fatalf("row %d has %d cells, want %d", y, len(row), b.Width)
		}
		for x, c := range row {
			b.Set(x, y, c == '1')
		}
	}
	return b
}

func randomBoard(width, height int, seed int64) *Board {
	rnd := rand.New(rand.NewSource(seed))
	b := NewBoard(width, height)
	for i := range b.Cells {
		b.Cells[i] = rnd.Intn(3) == 0
	}
	return b
}

// reference steps the whole board in one region.
func reference(b *Board, generations int) *Board {
	cur, next := b.Clone(), NewBoard(b.Width, b.Height)
	for i := 0; i < generations; i++ {
		StepRegion(Region{Width: cur.Width, Height: cur.Height}, cur, next)
		cur, next = next, cur
	}
	return cur
}

func boardFile(h Header, b *Board) string {
	var sb strings.Builder
	WriteBoard(&sb, h, b)
	return sb.String()
}
