package gol

import "fmt"

// Simulate advances a tile board by the given number of generations. Each
// generation starts the halo refresh, steps the interior while it is in
// flight, waits for the halo, steps the strips next to the margin and then
// commits the new generation. scratch must match board in size; it holds the
// generation being written.
func Simulate(h *HaloExchange, board, scratch *Board, generations int, events chan<- Event) error {
	interior, strips := TileRegions(board)
	for turn := 0; turn < generations; turn++ {
		h.Begin()
		StepRegion(interior, board, scratch)
		if err := h.End(); err != nil {
			return fmt.Errorf("generation %d: %w", turn+1, err)
		}
		for _, r := range strips {
			StepRegion(r, board, scratch)
		}
		clearMargins(board, h)
		commit(board, scratch)
		if events != nil {
			events <- TurnComplete{CompletedTurns: turn + 1}
		}
	}
	return nil
}

// clearMargins kills the margin cells that lie beyond the global board, that
// is every margin side without a neighbour. Corners are covered by the sides.
func clearMargins(b *Board, h *HaloExchange) {
	last := b.Height - 1
	if !h.Has(North) {
		clearCells(b.Row(0))
	}
	if !h.Has(South) {
		clearCells(b.Row(last))
	}
	for y := 0; y <= last; y++ {
		row := b.Row(y)
		if !h.Has(West) {
			row[0] = false
		}
		if !h.Has(East) {
			row[len(row)-1] = false
		}
	}
}

func clearCells(cells []bool) {
	for i := range cells {
		cells[i] = false
	}
}

// commit copies the stepped interior of next into board. The halo requests
// are bound to board's memory, so the buffers are not swapped.
func commit(board, next *Board) {
	for y := 1; y < board.Height-1; y++ {
		copy(board.Row(y)[1:board.Width-1], next.Row(y)[1:next.Width-1])
	}
}
