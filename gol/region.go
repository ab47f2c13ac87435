package gol

// Region is a rectangle of board cells to be stepped.
type Region struct {
	X, Y          int
	Width, Height int
}

func (r Region) empty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// TileRegions splits the interior of a tile board (margin excluded) into the
// interior region, which is at least two cells from the board edge, and the
// north, south, west and east strips next to the margin. Together they cover
// every non-margin cell exactly once. Empty regions are left out, so tiles
// thinner than three cells still partition correctly.
func TileRegions(b *Board) (interior Region, strips []Region) {
	w, h := b.Width-2, b.Height-2
	interior = Region{X: 2, Y: 2, Width: w - 2, Height: h - 2}
	if interior.empty() {
		interior = Region{}
	}
	candidates := []Region{
		{X: 1, Y: 1, Width: w, Height: 1},
		{X: 1, Y: h, Width: w, Height: 1},
		{X: 1, Y: 2, Width: 1, Height: h - 2},
		{X: w, Y: 2, Width: 1, Height: h - 2},
	}
	if h < 2 {
		// south row is the north row
		candidates[1] = Region{}
	}
	if w < 2 {
		// east column is the west column
		candidates[3] = Region{}
	}
	for _, r := range candidates {
		if !r.empty() {
			strips = append(strips, r)
		}
	}
	return interior, strips
}
