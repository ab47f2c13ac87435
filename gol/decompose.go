package gol

import "fmt"

// Offset is the global position of a tile's first interior cell.
type Offset struct {
	X, Y int
}

// SubgridWidth is the interior width of the tiles in a column. The first
// width%columns columns take one extra cell.
func SubgridWidth(column, columns, width int) int {
	return share(column, columns, width)
}

// SubgridHeight is the interior height of the tiles in a row.
func SubgridHeight(row, rows, height int) int {
	return share(row, rows, height)
}

func share(index, parts, total int) int {
	if parts < 1 || index < 0 || index >= parts {
		panic(fmt.Sprintf("gol: part %d of %d is out of range", index, parts))
	}
	if total%parts > index {
		return total/parts + 1
	}
	return total / parts
}

// TileSize is the interior size of the tile at c.
func TileSize(c Coordinate, t Topology, width, height int) (int, int) {
	return SubgridWidth(c.X, t.Columns, width), SubgridHeight(c.Y, t.Rows, height)
}

// CalculateOffsets sums the widths of the preceding columns and the heights of
// the preceding rows.
func CalculateOffsets(c Coordinate, t Topology, width, height int) Offset {
	var o Offset
	for y := 0; y < c.Y; y++ {
		o.Y += SubgridHeight(y, t.Rows, height)
	}
	for x := 0; x < c.X; x++ {
		o.X += SubgridWidth(x, t.Columns, width)
	}
	return o
}

// checkLayout rejects boards too small to give every worker a non-empty tile.
func checkLayout(t Topology, width, height int) error {
	if t.Columns < 1 || t.Rows < 1 {
		return fmt.Errorf("%w: no workers", ErrTopology)
	}
	if width < t.Columns || height < t.Rows {
		return fmt.Errorf("%w: %dx%d board cannot be split over %dx%d workers",
			ErrTopology, width, height, t.Columns, t.Rows)
	}
	return nil
}
