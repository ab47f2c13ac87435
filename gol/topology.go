package gol

// Topology is the columns x rows arrangement of workers over the board.
type Topology struct {
	Columns int
	Rows    int
}

// Coordinate is a worker's position inside the topology.
type Coordinate struct {
	X, Y int
}

// CalculateTopology factors workers into the divisor pair closest to square.
// Divisors are scanned in increasing order and the first minimal pair wins.
// The larger factor goes to the larger board dimension.
func CalculateTopology(workers, width, height int) Topology {
	var a, b int
	switch {
	case workers <= 0:
		return Topology{}
	case workers == 1:
		a, b = 1, 1
	default:
		best := workers
		for i := 1; i < workers/2+1; i++ {
			t := workers / i
			if t*i != workers {
				continue
			}
			if d := abs(t - i); d < best {
				best = d
				a, b = t, i
			}
		}
	}
	hi, lo := a, b
	if lo > hi {
		hi, lo = lo, hi
	}
	if width >= height {
		return Topology{Columns: hi, Rows: lo}
	}
	return Topology{Columns: lo, Rows: hi}
}

// Size is the number of workers the topology holds.
func (t Topology) Size() int {
	return t.Columns * t.Rows
}

// Coordinate maps a rank to its position.
func (t Topology) Coordinate(rank int) Coordinate {
	return Coordinate{X: rank % t.Columns, Y: rank / t.Columns}
}

// Rank maps a position back to its rank.
func (t Topology) Rank(c Coordinate) int {
	return c.Y*t.Columns + c.X
}

// Contains reports whether c names a worker of the topology.
func (t Topology) Contains(c Coordinate) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < t.Columns && c.Y < t.Rows
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
