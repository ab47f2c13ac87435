package util

// Cell is the position of one live cell in the global board.
type Cell struct {
	X, Y int
}
