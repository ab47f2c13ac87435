package gol

import (
	"fmt"

	"uk.ac.bris.cs/halolife/comm"
)

// Direction names one of the eight neighbours of a tile.
type Direction int

const (
	North Direction = iota
	South
	East
	West
	NorthEast
	NorthWest
	SouthEast
	SouthWest
)

var directionNames = [...]string{"N", "S", "E", "W", "NE", "NW", "SE", "SW"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Step is the topology offset towards the neighbour in direction d.
func (d Direction) Step() (dx, dy int) {
	switch d {
	case North:
		return 0, -1
	case South:
		return 0, 1
	case East:
		return 1, 0
	case West:
		return -1, 0
	case NorthEast:
		return 1, -1
	case NorthWest:
		return -1, -1
	case SouthEast:
		return 1, 1
	default:
		return -1, 1
	}
}

// TransferKind is the shape of the data exchanged with one neighbour.
type TransferKind int

const (
	// Corner moves a single cell.
	Corner TransferKind = iota
	// Row moves a contiguous interior row.
	Row
	// Column moves an interior column, one cell per board row.
	Column
)

func kindOf(d Direction) TransferKind {
	switch dx, dy := d.Step(); {
	case dx != 0 && dy != 0:
		return Corner
	case dy != 0:
		return Row
	default:
		return Column
	}
}

// NeighbourLink is one valid neighbour of a tile: who it is and which cells
// go out to it and come back from it.
type NeighbourLink struct {
	Direction Direction
	Kind      TransferKind
	Rank      int
	Send      comm.Vector
	Recv      comm.Vector
}

// edge picks, along one axis of length size, the interior index sent towards
// step and the margin index received from it.
func edge(step, size int) (send, recv int) {
	if step < 0 {
		return 1, 0
	}
	return size - 2, size - 1
}

func transfer(d Direction, b *Board) (send, recv comm.Vector) {
	dx, dy := d.Step()
	switch kindOf(d) {
	case Corner:
		sx, rx := edge(dx, b.Width)
		sy, ry := edge(dy, b.Height)
		send = comm.Vector{Offset: sy*b.Width + sx, Count: 1, Stride: 1}
		recv = comm.Vector{Offset: ry*b.Width + rx, Count: 1, Stride: 1}
	case Row:
		sy, ry := edge(dy, b.Height)
		send = comm.Vector{Offset: sy*b.Width + 1, Count: b.Width - 2, Stride: 1}
		recv = comm.Vector{Offset: ry*b.Width + 1, Count: b.Width - 2, Stride: 1}
	case Column:
		sx, rx := edge(dx, b.Width)
		send = comm.Vector{Offset: b.Width + sx, Count: b.Height - 2, Stride: b.Width}
		recv = comm.Vector{Offset: b.Width + rx, Count: b.Height - 2, Stride: b.Width}
	}
	return send, recv
}

// Neighbours lists the links of rank's tile, skipping directions that fall
// outside the topology.
func Neighbours(rank int, t Topology, b *Board) []NeighbourLink {
	here := t.Coordinate(rank)
	var links []NeighbourLink
	for d := North; d <= SouthWest; d++ {
		dx, dy := d.Step()
		there := Coordinate{X: here.X + dx, Y: here.Y + dy}
		if !t.Contains(there) {
			continue
		}
		send, recv := transfer(d, b)
		links = append(links, NeighbourLink{
			Direction: d,
			Kind:      kindOf(d),
			Rank:      t.Rank(there),
			Send:      send,
			Recv:      recv,
		})
	}
	return links
}

// HaloExchange refreshes a tile's ghost margin from its neighbours through
// persistent requests bound to the board's cells.
type HaloExchange struct {
	links []NeighbourLink
	has   [len(directionNames)]bool
	sends []*comm.Request
	recvs []*comm.Request
}

// NewHaloExchange binds the exchange to b. The board must stay the same
// allocation for the lifetime of the exchange.
func NewHaloExchange(c comm.Communicator, b *Board, t Topology) (*HaloExchange, error) {
	if t.Size() != c.Size() {
		return nil, fmt.Errorf("%w: %dx%d topology for %d workers", ErrTopology, t.Columns, t.Rows, c.Size())
	}
	if b.Width < 3 || b.Height < 3 {
		return nil, fmt.Errorf("%w: %dx%d tile board has no interior", ErrTopology, b.Width, b.Height)
	}
	h := &HaloExchange{links: Neighbours(c.Rank(), t, b)}
	for _, l := range h.links {
		send, err := comm.SendInit(c, b.Cells, l.Send, l.Rank, comm.TagHalo)
		if err != nil {
			return nil, err
		}
		recv, err := comm.RecvInit(c, b.Cells, l.Recv, l.Rank, comm.TagHalo)
		if err != nil {
			return nil, err
		}
		h.sends = append(h.sends, send)
		h.recvs = append(h.recvs, recv)
		h.has[l.Direction] = true
	}
	return h, nil
}

// Begin starts every receive and send of this generation and returns at once.
func (h *HaloExchange) Begin() {
	comm.StartAll(h.recvs)
	comm.StartAll(h.sends)
}

// End blocks until all receives and then all sends of this generation are done.
func (h *HaloExchange) End() error {
	if err := comm.WaitAll(h.recvs); err != nil {
		comm.WaitAll(h.sends)
		return err
	}
	return comm.WaitAll(h.sends)
}

// Links is the number of neighbours the tile exchanges with.
func (h *HaloExchange) Links() int {
	return len(h.links)
}

// Has reports whether there is a neighbour in direction d.
func (h *HaloExchange) Has(d Direction) bool {
	return h.has[d]
}

// Close waits out any transfer still in flight and drops the requests.
func (h *HaloExchange) Close() {
	comm.WaitAll(h.recvs)
	comm.WaitAll(h.sends)
	h.sends, h.recvs, h.links = nil, nil, nil
	h.has = [len(directionNames)]bool{}
}
