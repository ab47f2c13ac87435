package gol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"log"
	"os"

	"uk.ac.bris.cs/halolife/comm"
)

// Params provides the board file to load and where to write the result.
type Params struct {
	InputPath  string
	OutputPath string
}

// Run executes one worker of the run. Every rank calls it with the same
// params; rank 0 reads the input, hands each worker its tile, gathers the
// tiles back and writes the output. events may be nil and is closed when Run
// returns. A rank that fails on its own aborts the whole run with the status
// of its error, so no peer is left waiting on it.
func Run(p Params, c comm.Communicator, events chan<- Event) error {
	if events != nil {
		defer close(events)
	}
	err := run(p, c, events)
	if err != nil && !errors.Is(err, comm.ErrAborted) {
		c.Abort(ExitStatus(err))
	}
	return err
}

func run(p Params, c comm.Communicator, events chan<- Event) error {
	if p.InputPath == "" || p.OutputPath == "" {
		return fmt.Errorf("%w: input and output paths are required", ErrBadParameters)
	}

	header, board, err := scatterBoard(p, c)
	if err != nil {
		return err
	}
	topology := CalculateTopology(c.Size(), header.Width, header.Height)
	halo, err := NewHaloExchange(c, board, topology)
	if err != nil {
		return err
	}
	defer halo.Close()

	coord := topology.Coordinate(c.Rank())
	log.Printf("[Worker %d] tile %dx%d at (%d,%d) of %dx%d workers, %d links",
		c.Rank(), board.Width-2, board.Height-2, coord.X, coord.Y,
		topology.Columns, topology.Rows, halo.Links())

	if events != nil {
		events <- StateChange{0, Executing}
	}
	scratch := NewBoard(board.Width, board.Height)
	if err := Simulate(halo, board, scratch, header.Generations, events); err != nil {
		return fmt.Errorf("worker %d: %w", c.Rank(), err)
	}

	world, err := gatherBoard(c, header, board)
	if err != nil {
		return err
	}
	if c.Rank() != 0 {
		return nil
	}
	if events != nil {
		events <- FinalTurnComplete{header.Generations, world.Width, world.Height, world.AliveCells()}
	}
	if err := saveBoard(p.OutputPath, header, world); err != nil {
		return err
	}
	if events != nil {
		events <- BoardOutputComplete{header.Generations, p.OutputPath}
		events <- StateChange{header.Generations, Quitting}
	}
	return nil
}

func loadBoard(path string) (Header, *Board, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, nil, fmt.Errorf("%w: %v", ErrRead, err)
	}
	defer f.Close()
	return ReadBoard(f)
}

func saveBoard(path string, h Header, b *Board) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	if err := WriteBoard(f, h, b); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}

func encodeHeader(h Header) []byte {
	buf := make([]byte, 12)
	binary.BigEndian.PutUint32(buf[0:], uint32(h.Width))
	binary.BigEndian.PutUint32(buf[4:], uint32(h.Height))
	binary.BigEndian.PutUint32(buf[8:], uint32(h.Generations))
	return buf
}

func decodeHeader(buf []byte) (Header, error) {
	if len(buf) != 12 {
		return Header{}, fmt.Errorf("header message of %d bytes", len(buf))
	}
	return Header{
		Width:       int(binary.BigEndian.Uint32(buf[0:])),
		Height:      int(binary.BigEndian.Uint32(buf[4:])),
		Generations: int(binary.BigEndian.Uint32(buf[8:])),
	}, nil
}

// scatterBoard gives every rank the header and its own tile, margin dead.
// Rank 0 sends each tile point to point instead of broadcasting the board.
// A failed read is announced as an empty header so every rank stops with
// ErrRead.
func scatterBoard(p Params, c comm.Communicator) (Header, *Board, error) {
	var (
		header  Header
		world   *Board
		readErr error
	)
	if c.Rank() == 0 {
		header, world, readErr = loadBoard(p.InputPath)
		if readErr != nil {
			header = Header{}
		}
		msg := encodeHeader(header)
		for r := 1; r < c.Size(); r++ {
			if err := c.Send(r, comm.TagHeader, msg); err != nil {
				return Header{}, nil, err
			}
		}
		if readErr != nil {
			return Header{}, nil, readErr
		}
	} else {
		msg, err := c.Recv(0, comm.TagHeader)
		if err != nil {
			return Header{}, nil, err
		}
		if header, err = decodeHeader(msg); err != nil {
			return Header{}, nil, err
		}
	}
	if header.Width == 0 || header.Height == 0 {
		return Header{}, nil, fmt.Errorf("%w: rank 0 could not load the board", ErrRead)
	}

	topology := CalculateTopology(c.Size(), header.Width, header.Height)
	if err := checkLayout(topology, header.Width, header.Height); err != nil {
		return Header{}, nil, err
	}

	if c.Rank() != 0 {
		board := newTile(topology.Coordinate(c.Rank()), topology, header)
		msg, err := c.Recv(0, comm.TagScatter)
		if err != nil {
			return Header{}, nil, err
		}
		if err := unpackInterior(board, msg); err != nil {
			return Header{}, nil, err
		}
		return header, board, nil
	}

	var own *Board
	for r := 0; r < c.Size(); r++ {
		coord := topology.Coordinate(r)
		tile := newTile(coord, topology, header)
		off := CalculateOffsets(coord, topology, header.Width, header.Height)
		for y := 1; y < tile.Height-1; y++ {
			copy(tile.Row(y)[1:tile.Width-1], world.Row(off.Y + y - 1)[off.X:])
		}
		if r == 0 {
			own = tile
			continue
		}
		if err := c.Send(r, comm.TagScatter, packInterior(tile)); err != nil {
			return Header{}, nil, err
		}
	}
	return header, own, nil
}

// gatherBoard collects every tile's interior on rank 0 and places it at the
// tile's offset. Other ranks get a nil board back.
func gatherBoard(c comm.Communicator, header Header, board *Board) (*Board, error) {
	if c.Rank() != 0 {
		return nil, c.Send(0, comm.TagGather, packInterior(board))
	}
	topology := CalculateTopology(c.Size(), header.Width, header.Height)
	world := NewBoard(header.Width, header.Height)
	for r := 0; r < c.Size(); r++ {
		coord := topology.Coordinate(r)
		tile := board
		if r != 0 {
			tile = newTile(coord, topology, header)
			msg, err := c.Recv(r, comm.TagGather)
			if err != nil {
				return nil, err
			}
			if err := unpackInterior(tile, msg); err != nil {
				return nil, err
			}
		}
		off := CalculateOffsets(coord, topology, header.Width, header.Height)
		for y := 1; y < tile.Height-1; y++ {
			copy(world.Row(off.Y + y - 1)[off.X:], tile.Row(y)[1:tile.Width-1])
		}
	}
	return world, nil
}

func newTile(coord Coordinate, t Topology, h Header) *Board {
	w, ht := TileSize(coord, t, h.Width, h.Height)
	return NewBoard(w+2, ht+2)
}

func packInterior(b *Board) []byte {
	out := make([]byte, 0, (b.Width-2)*(b.Height-2))
	for y := 1; y < b.Height-1; y++ {
		row := comm.Vector{Offset: y*b.Width + 1, Count: b.Width - 2, Stride: 1}
		out = append(out, row.Pack(b.Cells)...)
	}
	return out
}

func unpackInterior(b *Board, msg []byte) error {
	n := b.Width - 2
	if len(msg) != n*(b.Height-2) {
		return fmt.Errorf("tile message of %d cells for a %dx%d tile", len(msg), n, b.Height-2)
	}
	for y := 1; y < b.Height-1; y++ {
		row := comm.Vector{Offset: y*b.Width + 1, Count: n, Stride: 1}
		if err := row.Unpack(b.Cells, msg[(y-1)*n:y*n]); err != nil {
			return err
		}
	}
	return nil
}
