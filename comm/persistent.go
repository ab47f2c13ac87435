package comm

import "fmt"

// Vector describes Count cells starting at Offset, Stride cells apart, inside a
// row-major cell buffer. A row has Stride 1; a column has Stride equal to the
// row width.
type Vector struct {
	Offset int
	Count  int
	Stride int
}

func (v Vector) index(i int) int {
	return v.Offset + i*v.Stride
}

func (v Vector) check(cells []bool) {
	if v.Count == 0 {
		return
	}
	if v.Count < 0 || v.Stride < 1 || v.Offset < 0 || v.index(v.Count-1) >= len(cells) {
		panic(fmt.Sprintf("comm: vector %+v does not fit a buffer of %d cells", v, len(cells)))
	}
}

// Pack copies the described cells into a contiguous message, one byte per cell.
func (v Vector) Pack(cells []bool) []byte {
	out := make([]byte, v.Count)
	for i := range out {
		if cells[v.index(i)] {
			out[i] = 1
		}
	}
	return out
}

// Unpack writes a message produced by Pack back into the described cells.
func (v Vector) Unpack(cells []bool, data []byte) error {
	if len(data) != v.Count {
		return fmt.Errorf("comm: received %d cells, expected %d", len(data), v.Count)
	}
	for i, b := range data {
		cells[v.index(i)] = b != 0
	}
	return nil
}

// Request is a persistent, restartable transfer bound to fixed cells.
type Request struct {
	comm  Communicator
	cells []bool
	vec   Vector
	peer  int
	tag   int
	send  bool

	pending chan result
}

type result struct {
	data []byte
	err  error
}

// SendInit binds a send of the cells described by v to dest. Nothing is sent
// until Start.
func SendInit(c Communicator, cells []bool, v Vector, dest, tag int) (*Request, error) {
	if err := checkRank(c, dest); err != nil {
		return nil, err
	}
	v.check(cells)
	return &Request{comm: c, cells: cells, vec: v, peer: dest, tag: tag, send: true}, nil
}

// RecvInit binds a receive from src into the cells described by v.
func RecvInit(c Communicator, cells []bool, v Vector, src, tag int) (*Request, error) {
	if err := checkRank(c, src); err != nil {
		return nil, err
	}
	v.check(cells)
	return &Request{comm: c, cells: cells, vec: v, peer: src, tag: tag}, nil
}

// Start begins one transfer and returns immediately. A send snapshots the
// bound cells before returning, so the caller may overwrite them afterwards.
// Starting a request that has not been waited for is a programming error.
func (r *Request) Start() {
	if r.pending != nil {
		panic("comm: request started twice without Wait")
	}
	r.pending = make(chan result, 1)
	if r.send {
		data := r.vec.Pack(r.cells)
		go func(done chan<- result) {
			done <- result{err: r.comm.Send(r.peer, r.tag, data)}
		}(r.pending)
		return
	}
	go func(done chan<- result) {
		data, err := r.comm.Recv(r.peer, r.tag)
		done <- result{data: data, err: err}
	}(r.pending)
}

// Wait blocks until the started transfer completes. A receive writes the
// message into the bound cells here, on the caller's goroutine.
func (r *Request) Wait() error {
	if r.pending == nil {
		return nil
	}
	res := <-r.pending
	r.pending = nil
	if res.err != nil {
		return res.err
	}
	if r.send {
		return nil
	}
	return r.vec.Unpack(r.cells, res.data)
}

// StartAll starts every request in order.
func StartAll(reqs []*Request) {
	for _, r := range reqs {
		r.Start()
	}
}

// WaitAll waits for every request and returns the first error. It always
// waits for all of them so none is left in flight.
func WaitAll(reqs []*Request) error {
	var first error
	for _, r := range reqs {
		if err := r.Wait(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
