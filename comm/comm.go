// Package comm is the point-to-point communication substrate shared by the
// workers of a run. A Communicator delivers byte messages between ranks with
// FIFO ordering per (source, tag) pair, and persistent requests built on top of
// it let a worker bind a transfer to fixed cells once and restart it every
// generation.
package comm

import (
	"errors"
	"fmt"
)

// Tags separate the independent message streams of a run.
const (
	TagHeader = iota + 1
	TagScatter
	TagHalo
	TagGather
)

// ErrAborted is returned by every blocked operation once any rank aborts the run.
var ErrAborted = errors.New("comm: run aborted")

// Communicator is the explicit communication context of one worker.
type Communicator interface {
	// Rank is this worker's index in [0, Size()).
	Rank() int
	// Size is the number of workers in the run.
	Size() int
	// Send delivers data to dest. It returns once the message is queued at dest.
	Send(dest, tag int, data []byte) error
	// Recv blocks until the next message from src with the given tag arrives.
	Recv(src, tag int) ([]byte, error)
	// Abort makes every rank's pending and future operations fail with ErrAborted.
	Abort(code int)
	// Close releases the communicator. It does not abort the other ranks.
	Close() error
}

// AbortError carries the status code passed to Abort.
type AbortError struct {
	Code int
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("comm: run aborted with status %d", e.Code)
}

func (e *AbortError) Is(target error) bool {
	return target == ErrAborted
}

type key struct {
	src, dst, tag int
}

func checkRank(c Communicator, rank int) error {
	if rank < 0 || rank >= c.Size() {
		return fmt.Errorf("comm: rank %d out of range [0,%d)", rank, c.Size())
	}
	return nil
}
