package gol

import (
	"errors"

	"uk.ac.bris.cs/halolife/comm"
)

var (
	ErrBadParameters = errors.New("bad parameters")
	ErrRead          = errors.New("read error")
	ErrWrite         = errors.New("write error")
	ErrTopology      = errors.New("invalid topology")
)

// Process exit statuses. They are bit flags so an aborted run can report
// which failure stopped it.
const (
	StatusSuccess     = 0
	StatusBadParams   = 1 << 0
	StatusReadError   = 1 << 1
	StatusWriteError  = 1 << 2
	StatusAborted     = 1 << 3
	StatusInternalErr = 1 << 4
)

// ExitStatus maps the error returned by Run to a process exit status.
func ExitStatus(err error) int {
	var aborted *comm.AbortError
	switch {
	case err == nil:
		return StatusSuccess
	case errors.Is(err, ErrBadParameters):
		return StatusBadParams
	case errors.Is(err, ErrRead):
		return StatusReadError
	case errors.Is(err, ErrWrite):
		return StatusWriteError
	case errors.As(err, &aborted) && aborted.Code != 0:
		return aborted.Code
	case errors.Is(err, comm.ErrAborted):
		return StatusAborted
	default:
		return StatusInternalErr
	}
}
