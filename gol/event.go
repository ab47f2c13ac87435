package gol

import (
	"fmt"

	"uk.ac.bris.cs/halolife/util"
)

// Event represents any Game of Life event that rank 0 reports while running.
type Event interface {
	fmt.Stringer

	// GetCompletedTurns should return the number of fully completed turns.
	GetCompletedTurns() int
}

// State represents a change in the state of execution.
type State int

const (
	Executing State = iota
	Quitting
)

func (s State) String() string {
	switch s {
	case Executing:
		return "Executing"
	case Quitting:
		return "Quitting"
	default:
		return "Incorrect State"
	}
}

// StateChange is sent when the run starts executing and when it finishes.
type StateChange struct {
	CompletedTurns int
	NewState       State
}

// TurnComplete is sent after the local tile has committed a generation.
type TurnComplete struct {
	CompletedTurns int
}

// FinalTurnComplete is sent once the tiles have been gathered. Alive lists the
// live cells of the whole Width x Height board.
type FinalTurnComplete struct {
	CompletedTurns int
	Width, Height  int
	Alive          []util.Cell
}

// BoardOutputComplete is sent once the gathered board has been written.
type BoardOutputComplete struct {
	CompletedTurns int
	Filename       string
}

func (event StateChange) String() string {
	return fmt.Sprintf("%v", event.NewState)
}

func (event StateChange) GetCompletedTurns() int {
	return event.CompletedTurns
}

func (event TurnComplete) String() string {
	return ""
}

func (event TurnComplete) GetCompletedTurns() int {
	return event.CompletedTurns
}

func (event FinalTurnComplete) String() string {
	return fmt.Sprintf("Final turn complete, %d alive cells", len(event.Alive))
}

func (event FinalTurnComplete) GetCompletedTurns() int {
	return event.CompletedTurns
}

func (event BoardOutputComplete) String() string {
	return fmt.Sprintf("File %v output complete", event.Filename)
}

func (event BoardOutputComplete) GetCompletedTurns() int {
	return event.CompletedTurns
}
