package sdl

import (
	"log"
	"time"

	"uk.ac.bris.cs/halolife/gol"
)

// Run consumes the events of a run, opens a window on the gathered board once
// FinalTurnComplete arrives and keeps it open until the user quits. It must be
// called from the main goroutine.
func Run(events <-chan gol.Event) {
	var w *Window
	defer func() {
		if w != nil {
			w.Destroy()
		}
	}()
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case event, ok := <-events:
			if !ok {
				events = nil
				if w == nil {
					return
				}
				continue
			}
			report(event)
			switch e := event.(type) {
			case gol.FinalTurnComplete:
				window, err := NewWindow(int32(e.Width), int32(e.Height))
				if err != nil {
					log.Printf("[View] %v", err)
					continue
				}
				w = window
				for _, cell := range e.Alive {
					w.SetCell(cell.X, cell.Y, true)
				}
				if err := w.RenderFrame(); err != nil {
					log.Printf("[View] %v", err)
				}
			}
		case <-ticker.C:
			if w != nil && w.PollQuit() {
				return
			}
		}
	}
}

// report logs an event the way the other event consumers do. Events with no
// description are skipped.
func report(event gol.Event) {
	if s := event.String(); s != "" {
		log.Printf("Completed Turns %-8v%v", event.GetCompletedTurns(), s)
	}
}
