package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"sync"

	"uk.ac.bris.cs/halolife/comm"
	"uk.ac.bris.cs/halolife/gol"
	"uk.ac.bris.cs/halolife/sdl"
)

func init() {
	// SDL has to run on the main OS thread.
	runtime.LockOSThread()
}

// runLocal runs every worker of the run as a goroutine and returns the error
// that stopped the run, preferring the root cause over the aborts it caused.
func runLocal(p gol.Params, workers int, events chan<- gol.Event) error {
	comms := comm.NewLocal(workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i, c := range comms {
		wg.Add(1)
		go func(i int, c *comm.Local) {
			defer wg.Done()
			var ev chan<- gol.Event
			if i == 0 {
				ev = events
			}
			errs[i] = gol.Run(p, c, ev)
		}(i, c)
	}
	wg.Wait()
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if !errors.Is(err, comm.ErrAborted) {
			return err
		}
		if first == nil {
			first = err
		}
	}
	return first
}

func main() {
	workers := flag.Int("np", 4, "Number of workers to split the board over.")
	view := flag.Bool("view", false, "Show the final board in an SDL window.")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] input output\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 2 || *workers < 1 {
		flag.Usage()
		os.Exit(gol.StatusBadParams)
	}
	p := gol.Params{InputPath: flag.Arg(0), OutputPath: flag.Arg(1)}

	events := make(chan gol.Event, 1000)
	done := make(chan error, 1)
	go func() {
		done <- runLocal(p, *workers, events)
	}()

	if *view {
		sdl.Run(events)
		for range events {
		}
	} else {
		for event := range events {
			if s := event.String(); s != "" {
				log.Printf("Completed Turns %-8v%v", event.GetCompletedTurns(), s)
			}
		}
	}

	err := <-done
	if err != nil {
		log.Printf("[Main] %v", err)
	}
	os.Exit(gol.ExitStatus(err))
}
