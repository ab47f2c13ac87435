package main

import (
	"errors"
	"flag"
	"log"
	"net"
	"net/rpc"
	"os"
	"sync"

	"uk.ac.bris.cs/halolife/stubs"
)

//channel used to kill broker
var Kchan = make(chan bool)

//one group of nodes that will run together
type round struct {
	peers []string
	full  chan struct{}
}

func newRound() *round {
	return &round{full: make(chan struct{})}
}

//Broker hands out ranks to worker nodes in arrival order
type Broker struct {
	Mu      sync.Mutex
	Workers int
	current *round
}

func NewBroker(workers int) *Broker {
	return &Broker{Workers: workers, current: newRound()}
}

//blocks until the round is full, then returns the caller's rank and every node's address
func (b *Broker) Register(req stubs.RegisterRequest, res *stubs.RegisterResponse) (err error) {
	if req.Addr == "" {
		return errors.New("register: empty address")
	}
	b.Mu.Lock()
	r := b.current
	rank := len(r.peers)
	r.peers = append(r.peers, req.Addr)
	log.Printf("[Broker] %s registered as rank %d of %d", req.Addr, rank, b.Workers)
	if len(r.peers) == b.Workers {
		close(r.full)
		b.current = newRound()
	}
	b.Mu.Unlock()

	<-r.full
	res.Rank = rank
	res.Peers = r.peers
	return
}

//exported function to kill the broker by passing value down Kchan channel
func (b *Broker) KillServer(req stubs.Ack, res *stubs.Ack) (err error) {
	Kchan <- true
	return
}

func main() {
	brokerAddr := flag.String("port", "8030", "Port to listen on")
	workers := flag.Int("workers", 4, "Number of worker nodes in each run")
	flag.Parse()
	if *workers < 1 {
		log.Fatalf("[Broker] need at least one worker, got %d", *workers)
	}

	if err := rpc.Register(NewBroker(*workers)); err != nil {
		log.Fatalf("[Broker] register: %v", err)
	}
	listener, err := net.Listen("tcp", ":"+*brokerAddr)
	if err != nil {
		log.Fatalf("[Broker] failed to listen on port %v: %v", *brokerAddr, err)
	}
	defer listener.Close()
	log.Printf("[Broker] listening on :%v for groups of %d workers", *brokerAddr, *workers)
	go rpc.Accept(listener)
	<-Kchan
	os.Exit(0)
}
