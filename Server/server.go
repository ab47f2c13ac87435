package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"net/rpc"
	"os"
	"strings"

	"uk.ac.bris.cs/halolife/comm"
	"uk.ac.bris.cs/halolife/gol"
	"uk.ac.bris.cs/halolife/stubs"
)

func getenvDefault(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

//asks the broker for a rank, then serves the mailbox on the listener already registered
func joinBroker(brokerAddr, listen, advertise string) (*comm.RPC, error) {
	listener, err := net.Listen("tcp", listen)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", listen, err)
	}
	if advertise == "" {
		advertise = listener.Addr().String()
	}
	client, err := rpc.Dial("tcp", brokerAddr)
	if err != nil {
		listener.Close()
		return nil, fmt.Errorf("dial broker %s: %w", brokerAddr, err)
	}
	defer client.Close()
	res := new(stubs.RegisterResponse)
	if err := client.Call(stubs.RegisterHandler, stubs.RegisterRequest{Addr: advertise}, res); err != nil {
		listener.Close()
		return nil, fmt.Errorf("register with broker: %w", err)
	}
	return comm.ServeRPC(res.Rank, res.Peers, listener)
}

func killBroker(brokerAddr string) {
	client, err := rpc.Dial("tcp", brokerAddr)
	if err != nil {
		log.Printf("[Server] dial broker %s: %v", brokerAddr, err)
		return
	}
	defer client.Close()
	//the broker exits while answering, so a closed connection is expected here
	client.Call(stubs.KillServerHandler, stubs.Ack{}, new(stubs.Ack))
}

//uses the static rank and peer list given on the command line
func joinPeers(rank int, peers string) (*comm.RPC, error) {
	addrs := strings.Split(peers, ",")
	for i := range addrs {
		addrs[i] = strings.TrimSpace(addrs[i])
	}
	return comm.NewRPC(rank, addrs)
}

func main() {
	rank := flag.Int("rank", -1, "This node's rank when -peers is used")
	peers := flag.String("peers", os.Getenv("GOL_PEERS"), "Comma separated ip:port of every rank, in rank order")
	brokerAddr := flag.String("broker", os.Getenv("BROKER_ADDR"), "ip:port of the rendezvous broker")
	listen := flag.String("listen", ":"+getenvDefault("PORT", "8050"), "Address to listen on when joining through the broker")
	advertise := flag.String("advertise", "", "ip:port peers should dial, defaults to the listen address")
	kill := flag.Bool("kill", false, "Rank 0 shuts the broker down once the run is over")
	flag.Parse()

	if flag.NArg() < 2 || (*peers == "" && *brokerAddr == "") || (*peers != "" && *rank < 0) {
		fmt.Fprintf(os.Stderr, "usage: %s (-rank n -peers a,b,... | -broker addr) input output\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(gol.StatusBadParams)
	}

	var (
		c   *comm.RPC
		err error
	)
	if *peers != "" {
		c, err = joinPeers(*rank, *peers)
	} else {
		c, err = joinBroker(*brokerAddr, *listen, *advertise)
	}
	if err != nil {
		log.Printf("[Server] %v", err)
		os.Exit(gol.StatusBadParams)
	}
	log.Printf("[Server] rank %d of %d listening on %v", c.Rank(), c.Size(), c.Addr())

	var events chan gol.Event
	done := make(chan struct{})
	if c.Rank() == 0 {
		events = make(chan gol.Event, 1000)
		go func() {
			defer close(done)
			for event := range events {
				if s := event.String(); s != "" {
					log.Printf("Completed Turns %-8v%v", event.GetCompletedTurns(), s)
				}
			}
		}()
	} else {
		close(done)
	}

	p := gol.Params{InputPath: flag.Arg(0), OutputPath: flag.Arg(1)}
	err = gol.Run(p, c, events)
	<-done
	if err != nil {
		log.Printf("[Server] rank %d: %v", c.Rank(), err)
	}
	c.Close()
	if *kill && *brokerAddr != "" && c.Rank() == 0 {
		killBroker(*brokerAddr)
	}
	os.Exit(gol.ExitStatus(err))
}
