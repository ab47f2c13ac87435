package comm

import (
	"fmt"
	"log"
	"net"
	"net/rpc"
	"sync"
	"time"

	"uk.ac.bris.cs/halolife/stubs"
)

// DialTimeout bounds how long a rank waits for a peer's mailbox to come up.
var DialTimeout = 30 * time.Second

const dialRetry = 100 * time.Millisecond

// tagFinalize is reserved for the closing handshake.
const tagFinalize = -1

// Mailbox is the RPC service every node registers. Peers call Deliver to queue
// a message for this rank and Abort to stop the run.
type Mailbox struct {
	rank int
	box  *mailbox
}

func (m *Mailbox) Deliver(req stubs.Message, res *stubs.Ack) (err error) {
	if req.Dest != m.rank {
		return fmt.Errorf("message for rank %d delivered to rank %d", req.Dest, m.rank)
	}
	// an aborted rank drops late messages; the sender hears of the abort itself
	m.box.deliver(key{src: req.Source, dst: req.Dest, tag: req.Tag}, req.Data)
	return
}

func (m *Mailbox) Abort(req stubs.AbortRequest, res *stubs.Ack) (err error) {
	m.box.abort(req.Code)
	return
}

type peer struct {
	mu     sync.Mutex
	addr   string
	client *rpc.Client
}

// RPC is a communicator for one rank per process, carried over net/rpc.
type RPC struct {
	rank     int
	peers    []*peer
	box      *mailbox
	listener net.Listener
}

// NewRPC listens on peers[rank] and serves this rank's mailbox.
func NewRPC(rank int, peers []string) (*RPC, error) {
	if rank < 0 || rank >= len(peers) {
		return nil, fmt.Errorf("comm: rank %d out of range [0,%d)", rank, len(peers))
	}
	listener, err := net.Listen("tcp", peers[rank])
	if err != nil {
		return nil, fmt.Errorf("comm: listen on %s: %w", peers[rank], err)
	}
	return ServeRPC(rank, peers, listener)
}

// ServeRPC serves this rank's mailbox on an existing listener. peers lists the
// dial address of every rank, in rank order.
func ServeRPC(rank int, peers []string, listener net.Listener) (*RPC, error) {
	if rank < 0 || rank >= len(peers) {
		return nil, fmt.Errorf("comm: rank %d out of range [0,%d)", rank, len(peers))
	}
	r := &RPC{
		rank:     rank,
		peers:    make([]*peer, len(peers)),
		box:      newMailbox(),
		listener: listener,
	}
	for i, addr := range peers {
		r.peers[i] = &peer{addr: addr}
	}
	server := rpc.NewServer()
	if err := server.Register(&Mailbox{rank: rank, box: r.box}); err != nil {
		return nil, err
	}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go server.ServeConn(conn)
		}
	}()
	return r, nil
}

func (r *RPC) Rank() int { return r.rank }

func (r *RPC) Size() int { return len(r.peers) }

// Addr is the address the mailbox is listening on.
func (r *RPC) Addr() net.Addr { return r.listener.Addr() }

func (r *RPC) dial(dest int) (*rpc.Client, error) {
	p := r.peers[dest]
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.client != nil {
		return p.client, nil
	}
	deadline := time.Now().Add(DialTimeout)
	for {
		client, err := rpc.Dial("tcp", p.addr)
		if err == nil {
			p.client = client
			return client, nil
		}
		if r.box.aborted() {
			return nil, r.box.err()
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("comm: dial rank %d at %s: %w", dest, p.addr, err)
		}
		time.Sleep(dialRetry)
	}
}

func (r *RPC) Send(dest, tag int, data []byte) error {
	if err := checkRank(r, dest); err != nil {
		return err
	}
	if r.box.aborted() {
		return r.box.err()
	}
	k := key{src: r.rank, dst: dest, tag: tag}
	if dest == r.rank {
		msg := make([]byte, len(data))
		copy(msg, data)
		return r.box.deliver(k, msg)
	}
	client, err := r.dial(dest)
	if err != nil {
		return err
	}
	req := stubs.Message{Source: r.rank, Dest: dest, Tag: tag, Data: data}
	if err := client.Call(stubs.DeliverHandler, req, new(stubs.Ack)); err != nil {
		if r.box.aborted() {
			return r.box.err()
		}
		return fmt.Errorf("comm: send to rank %d: %w", dest, err)
	}
	return nil
}

func (r *RPC) Recv(src, tag int) ([]byte, error) {
	if err := checkRank(r, src); err != nil {
		return nil, err
	}
	return r.box.take(key{src: src, dst: r.rank, tag: tag})
}

// Abort stops this rank and tells every reachable peer to stop too. A rank
// that is already aborted keeps the status it was given and tells no one.
func (r *RPC) Abort(code int) {
	if r.box.aborted() {
		return
	}
	r.box.abort(code)
	var wg sync.WaitGroup
	for i, p := range r.peers {
		if i == r.rank {
			continue
		}
		wg.Add(1)
		go func(i int, p *peer) {
			defer wg.Done()
			client, err := rpc.Dial("tcp", p.addr)
			if err != nil {
				log.Printf("[Rank %d] abort: cannot reach rank %d: %v", r.rank, i, err)
				return
			}
			defer client.Close()
			if err := client.Call(stubs.AbortHandler, stubs.AbortRequest{Code: code}, new(stubs.Ack)); err != nil {
				log.Printf("[Rank %d] abort: rank %d: %v", r.rank, i, err)
			}
		}(i, p)
	}
	wg.Wait()
}

// Close waits until every rank has reached Close, so that no peer is still
// waiting on a reply from this one, then releases the listener and the peer
// connections. An aborted rank skips the wait.
func (r *RPC) Close() error {
	if !r.box.aborted() {
		r.finalize()
	}
	err := r.listener.Close()
	for _, p := range r.peers {
		p.mu.Lock()
		if p.client != nil {
			p.client.Close()
			p.client = nil
		}
		p.mu.Unlock()
	}
	return err
}

func (r *RPC) finalize() {
	var wg sync.WaitGroup
	for i := range r.peers {
		if i == r.rank {
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// a peer that already has every notice may exit before it acknowledges ours
			r.Send(i, tagFinalize, nil)
		}(i)
	}
	wg.Wait()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := range r.peers {
			if i == r.rank {
				continue
			}
			if _, err := r.Recv(i, tagFinalize); err != nil {
				return
			}
		}
	}()
	select {
	case <-done:
	case <-time.After(DialTimeout):
		log.Printf("[Rank %d] close: timed out waiting for peers", r.rank)
	}
}
