package comm

import (
	"errors"
	"net"
	"sync"
	"testing"
	"time"
)

// statuses used by the abort tests
const (
	writeStatus = 4
	abortStatus = 8
)

func TestLocalFIFO(t *testing.T) {
	comms := NewLocal(2)
	for i := byte(0); i < 5; i++ {
		if err := comms[0].Send(1, TagHalo, []byte{i}); err != nil {
			t.Fatal(err)
		}
	}
	for i := byte(0); i < 5; i++ {
		msg, err := comms[1].Recv(0, TagHalo)
		if err != nil {
			t.Fatal(err)
		}
		if len(msg) != 1 || msg[0] != i {
			t.Errorf("message %d: got %v", i, msg)
		}
	}
}

func TestLocalTagsAreSeparate(t *testing.T) {
	comms := NewLocal(2)
	comms[0].Send(1, TagScatter, []byte{1})
	comms[0].Send(1, TagHeader, []byte{2})
	msg, err := comms[1].Recv(0, TagHeader)
	if err != nil || msg[0] != 2 {
		t.Errorf("header: got %v, %v", msg, err)
	}
	msg, err = comms[1].Recv(0, TagScatter)
	if err != nil || msg[0] != 1 {
		t.Errorf("scatter: got %v, %v", msg, err)
	}
}

func TestLocalSendCopies(t *testing.T) {
	comms := NewLocal(2)
	data := []byte{1, 2, 3}
	comms[0].Send(1, TagHalo, data)
	data[0] = 9
	msg, _ := comms[1].Recv(0, TagHalo)
	if msg[0] != 1 {
		t.Errorf("message changed after send: %v", msg)
	}
}

func TestLocalRankRange(t *testing.T) {
	comms := NewLocal(2)
	if err := comms[0].Send(2, TagHalo, nil); err == nil {
		t.Error("send to rank 2 of 2 succeeded")
	}
	if _, err := comms[0].Recv(-1, TagHalo); err == nil {
		t.Error("receive from rank -1 succeeded")
	}
}

func TestAbortUnblocksRecv(t *testing.T) {
	comms := NewLocal(3)
	errs := make(chan error, 2)
	for _, c := range comms[1:] {
		go func(c *Local) {
			_, err := c.Recv(0, TagHalo)
			errs <- err
		}(c)
	}
	comms[0].Abort(4)
	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			var ae *AbortError
			if !errors.As(err, &ae) || ae.Code != 4 {
				t.Errorf("got %v, want abort with status 4", err)
			}
			if !errors.Is(err, ErrAborted) {
				t.Errorf("%v is not ErrAborted", err)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("receive still blocked after abort")
		}
	}
	if err := comms[2].Send(0, TagHalo, nil); !errors.Is(err, ErrAborted) {
		t.Errorf("send after abort: got %v", err)
	}
}

func TestVectorPackUnpack(t *testing.T) {
	// 4x3 buffer, second column
	cells := []bool{
		false, true, false, false,
		false, false, false, false,
		true, true, false, true,
	}
	column := Vector{Offset: 1, Count: 3, Stride: 4}
	msg := column.Pack(cells)
	if want := []byte{1, 0, 1}; string(msg) != string(want) {
		t.Fatalf("pack: got %v, want %v", msg, want)
	}

	out := make([]bool, 12)
	if err := column.Unpack(out, msg); err != nil {
		t.Fatal(err)
	}
	for i, alive := range out {
		want := i == 1 || i == 9
		if alive != want {
			t.Errorf("cell %d: got %v, want %v", i, alive, want)
		}
	}
	if err := column.Unpack(out, []byte{1}); err == nil {
		t.Error("short message unpacked")
	}
}

func TestVectorMisfitPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("no panic for a vector past the buffer")
		}
	}()
	comms := NewLocal(1)
	SendInit(comms[0], make([]bool, 4), Vector{Offset: 2, Count: 2, Stride: 2}, 0, TagHalo)
}

func TestPersistentRequests(t *testing.T) {
	comms := NewLocal(2)
	src := []bool{true, false, true}
	dst := make([]bool, 5)
	row := Vector{Offset: 0, Count: 3, Stride: 1}
	send, err := SendInit(comms[0], src, row, 1, TagHalo)
	if err != nil {
		t.Fatal(err)
	}
	recv, err := RecvInit(comms[1], dst, Vector{Offset: 2, Count: 3, Stride: 1}, 0, TagHalo)
	if err != nil {
		t.Fatal(err)
	}

	for round := 0; round < 3; round++ {
		recv.Start()
		send.Start()
		// the send snapshotted its cells, so this belongs to the next round
		src[1] = round%2 == 0
		if err := WaitAll([]*Request{recv, send}); err != nil {
			t.Fatal(err)
		}
		if dst[2] != true || dst[4] != true || dst[3] != (round%2 == 1) {
			t.Errorf("round %d: got %v", round, dst)
		}
		if dst[0] || dst[1] {
			t.Errorf("round %d: cells outside the vector written: %v", round, dst)
		}
	}
}

func TestDoubleStartPanics(t *testing.T) {
	comms := NewLocal(2)
	recv, _ := RecvInit(comms[1], make([]bool, 1), Vector{Count: 1, Stride: 1}, 0, TagHalo)
	recv.Start()
	defer func() {
		if r := recover(); r == nil {
			t.Error("second Start did not panic")
		}
		comms[1].Abort(1)
	}()
	recv.Start()
}

func TestWaitWithoutStart(t *testing.T) {
	comms := NewLocal(1)
	recv, _ := RecvInit(comms[0], make([]bool, 1), Vector{Count: 1, Stride: 1}, 0, TagHalo)
	if err := recv.Wait(); err != nil {
		t.Errorf("got %v", err)
	}
}

func listenLocal(t *testing.T) net.Listener {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func newRPCRun(t *testing.T, size int) []*RPC {
	t.Helper()
	listeners := make([]net.Listener, size)
	addrs := make([]string, size)
	for i := range listeners {
		listeners[i] = listenLocal(t)
		addrs[i] = listeners[i].Addr().String()
	}
	comms := make([]*RPC, size)
	for i := range comms {
		c, err := ServeRPC(i, addrs, listeners[i])
		if err != nil {
			t.Fatal(err)
		}
		comms[i] = c
	}
	return comms
}

func TestRPCSendRecv(t *testing.T) {
	comms := newRPCRun(t, 2)
	if comms[1].Rank() != 1 || comms[1].Size() != 2 {
		t.Fatalf("rank %d size %d", comms[1].Rank(), comms[1].Size())
	}
	for i := byte(0); i < 4; i++ {
		if err := comms[0].Send(1, TagHalo, []byte{i, i}); err != nil {
			t.Fatal(err)
		}
	}
	if err := comms[1].Send(1, TagGather, []byte{7}); err != nil {
		t.Fatal(err)
	}
	for i := byte(0); i < 4; i++ {
		msg, err := comms[1].Recv(0, TagHalo)
		if err != nil {
			t.Fatal(err)
		}
		if len(msg) != 2 || msg[0] != i {
			t.Errorf("message %d: got %v", i, msg)
		}
	}
	msg, err := comms[1].Recv(1, TagGather)
	if err != nil || len(msg) != 1 || msg[0] != 7 {
		t.Errorf("self message: got %v, %v", msg, err)
	}

	var wg sync.WaitGroup
	for _, c := range comms {
		wg.Add(1)
		go func(c *RPC) {
			defer wg.Done()
			c.Close()
		}(c)
	}
	wg.Wait()
}

func TestRPCAbortReachesPeers(t *testing.T) {
	comms := newRPCRun(t, 3)
	defer func() {
		for _, c := range comms {
			c.Close()
		}
	}()
	errs := make(chan error, 2)
	for _, c := range comms[1:] {
		go func(c *RPC) {
			_, err := c.Recv(0, TagHalo)
			errs <- err
		}(c)
	}
	comms[0].Abort(2)
	for i := 0; i < 2; i++ {
		select {
		case err := <-errs:
			var ae *AbortError
			if !errors.As(err, &ae) || ae.Code != 2 {
				t.Errorf("got %v, want abort with status 2", err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("peer still blocked after abort")
		}
	}
}

func TestRPCAbortedRankKeepsItsStatus(t *testing.T) {
	comms := newRPCRun(t, 3)
	defer func() {
		for _, c := range comms {
			c.Close()
		}
	}()
	comms[0].Abort(writeStatus)
	if !comms[1].box.aborted() || !comms[2].box.aborted() {
		t.Fatal("abort did not reach every peer")
	}
	// a rank stopped by that abort fails too, and must not spread its own status
	comms[1].Abort(abortStatus)
	for r, c := range comms {
		_, err := c.Recv(0, TagHalo)
		var ae *AbortError
		if !errors.As(err, &ae) || ae.Code != writeStatus {
			t.Errorf("rank %d: got %v, want abort with status %d", r, err, writeStatus)
		}
	}
}

func TestRPCSecondAbortNotSent(t *testing.T) {
	comms := newRPCRun(t, 2)
	defer func() {
		for _, c := range comms {
			c.Close()
		}
	}()
	comms[0].box.abort(writeStatus)
	comms[0].Abort(abortStatus)
	if comms[1].box.aborted() {
		t.Error("an already aborted rank told its peers to stop")
	}
	comms[1].Abort(1)
}

func TestRPCSendToAbortedRankIsDropped(t *testing.T) {
	comms := newRPCRun(t, 2)
	defer func() {
		for _, c := range comms {
			c.Close()
		}
	}()
	comms[1].box.abort(writeStatus)
	if err := comms[0].Send(1, TagGather, []byte{1}); err != nil {
		t.Errorf("send to an aborted rank: got %v", err)
	}
	comms[0].Abort(writeStatus)
}
