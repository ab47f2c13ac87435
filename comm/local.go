package comm

// Local is an in-process communicator. All ranks created by one NewLocal call
// share a single mailbox, so each worker can run as a goroutine.
type Local struct {
	rank int
	size int
	box  *mailbox
}

// NewLocal creates the communicators of a run with size workers.
func NewLocal(size int) []*Local {
	box := newMailbox()
	comms := make([]*Local, size)
	for i := range comms {
		comms[i] = &Local{rank: i, size: size, box: box}
	}
	return comms
}

func (l *Local) Rank() int { return l.rank }

func (l *Local) Size() int { return l.size }

func (l *Local) Send(dest, tag int, data []byte) error {
	if err := checkRank(l, dest); err != nil {
		return err
	}
	msg := make([]byte, len(data))
	copy(msg, data)
	return l.box.deliver(key{src: l.rank, dst: dest, tag: tag}, msg)
}

func (l *Local) Recv(src, tag int) ([]byte, error) {
	if err := checkRank(l, src); err != nil {
		return nil, err
	}
	return l.box.take(key{src: src, dst: l.rank, tag: tag})
}

func (l *Local) Abort(code int) {
	l.box.abort(code)
}

func (l *Local) Close() error {
	return nil
}
