package comm

import "sync"

// queueDepth bounds each (source, destination, tag) queue. The halo protocol
// keeps at most two generations of one channel queued at once.
const queueDepth = 16

// mailbox holds the FIFO queues of undelivered messages and the abort signal.
type mailbox struct {
	mu     sync.Mutex
	queues map[key]chan []byte

	once sync.Once
	done chan struct{}
	code int
}

func newMailbox() *mailbox {
	return &mailbox{
		queues: make(map[key]chan []byte),
		done:   make(chan struct{}),
	}
}

func (m *mailbox) queue(k key) chan []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	q, ok := m.queues[k]
	if !ok {
		q = make(chan []byte, queueDepth)
		m.queues[k] = q
	}
	return q
}

func (m *mailbox) deliver(k key, data []byte) error {
	select {
	case <-m.done:
		return m.err()
	default:
	}
	select {
	case m.queue(k) <- data:
		return nil
	case <-m.done:
		return m.err()
	}
}

// take hands out messages that were queued before an abort ahead of the abort.
func (m *mailbox) take(k key) ([]byte, error) {
	q := m.queue(k)
	select {
	case data := <-q:
		return data, nil
	default:
	}
	select {
	case data := <-q:
		return data, nil
	case <-m.done:
		return nil, m.err()
	}
}

func (m *mailbox) abort(code int) {
	m.once.Do(func() {
		m.code = code
		close(m.done)
	})
}

func (m *mailbox) aborted() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}

// err must only be called once done is closed.
func (m *mailbox) err() error {
	return &AbortError{Code: m.code}
}
