package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultEventBuffer = 64

// Peer is a live signaling connection as seen by the relay. The transport
// drains Events and watches Done.
type Peer struct {
	ID          string
	RemoteAddr  string
	UserAgent   string
	ConnectedAt time.Time
	Events      chan Message

	done      chan struct{}
	closeOnce sync.Once
}

func NewPeer(remoteAddr string, userAgent string, buffer int) *Peer {
	if buffer <= 0 {
		buffer = defaultEventBuffer
	}
	return &Peer{
		ID:          uuid.New().String(),
		RemoteAddr:  remoteAddr,
		UserAgent:   userAgent,
		ConnectedAt: time.Now().UTC(),
		Events:      make(chan Message, buffer),
		done:        make(chan struct{}),
	}
}

// EnqueueEvent queues an event for delivery. It reports false when the queue
// is full or the peer is closed; the event is dropped in both cases.
func (p *Peer) EnqueueEvent(event Message) bool {
	select {
	case <-p.done:
		return false
	default:
	}

	select {
	case p.Events <- event:
		return true
	default:
		return false
	}
}

// Close marks the peer as gone. Safe to call more than once.
func (p *Peer) Close() {
	p.closeOnce.Do(func() {
		close(p.done)
	})
}

func (p *Peer) Done() <-chan struct{} {
	return p.done
}

func (p *Peer) IsClosed() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}
