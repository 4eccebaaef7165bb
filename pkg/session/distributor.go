package session

import (
	"context"
	"sync"
)

// Snapshot is the read-mostly view of session state published to
// subscribers after every state change.
type Snapshot struct {
	Session *Session
	Status  Status
}

// Subscriber receives state snapshots from the controller. Slow consumers
// never block the controller: when a subscriber's buffer is full the oldest
// pending snapshot is dropped in favor of the newest, so the last delivered
// value always converges on the current state.
type Subscriber struct {
	ch     chan Snapshot
	mu     sync.Mutex
	closed bool
}

// Updates returns the channel delivering state snapshots. The channel is
// closed when the subscriber is closed.
func (s *Subscriber) Updates() <-chan Snapshot {
	return s.ch
}

// Close unsubscribes and closes the updates channel. Idempotent.
func (s *Subscriber) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		close(s.ch)
		s.closed = true
	}
}

func (s *Subscriber) send(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	for {
		select {
		case s.ch <- snap:
			return
		default:
			// Drop the oldest pending snapshot to make room
			select {
			case <-s.ch:
			default:
			}
		}
	}
}

const subscriberBuffer = 8

// Subscribe registers a subscriber for session state changes. The current
// snapshot is delivered immediately so late subscribers never observe a
// stale default. The subscription is cleaned up when ctx is cancelled or
// Close is called.
func (c *Controller) Subscribe(ctx context.Context) *Subscriber {
	sub := &Subscriber{ch: make(chan Snapshot, subscriberBuffer)}

	c.subMu.Lock()
	c.subs[sub] = struct{}{}
	c.subMu.Unlock()

	sub.send(c.snapshot())

	if ctx != nil && ctx.Done() != nil {
		go func() {
			<-ctx.Done()
			c.unsubscribe(sub)
		}()
	}

	return sub
}

func (c *Controller) unsubscribe(sub *Subscriber) {
	c.subMu.Lock()
	delete(c.subs, sub)
	c.subMu.Unlock()
	sub.Close()
}

func (c *Controller) snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{Status: c.status}
	if c.session != nil {
		sess := *c.session
		snap.Session = &sess
	}
	return snap
}

func (c *Controller) publish() {
	snap := c.snapshot()

	c.subMu.Lock()
	subs := make([]*Subscriber, 0, len(c.subs))
	for sub := range c.subs {
		subs = append(subs, sub)
	}
	c.subMu.Unlock()

	for _, sub := range subs {
		sub.send(snap)
	}
}
