package core

import "sync"

// DefaultQueueSize is the outbound queue length used when none is configured.
const DefaultQueueSize = 64

// Subscriber receives room events from the Hub.
type Subscriber interface {
	// ID returns the participant identity bound to the subscriber.
	ID() string
	// Deliver enqueues an event without blocking. It reports false when the
	// event could not be queued.
	Deliver(ev *Event) bool
	// Evict detaches the subscriber; its connection is expected to close.
	Evict(reason error)
}

// Client is a connected participant as seen by the core layer.
// It owns a bounded outbound queue drained by the transport.
type Client struct {
	id     string
	events chan *Event
	done   chan struct{}

	once sync.Once
	mu   sync.Mutex
	err  error
}

// NewClient constructs a client with a bounded outbound queue.
func NewClient(id string, queueSize int) *Client {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Client{
		id:     id,
		events: make(chan *Event, queueSize),
		done:   make(chan struct{}),
	}
}

// ID returns the participant identity.
func (c *Client) ID() string {
	return c.id
}

// Deliver queues an event for the transport. It never blocks.
func (c *Client) Deliver(ev *Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.events <- ev:
		return true
	default:
		return false
	}
}

// Evict marks the client as finished. Only the first reason is kept.
func (c *Client) Evict(reason error) {
	c.once.Do(func() {
		c.mu.Lock()
		c.err = reason
		c.mu.Unlock()
		close(c.done)
	})
}

// Events returns the outbound queue.
func (c *Client) Events() <-chan *Event {
	return c.events
}

// Done is closed once the client has been evicted.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the eviction reason, or nil while the client is live.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
