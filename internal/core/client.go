package core

import "sync"

// DefaultSendBuffer is the outbound queue size used when none is configured.
const DefaultSendBuffer = 32

// Client is one open real-time connection as seen by the core layer.
type Client struct {
	ID       string
	Identity Identity
	Events   chan *Event

	mu    sync.Mutex
	group string

	done      chan struct{}
	closeOnce sync.Once
}

// NewClient constructs a client with an initialized outbound queue.
func NewClient(id string, identity Identity, buffer int) *Client {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Client{
		ID:       id,
		Identity: identity,
		Events:   make(chan *Event, buffer),
		done:     make(chan struct{}),
	}
}

// Group returns the group the client is bound to, or "" if unbound.
func (c *Client) Group() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.group
}

// bind records group membership. It reports false when the client is
// already bound to a different group.
func (c *Client) bind(group string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.group == "" {
		c.group = group
		return true
	}
	return c.group == group
}

// unbind clears and returns the bound group.
func (c *Client) unbind() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	group := c.group
	c.group = ""
	return group
}

// Send queues an event without blocking. It returns false if the client is
// closed or its queue is full.
func (c *Client) Send(event *Event) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.Events <- event:
		return true
	default:
		// Drop if slow consumer.
		return false
	}
}

// Close marks the client as gone. Safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Done is closed once the client has been closed.
func (c *Client) Done() <-chan struct{} {
	return c.done
}
