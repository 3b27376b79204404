package core

import (
	"hash/maphash"
	"sync"
	"sync/atomic"
)

// registryShardCount must be a power of two.
const registryShardCount = 32

// Observer receives registry activity, typically to export metrics.
type Observer interface {
	ConnectionOpened(channel string)
	ConnectionClosed(channel string)
	GroupCreated(channel string)
	GroupDeleted(channel string)
	EventDelivered(channel, event string, n int)
	EventDropped(channel, event string, n int)
}

type nopObserver struct{}

func (nopObserver) ConnectionOpened(string)            {}
func (nopObserver) ConnectionClosed(string)            {}
func (nopObserver) GroupCreated(string)                {}
func (nopObserver) GroupDeleted(string)                {}
func (nopObserver) EventDelivered(string, string, int) {}
func (nopObserver) EventDropped(string, string, int)   {}

type registryShard struct {
	mu     sync.RWMutex
	groups map[string]*Group
}

// Registry maps connections to per-user groups for one channel.
//
// Groups are spread over shards selected with maphash, each with its own
// RWMutex, so joins and fan-outs for different users rarely contend.
// A group exists exactly while it has at least one member.
type Registry struct {
	channel     string
	seed        maphash.Seed
	shards      [registryShardCount]*registryShard
	connections atomic.Int64
	groups      atomic.Int64
	observer    Observer
}

// NewRegistry creates an empty registry for the named channel.
// observer may be nil.
func NewRegistry(channel string, observer Observer) *Registry {
	if observer == nil {
		observer = nopObserver{}
	}
	r := &Registry{
		channel:  channel,
		seed:     maphash.MakeSeed(),
		observer: observer,
	}
	for i := range registryShardCount {
		r.shards[i] = &registryShard{groups: make(map[string]*Group)}
	}
	return r
}

// Channel returns the name of the channel the registry serves.
func (r *Registry) Channel() string {
	return r.channel
}

func (r *Registry) shard(group string) *registryShard {
	h := maphash.String(r.seed, group)
	return r.shards[h&(registryShardCount-1)]
}

// Join adds the client to its user's group and returns the group name.
// Joining twice is a no-op.
func (r *Registry) Join(c *Client) (string, error) {
	if err := c.Identity.Validate(); err != nil {
		return "", err
	}

	name := GroupName(c.Identity.UserID)
	if !c.bind(name) {
		return "", ErrAlreadyBound
	}

	sh := r.shard(name)
	sh.mu.Lock()
	g, ok := sh.groups[name]
	if !ok {
		g = NewGroup(name)
		sh.groups[name] = g
	}
	added := g.AddClient(c)
	sh.mu.Unlock()

	if !ok {
		r.groups.Add(1)
		r.observer.GroupCreated(r.channel)
	}
	if added {
		r.connections.Add(1)
		r.observer.ConnectionOpened(r.channel)
	}
	return name, nil
}

// Leave removes the client from its group, deleting the group when it
// becomes empty. It reports whether the client was a member.
func (r *Registry) Leave(c *Client) bool {
	name := c.unbind()
	if name == "" {
		return false
	}

	sh := r.shard(name)
	sh.mu.Lock()
	g, ok := sh.groups[name]
	removed := ok && g.RemoveClient(c)
	emptied := ok && g.Empty()
	if emptied {
		delete(sh.groups, name)
	}
	sh.mu.Unlock()

	if emptied {
		r.groups.Add(-1)
		r.observer.GroupDeleted(r.channel)
	}
	if removed {
		r.connections.Add(-1)
		r.observer.ConnectionClosed(r.channel)
	}
	return removed
}

// SendToGroup queues the event for every member of the named group and
// returns the number of successful deliveries.
func (r *Registry) SendToGroup(name string, event *Event) int {
	sh := r.shard(name)
	sh.mu.RLock()
	g, ok := sh.groups[name]
	if !ok {
		sh.mu.RUnlock()
		return 0
	}
	delivered, dropped := g.Broadcast(event)
	sh.mu.RUnlock()

	r.record(event, delivered, dropped)
	return delivered
}

// SendToUser queues the event for every connection of a user.
func (r *Registry) SendToUser(userID int64, event *Event) int {
	return r.SendToGroup(GroupName(userID), event)
}

// Broadcast queues the event for every connection in the registry.
func (r *Registry) Broadcast(event *Event) int {
	var delivered, dropped int
	for _, sh := range r.shards {
		sh.mu.RLock()
		for _, g := range sh.groups {
			d, x := g.Broadcast(event)
			delivered += d
			dropped += x
		}
		sh.mu.RUnlock()
	}

	r.record(event, delivered, dropped)
	return delivered
}

func (r *Registry) record(event *Event, delivered, dropped int) {
	if delivered > 0 {
		r.observer.EventDelivered(r.channel, event.Kind.String(), delivered)
	}
	if dropped > 0 {
		r.observer.EventDropped(r.channel, event.Kind.String(), dropped)
	}
}

// Members returns a snapshot of the named group's clients.
func (r *Registry) Members(name string) []*Client {
	sh := r.shard(name)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if g, ok := sh.groups[name]; ok {
		return g.Clients()
	}
	return nil
}

// IsMember reports whether c belongs to the named group.
func (r *Registry) IsMember(name string, c *Client) bool {
	sh := r.shard(name)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	g, ok := sh.groups[name]
	return ok && g.Has(c)
}

// GroupSize returns the number of connections in the named group.
func (r *Registry) GroupSize(name string) int {
	sh := r.shard(name)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	if g, ok := sh.groups[name]; ok {
		return g.Len()
	}
	return 0
}

// Groups returns the number of non-empty groups.
func (r *Registry) Groups() int {
	return int(r.groups.Load())
}

// Connections returns the number of registered connections.
func (r *Registry) Connections() int {
	return int(r.connections.Load())
}
