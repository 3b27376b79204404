package core

// Group holds every connection of one user. It is not safe for concurrent
// use on its own; the Registry guards it with a shard lock.
type Group struct {
	Name    string
	clients map[*Client]struct{}
}

// NewGroup constructs a group with no clients.
func NewGroup(name string) *Group {
	return &Group{
		Name:    name,
		clients: make(map[*Client]struct{}),
	}
}

// AddClient inserts a client into the group. Returns true if newly added.
func (g *Group) AddClient(c *Client) bool {
	if _, exists := g.clients[c]; exists {
		return false
	}
	g.clients[c] = struct{}{}
	return true
}

// RemoveClient deletes a client from the group. Returns true if removed.
func (g *Group) RemoveClient(c *Client) bool {
	if _, exists := g.clients[c]; !exists {
		return false
	}
	delete(g.clients, c)
	return true
}

// Has reports whether c is a member.
func (g *Group) Has(c *Client) bool {
	_, ok := g.clients[c]
	return ok
}

// Broadcast queues an event for every member and reports how many
// deliveries succeeded and how many were dropped.
func (g *Group) Broadcast(event *Event) (delivered, dropped int) {
	for client := range g.clients {
		if client.Send(event) {
			delivered++
		} else {
			dropped++
		}
	}
	return delivered, dropped
}

// Clients returns a snapshot of the members.
func (g *Group) Clients() []*Client {
	out := make([]*Client, 0, len(g.clients))
	for c := range g.clients {
		out = append(out, c)
	}
	return out
}

// Len returns the number of members.
func (g *Group) Len() int {
	return len(g.clients)
}

// Empty returns true if no clients are in the group.
func (g *Group) Empty() bool {
	return len(g.clients) == 0
}
