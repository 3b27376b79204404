package core

import (
	"context"

	"github.com/rs/zerolog"
)

// Channel names, also used as metric labels.
const (
	ChannelChat          = "chat"
	ChannelNotifications = "notifications"
)

// Channel is a real-time endpoint: it binds connections to their user group
// and executes the commands they invoke.
type Channel interface {
	Name() string
	Registry() *Registry

	// Connect binds the client to its user group. It fails when the client
	// has no usable identity.
	Connect(ctx context.Context, c *Client) error

	// Disconnect removes the client from its group. It must be called on
	// every disconnect path; cause is the error that ended the connection,
	// if any.
	Disconnect(ctx context.Context, c *Client, cause error)

	// Handle executes one command on behalf of the client.
	Handle(ctx context.Context, c *Client, cmd *Command) error
}

// membership implements the connect/disconnect half of a Channel.
type membership struct {
	name     string
	registry *Registry
	log      *zerolog.Logger
}

func (m *membership) Name() string {
	return m.name
}

func (m *membership) Registry() *Registry {
	return m.registry
}

func (m *membership) Connect(_ context.Context, c *Client) error {
	group, err := m.registry.Join(c)
	if err != nil {
		m.log.Warn().Err(err).Str("channel", m.name).Str("client_id", c.ID).Msg("reject connection")
		return err
	}
	m.log.Debug().
		Str("channel", m.name).
		Str("client_id", c.ID).
		Int64("user_id", c.Identity.UserID).
		Str("group", group).
		Msg("connection joined group")
	return nil
}

func (m *membership) Disconnect(_ context.Context, c *Client, cause error) {
	group := c.Group()
	removed := m.registry.Leave(c)
	c.Close()

	ev := m.log.Debug()
	if cause != nil {
		ev = m.log.Info().Err(cause)
	}
	ev.Str("channel", m.name).
		Str("client_id", c.ID).
		Int64("user_id", c.Identity.UserID).
		Str("group", group).
		Bool("removed", removed).
		Msg("connection left group")
}

func (m *membership) pong(c *Client) {
	c.Send(&Event{Kind: EventPong})
}
