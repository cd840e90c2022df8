// Package client is the session core. It issues tagged HTTP operations, feeds
// transport events through the reassembler and decoder, runs the socket
// session, and queues every outcome on the action bus. All of its state is
// owned by Tick and the operation methods, which must be called from the same
// goroutine.
package client

import (
	"shindensen_client/actions"
	"shindensen_client/dedup"
	"shindensen_client/helpers"
	"shindensen_client/socket"
	"shindensen_client/stream"
	"shindensen_client/tags"
	"shindensen_client/transport"

	"go.uber.org/zap"
)

const DEFAULT_EVENT_BUDGET = 256

// HTTPIssuer is the HTTP half of the platform transport.
type HTTPIssuer interface {
	Issue(id string, req transport.Request)
	Events() <-chan transport.Event
}

// Credential is the bearer token from the last successful login. Claims are
// best-effort: an opaque token leaves them zero.
type Credential struct {
	Token    string
	Username string
	Claims   helpers.TokenClaims
}

type Client struct {
	http   HTTPIssuer
	socket *socket.Manager
	tags   *tags.Registry
	stream *stream.Reassembler
	dedup  *dedup.Deduplicator
	bus    *actions.Bus
	log    *zap.Logger

	eventBudget int
	socketOpts  []socket.Option

	cred *Credential
}

type Option func(*Client)

// WithEventBudget bounds how many HTTP transport events one tick handles.
func WithEventBudget(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.eventBudget = n
		}
	}
}

// WithSocketOptions is passed through to the socket manager.
func WithSocketOptions(opts ...socket.Option) Option {
	return func(c *Client) { c.socketOpts = append(c.socketOpts, opts...) }
}

func New(http HTTPIssuer, dialer socket.Dialer, log *zap.Logger, opts ...Option) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		http:        http,
		tags:        tags.NewRegistry(),
		stream:      stream.NewReassembler(),
		dedup:       dedup.New(),
		log:         log,
		eventBudget: DEFAULT_EVENT_BUDGET,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.bus = actions.NewBus(log.Named("bus"))
	c.socket = socket.NewManager(dialer, c.bus, log.Named("socket"), c.socketOpts...)
	return c
}

// Credential returns the stored credential, or nil before login.
func (c *Client) Credential() *Credential {
	return c.cred
}

func (c *Client) Authenticated() bool {
	return c.cred != nil
}

func (c *Client) SocketState() socket.State {
	return c.socket.State()
}

// InFlight returns the number of issued requests still awaiting a response.
func (c *Client) InFlight() int {
	return c.tags.Len()
}

// Tick drains pending transport events, runs one socket drain cycle and
// returns every action produced since the previous tick, in order.
func (c *Client) Tick() []actions.Action {
	events := c.http.Events()
drain:
	for i := 0; i < c.eventBudget; i++ {
		select {
		case ev := <-events:
			c.HandleEvent(ev)
		default:
			break drain
		}
	}
	c.socket.Drain()
	return c.bus.Drain()
}

// Close ends the socket session and forgets the credential.
func (c *Client) Close() {
	c.socket.Close()
	c.cred = nil
}
