// Package socket owns the session's single WebSocket connection: it drains
// inbound frames, classifies them, and reopens the connection with the last
// credential whenever the server closes it or it fails.
package socket

import (
	"time"

	"shindensen_client/actions"
	"shindensen_client/helpers"

	"go.uber.org/zap"
)

const DEFAULT_DRAIN_BUDGET = 64

// State is the session lifecycle: Closed -> Opening -> Open -> (Closed | Opening).
type State int

const (
	Closed State = iota
	Opening
	Open
)

func (s State) String() string {
	switch s {
	case Opening:
		return "opening"
	case Open:
		return "open"
	}
	return "closed"
}

type FrameKind int

const (
	FrameOpened FrameKind = iota + 1
	FrameText
	FrameClosed
	FrameError
)

// Frame is one inbound event from the platform socket.
type Frame struct {
	Kind FrameKind
	Text string
	Err  error
}

// Handle is one connection as the platform exposes it. Poll never blocks.
type Handle interface {
	Poll(max int) []Frame
	Send(text string) error
	Close() error
}

// Dialer opens a connection without blocking; the outcome arrives later as an
// Opened or Error frame on the returned handle.
type Dialer interface {
	Open(headers map[string]string) Handle
}

// Emitter receives the actions the manager produces.
type Emitter interface {
	Emit(a actions.Action)
}

// Backoff spaces out reopen attempts. *backoff.ExponentialBackOff satisfies it.
type Backoff interface {
	NextBackOff() time.Duration
	Reset()
}

// Manager is owned by the session tick and does no locking.
type Manager struct {
	dialer  Dialer
	emitter Emitter
	log     *zap.Logger
	budget  int
	backoff Backoff
	now     func() time.Time

	handle  Handle
	state   State
	token   string
	retryAt time.Time
	reopens int
}

type Option func(*Manager)

// WithBudget bounds how many frames one drain cycle processes.
func WithBudget(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.budget = n
		}
	}
}

// WithBackoff delays reopen attempts. Without it every reopen is immediate.
func WithBackoff(b Backoff) Option {
	return func(m *Manager) { m.backoff = b }
}

// WithClock replaces time.Now for backoff scheduling.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func NewManager(dialer Dialer, emitter Emitter, log *zap.Logger, opts ...Option) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		dialer:  dialer,
		emitter: emitter,
		log:     log,
		budget:  DEFAULT_DRAIN_BUDGET,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) State() State {
	return m.state
}

// Reopens counts automatic reopen attempts since the manager was created.
func (m *Manager) Reopens() int {
	return m.reopens
}

// Open starts a session with token, replacing any session already running.
// Called once per successful authentication.
func (m *Manager) Open(token string) {
	m.token = token
	m.retryAt = time.Time{}
	if m.backoff != nil {
		m.backoff.Reset()
	}
	m.dial()
}

// Close ends the session without reopening it.
func (m *Manager) Close() {
	m.closeHandle()
	m.state = Closed
	m.token = ""
	m.retryAt = time.Time{}
}

func (m *Manager) dial() {
	m.closeHandle()
	m.handle = m.dialer.Open(helpers.BearerHeaders(m.token))
	m.state = Opening
	m.log.Debug("socket opening")
}

func (m *Manager) closeHandle() {
	if m.handle == nil {
		return
	}
	if err := m.handle.Close(); err != nil {
		m.log.Debug("close socket handle", zap.Error(err))
	}
	m.handle = nil
}

func (m *Manager) reopen(reason string) {
	m.reopens++
	if m.backoff != nil {
		if delay := m.backoff.NextBackOff(); delay > 0 {
			m.closeHandle()
			m.state = Closed
			m.retryAt = m.now().Add(delay)
			m.log.Info("socket reopen scheduled", zap.String("reason", reason), zap.Duration("delay", delay))
			return
		}
	}
	m.log.Info("socket reopening", zap.String("reason", reason))
	m.dial()
}
