package realtime

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/qtplanner/internal/model"
)

// DefaultBuffer is the per-subscription delivery buffer size.
const DefaultBuffer = 64

// ChangeMsg is a tea.Msg carrying one change delivered on a subscription.
type ChangeMsg struct {
	Channel string
	Change  model.Change
}

// ClosedMsg is a tea.Msg sent once a subscription stops delivering. Err is
// nil after a normal Close and carries the transport error otherwise.
type ClosedMsg struct {
	Channel string
	Err     error
}

// Subscription is one consumer of a table's change feed, identified by a
// channel name. Changes are delivered in publish order.
type Subscription struct {
	channel string
	table   model.Table

	ch      chan model.Change
	mu      sync.Mutex
	closed  bool
	err     error
	once    sync.Once
	onClose func()
}

// NewSubscription creates a subscription with the given buffer size.
// onClose, if non-nil, runs once when the subscription ends.
func NewSubscription(channel string, table model.Table, buffer int, onClose func()) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	return &Subscription{
		channel: channel,
		table:   table,
		ch:      make(chan model.Change, buffer),
		onClose: onClose,
	}
}

// Channel returns the subscription's channel name.
func (s *Subscription) Channel() string { return s.channel }

// Table returns the table the subscription listens to.
func (s *Subscription) Table() model.Table { return s.table }

// Changes returns the delivery channel. It is closed when the subscription
// ends.
func (s *Subscription) Changes() <-chan model.Change { return s.ch }

// Publish delivers c without blocking. It reports false when the
// subscription is closed or its buffer is full.
func (s *Subscription) Publish(c model.Change) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	select {
	case s.ch <- c:
		return true
	default:
		return false
	}
}

// Close unsubscribes. Calling Close more than once is a no-op.
func (s *Subscription) Close() {
	s.end(nil)
}

// Terminate ends the subscription with a transport error.
func (s *Subscription) Terminate(err error) {
	s.end(err)
}

// Err returns the error the subscription ended with, if any.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Closed reports whether the subscription has ended.
func (s *Subscription) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Subscription) end(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.err = err
		close(s.ch)
		s.mu.Unlock()

		if s.onClose != nil {
			s.onClose()
		}
	})
}

// Wait returns a tea.Cmd that blocks until the next change arrives and
// returns it as a ChangeMsg, or a ClosedMsg once the subscription ends.
// The caller re-issues Wait after every ChangeMsg to keep listening.
func (s *Subscription) Wait() tea.Cmd {
	return func() tea.Msg {
		c, ok := <-s.ch
		if !ok {
			return ClosedMsg{Channel: s.channel, Err: s.Err()}
		}
		return ChangeMsg{Channel: s.channel, Change: c}
	}
}
