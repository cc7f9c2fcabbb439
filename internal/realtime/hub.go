package realtime

import (
	"log/slog"
	"sync"

	"github.com/nhle/qtplanner/internal/model"
)

// Well-known channel names.
const (
	ChannelSchedules = "public:schedules"
	ChannelQtCheck   = "realtime:public:qtcheck"
)

// ChannelFor returns the conventional channel name for table.
func ChannelFor(table model.Table) string {
	if table == model.TableQtCheck {
		return ChannelQtCheck
	}
	return ChannelSchedules
}

// Hub fans row-level changes out to every subscription on the changed
// table. It has no row-level filtering and no replay.
type Hub struct {
	mu     sync.Mutex
	subs   map[model.Table]map[*Subscription]struct{}
	buffer int
	logger *slog.Logger
}

// NewHub creates an empty hub. A nil logger uses slog.Default().
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:   make(map[model.Table]map[*Subscription]struct{}),
		buffer: DefaultBuffer,
		logger: logger,
	}
}

// Subscribe registers a new subscription for table under the channel name.
// Closing the subscription removes it from the hub.
func (h *Hub) Subscribe(channel string, table model.Table) *Subscription {
	var sub *Subscription
	sub = NewSubscription(channel, table, h.buffer, func() {
		h.remove(sub)
	})

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[table] == nil {
		h.subs[table] = make(map[*Subscription]struct{})
	}
	h.subs[table][sub] = struct{}{}

	h.logger.Debug("realtime subscribe", "channel", channel, "table", table)
	return sub
}

// Publish delivers change to every subscription on its table. A
// subscription whose buffer is full misses the change.
func (h *Hub) Publish(change model.Change) {
	h.mu.Lock()
	targets := make([]*Subscription, 0, len(h.subs[change.Table]))
	for sub := range h.subs[change.Table] {
		targets = append(targets, sub)
	}
	h.mu.Unlock()

	for _, sub := range targets {
		if !sub.Publish(change) && !sub.Closed() {
			h.logger.Warn("realtime change dropped",
				"channel", sub.Channel(),
				"table", change.Table,
				"event", change.Type,
			)
		}
	}
}

// Count returns the number of live subscriptions on table.
func (h *Hub) Count(table model.Table) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[table])
}

// Close terminates every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*Subscription
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.mu.Unlock()

	for _, sub := range all {
		sub.Close()
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if set := h.subs[sub.table]; set != nil {
		delete(set, sub)
		if len(set) == 0 {
			delete(h.subs, sub.table)
		}
	}
}
