package events

import "sync"

// Signal names the closed set of change notifications carried by the bus.
// Signals carry no payload; they only tell dependent views that a content
// type changed and cached queries for it are stale. Extend by adding a
// constant here.
type Signal string

const (
	NotificationCreated Signal = "notification-created"
	SafetyUpdated       Signal = "safety-updated"
	EventRSVPUpdated    Signal = "event-rsvp-updated"
	EventSubmitted      Signal = "event-submitted"
	EventDeleted        Signal = "event-deleted"
	SkillsUpdated       Signal = "skills-updated"
	GoodsUpdated        Signal = "goods-updated"
	GroupUpdated        Signal = "group-updated"
)

// AllSignals lists every bus signal, for consumers that relay the whole
// stream (cache invalidation, SSE).
func AllSignals() []Signal {
	return []Signal{
		NotificationCreated,
		SafetyUpdated,
		EventRSVPUpdated,
		EventSubmitted,
		EventDeleted,
		SkillsUpdated,
		GoodsUpdated,
		GroupUpdated,
	}
}

// Bus is an in-process publish/subscribe hub. Dispatch is synchronous to the
// subscribers present at emit time; there is no persistence and no ordering
// guarantee beyond that. Subscribers must release their subscription on
// teardown via the returned unsubscribe closure.
type Bus struct {
	mu     sync.Mutex
	nextID int
	subs   map[Signal]map[int]func(Signal)
}

func NewBus() *Bus {
	return &Bus{subs: make(map[Signal]map[int]func(Signal))}
}

// Subscribe registers a handler for one signal and returns its unsubscribe
// closure. The closure is safe to call more than once.
func (b *Bus) Subscribe(s Signal, handler func(Signal)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs[s] == nil {
		b.subs[s] = make(map[int]func(Signal))
	}
	id := b.nextID
	b.nextID++
	b.subs[s][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs[s], id)
	}
}

// Emit dispatches the signal to current subscribers. Handlers run outside
// the bus lock, so they may subscribe or unsubscribe freely.
func (b *Bus) Emit(s Signal) {
	b.mu.Lock()
	handlers := make([]func(Signal), 0, len(b.subs[s]))
	for _, h := range b.subs[s] {
		handlers = append(handlers, h)
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(s)
	}
}
