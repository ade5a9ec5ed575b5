package cache

import (
	"context"

	"github.com/neighborhq/backend/internal/events"
)

// FeedInvalidator is the slice of the query cache the bus binding needs.
type FeedInvalidator interface {
	InvalidateAllFeeds(ctx context.Context)
}

// BindInvalidation subscribes the query cache to every bus signal so any
// content change drops the cached feeds. The returned teardown releases all
// subscriptions and must be called on shutdown.
func BindInvalidation(bus *events.Bus, inv FeedInvalidator) (teardown func()) {
	unsubscribes := make([]func(), 0, len(events.AllSignals()))
	for _, signal := range events.AllSignals() {
		unsubscribes = append(unsubscribes, bus.Subscribe(signal, func(events.Signal) {
			inv.InvalidateAllFeeds(context.Background())
		}))
	}
	return func() {
		for _, unsubscribe := range unsubscribes {
			unsubscribe()
		}
	}
}
