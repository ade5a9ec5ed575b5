package events

import "testing"

func TestEmitReachesSubscriber(t *testing.T) {
	bus := NewBus()
	var got []Signal
	unsubscribe := bus.Subscribe(EventSubmitted, func(s Signal) {
		got = append(got, s)
	})
	defer unsubscribe()

	bus.Emit(EventSubmitted)
	bus.Emit(EventSubmitted)

	if len(got) != 2 {
		t.Fatalf("expected 2 deliveries, got %d", len(got))
	}
	if got[0] != EventSubmitted {
		t.Fatalf("unexpected signal: %s", got[0])
	}
}

func TestEmitDoesNotCrossSignals(t *testing.T) {
	bus := NewBus()
	delivered := 0
	defer bus.Subscribe(SafetyUpdated, func(Signal) { delivered++ })()

	bus.Emit(EventSubmitted)
	bus.Emit(GoodsUpdated)

	if delivered != 0 {
		t.Fatalf("expected no deliveries for other signals, got %d", delivered)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	delivered := 0
	unsubscribe := bus.Subscribe(NotificationCreated, func(Signal) { delivered++ })

	bus.Emit(NotificationCreated)
	unsubscribe()
	bus.Emit(NotificationCreated)

	if delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", delivered)
	}

	// A second call must be harmless.
	unsubscribe()
	bus.Emit(NotificationCreated)
	if delivered != 1 {
		t.Fatalf("expected still 1 delivery, got %d", delivered)
	}
}

func TestHandlerMayUnsubscribeDuringEmit(t *testing.T) {
	bus := NewBus()
	var unsubscribe func()
	delivered := 0
	unsubscribe = bus.Subscribe(EventDeleted, func(Signal) {
		delivered++
		unsubscribe()
	})

	bus.Emit(EventDeleted)
	bus.Emit(EventDeleted)

	if delivered != 1 {
		t.Fatalf("expected 1 delivery, got %d", delivered)
	}
}

func TestEmitWithoutSubscribersIsSafe(t *testing.T) {
	bus := NewBus()
	bus.Emit(SkillsUpdated)
}
