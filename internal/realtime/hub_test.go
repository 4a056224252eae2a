package realtime

import (
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
)

func TestSubscribeReceivesBroadcast(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscription()
	defer sub.Close()

	scope := ProjectScope(uuid.Must(uuid.NewV4()))
	sub.Subscribe(scope)

	hub.Broadcast(Event{Name: EventCreated, Scope: scope, Payload: "x"})

	event := <-sub.C
	assert.Equal(t, EventCreated, event.Name)
	assert.Equal(t, scope, event.Scope)
}

func TestBroadcastIsScoped(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscription()
	defer sub.Close()

	sub.Subscribe("project:a")

	hub.Broadcast(Event{Name: EventUpdated, Scope: "project:b", Payload: "x"})

	select {
	case event := <-sub.C:
		t.Fatalf("received event for foreign scope: %+v", event)
	default:
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscription()
	defer sub.Close()

	sub.Subscribe("project:a")
	sub.Unsubscribe("project:a")

	hub.Broadcast(Event{Name: EventDeleted, Scope: "project:a", Payload: "x"})

	select {
	case event := <-sub.C:
		t.Fatalf("received event after unsubscribe: %+v", event)
	default:
	}
	assert.Equal(t, 0, hub.SubscriberCount("project:a"))
}

func TestMultipleSubscribersOneScope(t *testing.T) {
	hub := NewHub()
	first := hub.NewSubscription()
	second := hub.NewSubscription()
	defer first.Close()
	defer second.Close()

	first.Subscribe("projects")
	second.Subscribe("projects")
	assert.Equal(t, 2, hub.SubscriberCount("projects"))

	hub.Broadcast(Event{Name: EventCreated, Scope: "projects", Payload: "x"})

	assert.Equal(t, "projects", (<-first.C).Scope)
	assert.Equal(t, "projects", (<-second.C).Scope)
}

func TestSlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscription()
	defer sub.Close()

	sub.Subscribe("projects")

	// Overflow the buffer; Broadcast must return without blocking.
	for i := 0; i < cap(sub.C)+10; i++ {
		hub.Broadcast(Event{Name: EventUpdated, Scope: "projects", Payload: i})
	}

	assert.Len(t, sub.C, cap(sub.C))
}

func TestCloseDetachesAndIsIdempotent(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscription()

	sub.Subscribe("projects")
	sub.Close()
	sub.Close()

	assert.Equal(t, 0, hub.SubscriberCount("projects"))

	// Broadcast to a scope with no subscribers must not panic.
	hub.Broadcast(Event{Name: EventCreated, Scope: "projects", Payload: "x"})
}
