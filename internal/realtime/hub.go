// Package realtime owns the live-broadcast side of change propagation: an
// explicit subscription table keyed by scope. Delivery is best effort; a
// subscriber whose buffer is full simply misses the event and reconciles with
// an authoritative read on its next fetch.
package realtime

import (
	"sync"

	"github.com/gofrs/uuid"
)

const (
	EventCreated = "created"
	EventUpdated = "updated"
	EventDeleted = "deleted"
)

// ScopeAllProjects is the topic for project-level list changes; every project
// also has its own scope for the tasks inside it.
const ScopeAllProjects = "projects"

func ProjectScope(projectID uuid.UUID) string {
	return "project:" + projectID.String()
}

type Event struct {
	Name    string      `json:"event"`
	Scope   string      `json:"scope"`
	Payload interface{} `json:"payload"`
}

type Subscription struct {
	hub *Hub

	// C delivers events for every scope this subscription is attached to.
	C chan Event

	mu     sync.Mutex
	scopes map[string]struct{}
	closed bool
}

type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subs: make(map[string]map[*Subscription]struct{}),
	}
}

func (h *Hub) NewSubscription() *Subscription {
	return &Subscription{
		hub:    h,
		C:      make(chan Event, 32),
		scopes: make(map[string]struct{}),
	}
}

func (h *Hub) Broadcast(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[event.Scope] {
		select {
		case sub.C <- event:
		default:
			// Slow consumer; drop rather than block the mutation path.
		}
	}
}

// SubscriberCount reports how many subscriptions are attached to a scope.
func (h *Hub) SubscriberCount(scope string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.subs[scope])
}

func (s *Subscription) Subscribe(scope string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.scopes[scope] = struct{}{}
	s.mu.Unlock()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	if s.hub.subs[scope] == nil {
		s.hub.subs[scope] = make(map[*Subscription]struct{})
	}
	s.hub.subs[scope][s] = struct{}{}
}

func (s *Subscription) Unsubscribe(scope string) {
	s.mu.Lock()
	delete(s.scopes, scope)
	s.mu.Unlock()

	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()

	s.detachLocked(scope)
}

// Close detaches the subscription from every scope and closes its channel.
func (s *Subscription) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	scopes := make([]string, 0, len(s.scopes))
	for scope := range s.scopes {
		scopes = append(scopes, scope)
	}
	s.scopes = make(map[string]struct{})
	s.mu.Unlock()

	s.hub.mu.Lock()
	for _, scope := range scopes {
		s.detachLocked(scope)
	}
	s.hub.mu.Unlock()

	close(s.C)
}

func (s *Subscription) detachLocked(scope string) {
	if set, ok := s.hub.subs[scope]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(s.hub.subs, scope)
		}
	}
}
