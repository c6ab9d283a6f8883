package sse

import (
	"sync"
)

// DefaultBuffer is the per-subscriber channel size.
const DefaultBuffer = 16

// Event represents an SSE event to be sent to subscribers
type Event struct {
	Topic string
	Event string
	Data  interface{}
}

// Hub manages topic subscribers and event broadcasting.
// Delivery is at-most-once: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

// NewHub creates a new SSE Hub instance
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscription is a cancellable stream of events for one topic.
// Start registers it with the hub; Cancel unregisters it and closes the channel.
type Subscription struct {
	hub    *Hub
	topic  string
	buffer int

	mu       sync.Mutex
	ch       chan Event
	started  bool
	canceled bool
}

// NewSubscription prepares a subscription without registering it.
func (h *Hub) NewSubscription(topic string) *Subscription {
	return &Subscription{hub: h, topic: topic, buffer: DefaultBuffer}
}

// Topic returns the subscribed topic.
func (s *Subscription) Topic() string {
	return s.topic
}

// Start registers the subscription and returns its event channel.
// Calling Start again returns the same channel. A canceled subscription returns a closed channel.
func (s *Subscription) Start() <-chan Event {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return s.ch
	}
	s.started = true
	s.ch = make(chan Event, s.buffer)
	if s.canceled {
		close(s.ch)
		return s.ch
	}

	s.hub.mu.Lock()
	if s.hub.subscribers[s.topic] == nil {
		s.hub.subscribers[s.topic] = make(map[chan Event]struct{})
	}
	s.hub.subscribers[s.topic][s.ch] = struct{}{}
	s.hub.mu.Unlock()

	return s.ch
}

// Cancel is idempotent and safe to call before Start.
func (s *Subscription) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.canceled {
		return
	}
	s.canceled = true
	if !s.started {
		return
	}

	s.hub.mu.Lock()
	delete(s.hub.subscribers[s.topic], s.ch)
	if len(s.hub.subscribers[s.topic]) == 0 {
		delete(s.hub.subscribers, s.topic)
	}
	close(s.ch)
	s.hub.mu.Unlock()
}

// Subscribe registers a new subscriber for a topic and returns the event channel and cleanup function
func (h *Hub) Subscribe(topic string) (<-chan Event, func()) {
	sub := h.NewSubscription(topic)
	return sub.Start(), sub.Cancel
}

// Publish sends an event to all subscribers of a topic
func (h *Hub) Publish(topic string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	event.Topic = topic
	if subs, ok := h.subscribers[topic]; ok {
		for ch := range subs {
			select {
			case ch <- event:
			default:
				// Skip if channel is full (non-blocking to prevent deadlock)
			}
		}
	}
}

// PublishToMany sends an event to multiple topics
func (h *Hub) PublishToMany(topics []string, event Event) {
	for _, topic := range topics {
		h.Publish(topic, event)
	}
}

// SubscriberCount returns the number of active subscribers for a topic
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if subs, ok := h.subscribers[topic]; ok {
		return len(subs)
	}
	return 0
}

// TotalSubscribers returns the total number of active subscribers across all topics
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}

// ProjectChatTopic is the topic carrying chat messages of one project.
func ProjectChatTopic(projectID string) string {
	return "chat:" + projectID
}

// UserAttendanceTopic is the topic carrying attendance changes of one user.
func UserAttendanceTopic(userID string) string {
	return "attendance:" + userID
}
