// Package events broadcasts repository changes to in-process subscribers,
// which is how the presentation layer keeps its lists current.
package events

import (
	"sync"
	"time"
)

// Topic names the list that changed.
type Topic string

const (
	TopicIdeas    Topic = "ideas"
	TopicVideos   Topic = "videos"
	TopicSettings Topic = "settings"
)

// Action describes what happened to the list.
type Action string

const (
	ActionLoaded    Action = "loaded"
	ActionAdded     Action = "added"
	ActionUpdated   Action = "updated"
	ActionDeleted   Action = "deleted"
	ActionConverted Action = "converted"
	ActionSeeded    Action = "seeded"
)

// Event is one change notification. ID is empty for whole-list actions.
type Event struct {
	Topic     Topic     `json:"topic"`
	Action    Action    `json:"action"`
	ID        string    `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// subscriber buffer size; events beyond it are dropped for that subscriber.
const bufferSize = 64

type subscriber struct {
	id     int
	topics map[Topic]bool
	send   chan Event
}

// Hub fans events out to subscribers. The zero value is not usable; use NewHub.
type Hub struct {
	mu      sync.RWMutex
	nextID  int
	subs    map[int]*subscriber
	dropped int
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[int]*subscriber)}
}

// Subscribe registers for the given topics (all topics when none are
// given). The returned cancel func unregisters and closes the channel.
func (h *Hub) Subscribe(topics ...Topic) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &subscriber{
		id:   h.nextID,
		send: make(chan Event, bufferSize),
	}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]bool, len(topics))
		for _, t := range topics {
			sub.topics[t] = true
		}
	}
	h.subs[sub.id] = sub

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[sub.id]; ok {
				delete(h.subs, sub.id)
				close(sub.send)
			}
		})
	}
	return sub.send, cancel
}

// Publish delivers e without blocking. A subscriber whose buffer is full
// misses the event.
func (h *Hub) Publish(e Event) {
	if h == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if sub.topics != nil && !sub.topics[e.Topic] {
			continue
		}
		select {
		case sub.send <- e:
		default:
			h.dropped++
		}
	}
}

// Dropped returns how many deliveries were skipped because a subscriber
// was full.
func (h *Hub) Dropped() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.dropped
}

// Subscribers returns the number of active subscriptions.
func (h *Hub) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
