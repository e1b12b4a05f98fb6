package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func TestHub_PublishSubscribe(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	defer cancel()

	h.Publish(Event{Topic: TopicIdeas, Action: ActionAdded, ID: "abc"})

	e := receive(t, ch)
	assert.Equal(t, TopicIdeas, e.Topic)
	assert.Equal(t, ActionAdded, e.Action)
	assert.Equal(t, "abc", e.ID)
	assert.False(t, e.Timestamp.IsZero())
}

func TestHub_topicFilter(t *testing.T) {
	h := NewHub()
	videos, cancel := h.Subscribe(TopicVideos)
	defer cancel()

	h.Publish(Event{Topic: TopicIdeas, Action: ActionAdded})
	h.Publish(Event{Topic: TopicVideos, Action: ActionDeleted, ID: "v1"})

	e := receive(t, videos)
	assert.Equal(t, TopicVideos, e.Topic)
	assert.Len(t, videos, 0)
}

func TestHub_cancelClosesChannel(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe()
	assert.Equal(t, 1, h.Subscribers())

	cancel()
	cancel()

	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, 0, h.Subscribers())

	assert.NotPanics(t, func() { h.Publish(Event{Topic: TopicIdeas}) })
}

func TestHub_slowSubscriberDrops(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe()
	defer cancel()

	for i := 0; i < bufferSize+5; i++ {
		h.Publish(Event{Topic: TopicSettings, Action: ActionUpdated})
	}
	assert.Equal(t, 5, h.Dropped())
}

func TestHub_nilPublish(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() { h.Publish(Event{Topic: TopicIdeas}) })
}
