package sse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscription_StartPublishCancel(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscription(ProjectChatTopic("p1"))

	assert.Equal(t, 0, hub.SubscriberCount("chat:p1"))
	events := sub.Start()
	assert.Equal(t, 1, hub.SubscriberCount("chat:p1"))

	hub.Publish("chat:p1", Event{Event: "message", Data: "hola"})
	got := <-events
	assert.Equal(t, "chat:p1", got.Topic)
	assert.Equal(t, "hola", got.Data)

	sub.Cancel()
	sub.Cancel()
	assert.Equal(t, 0, hub.TotalSubscribers())

	_, open := <-events
	assert.False(t, open)
}

func TestSubscription_CancelBeforeStart(t *testing.T) {
	hub := NewHub()
	sub := hub.NewSubscription("chat:p1")
	sub.Cancel()

	events := sub.Start()
	_, open := <-events
	assert.False(t, open)
	assert.Equal(t, 0, hub.TotalSubscribers())
}

func TestPublish_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	events, cancel := hub.Subscribe("attendance:u1")
	defer cancel()

	for i := 0; i < DefaultBuffer+5; i++ {
		hub.Publish("attendance:u1", Event{Event: "tick", Data: i})
	}

	require.Len(t, events, DefaultBuffer)
	first := <-events
	assert.Equal(t, 0, first.Data)
}

func TestPublish_OnlyMatchingTopic(t *testing.T) {
	hub := NewHub()
	a, cancelA := hub.Subscribe("chat:a")
	defer cancelA()
	b, cancelB := hub.Subscribe("chat:b")
	defer cancelB()

	hub.PublishToMany([]string{"chat:a"}, Event{Event: "message"})

	assert.Len(t, a, 1)
	assert.Len(t, b, 0)
}
