package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case raw, ok := <-c.Send:
		require.True(t, ok, "send channel closed")
		var msg Message
		require.NoError(t, json.Unmarshal(raw, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func assertNothing(t *testing.T, c *Client) {
	t.Helper()
	select {
	case raw := <-c.Send:
		t.Fatalf("unexpected message %s", raw)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubPublishesToTopics(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	global := NewClient(hub, nil, GlobalTopic)
	group := NewClient(hub, nil, GroupTopic("cats"))
	other := NewClient(hub, nil, GroupTopic("dogs"))
	for _, c := range []*Client{global, group, other} {
		hub.Register(c)
	}
	hub.Subscribe(global, ProfileTopic("leo"))

	hub.Publish(Encode(ActionPostCreated, map[string]int{"id": 1}),
		GlobalTopic, GroupTopic("cats"), ProfileTopic("leo"))

	assert.Equal(t, ActionPostCreated, receive(t, global).Action)
	assert.Equal(t, ActionPostCreated, receive(t, group).Action)
	// Subscribed to two matching topics, delivered once.
	assertNothing(t, global)
	assertNothing(t, other)

	hub.Unsubscribe(group, GroupTopic("cats"))
	hub.Publish(Encode(ActionPostUpdated, nil), GroupTopic("cats"))
	assertNothing(t, group)

	hub.SendTo(other, NewErrorMessage("boom"))
	msg := receive(t, other)
	assert.Equal(t, ActionError, msg.Action)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := NewClient(hub, nil, GlobalTopic)
	hub.Register(c)
	hub.Unregister(c)

	select {
	case _, ok := <-c.Send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("send channel not closed")
	}

	// Publishing after the client left must not panic.
	hub.Publish(Encode(ActionPostCreated, nil), GlobalTopic)
}

func TestHubStop(t *testing.T) {
	hub := NewHub()
	done := make(chan struct{})
	go func() {
		hub.Run()
		close(done)
	}()

	c := NewClient(hub, nil, GlobalTopic)
	hub.Register(c)
	hub.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	// Calls after Stop return instead of blocking.
	hub.Unregister(c)
	hub.Publish([]byte("{}"), GlobalTopic)
}
