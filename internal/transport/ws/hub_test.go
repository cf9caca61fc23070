package ws

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(hub *Hub, userID uuid.UUID) *Client {
	return &Client{
		hub:    hub,
		userID: userID,
		send:   make(chan []byte, sendBufSize),
		done:   make(chan struct{}),
	}
}

func TestHubKicksReplacedConnection(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	userID := uuid.New()
	first := testClient(hub, userID)
	second := testClient(hub, userID)

	hub.register <- first
	hub.register <- second

	// The replaced connection's channels are closed so its pumps exit.
	select {
	case <-first.done:
	case <-time.After(time.Second):
		t.Fatal("replaced connection was not kicked")
	}
	assert.Equal(t, 1, hub.Count())

	evt, err := NewEvent(EventTypeError, ErrorPayload{Message: "ping"})
	require.NoError(t, err)
	require.True(t, hub.SendToUser(userID, evt), "events route to the new connection")

	// The stale connection's unregister must not tear down the new one.
	hub.unregister <- first
	require.Eventually(t, func() bool {
		return hub.SendToUser(userID, evt)
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, 1, hub.Count())
}

func TestHubUnregisterRemovesClient(t *testing.T) {
	hub := NewHub(nil)
	go hub.Run()

	userID := uuid.New()
	client := testClient(hub, userID)
	hub.register <- client
	hub.unregister <- client

	select {
	case <-client.done:
	case <-time.After(time.Second):
		t.Fatal("unregister did not close the client")
	}
	assert.Equal(t, 0, hub.Count())

	evt, err := NewEvent(EventTypeError, ErrorPayload{Message: "ping"})
	require.NoError(t, err)
	assert.False(t, hub.SendToUser(userID, evt))
}
