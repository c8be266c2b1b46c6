package websocket

import (
	"context"
	"testing"
	"time"

	"HydroWatchAPI/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRunningHub(t *testing.T) *Hub {
	t.Helper()

	log, err := logger.New(logger.Config{Level: logger.ERROR})
	require.NoError(t, err)

	hub := NewHub(log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

func waitForCount(t *testing.T, hub *Hub, want int) {
	t.Helper()

	require.Eventually(t, func() bool {
		return hub.ClientCount() == want
	}, time.Second, 5*time.Millisecond)
}

func receive(t *testing.T, c *Client) Message {
	t.Helper()

	select {
	case msg, ok := <-c.send:
		require.True(t, ok, "send channel closed unexpectedly")
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a broadcast message")
		return Message{}
	}
}

func TestHubFanOut(t *testing.T) {
	hub := newRunningHub(t)

	a := &Client{hub: hub, send: make(chan Message, 4)}
	b := &Client{hub: hub, send: make(chan Message, 4)}
	hub.register <- a
	hub.register <- b
	waitForCount(t, hub, 2)

	hub.Broadcast("sensor_update", map[string]string{"sensorId": "sensor-1"})

	for _, c := range []*Client{a, b} {
		msg := receive(t, c)
		assert.Equal(t, "sensor_update", msg.Type)
		assert.Equal(t, map[string]string{"sensorId": "sensor-1"}, msg.Data)
	}
}

func TestHubLateJoinerSeesNothing(t *testing.T) {
	hub := newRunningHub(t)

	early := &Client{hub: hub, send: make(chan Message, 4)}
	hub.register <- early
	waitForCount(t, hub, 1)

	hub.Broadcast("alert", "first")
	receive(t, early)

	late := &Client{hub: hub, send: make(chan Message, 4)}
	hub.register <- late
	waitForCount(t, hub, 2)

	hub.Broadcast("alert", "second")

	assert.Equal(t, "second", receive(t, early).Data)
	assert.Equal(t, "second", receive(t, late).Data)
	assert.Empty(t, late.send)
}

func TestHubDropsUnreadySubscriber(t *testing.T) {
	hub := newRunningHub(t)

	// An unbuffered channel with no reader is never ready to send.
	stuck := &Client{hub: hub, send: make(chan Message)}
	live := &Client{hub: hub, send: make(chan Message, 4)}
	hub.register <- stuck
	hub.register <- live
	waitForCount(t, hub, 2)

	hub.Broadcast("sensor_update", "payload")

	waitForCount(t, hub, 1)
	receive(t, live)

	// The dropped subscriber's channel is closed, not left dangling.
	select {
	case _, ok := <-stuck.send:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("expected the dropped subscriber's channel to be closed")
	}
}

func TestHubUnregister(t *testing.T) {
	hub := newRunningHub(t)

	c := &Client{hub: hub, send: make(chan Message, 4)}
	hub.register <- c
	waitForCount(t, hub, 1)

	hub.unregister <- c
	waitForCount(t, hub, 0)

	// Broadcasting with no subscribers is a no-op.
	hub.Broadcast("sensor_update", "payload")
	assert.Equal(t, 0, hub.ClientCount())
}
