package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	h := NewHub(nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.Run(ctx)
	return h
}

func receive(t *testing.T, c *Client) Event {
	t.Helper()
	select {
	case b := <-c.send:
		var evt Event
		require.NoError(t, json.Unmarshal(b, &evt))
		return evt
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestHubFiltersByJob(t *testing.T) {
	h := startHub(t)
	jobA, jobB := uuid.New(), uuid.New()

	all := NewClient(h, nil, uuid.Nil)
	onlyA := NewClient(h, nil, jobA)
	h.Register(all)
	h.Register(onlyA)
	require.Eventually(t, func() bool { return h.ClientCount(context.Background()) == 2 }, time.Second, 5*time.Millisecond)

	h.Publish(Event{Type: EventStatusChanged, JobID: jobB, To: "offer"})
	h.Publish(Event{Type: EventStatusChanged, JobID: jobA, To: "interview"})

	assert.Equal(t, jobB, receive(t, all).JobID)
	assert.Equal(t, jobA, receive(t, all).JobID)
	got := receive(t, onlyA)
	assert.Equal(t, jobA, got.JobID)
	assert.Equal(t, "interview", got.To)
}

func TestHubUnregisterClosesSend(t *testing.T) {
	h := startHub(t)
	c := NewClient(h, nil, uuid.Nil)
	h.Register(c)
	h.Unregister(c)

	require.Eventually(t, func() bool {
		select {
		case _, ok := <-c.send:
			return !ok
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 0, h.ClientCount(context.Background()))
}

func TestHubUnregisterRightAfterRegister(t *testing.T) {
	h := startHub(t)
	clients := make([]*Client, 200)
	for i := range clients {
		clients[i] = NewClient(h, nil, uuid.Nil)
		h.Register(clients[i])
		h.Unregister(clients[i])
	}

	for _, c := range clients {
		select {
		case _, ok := <-c.send:
			require.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("send channel left open")
		}
	}
	assert.Equal(t, 0, h.ClientCount(context.Background()))
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	h := NewHub(zap.New(core), nil)
	for i := 0; i < cap(h.broadcast)+1; i++ {
		h.Publish(Event{Type: EventApplicationSubmitted})
	}
	assert.Equal(t, 1, logs.FilterMessage("ws broadcast dropped").Len())
}

func TestNilHubIsSafe(t *testing.T) {
	var h *Hub
	assert.NotPanics(t, func() {
		h.Publish(Event{})
		h.Register(nil)
	})
	assert.Equal(t, 0, h.ClientCount(context.Background()))
}
