package gateway

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/youth-club/core/internal/models"
)

type fakeClient struct {
	id string

	mu     sync.Mutex
	events []models.Event
	closed bool

	failWith error
	panics   bool
}

func (c *fakeClient) ID() string { return c.id }

func (c *fakeClient) Send(e models.Event) error {
	if c.panics {
		panic("send exploded")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failWith != nil {
		return c.failWith
	}
	c.events = append(c.events, e)
	return nil
}

func (c *fakeClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeClient) received() []models.Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.Event(nil), c.events...)
}

func (c *fakeClient) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func eventTypes(events []models.Event) []models.EventType {
	out := make([]models.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

type fakeRelay struct {
	mu        sync.Mutex
	published []Envelope
	incoming  chan Envelope
}

func newFakeRelay() *fakeRelay {
	return &fakeRelay{incoming: make(chan Envelope, 8)}
}

func (r *fakeRelay) Publish(_ context.Context, env Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, env)
	return nil
}

func (r *fakeRelay) Subscribe(context.Context) <-chan Envelope { return r.incoming }

func (r *fakeRelay) sent() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.published...)
}

func startHub(t *testing.T, relay Relay) *Hub {
	t.Helper()
	h := NewHub("node-a", relay, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return h
}

func register(t *testing.T, h *Hub, clients ...Client) {
	t.Helper()
	want := h.ClientCount() + len(clients)
	for _, c := range clients {
		require.NoError(t, h.Register(c))
	}
	require.Eventually(t, func() bool { return h.ClientCount() == want }, time.Second, 5*time.Millisecond)
}

func TestHubConnectedThenOrderedEvents(t *testing.T) {
	h := startHub(t, nil)
	c := &fakeClient{id: "c1"}
	register(t, h, c)

	h.Broadcast(models.Event{Type: models.EventApproval, RecordKind: models.KindNews, RecordID: "n1"})
	h.Broadcast(models.Event{Type: models.EventRejection, RecordKind: models.KindProject, RecordID: "p1"})

	require.Eventually(t, func() bool { return len(c.received()) == 3 }, time.Second, 5*time.Millisecond)
	got := c.received()
	assert.Equal(t, []models.EventType{models.EventConnected, models.EventApproval, models.EventRejection}, eventTypes(got))
	assert.Equal(t, "n1", got[1].RecordID)
	assert.Equal(t, models.KindProject, got[2].RecordKind)
	assert.False(t, got[1].At.IsZero())
}

func TestHubLateClientGetsNoReplay(t *testing.T) {
	h := startHub(t, nil)
	early := &fakeClient{id: "early"}
	register(t, h, early)

	h.Broadcast(models.Event{Type: models.EventApproval, RecordID: "r1"})
	require.Eventually(t, func() bool { return len(early.received()) == 2 }, time.Second, 5*time.Millisecond)

	late := &fakeClient{id: "late"}
	register(t, h, late)
	h.Broadcast(models.Event{Type: models.EventRejection, RecordID: "r2"})

	require.Eventually(t, func() bool { return len(late.received()) == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []models.EventType{models.EventConnected, models.EventRejection}, eventTypes(late.received()))
}

func TestHubIsolatesFailingClients(t *testing.T) {
	h := startHub(t, nil)
	good := &fakeClient{id: "good"}
	broken := &fakeClient{id: "broken"}
	register(t, h, good, broken)

	// connected already went out to broken before it starts failing
	broken.mu.Lock()
	broken.failWith = errors.New("socket gone")
	broken.mu.Unlock()

	h.Broadcast(models.Event{Type: models.EventApproval, RecordID: "r1"})

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
	require.Eventually(t, func() bool { return len(good.received()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestHubRecoversPanickingClient(t *testing.T) {
	h := startHub(t, nil)
	good := &fakeClient{id: "good"}
	register(t, h, good)

	bad := &fakeClient{id: "bad", panics: true}
	require.NoError(t, h.Register(bad))

	h.Broadcast(models.Event{Type: models.EventApproval, RecordID: "r1"})

	require.Eventually(t, func() bool { return len(good.received()) == 2 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return h.ClientCount() == 1 && bad.isClosed() }, time.Second, 5*time.Millisecond)
}

func TestHubUnregister(t *testing.T) {
	h := startHub(t, nil)
	c := &fakeClient{id: "c1"}
	register(t, h, c)

	h.Unregister("c1")
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	h.Broadcast(models.Event{Type: models.EventApproval})
	time.Sleep(20 * time.Millisecond)
	assert.Len(t, c.received(), 1)
}

func TestHubRelay(t *testing.T) {
	relay := newFakeRelay()
	h := startHub(t, relay)
	c := &fakeClient{id: "c1"}
	register(t, h, c)

	h.Broadcast(models.Event{Type: models.EventApproval, RecordID: "local"})
	require.Eventually(t, func() bool { return len(relay.sent()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "node-a", relay.sent()[0].Node)
	assert.Equal(t, "local", relay.sent()[0].Event.RecordID)

	// own echo is skipped, the other node's event is delivered
	relay.incoming <- Envelope{Node: "node-a", Event: models.Event{Type: models.EventApproval, RecordID: "local"}}
	relay.incoming <- Envelope{Node: "node-b", Event: models.Event{Type: models.EventRejection, RecordID: "remote"}}

	require.Eventually(t, func() bool { return len(c.received()) == 3 }, time.Second, 5*time.Millisecond)
	got := c.received()
	assert.Equal(t, "local", got[1].RecordID)
	assert.Equal(t, "remote", got[2].RecordID)

	time.Sleep(20 * time.Millisecond)
	assert.Len(t, c.received(), 3)
}

func TestHubBroadcastDropsWhenQueueFull(t *testing.T) {
	// not running, so nothing drains the queue
	h := NewHub("node-a", nil, nil)

	done := make(chan struct{})
	go func() {
		for i := 0; i < queueSize+10; i++ {
			h.Broadcast(models.Event{Type: models.EventApproval})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Broadcast blocked on a full queue")
	}
	assert.Equal(t, int64(10), h.Stats().Dropped)
}

func TestHubClosesClientsOnShutdown(t *testing.T) {
	h := NewHub("node-a", nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	c := &fakeClient{id: "c1"}
	require.NoError(t, h.Register(c))
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
	assert.True(t, c.isClosed())
	assert.ErrorIs(t, h.Register(&fakeClient{id: "c2"}), errHubStopped)
}

func TestRegisterAfterShutdownAlwaysRefused(t *testing.T) {
	h := NewHub("node-a", nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()
	cancel()
	<-done

	for i := 0; i < 100; i++ {
		c := &fakeClient{id: fmt.Sprintf("late-%d", i)}
		require.ErrorIs(t, h.Register(c), errHubStopped)
		assert.False(t, c.isClosed())
	}
	h.Unregister("late-0")
	assert.Zero(t, h.ClientCount())
}

func TestShutdownClosesQueuedJoins(t *testing.T) {
	h := NewHub("node-a", nil, nil)
	c := &fakeClient{id: "queued"}
	require.NoError(t, h.Register(c))

	// The loop never picks the join up; shutdown must still close it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	h.Run(ctx)

	assert.True(t, c.isClosed())
	assert.ErrorIs(t, h.Register(&fakeClient{id: "next"}), errHubStopped)
}

func TestSSEClientSendIsNonBlocking(t *testing.T) {
	c := newSSEClient()
	for i := 0; i < sseBuffer; i++ {
		require.NoError(t, c.Send(models.Event{Type: models.EventApproval}))
	}
	assert.ErrorIs(t, c.Send(models.Event{Type: models.EventApproval}), errSlowClient)

	c.Close()
	c.Close()
	assert.ErrorIs(t, c.Send(models.Event{Type: models.EventApproval}), errHubStopped)
}
