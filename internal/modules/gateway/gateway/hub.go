package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc"
	"github.com/youth-club/core/internal/models"
	"go.uber.org/zap"
)

// Hub delivers every event to every connected client. A single loop owns
// registration and delivery, so clients see events in the order they were
// broadcast and a newly registered client always gets "connected" first.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]Client

	// Joins and leaves share one queue so they apply in the order they
	// happened for a given client.
	membership chan membership
	broadcast  chan Envelope
	remote     chan Envelope
	done       chan struct{}
	stopOnce   sync.Once

	// stopMu guards stopped. Register holds it shared while queueing so
	// shutdown can drain every join that made it into the queue.
	stopMu  sync.RWMutex
	stopped bool

	nodeID string
	relay  Relay
	logger *zap.Logger
	now    func() time.Time

	delivered atomic.Int64
	dropped   atomic.Int64
}

func NewHub(nodeID string, relay Relay, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]Client),
		membership: make(chan membership, queueSize),
		broadcast:  make(chan Envelope, queueSize),
		remote:     make(chan Envelope, queueSize),
		done:       make(chan struct{}),
		nodeID:     nodeID,
		relay:      relay,
		logger:     logger.Named("gateway"),
		now:        time.Now,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	if h.relay != nil {
		go h.consumeRelay(ctx)
	}
	defer h.shutdown()

	for {
		select {
		case <-ctx.Done():
			return

		case m := <-h.membership:
			if m.leave {
				h.mu.Lock()
				delete(h.clients, m.id)
				h.mu.Unlock()
				continue
			}
			h.mu.Lock()
			h.clients[m.client.ID()] = m.client
			h.mu.Unlock()
			h.deliver(models.Event{Type: models.EventConnected, At: h.now()}, []Client{m.client})

		case env := <-h.broadcast:
			h.deliver(env.Event, h.snapshot())
			h.publish(ctx, env)

		case env := <-h.remote:
			if env.Node == h.nodeID {
				continue
			}
			h.deliver(env.Event, h.snapshot())
		}
	}
}

// Broadcast queues e for every connected client. It never blocks: when the
// queue is full the event is dropped and logged.
func (h *Hub) Broadcast(e models.Event) {
	if e.At.IsZero() {
		e.At = h.now()
	}
	select {
	case h.broadcast <- Envelope{Node: h.nodeID, Event: e}:
	default:
		h.dropped.Add(1)
		h.logger.Warn("gateway queue full, event dropped",
			zap.String("type", string(e.Type)),
			zap.String("record_id", e.RecordID))
	}
}

// Register adds c. The client is sent {type: "connected"} once registered.
// It returns errHubStopped once the hub has shut down.
func (h *Hub) Register(c Client) error {
	h.stopMu.RLock()
	defer h.stopMu.RUnlock()
	if h.stopped {
		return errHubStopped
	}
	select {
	case <-h.done:
		return errHubStopped
	default:
	}
	select {
	case h.membership <- membership{client: c, id: c.ID()}:
		return nil
	case <-h.done:
		return errHubStopped
	}
}

func (h *Hub) Unregister(id string) {
	h.stopMu.RLock()
	defer h.stopMu.RUnlock()
	if h.stopped {
		return
	}
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.membership <- membership{id: id, leave: true}:
	case <-h.done:
	}
}

// ClientCount returns the number of connected clients on this node.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

type membership struct {
	client Client
	id     string
	leave  bool
}

type Stats struct {
	Node      string `json:"node"`
	Clients   int    `json:"clients"`
	Delivered int64  `json:"delivered"`
	Dropped   int64  `json:"dropped"`
}

func (h *Hub) Stats() Stats {
	return Stats{
		Node:      h.nodeID,
		Clients:   h.ClientCount(),
		Delivered: h.delivered.Load(),
		Dropped:   h.dropped.Load(),
	}
}

func (h *Hub) snapshot() []Client {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Client, 0, len(h.clients))
	for _, c := range h.clients {
		out = append(out, c)
	}
	return out
}

// deliver sends e to clients concurrently and waits, so the next event is
// not started before this one reached everyone. A client whose Send fails
// or panics is dropped without affecting the rest.
func (h *Hub) deliver(e models.Event, clients []Client) {
	if len(clients) == 0 {
		return
	}

	var (
		wg     conc.WaitGroup
		failMu sync.Mutex
		failed []Client
	)
	for _, c := range clients {
		wg.Go(func() {
			ok := false
			defer func() {
				if !ok {
					failMu.Lock()
					failed = append(failed, c)
					failMu.Unlock()
				}
			}()
			if err := c.Send(e); err != nil {
				h.logger.Debug("gateway send failed", zap.String("client", c.ID()), zap.Error(err))
				return
			}
			ok = true
			h.delivered.Add(1)
		})
	}
	if r := wg.WaitAndRecover(); r != nil {
		h.logger.Warn("gateway client panicked", zap.String("panic", r.String()))
	}

	for _, c := range failed {
		h.mu.Lock()
		delete(h.clients, c.ID())
		h.mu.Unlock()
		c.Close()
	}
}

func (h *Hub) publish(ctx context.Context, env Envelope) {
	if h.relay == nil {
		return
	}
	pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := h.relay.Publish(pctx, env); err != nil {
		h.logger.Warn("gateway publish failed", zap.Error(err))
	}
}

func (h *Hub) consumeRelay(ctx context.Context) {
	in := h.relay.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-in:
			if !ok {
				return
			}
			select {
			case h.remote <- env:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (h *Hub) shutdown() {
	h.stopOnce.Do(func() { close(h.done) })

	// Joins queued after the loop exited were accepted; close them too.
	h.stopMu.Lock()
	h.stopped = true
	h.stopMu.Unlock()
drain:
	for {
		select {
		case m := <-h.membership:
			if !m.leave {
				m.client.Close()
			}
		default:
			break drain
		}
	}

	h.mu.Lock()
	clients := h.clients
	h.clients = make(map[string]Client)
	h.mu.Unlock()
	for _, c := range clients {
		c.Close()
	}
}
