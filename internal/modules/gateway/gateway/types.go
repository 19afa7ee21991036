package gateway

import (
	"context"
	"errors"

	"github.com/youth-club/core/internal/models"
)

const (
	namespaceDashboard = "/dashboard"
	eventMessage       = "message"
	redisChanEvents    = "yc:gateway:events"

	queueSize = 256
)

var (
	errHubStopped = errors.New("gateway: hub stopped")
	errSlowClient = errors.New("gateway: client buffer full")
)

// Client is one live connection. Send must not block for long; the hub
// calls it from its delivery loop.
type Client interface {
	ID() string
	Send(e models.Event) error
	Close()
}

// Envelope carries an event between nodes. Node is the id of the node the
// moderation decision happened on.
type Envelope struct {
	Node  string       `json:"node"`
	Event models.Event `json:"event"`
}

// Relay fans events out to the other server nodes.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
	Subscribe(ctx context.Context) <-chan Envelope
}
