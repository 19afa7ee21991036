package gateway

import (
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/youth-club/core/internal/models"
)

const (
	sseBuffer    = 16
	sseKeepAlive = 25 * time.Second
)

// sseClient buffers events for one text/event-stream response.
type sseClient struct {
	id        string
	events    chan models.Event
	done      chan struct{}
	closeOnce sync.Once
}

func newSSEClient() *sseClient {
	return &sseClient{
		id:     "sse-" + uuid.NewString(),
		events: make(chan models.Event, sseBuffer),
		done:   make(chan struct{}),
	}
}

func (c *sseClient) ID() string { return c.id }

func (c *sseClient) Send(e models.Event) error {
	select {
	case <-c.done:
		return errHubStopped
	default:
	}
	select {
	case c.events <- e:
		return nil
	default:
		return errSlowClient
	}
}

func (c *sseClient) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// serveSSE streams hub events to the request until either side goes away.
func serveSSE(c *gin.Context, hub *Hub) {
	client := newSSEClient()
	if err := hub.Register(client); err != nil {
		c.AbortWithStatus(http.StatusServiceUnavailable)
		return
	}
	defer hub.Unregister(client.ID())
	defer client.Close()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	ticker := time.NewTicker(sseKeepAlive)
	defer ticker.Stop()

	ctx := c.Request.Context()
	c.Stream(func(_ io.Writer) bool {
		select {
		case e := <-client.events:
			c.SSEvent(eventMessage, e)
			return true
		case <-ticker.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-client.done:
			return false
		case <-ctx.Done():
			return false
		}
	})
}
