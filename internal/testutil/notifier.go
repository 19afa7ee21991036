package testutil

import (
	"sync"

	"github.com/youth-club/core/internal/models"
)

// Notifier records broadcast events.
type Notifier struct {
	mu     sync.Mutex
	events []models.Event
}

func (n *Notifier) Broadcast(e models.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
}

// Events returns a copy of everything broadcast so far.
func (n *Notifier) Events() []models.Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.Event(nil), n.events...)
}
