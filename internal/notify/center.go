// Package notify keeps the recent operator notifications and forwards them,
// along with resource update signals, to connected consoles.
package notify

import (
	"container/list"
	"sync"

	"dhcpconsole/internal/controller"
	"dhcpconsole/internal/events"
	"dhcpconsole/pkg/models"
)

// DefaultLimit is the number of notifications kept when none is configured
const DefaultLimit = 100

// Center records notifications in a bounded list, oldest dropped first
type Center struct {
	limit       int
	entries     *list.List
	broadcaster *events.Broadcaster
	mu          sync.RWMutex
}

// NewCenter creates a notification center. broadcaster may be nil.
func NewCenter(limit int, broadcaster *events.Broadcaster) *Center {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Center{
		limit:       limit,
		entries:     list.New(),
		broadcaster: broadcaster,
	}
}

var _ controller.Notifier = (*Center)(nil)

// Notify records n and pushes it to consoles
func (c *Center) Notify(n models.Notification) {
	c.mu.Lock()
	if c.entries.Len() >= c.limit {
		c.entries.Remove(c.entries.Front())
	}
	c.entries.PushBack(n)
	c.mu.Unlock()

	c.broadcaster.BroadcastNotification(string(n.Level), n.Message)
}

// Updated pushes a resource update signal to consoles
func (c *Center) Updated(r controller.Resource) {
	c.broadcaster.BroadcastResourceUpdated(string(r))
}

// Recent returns the recorded notifications, oldest first
func (c *Center) Recent() []models.Notification {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries := make([]models.Notification, 0, c.entries.Len())
	for e := c.entries.Front(); e != nil; e = e.Next() {
		entries = append(entries, e.Value.(models.Notification))
	}
	return entries
}

// Len returns the number of recorded notifications
func (c *Center) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.entries.Len()
}
