// Package alerts queues one-shot notifications per session: each message is
// delivered to the client once and then discarded.
package alerts

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"fieldesk/internal/models"
)

// maxPerSession caps a session's pending queue; the oldest entries are
// dropped when a client stops draining.
const maxPerSession = 50

type Center struct {
	mu      sync.Mutex
	pending map[string][]models.Notification
	now     func() time.Time
}

func NewCenter() *Center {
	return &Center{
		pending: make(map[string][]models.Notification),
		now:     time.Now,
	}
}

// Notify enqueues one notification for the session.
func (c *Center) Notify(sessionID, level, message string) {
	n := models.Notification{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Level:     level,
		Message:   message,
		CreatedAt: c.now(),
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	queue := append(c.pending[sessionID], n)
	if len(queue) > maxPerSession {
		queue = queue[len(queue)-maxPerSession:]
	}
	c.pending[sessionID] = queue
}

// Drain returns and clears the session's pending notifications.
func (c *Center) Drain(sessionID string) []models.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	queue := c.pending[sessionID]
	delete(c.pending, sessionID)
	return queue
}

// Pending reports how many notifications a session has waiting.
func (c *Center) Pending(sessionID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending[sessionID])
}
