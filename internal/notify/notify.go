package notify

import (
	"slices"
	"sync"
	"time"
)

// DefaultTTL is how long a toast stays visible.
const DefaultTTL = 3 * time.Second

const maxToasts = 5

type Toast struct {
	Message string
	IsError bool
	Expires time.Time
}

// Notifier receives user-visible messages from the editor core.
type Notifier interface {
	Notify(message string, isError bool)
}

// Queue keeps the most recent toasts until they expire. It is safe for
// concurrent use.
type Queue struct {
	TTL time.Duration
	now func() time.Time

	mu     sync.Mutex
	toasts []Toast
}

func NewQueue() *Queue {
	return &Queue{TTL: DefaultTTL, now: time.Now}
}

func (q *Queue) Notify(message string, isError bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.toasts = append(q.toasts, Toast{
		Message: message,
		IsError: isError,
		Expires: q.now().Add(q.TTL),
	})
	if len(q.toasts) > maxToasts {
		q.toasts = q.toasts[len(q.toasts)-maxToasts:]
	}
}

// Active drops expired toasts and returns the rest, oldest first.
func (q *Queue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	kept := q.toasts[:0]
	for _, t := range q.toasts {
		if now.Before(t.Expires) {
			kept = append(kept, t)
		}
	}
	q.toasts = kept
	return slices.Clone(q.toasts)
}

// Discard is a Notifier that drops everything.
type Discard struct{}

func (Discard) Notify(string, bool) {}
