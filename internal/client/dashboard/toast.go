package dashboard

import "sync"

type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notification is a user-facing message about an action's outcome.
type Notification struct {
	Level   Level
	Message string
}

// Notifier receives notifications as they happen.
type Notifier interface {
	Notify(n Notification)
}

// Toast is a queued notification with a handle for dismissal.
type Toast struct {
	ID int
	Notification
}

// ToastQueue collects notifications for a frontend to render and dismiss.
// The zero value is ready to use.
type ToastQueue struct {
	mu     sync.Mutex
	nextID int
	toasts []Toast
}

func (q *ToastQueue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.toasts = append(q.toasts, Toast{ID: q.nextID, Notification: n})
}

// Dismiss removes a toast by id. Unknown ids are ignored.
func (q *ToastQueue) Dismiss(id int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.toasts {
		if t.ID == id {
			q.toasts = append(q.toasts[:i], q.toasts[i+1:]...)
			return
		}
	}
}

// Active returns the queued toasts, oldest first.
func (q *ToastQueue) Active() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]Toast, len(q.toasts))
	copy(out, q.toasts)
	return out
}
