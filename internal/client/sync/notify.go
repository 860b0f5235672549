package sync

import (
	"sync"
	"time"
)

// BootstrapCompleted is delivered to subscribers after a bootstrap finished
// and the cursor was persisted
type BootstrapCompleted struct {
	At     time.Time
	Cursor int64
}

type notifier struct {
	subs   map[int]chan BootstrapCompleted
	nextID int
	mu     sync.Mutex
}

func newNotifier() *notifier {
	return &notifier{subs: make(map[int]chan BootstrapCompleted)}
}

func (n *notifier) subscribe() (<-chan BootstrapCompleted, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	id := n.nextID
	n.nextID++
	ch := make(chan BootstrapCompleted, 1)
	n.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			n.mu.Lock()
			defer n.mu.Unlock()
			delete(n.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publish не блокируется: медленный подписчик пропускает сигнал
func (n *notifier) publish(ev BootstrapCompleted) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
