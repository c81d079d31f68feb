package events

import "sync"

// Handler is a zero-argument change notification callback.
type Handler func()

type subscription struct {
	fn Handler
}

// Bus delivers payload-free notifications to registered handlers.
// The zero value is ready to use.
type Bus struct {
	mu   sync.Mutex
	subs []*subscription
}

// Subscribe registers h and returns a func that removes exactly this
// registration. Calling the returned func more than once is a no-op.
func (b *Bus) Subscribe(h Handler) (unsubscribe func()) {
	if h == nil {
		return func() {}
	}
	sub := &subscription{fn: h}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(sub) })
	}
}

// Emit calls every handler registered at the time of the call, once each,
// in registration order. Handlers added or removed while Emit runs take
// effect on the next Emit.
func (b *Bus) Emit() {
	b.mu.Lock()
	pass := make([]*subscription, len(b.subs))
	copy(pass, b.subs)
	b.mu.Unlock()

	for _, sub := range pass {
		sub.fn()
	}
}

// Len reports the number of registered handlers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bus) remove(target *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := make([]*subscription, 0, len(b.subs))
	for _, sub := range b.subs {
		if sub != target {
			kept = append(kept, sub)
		}
	}
	b.subs = kept
}
