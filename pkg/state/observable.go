// Package state provides the observable values that drive declarative
// collections and scenes.
//
// An Observable holds a value and notifies subscribers synchronously when the
// value changes. Subscriptions return a cancel func; a [Subscription] owns at
// most one live set of registrations at a time.
//
//	items := state.NewObservable([]string{"a", "b"})
//	cancel := items.Subscribe(func() { fmt.Println(items.Value()) })
//	items.Set([]string{"b", "c"}) // prints [b c]
//	cancel()
package state

import (
	"sync"
	"sync/atomic"
)

// Subscribable is anything that can notify a handler of changes.
type Subscribable interface {
	// Subscribe registers handler and returns a func that removes it.
	Subscribe(handler func()) (cancel func())
}

// Source is a readable, subscribable value.
type Source[T any] interface {
	Subscribable
	Value() T
}

type listener[T any] struct {
	id      int
	fn      func(T)
	removed atomic.Bool
}

// Observable is a mutable value cell with change-listener subscription.
//
// Value, Set, and Update are safe to call from any goroutine, but listeners
// run on the goroutine that changed the value. UI code should only mutate observables from the
// UI thread.
type Observable[T any] struct {
	mu        sync.Mutex
	value     T
	listeners []*listener[T]
	nextID    int
}

// NewObservable creates an observable holding initial.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial}
}

// Value returns the current value.
func (o *Observable[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set replaces the value and notifies listeners.
// A listener removed by an earlier listener during the same dispatch is skipped.
func (o *Observable[T]) Set(value T) {
	o.mu.Lock()
	o.value = value
	listeners := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(value, listeners)
}

// Update replaces the value with transform(current) and notifies listeners.
// The read and the write happen under one lock, so concurrent updates are
// never lost. transform must not call back into o.
func (o *Observable[T]) Update(transform func(T) T) {
	o.mu.Lock()
	o.value = transform(o.value)
	value := o.value
	listeners := o.snapshotLocked()
	o.mu.Unlock()
	o.notify(value, listeners)
}

func (o *Observable[T]) snapshotLocked() []*listener[T] {
	return append([]*listener[T](nil), o.listeners...)
}

func (o *Observable[T]) notify(value T, listeners []*listener[T]) {
	for _, l := range listeners {
		if l.removed.Load() {
			continue
		}
		l.fn(value)
	}
}

// AddListener registers a callback that receives the new value.
// Returns a func that removes the listener; calling it more than once is a no-op.
func (o *Observable[T]) AddListener(fn func(T)) func() {
	if fn == nil {
		return func() {}
	}
	o.mu.Lock()
	id := o.nextID
	o.nextID++
	o.listeners = append(o.listeners, &listener[T]{id: id, fn: fn})
	o.mu.Unlock()

	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		for i, l := range o.listeners {
			if l.id == id {
				l.removed.Store(true)
				o.listeners = append(o.listeners[:i], o.listeners[i+1:]...)
				return
			}
		}
	}
}

// Subscribe registers a handler invoked with no arguments on every change.
func (o *Observable[T]) Subscribe(handler func()) func() {
	if handler == nil {
		return func() {}
	}
	return o.AddListener(func(T) { handler() })
}

// ListenerCount returns the number of registered listeners.
func (o *Observable[T]) ListenerCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.listeners)
}
