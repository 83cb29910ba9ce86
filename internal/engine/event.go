package engine

import "github.com/google/uuid"

// Subscription identifies a listener so it can be removed later.
type Subscription uuid.UUID

type listener[F any] struct {
	id Subscription
	fn F
}

// Event is a multi-cast event. Listeners run in registration order.
type Event struct {
	listeners []listener[func()]
}

// AddListener adds a callback to be invoked when the event fires
func (e *Event) AddListener(callback func()) Subscription {
	if callback == nil {
		return Subscription{}
	}
	id := Subscription(uuid.New())
	e.listeners = append(e.listeners, listener[func()]{id: id, fn: callback})
	return id
}

// RemoveListener drops the listener registered under id. Unknown ids are ignored.
func (e *Event) RemoveListener(id Subscription) {
	e.listeners = removeListener(e.listeners, id)
}

// RemoveAllListeners clears all listeners
func (e *Event) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls all registered listeners
func (e *Event) Invoke() {
	for _, l := range snapshot(e.listeners) {
		l.fn()
	}
}

func (e *Event) GetListenerCount() int {
	return len(e.listeners)
}

// EventWithArg is a generic event with one argument
type EventWithArg[T any] struct {
	listeners []listener[func(T)]
}

func (e *EventWithArg[T]) AddListener(callback func(T)) Subscription {
	if callback == nil {
		return Subscription{}
	}
	id := Subscription(uuid.New())
	e.listeners = append(e.listeners, listener[func(T)]{id: id, fn: callback})
	return id
}

func (e *EventWithArg[T]) RemoveListener(id Subscription) {
	e.listeners = removeListener(e.listeners, id)
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

func (e *EventWithArg[T]) Invoke(arg T) {
	for _, l := range snapshot(e.listeners) {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) GetListenerCount() int {
	return len(e.listeners)
}

// snapshot lets a listener remove itself while the event is firing.
func snapshot[F any](ls []listener[F]) []listener[F] {
	out := make([]listener[F], len(ls))
	copy(out, ls)
	return out
}

func removeListener[F any](ls []listener[F], id Subscription) []listener[F] {
	for i, l := range ls {
		if l.id == id {
			return append(ls[:i:i], ls[i+1:]...)
		}
	}
	return ls
}
