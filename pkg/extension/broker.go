package extension

import (
	"errors"
	"sync"
	"time"
)

// EventBroker maintains an ordered list of listeners for one synchronous
// event type.  Emit stops at the first listener returning a non-nil result.
type EventBroker[E any, R any] struct {
	sync.RWMutex
	listenerNames []string     // Ordered listener names.
	listenerFuncs []func(E) *R // Ordered listener functions.
}

// Emit sends the provided event to each registered listener in order, until
// one returns a non-nil result.  That result will be returned to the caller.
func (eb *EventBroker[E, R]) Emit(event *E) *R {
	eb.RLock()
	defer eb.RUnlock()

	for _, l := range eb.listenerFuncs {
		// Events are copied to minimize the risk of mutation.
		if result := l(*event); result != nil {
			return result
		}
	}

	return nil
}

// AddListener registers the named listener, replacing one with a duplicate
// name if present.  Listeners should be added in order of priority, most
// significant first.
func (eb *EventBroker[E, R]) AddListener(name string, listener func(E) *R) {
	eb.Lock()
	defer eb.Unlock()

	removeListener(&eb.listenerNames, &eb.listenerFuncs, name)
	eb.listenerNames = append(eb.listenerNames, name)
	eb.listenerFuncs = append(eb.listenerFuncs, listener)
}

// RemoveListener unregisters the named listener.
func (eb *EventBroker[E, R]) RemoveListener(name string) {
	eb.Lock()
	defer eb.Unlock()

	removeListener(&eb.listenerNames, &eb.listenerFuncs, name)
}

// AsyncEventBroker maintains an ordered list of listeners for one
// asynchronous event type.  Events go to all listeners and no result is
// returned.
type AsyncEventBroker[E any] struct {
	sync.RWMutex
	listenerNames []string  // Ordered listener names.
	listenerFuncs []func(E) // Ordered listener functions.
}

// Emit sends the provided event to each registered listener in parallel.
func (eb *AsyncEventBroker[E]) Emit(event *E) {
	eb.RLock()
	defer eb.RUnlock()

	for _, l := range eb.listenerFuncs {
		// Events are copied to minimize the risk of mutation.
		go l(*event)
	}
}

// AddListener registers the named listener, replacing one with a duplicate
// name if present.
func (eb *AsyncEventBroker[E]) AddListener(name string, listener func(E)) {
	eb.Lock()
	defer eb.Unlock()

	removeListener(&eb.listenerNames, &eb.listenerFuncs, name)
	eb.listenerNames = append(eb.listenerNames, name)
	eb.listenerFuncs = append(eb.listenerFuncs, listener)
}

// RemoveListener unregisters the named listener.
func (eb *AsyncEventBroker[E]) RemoveListener(name string) {
	eb.Lock()
	defer eb.Unlock()

	removeListener(&eb.listenerNames, &eb.listenerFuncs, name)
}

// AsyncTestListener returns a func that will wait for an event and return it,
// or time out with an error.
func (eb *AsyncEventBroker[E]) AsyncTestListener(name string, capacity int) func() (*E, error) {
	// Send event down channel.
	events := make(chan E, capacity)
	eb.AddListener(name,
		func(msg E) {
			events <- msg
		})

	count := 0

	return func() (*E, error) {
		count++

		defer func() {
			if count >= capacity {
				eb.RemoveListener(name)
				close(events)
			}
		}()

		select {
		case event := <-events:
			return &event, nil

		case <-time.After(time.Second * 2):
			return nil, errors.New("timeout waiting for event")
		}
	}
}

// removeListener drops the named entry from parallel name/func slices.
func removeListener[F any](names *[]string, funcs *[]F, name string) {
	for i, entry := range *names {
		if entry == name {
			*names = append((*names)[:i], (*names)[i+1:]...)
			*funcs = append((*funcs)[:i], (*funcs)[i+1:]...)
			break
		}
	}
}
