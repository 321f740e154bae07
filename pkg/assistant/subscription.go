package assistant

import "sync"

// Subscriber is a callback invoked with a state snapshot after every mutation.
type Subscriber func(State)

// subscriberList is the fan-out bus for state notifications. Callbacks run
// synchronously in registration order; a panic in one callback must not stop
// the rest, and the whole fan-out is serialized so subscribers never observe
// interleaved notifications.
type subscriberList struct {
	mu       sync.Mutex
	notifyMu sync.Mutex
	nextID   int
	order    []int
	subs     map[int]Subscriber
	logger   Logger
}

func newSubscriberList(logger Logger) *subscriberList {
	return &subscriberList{
		subs:   make(map[int]Subscriber),
		logger: logger,
	}
}

// add registers a callback and returns an idempotent unsubscribe function.
func (sl *subscriberList) add(fn Subscriber) func() {
	sl.mu.Lock()
	defer sl.mu.Unlock()

	id := sl.nextID
	sl.nextID++
	sl.subs[id] = fn
	sl.order = append(sl.order, id)

	return func() {
		sl.mu.Lock()
		defer sl.mu.Unlock()
		if _, ok := sl.subs[id]; !ok {
			return // already removed, no-op
		}
		delete(sl.subs, id)
		for i, v := range sl.order {
			if v == id {
				sl.order = append(sl.order[:i], sl.order[i+1:]...)
				break
			}
		}
	}
}

// notify fans the snapshot out to every subscriber in registration order.
func (sl *subscriberList) notify(state State) {
	sl.notifyMu.Lock()
	defer sl.notifyMu.Unlock()

	sl.mu.Lock()
	callbacks := make([]Subscriber, 0, len(sl.order))
	for _, id := range sl.order {
		if fn, ok := sl.subs[id]; ok {
			callbacks = append(callbacks, fn)
		}
	}
	sl.mu.Unlock()

	for _, fn := range callbacks {
		sl.invoke(fn, state)
	}
}

// invoke isolates subscriber panics so one bad callback cannot starve the rest.
func (sl *subscriberList) invoke(fn Subscriber, state State) {
	defer func() {
		if r := recover(); r != nil {
			sl.logger.Error("Subscriber panicked", "panic", r)
		}
	}()
	fn(state)
}
