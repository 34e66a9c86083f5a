package cdp

import (
	"context"
	"iter"
	"sync"
	"sync/atomic"
)

// Subscription is a live registration for events by method name.
//
// Each subscription owns a bounded queue filled by the session's read
// loop. The read loop never waits on a subscriber: when the queue is full
// the oldest queued event is discarded and counted in Dropped.
type Subscription struct {
	session *Session
	methods map[string]struct{} // nil matches every method
	queue   *queue[Event]
	notify  chan struct{}
	done    chan struct{}
	once    sync.Once
	dropped atomic.Uint64
}

func newSubscription(s *Session, methods []string, buffer int) *Subscription {
	sub := &Subscription{
		session: s,
		queue:   newQueue[Event](buffer),
		notify:  make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
	if len(methods) > 0 {
		sub.methods = make(map[string]struct{}, len(methods))
		for _, m := range methods {
			sub.methods[m] = struct{}{}
		}
	}
	return sub
}

func (sub *Subscription) matches(method string) bool {
	if sub.methods == nil {
		return true
	}
	_, ok := sub.methods[method]
	return ok
}

// deliver queues evt and wakes a waiting Next. It reports whether an older
// event was dropped.
func (sub *Subscription) deliver(evt Event) bool {
	dropped := sub.queue.Push(evt)
	if dropped {
		sub.dropped.Add(1)
	}
	select {
	case sub.notify <- struct{}{}:
	default:
	}
	return dropped
}

// Next blocks until an event is available. Events queued before the
// session closed are still returned; after that Next returns an error
// matching ErrSessionClosed. After Unsubscribe it returns ErrUnsubscribed.
func (sub *Subscription) Next(ctx context.Context) (Event, error) {
	for {
		select {
		case <-sub.done:
			return Event{}, ErrUnsubscribed
		default:
		}

		if evt, ok := sub.queue.Pop(); ok {
			return evt, nil
		}

		select {
		case <-sub.notify:
		case <-sub.done:
			return Event{}, ErrUnsubscribed
		case <-sub.session.closedCh:
			if evt, ok := sub.queue.Pop(); ok {
				return evt, nil
			}
			return Event{}, sub.session.Err()
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// All returns the subscription as a sequence. Iteration ends when the
// session closes, the subscription is cancelled or ctx is done.
func (sub *Subscription) All(ctx context.Context) iter.Seq[Event] {
	return func(yield func(Event) bool) {
		for {
			evt, err := sub.Next(ctx)
			if err != nil {
				return
			}
			if !yield(evt) {
				return
			}
		}
	}
}

// Dropped returns how many events were discarded because the queue was full.
func (sub *Subscription) Dropped() uint64 {
	return sub.dropped.Load()
}

// Unsubscribe removes this subscription only. It is safe to call more
// than once.
func (sub *Subscription) Unsubscribe() {
	sub.once.Do(func() {
		sub.session.unsubscribe(sub)
		close(sub.done)
		sub.queue.Clear()
	})
}
