package cdp

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"

	"github.com/sirupsen/logrus"
)

// Caller sends a command and returns its raw result. *Session implements it.
type Caller interface {
	SendContext(ctx context.Context, method string, params any) (json.RawMessage, error)
}

// Subscriber registers event subscriptions. *Session implements it.
type Subscriber interface {
	Subscribe(methods ...string) *Subscription
}

// Call sends method and decodes its result into R. A result that does not
// decode fails with an error wrapping ErrMalformedResponse.
func Call[R any](ctx context.Context, c Caller, method string, params any) (R, error) {
	var out R
	raw, err := c.SendContext(ctx, method, params)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("%s: %w: %w", method, ErrMalformedResponse, err)
	}
	return out, nil
}

// Exec sends method and discards its result.
func Exec(ctx context.Context, c Caller, method string, params any) error {
	_, err := c.SendContext(ctx, method, params)
	return err
}

// Stream is a subscription whose payloads decode into T.
type Stream[T any] struct {
	sub *Subscription
	log logrus.FieldLogger
}

// Listen subscribes to method and decodes each payload into T. A payload
// that fails to decode is logged and skipped; it never ends the stream and
// never reaches other subscribers of the same method.
func Listen[T any](s Subscriber, method string) *Stream[T] {
	sub := s.Subscribe(method)
	return &Stream[T]{
		sub: sub,
		log: sub.session.log.WithField("method", method),
	}
}

// Next returns the next decodable payload.
func (st *Stream[T]) Next(ctx context.Context) (T, error) {
	for {
		evt, err := st.sub.Next(ctx)
		if err != nil {
			var zero T
			return zero, err
		}

		params := evt.Params
		if len(params) == 0 {
			params = json.RawMessage("{}")
		}

		var v T
		if err := json.Unmarshal(params, &v); err != nil {
			st.log.WithError(err).Warn("cdp: dropped undecodable event")
			continue
		}
		return v, nil
	}
}

// All returns the stream as a sequence, ending like Subscription.All.
func (st *Stream[T]) All(ctx context.Context) iter.Seq[T] {
	return func(yield func(T) bool) {
		for {
			v, err := st.Next(ctx)
			if err != nil {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Dropped returns how many raw events were discarded for queue overflow.
func (st *Stream[T]) Dropped() uint64 {
	return st.sub.Dropped()
}

// Close cancels the underlying subscription.
func (st *Stream[T]) Close() {
	st.sub.Unsubscribe()
}
