package cdp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/websocket"
	"github.com/sirupsen/logrus"
)

// DefaultTimeout is the default timeout for CDP commands sent with Send.
const DefaultTimeout = 30 * time.Second

// DefaultEventBuffer is the default per-subscription event queue size.
const DefaultEventBuffer = 1024

// MaxFrameSize is the read limit applied to dialed connections. Cookie
// jars and usage reports routinely exceed the websocket default of 32KiB.
const MaxFrameSize = 64 << 20

// maxCloseReason is the largest reason a websocket close frame can carry.
const maxCloseReason = 123

// Session multiplexes concurrent commands and an event stream over one
// connection.
type Session struct {
	conn        Conn
	log         logrus.FieldLogger
	timeout     time.Duration
	eventBuffer int

	writeMu sync.Mutex
	msgID   atomic.Int64

	// mu guards pending, subs and the closed state.
	mu       sync.Mutex
	pending  map[int64]*pendingCall
	subs     []*Subscription // copy-on-write; dispatch iterates a snapshot
	closed   bool
	closeErr *ClosedError

	// closedCh is closed once the session has terminated.
	closedCh chan struct{}
	// done is closed when the read loop exits.
	done chan struct{}
}

// pendingCall is the completion slot of one outstanding command. Only the
// party that removes it from Session.pending may resolve it.
type pendingCall struct {
	method string
	ch     chan callResult
}

type callResult struct {
	result json.RawMessage
	err    error
}

func (p *pendingCall) resolve(res callResult) {
	p.ch <- res
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger used for protocol anomalies.
func WithLogger(l logrus.FieldLogger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout sets the timeout Send applies to each command.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithEventBuffer sets how many undelivered events each subscription
// holds before the oldest is dropped.
func WithEventBuffer(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.eventBuffer = n
		}
	}
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// NewSession creates a session over conn and starts its read loop.
func NewSession(conn Conn, opts ...Option) *Session {
	s := &Session{
		conn:        conn,
		log:         discardLogger(),
		timeout:     DefaultTimeout,
		eventBuffer: DefaultEventBuffer,
		pending:     make(map[int64]*pendingCall),
		closedCh:    make(chan struct{}),
		done:        make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	go s.readLoop()
	return s
}

// Dial connects to a CDP WebSocket endpoint and returns a new session.
func Dial(ctx context.Context, wsURL string, opts ...Option) (*Session, error) {
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to CDP endpoint: %w", err)
	}
	conn.SetReadLimit(MaxFrameSize)
	return NewSession(conn, opts...), nil
}

// Send sends a command and waits for its result using the session timeout.
func (s *Session) Send(method string, params any) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	return s.SendContext(ctx, method, params)
}

// SendContext sends a command and waits for its result, the end of ctx, or
// the end of the session. Abandoning the call through ctx releases its
// pending slot; a late answer from the peer is then ignored.
func (s *Session) SendContext(ctx context.Context, method string, params any) (json.RawMessage, error) {
	return s.send(ctx, "", method, params)
}

// SendToSession sends a command to a flattened target session.
func (s *Session) SendToSession(ctx context.Context, sessionID, method string, params any) (json.RawMessage, error) {
	return s.send(ctx, sessionID, method, params)
}

func (s *Session) send(ctx context.Context, sessionID, method string, params any) (json.RawMessage, error) {
	if p, ok := params.(Params); ok && p == nil {
		params = nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	id := s.msgID.Add(1)
	data, err := EncodeRequest(Request{
		ID:        id,
		Method:    method,
		Params:    params,
		SessionID: sessionID,
	})
	if err != nil {
		return nil, err
	}

	// Register before writing so a fast response always finds its slot.
	call := &pendingCall{method: method, ch: make(chan callResult, 1)}
	s.mu.Lock()
	if s.closed {
		cerr := s.closeErr
		s.mu.Unlock()
		return nil, cerr
	}
	s.pending[id] = call
	s.mu.Unlock()

	// The websocket closes the connection when a write's context ends, so
	// the caller's ctx only bounds the wait below.
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	s.writeMu.Lock()
	err = s.conn.Write(wctx, websocket.MessageText, data)
	s.writeMu.Unlock()
	cancel()
	if err != nil {
		if !s.forget(id) {
			// Resolved concurrently, most likely by Close.
			res := <-call.ch
			return res.result, res.err
		}
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}

	select {
	case res := <-call.ch:
		return res.result, res.err
	case <-ctx.Done():
		if !s.forget(id) {
			res := <-call.ch
			return res.result, res.err
		}
		return nil, fmt.Errorf("%s abandoned: %w", method, ctx.Err())
	}
}

// take removes and returns the pending call for id.
func (s *Session) take(id int64) *pendingCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	call, ok := s.pending[id]
	if !ok {
		return nil
	}
	delete(s.pending, id)
	return call
}

// forget drops the pending call for id. It returns false if the call was
// already taken by someone else, who is then responsible for resolving it.
func (s *Session) forget(id int64) bool {
	return s.take(id) != nil
}

// Subscribe registers interest in events whose method is one of methods.
// With no methods the subscription receives every event.
func (s *Session) Subscribe(methods ...string) *Subscription {
	sub := newSubscription(s, methods, s.eventBuffer)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return sub
	}
	subs := make([]*Subscription, len(s.subs), len(s.subs)+1)
	copy(subs, s.subs)
	s.subs = append(subs, sub)
	return sub
}

func (s *Session) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, candidate := range s.subs {
		if candidate != sub {
			continue
		}
		subs := make([]*Subscription, 0, len(s.subs)-1)
		subs = append(subs, s.subs[:i]...)
		s.subs = append(subs, s.subs[i+1:]...)
		return
	}
}

// Close terminates the session: every pending command fails with a
// *ClosedError carrying reason, every subscription ends once drained, and
// the transport is closed. Closing a closed session is a no-op.
func (s *Session) Close(reason string) error {
	if !s.terminate(&ClosedError{Reason: reason}) {
		return nil
	}

	err := s.conn.Close(websocket.StatusNormalClosure, truncate(reason, maxCloseReason))

	<-s.done
	return err
}

// Done returns a channel that is closed when the session terminates.
func (s *Session) Done() <-chan struct{} {
	return s.closedCh
}

// Err returns why the session terminated, or nil while it is open.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closeErr == nil {
		return nil
	}
	return s.closeErr
}

// Pending returns the number of commands awaiting a response.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// terminate moves the session to the closed state exactly once and fails
// all pending calls. It reports whether this call did the transition.
func (s *Session) terminate(cerr *ClosedError) bool {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return false
	}
	s.closed = true
	s.closeErr = cerr
	pending := s.pending
	s.pending = make(map[int64]*pendingCall)
	s.subs = nil
	s.mu.Unlock()

	close(s.closedCh)

	for _, call := range pending {
		call.resolve(callResult{err: cerr})
	}
	if len(pending) > 0 {
		s.log.WithField("pending", len(pending)).Debug("cdp: failed pending commands on close")
	}
	return true
}

// readLoop reads frames and dispatches them one at a time, in arrival order.
func (s *Session) readLoop() {
	defer close(s.done)

	ctx := context.Background()
	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if s.terminate(&ClosedError{Reason: err.Error()}) {
				s.log.WithError(err).Warn("cdp: transport closed")
				_ = s.conn.Close(websocket.StatusGoingAway, "read failed")
			}
			return
		}
		s.dispatch(data)
	}
}

func (s *Session) dispatch(data []byte) {
	msg, err := ParseMessage(data)
	if err != nil {
		s.dispatchDecodeError(err, data)
		return
	}

	switch msg.Kind {
	case KindResponse:
		s.dispatchResponse(msg)
	case KindEvent:
		s.dispatchEvent(msg.Event())
	case KindRequest:
		// Its id belongs to the peer's numbering, not ours.
		s.log.WithFields(logrus.Fields{
			"id":     msg.ID,
			"method": msg.Method,
		}).Warn("cdp: ignored inbound request")
	}
}

// dispatchResponse resolves the caller waiting on msg.ID. Responses for
// unknown ids (never sent, already resolved, or abandoned) are ignored.
func (s *Session) dispatchResponse(msg *Message) {
	call := s.take(msg.ID)
	if call == nil {
		s.log.WithField("id", msg.ID).Debug("cdp: response for unknown id")
		return
	}
	if msg.Error != nil {
		call.resolve(callResult{err: msg.Error})
		return
	}
	call.resolve(callResult{result: msg.Result})
}

// dispatchEvent queues evt on every matching subscription without waiting
// for any subscriber.
func (s *Session) dispatchEvent(evt Event) {
	s.mu.Lock()
	subs := s.subs
	s.mu.Unlock()

	for _, sub := range subs {
		if !sub.matches(evt.Method) {
			continue
		}
		if sub.deliver(evt) {
			s.log.WithFields(logrus.Fields{
				"method":   evt.Method,
				"dropped":  sub.Dropped(),
				"queued":   sub.queue.Len(),
				"capacity": sub.queue.Cap(),
			}).Warn("cdp: subscriber queue full, dropped oldest event")
		}
	}
}

func (s *Session) dispatchDecodeError(err error, data []byte) {
	var derr *DecodeError
	if errors.As(err, &derr) && derr.ID != 0 {
		if call := s.take(derr.ID); call != nil {
			call.resolve(callResult{err: fmt.Errorf("%s: %w: %w", call.method, ErrMalformedResponse, derr)})
			return
		}
	}
	s.log.WithError(err).WithField("frame", truncate(string(data), 256)).Warn("cdp: dropped malformed frame")
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
