// Package cdptest provides an in-memory CDP peer for tests.
package cdptest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/coder/websocket"
	"github.com/grantcarthew/storagectl/internal/cdp"
)

// HandlerFunc answers one command. Returning a non-nil *cdp.ProtocolError
// sends an error response instead of result.
type HandlerFunc func(params json.RawMessage) (result any, perr *cdp.ProtocolError)

// Conn is a fake peer implementing cdp.Conn. Commands are answered by
// registered handlers as soon as they are written; unknown methods get the
// same -32601 error Chrome returns.
type Conn struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc
	requests [][]byte
	readCh   chan []byte
	closed   bool
	closeCh  chan struct{}
}

// NewConn returns a fake peer with no handlers.
func NewConn() *Conn {
	return &Conn{
		handlers: make(map[string]HandlerFunc),
		readCh:   make(chan []byte, 256),
		closeCh:  make(chan struct{}),
	}
}

// Handle registers fn for method.
func (c *Conn) Handle(method string, fn HandlerFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[method] = fn
}

// Result registers a handler that always returns result.
func (c *Conn) Result(method string, result any) {
	c.Handle(method, func(json.RawMessage) (any, *cdp.ProtocolError) {
		return result, nil
	})
}

// Emit queues an event frame.
func (c *Conn) Emit(method string, params any) error {
	data, err := json.Marshal(struct {
		Method string `json:"method"`
		Params any    `json:"params,omitempty"`
	}{method, params})
	if err != nil {
		return err
	}
	return c.Inject(data)
}

// Inject queues a raw frame as if the peer had sent it.
func (c *Conn) Inject(frame []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}
	c.readCh <- frame
	return nil
}

// Requests returns every frame written so far.
func (c *Conn) Requests() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.requests))
	copy(out, c.requests)
	return out
}

// LastParams returns the raw params of the last request for method.
func (c *Conn) LastParams(method string) (json.RawMessage, bool) {
	reqs := c.Requests()
	for i := len(reqs) - 1; i >= 0; i-- {
		var req struct {
			Method string          `json:"method"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.Unmarshal(reqs[i], &req); err != nil {
			continue
		}
		if req.Method == method {
			return req.Params, true
		}
	}
	return nil, false
}

func (c *Conn) Read(ctx context.Context) (websocket.MessageType, []byte, error) {
	select {
	case frame := <-c.readCh:
		return websocket.MessageText, frame, nil
	case <-c.closeCh:
		return 0, nil, errors.New("connection closed")
	case <-ctx.Done():
		return 0, nil, ctx.Err()
	}
}

func (c *Conn) Write(ctx context.Context, typ websocket.MessageType, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return errors.New("connection closed")
	}
	c.requests = append(c.requests, data)

	var req struct {
		ID     int64           `json:"id"`
		Method string          `json:"method"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return err
	}

	resp := map[string]any{"id": req.ID}
	fn, ok := c.handlers[req.Method]
	if !ok {
		resp["error"] = cdp.ProtocolError{Code: -32601, Message: fmt.Sprintf("'%s' wasn't found", req.Method)}
	} else if result, perr := fn(req.Params); perr != nil {
		resp["error"] = perr
	} else {
		if result == nil {
			result = struct{}{}
		}
		resp["result"] = result
	}

	frame, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	c.readCh <- frame
	return nil
}

func (c *Conn) Close(code websocket.StatusCode, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.closeCh)
	}
	return nil
}
