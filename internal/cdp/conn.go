// Package cdp implements the session layer of the Chrome DevTools Protocol:
// request id correlation, event fan-out and the helpers domain bindings use
// to turn untyped payloads into typed values.
package cdp

import (
	"context"

	"github.com/coder/websocket"
)

// Conn is the framed, order-preserving transport a Session runs over.
// *websocket.Conn satisfies it; tests substitute in-memory fakes.
type Conn interface {
	// Read blocks until the next frame arrives.
	Read(ctx context.Context) (websocket.MessageType, []byte, error)

	Write(ctx context.Context, typ websocket.MessageType, p []byte) error

	// Close closes the connection with a status code and reason.
	Close(code websocket.StatusCode, reason string) error
}
