package cdp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Kind identifies which side of the protocol a frame belongs to.
type Kind int

const (
	// KindRequest is a command carrying id, method and params. Clients
	// send them; ParseMessage reports one when a peer sends it to us.
	KindRequest Kind = iota + 1
	// KindResponse answers a request by id with either a result or an error.
	KindResponse
	// KindEvent is an unsolicited notification with a method and no id.
	KindEvent
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindResponse:
		return "response"
	case KindEvent:
		return "event"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Request represents a CDP command request.
type Request struct {
	ID        int64  `json:"id"`
	Method    string `json:"method"`
	Params    any    `json:"params,omitempty"`
	SessionID string `json:"sessionId,omitempty"`
}

// Event represents a CDP event notification.
type Event struct {
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params,omitempty"`
	SessionID string          `json:"sessionId,omitempty"`
}

// Message is a parsed inbound frame. Kind selects which fields are valid:
// responses carry ID and exactly one of Result or Error, events carry
// Method and Params, requests carry ID, Method and Params.
type Message struct {
	Kind      Kind
	ID        int64
	Method    string
	Params    json.RawMessage
	Result    json.RawMessage
	Error     *ProtocolError
	SessionID string
}

// Event returns the event view of an event message.
func (m *Message) Event() Event {
	return Event{Method: m.Method, Params: m.Params, SessionID: m.SessionID}
}

// envelope is the wire shape shared by every frame. Bodies stay raw so that
// presence can be told apart from zero values.
type envelope struct {
	ID        *int64          `json:"id"`
	Method    string          `json:"method"`
	Params    json.RawMessage `json:"params"`
	Result    json.RawMessage `json:"result"`
	Error     json.RawMessage `json:"error"`
	SessionID string          `json:"sessionId"`
}

// ParseMessage decodes a raw frame into a response, event or request
// message.
// Unknown fields are ignored. A response that cannot be trusted still
// reports its id through the returned *DecodeError so the caller waiting on
// it can be failed.
func ParseMessage(data []byte) (*Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, &DecodeError{Err: fmt.Errorf("parse frame: %w", err)}
	}

	if env.ID == nil {
		if env.Method == "" {
			return nil, &DecodeError{Err: errors.New("frame has neither id nor method")}
		}
		return &Message{
			Kind:      KindEvent,
			Method:    env.Method,
			Params:    env.Params,
			SessionID: env.SessionID,
		}, nil
	}

	id := *env.ID
	hasResult := len(env.Result) > 0
	hasError := len(env.Error) > 0 && string(env.Error) != "null"

	switch {
	case hasResult && hasError:
		return nil, &DecodeError{ID: id, Err: errors.New("response has both result and error")}
	case hasError:
		var perr ProtocolError
		if err := json.Unmarshal(env.Error, &perr); err != nil {
			return nil, &DecodeError{ID: id, Err: fmt.Errorf("parse error body: %w", err)}
		}
		return &Message{Kind: KindResponse, ID: id, Error: &perr, SessionID: env.SessionID}, nil
	case hasResult:
		return &Message{Kind: KindResponse, ID: id, Result: env.Result, SessionID: env.SessionID}, nil
	case env.Method != "":
		return &Message{
			Kind:      KindRequest,
			ID:        id,
			Method:    env.Method,
			Params:    env.Params,
			SessionID: env.SessionID,
		}, nil
	default:
		return nil, &DecodeError{ID: id, Err: errors.New("response has neither result nor error")}
	}
}

// EncodeRequest serializes a command request. Nil params are left out of
// the frame entirely.
func EncodeRequest(req Request) ([]byte, error) {
	if req.Method == "" {
		return nil, errors.New("request has no method")
	}
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return data, nil
}
