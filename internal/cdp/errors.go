package cdp

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrSessionClosed is returned by every operation on a terminated session.
// Errors carrying a close reason are *ClosedError and match it via errors.Is.
var ErrSessionClosed = errors.New("session closed")

// ErrMalformedResponse is returned by a send whose response frame, or
// whose result payload, could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// ErrUnsubscribed is returned by Subscription.Next after Unsubscribe.
var ErrUnsubscribed = errors.New("subscription cancelled")

// ErrUnknownEnumValue matches every *UnknownEnumValueError.
var ErrUnknownEnumValue = errors.New("unknown enum value")

// ErrMissingField matches a *FieldError for an absent required field.
var ErrMissingField = errors.New("missing required field")

// ProtocolError is a command failure reported by the peer.
type ProtocolError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *ProtocolError) Error() string {
	if len(e.Data) > 0 && string(e.Data) != "null" {
		var text string
		if json.Unmarshal(e.Data, &text) != nil {
			text = string(e.Data)
		}
		return fmt.Sprintf("cdp error %d: %s (%s)", e.Code, e.Message, text)
	}
	return fmt.Sprintf("cdp error %d: %s", e.Code, e.Message)
}

// ClosedError reports why a session terminated.
type ClosedError struct {
	Reason string
}

// Error implements the error interface.
func (e *ClosedError) Error() string {
	if e.Reason == "" {
		return ErrSessionClosed.Error()
	}
	return fmt.Sprintf("%s: %s", ErrSessionClosed, e.Reason)
}

// Is makes every *ClosedError match ErrSessionClosed.
func (e *ClosedError) Is(target error) bool {
	return target == ErrSessionClosed
}

// DecodeError is a frame that violates the wire envelope. ID is non-zero
// when the frame named a request id.
type DecodeError struct {
	ID  int64
	Err error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("decode frame (id %d): %v", e.ID, e.Err)
	}
	return fmt.Sprintf("decode frame: %v", e.Err)
}

// Unwrap returns the underlying parse failure.
func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FieldError is a payload field that is missing or has the wrong shape.
type FieldError struct {
	Field string
	Err   error
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

// Unwrap returns ErrMissingField or the JSON decoding error.
func (e *FieldError) Unwrap() error {
	return e.Err
}

// UnknownEnumValueError is a wire string outside an enum's closed set.
type UnknownEnumValueError struct {
	Type  string
	Value string
}

// Error implements the error interface.
func (e *UnknownEnumValueError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Type, e.Value)
}

// Is makes every *UnknownEnumValueError match ErrUnknownEnumValue.
func (e *UnknownEnumValueError) Is(target error) bool {
	return target == ErrUnknownEnumValue
}
