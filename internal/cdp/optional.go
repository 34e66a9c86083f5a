package cdp

import "encoding/json"

// Opt is a value that is either present or absent. Bindings use it for
// optional command parameters and payload fields, where absent and zero
// mean different things on the wire.
type Opt[T any] struct {
	value T
	set   bool
}

// Some returns a present value.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// None returns an absent value.
func None[T any]() Opt[T] {
	return Opt[T]{}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether the value is present.
func (o Opt[T]) IsSet() bool {
	return o.set
}

// Or returns the value, or def when absent.
func (o Opt[T]) Or(def T) T {
	if o.set {
		return o.value
	}
	return def
}

// MarshalJSON encodes an absent value as null. Command parameters should
// go through SetOpt instead, which leaves absent keys out.
func (o Opt[T]) MarshalJSON() ([]byte, error) {
	if !o.set {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}

// Params is the parameter object of a command.
type Params map[string]any

// Set stores v under key and returns p for chaining.
func (p Params) Set(key string, v any) Params {
	p[key] = v
	return p
}

// SetOpt stores the value of o under key when present. An absent o leaves
// the key out of p entirely; it is never encoded as null.
func SetOpt[T any](p Params, key string, o Opt[T]) Params {
	if v, ok := o.Get(); ok {
		p[key] = v
	}
	return p
}
