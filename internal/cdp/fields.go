package cdp

import (
	"encoding/json"
	"fmt"
)

// Fields is a payload object split into its raw members. Bindings decode
// each member with an explicit type so that a missing or mistyped field
// fails loudly instead of defaulting to a zero value.
type Fields map[string]json.RawMessage

// DecodeFields splits a JSON object. An empty or null payload yields an
// empty set of fields.
func DecodeFields(data []byte) (Fields, error) {
	if len(data) == 0 {
		return Fields{}, nil
	}
	var f Fields
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("payload is not an object: %w", err)
	}
	if f == nil {
		f = Fields{}
	}
	return f, nil
}

// Has reports whether name is present and not null.
func (f Fields) Has(name string) bool {
	raw, ok := f[name]
	return ok && !isNull(raw)
}

// Required decodes field name into dst. A missing or null field is an
// error wrapping ErrMissingField.
func Required[T any](f Fields, name string, dst *T) error {
	raw, ok := f[name]
	if !ok || isNull(raw) {
		return &FieldError{Field: name, Err: ErrMissingField}
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &FieldError{Field: name, Err: err}
	}
	return nil
}

// Optional decodes field name into dst when present. A missing or null
// field leaves dst absent.
func Optional[T any](f Fields, name string, dst *Opt[T]) error {
	raw, ok := f[name]
	if !ok || isNull(raw) {
		*dst = None[T]()
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return &FieldError{Field: name, Err: err}
	}
	*dst = Some(v)
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
