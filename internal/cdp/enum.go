package cdp

import (
	"encoding/json"
	"fmt"
)

// ParseEnum returns the member of values equal to raw. Any other string
// fails with *UnknownEnumValueError; there is no fallback member.
func ParseEnum[E ~string](typeName, raw string, values []E) (E, error) {
	for _, v := range values {
		if string(v) == raw {
			return v, nil
		}
	}
	var zero E
	return zero, &UnknownEnumValueError{Type: typeName, Value: raw}
}

// UnmarshalEnum decodes a JSON string into a member of values.
func UnmarshalEnum[E ~string](typeName string, data []byte, values []E) (E, error) {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		var zero E
		return zero, fmt.Errorf("decode %s: %w", typeName, err)
	}
	return ParseEnum(typeName, raw, values)
}
