// Package types holds the value model shared by every endpoint: closed
// enumerations with their canonical wire strings and model identifiers.
//
// Every enumeration is a named string type. Its zero value is not a valid
// variant; use the documented default constant when a value is required.
// Decoding an unknown wire string fails with *UnknownValueError so that
// closed sets stay closed end to end.
package types

import (
	"encoding/json"
	"fmt"
)

// UnknownValueError reports a wire string outside an enumeration's closed set.
type UnknownValueError struct {
	// Type is the Go enumeration name (e.g. "Voice").
	Type string

	// Value is the rejected wire string.
	Value string

	// category is ErrResponseShape for decoded payloads and
	// ErrInvalidArgument for caller input.
	category error
}

// Error implements the error interface.
func (e *UnknownValueError) Error() string {
	return fmt.Sprintf("unknown %s value %q", e.Type, e.Value)
}

// Unwrap returns the error category.
func (e *UnknownValueError) Unwrap() error {
	return e.category
}

// unmarshalEnum decodes a JSON string into dst and checks it against valid.
func unmarshalEnum[T ~string](data []byte, dst *T, typeName string, valid func(T) bool) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("%w: %s must be a JSON string: %v", ErrResponseShape, typeName, err)
	}
	v := T(s)
	if !valid(v) {
		return &UnknownValueError{Type: typeName, Value: s, category: ErrResponseShape}
	}
	*dst = v
	return nil
}

// parseEnum converts s into T when it is a member of the set.
func parseEnum[T ~string](s string, typeName string, valid func(T) bool) (T, error) {
	v := T(s)
	if !valid(v) {
		return "", &UnknownValueError{Type: typeName, Value: s, category: ErrInvalidArgument}
	}
	return v, nil
}

func member[T ~string](set []T) func(T) bool {
	return func(v T) bool {
		for _, s := range set {
			if s == v {
				return true
			}
		}
		return false
	}
}

