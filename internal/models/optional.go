package models

import (
	"encoding/json"
	"fmt"
)

// Optional holds a patch field that may be absent.
// For nullable columns use Optional[*T]: Set with a nil Value clears the column.
type Optional[T any] struct {
	Value T
	Set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Set: true}
}

// SomePtr returns a present nullable Optional pointing at v.
func SomePtr[T any](v T) Optional[*T] {
	return Optional[*T]{Value: &v, Set: true}
}

// Null returns a present nullable Optional that clears the field.
func Null[T any]() Optional[*T] {
	return Optional[*T]{Set: true}
}

// Get returns the value and whether it was set.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Set
}

// Or returns the value when set, fallback otherwise.
func (o Optional[T]) Or(fallback T) T {
	if o.Set {
		return o.Value
	}
	return fallback
}

func (o Optional[T]) put(m map[string]any, key string) {
	if o.Set {
		m[key] = o.Value
	}
}

// take decodes raw[key] into dst when the key is present.
func take[T any](raw map[string]json.RawMessage, key string, dst *Optional[T]) error {
	data, ok := raw[key]
	if !ok {
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = Some(v)
	return nil
}
