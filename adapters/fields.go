/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package adapters

import "fmt"

// Field accessors for decoded JSON payloads. Upstream frameworks omit
// fields freely and disagree on numeric types, so every accessor resolves
// an absent or mistyped field to a documented default instead of an error.

// StringField returns the string at key, or "" when absent or not a string.
func StringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

// MapField returns the object at key, or nil when absent or not an object.
func MapField(m map[string]any, key string) map[string]any {
	v, _ := m[key].(map[string]any)
	return v
}

// SliceField returns the array at key, or nil when absent or not an array.
func SliceField(m map[string]any, key string) []any {
	v, _ := m[key].([]any)
	return v
}

// FloatField returns the number at key, or 0 when absent. JSON numbers
// decode as float64; integer values are widened.
func FloatField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// IntField returns the number at key truncated to int, or 0 when absent.
func IntField(m map[string]any, key string) int {
	return int(FloatField(m, key))
}

// BoolField returns the boolean at key, or def when absent or not a
// boolean.
func BoolField(m map[string]any, key string, def bool) bool {
	if v, ok := m[key].(bool); ok {
		return v
	}
	return def
}

// Stringify renders any decoded JSON value as a string: strings pass
// through, everything else takes its default formatting.
func Stringify(v any) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
