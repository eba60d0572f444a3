package utils

import "strings"

// ExtractAttributeAsArray removes key from m and returns its value as a slice.
// A single value is wrapped; an absent key yields nil.
func ExtractAttributeAsArray(m map[string]any, key string) []any {
	value, ok := m[key]
	if !ok {
		return nil
	}
	delete(m, key)
	if values, ok := value.([]any); ok {
		return values
	}
	return []any{value}
}

// Underscore converts a dashed XML element name to its underscored form.
func Underscore(name string) string {
	return strings.ReplaceAll(name, "-", "_")
}

// Dasherize converts an underscored key to the dashed form used on the wire.
func Dasherize(name string) string {
	return strings.ReplaceAll(name, "_", "-")
}
