package utils

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrInvalidKeys is returned by VerifyKeys when params carry keys outside the signature.
var ErrInvalidKeys = errors.New("invalid keys")

// KeySet is the signature of a request: the leaf keys allowed at one level
// plus nested signatures for sub-maps.
type KeySet struct {
	names  []string
	nested []nestedKeySet
}

type nestedKeySet struct {
	name string
	keys KeySet
}

// Keys starts a signature with the given leaf keys.
func Keys(names ...string) KeySet {
	return KeySet{names: append([]string(nil), names...)}
}

// Nest returns a copy of k that also accepts a sub-map under name.
func (k KeySet) Nest(name string, keys KeySet) KeySet {
	out := KeySet{
		names:  append([]string(nil), k.names...),
		nested: append([]nestedKeySet(nil), k.nested...),
	}
	out.nested = append(out.nested, nestedKeySet{name: name, keys: keys})
	return out
}

// Flatten returns every allowed key in bracketed form, sorted.
func (k KeySet) Flatten() []string {
	flat := k.flatten("")
	sort.Strings(flat)
	return flat
}

func (k KeySet) flatten(namespace string) []string {
	var flat []string
	for _, name := range k.names {
		flat = append(flat, namespacedKey(namespace, name))
	}
	for _, n := range k.nested {
		flat = append(flat, n.keys.flatten(namespacedKey(namespace, n.name))...)
	}
	return flat
}

// FlattenKeys returns every leaf key of params in bracketed form, sorted.
func FlattenKeys(params map[string]any) []string {
	flat := flattenKeys(params, "")
	sort.Strings(flat)
	return flat
}

func flattenKeys(params map[string]any, namespace string) []string {
	var flat []string
	for key, value := range params {
		fullKey := namespacedKey(namespace, key)
		if nested, ok := value.(map[string]any); ok {
			flat = append(flat, flattenKeys(nested, fullKey)...)
			continue
		}
		flat = append(flat, fullKey)
	}
	return flat
}

// VerifyKeys rejects params that carry any key the signature does not allow.
// The error lists the offending keys sorted and comma-separated.
func VerifyKeys(valid KeySet, params map[string]any) error {
	allowed := make(map[string]struct{})
	for _, key := range valid.Flatten() {
		allowed[key] = struct{}{}
	}

	var invalid []string
	for _, key := range FlattenKeys(params) {
		if _, ok := allowed[key]; !ok {
			invalid = append(invalid, key)
		}
	}
	if len(invalid) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrInvalidKeys, strings.Join(invalid, ", "))
}

func namespacedKey(namespace, key string) string {
	if namespace == "" {
		return key
	}
	return namespace + "[" + key + "]"
}
