package utils

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// HashToQueryString flattens params into a form-encoded query string.
// Nested maps are addressed with bracketed keys (customer[first_name]=Dan)
// and the pairs at every level are sorted, so the output is deterministic.
func HashToQueryString(params map[string]any) string {
	return hashToQueryString(params, "")
}

func hashToQueryString(params map[string]any, namespace string) string {
	pairs := make([]string, 0, len(params))
	for key, value := range params {
		fullKey := key
		if namespace != "" {
			fullKey = namespace + "[" + key + "]"
		}
		if nested, ok := value.(map[string]any); ok {
			if encoded := hashToQueryString(nested, fullKey); encoded != "" {
				pairs = append(pairs, encoded)
			}
			continue
		}
		pairs = append(pairs, URLEncode(fullKey)+"="+URLEncode(value))
	}
	sort.Strings(pairs)
	return strings.Join(pairs, "&")
}

// ParseQueryString decodes a query string into a flat map. Nested keys are
// left in their bracketed form; see UnflattenQuery.
func ParseQueryString(qs string) map[string]string {
	result := make(map[string]string)
	for _, couplet := range strings.Split(qs, "&") {
		if couplet == "" {
			continue
		}
		key, value, _ := strings.Cut(couplet, "=")
		result[unescape(key)] = unescape(value)
	}
	return result
}

// UnflattenQuery rebuilds nested maps from bracketed keys produced by
// HashToQueryString.
func UnflattenQuery(flat map[string]string) map[string]any {
	result := make(map[string]any)
	for key, value := range flat {
		path := splitBracketKey(key)
		node := result
		for _, segment := range path[:len(path)-1] {
			child, ok := node[segment].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[segment] = child
			}
			node = child
		}
		leaf := path[len(path)-1]
		if _, isMap := node[leaf].(map[string]any); isMap {
			continue
		}
		node[leaf] = value
	}
	return result
}

// splitBracketKey turns "a[b][c]" into [a b c].
func splitBracketKey(key string) []string {
	head, rest, found := strings.Cut(key, "[")
	if !found || !strings.HasSuffix(rest, "]") {
		return []string{key}
	}
	path := []string{head}
	for _, segment := range strings.Split(strings.TrimSuffix(rest, "]"), "][") {
		path = append(path, segment)
	}
	return path
}

// URLEncode form-encodes the string form of v. nil encodes as "".
func URLEncode(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return url.QueryEscape(val)
	case fmt.Stringer:
		return url.QueryEscape(val.String())
	default:
		return url.QueryEscape(fmt.Sprint(val))
	}
}

func unescape(s string) string {
	if decoded, err := url.QueryUnescape(s); err == nil {
		return decoded
	}
	return s
}
