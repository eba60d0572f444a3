package braintree

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/braintree-go/pkg/utils"
)

// attributes reads typed fields out of a decoded response element. Missing
// or mistyped fields read as the zero value.
type attributes map[string]any

func attrs(v any) attributes {
	m, _ := v.(map[string]any)
	return attributes(m)
}

func (a attributes) str(key string) string {
	switch v := a[key].(type) {
	case string:
		return v
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	default:
		return ""
	}
}

func (a attributes) int(key string) int64 {
	switch v := a[key].(type) {
	case int64:
		return v
	case string:
		n, _ := strconv.ParseInt(v, 10, 64)
		return n
	default:
		return 0
	}
}

func (a attributes) boolean(key string) bool {
	switch v := a[key].(type) {
	case bool:
		return v
	case string:
		b, _ := strconv.ParseBool(v)
		return b
	default:
		return false
	}
}

func (a attributes) decimal(key string) decimal.Decimal {
	switch v := a[key].(type) {
	case decimal.Decimal:
		return v
	case string:
		d, err := decimal.NewFromString(v)
		if err != nil {
			return decimal.Zero
		}
		return d
	case int64:
		return decimal.NewFromInt(v)
	default:
		return decimal.Zero
	}
}

func (a attributes) time(key string) time.Time {
	switch v := a[key].(type) {
	case time.Time:
		return v
	case string:
		t, _ := time.Parse(time.RFC3339, v)
		return t
	default:
		return time.Time{}
	}
}

func (a attributes) nested(key string) map[string]any {
	m, _ := a[key].(map[string]any)
	return m
}

// list returns the element maps held under key, whether the document had one
// member or many. The key is removed from a.
func (a attributes) list(key string) []map[string]any {
	var out []map[string]any
	for _, item := range utils.ExtractAttributeAsArray(a, key) {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}
