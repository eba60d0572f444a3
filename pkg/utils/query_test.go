package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashToQueryString_Flat(t *testing.T) {
	qs := HashToQueryString(map[string]any{
		"one": "a",
		"two": "b",
	})
	assert.Equal(t, "one=a&two=b", qs)
}

func TestHashToQueryString_Nested(t *testing.T) {
	qs := HashToQueryString(map[string]any{
		"top": "top_value",
		"nested": map[string]any{
			"nested_key": "nested_value",
		},
	})
	assert.Equal(t, "nested%5Bnested_key%5D=nested_value&top=top_value", qs)
}

func TestHashToQueryString_SortsAtEveryLevel(t *testing.T) {
	qs := HashToQueryString(map[string]any{
		"customer": map[string]any{
			"last_name":  "Jones",
			"first_name": "Sam",
		},
		"amount": "10.00",
	})
	assert.Equal(t, "amount=10.00&customer%5Bfirst_name%5D=Sam&customer%5Blast_name%5D=Jones", qs)
}

func TestHashToQueryString_EscapesValues(t *testing.T) {
	qs := HashToQueryString(map[string]any{
		"name":  "Sam Jones & Co",
		"email": "sam+test@example.com",
	})
	assert.Equal(t, "email=sam%2Btest%40example.com&name=Sam+Jones+%26+Co", qs)
}

func TestHashToQueryString_NonStringValues(t *testing.T) {
	qs := HashToQueryString(map[string]any{
		"amount":  decimal.RequireFromString("12.50"),
		"count":   3,
		"missing": nil,
		"submit":  true,
	})
	assert.Equal(t, "amount=12.5&count=3&missing=&submit=true", qs)
}

func TestHashToQueryString_Empty(t *testing.T) {
	assert.Equal(t, "", HashToQueryString(map[string]any{}))
	assert.Equal(t, "a=1", HashToQueryString(map[string]any{"a": "1", "empty": map[string]any{}}))
}

func TestParseQueryString(t *testing.T) {
	parsed := ParseQueryString("http_status=200&id=abc%20123&kind=create_customer&hash=deadbeef")
	assert.Equal(t, map[string]string{
		"http_status": "200",
		"id":          "abc 123",
		"kind":        "create_customer",
		"hash":        "deadbeef",
	}, parsed)
}

func TestParseQueryString_MissingValueAndEmptyPairs(t *testing.T) {
	parsed := ParseQueryString("a=1&&b&c=")
	assert.Equal(t, map[string]string{"a": "1", "b": "", "c": ""}, parsed)
}

func TestParseQueryString_Empty(t *testing.T) {
	assert.Empty(t, ParseQueryString(""))
}

func TestQueryString_RoundTripNested(t *testing.T) {
	original := map[string]any{
		"redirect_url": "http://example.com/return?x=1",
		"customer": map[string]any{
			"first_name": "Sam",
			"credit_card": map[string]any{
				"number":          "4111111111111111",
				"expiration_date": "05/2012",
				"billing_address": map[string]any{
					"street_address": "1 E Main St",
					"postal_code":    "60622",
				},
			},
		},
		"tr_data": "abc|def=1&g=2",
	}

	roundTripped := UnflattenQuery(ParseQueryString(HashToQueryString(original)))
	assert.Equal(t, original, roundTripped)
}

func TestUnflattenQuery_FlatKeysUntouched(t *testing.T) {
	got := UnflattenQuery(map[string]string{"a": "1", "b[c]": "2"})
	require.Contains(t, got, "b")
	assert.Equal(t, "1", got["a"])
	assert.Equal(t, map[string]any{"c": "2"}, got["b"])
}

func TestUnflattenQuery_MalformedBracketKept(t *testing.T) {
	got := UnflattenQuery(map[string]string{"a[b": "1"})
	assert.Equal(t, map[string]any{"a[b": "1"}, got)
}

func TestURLEncode(t *testing.T) {
	assert.Equal(t, "", URLEncode(nil))
	assert.Equal(t, "a+b", URLEncode("a b"))
	assert.Equal(t, "42", URLEncode(42))
	assert.Equal(t, "%5B%5D", URLEncode("[]"))
}
