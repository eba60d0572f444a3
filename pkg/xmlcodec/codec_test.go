package xmlcodec

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshal_DashesAndSortsKeys(t *testing.T) {
	out, err := Marshal("credit_card", map[string]any{
		"number":          "4111111111111111",
		"cardholder_name": "Sam Jones",
	})
	require.NoError(t, err)

	assert.Equal(t, `<?xml version="1.0" encoding="UTF-8"?>
<credit-card>
  <cardholder-name>Sam Jones</cardholder-name>
  <number>4111111111111111</number>
</credit-card>`, string(out))
}

func TestMarshal_TypedValues(t *testing.T) {
	out, err := Marshal("transaction", map[string]any{
		"amount":     decimal.RequireFromString("10.00"),
		"count":      3,
		"submit":     true,
		"order_id":   nil,
		"created_at": time.Date(2009, 10, 10, 13, 55, 36, 0, time.UTC),
	})
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, `<amount>10</amount>`)
	assert.Contains(t, s, `<count type="integer">3</count>`)
	assert.Contains(t, s, `<submit type="boolean">true</submit>`)
	assert.Contains(t, s, `<order-id nil="true"></order-id>`)
	assert.Contains(t, s, `<created-at type="datetime">2009-10-10T13:55:36Z</created-at>`)
}

func TestMarshal_EscapesText(t *testing.T) {
	out, err := Marshal("customer", map[string]any{"company": "Smith & <Sons>"})
	require.NoError(t, err)
	assert.Contains(t, string(out), "<company>Smith &amp; &lt;Sons&gt;</company>")
}

func TestMarshal_UnsupportedValue(t *testing.T) {
	_, err := Marshal("customer", map[string]any{"bad": struct{}{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value")
}

func TestUnmarshal_NestedDocument(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="UTF-8"?>
<transaction>
  <id>abc123</id>
  <amount>10.00</amount>
  <billing>
    <first-name>Sam</first-name>
    <postal-code>60622</postal-code>
  </billing>
  <order-id nil="true"></order-id>
  <refund-ids type="array">
    <item>r1</item>
    <item>r2</item>
  </refund-ids>
</transaction>`)

	got, err := Unmarshal(body)
	require.NoError(t, err)

	tx, ok := got["transaction"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "abc123", tx["id"])
	assert.Equal(t, "10.00", tx["amount"])
	assert.Equal(t, map[string]any{"first_name": "Sam", "postal_code": "60622"}, tx["billing"])
	assert.Contains(t, tx, "order_id")
	assert.Nil(t, tx["order_id"])
	assert.Equal(t, []any{"r1", "r2"}, tx["refund_ids"])
}

func TestUnmarshal_TypedScalars(t *testing.T) {
	body := []byte(`<result>
  <count type="integer">42</count>
  <success type="boolean">false</success>
  <created-at type="datetime">2009-10-10T13:55:36Z</created-at>
  <birthday type="date">1980-01-02</birthday>
</result>`)

	got, err := Unmarshal(body)
	require.NoError(t, err)

	res := got["result"].(map[string]any)
	assert.Equal(t, int64(42), res["count"])
	assert.Equal(t, false, res["success"])
	assert.True(t, time.Date(2009, 10, 10, 13, 55, 36, 0, time.UTC).Equal(res["created_at"].(time.Time)))
	assert.True(t, time.Date(1980, 1, 2, 0, 0, 0, 0, time.UTC).Equal(res["birthday"].(time.Time)))
}

func TestUnmarshal_CollectionGroupsRepeatedChildren(t *testing.T) {
	body := []byte(`<customers type="collection">
  <current-page-number type="integer">1</current-page-number>
  <customer><id>1</id></customer>
  <customer><id>2</id></customer>
  <customer><id>3</id></customer>
</customers>`)

	got, err := Unmarshal(body)
	require.NoError(t, err)

	customers := got["customers"].(map[string]any)
	assert.Equal(t, int64(1), customers["current_page_number"])
	assert.Equal(t, []any{
		map[string]any{"id": "1"},
		map[string]any{"id": "2"},
		map[string]any{"id": "3"},
	}, customers["customer"])
}

func TestUnmarshal_EmptyArray(t *testing.T) {
	got, err := Unmarshal([]byte(`<customer><addresses type="array"/></customer>`))
	require.NoError(t, err)
	assert.Equal(t, []any{}, got["customer"].(map[string]any)["addresses"])
}

func TestUnmarshal_EmptyBody(t *testing.T) {
	got, err := Unmarshal([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnmarshal_BadTypedValue(t *testing.T) {
	_, err := Unmarshal([]byte(`<r><n type="integer">abc</n></r>`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "integer")
}

func TestUnmarshal_NoRootElement(t *testing.T) {
	_, err := Unmarshal([]byte(`<?xml version="1.0" encoding="UTF-8"?>`))
	require.Error(t, err)
}

func TestRoundTrip(t *testing.T) {
	params := map[string]any{
		"first_name": "Sam",
		"visits":     int64(7),
		"vip":        true,
		"note":       nil,
		"tags":       []any{"a", "b"},
		"credit_card": map[string]any{
			"number": "4111111111111111",
			"billing_address": map[string]any{
				"postal_code": "60622",
			},
		},
	}

	out, err := Marshal("customer", params)
	require.NoError(t, err)

	got, err := Unmarshal(out)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"customer": params}, got)
}

func TestMarshal_RepeatedSiblings(t *testing.T) {
	out, err := Marshal("customers", map[string]any{
		"page_size": 50,
		"customer": Repeated{
			map[string]any{"id": "1"},
			map[string]any{"id": "2"},
		},
	})
	require.NoError(t, err)

	got, err := Unmarshal(out)
	require.NoError(t, err)
	customers := got["customers"].(map[string]any)
	assert.Equal(t, int64(50), customers["page_size"])
	assert.Equal(t, []any{
		map[string]any{"id": "1"},
		map[string]any{"id": "2"},
	}, customers["customer"])
}
