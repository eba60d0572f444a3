package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func customerKeys() KeySet {
	return Keys("id", "first_name", "last_name").
		Nest("credit_card", Keys("number", "cvv").
			Nest("billing_address", Keys("street_address", "postal_code")))
}

func TestKeySet_Flatten(t *testing.T) {
	assert.Equal(t, []string{
		"credit_card[billing_address][postal_code]",
		"credit_card[billing_address][street_address]",
		"credit_card[cvv]",
		"credit_card[number]",
		"first_name",
		"id",
		"last_name",
	}, customerKeys().Flatten())
}

func TestKeySet_NestDoesNotMutateReceiver(t *testing.T) {
	base := Keys("a")
	_ = base.Nest("b", Keys("c"))
	assert.Equal(t, []string{"a"}, base.Flatten())
}

func TestVerifyKeys_Valid(t *testing.T) {
	err := VerifyKeys(customerKeys(), map[string]any{
		"first_name": "Sam",
		"credit_card": map[string]any{
			"number": "4111111111111111",
			"billing_address": map[string]any{
				"postal_code": "60622",
			},
		},
	})
	require.NoError(t, err)
}

func TestVerifyKeys_EmptyParams(t *testing.T) {
	require.NoError(t, VerifyKeys(customerKeys(), map[string]any{}))
	require.NoError(t, VerifyKeys(customerKeys(), nil))
}

func TestVerifyKeys_InvalidKeysSortedInMessage(t *testing.T) {
	err := VerifyKeys(customerKeys(), map[string]any{
		"zebra":      "z",
		"first_name": "Sam",
		"credit_card": map[string]any{
			"bogus": "x",
			"billing_address": map[string]any{
				"planet": "Mars",
			},
		},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidKeys)
	assert.Equal(t, "invalid keys: credit_card[billing_address][planet], credit_card[bogus], zebra", err.Error())
}

func TestVerifyKeys_LeafWhereNestedExpected(t *testing.T) {
	err := VerifyKeys(customerKeys(), map[string]any{"credit_card": "4111"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "credit_card")
}

func TestVerifyKeys_NestedWhereLeafExpected(t *testing.T) {
	err := VerifyKeys(customerKeys(), map[string]any{
		"first_name": map[string]any{"given": "Sam"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first_name[given]")
}

func TestFlattenKeys(t *testing.T) {
	got := FlattenKeys(map[string]any{
		"b": "1",
		"a": map[string]any{"y": "2", "x": map[string]any{"z": "3"}},
	})
	assert.Equal(t, []string{"a[x][z]", "a[y]", "b"}, got)
}
