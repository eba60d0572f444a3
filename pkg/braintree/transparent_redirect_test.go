package braintree

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/braintree-go/pkg/utils"
)

var fixedTime = time.Date(2024, 3, 1, 9, 8, 7, 0, time.FixedZone("EST", -5*3600))

func sign(privateKey, data string) string {
	key := sha1.Sum([]byte(privateKey))
	mac := hmac.New(sha1.New, key[:])
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestTRData_SignsSortedQuery(t *testing.T) {
	h := newHarness(t, WithClock(func() time.Time { return fixedTime }))
	tr := h.gw.TransparentRedirect()

	data := tr.TRData(map[string]any{"customer": map[string]any{"first_name": "Dan"}}, "http://example.com/back")

	sig, query, found := strings.Cut(data, "|")
	require.True(t, found)
	assert.Equal(t, "api_version=1&customer%5Bfirst_name%5D=Dan&public_key=integration_public_key"+
		"&redirect_url=http%3A%2F%2Fexample.com%2Fback&time=20240301140807", query)
	assert.Equal(t, sign(testPrivate, query), sig)
}

func TestTRData_KindHelpersVerifyKeys(t *testing.T) {
	h := newHarness(t)
	tr := h.gw.TransparentRedirect()

	_, err := tr.CreateCustomerData(map[string]any{"bogus": "x"}, "http://example.com")
	assert.EqualError(t, err, "invalid keys: bogus")

	_, err = tr.TransactionData(map[string]any{"amount": "1.00"}, "http://example.com")
	assert.Error(t, err, "type is required")

	data, err := tr.UpdateCustomerData("c1", map[string]any{"email": "a@b.c"}, "http://example.com")
	require.NoError(t, err)
	assert.Contains(t, data, "kind=update_customer")
	assert.Contains(t, data, "customer_id=c1")
}

func TestTR_URL(t *testing.T) {
	h := newHarness(t)
	assert.Equal(t, h.cfg.BaseMerchantURL()+"/transparent_redirect_requests", h.gw.TransparentRedirect().URL())
}

func TestConfirm_RejectsBadQueryStrings(t *testing.T) {
	h := newHarness(t)
	tr := h.gw.TransparentRedirect()

	signed := func(q string) string { return q + "&hash=" + sign(testPrivate, q) }

	tests := []struct {
		name  string
		query string
		want  error
	}{
		{"missing status", "id=1&kind=create_customer&hash=abc", ErrUnexpected},
		{"forged hash", "http_status=200&id=1&kind=create_customer&hash=abc", ErrForgedQueryString},
		{"no hash", "http_status=200&id=1&kind=create_customer", ErrForgedQueryString},
		{"tampered", strings.Replace(signed("http_status=200&id=1&kind=create_customer"), "id=1", "id=2", 1), ErrForgedQueryString},
		{"401", signed("http_status=401"), ErrAuthentication},
		{"404", signed("http_status=404"), ErrNotFound},
		{"500", signed("http_status=500"), ErrServer},
		{"503", signed("http_status=503"), ErrDownForMaintenance},
		{"other", signed("http_status=502"), ErrUnexpected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tr.Confirm(context.Background(), tt.query)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Zero(t, h.requests(), "rejected query strings never reach the gateway")
}

// postForm submits a browser form to the gateway and returns the redirect's query string.
func postForm(t *testing.T, target string, form url.Values) string {
	t.Helper()
	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.PostForm(target, form)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusSeeOther, resp.StatusCode)

	loc, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	return loc.RawQuery
}

func TestTransparentRedirect_CreateCustomerRoundTrip(t *testing.T) {
	h := newHarness(t)
	tr := h.gw.TransparentRedirect()

	data, err := tr.CreateCustomerData(map[string]any{"last_name": "Server"}, "http://merchant.example/done")
	require.NoError(t, err)

	form := url.Values{}
	form.Set("tr_data", data)
	form.Set("customer[first_name]", "Browser")
	form.Set("customer[credit_card][number]", "4111111111111111")
	form.Set("customer[credit_card][expiration_date]", "05/2030")

	query := postForm(t, tr.URL(), form)
	assert.Equal(t, "create_customer", utils.ParseQueryString(query)["kind"])

	res, err := tr.Confirm(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, KindCreateCustomer, res.Kind)
	require.NotNil(t, res.Customer)
	assert.Equal(t, "Browser", res.Customer.FirstName)
	assert.Equal(t, "Server", res.Customer.LastName)
	require.Len(t, res.Customer.CreditCards, 1)
	assert.Equal(t, "1111", res.Customer.CreditCards[0].Last4)
}

func TestTransparentRedirect_TransactionRoundTrip(t *testing.T) {
	h := newHarness(t)
	tr := h.gw.TransparentRedirect()

	data, err := tr.TransactionData(map[string]any{"type": "sale", "amount": "15.00"}, "http://merchant.example/done?step=2")
	require.NoError(t, err)

	form := url.Values{}
	form.Set("tr_data", data)
	form.Set("transaction[credit_card][number]", "4111111111111111")
	form.Set("transaction[credit_card][expiration_date]", "05/2030")

	query := postForm(t, tr.URL(), form)
	assert.Equal(t, "2", utils.ParseQueryString(query)["step"])

	res, err := tr.Confirm(context.Background(), query)
	require.NoError(t, err)
	require.NotNil(t, res.Transaction)
	assert.Equal(t, "15.00", res.Transaction.Amount.StringFixed(2))
	assert.Equal(t, StatusAuthorized, res.Transaction.Status)
}
