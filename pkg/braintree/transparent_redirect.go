package braintree

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Checker-Finance/braintree-go/internal/httpclient"
	"github.com/Checker-Finance/braintree-go/pkg/apierrors"
	"github.com/Checker-Finance/braintree-go/pkg/config"
	"github.com/Checker-Finance/braintree-go/pkg/utils"
)

// Transparent redirect kinds echoed back by the gateway.
const (
	KindCreateCustomer      = "create_customer"
	KindUpdateCustomer      = "update_customer"
	KindCreatePaymentMethod = "create_payment_method"
	KindUpdatePaymentMethod = "update_payment_method"
	KindCreateTransaction   = "create_transaction"
)

const trTimeLayout = "20060102150405"

// TransparentRedirect signs form data posted straight from a browser to the
// gateway and confirms the redirect that comes back.
type TransparentRedirect struct {
	cfg  *config.Gateway
	exec *httpclient.Executor
	now  func() time.Time
}

// ConfirmResult holds the resource created or updated by a confirmed
// redirect; only the field matching Kind is set.
type ConfirmResult struct {
	Kind        string
	Customer    *Customer
	CreditCard  *CreditCard
	Transaction *Transaction
}

// URL is where the browser form posts to.
func (tr *TransparentRedirect) URL() string {
	return tr.cfg.BaseMerchantURL() + "/transparent_redirect_requests"
}

// TRData signs params for a form posted to URL(). The result is
// "<hmac>|<query string>".
func (tr *TransparentRedirect) TRData(params map[string]any, redirectURL string) string {
	data := make(map[string]any, len(params)+4)
	for k, v := range params {
		data[k] = v
	}
	data["api_version"] = httpclient.APIVersion
	data["time"] = tr.now().UTC().Format(trTimeLayout)
	data["public_key"] = tr.cfg.PublicKey
	data["redirect_url"] = redirectURL

	query := utils.HashToQueryString(data)
	return tr.hash(query) + "|" + query
}

// CreateCustomerData signs a customer creation form. params are the
// server-side fields under "customer".
func (tr *TransparentRedirect) CreateCustomerData(params map[string]any, redirectURL string) (string, error) {
	if err := utils.VerifyKeys(customerCreateKeys, params); err != nil {
		return "", err
	}
	return tr.TRData(map[string]any{"kind": KindCreateCustomer, "customer": params}, redirectURL), nil
}

// UpdateCustomerData signs an update form for customerID.
func (tr *TransparentRedirect) UpdateCustomerData(customerID string, params map[string]any, redirectURL string) (string, error) {
	if err := utils.VerifyKeys(customerUpdateKeys, params); err != nil {
		return "", err
	}
	return tr.TRData(map[string]any{
		"kind":        KindUpdateCustomer,
		"customer_id": customerID,
		"customer":    params,
	}, redirectURL), nil
}

// CreateCreditCardData signs a card creation form.
func (tr *TransparentRedirect) CreateCreditCardData(params map[string]any, redirectURL string) (string, error) {
	if err := utils.VerifyKeys(creditCardCreateKeys, params); err != nil {
		return "", err
	}
	return tr.TRData(map[string]any{"kind": KindCreatePaymentMethod, "credit_card": params}, redirectURL), nil
}

// TransactionData signs a transaction form; params must carry "type".
func (tr *TransparentRedirect) TransactionData(params map[string]any, redirectURL string) (string, error) {
	if err := utils.VerifyKeys(transactionCreateKeys, params); err != nil {
		return "", err
	}
	if _, ok := params["type"]; !ok {
		return "", fmt.Errorf("braintree: transaction type is required")
	}
	return tr.TRData(map[string]any{"kind": KindCreateTransaction, "transaction": params}, redirectURL), nil
}

// Confirm validates the query string the gateway redirected the browser
// with and completes the request it names.
func (tr *TransparentRedirect) Confirm(ctx context.Context, queryString string) (*ConfirmResult, error) {
	params, err := tr.parseAndValidate(queryString)
	if err != nil {
		return nil, err
	}

	id := params["id"]
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	doc, err := tr.exec.Post(ctx, "/transparent_redirect_requests/"+id+"/confirm", "", nil)
	if err != nil {
		return nil, err
	}

	res := &ConfirmResult{Kind: params["kind"]}
	switch res.Kind {
	case KindCreateCustomer, KindUpdateCustomer:
		res.Customer, err = customerResult(doc)
	case KindCreatePaymentMethod, KindUpdatePaymentMethod:
		res.CreditCard, err = creditCardResult(doc)
	case KindCreateTransaction:
		res.Transaction, err = transactionResult(doc)
	default:
		return nil, fmt.Errorf("%w: transparent redirect kind %q", ErrUnexpected, res.Kind)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (tr *TransparentRedirect) parseAndValidate(queryString string) (map[string]string, error) {
	params := utils.ParseQueryString(queryString)

	status, ok := params["http_status"]
	if !ok {
		return nil, fmt.Errorf("%w: expected query string to have an http_status param", ErrUnexpected)
	}
	code, err := strconv.Atoi(status)
	if err != nil {
		return nil, fmt.Errorf("%w: http_status %q", ErrUnexpected, status)
	}
	if code != 200 {
		return nil, apierrors.ForStatus(code)
	}

	idx := strings.LastIndex(queryString, "&hash=")
	if idx < 0 {
		return nil, ErrForgedQueryString
	}
	expected := tr.hash(queryString[:idx])
	if !hmac.Equal([]byte(expected), []byte(params["hash"])) {
		return nil, ErrForgedQueryString
	}
	return params, nil
}

// hash is the hex HMAC-SHA1 of data keyed with SHA1(private key).
func (tr *TransparentRedirect) hash(data string) string {
	key := sha1.Sum([]byte(tr.cfg.PrivateKey))
	mac := hmac.New(sha1.New, key[:])
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}
