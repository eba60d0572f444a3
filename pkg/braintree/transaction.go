package braintree

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/braintree-go/internal/httpclient"
	"github.com/Checker-Finance/braintree-go/pkg/utils"
)

// Transaction types.
const (
	TransactionTypeSale   = "sale"
	TransactionTypeCredit = "credit"
)

// Transaction statuses reported by the gateway.
const (
	StatusAuthorizing            = "authorizing"
	StatusAuthorized             = "authorized"
	StatusGatewayRejected        = "gateway_rejected"
	StatusFailed                 = "failed"
	StatusProcessorDeclined      = "processor_declined"
	StatusSettled                = "settled"
	StatusSettling               = "settling"
	StatusSubmittedForSettlement = "submitted_for_settlement"
	StatusVoided                 = "voided"
)

// StatusEvent is one entry of a transaction's status history.
type StatusEvent struct {
	Timestamp         time.Time
	Status            string
	Amount            decimal.Decimal
	User              string
	TransactionSource string
}

// Transaction is a snapshot of a sale or credit.
type Transaction struct {
	ID                    string
	Type                  string
	Amount                decimal.Decimal
	Status                string
	OrderID               string
	MerchantAccountID     string
	RefundID              string
	RefundedTransactionID string

	ProcessorAuthorizationCode   string
	ProcessorResponseCode        string
	ProcessorResponseText        string
	AVSErrorResponseCode         string
	AVSPostalCodeResponseCode    string
	AVSStreetAddressResponseCode string
	CVVResponseCode              string

	BillingDetails    AddressDetails
	ShippingDetails   AddressDetails
	CreditCardDetails CreditCardDetails
	CustomerDetails   CustomerDetails
	StatusHistory     []StatusEvent

	CreatedAt time.Time
	UpdatedAt time.Time
}

func newTransaction(m map[string]any) *Transaction {
	a := attributes(m)
	tx := &Transaction{
		ID:                           a.str("id"),
		Type:                         a.str("type"),
		Amount:                       a.decimal("amount"),
		Status:                       a.str("status"),
		OrderID:                      a.str("order_id"),
		MerchantAccountID:            a.str("merchant_account_id"),
		RefundID:                     a.str("refund_id"),
		RefundedTransactionID:        a.str("refunded_transaction_id"),
		ProcessorAuthorizationCode:   a.str("processor_authorization_code"),
		ProcessorResponseCode:        a.str("processor_response_code"),
		ProcessorResponseText:        a.str("processor_response_text"),
		AVSErrorResponseCode:         a.str("avs_error_response_code"),
		AVSPostalCodeResponseCode:    a.str("avs_postal_code_response_code"),
		AVSStreetAddressResponseCode: a.str("avs_street_address_response_code"),
		CVVResponseCode:              a.str("cvv_response_code"),
		BillingDetails:               NewAddressDetails(a.nested("billing")),
		ShippingDetails:              NewAddressDetails(a.nested("shipping")),
		CreditCardDetails:            NewCreditCardDetails(a.nested("credit_card")),
		CustomerDetails:              NewCustomerDetails(a.nested("customer")),
		CreatedAt:                    a.time("created_at"),
		UpdatedAt:                    a.time("updated_at"),
	}
	for _, ev := range a.list("status_history") {
		e := attributes(ev)
		tx.StatusHistory = append(tx.StatusHistory, StatusEvent{
			Timestamp:         e.time("timestamp"),
			Status:            e.str("status"),
			Amount:            e.decimal("amount"),
			User:              e.str("user"),
			TransactionSource: e.str("transaction_source"),
		})
	}
	return tx
}

var transactionCreateKeys = utils.Keys(
	"amount", "customer_id", "merchant_account_id", "order_id", "payment_method_token", "type",
).
	Nest("credit_card", utils.Keys(
		"token", "cardholder_name", "cvv", "expiration_date",
		"expiration_month", "expiration_year", "number",
	)).
	Nest("customer", utils.Keys(customerFieldKeys...)).
	Nest("billing", addressKeys).
	Nest("shipping", addressKeys).
	Nest("options", utils.Keys(
		"store_in_vault", "submit_for_settlement",
		"add_billing_address_to_payment_method", "store_shipping_address_in_vault",
	))

// TransactionGateway creates and manages transactions under /transactions.
type TransactionGateway struct {
	exec *httpclient.Executor
}

// Sale charges the payment method described by params.
func (g *TransactionGateway) Sale(ctx context.Context, params map[string]any) (*Transaction, error) {
	return g.create(ctx, TransactionTypeSale, params)
}

// Credit refunds an arbitrary amount to the payment method described by params.
func (g *TransactionGateway) Credit(ctx context.Context, params map[string]any) (*Transaction, error) {
	return g.create(ctx, TransactionTypeCredit, params)
}

func (g *TransactionGateway) create(ctx context.Context, txType string, params map[string]any) (*Transaction, error) {
	if err := utils.VerifyKeys(transactionCreateKeys, params); err != nil {
		return nil, err
	}
	body := make(map[string]any, len(params)+1)
	for k, v := range params {
		body[k] = v
	}
	body["type"] = txType

	doc, err := g.exec.Post(ctx, "/transactions", "transaction", body)
	if err != nil {
		return nil, err
	}
	return transactionResult(doc)
}

// Find loads a transaction by id.
func (g *TransactionGateway) Find(ctx context.Context, id string) (*Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	doc, err := g.exec.Get(ctx, "/transactions/"+id)
	if err != nil {
		return nil, err
	}
	return transactionResult(doc)
}

// Void cancels an authorized or submitted transaction.
func (g *TransactionGateway) Void(ctx context.Context, id string) (*Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	doc, err := g.exec.Put(ctx, "/transactions/"+id+"/void", "", nil)
	if err != nil {
		return nil, err
	}
	return transactionResult(doc)
}

// SubmitForSettlement queues an authorized transaction for capture. A nil
// amount settles the authorized amount.
func (g *TransactionGateway) SubmitForSettlement(ctx context.Context, id string, amount *decimal.Decimal) (*Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	root, params := amountBody(amount)
	doc, err := g.exec.Put(ctx, "/transactions/"+id+"/submit_for_settlement", root, params)
	if err != nil {
		return nil, err
	}
	return transactionResult(doc)
}

// Refund returns a settled sale, in full when amount is nil. The result is
// the new credit transaction.
func (g *TransactionGateway) Refund(ctx context.Context, id string, amount *decimal.Decimal) (*Transaction, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	root, params := amountBody(amount)
	doc, err := g.exec.Post(ctx, "/transactions/"+id+"/refund", root, params)
	if err != nil {
		return nil, err
	}
	return transactionResult(doc)
}

func amountBody(amount *decimal.Decimal) (string, map[string]any) {
	if amount == nil {
		return "", nil
	}
	return "transaction", map[string]any{"amount": *amount}
}

func transactionResult(doc map[string]any) (*Transaction, error) {
	if m, ok := doc["transaction"].(map[string]any); ok {
		return newTransaction(m), nil
	}
	return nil, resultError(doc)
}
