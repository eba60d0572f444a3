package braintree

import (
	"context"
	"strings"
	"time"

	"github.com/Checker-Finance/braintree-go/internal/httpclient"
	"github.com/Checker-Finance/braintree-go/pkg/utils"
)

// CreditCard is a vaulted card. Only the masked parts of the number are
// ever returned by the gateway.
type CreditCard struct {
	Token           string
	CustomerID      string
	Bin             string
	Last4           string
	CardType        string
	CardholderName  string
	ExpirationMonth string
	ExpirationYear  string
	Default         bool
	BillingAddress  *Address
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// MaskedNumber renders the card number as bin******last4.
func (c *CreditCard) MaskedNumber() string {
	return c.Bin + "******" + c.Last4
}

// ExpirationDate renders MM/YYYY.
func (c *CreditCard) ExpirationDate() string {
	return c.ExpirationMonth + "/" + c.ExpirationYear
}

func newCreditCard(m map[string]any) *CreditCard {
	a := attributes(m)
	card := &CreditCard{
		Token:           a.str("token"),
		CustomerID:      a.str("customer_id"),
		Bin:             a.str("bin"),
		Last4:           a.str("last_4"),
		CardType:        a.str("card_type"),
		CardholderName:  a.str("cardholder_name"),
		ExpirationMonth: a.str("expiration_month"),
		ExpirationYear:  a.str("expiration_year"),
		Default:         a.boolean("default"),
		CreatedAt:       a.time("created_at"),
		UpdatedAt:       a.time("updated_at"),
	}
	if billing := a.nested("billing_address"); billing != nil {
		card.BillingAddress = newAddress(billing)
	}
	return card
}

// CreditCardDetails is the card snapshot embedded in a transaction.
type CreditCardDetails struct {
	Token           string
	Bin             string
	Last4           string
	CardType        string
	CardholderName  string
	ExpirationMonth string
	ExpirationYear  string
}

// NewCreditCardDetails builds CreditCardDetails; a nil map yields the zero value.
func NewCreditCardDetails(m map[string]any) CreditCardDetails {
	a := attributes(m)
	return CreditCardDetails{
		Token:           a.str("token"),
		Bin:             a.str("bin"),
		Last4:           a.str("last_4"),
		CardType:        a.str("card_type"),
		CardholderName:  a.str("cardholder_name"),
		ExpirationMonth: a.str("expiration_month"),
		ExpirationYear:  a.str("expiration_year"),
	}
}

// MaskedNumber renders the card number as bin******last4.
func (c CreditCardDetails) MaskedNumber() string {
	return c.Bin + "******" + c.Last4
}

var creditCardOptionKeys = utils.Keys("make_default", "verify_card")

var creditCardCreateKeys = utils.Keys(
	"customer_id", "cardholder_name", "number", "cvv", "expiration_date",
	"expiration_month", "expiration_year", "token",
).Nest("options", creditCardOptionKeys).
	Nest("billing_address", addressKeys)

var creditCardUpdateKeys = utils.Keys(
	"cardholder_name", "number", "cvv", "expiration_date",
	"expiration_month", "expiration_year", "token",
).Nest("options", creditCardOptionKeys).
	Nest("billing_address", addressKeys)

// CreditCardGateway manages cards under /payment_methods.
type CreditCardGateway struct {
	exec *httpclient.Executor
}

// Create vaults a card for params["customer_id"].
func (g *CreditCardGateway) Create(ctx context.Context, params map[string]any) (*CreditCard, error) {
	if err := utils.VerifyKeys(creditCardCreateKeys, params); err != nil {
		return nil, err
	}
	doc, err := g.exec.Post(ctx, "/payment_methods", "credit_card", params)
	if err != nil {
		return nil, err
	}
	return creditCardResult(doc)
}

// Find loads a card by token.
func (g *CreditCardGateway) Find(ctx context.Context, token string) (*CreditCard, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotFound
	}
	doc, err := g.exec.Get(ctx, "/payment_methods/"+token)
	if err != nil {
		return nil, err
	}
	return creditCardResult(doc)
}

// Update changes the fields given in params.
func (g *CreditCardGateway) Update(ctx context.Context, token string, params map[string]any) (*CreditCard, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNotFound
	}
	if err := utils.VerifyKeys(creditCardUpdateKeys, params); err != nil {
		return nil, err
	}
	doc, err := g.exec.Put(ctx, "/payment_methods/"+token, "credit_card", params)
	if err != nil {
		return nil, err
	}
	return creditCardResult(doc)
}

// Delete removes the card from the vault.
func (g *CreditCardGateway) Delete(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return ErrNotFound
	}
	return g.exec.Delete(ctx, "/payment_methods/"+token)
}

func creditCardResult(doc map[string]any) (*CreditCard, error) {
	if m, ok := doc["credit_card"].(map[string]any); ok {
		return newCreditCard(m), nil
	}
	return nil, resultError(doc)
}
