package fakegateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// Sandbox convention: amounts in [2000, 3000) are declined with the amount
// as the processor response code.
var (
	declineFloor   = decimal.NewFromInt(2000)
	declineCeiling = decimal.NewFromInt(3000)
)

type statusEvent struct {
	at     time.Time
	status string
	amount decimal.Decimal
}

type transaction struct {
	id                    string
	txType                string
	amount                decimal.Decimal
	status                string
	orderID               string
	refundID              string
	refundedTransactionID string
	responseCode          string
	responseText          string
	authCode              string
	billing               map[string]string
	shipping              map[string]string
	customer              map[string]string
	card                  map[string]any
	history               []statusEvent
	createdAt             time.Time
	updatedAt             time.Time
}

func (t *transaction) setStatus(status string, at time.Time) {
	t.status = status
	t.updatedAt = at
	t.history = append(t.history, statusEvent{at: at, status: status, amount: t.amount})
}

func (s *Server) transactionMap(t *transaction) map[string]any {
	history := []any{}
	for _, ev := range t.history {
		history = append(history, map[string]any{
			"timestamp":          ev.at,
			"status":             ev.status,
			"amount":             ev.amount.StringFixed(2),
			"user":               s.cfg.MerchantID,
			"transaction_source": "api",
		})
	}
	customerFields := fieldsMap(t.customer, customerFieldKeys)
	customerFields["id"] = t.customer["id"]

	return map[string]any{
		"id":                               t.id,
		"type":                             t.txType,
		"amount":                           t.amount.StringFixed(2),
		"status":                           t.status,
		"order_id":                         t.orderID,
		"merchant_account_id":              s.cfg.MerchantID,
		"refund_id":                        t.refundID,
		"refunded_transaction_id":          t.refundedTransactionID,
		"processor_response_code":          t.responseCode,
		"processor_response_text":          t.responseText,
		"processor_authorization_code":     t.authCode,
		"cvv_response_code":                "M",
		"avs_error_response_code":          nil,
		"avs_postal_code_response_code":    "M",
		"avs_street_address_response_code": "M",
		"billing":                          fieldsMap(t.billing, addressFieldKeys),
		"shipping":                         fieldsMap(t.shipping, addressFieldKeys),
		"customer":                         customerFields,
		"credit_card":                      t.card,
		"status_history":                   history,
		"created_at":                       t.createdAt,
		"updated_at":                       t.updatedAt,
	}
}

func parseAmount(v any, path []string) (decimal.Decimal, []fieldError) {
	raw, _ := v.(string)
	if raw == "" {
		return decimal.Zero, []fieldError{{path, "amount", "81502", "Amount is required."}}
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, []fieldError{{path, "amount", "81503", "Amount is an invalid format."}}
	}
	if !amount.IsPositive() {
		return decimal.Zero, []fieldError{{path, "amount", "81531", "Amount must be greater than zero."}}
	}
	return amount, nil
}

// createTransaction authorizes a sale or credit. Callers hold s.mu.
func (s *Server) createTransaction(params map[string]any) (*transaction, []fieldError) {
	path := []string{"transaction"}
	amount, errs := parseAmount(params["amount"], path)

	txType, _ := params["type"].(string)
	if txType != "sale" && txType != "credit" {
		errs = append(errs, fieldError{path, "type", "91523", "Transaction type is invalid."})
	}

	cardDetails, cardErrs := s.transactionCard(params, path)
	errs = append(errs, cardErrs...)
	if len(errs) > 0 {
		return nil, errs
	}

	now := s.now()
	t := &transaction{
		id:        newID(),
		txType:    txType,
		amount:    amount,
		card:      cardDetails,
		billing:   map[string]string{},
		shipping:  map[string]string{},
		customer:  map[string]string{},
		createdAt: now,
	}
	t.orderID, _ = params["order_id"].(string)
	if billing, ok := params["billing"].(map[string]any); ok {
		t.billing = stringFields(billing, addressFieldKeys)
	}
	if shipping, ok := params["shipping"].(map[string]any); ok {
		t.shipping = stringFields(shipping, addressFieldKeys)
	}
	if cust, ok := params["customer"].(map[string]any); ok {
		t.customer = stringFields(cust, append([]string{"id"}, customerFieldKeys...))
	}
	if customerID, _ := params["customer_id"].(string); customerID != "" {
		if cust, ok := s.customers[customerID]; ok {
			for k, v := range cust.fields {
				t.customer[k] = v
			}
			t.customer["id"] = cust.id
		}
	}

	if txType == "sale" && !amount.LessThan(declineFloor) && amount.LessThan(declineCeiling) {
		t.responseCode = amount.Truncate(0).String()
		t.responseText = "Do Not Honor"
		t.setStatus("processor_declined", now)
		s.transactions[t.id] = t
		return t, nil
	}

	t.responseCode = "1000"
	t.responseText = "Approved"
	t.authCode = strings.ToUpper(newID()[:6])
	t.setStatus("authorized", now)
	if opts, ok := params["options"].(map[string]any); ok && isTrue(opts["submit_for_settlement"]) {
		t.setStatus("submitted_for_settlement", now)
	}
	s.transactions[t.id] = t
	return t, nil
}

// transactionCard resolves the card details from a vaulted token or inline
// card params.
func (s *Server) transactionCard(params map[string]any, path []string) (map[string]any, []fieldError) {
	if token, _ := params["payment_method_token"].(string); token != "" {
		cd, ok := s.cards[token]
		if !ok {
			return nil, []fieldError{{path, "payment_method_token", "91518", "Payment method token is invalid."}}
		}
		return map[string]any{
			"token":            cd.token,
			"bin":              cd.bin,
			"last_4":           cd.last4,
			"card_type":        cd.cardType,
			"cardholder_name":  cd.cardholderName,
			"expiration_month": cd.expMonth,
			"expiration_year":  cd.expYear,
		}, nil
	}

	cardParams, ok := params["credit_card"].(map[string]any)
	if !ok {
		return nil, []fieldError{{path, "base", "91508", "Cannot determine payment method."}}
	}
	if errs := validateCard(cardParams, true, append(path, "credit_card")); len(errs) > 0 {
		return nil, errs
	}
	number := cardParams["number"].(string)
	month, year, _ := expiration(cardParams)
	name, _ := cardParams["cardholder_name"].(string)
	return map[string]any{
		"token":            nil,
		"bin":              number[:6],
		"last_4":           number[len(number)-4:],
		"card_type":        cardType(number),
		"cardholder_name":  name,
		"expiration_month": month,
		"expiration_year":  year,
	}, nil
}

func (s *Server) handleCreateTransaction(c *fiber.Ctx) error {
	params, err := decodeBody(c, "transaction")
	if err != nil {
		return s.badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, errs := s.createTransaction(params)
	if errs != nil {
		return s.renderErrors(c, map[string]any{"transaction": params}, errs)
	}
	return s.render(c, http.StatusCreated, "transaction", s.transactionMap(t))
}

func (s *Server) handleFindTransaction(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[c.Params("id")]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	return s.render(c, http.StatusOK, "transaction", s.transactionMap(t))
}

func (s *Server) handleVoidTransaction(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[c.Params("id")]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	if t.status != "authorized" && t.status != "submitted_for_settlement" {
		return s.renderErrors(c, map[string]any{}, []fieldError{{
			[]string{"transaction"}, "base", "91504",
			"Transaction can only be voided if status is authorized or submitted_for_settlement.",
		}})
	}
	t.setStatus("voided", s.now())
	return s.render(c, http.StatusOK, "transaction", s.transactionMap(t))
}

func (s *Server) handleSubmitForSettlement(c *fiber.Ctx) error {
	params, err := decodeBody(c, "transaction")
	if err != nil {
		return s.badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[c.Params("id")]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	path := []string{"transaction"}
	if t.status != "authorized" {
		return s.renderErrors(c, map[string]any{"transaction": params}, []fieldError{{
			path, "base", "91507", "Cannot submit for settlement unless status is authorized.",
		}})
	}
	if _, given := params["amount"]; given {
		amount, errs := parseAmount(params["amount"], path)
		if errs == nil && amount.GreaterThan(t.amount) {
			errs = []fieldError{{path, "amount", "91522", "Settlement amount cannot be more than the authorized amount."}}
		}
		if errs != nil {
			return s.renderErrors(c, map[string]any{"transaction": params}, errs)
		}
		t.amount = amount
	}
	t.setStatus("submitted_for_settlement", s.now())
	return s.render(c, http.StatusOK, "transaction", s.transactionMap(t))
}

func (s *Server) handleRefundTransaction(c *fiber.Ctx) error {
	params, err := decodeBody(c, "transaction")
	if err != nil {
		return s.badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	orig, ok := s.transactions[c.Params("id")]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	path := []string{"transaction"}
	var errs []fieldError
	switch {
	case orig.txType != "sale":
		errs = []fieldError{{path, "base", "91505", "Cannot refund credit."}}
	case orig.refundID != "":
		errs = []fieldError{{path, "base", "91512", "Transaction has already been completely refunded."}}
	case orig.status != "settled" && orig.status != "settling" && orig.status != "submitted_for_settlement":
		errs = []fieldError{{path, "base", "91506", "Cannot refund transaction unless it is settled."}}
	}

	amount := orig.amount
	if errs == nil {
		if _, given := params["amount"]; given {
			amount, errs = parseAmount(params["amount"], path)
			if errs == nil && amount.GreaterThan(orig.amount) {
				errs = []fieldError{{path, "amount", "91521", "Refund amount cannot be more than the authorized amount."}}
			}
		}
	}
	if errs != nil {
		return s.renderErrors(c, map[string]any{"transaction": params}, errs)
	}

	now := s.now()
	refund := &transaction{
		id:                    newID(),
		txType:                "credit",
		amount:                amount,
		orderID:               orig.orderID,
		refundedTransactionID: orig.id,
		responseCode:          "1000",
		responseText:          "Approved",
		billing:               orig.billing,
		shipping:              orig.shipping,
		customer:              orig.customer,
		card:                  orig.card,
		createdAt:             now,
	}
	refund.setStatus("submitted_for_settlement", now)
	s.transactions[refund.id] = refund
	orig.refundID = refund.id
	orig.updatedAt = now
	return s.render(c, http.StatusCreated, "transaction", s.transactionMap(refund))
}

// Settle moves a submitted transaction to settled, as the gateway's batch
// run would.
func (s *Server) Settle(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.transactions[id]
	if !ok || t.status != "submitted_for_settlement" {
		return false
	}
	t.setStatus("settled", s.now())
	return true
}
