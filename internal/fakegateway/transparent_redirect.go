package fakegateway

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Checker-Finance/braintree-go/pkg/utils"
)

// trRequest is a form post waiting for the merchant's confirm call.
type trRequest struct {
	kind       string
	customerID string
	params     map[string]any
}

func (s *Server) sign(data string) string {
	key := sha1.Sum([]byte(s.cfg.PrivateKey))
	mac := hmac.New(sha1.New, key[:])
	mac.Write([]byte(data))
	return hex.EncodeToString(mac.Sum(nil))
}

// handleTRPost takes the browser's form post, checks tr_data and redirects
// back to the merchant with a signed query string.
func (s *Server) handleTRPost(c *fiber.Ctx) error {
	form := utils.ParseQueryString(string(c.Body()))
	trData := form["tr_data"]
	delete(form, "tr_data")

	signature, query, found := strings.Cut(trData, "|")
	if !found || !hmac.Equal([]byte(signature), []byte(s.sign(query))) {
		return c.SendStatus(http.StatusForbidden)
	}

	trusted := utils.UnflattenQuery(utils.ParseQueryString(query))
	if trusted["public_key"] != s.cfg.PublicKey {
		return c.SendStatus(http.StatusForbidden)
	}
	redirectURL, _ := trusted["redirect_url"].(string)
	kind, _ := trusted["kind"].(string)
	customerID, _ := trusted["customer_id"].(string)

	// signed fields override anything the browser posted
	params := utils.UnflattenQuery(form)
	mergeParams(params, trusted)

	id := newID()
	s.mu.Lock()
	s.trRequests[id] = trRequest{kind: kind, customerID: customerID, params: params}
	s.mu.Unlock()

	// the hash covers the merchant's own query parameters too
	base, query, _ := strings.Cut(redirectURL, "?")
	result := "http_status=200&id=" + id + "&kind=" + kind
	if query != "" {
		result = query + "&" + result
	}
	return c.Redirect(base+"?"+result+"&hash="+s.sign(result), http.StatusSeeOther)
}

func mergeParams(dst, src map[string]any) {
	for k, v := range src {
		if nested, ok := v.(map[string]any); ok {
			if existing, ok := dst[k].(map[string]any); ok {
				mergeParams(existing, nested)
				continue
			}
		}
		dst[k] = v
	}
}

func (s *Server) handleTRConfirm(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Params("id")
	req, ok := s.trRequests[id]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	delete(s.trRequests, id)

	switch req.kind {
	case "create_customer":
		params, _ := req.params["customer"].(map[string]any)
		cust, errs := s.createCustomer(orEmpty(params))
		if errs != nil {
			return s.renderErrors(c, req.params, errs)
		}
		return s.render(c, http.StatusCreated, "customer", s.customerMap(cust))

	case "update_customer":
		cust, found := s.customers[req.customerID]
		if !found {
			return c.SendStatus(http.StatusNotFound)
		}
		params, _ := req.params["customer"].(map[string]any)
		if errs := s.updateCustomer(cust, orEmpty(params)); errs != nil {
			return s.renderErrors(c, req.params, errs)
		}
		return s.render(c, http.StatusOK, "customer", s.customerMap(cust))

	case "create_payment_method":
		params := orEmpty(req.params["credit_card"])
		path := []string{"credit_card"}
		errs := validateCard(params, true, path)
		customerID, _ := params["customer_id"].(string)
		cust, found := s.customers[customerID]
		if !found {
			errs = append(errs, fieldError{path, "customer_id", "91705", "Customer ID is invalid."})
		}
		if len(errs) > 0 {
			return s.renderErrors(c, req.params, errs)
		}
		return s.render(c, http.StatusCreated, "credit_card", s.cardMap(s.storeCard(cust, params)))

	case "create_transaction":
		t, errs := s.createTransaction(orEmpty(req.params["transaction"]))
		if errs != nil {
			return s.renderErrors(c, req.params, errs)
		}
		return s.render(c, http.StatusCreated, "transaction", s.transactionMap(t))
	}
	return c.SendStatus(http.StatusBadRequest)
}

func orEmpty(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
