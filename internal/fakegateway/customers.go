package fakegateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Checker-Finance/braintree-go/pkg/xmlcodec"
)

var customerFieldKeys = []string{
	"first_name", "last_name", "company", "email", "phone", "fax", "website",
}

type customer struct {
	id        string
	fields    map[string]string
	cards     []string
	addresses []string
	createdAt time.Time
	updatedAt time.Time
}

func validateCustomer(params map[string]any, path []string) []fieldError {
	var errs []fieldError
	if email, ok := params["email"].(string); ok && email != "" && !strings.Contains(email, "@") {
		errs = append(errs, fieldError{path, "email", "81604", "Email is an invalid format."})
	}
	if name, ok := params["first_name"].(string); ok && len(name) > 255 {
		errs = append(errs, fieldError{path, "first_name", "81608", "First name is too long."})
	}
	if id, ok := params["id"].(string); ok && id != "" && strings.ContainsAny(id, "/ ") {
		errs = append(errs, fieldError{path, "id", "91610", "Customer ID is invalid."})
	}
	return errs
}

// createCustomer stores a customer and its optional card. Callers hold s.mu.
func (s *Server) createCustomer(params map[string]any) (*customer, []fieldError) {
	path := []string{"customer"}
	errs := validateCustomer(params, path)
	cardParams, hasCard := params["credit_card"].(map[string]any)
	if hasCard {
		errs = append(errs, validateCard(cardParams, true, append(path, "credit_card"))...)
	}

	id, _ := params["id"].(string)
	if id == "" {
		id = newID()
	}
	if _, taken := s.customers[id]; taken {
		errs = append(errs, fieldError{path, "id", "91609", "Customer ID has already been taken."})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	now := s.now()
	cust := &customer{
		id:        id,
		fields:    stringFields(params, customerFieldKeys),
		createdAt: now,
		updatedAt: now,
	}
	s.customers[id] = cust
	s.customerOrder = append(s.customerOrder, id)

	if hasCard {
		s.storeCard(cust, cardParams)
	}
	return cust, nil
}

// updateCustomer applies params to the customer. Callers hold s.mu.
func (s *Server) updateCustomer(cust *customer, params map[string]any) []fieldError {
	path := []string{"customer"}
	errs := validateCustomer(params, path)
	cardParams, hasCard := params["credit_card"].(map[string]any)
	if hasCard {
		errs = append(errs, validateCard(cardParams, true, append(path, "credit_card"))...)
	}
	if len(errs) > 0 {
		return errs
	}

	mergeFields(cust.fields, params, customerFieldKeys)
	cust.updatedAt = s.now()
	if hasCard {
		s.storeCard(cust, cardParams)
	}
	return nil
}

func (s *Server) customerMap(cust *customer) map[string]any {
	m := fieldsMap(cust.fields, customerFieldKeys)
	m["id"] = cust.id
	m["created_at"] = cust.createdAt
	m["updated_at"] = cust.updatedAt

	cards := []any{}
	for _, token := range cust.cards {
		if cd, ok := s.cards[token]; ok {
			cards = append(cards, s.cardMap(cd))
		}
	}
	m["credit_cards"] = cards

	addrs := []any{}
	for _, id := range cust.addresses {
		if a, ok := s.addresses[id]; ok {
			addrs = append(addrs, addressMap(a))
		}
	}
	m["addresses"] = addrs
	return m
}

func (s *Server) handleCreateCustomer(c *fiber.Ctx) error {
	params, err := decodeBody(c, "customer")
	if err != nil {
		return s.badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cust, errs := s.createCustomer(params)
	if errs != nil {
		return s.renderErrors(c, map[string]any{"customer": params}, errs)
	}
	return s.render(c, http.StatusCreated, "customer", s.customerMap(cust))
}

func (s *Server) handleFindCustomer(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cust, ok := s.customers[c.Params("id")]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	return s.render(c, http.StatusOK, "customer", s.customerMap(cust))
}

func (s *Server) handleUpdateCustomer(c *fiber.Ctx) error {
	params, err := decodeBody(c, "customer")
	if err != nil {
		return s.badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cust, ok := s.customers[c.Params("id")]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	if errs := s.updateCustomer(cust, params); errs != nil {
		return s.renderErrors(c, map[string]any{"customer": params}, errs)
	}
	return s.render(c, http.StatusOK, "customer", s.customerMap(cust))
}

func (s *Server) handleDeleteCustomer(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := c.Params("id")
	cust, ok := s.customers[id]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	for _, token := range cust.cards {
		delete(s.cards, token)
	}
	for _, addrID := range cust.addresses {
		delete(s.addresses, addrID)
	}
	delete(s.customers, id)
	for i, cid := range s.customerOrder {
		if cid == id {
			s.customerOrder = append(s.customerOrder[:i], s.customerOrder[i+1:]...)
			break
		}
	}
	return c.SendStatus(http.StatusOK)
}

func (s *Server) handleListCustomers(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	total := len(s.customerOrder)
	start := (page - 1) * s.cfg.PageSize
	end := start + s.cfg.PageSize
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	members := xmlcodec.Repeated{}
	for _, id := range s.customerOrder[start:end] {
		members = append(members, s.customerMap(s.customers[id]))
	}
	return s.render(c, http.StatusOK, "customers", map[string]any{
		"current_page_number": page,
		"page_size":           s.cfg.PageSize,
		"total_items":         total,
		"customer":            members,
	})
}
