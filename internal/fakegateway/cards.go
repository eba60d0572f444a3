package fakegateway

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

var addressFieldKeys = []string{
	"first_name", "last_name", "company", "street_address", "extended_address",
	"locality", "region", "postal_code", "country_name",
}

type card struct {
	token          string
	customerID     string
	bin            string
	last4          string
	cardType       string
	cardholderName string
	expMonth       string
	expYear        string
	isDefault      bool
	billingAddress string
	createdAt      time.Time
	updatedAt      time.Time
}

type address struct {
	id         string
	customerID string
	fields     map[string]string
	createdAt  time.Time
	updatedAt  time.Time
}

func cardType(number string) string {
	switch {
	case strings.HasPrefix(number, "4"):
		return "Visa"
	case strings.HasPrefix(number, "5"):
		return "MasterCard"
	case strings.HasPrefix(number, "34"), strings.HasPrefix(number, "37"):
		return "American Express"
	case strings.HasPrefix(number, "6011"):
		return "Discover"
	default:
		return "Unknown"
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// expiration reads either expiration_date (MM/YYYY) or the month/year pair.
func expiration(params map[string]any) (month, year string, ok bool) {
	if date, _ := params["expiration_date"].(string); date != "" {
		m, y, found := strings.Cut(date, "/")
		return m, y, found && isDigits(m) && isDigits(y)
	}
	m, _ := params["expiration_month"].(string)
	y, _ := params["expiration_year"].(string)
	return m, y, isDigits(m) && isDigits(y)
}

func validateCard(params map[string]any, creating bool, path []string) []fieldError {
	var errs []fieldError
	number, hasNumber := params["number"].(string)
	switch {
	case !hasNumber && creating:
		errs = append(errs, fieldError{path, "number", "81716", "Credit card number is required."})
	case hasNumber && (!isDigits(number) || len(number) < 12 || len(number) > 19):
		errs = append(errs, fieldError{path, "number", "81715", "Credit card number must be 12-19 digits."})
	}

	_, hasDate := params["expiration_date"]
	_, hasMonth := params["expiration_month"]
	if creating || hasDate || hasMonth {
		if _, _, ok := expiration(params); !ok {
			errs = append(errs, fieldError{path, "expiration_date", "81709", "Expiration date is required."})
		}
	}
	return errs
}

// storeCard vaults a validated card for cust. Callers hold s.mu.
func (s *Server) storeCard(cust *customer, params map[string]any) *card {
	now := s.now()
	token, _ := params["token"].(string)
	if token == "" {
		token = newID()
	}
	cd := &card{
		token:      token,
		customerID: cust.id,
		isDefault:  len(cust.cards) == 0,
		createdAt:  now,
		updatedAt:  now,
	}
	s.applyCard(cd, params)
	s.cards[token] = cd
	cust.cards = append(cust.cards, token)

	if opts, ok := params["options"].(map[string]any); ok && isTrue(opts["make_default"]) {
		s.makeDefault(cd)
	}
	return cd
}

func (s *Server) applyCard(cd *card, params map[string]any) {
	if number, ok := params["number"].(string); ok {
		cd.bin = number[:6]
		cd.last4 = number[len(number)-4:]
		cd.cardType = cardType(number)
	}
	if name, ok := params["cardholder_name"].(string); ok {
		cd.cardholderName = name
	}
	if m, y, ok := expiration(params); ok {
		cd.expMonth, cd.expYear = m, y
	}
	if billing, ok := params["billing_address"].(map[string]any); ok {
		if cust, found := s.customers[cd.customerID]; found {
			cd.billingAddress = s.storeAddress(cust, billing).id
		}
	}
	cd.updatedAt = s.now()
}

func (s *Server) makeDefault(cd *card) {
	for _, other := range s.cards {
		if other.customerID == cd.customerID {
			other.isDefault = false
		}
	}
	cd.isDefault = true
}

func (s *Server) cardMap(cd *card) map[string]any {
	m := map[string]any{
		"token":            cd.token,
		"customer_id":      cd.customerID,
		"bin":              cd.bin,
		"last_4":           cd.last4,
		"card_type":        cd.cardType,
		"cardholder_name":  cd.cardholderName,
		"expiration_month": cd.expMonth,
		"expiration_year":  cd.expYear,
		"default":          cd.isDefault,
		"created_at":       cd.createdAt,
		"updated_at":       cd.updatedAt,
	}
	if a, ok := s.addresses[cd.billingAddress]; ok {
		m["billing_address"] = addressMap(a)
	}
	return m
}

// storeAddress saves an address for cust. Callers hold s.mu.
func (s *Server) storeAddress(cust *customer, params map[string]any) *address {
	now := s.now()
	a := &address{
		id:         newID(),
		customerID: cust.id,
		fields:     stringFields(params, addressFieldKeys),
		createdAt:  now,
		updatedAt:  now,
	}
	s.addresses[a.id] = a
	cust.addresses = append(cust.addresses, a.id)
	return a
}

func addressMap(a *address) map[string]any {
	m := fieldsMap(a.fields, addressFieldKeys)
	m["id"] = a.id
	m["customer_id"] = a.customerID
	m["created_at"] = a.createdAt
	m["updated_at"] = a.updatedAt
	return m
}

// ─── payment methods ───

func (s *Server) handleCreateCard(c *fiber.Ctx) error {
	params, err := decodeBody(c, "credit_card")
	if err != nil {
		return s.badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := []string{"credit_card"}
	errs := validateCard(params, true, path)
	customerID, _ := params["customer_id"].(string)
	cust, ok := s.customers[customerID]
	if !ok {
		errs = append(errs, fieldError{path, "customer_id", "91705", "Customer ID is invalid."})
	}
	if token, _ := params["token"].(string); token != "" {
		if _, taken := s.cards[token]; taken {
			errs = append(errs, fieldError{path, "token", "91724", "Payment method token is invalid."})
		}
	}
	if len(errs) > 0 {
		return s.renderErrors(c, map[string]any{"credit_card": params}, errs)
	}

	cd := s.storeCard(cust, params)
	return s.render(c, http.StatusCreated, "credit_card", s.cardMap(cd))
}

func (s *Server) handleFindCard(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cd, ok := s.cards[c.Params("token")]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	return s.render(c, http.StatusOK, "credit_card", s.cardMap(cd))
}

func (s *Server) handleUpdateCard(c *fiber.Ctx) error {
	params, err := decodeBody(c, "credit_card")
	if err != nil {
		return s.badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cd, ok := s.cards[c.Params("token")]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	if errs := validateCard(params, false, []string{"credit_card"}); len(errs) > 0 {
		return s.renderErrors(c, map[string]any{"credit_card": params}, errs)
	}

	s.applyCard(cd, params)
	if newToken, _ := params["token"].(string); newToken != "" && newToken != cd.token {
		delete(s.cards, cd.token)
		if cust, found := s.customers[cd.customerID]; found {
			for i, t := range cust.cards {
				if t == cd.token {
					cust.cards[i] = newToken
				}
			}
		}
		cd.token = newToken
		s.cards[newToken] = cd
	}
	if opts, ok := params["options"].(map[string]any); ok && isTrue(opts["make_default"]) {
		s.makeDefault(cd)
	}
	return s.render(c, http.StatusOK, "credit_card", s.cardMap(cd))
}

func (s *Server) handleDeleteCard(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	token := c.Params("token")
	cd, ok := s.cards[token]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	delete(s.cards, token)
	if cust, found := s.customers[cd.customerID]; found {
		cust.cards = removeString(cust.cards, token)
	}
	return c.SendStatus(http.StatusOK)
}

// ─── addresses ───

func (s *Server) findAddress(c *fiber.Ctx) (*customer, *address, bool) {
	cust, ok := s.customers[c.Params("id")]
	if !ok {
		return nil, nil, false
	}
	a, ok := s.addresses[c.Params("address_id")]
	if !ok || a.customerID != cust.id {
		return nil, nil, false
	}
	return cust, a, true
}

func validateAddress(params map[string]any) []fieldError {
	if len(stringFields(params, addressFieldKeys)) == 0 {
		return []fieldError{{[]string{"address"}, "base", "81801", "Addresses must have at least one field filled in."}}
	}
	return nil
}

func (s *Server) handleCreateAddress(c *fiber.Ctx) error {
	params, err := decodeBody(c, "address")
	if err != nil {
		return s.badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cust, ok := s.customers[c.Params("id")]
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	if errs := validateAddress(params); errs != nil {
		return s.renderErrors(c, map[string]any{"address": params}, errs)
	}
	a := s.storeAddress(cust, params)
	return s.render(c, http.StatusCreated, "address", addressMap(a))
}

func (s *Server) handleFindAddress(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, a, ok := s.findAddress(c)
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	return s.render(c, http.StatusOK, "address", addressMap(a))
}

func (s *Server) handleUpdateAddress(c *fiber.Ctx) error {
	params, err := decodeBody(c, "address")
	if err != nil {
		return s.badRequest(c, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, a, ok := s.findAddress(c)
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	mergeFields(a.fields, params, addressFieldKeys)
	a.updatedAt = s.now()
	return s.render(c, http.StatusOK, "address", addressMap(a))
}

func (s *Server) handleDeleteAddress(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cust, a, ok := s.findAddress(c)
	if !ok {
		return c.SendStatus(http.StatusNotFound)
	}
	delete(s.addresses, a.id)
	cust.addresses = removeString(cust.addresses, a.id)
	return c.SendStatus(http.StatusOK)
}

func removeString(list []string, v string) []string {
	out := list[:0]
	for _, s := range list {
		if s != v {
			out = append(out, s)
		}
	}
	return out
}
