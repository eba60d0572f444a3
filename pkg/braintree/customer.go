package braintree

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/Checker-Finance/braintree-go/internal/httpclient"
	"github.com/Checker-Finance/braintree-go/pkg/utils"
)

// Customer is a vault customer with its cards and addresses.
type Customer struct {
	ID          string
	FirstName   string
	LastName    string
	Company     string
	Email       string
	Phone       string
	Fax         string
	Website     string
	CreditCards []*CreditCard
	Addresses   []*Address
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func newCustomer(m map[string]any) *Customer {
	a := attributes(m)
	c := &Customer{
		ID:        a.str("id"),
		FirstName: a.str("first_name"),
		LastName:  a.str("last_name"),
		Company:   a.str("company"),
		Email:     a.str("email"),
		Phone:     a.str("phone"),
		Fax:       a.str("fax"),
		Website:   a.str("website"),
		CreatedAt: a.time("created_at"),
		UpdatedAt: a.time("updated_at"),
	}
	for _, card := range a.list("credit_cards") {
		c.CreditCards = append(c.CreditCards, newCreditCard(card))
	}
	for _, addr := range a.list("addresses") {
		c.Addresses = append(c.Addresses, newAddress(addr))
	}
	return c
}

// CustomerDetails is the customer snapshot embedded in a transaction.
type CustomerDetails struct {
	ID        string
	FirstName string
	LastName  string
	Company   string
	Email     string
	Phone     string
	Fax       string
	Website   string
}

// NewCustomerDetails builds CustomerDetails; a nil map yields the zero value.
func NewCustomerDetails(m map[string]any) CustomerDetails {
	a := attributes(m)
	return CustomerDetails{
		ID:        a.str("id"),
		FirstName: a.str("first_name"),
		LastName:  a.str("last_name"),
		Company:   a.str("company"),
		Email:     a.str("email"),
		Phone:     a.str("phone"),
		Fax:       a.str("fax"),
		Website:   a.str("website"),
	}
}

var customerFieldKeys = []string{
	"id", "first_name", "last_name", "company", "email", "phone", "fax", "website",
}

var customerCreateKeys = utils.Keys(customerFieldKeys...).
	Nest("credit_card", creditCardUpdateKeys)

var customerUpdateKeys = customerCreateKeys

// CustomerPage is one page of the customer listing.
type CustomerPage struct {
	CurrentPageNumber int64
	PageSize          int64
	TotalItems        int64
	Customers         []*Customer
}

// LastPage reports whether no further page follows this one.
func (p *CustomerPage) LastPage() bool {
	if p.PageSize <= 0 {
		return true
	}
	return p.CurrentPageNumber*p.PageSize >= p.TotalItems
}

// CustomerGateway manages customers under /customers.
type CustomerGateway struct {
	exec *httpclient.Executor
}

// Create adds a customer, optionally with a card under params["credit_card"].
func (g *CustomerGateway) Create(ctx context.Context, params map[string]any) (*Customer, error) {
	if err := utils.VerifyKeys(customerCreateKeys, params); err != nil {
		return nil, err
	}
	doc, err := g.exec.Post(ctx, "/customers", "customer", params)
	if err != nil {
		return nil, err
	}
	return customerResult(doc)
}

// Find loads a customer by id.
func (g *CustomerGateway) Find(ctx context.Context, id string) (*Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	doc, err := g.exec.Get(ctx, "/customers/"+id)
	if err != nil {
		return nil, err
	}
	return customerResult(doc)
}

// Update changes the fields given in params.
func (g *CustomerGateway) Update(ctx context.Context, id string, params map[string]any) (*Customer, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrNotFound
	}
	if err := utils.VerifyKeys(customerUpdateKeys, params); err != nil {
		return nil, err
	}
	doc, err := g.exec.Put(ctx, "/customers/"+id, "customer", params)
	if err != nil {
		return nil, err
	}
	return customerResult(doc)
}

// Delete removes the customer.
func (g *CustomerGateway) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	return g.exec.Delete(ctx, "/customers/"+id)
}

// Page loads one page of customers; pages are numbered from 1.
func (g *CustomerGateway) Page(ctx context.Context, page int) (*CustomerPage, error) {
	if page < 1 {
		page = 1
	}
	doc, err := g.exec.Get(ctx, "/customers?page="+strconv.Itoa(page))
	if err != nil {
		return nil, err
	}

	a := attrs(doc["customers"])
	if a == nil {
		// an empty collection element decodes as a leaf
		if _, ok := doc["customers"]; ok {
			return &CustomerPage{CurrentPageNumber: int64(page)}, nil
		}
		return nil, resultError(doc)
	}

	p := &CustomerPage{
		CurrentPageNumber: a.int("current_page_number"),
		PageSize:          a.int("page_size"),
		TotalItems:        a.int("total_items"),
	}
	for _, m := range a.list("customer") {
		p.Customers = append(p.Customers, newCustomer(m))
	}
	return p, nil
}

// All walks every page and returns the customers in gateway order.
func (g *CustomerGateway) All(ctx context.Context) ([]*Customer, error) {
	var all []*Customer
	for page := 1; ; page++ {
		p, err := g.Page(ctx, page)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Customers...)
		if p.LastPage() || len(p.Customers) == 0 {
			return all, nil
		}
	}
}

func customerResult(doc map[string]any) (*Customer, error) {
	if m, ok := doc["customer"].(map[string]any); ok {
		return newCustomer(m), nil
	}
	return nil, resultError(doc)
}
