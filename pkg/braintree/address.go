package braintree

import (
	"context"
	"strings"
	"time"

	"github.com/Checker-Finance/braintree-go/internal/httpclient"
	"github.com/Checker-Finance/braintree-go/pkg/utils"
)

// AddressDetails is the address snapshot embedded in a transaction.
type AddressDetails struct {
	FirstName       string
	LastName        string
	Company         string
	StreetAddress   string
	ExtendedAddress string
	Locality        string
	Region          string
	PostalCode      string
	CountryName     string
}

// NewAddressDetails builds AddressDetails from a decoded element. A nil map
// yields the zero value.
func NewAddressDetails(m map[string]any) AddressDetails {
	a := attributes(m)
	return AddressDetails{
		FirstName:       a.str("first_name"),
		LastName:        a.str("last_name"),
		Company:         a.str("company"),
		StreetAddress:   a.str("street_address"),
		ExtendedAddress: a.str("extended_address"),
		Locality:        a.str("locality"),
		Region:          a.str("region"),
		PostalCode:      a.str("postal_code"),
		CountryName:     a.str("country_name"),
	}
}

// Address is a stored address belonging to a customer.
type Address struct {
	ID         string
	CustomerID string
	AddressDetails
	CreatedAt time.Time
	UpdatedAt time.Time
}

func newAddress(m map[string]any) *Address {
	a := attributes(m)
	return &Address{
		ID:             a.str("id"),
		CustomerID:     a.str("customer_id"),
		AddressDetails: NewAddressDetails(m),
		CreatedAt:      a.time("created_at"),
		UpdatedAt:      a.time("updated_at"),
	}
}

var addressKeys = utils.Keys(
	"first_name", "last_name", "company", "street_address", "extended_address",
	"locality", "region", "postal_code", "country_name",
)

// AddressGateway manages addresses under /customers/{id}/addresses.
type AddressGateway struct {
	exec *httpclient.Executor
}

func addressPath(customerID string) string {
	return "/customers/" + customerID + "/addresses"
}

// Create adds an address to the customer.
func (g *AddressGateway) Create(ctx context.Context, customerID string, params map[string]any) (*Address, error) {
	if strings.TrimSpace(customerID) == "" {
		return nil, ErrNotFound
	}
	if err := utils.VerifyKeys(addressKeys, params); err != nil {
		return nil, err
	}
	doc, err := g.exec.Post(ctx, addressPath(customerID), "address", params)
	if err != nil {
		return nil, err
	}
	return addressResult(doc)
}

// Find loads one address.
func (g *AddressGateway) Find(ctx context.Context, customerID, addressID string) (*Address, error) {
	if strings.TrimSpace(customerID) == "" || strings.TrimSpace(addressID) == "" {
		return nil, ErrNotFound
	}
	doc, err := g.exec.Get(ctx, addressPath(customerID)+"/"+addressID)
	if err != nil {
		return nil, err
	}
	return addressResult(doc)
}

// Update changes the fields given in params.
func (g *AddressGateway) Update(ctx context.Context, customerID, addressID string, params map[string]any) (*Address, error) {
	if strings.TrimSpace(customerID) == "" || strings.TrimSpace(addressID) == "" {
		return nil, ErrNotFound
	}
	if err := utils.VerifyKeys(addressKeys, params); err != nil {
		return nil, err
	}
	doc, err := g.exec.Put(ctx, addressPath(customerID)+"/"+addressID, "address", params)
	if err != nil {
		return nil, err
	}
	return addressResult(doc)
}

// Delete removes the address.
func (g *AddressGateway) Delete(ctx context.Context, customerID, addressID string) error {
	if strings.TrimSpace(customerID) == "" || strings.TrimSpace(addressID) == "" {
		return ErrNotFound
	}
	return g.exec.Delete(ctx, addressPath(customerID)+"/"+addressID)
}

func addressResult(doc map[string]any) (*Address, error) {
	if m, ok := doc["address"].(map[string]any); ok {
		return newAddress(m), nil
	}
	return nil, resultError(doc)
}
