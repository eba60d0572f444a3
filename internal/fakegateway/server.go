// Package fakegateway is an in-memory stand-in for the Braintree gateway. It
// speaks the same XML API for customers, cards, addresses, transactions and
// transparent redirect, and backs the end-to-end tests and cmd/braintree-fake.
package fakegateway

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Checker-Finance/braintree-go/pkg/xmlcodec"
)

// Config identifies the single merchant the fake serves.
type Config struct {
	MerchantID string
	PublicKey  string
	PrivateKey string
	// PageSize bounds GET /customers pages; 0 means 50.
	PageSize int
}

// Server is the fake gateway.
type Server struct {
	app    *fiber.App
	logger *zap.Logger
	cfg    Config
	now    func() time.Time

	mu            sync.Mutex
	failNext      []int
	customers     map[string]*customer
	customerOrder []string
	cards         map[string]*card
	addresses     map[string]*address
	transactions  map[string]*transaction
	trRequests    map[string]trRequest
}

// New builds a Server with its routes registered.
func New(logger *zap.Logger, cfg Config) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = 50
	}
	s := &Server{
		app:          fiber.New(fiber.Config{DisableStartupMessage: true}),
		logger:       logger,
		cfg:          cfg,
		now:          func() time.Time { return time.Now().UTC().Truncate(time.Second) },
		customers:    make(map[string]*customer),
		cards:        make(map[string]*card),
		addresses:    make(map[string]*address),
		transactions: make(map[string]*transaction),
		trRequests:   make(map[string]trRequest),
	}
	s.registerRoutes()
	return s
}

// App exposes the fiber app, e.g. for app.Test.
func (s *Server) App() *fiber.App { return s.app }

// Serve accepts connections on ln until Shutdown.
func (s *Server) Serve(ln net.Listener) error {
	return s.app.Listener(ln)
}

// Shutdown stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// FailNext makes the next API calls answer with the given statuses, in order,
// before any other processing.
func (s *Server) FailNext(statuses ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = append(s.failNext, statuses...)
}

func (s *Server) registerRoutes() {
	s.app.Use(s.logRequests)
	s.app.Use(s.injectFailures)

	// the browser posts transparent redirect forms without credentials
	s.app.Post("/merchants/:merchant_id/transparent_redirect_requests", s.requireMerchant, s.handleTRPost)

	s.app.Use(basicauth.New(basicauth.Config{
		Users: map[string]string{s.cfg.PublicKey: s.cfg.PrivateKey},
		Realm: "Braintree",
	}))
	s.app.Use(s.requireMerchant)

	m := s.app.Group("/merchants/:merchant_id")

	m.Post("/customers", s.handleCreateCustomer)
	m.Get("/customers", s.handleListCustomers)
	m.Get("/customers/:id", s.handleFindCustomer)
	m.Put("/customers/:id", s.handleUpdateCustomer)
	m.Delete("/customers/:id", s.handleDeleteCustomer)

	m.Post("/customers/:id/addresses", s.handleCreateAddress)
	m.Get("/customers/:id/addresses/:address_id", s.handleFindAddress)
	m.Put("/customers/:id/addresses/:address_id", s.handleUpdateAddress)
	m.Delete("/customers/:id/addresses/:address_id", s.handleDeleteAddress)

	m.Post("/payment_methods", s.handleCreateCard)
	m.Get("/payment_methods/:token", s.handleFindCard)
	m.Put("/payment_methods/:token", s.handleUpdateCard)
	m.Delete("/payment_methods/:token", s.handleDeleteCard)

	m.Post("/transactions", s.handleCreateTransaction)
	m.Get("/transactions/:id", s.handleFindTransaction)
	m.Put("/transactions/:id/void", s.handleVoidTransaction)
	m.Put("/transactions/:id/submit_for_settlement", s.handleSubmitForSettlement)
	m.Post("/transactions/:id/refund", s.handleRefundTransaction)

	m.Post("/transparent_redirect_requests/:id/confirm", s.handleTRConfirm)
}

func (s *Server) logRequests(c *fiber.Ctx) error {
	err := c.Next()
	s.logger.Debug("fakegateway.request",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()))
	return err
}

func (s *Server) injectFailures(c *fiber.Ctx) error {
	s.mu.Lock()
	if len(s.failNext) == 0 {
		s.mu.Unlock()
		return c.Next()
	}
	status := s.failNext[0]
	s.failNext = s.failNext[1:]
	s.mu.Unlock()
	return c.SendStatus(status)
}

// requireMerchant answers 403 for any path outside the configured merchant,
// the gateway's response to authenticated access to another account.
func (s *Server) requireMerchant(c *fiber.Ctx) error {
	parts := strings.Split(strings.TrimPrefix(c.Path(), "/"), "/")
	if len(parts) < 2 || parts[0] != "merchants" || parts[1] != s.cfg.MerchantID {
		return c.SendStatus(http.StatusForbidden)
	}
	return c.Next()
}

// ─── rendering helpers ───

func (s *Server) render(c *fiber.Ctx, status int, root string, body map[string]any) error {
	out, err := xmlcodec.Marshal(root, body)
	if err != nil {
		s.logger.Error("fakegateway.render_failed", zap.String("root", root), zap.Error(err))
		return c.SendStatus(http.StatusInternalServerError)
	}
	c.Set(fiber.HeaderContentType, "application/xml; charset=utf-8")
	return c.Status(status).Send(out)
}

// decodeBody returns the element under root, or an empty map when the
// request had no body.
func decodeBody(c *fiber.Ctx, root string) (map[string]any, error) {
	doc, err := xmlcodec.Unmarshal(c.Body())
	if err != nil {
		return nil, err
	}
	m, _ := doc[root].(map[string]any)
	if m == nil {
		m = map[string]any{}
	}
	return m, nil
}

func (s *Server) badRequest(c *fiber.Ctx, err error) error {
	s.logger.Warn("fakegateway.bad_request", zap.String("path", c.Path()), zap.Error(err))
	return c.SendStatus(http.StatusBadRequest)
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
}

func stringFields(m map[string]any, keys []string) map[string]string {
	out := make(map[string]string)
	for _, k := range keys {
		if v, ok := m[k].(string); ok {
			out[k] = v
		}
	}
	return out
}

func mergeFields(dst map[string]string, m map[string]any, keys []string) {
	for k, v := range stringFields(m, keys) {
		dst[k] = v
	}
}

func fieldsMap(fields map[string]string, keys []string) map[string]any {
	out := make(map[string]any, len(keys))
	for _, k := range keys {
		if v, ok := fields[k]; ok {
			out[k] = v
		} else {
			out[k] = nil
		}
	}
	return out
}

// isTrue accepts typed XML booleans and form-posted "true".
func isTrue(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		return b == "true"
	default:
		return false
	}
}
