// Package braintree is a client for the Braintree payment gateway: customers,
// credit cards, addresses, transactions and transparent redirect.
package braintree

import (
	"time"

	"go.uber.org/zap"

	"github.com/Checker-Finance/braintree-go/internal/httpclient"
	"github.com/Checker-Finance/braintree-go/internal/rate"
	"github.com/Checker-Finance/braintree-go/internal/tlsverify"
	"github.com/Checker-Finance/braintree-go/pkg/config"
	"github.com/Checker-Finance/braintree-go/pkg/logger"
)

// Version is the client library version.
const Version = httpclient.Version

// Gateway is the entry point for every resource. It is safe for concurrent
// use; all state is read-only after New.
type Gateway struct {
	cfg    *config.Gateway
	logger *zap.Logger
	exec   *httpclient.Executor
	now    func() time.Time
}

type options struct {
	logger *zap.Logger
	now    func() time.Time
}

// Option customizes a Gateway.
type Option func(*options)

// WithLogger sets the logger for request logging and TLS failures. The
// process-wide logger.L() is used otherwise.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithClock overrides the time source used to stamp transparent redirect data.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// New validates cfg and builds a Gateway bound to its environment and merchant.
func New(cfg *config.Gateway, opts ...Option) (*Gateway, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logger.L()
	}

	var verifier *tlsverify.Verifier
	if cfg.Environment.SSL {
		roots, err := tlsverify.LoadRoots(cfg.CAFile)
		if err != nil {
			return nil, err
		}
		verifier = tlsverify.New(o.logger, roots)
	}

	var rateMgr *rate.Manager
	if cfg.RequestsPerSecond > 0 {
		rateMgr = rate.NewManager(rate.Config{
			RequestsPerSecond: cfg.RequestsPerSecond,
			Burst:             cfg.Burst,
		})
	}

	client := httpclient.NewClient(cfg, verifier, o.logger)
	return &Gateway{
		cfg:    cfg,
		logger: o.logger,
		exec:   httpclient.New(o.logger, rateMgr, client, cfg),
		now:    o.now,
	}, nil
}

// Customer returns the customer operations.
func (g *Gateway) Customer() *CustomerGateway {
	return &CustomerGateway{exec: g.exec}
}

// CreditCard returns the credit card operations.
func (g *Gateway) CreditCard() *CreditCardGateway {
	return &CreditCardGateway{exec: g.exec}
}

// Address returns the address operations.
func (g *Gateway) Address() *AddressGateway {
	return &AddressGateway{exec: g.exec}
}

// Transaction returns the transaction operations.
func (g *Gateway) Transaction() *TransactionGateway {
	return &TransactionGateway{exec: g.exec}
}

// TransparentRedirect returns the transparent redirect helpers.
func (g *Gateway) TransparentRedirect() *TransparentRedirect {
	return &TransparentRedirect{cfg: g.cfg, exec: g.exec, now: g.now}
}
