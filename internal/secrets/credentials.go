package secrets

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Checker-Finance/braintree-go/pkg/config"
	pkgsecrets "github.com/Checker-Finance/braintree-go/pkg/secrets"
)

const service = "braintree"

// Credentials are the API keys stored for one merchant.
// Secret format: {"public_key": "...", "private_key": "..."}
type Credentials struct {
	PublicKey  string
	PrivateKey string
}

// CredentialResolver resolves gateway API keys per merchant.
type CredentialResolver struct {
	inner *AWSResolver[Credentials]
}

// NewCredentialResolver builds a resolver reading {env}/{merchantID}/braintree.
func NewCredentialResolver(logger *zap.Logger, env string, provider pkgsecrets.Provider, cache *pkgsecrets.Cache[Credentials]) *CredentialResolver {
	return &CredentialResolver{inner: NewAWSResolver(logger, env, service, provider, cache)}
}

// Resolve returns the merchant's credentials.
func (r *CredentialResolver) Resolve(ctx context.Context, merchantID string) (Credentials, error) {
	return r.inner.Resolve(ctx, merchantID, parseCredentials)
}

// Apply fills cfg's keys from the merchant's secret.
func (r *CredentialResolver) Apply(ctx context.Context, cfg *config.Gateway) error {
	creds, err := r.Resolve(ctx, cfg.MerchantID)
	if err != nil {
		return err
	}
	cfg.PublicKey = creds.PublicKey
	cfg.PrivateKey = creds.PrivateKey
	return nil
}

// DiscoverMerchants lists merchants with stored credentials.
func (r *CredentialResolver) DiscoverMerchants(ctx context.Context) ([]string, error) {
	return r.inner.DiscoverMerchants(ctx)
}

func parseCredentials(m map[string]string) (Credentials, error) {
	creds := Credentials{
		PublicKey:  m["public_key"],
		PrivateKey: m["private_key"],
	}
	if creds.PublicKey == "" {
		return Credentials{}, fmt.Errorf("missing required field 'public_key'")
	}
	if creds.PrivateKey == "" {
		return Credentials{}, fmt.Errorf("missing required field 'private_key'")
	}
	return creds, nil
}
