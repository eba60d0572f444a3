package secrets

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pkgsecrets "github.com/Checker-Finance/braintree-go/pkg/secrets"
)

// AWSResolver resolves per-merchant configuration from AWS Secrets Manager,
// caching results locally to reduce API calls. It is generic over the
// resolved type T.
//
// Secret naming convention: {env}/{merchantID}/{service}
type AWSResolver[T any] struct {
	logger   *zap.Logger
	env      string
	service  string
	provider pkgsecrets.Provider
	cache    *pkgsecrets.Cache[T]
}

// NewAWSResolver constructs a generic multi-merchant config resolver.
func NewAWSResolver[T any](
	logger *zap.Logger,
	env string,
	service string,
	provider pkgsecrets.Provider,
	cache *pkgsecrets.Cache[T],
) *AWSResolver[T] {
	return &AWSResolver[T]{
		logger:   logger,
		env:      env,
		service:  service,
		provider: provider,
		cache:    cache,
	}
}

func (r *AWSResolver[T]) cacheKey(merchantID string) string {
	return strings.ToLower(fmt.Sprintf("%s|%s", merchantID, r.service))
}

// SecretName builds the Secrets Manager name for a merchant.
func (r *AWSResolver[T]) SecretName(merchantID string) string {
	return strings.ToLower(fmt.Sprintf("%s/%s/%s", r.env, merchantID, r.service))
}

// Resolve fetches or caches T for a merchant. parse extracts T from the raw
// secret map and should validate required fields.
func (r *AWSResolver[T]) Resolve(ctx context.Context, merchantID string, parse func(map[string]string) (T, error)) (T, error) {
	key := r.cacheKey(merchantID)

	if cfg, ok := r.cache.Get(key); ok {
		return cfg, nil
	}

	secretName := r.SecretName(merchantID)
	secretMap, err := r.provider.GetSecret(ctx, secretName)
	if err != nil {
		r.logger.Warn("aws.secret_fetch_failed",
			zap.String("key", secretName),
			zap.Error(err))
		var zero T
		return zero, fmt.Errorf("resolve credentials for %q: %w", merchantID, err)
	}

	cfg, err := parse(secretMap)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("parse secret %q: %w", secretName, err)
	}

	r.cache.Put(key, cfg)

	r.logger.Info("aws.merchant_credentials_resolved",
		zap.String("merchant", merchantID),
		zap.String("service", r.service),
	)
	return cfg, nil
}

// DiscoverMerchants lists the merchant IDs that have secrets for this service,
// i.e. names matching "{env}/{merchantID}/{service}".
func (r *AWSResolver[T]) DiscoverMerchants(ctx context.Context) ([]string, error) {
	prefix := strings.ToLower(r.env + "/")
	suffix := "/" + strings.ToLower(r.service)

	names, err := r.provider.ListSecrets(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("discover merchants: %w", err)
	}

	var merchants []string
	for _, name := range names {
		lower := strings.ToLower(name)
		if !strings.HasPrefix(lower, prefix) || !strings.HasSuffix(lower, suffix) {
			continue
		}
		trimmed := strings.TrimSuffix(strings.TrimPrefix(lower, prefix), suffix)
		if trimmed != "" && !strings.Contains(trimmed, "/") {
			merchants = append(merchants, trimmed)
		}
	}

	r.logger.Info("aws.merchants_discovered",
		zap.Int("count", len(merchants)),
		zap.Strings("merchants", merchants),
	)
	return merchants, nil
}
