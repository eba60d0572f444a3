package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/braintree-go/pkg/apierrors"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"BRAINTREE_ENVIRONMENT", "BRAINTREE_MERCHANT_ID", "BRAINTREE_PUBLIC_KEY",
		"BRAINTREE_PRIVATE_KEY", "BRAINTREE_CA_FILE", "BRAINTREE_TIMEOUT",
		"BRAINTREE_RPS", "BRAINTREE_BURST", "ENV", "LOG_LEVEL",
		"BRAINTREE_SECRETS_ENV", "AWS_REGION", "GATEWAY_PORT",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Sandbox, cfg.Environment)
	assert.Equal(t, 60*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.RequestsPerSecond)
	assert.Equal(t, 1, cfg.Burst)
	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "us-east-2", cfg.AWSRegion)
	assert.Empty(t, cfg.CAFile)
	assert.Empty(t, cfg.SecretsEnv)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BRAINTREE_ENVIRONMENT", "development")
	t.Setenv("GATEWAY_PORT", "3443")
	t.Setenv("BRAINTREE_MERCHANT_ID", "integration_merchant_id")
	t.Setenv("BRAINTREE_PUBLIC_KEY", "integration_public_key")
	t.Setenv("BRAINTREE_PRIVATE_KEY", "integration_private_key")
	t.Setenv("BRAINTREE_TIMEOUT", "5s")
	t.Setenv("BRAINTREE_RPS", "10")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment.Name)
	assert.Equal(t, 3443, cfg.Environment.Port)
	assert.Equal(t, "integration_merchant_id", cfg.MerchantID)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 10, cfg.RequestsPerSecond)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_UnknownEnvironment(t *testing.T) {
	clearEnv(t)
	t.Setenv("BRAINTREE_ENVIRONMENT", "staging")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, apierrors.ErrConfiguration)
	assert.Contains(t, err.Error(), "staging")
}

func TestValidate_MissingSettings(t *testing.T) {
	full := Gateway{Environment: Sandbox, MerchantID: "m", PublicKey: "pub", PrivateKey: "priv"}
	require.NoError(t, full.Validate())

	tests := []struct {
		name    string
		mutate  func(g *Gateway)
		setting string
	}{
		{"environment", func(g *Gateway) { g.Environment = Environment{} }, "environment"},
		{"merchant id", func(g *Gateway) { g.MerchantID = "" }, "merchant_id"},
		{"public key", func(g *Gateway) { g.PublicKey = "" }, "public_key"},
		{"private key", func(g *Gateway) { g.PrivateKey = "" }, "private_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := full
			tt.mutate(&g)
			err := g.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, apierrors.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.setting)
		})
	}
}

func TestEnvironment_BaseURL(t *testing.T) {
	assert.Equal(t, "http://localhost:3000", Development.BaseURL())
	assert.Equal(t, "https://sandbox.braintreegateway.com", Sandbox.BaseURL())
	assert.Equal(t, "https://www.braintreegateway.com", Production.BaseURL())
	assert.Equal(t, "https://localhost:8443", Environment{Server: "localhost", Port: 8443, SSL: true}.BaseURL())
}

func TestGateway_BaseMerchantURL(t *testing.T) {
	g := Gateway{Environment: QA, MerchantID: "abc"}
	assert.Equal(t, "/merchants/abc", g.BaseMerchantPath())
	assert.Equal(t, "https://qa-master.braintreegateway.com/merchants/abc", g.BaseMerchantURL())
}

func TestParseEnvironment_CaseInsensitive(t *testing.T) {
	env, err := ParseEnvironment(" Production ")
	require.NoError(t, err)
	assert.Equal(t, Production, env)
}
