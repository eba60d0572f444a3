package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/braintree-go/pkg/config"
	pkgsecrets "github.com/Checker-Finance/braintree-go/pkg/secrets"
)

type mockProvider struct {
	secrets map[string]map[string]string
	names   []string
	err     error
	gets    int
}

func (m *mockProvider) GetSecret(_ context.Context, name string) (map[string]string, error) {
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	s, ok := m.secrets[name]
	if !ok {
		return nil, errors.New("secret not found")
	}
	return s, nil
}

func (m *mockProvider) ListSecrets(_ context.Context, _ string) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.names, nil
}

func newResolver(p *mockProvider) *CredentialResolver {
	return NewCredentialResolver(zap.NewNop(), "prod", p, pkgsecrets.NewCache[Credentials](time.Minute))
}

func TestResolve_FetchesAndCaches(t *testing.T) {
	p := &mockProvider{secrets: map[string]map[string]string{
		"prod/merchant_a/braintree": {"public_key": "pub", "private_key": "priv"},
	}}
	r := newResolver(p)

	creds, err := r.Resolve(context.Background(), "MERCHANT_A")
	require.NoError(t, err)
	assert.Equal(t, Credentials{PublicKey: "pub", PrivateKey: "priv"}, creds)

	_, err = r.Resolve(context.Background(), "merchant_a")
	require.NoError(t, err)
	assert.Equal(t, 1, p.gets, "second resolve must hit the cache")
}

func TestResolve_ProviderError(t *testing.T) {
	r := newResolver(&mockProvider{err: errors.New("throttled")})

	_, err := r.Resolve(context.Background(), "merchant_a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `resolve credentials for "merchant_a"`)
	assert.Contains(t, err.Error(), "throttled")
}

func TestResolve_ParseError(t *testing.T) {
	p := &mockProvider{secrets: map[string]map[string]string{
		"prod/merchant_a/braintree": {"public_key": "pub"},
	}}

	_, err := newResolver(p).Resolve(context.Background(), "merchant_a")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "private_key")
}

func TestApply_FillsGatewayConfig(t *testing.T) {
	p := &mockProvider{secrets: map[string]map[string]string{
		"prod/merchant_a/braintree": {"public_key": "pub", "private_key": "priv"},
	}}
	cfg := &config.Gateway{Environment: config.Sandbox, MerchantID: "merchant_a"}

	require.NoError(t, newResolver(p).Apply(context.Background(), cfg))
	assert.Equal(t, "pub", cfg.PublicKey)
	assert.Equal(t, "priv", cfg.PrivateKey)
	assert.NoError(t, cfg.Validate())
}

func TestDiscoverMerchants(t *testing.T) {
	p := &mockProvider{names: []string{
		"prod/merchant_a/braintree",
		"prod/MERCHANT_B/Braintree",
		"prod/merchant_c/stripe",
		"prod/nested/path/braintree",
		"uat/merchant_d/braintree",
	}}

	merchants, err := newResolver(p).DiscoverMerchants(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"merchant_a", "merchant_b"}, merchants)
}

func TestDiscoverMerchants_Error(t *testing.T) {
	_, err := newResolver(&mockProvider{err: errors.New("denied")}).DiscoverMerchants(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "discover merchants")
}

func TestParseCredentials(t *testing.T) {
	tests := []struct {
		name    string
		input   map[string]string
		wantErr string
	}{
		{"valid", map[string]string{"public_key": "a", "private_key": "b", "extra": "ignored"}, ""},
		{"missing public key", map[string]string{"private_key": "b"}, "public_key"},
		{"missing private key", map[string]string{"public_key": "a"}, "private_key"},
		{"empty", map[string]string{}, "public_key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseCredentials(tt.input)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
