package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/braintree-go/internal/fakegateway"
)

func startFake(t *testing.T) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	fake := fakegateway.New(nil, fakegateway.Config{
		MerchantID: "cli_merchant",
		PublicKey:  "cli_public",
		PrivateKey: "cli_private",
	})
	go func() { _ = fake.Serve(ln) }()
	t.Cleanup(func() { _ = fake.Shutdown() })

	t.Setenv("BRAINTREE_ENVIRONMENT", "development")
	t.Setenv("GATEWAY_PORT", strconv.Itoa(ln.Addr().(*net.TCPAddr).Port))
	t.Setenv("BRAINTREE_MERCHANT_ID", "cli_merchant")
	t.Setenv("BRAINTREE_PUBLIC_KEY", "cli_public")
	t.Setenv("BRAINTREE_PRIVATE_KEY", "cli_private")
	t.Setenv("BRAINTREE_SECRETS_ENV", "")
	t.Setenv("LOG_LEVEL", "error")
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_CustomerCreateAndFind(t *testing.T) {
	startFake(t)

	out, err := run(t, "customer", "create", "--id", "cli1", "--first-name", "Ada", "--email", "ada@example.com")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "cli1\tAda"), out)

	out, err = run(t, "customer", "find", "cli1", "--json")
	require.NoError(t, err)
	var customers []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &customers))
	require.Len(t, customers, 1)
	assert.Equal(t, "ada@example.com", customers[0]["Email"])

	out, err = run(t, "customer", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "cli1")
}

func TestCLI_SaleAndVoid(t *testing.T) {
	startFake(t)

	out, err := run(t, "transaction", "sale", "--amount", "12.00", "--card-number", "4111111111111111", "--expiration", "05/2030", "--json")
	require.NoError(t, err)
	var tx map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &tx))
	assert.Equal(t, "authorized", tx["Status"])

	out, err = run(t, "tx", "void", tx["ID"].(string))
	require.NoError(t, err)
	assert.Contains(t, out, "voided")
}

func TestCLI_ValidationErrorsAreListed(t *testing.T) {
	startFake(t)

	_, err := run(t, "transaction", "sale", "--amount", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transaction.amount: Amount must be greater than zero. (81531)")
	assert.Contains(t, err.Error(), "transaction.base: Cannot determine payment method. (91508)")
}

func TestCLI_NotFound(t *testing.T) {
	startFake(t)

	_, err := run(t, "customer", "find", "nobody")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resource not found")
}

func TestCLI_TRData(t *testing.T) {
	startFake(t)

	out, err := run(t, "tr-data", "--redirect-url", "http://example.com/back", "--kind", "transaction")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasSuffix(lines[0], "/merchants/cli_merchant/transparent_redirect_requests"))
	assert.Contains(t, lines[1], "kind=create_transaction")
	assert.Contains(t, lines[1], "transaction%5Btype%5D=sale")
}

func TestCLI_MerchantsRequiresSecretsEnv(t *testing.T) {
	t.Setenv("BRAINTREE_SECRETS_ENV", "")

	_, err := run(t, "merchants")
	assert.EqualError(t, err, "BRAINTREE_SECRETS_ENV is not set")
}

func TestCLI_LogFileReceivesMaskedRequests(t *testing.T) {
	startFake(t)
	t.Setenv("LOG_LEVEL", "debug")
	logPath := filepath.Join(t.TempDir(), "requests.log")

	_, err := run(t, "transaction", "sale", "--amount", "3.00",
		"--card-number", "4111111111111111", "--expiration", "05/2030", "--log-file", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "POST /transactions 201")
	assert.Contains(t, string(data), "411111******1111")
	assert.NotContains(t, string(data), "4111111111111111")
}
