package config

import (
	"time"

	"github.com/joho/godotenv"

	"github.com/Checker-Finance/braintree-go/pkg/apierrors"
)

// Gateway holds everything a gateway client reads at call time.
type Gateway struct {
	Environment Environment
	MerchantID  string
	PublicKey   string
	PrivateKey  string

	// CAFile is a PEM bundle of trusted roots; empty means the system pool.
	CAFile  string
	Timeout time.Duration

	// RequestsPerSecond throttles outbound calls client-side; 0 disables it.
	RequestsPerSecond int
	Burst             int

	Env      string
	LogLevel string

	// Credentials are read from AWS Secrets Manager when SecretsEnv is set.
	SecretsEnv string
	AWSRegion  string
}

// Load loads configuration from environment variables and optional .env file.
func Load() (*Gateway, error) {
	_ = godotenv.Load()

	env, err := ParseEnvironment(GetEnv("BRAINTREE_ENVIRONMENT", "sandbox"))
	if err != nil {
		return nil, &apierrors.ConfigurationError{Setting: "environment", Message: err.Error()}
	}

	return &Gateway{
		Environment:       env,
		MerchantID:        GetEnv("BRAINTREE_MERCHANT_ID", ""),
		PublicKey:         GetEnv("BRAINTREE_PUBLIC_KEY", ""),
		PrivateKey:        GetEnv("BRAINTREE_PRIVATE_KEY", ""),
		CAFile:            GetEnv("BRAINTREE_CA_FILE", ""),
		Timeout:           GetEnvDuration("BRAINTREE_TIMEOUT", 60*time.Second),
		RequestsPerSecond: GetEnvInt("BRAINTREE_RPS", 0),
		Burst:             GetEnvInt("BRAINTREE_BURST", 1),
		Env:               GetEnv("ENV", "prod"),
		LogLevel:          GetEnv("LOG_LEVEL", "info"),
		SecretsEnv:        GetEnv("BRAINTREE_SECRETS_ENV", ""),
		AWSRegion:         GetEnv("AWS_REGION", "us-east-2"),
	}, nil
}

// Validate reports the first required setting that is missing.
func (g *Gateway) Validate() error {
	switch {
	case g.Environment.Server == "":
		return &apierrors.ConfigurationError{Setting: "environment", Message: "needs to be set"}
	case g.MerchantID == "":
		return &apierrors.ConfigurationError{Setting: "merchant_id", Message: "needs to be set"}
	case g.PublicKey == "":
		return &apierrors.ConfigurationError{Setting: "public_key", Message: "needs to be set"}
	case g.PrivateKey == "":
		return &apierrors.ConfigurationError{Setting: "private_key", Message: "needs to be set"}
	}
	return nil
}

// BaseMerchantPath is the path prefix every API call is made under.
func (g *Gateway) BaseMerchantPath() string {
	return "/merchants/" + g.MerchantID
}

// BaseMerchantURL is BaseMerchantPath on the environment's host.
func (g *Gateway) BaseMerchantURL() string {
	return g.Environment.BaseURL() + g.BaseMerchantPath()
}
