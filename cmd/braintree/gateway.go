package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	intsecrets "github.com/Checker-Finance/braintree-go/internal/secrets"
	"github.com/Checker-Finance/braintree-go/pkg/braintree"
	"github.com/Checker-Finance/braintree-go/pkg/config"
	"github.com/Checker-Finance/braintree-go/pkg/logger"
	pkgsecrets "github.com/Checker-Finance/braintree-go/pkg/secrets"
)

// newGateway loads configuration from the environment (and .env), pulls the
// API keys from AWS Secrets Manager when BRAINTREE_SECRETS_ENV is set, and
// builds the gateway client. Request logs go to --log-file when given.
func newGateway(cmd *cobra.Command) (*braintree.Gateway, error) {
	ctx := cmd.Context()
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger.Init("braintree-cli", cfg.Env, cfg.LogLevel)

	if cfg.SecretsEnv != "" {
		resolver, err := newResolver(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if err := resolver.Apply(ctx, cfg); err != nil {
			return nil, err
		}
	}

	gwLogger := logger.L()
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		gwLogger = logger.New(cfg.Env, cfg.LogLevel, zapcore.AddSync(f))
	}

	return braintree.New(cfg, braintree.WithLogger(gwLogger))
}

func newResolver(ctx context.Context, cfg *config.Gateway) (*intsecrets.CredentialResolver, error) {
	provider, err := pkgsecrets.NewAWSProvider(ctx, cfg.AWSRegion)
	if err != nil {
		return nil, fmt.Errorf("init AWS provider: %w", err)
	}
	return intsecrets.NewCredentialResolver(
		logger.L(),
		cfg.SecretsEnv,
		provider,
		pkgsecrets.NewCache[intsecrets.Credentials](30*time.Minute),
	), nil
}

func merchantsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merchants",
		Short: "List merchants with credentials in AWS Secrets Manager",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger.Init("braintree-cli", cfg.Env, cfg.LogLevel)
			if cfg.SecretsEnv == "" {
				return fmt.Errorf("BRAINTREE_SECRETS_ENV is not set")
			}

			resolver, err := newResolver(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			merchants, err := resolver.DiscoverMerchants(cmd.Context())
			if err != nil {
				return err
			}
			if wantJSON(cmd) {
				return printJSON(cmd, merchants)
			}
			for _, m := range merchants {
				fmt.Fprintln(cmd.OutOrStdout(), m)
			}
			return nil
		},
	}
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

// setIfNotEmpty copies non-empty flag values into params.
func setIfNotEmpty(params map[string]any, values map[string]string) {
	for k, v := range values {
		if v != "" {
			params[k] = v
		}
	}
}
