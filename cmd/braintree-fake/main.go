package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/Checker-Finance/braintree-go/internal/fakegateway"
	"github.com/Checker-Finance/braintree-go/pkg/config"
	"github.com/Checker-Finance/braintree-go/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger.Init("braintree-fake", cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()

	port := config.GetEnvInt("GATEWAY_PORT", config.Development.Port)
	fake := fakegateway.New(logger.L(), fakegateway.Config{
		MerchantID: config.GetEnv("BRAINTREE_MERCHANT_ID", "integration_merchant_id"),
		PublicKey:  config.GetEnv("BRAINTREE_PUBLIC_KEY", "integration_public_key"),
		PrivateKey: config.GetEnv("BRAINTREE_PRIVATE_KEY", "integration_private_key"),
		PageSize:   config.GetEnvInt("FAKE_PAGE_SIZE", 50),
	})

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		logg.Fatalw("fakegateway.listen_failed", "error", err)
	}

	go func() {
		logg.Infof("fake gateway listening on :%d", port)
		if err := fake.Serve(ln); err != nil {
			logg.Fatalw("fakegateway.serve_failed", "error", err)
		}
	}()

	<-ctx.Done()
	logg.Info("shutting down [braintree-fake]...")
	if err := fake.Shutdown(); err != nil {
		logg.Warnw("fakegateway.shutdown_failed", "error", err)
	}
}
