package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Checker-Finance/braintree-go/pkg/braintree"
	"github.com/Checker-Finance/braintree-go/pkg/logger"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd().ExecuteContext(ctx)
	logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "braintree",
		Short:         "Command-line client for the Braintree gateway",
		Version:       braintree.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("json", false, "output as JSON")
	root.PersistentFlags().String("log-file", "", "append request logs to this file instead of stderr")

	root.AddCommand(customerCmd())
	root.AddCommand(transactionCmd())
	root.AddCommand(trDataCmd())
	root.AddCommand(merchantsCmd())
	return root
}
