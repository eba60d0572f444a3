package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/Checker-Finance/braintree-go/pkg/braintree"
)

func transactionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "transaction",
		Aliases: []string{"tx"},
		Short:   "Create and manage transactions",
	}
	cmd.AddCommand(transactionFindCmd(), transactionSaleCmd(), transactionVoidCmd())
	return cmd
}

func transactionFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find [id]",
		Short: "Show one transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway(cmd)
			if err != nil {
				return err
			}
			tx, err := gw.Transaction().Find(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("find transaction: %w", err)
			}
			return printTransaction(cmd, tx)
		},
	}
}

func transactionSaleCmd() *cobra.Command {
	var amount, number, expiration, token, customerID, orderID string
	var submit bool
	cmd := &cobra.Command{
		Use:   "sale",
		Short: "Charge a card or vaulted payment method",
		RunE: func(cmd *cobra.Command, _ []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid --amount %q: %w", amount, err)
			}
			params := map[string]any{"amount": amt}
			setIfNotEmpty(params, map[string]string{
				"payment_method_token": token,
				"customer_id":          customerID,
				"order_id":             orderID,
			})
			if number != "" {
				params["credit_card"] = map[string]any{"number": number, "expiration_date": expiration}
			}
			if submit {
				params["options"] = map[string]any{"submit_for_settlement": true}
			}

			gw, err := newGateway(cmd)
			if err != nil {
				return err
			}
			tx, err := gw.Transaction().Sale(cmd.Context(), params)
			if err != nil {
				return describeError("sale", err)
			}
			return printTransaction(cmd, tx)
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "amount to charge")
	cmd.Flags().StringVar(&number, "card-number", "", "card number")
	cmd.Flags().StringVar(&expiration, "expiration", "", "card expiration as MM/YYYY")
	cmd.Flags().StringVar(&token, "token", "", "vaulted payment method token")
	cmd.Flags().StringVar(&customerID, "customer-id", "", "customer to attach the sale to")
	cmd.Flags().StringVar(&orderID, "order-id", "", "merchant order id")
	cmd.Flags().BoolVar(&submit, "submit", false, "submit for settlement immediately")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func transactionVoidCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "void [id]",
		Short: "Void an authorized transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway(cmd)
			if err != nil {
				return err
			}
			tx, err := gw.Transaction().Void(cmd.Context(), args[0])
			if err != nil {
				return describeError("void", err)
			}
			return printTransaction(cmd, tx)
		},
	}
}

func printTransaction(cmd *cobra.Command, tx *braintree.Transaction) error {
	if wantJSON(cmd) {
		return printJSON(cmd, tx)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\t%s\t%s %s\n",
		tx.ID, tx.Type, tx.Amount.StringFixed(2), tx.Status,
		tx.ProcessorResponseCode, tx.ProcessorResponseText)
	return nil
}

// describeError expands validation failures into one line per error.
func describeError(action string, err error) error {
	var res *braintree.ErrorResult
	if !errors.As(err, &res) {
		return fmt.Errorf("%s: %w", action, err)
	}
	lines := make([]string, 0, len(res.Errors))
	for _, ve := range res.Errors {
		lines = append(lines, fmt.Sprintf("  %s.%s: %s (%s)", ve.Path, ve.Attribute, ve.Message, ve.Code))
	}
	return fmt.Errorf("%s: %w\n%s", action, err, strings.Join(lines, "\n"))
}
