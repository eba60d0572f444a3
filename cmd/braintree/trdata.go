package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func trDataCmd() *cobra.Command {
	var redirectURL, kind, txType, customerID string
	cmd := &cobra.Command{
		Use:   "tr-data",
		Short: "Print signed transparent redirect data and the form action URL",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := newGateway(cmd)
			if err != nil {
				return err
			}
			tr := gw.TransparentRedirect()

			var data string
			switch kind {
			case "customer":
				data, err = tr.CreateCustomerData(map[string]any{}, redirectURL)
			case "update-customer":
				data, err = tr.UpdateCustomerData(customerID, map[string]any{}, redirectURL)
			case "credit-card":
				data, err = tr.CreateCreditCardData(map[string]any{"customer_id": customerID}, redirectURL)
			case "transaction":
				data, err = tr.TransactionData(map[string]any{"type": txType}, redirectURL)
			default:
				return fmt.Errorf("unknown --kind %q", kind)
			}
			if err != nil {
				return err
			}

			if wantJSON(cmd) {
				return printJSON(cmd, map[string]string{"url": tr.URL(), "tr_data": data})
			}
			fmt.Fprintln(cmd.OutOrStdout(), tr.URL())
			fmt.Fprintln(cmd.OutOrStdout(), data)
			return nil
		},
	}
	cmd.Flags().StringVar(&redirectURL, "redirect-url", "", "where the gateway sends the browser afterwards")
	cmd.Flags().StringVar(&kind, "kind", "customer", "customer, update-customer, credit-card or transaction")
	cmd.Flags().StringVar(&txType, "type", "sale", "transaction type for --kind transaction")
	cmd.Flags().StringVar(&customerID, "customer-id", "", "customer for update-customer and credit-card")
	_ = cmd.MarkFlagRequired("redirect-url")
	return cmd
}
