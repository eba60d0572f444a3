package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Checker-Finance/braintree-go/pkg/braintree"
)

func customerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Manage vault customers",
	}
	cmd.AddCommand(customerFindCmd(), customerListCmd(), customerCreateCmd())
	return cmd
}

func customerFindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "find [id]",
		Short: "Show one customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := newGateway(cmd)
			if err != nil {
				return err
			}
			cust, err := gw.Customer().Find(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("find customer: %w", err)
			}
			return printCustomers(cmd, cust)
		},
	}
}

func customerListCmd() *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List customers, one page or all of them",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := newGateway(cmd)
			if err != nil {
				return err
			}
			if page > 0 {
				p, err := gw.Customer().Page(cmd.Context(), page)
				if err != nil {
					return fmt.Errorf("list customers: %w", err)
				}
				return printCustomers(cmd, p.Customers...)
			}
			all, err := gw.Customer().All(cmd.Context())
			if err != nil {
				return fmt.Errorf("list customers: %w", err)
			}
			return printCustomers(cmd, all...)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 0, "page number; 0 lists every page")
	return cmd
}

func customerCreateCmd() *cobra.Command {
	var id, firstName, lastName, company, email, phone string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a customer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			gw, err := newGateway(cmd)
			if err != nil {
				return err
			}
			params := map[string]any{}
			setIfNotEmpty(params, map[string]string{
				"id":         id,
				"first_name": firstName,
				"last_name":  lastName,
				"company":    company,
				"email":      email,
				"phone":      phone,
			})
			cust, err := gw.Customer().Create(cmd.Context(), params)
			if err != nil {
				return describeError("create customer", err)
			}
			return printCustomers(cmd, cust)
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "customer id (generated when empty)")
	cmd.Flags().StringVar(&firstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&lastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&company, "company", "", "company")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	return cmd
}

func printCustomers(cmd *cobra.Command, customers ...*braintree.Customer) error {
	if wantJSON(cmd) {
		return printJSON(cmd, customers)
	}
	out := cmd.OutOrStdout()
	for _, c := range customers {
		fmt.Fprintf(out, "%s\t%s %s\t%s\t%d card(s)\n", c.ID, c.FirstName, c.LastName, c.Email, len(c.CreditCards))
	}
	return nil
}
