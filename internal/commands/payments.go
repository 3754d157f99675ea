package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var (
	checkoutReq       iris.CheckoutRequest
	checkoutAmount    float64
	checkoutProductID string
	paymentsListOpts  iris.ListOptions
)

var paymentsCheckoutCmd = &cobra.Command{
	Use:   "payments:checkout",
	Short: "Create a checkout link",
	Long: `Create a hosted checkout link for an amount or a product.

Examples:
  iris payments:checkout --amount 49.00 --description "Consulting hour"
  iris payments:checkout --product 3 --success-url https://example.com/thanks`,
	Args: cobra.NoArgs,
	RunE: runPaymentsCheckout,
}

var paymentsListCmd = &cobra.Command{
	Use:   "payments:list",
	Short: "List received payments",
	Args:  cobra.NoArgs,
	RunE:  runPaymentsList,
}

func init() {
	f := paymentsCheckoutCmd.Flags()
	f.Float64Var(&checkoutAmount, "amount", 0, "Amount in major units, e.g. 19.99")
	f.StringVar(&checkoutReq.Currency, "currency", "usd", "ISO currency code")
	f.StringVar(&checkoutReq.Description, "description", "", "Line item description")
	f.StringVar(&checkoutProductID, "product", "", "Product to sell instead of an amount")
	f.StringVar(&checkoutReq.SuccessURL, "success-url", "", "Redirect after payment")
	f.StringVar(&checkoutReq.CancelURL, "cancel-url", "", "Redirect on cancel")
	f.StringVar(&checkoutReq.IdempotencyKey, "idempotency-key", "", "Reuse to retry safely (default: random)")

	bindListOptions(paymentsListCmd, &paymentsListOpts)
}

func runPaymentsCheckout(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	req := checkoutReq
	req.Amount = iris.Amount(checkoutAmount)
	req.ProductID = iris.ID(checkoutProductID)
	checkout, err := c.Payments.CreateCheckout(cmd.Context(), req)
	if err != nil {
		return err
	}
	printOutput(cmd, formatCheckout(checkout, globals.asJSON))
	return nil
}

func formatCheckout(co *iris.Checkout, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(co)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Checkout %s", co.ID))
	if co.Amount > 0 {
		sb.WriteString(fmt.Sprintf(" for %s %s", co.Amount, strings.ToUpper(co.Currency)))
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  %s\n", co.URL))
	if co.ExpiresAt != "" {
		sb.WriteString(fmt.Sprintf("  Expires: %s\n", co.ExpiresAt))
	}
	return sb.String()
}

func runPaymentsList(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	page, err := c.Payments.List(cmd.Context(), &paymentsListOpts)
	if err != nil {
		return err
	}
	printOutput(cmd, formatPayments(page, globals.asJSON))
	return nil
}

func formatPayments(page *iris.Page[iris.Payment], asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(page)
	}
	if len(page.Items) == 0 {
		return "No payments.\n"
	}

	var sb strings.Builder
	var paid iris.Amount
	sb.WriteString(fmt.Sprintf("PAYMENTS (%d)\n", len(page.Items)))
	for _, p := range page.Items {
		if p.IsPaid() {
			paid += p.Amount
		}
		sb.WriteString(fmt.Sprintf("  %-10s %10s %-4s %-10s %s\n", p.ID, p.Amount, strings.ToUpper(p.Currency), p.Status, truncate(p.Description, 30)))
	}
	sb.WriteString(fmt.Sprintf("\nPaid on this page: %s\n", paid))
	sb.WriteString(formatPageFooter(page.Meta))
	return sb.String()
}
