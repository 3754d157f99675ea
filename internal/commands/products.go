package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var productsListOpts iris.ListOptions

var productsListCmd = &cobra.Command{
	Use:   "products:list",
	Short: "List your products",
	Args:  cobra.NoArgs,
	RunE:  runProductsList,
}

func init() {
	bindListOptions(productsListCmd, &productsListOpts)
}

func runProductsList(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	page, err := c.Products.List(cmd.Context(), &productsListOpts)
	if err != nil {
		return err
	}
	printOutput(cmd, formatProducts(page, globals.asJSON))
	return nil
}

func formatProducts(page *iris.Page[iris.Product], asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(page)
	}
	if len(page.Items) == 0 {
		return "No products found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("PRODUCTS (%d)\n", len(page.Items)))
	for _, p := range page.Items {
		state := ""
		if !p.Active {
			state = " (inactive)"
		}
		price := p.Price.String()
		if p.Currency != "" {
			price += " " + strings.ToUpper(p.Currency)
		}
		sb.WriteString(fmt.Sprintf("  %-8s %-30s %s%s\n", p.ID, truncate(p.Name, 30), price, state))
	}
	sb.WriteString(formatPageFooter(page.Meta))
	return sb.String()
}
