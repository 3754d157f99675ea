package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var phoneQuery iris.AvailableNumbersQuery

var (
	phoneLabel   string
	phoneAgentID string
)

var phoneAvailableCmd = &cobra.Command{
	Use:   "phone:available",
	Short: "Search numbers available to purchase",
	Long: `Search phone numbers available to purchase.

Examples:
  iris phone:available --area-code 415
  iris phone:available --country GB --contains 777`,
	Args: cobra.NoArgs,
	RunE: runPhoneAvailable,
}

var phonePurchaseCmd = &cobra.Command{
	Use:   "phone:purchase <number>",
	Short: "Buy a phone number",
	Args:  cobra.ExactArgs(1),
	RunE:  runPhonePurchase,
}

var phoneListCmd = &cobra.Command{
	Use:   "phone:list",
	Short: "List numbers you own",
	Args:  cobra.NoArgs,
	RunE:  runPhoneList,
}

func init() {
	f := phoneAvailableCmd.Flags()
	f.StringVar(&phoneQuery.Country, "country", "US", "ISO country code")
	f.StringVar(&phoneQuery.AreaCode, "area-code", "", "Area code")
	f.StringVar(&phoneQuery.Contains, "contains", "", "Digits the number must contain")
	f.IntVar(&phoneQuery.Limit, "limit", 0, "Maximum numbers to return")

	phonePurchaseCmd.Flags().StringVar(&phoneLabel, "label", "", "Label for the number")
	phonePurchaseCmd.Flags().StringVar(&phoneAgentID, "agent", "", "Agent to answer calls")
}

func runPhoneAvailable(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	numbers, err := c.Phone.Available(cmd.Context(), phoneQuery)
	if err != nil {
		return err
	}
	printOutput(cmd, formatAvailableNumbers(numbers, globals.asJSON))
	return nil
}

func formatAvailableNumbers(numbers []iris.AvailableNumber, asJSON bool) string {
	if asJSON {
		return listJSON("numbers", numbers)
	}
	if len(numbers) == 0 {
		return "No numbers available.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("AVAILABLE NUMBERS (%d)\n", len(numbers)))
	for _, n := range numbers {
		place := strings.Trim(n.Locality+", "+n.Region, ", ")
		sb.WriteString(fmt.Sprintf("  %-16s %-24s %s/mo\n", n.PhoneNumber, valueOr(place, n.Country), n.MonthlyPrice))
	}
	return sb.String()
}

func runPhonePurchase(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	var cfg *iris.PhoneConfig
	if phoneLabel != "" || phoneAgentID != "" {
		cfg = &iris.PhoneConfig{Label: phoneLabel, AgentID: iris.ID(phoneAgentID)}
	}
	number, err := c.Phone.Purchase(cmd.Context(), args[0], cfg)
	if err != nil {
		return err
	}
	if globals.asJSON {
		printOutput(cmd, marshalJSONOrFallback(number))
		return nil
	}
	printOutput(cmd, fmt.Sprintf("Purchased %s (id %s)\n", number.PhoneNumber, number.ID))
	return nil
}

func runPhoneList(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	numbers, err := c.Phone.List(cmd.Context())
	if err != nil {
		return err
	}
	printOutput(cmd, formatPhoneNumbers(numbers, globals.asJSON))
	return nil
}

func formatPhoneNumbers(numbers []iris.PhoneNumber, asJSON bool) string {
	if asJSON {
		return listJSON("numbers", numbers)
	}
	if len(numbers) == 0 {
		return "You have no phone numbers.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("PHONE NUMBERS (%d)\n", len(numbers)))
	for _, n := range numbers {
		line := fmt.Sprintf("  %-8s %-16s %-10s", n.ID, n.PhoneNumber, valueOr(n.Status, "-"))
		if n.Label != "" {
			line += " " + n.Label
		}
		if n.AgentID != "" {
			line += fmt.Sprintf(" (agent %s)", n.AgentID)
		}
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return sb.String()
}
