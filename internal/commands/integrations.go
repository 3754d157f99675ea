package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var integrationsListCmd = &cobra.Command{
	Use:   "integrations:list",
	Short: "List third-party integrations and their status",
	Args:  cobra.NoArgs,
	RunE:  runIntegrationsList,
}

func runIntegrationsList(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	items, err := c.Integrations.List(cmd.Context())
	if err != nil {
		return err
	}
	printOutput(cmd, formatIntegrations(items, globals.asJSON))
	return nil
}

func formatIntegrations(items []iris.Integration, asJSON bool) string {
	if asJSON {
		return listJSON("integrations", items)
	}
	if len(items) == 0 {
		return "No integrations.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("INTEGRATIONS (%d)\n", len(items)))
	for _, it := range items {
		line := fmt.Sprintf("  %-16s %-14s", it.Type, valueOr(it.Status, "-"))
		if it.IsConnected() && it.ConnectedAt != "" {
			line += " since " + it.ConnectedAt
		}
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return sb.String()
}
