package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var agentsListOpts iris.ListOptions

var agentsListCmd = &cobra.Command{
	Use:   "agents:list",
	Short: "List your agents",
	Args:  cobra.NoArgs,
	RunE:  runAgentsList,
}

var agentsGetCmd = &cobra.Command{
	Use:   "agents:get <agent_id>",
	Short: "Show one agent",
	Args:  cobra.ExactArgs(1),
	RunE:  runAgentsGet,
}

func init() {
	bindListOptions(agentsListCmd, &agentsListOpts)
}

// bindListOptions adds the --search/--page/--limit flags shared by list
// commands.
func bindListOptions(cmd *cobra.Command, opts *iris.ListOptions) {
	cmd.Flags().StringVar(&opts.Search, "search", "", "Filter by text")
	cmd.Flags().IntVar(&opts.Page, "page", 0, "Page number")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Items per page")
}

func runAgentsList(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	page, err := c.Agents.List(cmd.Context(), &agentsListOpts)
	if err != nil {
		return err
	}
	printOutput(cmd, formatAgentsList(page, globals.asJSON))
	return nil
}

func formatAgentsList(page *iris.Page[iris.Agent], asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(page)
	}
	if len(page.Items) == 0 {
		return "No agents found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("AGENTS (%d)\n", len(page.Items)))
	for _, a := range page.Items {
		sb.WriteString(fmt.Sprintf("  %-8s %-28s %-10s %s\n", a.ID, truncate(a.Name, 28), valueOr(a.Status, "-"), a.ModelName))
	}
	sb.WriteString(formatPageFooter(page.Meta))
	return sb.String()
}

// formatPageFooter prints paging hints when there is more than one page.
func formatPageFooter(m iris.PageMeta) string {
	if m.LastPage <= 1 {
		return ""
	}
	footer := fmt.Sprintf("\nPage %d of %d (%d total)", m.CurrentPage, m.LastPage, m.Total)
	if m.HasMore() {
		footer += fmt.Sprintf(". Next: --page %d", m.CurrentPage+1)
	}
	return footer + "\n"
}

func runAgentsGet(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	agent, err := c.Agents.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printOutput(cmd, formatAgent(agent, globals.asJSON))
	return nil
}

func formatAgent(a *iris.Agent, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(a)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Agent %s: %s\n", a.ID, a.Name))
	if a.Description != "" {
		sb.WriteString(fmt.Sprintf("  Description: %s\n", a.Description))
	}
	if a.ModelName != "" {
		sb.WriteString(fmt.Sprintf("  Model:       %s\n", a.ModelName))
	}
	if a.Status != "" {
		sb.WriteString(fmt.Sprintf("  Status:      %s\n", a.Status))
	}
	if a.BloqID != "" {
		sb.WriteString(fmt.Sprintf("  Bloq:        %s\n", a.BloqID))
	}
	if a.SystemPrompt != "" {
		sb.WriteString(fmt.Sprintf("  Prompt:      %s\n", truncate(a.SystemPrompt, 100)))
	}
	return sb.String()
}
