package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var leadsFilter iris.LeadFilter

var leadsCreateReq iris.LeadRequest

var leadsListCmd = &cobra.Command{
	Use:   "leads:list",
	Short: "List CRM leads",
	Long: `List CRM leads for the acting user.

Examples:
  iris leads:list --status new
  iris leads:list --search acme --limit 50`,
	Args: cobra.NoArgs,
	RunE: runLeadsList,
}

var leadsGetCmd = &cobra.Command{
	Use:   "leads:get <lead_id>",
	Short: "Show one lead",
	Args:  cobra.ExactArgs(1),
	RunE:  runLeadsGet,
}

var leadsCreateCmd = &cobra.Command{
	Use:   "leads:create",
	Short: "Create a lead",
	Long: `Create a lead. A name or an email is required.

Examples:
  iris leads:create --name "Ada Lovelace" --email ada@example.com --tag vip`,
	Args: cobra.NoArgs,
	RunE: runLeadsCreate,
}

var leadsNoteCmd = &cobra.Command{
	Use:   "leads:note <lead_id> <content>",
	Short: "Add a note to a lead",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runLeadsNote,
}

func init() {
	leadsListCmd.Flags().StringVar(&leadsFilter.Status, "status", "", "Filter by status")
	leadsListCmd.Flags().StringVar(&leadsFilter.Search, "search", "", "Filter by text")
	leadsListCmd.Flags().IntVar(&leadsFilter.Page, "page", 0, "Page number")
	leadsListCmd.Flags().IntVar(&leadsFilter.Limit, "limit", 0, "Leads per page")

	f := leadsCreateCmd.Flags()
	f.StringVar(&leadsCreateReq.Name, "name", "", "Lead name")
	f.StringVar(&leadsCreateReq.Email, "email", "", "Email address")
	f.StringVar(&leadsCreateReq.Phone, "phone", "", "Phone number")
	f.StringVar(&leadsCreateReq.Company, "company", "", "Company")
	f.StringVar(&leadsCreateReq.Status, "status", "", "Initial status")
	f.StringVar(&leadsCreateReq.Source, "source", "", "Where the lead came from")
	f.StringSliceVar(&leadsCreateReq.Tags, "tag", nil, "Tag (repeatable)")
}

func runLeadsList(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	page, err := c.Leads.List(cmd.Context(), &leadsFilter)
	if err != nil {
		return err
	}
	printOutput(cmd, formatLeadsList(page, globals.asJSON))
	return nil
}

func formatLeadsList(page *iris.Page[iris.Lead], asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(page)
	}
	if len(page.Items) == 0 {
		return "No leads found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("LEADS (%d)\n", len(page.Items)))
	for _, l := range page.Items {
		sb.WriteString(fmt.Sprintf("  %-8s %-24s %-30s %s\n", l.ID, truncate(l.Name, 24), truncate(valueOr(l.Email, "-"), 30), valueOr(l.Status, "-")))
	}
	sb.WriteString(formatPageFooter(page.Meta))
	return sb.String()
}

func runLeadsGet(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	lead, err := c.Leads.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printOutput(cmd, formatLead(lead, globals.asJSON))
	return nil
}

func runLeadsCreate(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	lead, err := c.Leads.Create(cmd.Context(), leadsCreateReq)
	if err != nil {
		return err
	}
	printOutput(cmd, formatLead(lead, globals.asJSON))
	return nil
}

func formatLead(l *iris.Lead, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(l)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Lead %s: %s\n", l.ID, valueOr(l.Name, l.Email)))
	fields := []struct{ label, value string }{
		{"Email", l.Email},
		{"Phone", l.Phone},
		{"Company", l.Company},
		{"Status", l.Status},
		{"Source", l.Source},
		{"Tags", strings.Join(l.Tags, ", ")},
		{"Created", l.CreatedAt},
	}
	for _, f := range fields {
		if f.value != "" {
			sb.WriteString(fmt.Sprintf("  %-8s %s\n", f.label+":", f.value))
		}
	}
	return sb.String()
}

func runLeadsNote(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	note, err := c.Leads.AddNote(cmd.Context(), args[0], strings.Join(args[1:], " "))
	if err != nil {
		return err
	}
	if globals.asJSON {
		printOutput(cmd, marshalJSONOrFallback(note))
		return nil
	}
	printOutput(cmd, fmt.Sprintf("Added note %s to lead %s\n", note.ID, args[0]))
	return nil
}
