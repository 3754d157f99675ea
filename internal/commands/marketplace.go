package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var skillFilter iris.SkillFilter

var marketplaceSkillsCmd = &cobra.Command{
	Use:   "marketplace:skills",
	Short: "Browse marketplace skills",
	Args:  cobra.NoArgs,
	RunE:  runMarketplaceSkills,
}

var marketplaceInstallCmd = &cobra.Command{
	Use:   "marketplace:install <skill_id>",
	Short: "Install a skill for the acting user",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarketplaceInstall,
}

func init() {
	f := marketplaceSkillsCmd.Flags()
	f.StringVar(&skillFilter.Category, "category", "", "Filter by category")
	f.StringVar(&skillFilter.Search, "search", "", "Filter by text")
	f.IntVar(&skillFilter.Page, "page", 0, "Page number")
	f.IntVar(&skillFilter.Limit, "limit", 0, "Skills per page")
}

func runMarketplaceSkills(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	page, err := c.Marketplace.Skills(cmd.Context(), &skillFilter)
	if err != nil {
		return err
	}
	printOutput(cmd, formatSkills(page, globals.asJSON))
	return nil
}

func formatSkills(page *iris.Page[iris.Skill], asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(page)
	}
	if len(page.Items) == 0 {
		return "No skills found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SKILLS (%d)\n", len(page.Items)))
	for _, s := range page.Items {
		price := "free"
		if !s.IsFree() {
			price = "$" + s.Price.String()
		}
		marker := " "
		if s.IsInstalled() {
			marker = "*"
		}
		sb.WriteString(fmt.Sprintf(" %s%-8s %-28s %-14s %s\n", marker, s.ID, truncate(s.Name, 28), valueOr(s.Category, "-"), price))
	}
	sb.WriteString(formatPageFooter(page.Meta))
	return sb.String()
}

func runMarketplaceInstall(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	skill, err := c.Marketplace.Install(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if globals.asJSON {
		printOutput(cmd, marshalJSONOrFallback(skill))
		return nil
	}
	printOutput(cmd, fmt.Sprintf("Installed %s\n", valueOr(skill.Name, skill.ID.String())))
	return nil
}
