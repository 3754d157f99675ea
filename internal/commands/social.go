package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var socialPublishReq iris.PublishRequest

var socialAccountsCmd = &cobra.Command{
	Use:   "social:accounts",
	Short: "List connected social accounts",
	Args:  cobra.NoArgs,
	RunE:  runSocialAccounts,
}

var socialPublishCmd = &cobra.Command{
	Use:   "social:publish <content>",
	Short: "Publish or schedule a post",
	Long: `Publish a post to one or more connected platforms.

Examples:
  iris social:publish "We just shipped v2!" --platform twitter --platform linkedin
  iris social:publish "Launch day" --platform instagram --media https://cdn.example.com/a.png \
      --schedule-at 2026-11-01T09:00:00Z`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSocialPublish,
}

func init() {
	f := socialPublishCmd.Flags()
	f.StringSliceVar(&socialPublishReq.Platforms, "platform", nil, "Target platform (repeatable)")
	f.StringSliceVar(&socialPublishReq.MediaURLs, "media", nil, "Media URL (repeatable)")
	f.StringVar(&socialPublishReq.ScheduledAt, "schedule-at", "", "RFC 3339 time to publish at")
}

func runSocialAccounts(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	accounts, err := c.Social.Accounts(cmd.Context())
	if err != nil {
		return err
	}
	printOutput(cmd, formatSocialAccounts(accounts, globals.asJSON))
	return nil
}

func formatSocialAccounts(accounts []iris.SocialAccount, asJSON bool) string {
	if asJSON {
		return listJSON("accounts", accounts)
	}
	if len(accounts) == 0 {
		return "No social accounts connected.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SOCIAL ACCOUNTS (%d)\n", len(accounts)))
	for _, a := range accounts {
		state := "connected"
		if !a.Connected {
			state = "disconnected"
		}
		sb.WriteString(fmt.Sprintf("  %-10s %-24s %s\n", a.Platform, valueOr(a.Username, a.DisplayName), state))
	}
	return sb.String()
}

func runSocialPublish(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	req := socialPublishReq
	req.Content = strings.Join(args, " ")
	result, err := c.Social.Publish(cmd.Context(), req)
	if err != nil {
		return err
	}
	printOutput(cmd, formatPublishResult(result, globals.asJSON))
	if result.HasError() {
		return fmt.Errorf("publishing failed on one or more platforms")
	}
	return nil
}

func formatPublishResult(r *iris.SocialPublishResult, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(r)
	}

	var sb strings.Builder
	switch {
	case r.IsScheduled():
		sb.WriteString(fmt.Sprintf("Scheduled post %s for %s\n", r.ID, r.ScheduledAt))
	case r.IsPublished():
		sb.WriteString(fmt.Sprintf("Published post %s\n", r.ID))
	default:
		sb.WriteString(fmt.Sprintf("Post %s: %s\n", r.ID, valueOr(r.Status, "unknown")))
	}
	for _, p := range r.Results {
		line := fmt.Sprintf("  %-10s %s", p.Platform, p.Status)
		switch {
		case p.Error != "":
			line += ": " + p.Error
		case p.URL != "":
			line += " " + p.URL
		}
		sb.WriteString(line + "\n")
	}
	return sb.String()
}
