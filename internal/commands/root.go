// Package commands implements the iris CLI commands.
package commands

import (
	"context"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iris-platform/iris-go/internal/config"
)

var versionInfo struct {
	version string
	commit  string
	date    string
}

// SetVersionInfo sets version information from main (populated by goreleaser).
func SetVersionInfo(version, commit, date string) {
	versionInfo.version = version
	versionInfo.commit = commit
	versionInfo.date = date
	rootCmd.Version = formatVersion()
}

func formatVersion() string {
	v := versionInfo.version
	if versionInfo.commit != "" && versionInfo.commit != "none" {
		v += " (commit " + versionInfo.commit + ")"
	}
	if versionInfo.date != "" && versionInfo.date != "unknown" {
		v += " built " + versionInfo.date
	}
	return v
}

// logger is replaced with a development logger by --verbose.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "iris",
	Short: "Command line client for the IRIS platform",
	Long: `iris talks to the IRIS platform API: chat workflows, agents, CRM leads,
phone numbers, knowledge base search, social publishing, marketplace skills,
products, integrations, bloqs, schedules and payments.

Commands are named <domain>:<operation>, e.g. "iris leads:list".

Credentials are resolved in this order:
  1. --api-key / --user-id / --base-url flags
  2. IRIS_API_KEY / IRIS_USER_ID / IRIS_BASE_URL (a .env file is loaded first)
  3. the credential file written by "iris login"

Environment variables:
  IRIS_API_KEY   - API key
  IRIS_USER_ID   - Acting user id
  IRIS_BASE_URL  - API host (default: https://api.iris.freelabs.ai)
  IRIS_CONFIG    - Credential file path`,
	// Don't show usage/errors on errors from subcommands (main.go handles errors)
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupGlobals,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	globals.bind(rootCmd.PersistentFlags())

	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd)
	rootCmd.AddCommand(chatStartCmd, chatStatusCmd, chatRunCmd, chatResumeCmd)
	rootCmd.AddCommand(agentsListCmd, agentsGetCmd)
	rootCmd.AddCommand(leadsListCmd, leadsGetCmd, leadsCreateCmd, leadsNoteCmd)
	rootCmd.AddCommand(phoneAvailableCmd, phonePurchaseCmd, phoneListCmd)
	rootCmd.AddCommand(ragSearchCmd, ragUploadCmd)
	rootCmd.AddCommand(socialAccountsCmd, socialPublishCmd)
	rootCmd.AddCommand(marketplaceSkillsCmd, marketplaceInstallCmd)
	rootCmd.AddCommand(productsListCmd)
	rootCmd.AddCommand(integrationsListCmd)
	rootCmd.AddCommand(bloqListCmd, bloqIngestionJobsCmd, bloqUploadCmd)
	rootCmd.AddCommand(scheduleListCmd, scheduleCreateCmd, scheduleDeleteCmd)
	rootCmd.AddCommand(paymentsCheckoutCmd, paymentsListCmd)
}

func setupGlobals(cmd *cobra.Command, args []string) error {
	config.SetPath(globals.configPath)
	if globals.verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return err
		}
		logger = l
	} else {
		logger = zap.NewNop()
	}
	return nil
}

func loadDotenvBestEffort() {
	_ = godotenv.Load()
}

// Execute runs the root command. Interrupts cancel in-flight requests and
// polling.
func Execute() error {
	loadDotenvBestEffort()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		logger.Error("command failed", zap.Error(err))
	}
	_ = logger.Sync()
	return err
}
