package commands

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var (
	chatAgentID        string
	chatBloqID         string
	chatUseRAG         bool
	chatConversationID string
	chatTimeout        time.Duration
	chatInterval       time.Duration
	chatResumeWait     bool
)

var chatStartCmd = &cobra.Command{
	Use:   "chat:start <query>",
	Short: "Start a chat workflow without waiting",
	Long: `Start a chat workflow and print its id. Follow it with chat:status, or
use chat:run to start and wait in one step.

Examples:
  iris chat:start "Summarise this week's leads"
  iris chat:start "What does the onboarding doc say?" --bloq 12 --rag`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChatStart,
}

var chatStatusCmd = &cobra.Command{
	Use:   "chat:status <workflow_id>",
	Short: "Show the current state of a workflow",
	Args:  cobra.ExactArgs(1),
	RunE:  runChatStatus,
}

var chatRunCmd = &cobra.Command{
	Use:   "chat:run <query>",
	Short: "Start a chat workflow and wait for the result",
	Long: `Start a chat workflow and poll until it completes, fails, pauses for
approval, or --timeout elapses. Progress is written to stderr.

A timeout does not cancel the workflow; it keeps running server-side and can
be checked later with chat:status.

Examples:
  iris chat:run "Draft a follow-up email for lead 42"
  iris chat:run "Research competitors" --agent 7 --timeout 10m`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChatRun,
}

var chatResumeCmd = &cobra.Command{
	Use:   "chat:resume <workflow_id> <feedback>",
	Short: "Resume a workflow paused for approval",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runChatResume,
}

func init() {
	for _, cmd := range []*cobra.Command{chatStartCmd, chatRunCmd} {
		cmd.Flags().StringVar(&chatAgentID, "agent", "", "Agent id to run the query")
		cmd.Flags().StringVar(&chatBloqID, "bloq", "", "Bloq id for knowledge base context")
		cmd.Flags().BoolVar(&chatUseRAG, "rag", false, "Use knowledge base retrieval")
		cmd.Flags().StringVar(&chatConversationID, "conversation", "", "Continue an existing conversation")
	}
	chatRunCmd.Flags().DurationVar(&chatTimeout, "timeout", iris.DefaultMaxPollingDuration, "Maximum time to wait for the workflow")
	chatRunCmd.Flags().DurationVar(&chatInterval, "interval", iris.DefaultPollingInterval, "Delay between status checks")
	chatResumeCmd.Flags().BoolVar(&chatResumeWait, "wait", false, "Wait for the resumed workflow to finish")
	chatResumeCmd.Flags().DurationVar(&chatTimeout, "timeout", iris.DefaultMaxPollingDuration, "Maximum time to wait with --wait")
}

func chatStartRequest(args []string) iris.StartRequest {
	return iris.StartRequest{
		Query:          strings.Join(args, " "),
		AgentID:        iris.ID(chatAgentID),
		BloqID:         iris.ID(chatBloqID),
		UseRAG:         chatUseRAG,
		ConversationID: chatConversationID,
	}
}

func runChatStart(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	status, err := c.Chat.Start(cmd.Context(), chatStartRequest(args))
	if err != nil {
		return err
	}
	printOutput(cmd, formatWorkflowOutput(status, globals.asJSON))
	return nil
}

func runChatStatus(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	status, err := c.Chat.GetStatus(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	printOutput(cmd, formatWorkflowOutput(status, globals.asJSON))
	return nil
}

func runChatRun(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags(
		iris.WithMaxPollingDuration(chatTimeout),
		iris.WithPollingInterval(chatInterval),
	)
	if err != nil {
		return err
	}
	status, err := doChatRun(cmd.Context(), c, chatStartRequest(args), progressPrinter(cmd.ErrOrStderr(), globals.asJSON))
	if err != nil {
		return err
	}
	printOutput(cmd, formatWorkflowOutput(status, globals.asJSON))
	return nil
}

// doChatRun executes a workflow to a terminal or approval state.
func doChatRun(ctx context.Context, c *iris.Client, req iris.StartRequest, onProgress iris.ProgressFunc) (*iris.WorkflowStatus, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	return c.Chat.Execute(ctx, req, onProgress)
}

// progressPrinter writes one line per status change. It stays quiet in JSON
// mode so stdout and stderr can both be parsed.
func progressPrinter(w io.Writer, asJSON bool) iris.ProgressFunc {
	if asJSON {
		return nil
	}
	var last string
	return func(s *iris.WorkflowStatus) {
		line := formatProgressLine(s)
		if line == last {
			return
		}
		last = line
		fmt.Fprintln(w, line)
	}
}

func formatProgressLine(s *iris.WorkflowStatus) string {
	line := fmt.Sprintf("[%s]", valueOr(s.Status, "unknown"))
	if s.Progress > 0 {
		line += " " + formatPercent(s.Progress)
	}
	if s.Summary != "" && !s.IsCompleted() {
		line += " " + truncate(s.Summary, 70)
	}
	return line
}

func runChatResume(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags(iris.WithMaxPollingDuration(chatTimeout))
	if err != nil {
		return err
	}
	status, err := doChatResume(cmd.Context(), c, args[0], strings.Join(args[1:], " "), chatResumeWait,
		progressPrinter(cmd.ErrOrStderr(), globals.asJSON))
	if err != nil {
		return err
	}
	printOutput(cmd, formatWorkflowOutput(status, globals.asJSON))
	return nil
}

func doChatResume(ctx context.Context, c *iris.Client, workflowID, feedback string, wait bool, onProgress iris.ProgressFunc) (*iris.WorkflowStatus, error) {
	status, err := c.Chat.Resume(ctx, workflowID, feedback)
	if err != nil {
		return nil, err
	}
	if !wait || status.IsTerminal() {
		return status, nil
	}
	return c.Chat.Wait(ctx, status.WorkflowID, onProgress)
}

func formatWorkflowOutput(s *iris.WorkflowStatus, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(s)
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Workflow %s: %s\n", s.WorkflowID, valueOr(s.Status, "unknown")))
	if s.NeedsApproval() {
		sb.WriteString(fmt.Sprintf("Waiting for approval. Resume with: iris chat:resume %s \"<feedback>\"\n", s.WorkflowID))
	}
	if s.Error != "" {
		sb.WriteString(fmt.Sprintf("Error: %s\n", s.Error))
	}
	if s.Summary != "" {
		sb.WriteString("\n")
		sb.WriteString(strings.TrimRight(s.Summary, "\n"))
		sb.WriteString("\n")
	}
	if s.Summary == "" && s.Result != nil {
		sb.WriteString("\n")
		sb.WriteString(formatResult(s.Result))
	}
	return sb.String()
}

func formatResult(v any) string {
	if str, ok := v.(string); ok {
		return strings.TrimRight(str, "\n") + "\n"
	}
	return marshalJSONOrFallback(v)
}
