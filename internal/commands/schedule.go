package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var (
	scheduleReq     iris.ScheduleRequest
	scheduleAgentID string
)

var scheduleListCmd = &cobra.Command{
	Use:   "schedule:list",
	Short: "List scheduled agent runs",
	Args:  cobra.NoArgs,
	RunE:  runScheduleList,
}

var scheduleCreateCmd = &cobra.Command{
	Use:   "schedule:create",
	Short: "Schedule a recurring agent run",
	Long: `Schedule a recurring agent run with a 5 or 6 field cron expression.

Examples:
  iris schedule:create --cron "0 9 * * 1-5" --prompt "Summarise new leads" --agent 7
  iris schedule:create --cron "*/30 * * * *" --prompt "Check inbox" --timezone Europe/Paris`,
	Args: cobra.NoArgs,
	RunE: runScheduleCreate,
}

var scheduleDeleteCmd = &cobra.Command{
	Use:   "schedule:delete <schedule_id>",
	Short: "Delete a schedule",
	Args:  cobra.ExactArgs(1),
	RunE:  runScheduleDelete,
}

func init() {
	f := scheduleCreateCmd.Flags()
	f.StringVar(&scheduleReq.Cron, "cron", "", "Cron expression (required)")
	f.StringVar(&scheduleReq.Prompt, "prompt", "", "Prompt to run (required)")
	f.StringVar(&scheduleReq.Name, "name", "", "Schedule name")
	f.StringVar(&scheduleReq.Timezone, "timezone", "", "IANA timezone (default: server time)")
	f.StringVar(&scheduleAgentID, "agent", "", "Agent to run the prompt")
	_ = scheduleCreateCmd.MarkFlagRequired("cron")
	_ = scheduleCreateCmd.MarkFlagRequired("prompt")
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	schedules, err := c.Schedules.List(cmd.Context())
	if err != nil {
		return err
	}
	printOutput(cmd, formatSchedules(schedules, globals.asJSON))
	return nil
}

func formatSchedules(schedules []iris.Schedule, asJSON bool) string {
	if asJSON {
		return listJSON("schedules", schedules)
	}
	if len(schedules) == 0 {
		return "No schedules.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("SCHEDULES (%d)\n", len(schedules)))
	for _, s := range schedules {
		line := fmt.Sprintf("  %-8s %-16s %-20s", s.ID, s.Cron, truncate(valueOr(s.Name, s.Prompt), 20))
		if !s.IsActive() {
			line += " (" + valueOr(s.Status, "inactive") + ")"
		} else if s.NextRunAt != "" {
			line += " next " + s.NextRunAt
		}
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	return sb.String()
}

func runScheduleCreate(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	req := scheduleReq
	req.AgentID = iris.ID(scheduleAgentID)
	schedule, err := c.Schedules.Create(cmd.Context(), req)
	if err != nil {
		return err
	}
	if globals.asJSON {
		printOutput(cmd, marshalJSONOrFallback(schedule))
		return nil
	}
	printOutput(cmd, fmt.Sprintf("Created schedule %s (%s)\n", schedule.ID, schedule.Cron))
	return nil
}

func runScheduleDelete(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	if err := c.Schedules.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	if globals.asJSON {
		printOutput(cmd, marshalJSONOrFallback(map[string]string{"deleted": args[0]}))
		return nil
	}
	printOutput(cmd, fmt.Sprintf("Deleted schedule %s\n", args[0]))
	return nil
}
