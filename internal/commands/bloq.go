package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var (
	bloqListOpts   iris.ListOptions
	bloqJobsFilter iris.IngestionJobFilter
	bloqUploadMeta []string
)

var bloqListCmd = &cobra.Command{
	Use:   "bloq:list",
	Short: "List your bloqs",
	Args:  cobra.NoArgs,
	RunE:  runBloqList,
}

var bloqIngestionJobsCmd = &cobra.Command{
	Use:   "bloq:ingestion-jobs <bloq_id>",
	Short: "List file ingestion jobs for a bloq",
	Long: `List file ingestion jobs for a bloq.

Examples:
  iris bloq:ingestion-jobs 12
  iris bloq:ingestion-jobs 12 --status failed --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runBloqIngestionJobs,
}

var bloqUploadCmd = &cobra.Command{
	Use:   "bloq:upload <bloq_id> <file>",
	Short: "Upload a file into a bloq",
	Args:  cobra.ExactArgs(2),
	RunE:  runBloqUpload,
}

func init() {
	bindListOptions(bloqListCmd, &bloqListOpts)

	f := bloqIngestionJobsCmd.Flags()
	f.StringVar(&bloqJobsFilter.Status, "status", "", "Filter by job status")
	f.IntVar(&bloqJobsFilter.Limit, "limit", 0, "Maximum jobs to return")
	f.IntVar(&bloqJobsFilter.Page, "page", 0, "Page number")

	bloqUploadCmd.Flags().StringArrayVar(&bloqUploadMeta, "meta", nil, "Metadata key=value (repeatable)")
}

func runBloqList(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	page, err := c.Bloqs.List(cmd.Context(), &bloqListOpts)
	if err != nil {
		return err
	}
	printOutput(cmd, formatBloqs(page, globals.asJSON))
	return nil
}

func formatBloqs(page *iris.Page[iris.Bloq], asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(page)
	}
	if len(page.Items) == 0 {
		return "No bloqs found.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("BLOQS (%d)\n", len(page.Items)))
	for _, b := range page.Items {
		sb.WriteString(fmt.Sprintf("  %-8s %-30s %3d files  %s\n", b.ID, truncate(b.Name, 30), b.FileCount, valueOr(b.Visibility, "-")))
	}
	sb.WriteString(formatPageFooter(page.Meta))
	return sb.String()
}

func runBloqIngestionJobs(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	jobs, err := c.Bloqs.IngestionJobs(cmd.Context(), args[0], &bloqJobsFilter)
	if err != nil {
		return err
	}
	printOutput(cmd, formatIngestionJobs(jobs, globals.asJSON))
	return nil
}

func formatIngestionJobs(jobs []iris.IngestionJob, asJSON bool) string {
	if asJSON {
		return listJSON("jobs", jobs)
	}
	if len(jobs) == 0 {
		return "No ingestion jobs.\n"
	}

	var sb strings.Builder
	var failed int
	sb.WriteString(fmt.Sprintf("INGESTION JOBS (%d)\n", len(jobs)))
	for _, j := range jobs {
		line := fmt.Sprintf("  %-8s %-11s %-30s", j.ID, j.Status, truncate(valueOr(j.Filename, "-"), 30))
		switch {
		case j.IsFailed():
			failed++
			if j.Error != "" {
				line += " " + truncate(j.Error, 60)
			}
		case !j.IsDone() && j.Progress > 0:
			line += " " + formatPercent(j.Progress)
		}
		sb.WriteString(strings.TrimRight(line, " ") + "\n")
	}
	if failed > 0 {
		sb.WriteString(fmt.Sprintf("\n%d failed\n", failed))
	}
	return sb.String()
}

func runBloqUpload(cmd *cobra.Command, args []string) error {
	meta, err := parseKeyValues(bloqUploadMeta)
	if err != nil {
		return err
	}
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	job, err := c.Bloqs.Upload(cmd.Context(), args[0], args[1], meta)
	if err != nil {
		return err
	}
	if globals.asJSON {
		printOutput(cmd, marshalJSONOrFallback(job))
		return nil
	}
	printOutput(cmd, fmt.Sprintf("Queued %s as ingestion job %s (%s)\n",
		valueOr(job.Filename, args[1]), job.ID, valueOr(job.Status, "pending")))
	return nil
}
