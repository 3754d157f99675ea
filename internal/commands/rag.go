package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iris-platform/iris-go/pkg/iris"
)

var ragSearchReq iris.SearchRequest

var (
	ragBloqID      string
	ragUploadTitle string
	ragUploadMeta  []string
)

var ragSearchCmd = &cobra.Command{
	Use:   "rag:search <query>",
	Short: "Search the knowledge base",
	Long: `Search the knowledge base and print the best matching chunks.

Examples:
  iris rag:search "refund policy"
  iris rag:search "pricing tiers" --bloq 12 --top-k 3 --min-score 0.7`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRAGSearch,
}

var ragUploadCmd = &cobra.Command{
	Use:   "rag:upload <file>",
	Short: "Upload a document to the knowledge base",
	Args:  cobra.ExactArgs(1),
	RunE:  runRAGUpload,
}

func init() {
	ragSearchCmd.Flags().IntVar(&ragSearchReq.TopK, "top-k", 5, "Number of results")
	ragSearchCmd.Flags().Float64Var(&ragSearchReq.MinScore, "min-score", 0, "Drop results scoring below this")
	ragSearchCmd.Flags().StringVar(&ragBloqID, "bloq", "", "Restrict to one bloq")

	ragUploadCmd.Flags().StringVar(&ragBloqID, "bloq", "", "Bloq to add the document to")
	ragUploadCmd.Flags().StringVar(&ragUploadTitle, "title", "", "Document title (default: file name)")
	ragUploadCmd.Flags().StringArrayVar(&ragUploadMeta, "meta", nil, "Metadata key=value (repeatable)")
}

func runRAGSearch(cmd *cobra.Command, args []string) error {
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	req := ragSearchReq
	req.Query = strings.Join(args, " ")
	req.BloqID = iris.ID(ragBloqID)
	results, err := c.RAG.Search(cmd.Context(), req)
	if err != nil {
		return err
	}
	printOutput(cmd, formatSearchResults(results, globals.asJSON))
	return nil
}

func formatSearchResults(results []iris.SearchResult, asJSON bool) string {
	if asJSON {
		return listJSON("results", results)
	}
	if len(results) == 0 {
		return "No matches.\n"
	}

	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n")
		}
		header := fmt.Sprintf("%d. score %.3f", i+1, r.Score)
		if r.Source != "" {
			header += " - " + r.Source
		}
		sb.WriteString(header + "\n")
		sb.WriteString("   " + truncate(r.Content, 240) + "\n")
	}
	return sb.String()
}

func runRAGUpload(cmd *cobra.Command, args []string) error {
	meta, err := parseKeyValues(ragUploadMeta)
	if err != nil {
		return err
	}
	c, err := clientFromFlags()
	if err != nil {
		return err
	}
	doc, err := c.RAG.Upload(cmd.Context(), args[0], &iris.UploadOptions{
		Title:    ragUploadTitle,
		BloqID:   iris.ID(ragBloqID),
		Metadata: meta,
	})
	if err != nil {
		return err
	}
	if globals.asJSON {
		printOutput(cmd, marshalJSONOrFallback(doc))
		return nil
	}
	printOutput(cmd, fmt.Sprintf("Uploaded %s as document %s (%s)\n",
		valueOr(doc.Title, valueOr(doc.Filename, args[0])), doc.ID, valueOr(doc.Status, "pending")))
	return nil
}
