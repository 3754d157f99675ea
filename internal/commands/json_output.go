package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func marshalJSONOrFallback(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err == nil {
		return string(data) + "\n"
	}

	// Best-effort fallback: always return valid JSON for --json callers.
	fallback, fallbackErr := json.Marshal(map[string]string{
		"error": "failed to marshal JSON output",
	})
	if fallbackErr != nil {
		return "{}\n"
	}
	return string(fallback) + "\n"
}

// listJSON is the --json shape of every list command.
func listJSON[T any](key string, items []T) string {
	if items == nil {
		items = []T{}
	}
	return marshalJSONOrFallback(map[string]any{
		key:     items,
		"count": len(items),
	})
}

func printOutput(cmd *cobra.Command, output string) {
	fmt.Fprint(cmd.OutOrStdout(), output)
}
