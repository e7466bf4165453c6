package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/textvault/textvault/internal/core/domain"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list [reference-id]",
	Short: "List records stored under a reference ID",
	Long: `Lists every record stored under the given reference ID in
insertion order. Useful for checking what a partially failed ingest
left behind before deleting or re-ingesting.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output records as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	records, err := pipelineService.ListByReference(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("list failed: %w", err)
	}

	if listJSON {
		return outputListJSON(cmd, records)
	}

	if len(records) == 0 {
		cmd.Printf("No records under reference %s.\n", args[0])
		return nil
	}

	cmd.Printf("%d record(s) under reference %s:\n", len(records), args[0])
	for i := range records {
		cmd.Printf("  [%d] %s (%d chars)\n", i+1, records[i].ID, len(records[i].Text))
	}
	return nil
}

func outputListJSON(cmd *cobra.Command, records []domain.Record) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
