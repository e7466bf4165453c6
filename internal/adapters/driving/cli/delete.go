package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var deleteByReference bool

var deleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete stored records",
	Long: `Deletes a stored record by ID. With --reference the argument is
treated as a reference ID and every record stored under it is removed.
Deleting something that does not exist is not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVar(&deleteByReference, "reference", false, "delete all records under a reference ID")
	rootCmd.AddCommand(deleteCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	ctx := context.Background()

	if deleteByReference {
		if err := pipelineService.DeleteByReference(ctx, args[0]); err != nil {
			return fmt.Errorf("delete failed: %w", err)
		}
		cmd.Printf("Deleted all records under reference %s.\n", args[0])
		return nil
	}

	if err := pipelineService.Delete(ctx, args[0]); err != nil {
		return fmt.Errorf("delete failed: %w", err)
	}
	cmd.Printf("Deleted %s.\n", args[0])
	return nil
}
