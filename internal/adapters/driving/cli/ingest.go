package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/textvault/textvault/internal/core/domain"
)

var (
	ingestReference string
	ingestChunkSize int
	ingestBatchSize int
	ingestLanguage  string
	ingestJSON      bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Chunk, embed and store a text",
	Long: `Reads text from a file (or stdin when the argument is "-"),
splits it into chunks, embeds each chunk and stores the vectors
under the given reference ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestReference, "reference", "r", "", "reference ID grouping the stored chunks (required)")
	ingestCmd.Flags().IntVar(&ingestChunkSize, "chunk-size", 0, "maximum chunk size in characters")
	ingestCmd.Flags().IntVar(&ingestBatchSize, "batch-size", 0, "embedding batch size")
	ingestCmd.Flags().StringVar(&ingestLanguage, "language", "", "language hint stored with the records")
	ingestCmd.Flags().BoolVar(&ingestJSON, "json", false, "output stored chunks as JSON")
	_ = ingestCmd.MarkFlagRequired("reference")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if err := initServices(); err != nil {
		return err
	}
	defer closeServices()

	text, err := readInput(args[0])
	if err != nil {
		return err
	}

	chunks, err := pipelineService.Ingest(context.Background(), domain.IngestRequest{
		Text:        text,
		ReferenceID: ingestReference,
		Language:    ingestLanguage,
		ChunkSize:   ingestChunkSize,
		BatchSize:   ingestBatchSize,
	})
	if err != nil {
		if len(chunks) > 0 {
			cmd.PrintErrf("partial ingest: %d chunk(s) stored before the failure\n", len(chunks))
		}
		return fmt.Errorf("ingest failed: %w", err)
	}

	if ingestJSON {
		return outputIngestJSON(cmd, chunks)
	}

	cmd.Printf("Stored %d chunk(s) under reference %s:\n", len(chunks), ingestReference)
	for i := range chunks {
		cmd.Printf("  [%d] %s (%d chars)\n", i+1, chunks[i].ID, len(chunks[i].Text))
	}
	return nil
}

func outputIngestJSON(cmd *cobra.Command, chunks []domain.IngestedChunk) error {
	data, err := json.MarshalIndent(chunks, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal chunks: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func readInput(arg string) (string, error) {
	if arg == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}

	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", arg, err)
	}
	if len(data) == 0 {
		return "", errors.New("input is empty")
	}
	return string(data), nil
}
