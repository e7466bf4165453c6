package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textvault/textvault/internal/core/domain"
)

func TestDeleteCmd_Use(t *testing.T) {
	assert.Equal(t, "delete [id]", deleteCmd.Use)
}

func TestDeleteCmd_AbsentIDSucceeds(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "no-such-id"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "Deleted no-such-id.")
}

func TestDeleteCmd_ByReference(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := pipelineService.Ingest(context.Background(), domain.IngestRequest{
		Text:        "to be removed",
		ReferenceID: "doomed",
	})
	require.NoError(t, err)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"delete", "doomed", "--reference"})
	defer func() {
		rootCmd.SetArgs(nil)
		deleteByReference = false
	}()

	err = rootCmd.Execute()

	require.NoError(t, err)

	records, err := pipelineService.ListByReference(context.Background(), "doomed")
	require.NoError(t, err)
	assert.Empty(t, records)
}
