package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var ingestTags []string

var ingestCmd = &cobra.Command{
	Use:   "ingest [file...]",
	Short: "Ingest documents into the knowledge store",
	Long: `Reads each file, splits it into chunks, embeds them and stores the
result under the acting user. Re-ingesting an unchanged file is a no-op;
the existing document id is returned.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringSliceVarP(&ingestTags, "tags", "t", nil, "tags to attach to the documents")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	userID, err := currentUser()
	if err != nil {
		return err
	}

	var failed int
	for _, path := range args {
		content, err := os.ReadFile(path)
		if err != nil {
			cmd.PrintErrf("skipping %s: %v\n", path, err)
			failed++
			continue
		}

		docID, err := knowledgeService.Ingest(
			cmd.Context(), userID, filepath.Base(path), string(content), ingestTags)
		if err != nil {
			cmd.PrintErrf("ingest %s: %v\n", path, err)
			failed++
			continue
		}

		cmd.Printf("Ingested %s: %s\n", path, docID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(args))
	}
	return nil
}
