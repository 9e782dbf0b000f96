package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage ingested documents",
	Long:  `List, inspect, re-embed or delete the acting user's documents.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the user's documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentChunksCmd = &cobra.Command{
	Use:   "chunks [doc-id]",
	Short: "Show a document's chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentChunks,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete a document and its chunks",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentReembedCmd = &cobra.Command{
	Use:   "reembed [doc-id]",
	Short: "Retry embedding for chunks without a vector",
	Long: `Re-embeds a document's chunks that have no embedding, typically after
a provider outage or a permanent failure that has since been resolved.`,
	Args: cobra.ExactArgs(1),
	RunE: runDocumentReembed,
}

func init() {
	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentChunksCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentReembedCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	userID, err := currentUser()
	if err != nil {
		return err
	}

	docs, err := knowledgeService.ListDocuments(cmd.Context(), userID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}

	if len(docs) == 0 {
		cmd.Printf("No documents found for user: %s\n", userID)
		return nil
	}

	cmd.Printf("Documents for user %s:\n\n", userID)
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    File:     %s (%d bytes)\n", docs[i].Filename, docs[i].FileSize)
		cmd.Printf("    Status:   %s, %d chunks\n", docs[i].Status, docs[i].ChunkCount)
		cmd.Printf("    Ingested: %s\n", docs[i].IngestedAt.Format("2006-01-02 15:04:05"))
		if len(docs[i].Tags) > 0 {
			cmd.Printf("    Tags:     %s\n", strings.Join(docs[i].Tags, ", "))
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentChunks(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	userID, err := currentUser()
	if err != nil {
		return err
	}

	chunks, err := knowledgeService.ListChunks(cmd.Context(), userID, args[0])
	if err != nil {
		return fmt.Errorf("failed to list chunks: %w", err)
	}

	cmd.Printf("Chunks of document %s:\n\n", args[0])
	for i := range chunks {
		cmd.Printf("  [%d] %s (%s)\n", chunks[i].Index, chunks[i].ID, chunks[i].EmbeddingState)
		cmd.Printf("      %s\n", snippet(chunks[i].Content, 120))
	}
	cmd.Printf("\nTotal: %d chunks\n", len(chunks))
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	userID, err := currentUser()
	if err != nil {
		return err
	}

	if err := knowledgeService.Delete(cmd.Context(), userID, args[0]); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Deleted document: %s\n", args[0])
	return nil
}

func runDocumentReembed(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	userID, err := currentUser()
	if err != nil {
		return err
	}

	updated, err := knowledgeService.ReEmbed(cmd.Context(), userID, args[0])
	if err != nil {
		return fmt.Errorf("failed to re-embed document: %w", err)
	}

	if updated == 0 {
		cmd.Println("All chunks already embedded.")
		return nil
	}
	cmd.Printf("Re-embedded %d chunks.\n", updated)
	return nil
}
