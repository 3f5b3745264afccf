package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var knowledgeCmd = &cobra.Command{
	Use:   "knowledge",
	Short: "Manage the scheme knowledge index used by GramSathi chat",
}

var knowledgeIndexCmd = &cobra.Command{
	Use:   "index",
	Short: "Embed every scheme in the catalog and upsert it into Qdrant",
	Long: `Embed every scheme in the catalog and upsert it into Qdrant.

Requires QDRANT_URL and an LLM provider that supports embeddings.
Point IDs are derived from scheme IDs, so re-running replaces existing entries.`,
	RunE: runKnowledgeIndex,
}

func init() {
	knowledgeCmd.AddCommand(knowledgeIndexCmd)
}

func runKnowledgeIndex(cmd *cobra.Command, args []string) error {
	a, err := buildApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Knowledge == nil {
		return errors.New("QDRANT_URL is not set")
	}
	n, err := a.Knowledge.IndexSchemes(cmd.Context(), a.Schemes.All())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "indexed %d schemes\n", n)
	return nil
}
