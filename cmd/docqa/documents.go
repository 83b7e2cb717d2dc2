package main

import (
	"fmt"
	"io"
	"os"

	"github.com/akolanti/docqa/internal/domain/commonModels"
	"github.com/spf13/cobra"
)

var documentsCmd = &cobra.Command{
	Use:   "documents",
	Short: "List ingested documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := openApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer closeApp(pipeline)

		printDocuments(cmd.OutOrStdout(), pipeline.Service.Documents())
		return nil
	},
}

var repairCmd = &cobra.Command{
	Use:   "repair",
	Short: "Delete and reinitialise the vector index",
	Long:  "Delete and reinitialise the vector index. Every document has to be ingested again afterwards.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flagNoSync = true
		pipeline, err := openApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer closeApp(pipeline)

		if err := pipeline.Service.RepairStore(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Vector index rebuilt. Ingest your documents again.")
		return nil
	},
}

var clearDataCmd = &cobra.Command{
	Use:   "clear-data",
	Short: "Delete stored documents, the vector index and the conversation history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		flagNoSync = true
		pipeline, err := openApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer closeApp(pipeline)

		if err := pipeline.Service.ClearAllData(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "All documents, embeddings and history deleted.")
		return nil
	},
}

func printDocuments(w io.Writer, docs []commonModels.Document) {
	if len(docs) == 0 {
		fmt.Fprintln(w, "No documents ingested.")
		return
	}
	for _, d := range docs {
		fmt.Fprintf(w, "%s (%s, %d pages, %d chunks)\n", d.Id, d.ContentType, d.PageCount, d.ChunkCount)
		fmt.Fprintf(w, "  %s\n", d.Title)
		if d.Summary != "" {
			fmt.Fprintf(w, "  %s\n", d.Summary)
		}
	}
}
