package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file>...",
	Short: "Copy documents into storage and index them",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipeline, err := openApp(cmd.Context(), os.Stderr)
		if err != nil {
			return err
		}
		defer closeApp(pipeline)

		failed := 0
		for _, path := range args {
			res, err := pipeline.Service.IngestFile(cmd.Context(), path)
			if err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
				continue
			}
			doc := res.Document
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d pages, %d chunks\n  %s\n", doc.Id, doc.PageCount, doc.ChunkCount, doc.Title)
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d documents failed", failed, len(args))
		}
		return nil
	},
}
