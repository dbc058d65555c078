package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"waymark/internal/ingest"
)

var ingestFull bool

func ingestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Import story files into the store",
		RunE:  runIngest,
	}
	cmd.Flags().BoolVar(&ingestFull, "full", false, "Force full re-import (ignore stored hashes)")
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, cfg, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	result, err := ingest.Run(ctx, cfg, db, ingest.Options{Full: ingestFull})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "Import complete.")
	fmt.Fprintf(out, "  Stories saved:   %d\n", result.StoriesSaved)
	fmt.Fprintf(out, "  Stories removed: %d\n", result.StoriesRemoved)
	fmt.Fprintf(out, "  Files skipped:   %d\n", result.FilesSkipped)

	if len(result.Errors) > 0 {
		fmt.Fprintf(out, "\nErrors (%d):\n", len(result.Errors))
		for _, item := range result.Errors {
			fmt.Fprintf(out, "  - %v\n", item)
		}
		return fmt.Errorf("import completed with errors")
	}

	return nil
}
