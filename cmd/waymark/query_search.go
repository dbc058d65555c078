package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func querySearchCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Full-text search over titles, tags and page text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuerySearch(cmd, strings.Join(args, " "), tag)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Tag to filter")
	return cmd
}

func runQuerySearch(cmd *cobra.Command, query, tag string) error {
	ctx, cfg, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	results, err := db.Search(ctx, query, tag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(results) == 0 {
		fmt.Fprintln(out, "No matches found.")
		return nil
	}

	for _, result := range results {
		fmt.Fprintf(out, "%s  %s score=%.2f\n", result.ID, result.Title, result.Score)
		if result.Snippet != "" {
			fmt.Fprintf(out, "    %s\n", strings.ReplaceAll(result.Snippet, "\n", " "))
		}
	}
	return nil
}
