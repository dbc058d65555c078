package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func queryListCmd() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored stories",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryList(cmd, tag)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "Tag to filter")
	return cmd
}

func runQueryList(cmd *cobra.Command, tag string) error {
	ctx, cfg, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	stories, err := db.ListStories(ctx, tag)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(stories) == 0 {
		fmt.Fprintln(out, "No stories found.")
		return nil
	}

	for _, story := range stories {
		advanced := ""
		if story.Advanced {
			advanced = " advanced"
		}
		fmt.Fprintf(out, "%s  %s (%d pages, %d chapters%s) [%s]\n",
			story.ID, story.Title, story.PageCount, story.ChapterCount, advanced, strings.Join(story.Tags, ", "))
	}
	return nil
}
