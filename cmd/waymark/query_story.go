package main

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func queryStoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "story <id>",
		Short: "Print a stored story as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQueryStory(cmd, args[0])
		},
	}
	return cmd
}

func runQueryStory(cmd *cobra.Command, id string) error {
	ctx, cfg, err := loadProject(cmd.Context())
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	record, err := db.GetStory(ctx, id)
	if err != nil {
		return err
	}
	if record == nil {
		return fmt.Errorf("story %s not found", id)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, record.Snapshot, "", "  "); err != nil {
		return fmt.Errorf("formatting story %s: %w", id, err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), pretty.String())
	return nil
}
