package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func usageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "usage <file|story-id> <kind> <id>",
		Short: "Show where an entity is referenced",
		Long:  "Show where a page, chapter, location, variable, condition or function is referenced. Run before deleting it.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUsage(cmd, args[0], args[1], args[2])
		},
	}
	return cmd
}

func runUsage(cmd *cobra.Command, source, kind, id string) error {
	g, err := loadStory(fallbackContext(cmd.Context()), source)
	if err != nil {
		return err
	}

	usage, err := g.UsageByID(kind, id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !usage.InUse {
		fmt.Fprintf(out, "%s %s is not used.\n", kind, id)
		return nil
	}
	fmt.Fprintf(out, "%s %s is used in:\n", kind, id)
	for _, place := range usage.UsedIn {
		fmt.Fprintf(out, "  - %s\n", place)
	}
	return nil
}
