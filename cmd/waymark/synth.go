package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"waymark/internal/synth"
)

func synthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "synth <file|story-id>",
		Short: "List the auto-generated variables, conditions and locations of a story",
		Args:  cobra.ExactArgs(1),
		RunE:  runSynth,
	}
	return cmd
}

func runSynth(cmd *cobra.Command, args []string) error {
	g, err := loadStory(fallbackContext(cmd.Context()), args[0])
	if err != nil {
		return err
	}

	set := synth.Derive(g.View())
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Variables (%d):\n", len(set.Variables))
	for _, v := range set.Variables {
		fmt.Fprintf(out, "  %s  %s\n", v.ID, v.Name)
	}
	fmt.Fprintf(out, "Conditions (%d):\n", len(set.Conditions))
	for _, c := range set.Conditions {
		fmt.Fprintf(out, "  %s  %s [%s]\n", c.ID, c.Name, c.Type())
	}
	fmt.Fprintf(out, "Locations (%d):\n", len(set.Locations))
	for _, l := range set.Locations {
		fmt.Fprintf(out, "  %s  %s\n", l.ID, l.Name)
	}
	return nil
}
