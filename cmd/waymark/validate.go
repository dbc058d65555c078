package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"waymark/internal/config"
	"waymark/internal/model"
	"waymark/internal/validate"
)

func validateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <file|story-id>",
		Short: "Check a story for broken records and references",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidate,
	}
	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := fallbackContext(cmd.Context())
	g, err := loadStory(ctx, args[0])
	if err != nil {
		return err
	}

	report, err := validate.Run(g, projectBounds())
	if err != nil {
		return err
	}

	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	out := cmd.OutOrStdout()
	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(errorIssues))
		printIssues(out, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "Warnings (%d):\n", len(warnIssues))
		printIssues(out, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

// projectBounds uses the project's radius limits when a project file is
// present.
func projectBounds() model.Bounds {
	cfg, err := config.LoadProjectConfig(configPath)
	if err != nil {
		return model.DefaultBounds
	}
	return cfg.Bounds.Model()
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.ID
		if issue.Kind != "" {
			location = fmt.Sprintf("%s %s", issue.Kind, issue.ID)
		}
		if issue.Entity != "" {
			location = fmt.Sprintf("%s (%s)", location, issue.Entity)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
