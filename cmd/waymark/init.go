package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"waymark/internal/config"
)

const exampleStory = `{
  "id": "example-walk",
  "title": "Example Walk",
  "description": "A two page walk to get started.",
  "tags": ["example"],
  "pages": [
    {"id": "start", "name": "Start", "content": "Begin at the gate."},
    {"id": "finish", "name": "Finish", "content": "You made it.", "unlockedByPageIds": ["start"]}
  ],
  "chapters": [
    {"id": "walk", "name": "The Walk", "pageIds": ["start", "finish"]}
  ]
}
`

func initCmd() *cobra.Command {
	var projectName string
	var dsn string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a new waymark project",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(projectName) == "" {
				return fmt.Errorf("--name is required")
			}
			if err := runInit(projectName, dsn); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s and stories/example.json\n", configPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&projectName, "name", "", "Project name")
	cmd.Flags().StringVar(&dsn, "dsn", config.DefaultDSN, "Storage DSN (sqlite:// or postgres://)")
	return cmd
}

func runInit(projectName, dsn string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("%s already exists", configPath)
	}
	if config.Backend(dsn) == "" {
		return fmt.Errorf("unsupported storage dsn: %s", dsn)
	}

	configContents := fmt.Sprintf("project: %s\nversion: 1\n\nstorage:\n  dsn: %s\n\nlog:\n  level: info\n  format: console\n\nimport:\n  patterns:\n    - stories/**/*.json\n    - stories/**/*.yaml\n  exclude:\n    - stories/drafts/**\n", projectName, dsn)
	if err := os.WriteFile(configPath, []byte(configContents), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", configPath, err)
	}

	storyPath := filepath.Join("stories", "example.json")
	if _, err := os.Stat(storyPath); err == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(storyPath), 0o755); err != nil {
		return fmt.Errorf("creating stories directory: %w", err)
	}
	if config.Backend(dsn) == "sqlite" {
		if err := os.MkdirAll(".waymark", 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}
	if err := os.WriteFile(storyPath, []byte(exampleStory), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", storyPath, err)
	}
	return nil
}
