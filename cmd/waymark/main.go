package main

import (
	"os"

	"github.com/spf13/cobra"

	"waymark/internal/config"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:           "waymark",
		Short:         "Location-aware story authoring toolkit",
		SilenceUsage: true,
	}
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "Project config file")
	root.AddCommand(initCmd())
	root.AddCommand(ingestCmd())
	root.AddCommand(validateCmd())
	root.AddCommand(usageCmd())
	root.AddCommand(synthCmd())
	root.AddCommand(queryCmd())
	root.AddCommand(watchCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
