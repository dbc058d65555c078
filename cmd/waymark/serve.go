package main

import (
	"os/signal"
	"syscall"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"waymark/internal/mcp"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server over stdio",
		RunE:  runServe,
	}
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx, cfg, err := loadProject(ctx)
	if err != nil {
		return err
	}

	db, err := openDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close(ctx)

	log := zerolog.Ctx(ctx)
	log.Info().Str("project", cfg.Project).Msg("serving MCP over stdio")
	server := mcp.NewServer(db, mcp.Options{
		Version: version,
		Bounds:  cfg.Bounds.Model(),
		Logger:  *log,
	})
	return server.Run(ctx, &sdk.StdioTransport{})
}
