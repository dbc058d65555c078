package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"waymark/internal/model"
	"waymark/internal/parser"
	"waymark/internal/store"
	"waymark/internal/validate"
	"waymark/internal/watch"
)

func watchCmd() *cobra.Command {
	var save bool
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Re-validate a story file on every save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args[0], save, debounce)
		},
	}
	cmd.Flags().BoolVar(&save, "save", false, "Also save each valid revision to the store")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "Quiet period before re-parsing")
	return cmd
}

func runWatch(cmd *cobra.Command, path string, save bool, debounce time.Duration) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var bounds model.Bounds
	var db store.Store
	if save {
		projectCtx, cfg, err := loadProject(ctx)
		if err != nil {
			return err
		}
		ctx = projectCtx
		bounds = cfg.Bounds.Model()
		if db, err = openDB(ctx, cfg); err != nil {
			return err
		}
		defer db.Close(ctx)
	} else {
		ctx = fallbackContext(ctx)
		bounds = projectBounds()
	}

	log := zerolog.Ctx(ctx)
	out := cmd.OutOrStdout()

	return watch.Watch(ctx, path, func(doc *parser.Document, err error) {
		if err != nil {
			fmt.Fprintf(out, "%s: %v\n", path, err)
			return
		}

		report, err := validate.Run(doc.Graph, bounds)
		if err != nil {
			log.Error().Err(err).Msg("validation failed")
			return
		}
		fmt.Fprintf(out, "%s: %d errors, %d warnings\n", doc.StoryID,
			report.Count(validate.SeverityError), report.Count(validate.SeverityWarn))
		printIssues(out, report.Issues)

		if db == nil || report.HasErrors() {
			return
		}
		if err := saveDocument(ctx, db, doc, path); err != nil {
			log.Error().Err(err).Str("story", doc.StoryID).Msg("save failed")
		}
	}, watch.Options{Debounce: debounce})
}

func saveDocument(ctx context.Context, db store.Store, doc *parser.Document, path string) error {
	input, err := store.NewStoryInput(doc.Graph, path, "")
	if err != nil {
		return err
	}
	return db.SaveStory(ctx, input)
}
