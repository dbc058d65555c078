package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"waymark/internal/config"
	"waymark/internal/parser"
	"waymark/internal/store"
)

type Result struct {
	StoriesSaved   int
	StoriesRemoved int
	FilesSkipped   int
	Errors         []error
}

type Options struct {
	// Full re-imports every file regardless of its stored hash.
	Full bool
	// Root anchors the import patterns; defaults to the working directory.
	Root string
}

// Run imports every story file matched by the project's import patterns.
// Per-file failures are collected in Result.Errors; a file that fails to parse
// keeps its previously imported story.
func Run(ctx context.Context, cfg *config.ProjectConfig, db Store, options Options) (*Result, error) {
	log := zerolog.Ctx(ctx)

	if err := db.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	root := options.Root
	if root == "" {
		root = "."
	}
	fsys := os.DirFS(root)

	files, err := matchFiles(fsys, cfg.Import.Patterns, cfg.Import.Exclude)
	if err != nil {
		return nil, fmt.Errorf("matching story files: %w", err)
	}
	log.Debug().Int("files", len(files)).Str("root", root).Msg("matched story files")

	var existingHashes map[string]store.SourceHash
	if !options.Full {
		existingHashes, err = db.GetSourceHashes(ctx)
		if err != nil {
			return nil, fmt.Errorf("get source hashes: %w", err)
		}
	}

	result := &Result{}
	// story id -> first file in path order that claims it
	seen := make(map[string]string)

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := fs.ReadFile(fsys, file)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("reading %s: %w", file, err))
			continue
		}
		hash := computeHash(data)
		if !options.Full {
			if existing, ok := existingHashes[file]; ok && existing.Hash == hash {
				if other, dup := seen[existing.StoryID]; dup {
					result.Errors = append(result.Errors, fmt.Errorf("story %s in %s already imported from %s", existing.StoryID, file, other))
					continue
				}
				seen[existing.StoryID] = file
				result.FilesSkipped++
				continue
			}
		}

		format, err := parser.FormatFromPath(file)
		if err != nil {
			result.FilesSkipped++
			continue
		}
		doc, err := parser.Parse(data, format)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("parsing %s: %w", file, err))
			continue
		}

		if other, ok := seen[doc.StoryID]; ok {
			result.Errors = append(result.Errors, fmt.Errorf("story %s in %s already imported from %s", doc.StoryID, file, other))
			continue
		}
		seen[doc.StoryID] = file

		input, err := store.NewStoryInput(doc.Graph, file, hash)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("preparing %s: %w", file, err))
			continue
		}
		if err := db.SaveStory(ctx, input); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving %s: %w", file, err))
			continue
		}
		result.StoriesSaved++
		log.Debug().Str("story", doc.StoryID).Str("file", file).Msg("imported story")
	}

	removed, err := db.RemoveStaleStories(ctx, files)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Errorf("removing stale stories: %w", err))
	} else {
		result.StoriesRemoved = int(removed)
	}

	log.Info().
		Int("saved", result.StoriesSaved).
		Int("skipped", result.FilesSkipped).
		Int("removed", result.StoriesRemoved).
		Int("errors", len(result.Errors)).
		Msg("import finished")

	return result, nil
}

// matchFiles expands patterns against fsys and drops anything matching an
// exclude pattern. Results are slash-separated, sorted and unique.
func matchFiles(fsys fs.FS, patterns, excludes []string) ([]string, error) {
	unique := make(map[string]struct{})
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		matches, err := doublestar.Glob(fsys, path.Clean(pattern), doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("pattern %s: %w", pattern, err)
		}
		for _, match := range matches {
			excluded, err := isExcluded(match, excludes)
			if err != nil {
				return nil, err
			}
			if !excluded {
				unique[match] = struct{}{}
			}
		}
	}

	files := make([]string, 0, len(unique))
	for file := range unique {
		files = append(files, file)
	}
	sort.Strings(files)
	return files, nil
}

func isExcluded(file string, excludes []string) (bool, error) {
	for _, exclude := range excludes {
		if exclude == "" {
			continue
		}
		ok, err := doublestar.Match(path.Clean(exclude), file)
		if err != nil {
			return false, fmt.Errorf("exclude pattern %s: %w", exclude, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
