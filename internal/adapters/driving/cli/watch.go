package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/memora/internal/core/domain"
	"github.com/custodia-labs/memora/internal/core/ports/driving"
	"github.com/custodia-labs/memora/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Watch a directory and ingest changed files",
	Long: `Watches a directory tree and keeps the knowledge store in sync:
created and modified files are ingested, removed files are deleted from
the store. Hidden files and directories are skipped. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if knowledgeService == nil {
		return errors.New("knowledge service not configured")
	}

	userID, err := currentUser()
	if err != nil {
		return err
	}

	root, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("resolving path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watchTree(watcher, root); err != nil {
		return err
	}

	cmd.Printf("Watching %s for user %s (ctrl-c to stop)\n", root, userID)
	return watchLoop(cmd.Context(), cmd, watcher, knowledgeService, userID, root)
}

// watchTree registers the root and every visible subdirectory. Hidden-ness
// is judged relative to the root, so a root that itself lives under a
// dot-directory is still watched.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHiddenWithin(root, path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// watchLoop consumes watcher events until the context is cancelled.
func watchLoop(
	ctx context.Context,
	cmd *cobra.Command,
	watcher *fsnotify.Watcher,
	knowledge driving.KnowledgeService,
	userID, root string,
) error {
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleWatchEvent(ctx, cmd, watcher, knowledge, userID, root, event)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cmd.PrintErrf("watch error: %v\n", err)
		}
	}
}

// handleWatchEvent maps a filesystem event to a store operation.
// Created and written files are ingested; removed and renamed files are
// deleted by filename. Hidden paths and directories are ignored.
func handleWatchEvent(
	ctx context.Context,
	cmd *cobra.Command,
	watcher *fsnotify.Watcher,
	knowledge driving.KnowledgeService,
	userID, root string,
	event fsnotify.Event,
) {
	if isHiddenWithin(root, event.Name) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create), event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if event.Op.Has(fsnotify.Create) {
				if err := watcher.Add(event.Name); err != nil {
					logger.Warn("Could not watch new directory %s: %v", event.Name, err)
				}
			}
			return
		}

		content, err := os.ReadFile(event.Name)
		if err != nil {
			cmd.PrintErrf("read %s: %v\n", event.Name, err)
			return
		}
		docID, err := knowledge.Ingest(ctx, userID, filepath.Base(event.Name), string(content), nil)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) || errors.Is(err, domain.ErrIngestInProgress) {
				logger.Debug("Skipping %s: %v", event.Name, err)
				return
			}
			cmd.PrintErrf("ingest %s: %v\n", event.Name, err)
			return
		}
		cmd.Printf("Ingested %s: %s\n", event.Name, docID)

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		if err := deleteByFilename(ctx, knowledge, userID, filepath.Base(event.Name)); err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				cmd.PrintErrf("delete %s: %v\n", event.Name, err)
			}
			return
		}
		cmd.Printf("Deleted %s\n", event.Name)
	}
}

// deleteByFilename removes every document of the user ingested under the
// given filename.
func deleteByFilename(ctx context.Context, knowledge driving.KnowledgeService, userID, filename string) error {
	docs, err := knowledge.ListDocuments(ctx, userID)
	if err != nil {
		return err
	}

	found := false
	for i := range docs {
		if docs[i].Filename != filename {
			continue
		}
		if err := knowledge.Delete(ctx, userID, docs[i].ID); err != nil {
			return err
		}
		found = true
	}
	if !found {
		return domain.ErrNotFound
	}
	return nil
}

// isHiddenWithin reports whether path is hidden relative to the watch root.
// Only elements below the root count, so dot-directories above the root
// (e.g. a root under ~/.memora) do not hide everything inside it.
func isHiddenWithin(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return isHidden(path)
	}
	return isHidden(rel)
}

// isHidden reports whether any element of the path starts with a dot.
// The path elements "." and ".." do not count as hidden.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
