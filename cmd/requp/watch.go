package main

import (
	"context"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/requp/internal/loader"
	"github.com/frederic-klein/requp/internal/watcher"
)

func newWatchCmd() *cobra.Command {
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:   "watch [files...]",
		Short: "Re-run check whenever a requirements file changes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd.Context(), cmd.OutOrStdout(), loader.NewDir(""), roots(args), debounce)
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watcher.DefaultDebounce, "quiet period before a change triggers a check")

	return cmd
}

func runWatch(ctx context.Context, w io.Writer, dir *loader.Dir, paths []string, debounce time.Duration) error {
	logger := loggerFromContext(ctx)

	fw, err := watcher.NewWatcher(debounce)
	if err != nil {
		return err
	}
	fw.Start()
	defer fw.Stop()

	check := func() {
		res, err := loadAndPlan(ctx, dir, paths)
		if err != nil {
			logger.Error("Check failed", "err", err)
			// Keep watching the roots so that fixing them triggers a new check.
			for _, p := range paths {
				if err := fw.Add(dir.Path(p)); err != nil {
					logger.Debug("Cannot watch", "file", p, "err", err)
				}
			}
			return
		}
		for _, f := range res.bundle.Files() {
			if err := fw.Add(dir.Path(f.Path)); err != nil {
				logger.Warn("Cannot watch", "file", f.Path, "err", err)
			}
		}
		if len(res.updates) == 0 {
			printSuccess(w, "All requirements up to date")
			return
		}
		printUpdates(w, res.updates)
		printWarning(w, "%s pending", pluralize(len(res.updates), "update"))
	}

	check()
	logger.Info("Watching for changes", "files", len(paths))

	for {
		select {
		case <-ctx.Done():
			return nil
		case changed, ok := <-fw.Changes:
			if !ok {
				return nil
			}
			logger.Info("Changed", "files", changed)
			check()
		}
	}
}
