package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/requp/internal/dist"
	"github.com/frederic-klein/requp/internal/loader"
	"github.com/frederic-klein/requp/internal/requirements"
	"github.com/frederic-klein/requp/internal/resolver"
	"github.com/frederic-klein/requp/internal/snapshot"
)

func newUpdateCmd() *cobra.Command {
	var (
		planPath string
		dryRun   bool
	)

	cmd := &cobra.Command{
		Use:   "update [files...]",
		Short: "Rewrite requirements to their newest acceptable versions",
		Long:  "Update the requirements files in place. With --plan the updates recorded by 'requp check --plan' are applied instead of resolving again.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(cmd.Context(), cmd.OutOrStdout(), loader.NewDir(""), args, planPath, dryRun)
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "apply the updates from this plan file")
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print the rewritten lines without changing any file")

	return cmd
}

func runUpdate(ctx context.Context, w io.Writer, dir *loader.Dir, args []string, planPath string, dryRun bool) error {
	logger := loggerFromContext(ctx)

	var (
		bundle  *requirements.Bundle
		updates []dist.Update
	)
	if planPath != "" {
		if len(args) > 0 {
			return fmt.Errorf("files cannot be given together with --plan")
		}
		plan, err := readPlan(planPath)
		if err != nil {
			return err
		}
		// A plan lists every file it touches, so references are not followed.
		parser := requirements.NewParser(configFromContext(ctx).PrereleaseMarkers...)
		bundle = requirements.NewBundle()
		for _, path := range plan.Paths() {
			content, err := dir.Load(path)
			if err != nil {
				return err
			}
			bundle.Add(parser.ParseFile(path, content))
		}
		updates = plan.Updates
	} else {
		res, err := loadAndPlan(ctx, dir, roots(args))
		if err != nil {
			return err
		}
		bundle, updates = res.bundle, res.updates
	}

	if len(updates) == 0 {
		printSuccess(w, "All requirements up to date")
		return nil
	}

	contents, err := resolver.Apply(bundle, updates)
	if err != nil {
		return err
	}

	if dryRun {
		printDiff(w, updates)
		return nil
	}
	if err := writeContents(dir, contents); err != nil {
		return err
	}
	logger.Debug("Applied", "updates", len(updates), "files", len(contents))
	printUpdates(w, updates)
	printSuccess(w, "Updated %s in %s", pluralize(len(updates), "requirement"), pluralize(len(contents), "file"))
	return nil
}

func readPlan(path string) (*snapshot.Plan, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening plan: %w", err)
	}
	defer f.Close()
	return snapshot.NewParser(f).Parse()
}
