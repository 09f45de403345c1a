package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/spf13/cobra"

	"github.com/frederic-klein/requp/internal/loader"
	"github.com/frederic-klein/requp/internal/snapshot"
)

func newCheckCmd() *cobra.Command {
	var planPath, archivePath string

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Show which requirements have newer releases",
		Long: "Load the requirements files (default requirements.txt) and every file they reference, and list the lines an update would rewrite.\n\n" +
			"With --archive and no files, every requirements*.txt at the top of the archive is checked.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var l loader.Loader = loader.NewDir("")
			paths := roots(args)
			if archivePath != "" {
				a, err := loader.OpenArchive(archivePath)
				if err != nil {
					return err
				}
				l = a
				if len(args) == 0 {
					paths = archiveRoots(a)
				}
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), l, paths, planPath)
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "write the pending updates to this plan file")
	cmd.Flags().StringVar(&archivePath, "archive", "", "read the requirements files from a .tar.gz source archive")

	return cmd
}

func runCheck(ctx context.Context, w io.Writer, l loader.Loader, paths []string, planPath string) error {
	logger := loggerFromContext(ctx)
	cfg := configFromContext(ctx)

	res, err := loadAndPlan(ctx, l, paths)
	if err != nil {
		return err
	}
	logger.Debug("Checked", "files", len(res.bundle.Files()), "requirements", len(res.bundle.Requirements()))

	if len(res.updates) == 0 {
		printSuccess(w, "All requirements up to date")
	} else {
		printUpdates(w, res.updates)
		fmt.Fprintln(w)
		printWarning(w, "%s pending", pluralize(len(res.updates), "update"))
	}
	if cfg.Verbose && len(res.skips) > 0 {
		fmt.Fprintln(w, styleDim.Render("Skipped:"))
		printSkips(w, res.skips)
	}

	if planPath == "" {
		return nil
	}
	out, err := os.Create(planPath)
	if err != nil {
		return fmt.Errorf("creating plan file: %w", err)
	}
	defer out.Close()

	if err := snapshot.NewEmitter(out).Emit(res.updates, res.skips); err != nil {
		return fmt.Errorf("writing plan: %w", err)
	}
	logger.Info("Wrote plan", "path", planPath, "updates", len(res.updates))
	return nil
}

// archiveRoots picks the requirements files at the top level of an archive.
func archiveRoots(a *loader.Archive) []string {
	var out []string
	for _, p := range a.Paths() {
		if ok, _ := path.Match("requirements*.txt", p); ok {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{defaultManifest}
	}
	return out
}
