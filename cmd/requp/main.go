package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/frederic-klein/requp/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:           "requp",
		Short:         "Keep pip requirements files up to date",
		Long:          "requp reads pip requirements files, follows their -r references, looks up released versions on PyPI and rewrites requirement lines to the newest acceptable version.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Init(cfgFile); err != nil {
				return err
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			level := charmlog.InfoLevel
			if cfg.Verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(cmd.ErrOrStderr(), level))
			cmd.SetContext(withConfig(ctx, cfg))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default .requp.yaml)")
	flags.BoolP("verbose", "v", false, "verbose output")
	flags.String("index-url", "", "PyPI JSON API base URL")
	flags.String("index-file", "", "offline YAML index to use instead of PyPI")
	flags.String("cache-dir", "", "index cache directory")
	flags.IntP("workers", "w", 0, "parallel index fetches")

	for key, flag := range map[string]string{
		"verbose":    "verbose",
		"index_url":  "index-url",
		"index_file": "index-file",
		"cache_dir":  "cache-dir",
		"workers":    "workers",
	} {
		_ = viper.BindPFlag(key, flags.Lookup(flag))
	}

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newUpdateCmd())
	rootCmd.AddCommand(newWatchCmd())

	return rootCmd
}
