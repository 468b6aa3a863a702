// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dlconfig/dlconfig/internal/config"
	"github.com/dlconfig/dlconfig/internal/watch"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func newWatchCommand(app *App, flags *rootFlagValues) *cobra.Command {
	var debounce time.Duration

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-validate the configuration whenever it changes",
		Long: `Validate the configuration, then watch the configuration directory and
validate again every time a config file is written. Stop with Ctrl+C.

With --config only that file is watched; otherwise any config.<ext> in the
configuration directory is.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), app, flags, debounce)
		},
	}

	watchCmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period after the last change before validating")

	return watchCmd
}

// watchTarget returns the directory to watch and the file name pattern.
func watchTarget(flags *rootFlagValues) (dir, pattern string, err error) {
	if flags.configPath != "" {
		abs, absErr := filepath.Abs(flags.configPath)
		if absErr != nil {
			return "", "", absErr
		}
		return filepath.Dir(abs), filepath.Base(abs), nil
	}

	dir, err = config.ConfigDir()
	if err != nil {
		return "", "", err
	}
	return dir, config.ConfigFileName + ".*", nil
}

func runWatch(ctx context.Context, app *App, flags *rootFlagValues, debounce time.Duration) error {
	dir, pattern, err := watchTarget(flags)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	validateOnce := func(ctx context.Context) {
		cfg, _, loadErr := app.Config.LoadWithPath(ctx, flags.loadOptions())
		if loadErr != nil {
			fmt.Fprintln(app.stdout, ErrorStyle.Render("✗ ")+formatErrorForDisplay(loadErr, flags.verbose))
			return
		}
		printResult(app.stdout, cfg.ValidateConfig(cfg.Clone()))
	}

	validateOnce(ctx)

	w, err := watch.New(watch.Config{
		Dir:      dir,
		Patterns: []string{pattern},
		Debounce: debounce,
		Logger:   log.Default(),
		OnChange: func(ctx context.Context, changed []string) error {
			fmt.Fprintf(app.stdout, "\n%s %d change(s): %v\n", KeyStyle.Render("→"), len(changed), changed)
			validateOnce(ctx)
			return nil
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	fmt.Fprintf(app.stdout, "%s Watching %s for %s (Ctrl+C to stop)...\n", KeyStyle.Render("→"), w.Dir(), pattern)
	return w.Run(ctx)
}
