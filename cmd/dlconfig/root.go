// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dlconfig/dlconfig/internal/config"
	"github.com/dlconfig/dlconfig/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"
)

// rootFlagValues holds the persistent flags shared by every subcommand.
type rootFlagValues struct {
	configPath string
	verbose    bool
}

// loadOptions turns the global flags into provider options.
func (f *rootFlagValues) loadOptions() config.LoadOptions {
	return config.LoadOptions{ConfigFilePath: f.configPath}
}

// NewRootCommand builds the dlconfig command tree around app.
func NewRootCommand(app *App) *cobra.Command {
	flags := &rootFlagValues{}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Validate and edit downloader configuration",
		Long: TitleStyle.Render("dlconfig") + SubtitleStyle.Render(" - downloader configuration tool") + `

dlconfig loads the downloading section of the configuration (downloaders,
black hole folders and status options), validates it and saves changes
only when validation passes.

` + SubtitleStyle.Render("Examples:") + `
  dlconfig validate                                  Validate the configuration
  dlconfig validate --json                           Print the result as JSON
  dlconfig config set downloading.saveTorrentsTo /data/torrents
  dlconfig config dump --format yaml                 Print the configuration as YAML
  dlconfig watch                                     Re-validate on every change`,
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogging(app, flags.verbose)
		},
	}

	rootCmd.SetOut(app.stdout)
	rootCmd.SetErr(app.stderr)

	rootCmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default is $XDG_CONFIG_HOME/dlconfig/config.cue)")

	rootCmd.AddCommand(newValidateCommand(app, flags))
	rootCmd.AddCommand(newConfigCommand(app, flags))
	rootCmd.AddCommand(newWatchCommand(app, flags))

	return rootCmd
}

// configureLogging points the default charm logger at stderr and raises it
// to debug level when verbose is set.
func configureLogging(app *App, verbose bool) {
	logger := log.NewWithOptions(app.stderr, log.Options{Prefix: config.AppName})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	log.SetDefault(logger)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the CLI and exits with the command's exit code.
// This is called by main.main().
func Execute() {
	app := NewApp(Dependencies{})
	if err := fang.Execute(
		context.Background(),
		NewRootCommand(app),
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// formatErrorForDisplay formats an error for user display, including the
// suggestions of an ActionableError and, in verbose mode, the error chain.
func formatErrorForDisplay(err error, verbose bool) string {
	return issue.FormatError(err, verbose)
}

// loadConfig loads the configuration, rendering the load-failure issue to
// stderr on error. Without --verbose the configured log level is applied.
func loadConfig(ctx context.Context, app *App, flags *rootFlagValues) (*config.Config, string, error) {
	cfg, path, err := app.Config.LoadWithPath(ctx, flags.loadOptions())
	if err != nil {
		fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.verbose))
		renderIssue(app, issue.ConfigLoadFailedId)
		return nil, "", &ExitError{Code: 1, Err: err}
	}

	if !flags.verbose {
		if level, levelErr := log.ParseLevel(cfg.Main.LogLevel); levelErr == nil {
			log.SetLevel(level)
		}
	}
	log.Debug("configuration loaded", "path", path)
	return cfg, path, nil
}

// renderIssue prints the catalog entry for id to stderr. Rendering failures
// are logged and otherwise ignored.
func renderIssue(app *App, id issue.Id) {
	iss := issue.Get(id)
	if iss == nil {
		return
	}
	rendered, err := iss.Render("dark")
	if err != nil {
		log.Debug("failed to render issue", "id", id, "err", err)
		return
	}
	fmt.Fprint(app.stderr, rendered)
}
