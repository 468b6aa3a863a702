// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/dlconfig/dlconfig/internal/config"

	"github.com/spf13/cobra"
)

// ErrUnknownKey is returned by set and unset for keys they do not handle.
var ErrUnknownKey = errors.New("unknown configuration key")

type (
	setter   func(cfg *config.Config, value string) error
	unsetter func(cfg *config.Config)
)

var (
	setters = map[string]setter{
		"main.externalUrl": func(cfg *config.Config, v string) error {
			cfg.Main.ExternalURL = v
			return nil
		},
		"main.logLevel": func(cfg *config.Config, v string) error {
			cfg.Main.LogLevel = v
			return nil
		},
		"downloading.saveTorrentsTo": func(cfg *config.Config, v string) error {
			cfg.Downloading.SetSaveTorrentsTo(v)
			return nil
		},
		"downloading.saveNzbsTo": func(cfg *config.Config, v string) error {
			cfg.Downloading.SetSaveNzbsTo(v)
			return nil
		},
		"downloading.sendMagnetLinks":      boolSetter(func(cfg *config.Config) *bool { return &cfg.Downloading.SendMagnetLinks }),
		"downloading.updateStatuses":       boolSetter(func(cfg *config.Config) *bool { return &cfg.Downloading.UpdateStatuses }),
		"downloading.showDownloaderStatus": boolSetter(func(cfg *config.Config) *bool { return &cfg.Downloading.ShowDownloaderStatus }),
	}

	unsetters = map[string]unsetter{
		"main.externalUrl":           func(cfg *config.Config) { cfg.Main.ExternalURL = "" },
		"downloading.saveTorrentsTo": func(cfg *config.Config) { cfg.Downloading.UnsetSaveTorrentsTo() },
		"downloading.saveNzbsTo":     func(cfg *config.Config) { cfg.Downloading.UnsetSaveNzbsTo() },
	}
)

func boolSetter(field func(*config.Config) *bool) setter {
	return func(cfg *config.Config, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid boolean %q: %w", v, err)
		}
		*field(cfg) = b
		return nil
	}
}

// lookupKey matches key case-insensitively against the keys of m.
func lookupKey[V any](m map[string]V, key string) (string, V, error) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return k, v, nil
		}
	}
	var zero V
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return "", zero, fmt.Errorf("%w %q (valid: %s)", ErrUnknownKey, key, strings.Join(keys, ", "))
}

// newConfigCommand creates the `dlconfig config` command tree.
func newConfigCommand(app *App, flags *rootFlagValues) *cobra.Command {
	cfgCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage dlconfig configuration",
		Long: `Manage dlconfig configuration.

Configuration is stored in:
  - Linux: ~/.config/dlconfig/config.cue
  - macOS: ~/Library/Application Support/dlconfig/config.cue
  - Windows: %APPDATA%\dlconfig\config.cue

config.yaml, config.toml and config.json are read as well. Any key can be
overridden with a DLCONFIG_ environment variable, for example
DLCONFIG_DOWNLOADING_SAVETORRENTSTO.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfig(cmd.Context(), app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return showConfigPath(cmd.Context(), app, flags)
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(app, flags)
		},
	})

	var dumpFormat string
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Output the configuration in a file format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return dumpConfig(cmd.Context(), app, flags, dumpFormat)
		},
	}
	dumpCmd.Flags().StringVar(&dumpFormat, "format", "", "output format: cue, yaml, toml or json (default: format of the loaded file, else cue)")
	cfgCmd.AddCommand(dumpCmd)

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Validate and save a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfigValue(cmd.Context(), app, flags, args[0], args[1])
		},
	})

	cfgCmd.AddCommand(&cobra.Command{
		Use:   "unset <key>",
		Short: "Validate and save the configuration without a value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return unsetConfigValue(cmd.Context(), app, flags, args[0])
		},
	})

	return cfgCmd
}

func showConfig(ctx context.Context, app *App, flags *rootFlagValues) error {
	cfg, path, err := loadConfig(ctx, app, flags)
	if err != nil {
		return err
	}

	w := app.stdout
	value := func(s string) string { return SuccessStyle.Render(s) }
	unset := SubtitleStyle.Render("(not set)")

	fmt.Fprintln(w, TitleStyle.Render("Current Configuration"))
	fmt.Fprintln(w)
	if path != "" {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), path)
	} else {
		fmt.Fprintf(w, "%s: %s\n", KeyStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("main"))
	if cfg.Main.ExternalURL != "" {
		fmt.Fprintf(w, "  externalUrl: %s\n", value(cfg.Main.ExternalURL))
	} else {
		fmt.Fprintf(w, "  externalUrl: %s\n", unset)
	}
	fmt.Fprintf(w, "  logLevel: %s\n", value(cfg.Main.LogLevel))

	d := &cfg.Downloading
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s:\n", KeyStyle.Render("downloading"))
	if p, ok := d.SaveTorrentsTo(); ok {
		fmt.Fprintf(w, "  saveTorrentsTo: %s\n", value(p))
	} else {
		fmt.Fprintf(w, "  saveTorrentsTo: %s\n", unset)
	}
	if p, ok := d.SaveNzbsTo(); ok {
		fmt.Fprintf(w, "  saveNzbsTo: %s\n", value(strconv.Quote(p)))
	} else {
		fmt.Fprintf(w, "  saveNzbsTo: %s\n", unset)
	}
	fmt.Fprintf(w, "  sendMagnetLinks: %s\n", value(strconv.FormatBool(d.SendMagnetLinks)))
	fmt.Fprintf(w, "  updateStatuses: %s\n", value(strconv.FormatBool(d.UpdateStatuses)))
	fmt.Fprintf(w, "  showDownloaderStatus: %s\n", value(strconv.FormatBool(d.ShowDownloaderStatus)))

	fmt.Fprintf(w, "  downloaders:\n")
	if len(d.Downloaders) == 0 {
		fmt.Fprintf(w, "    %s\n", SubtitleStyle.Render("(none configured)"))
	}
	for _, dl := range d.Downloaders {
		state := "enabled"
		if !dl.Enabled {
			state = "disabled"
		}
		fmt.Fprintf(w, "    - %s (%s, %s) %s\n", value(dl.DisplayName()), dl.DownloaderType, state, SubtitleStyle.Render(dl.URL))
	}

	return nil
}

func showConfigPath(ctx context.Context, app *App, flags *rootFlagValues) error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}
	defaultPath, err := config.DefaultConfigPath()
	if err != nil {
		return err
	}

	fmt.Fprintf(app.stdout, "Config directory: %s\n", cfgDir)
	fmt.Fprintf(app.stdout, "Default config file: %s\n", defaultPath)

	if _, path, loadErr := app.Config.LoadWithPath(ctx, flags.loadOptions()); loadErr == nil {
		if path == "" {
			path = "(none, using defaults)"
		}
		fmt.Fprintf(app.stdout, "Config file in use: %s\n", path)
	}
	return nil
}

func initConfig(app *App, flags *rootFlagValues) error {
	if flags.configPath == "" {
		path, err := config.CreateDefaultConfig()
		if err != nil {
			return err
		}
		fmt.Fprintf(app.stdout, "%s Configuration at %s\n", SuccessStyle.Render("✓"), path)
		return nil
	}

	if _, err := os.Stat(flags.configPath); err == nil {
		fmt.Fprintf(app.stdout, "%s %s already exists\n", WarningStyle.Render("!"), flags.configPath)
		return nil
	}
	if err := config.Save(config.DefaultConfig().InitializeNewConfig(), nil, flags.configPath); err != nil {
		return err
	}
	fmt.Fprintf(app.stdout, "%s Created default configuration at %s\n", SuccessStyle.Render("✓"), flags.configPath)
	return nil
}

func dumpConfig(ctx context.Context, app *App, flags *rootFlagValues, formatName string) error {
	cfg, path, err := loadConfig(ctx, app, flags)
	if err != nil {
		return err
	}

	format := config.FormatCUE
	switch {
	case formatName != "":
		if format, err = config.ParseFormat(formatName); err != nil {
			return err
		}
	case path != "":
		if fromPath, pathErr := config.FormatFromPath(path); pathErr == nil {
			format = fromPath
		}
	}

	data, err := config.Encode(cfg, format)
	if err != nil {
		return err
	}
	_, err = app.stdout.Write(data)
	return err
}

func setConfigValue(ctx context.Context, app *App, flags *rootFlagValues, key, value string) error {
	name, set, err := lookupKey(setters, key)
	if err != nil {
		return err
	}
	return updateConfig(ctx, app, flags, func(cfg *config.Config) error {
		if err := set(cfg, value); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	})
}

func unsetConfigValue(ctx context.Context, app *App, flags *rootFlagValues, key string) error {
	_, unset, err := lookupKey(unsetters, key)
	if err != nil {
		return err
	}
	return updateConfig(ctx, app, flags, func(cfg *config.Config) error {
		unset(cfg)
		return nil
	})
}

// updateConfig loads the configuration, applies mutate to a copy, and saves
// the copy through config.Apply. Nothing is written when validation fails.
func updateConfig(ctx context.Context, app *App, flags *rootFlagValues, mutate func(*config.Config) error) error {
	oldCfg, path, err := loadConfig(ctx, app, flags)
	if err != nil {
		return err
	}
	if path == "" {
		path = flags.configPath
	}

	newCfg := oldCfg.Clone()
	if err := mutate(newCfg); err != nil {
		return err
	}

	result, err := config.Apply(oldCfg, newCfg, path)
	if err != nil {
		fmt.Fprintln(app.stderr, ErrorStyle.Render("Error: ")+formatErrorForDisplay(err, flags.verbose))
		return &ExitError{Code: 1, Err: err}
	}

	printResult(app.stdout, result)
	if !result.OK {
		return failedResult(app, result)
	}

	if path == "" {
		path, _ = config.DefaultConfigPath()
	}
	fmt.Fprintf(app.stdout, "%s Saved %s\n", SuccessStyle.Render("✓"), path)
	return nil
}
