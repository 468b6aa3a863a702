// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dlconfig/dlconfig/internal/issue"
	"github.com/dlconfig/dlconfig/pkg/cueutil"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "dlconfig"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// EnvPrefix prefixes environment variables that override file values,
	// e.g. DLCONFIG_DOWNLOADING_SAVETORRENTSTO.
	EnvPrefix = "DLCONFIG"
)

//go:embed config_schema.cue
var configSchema string

// candidateExts lists the file extensions probed, in order, when no explicit
// config file is given.
var candidateExts = []string{"cue", "yaml", "yml", "toml", "json"}

// ConfigDir returns the dlconfig configuration directory using platform-specific
// conventions: Windows uses %APPDATA%, macOS uses ~/Library/Application Support,
// and Linux/others use $XDG_CONFIG_HOME (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	if configDirOverride != "" {
		return configDirOverride, nil
	}

	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default:
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// DefaultConfigPath returns the path new configuration files are written to.
func DefaultConfigPath() (string, error) {
	cfgDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfgDir, ConfigFileName+"."+string(FormatCUE)), nil
}

// newViper returns a viper instance carrying the defaults and the environment
// bindings for every key of the persisted schema.
func newViper() *viper.Viper {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("main.logLevel", defaults.Main.LogLevel)
	v.SetDefault("main.externalUrl", defaults.Main.ExternalURL)
	v.SetDefault("downloading.sendMagnetLinks", defaults.Downloading.SendMagnetLinks)
	v.SetDefault("downloading.updateStatuses", defaults.Downloading.UpdateStatuses)
	v.SetDefault("downloading.showDownloaderStatus", defaults.Downloading.ShowDownloaderStatus)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The optional paths have no default, so AutomaticEnv alone would never
	// consider them.
	_ = v.BindEnv("downloading.saveTorrentsTo")
	_ = v.BindEnv("downloading.saveNzbsTo")

	return v
}

// loadWithOptions performs option-driven config loading without mutating
// package-level state. It returns the loaded configuration and the path of
// the file it came from ("" when only defaults and environment were used).
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Config, string, error) {
	select {
	case <-ctx.Done():
		return nil, "", fmt.Errorf("load config canceled: %w", ctx.Err())
	default:
	}

	v := newViper()

	resolvedPath, err := resolveConfigFile(opts)
	if err != nil {
		return nil, "", err
	}

	if resolvedPath != "" {
		if err := readIntoViper(v, resolvedPath); err != nil {
			return nil, "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(resolvedPath).
				WithSuggestion("Check that the file is valid for its format (CUE, YAML, TOML or JSON)").
				WithSuggestion("Verify the configuration values match the expected schema").
				WithSuggestion("Run 'dlconfig config dump' to see a valid configuration").
				Wrap(err).
				BuildError()
		}
	}

	var doc Document
	if err := v.Unmarshal(&doc); err != nil {
		return nil, "", fmt.Errorf("failed to parse config: %w", err)
	}

	cfg := doc.Config()
	if resolvedPath == "" {
		cfg = cfg.InitializeNewConfig()
	} else {
		cfg = cfg.UpdateAfterLoading()
	}

	return cfg, resolvedPath, nil
}

// resolveConfigFile picks the file to load: the explicit path when given,
// otherwise the first config.<ext> in the config directory, then in the
// working directory. It returns "" when none exists.
func resolveConfigFile(opts LoadOptions) (string, error) {
	if opts.ConfigFilePath != "" {
		if !fileExists(opts.ConfigFilePath) {
			return "", issue.NewErrorContext().
				WithOperation("load configuration").
				WithResource(opts.ConfigFilePath).
				WithSuggestion("Verify the file path is correct").
				WithSuggestion("Check that the file exists and is readable").
				WithSuggestion("Use 'dlconfig config init' to create a default configuration").
				Wrap(fmt.Errorf("config file not found: %s", opts.ConfigFilePath)).
				BuildError()
		}
		return opts.ConfigFilePath, nil
	}

	cfgDir, err := configDirWithOverride(opts.ConfigDirPath)
	if err != nil {
		return "", err
	}

	for _, dir := range []string{cfgDir, "."} {
		for _, ext := range candidateExts {
			candidate := filepath.Join(dir, ConfigFileName+"."+ext)
			if fileExists(candidate) {
				return candidate, nil
			}
		}
	}

	return "", nil
}

// configDirWithOverride resolves the configuration directory, honoring
// explicit provider options before platform defaults.
func configDirWithOverride(configDirPath string) (string, error) {
	if configDirPath != "" {
		return configDirPath, nil
	}
	return ConfigDir()
}

// readIntoViper loads path into v. CUE files are validated against the
// embedded #Config schema and merged as a map; the other formats use viper's
// own decoders.
func readIntoViper(v *viper.Viper, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	if format != FormatCUE {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	configMap, err := cueutil.DecodeMap(configSchema, data, "#Config", cueutil.WithFilename(path))
	if err != nil {
		return err
	}

	if err := v.MergeConfigMap(configMap); err != nil {
		return fmt.Errorf("failed to merge config: %w", err)
	}
	return nil
}

// fileExists checks if a file exists and is not a directory
func fileExists(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
