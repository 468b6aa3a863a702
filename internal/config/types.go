// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
)

const (
	// DefaultLogLevel is the log level used when none is configured.
	DefaultLogLevel = "info"
)

var (
	// ErrInvalidLogLevel is returned when a MainConfig log level is not recognized.
	ErrInvalidLogLevel = errors.New("invalid log level")
	// ErrInvalidExternalURL is returned when a MainConfig external URL is not an
	// absolute http(s) URL.
	ErrInvalidExternalURL = errors.New("invalid external URL")
)

type (
	// Config is the full configuration tree. Sections receive it when they
	// need to look at their siblings.
	Config struct {
		// Main holds application-wide settings.
		Main MainConfig
		// Downloading holds the downloader list and black-hole options.
		Downloading DownloadingConfig
	}

	// MainConfig holds application-wide settings the downloading section reads.
	MainConfig struct {
		// ExternalURL is the URL under which the application is reachable from
		// downloaders. Empty means not exposed.
		ExternalURL string `json:"externalUrl,omitempty" yaml:"externalUrl,omitempty" toml:"externalUrl,omitempty" mapstructure:"externalUrl"`
		// LogLevel is one of debug, info, warn, error, fatal.
		LogLevel string `json:"logLevel" yaml:"logLevel" toml:"logLevel" mapstructure:"logLevel"`
	}

	// InvalidLogLevelError is returned when a log level cannot be parsed.
	// It wraps ErrInvalidLogLevel for errors.Is() compatibility.
	InvalidLogLevelError struct {
		Value string
	}

	// InvalidExternalURLError is returned when an external URL is set but is
	// not an absolute http(s) URL. It wraps ErrInvalidExternalURL.
	InvalidExternalURLError struct {
		Value string
	}
)

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Main: MainConfig{
			ExternalURL: "",
			LogLevel:    DefaultLogLevel,
		},
		Downloading: *NewDownloadingConfig(),
	}
}

// Clone returns a deep copy of the tree.
func (c *Config) Clone() *Config {
	return &Config{
		Main:        c.Main,
		Downloading: *c.Downloading.Clone(),
	}
}

// IsValid returns whether the MainConfig has valid fields.
func (m MainConfig) IsValid() (bool, []error) {
	var errs []error
	if _, err := log.ParseLevel(m.LogLevel); err != nil {
		errs = append(errs, &InvalidLogLevelError{Value: m.LogLevel})
	}
	if strings.TrimSpace(m.ExternalURL) != "" && !isHTTPURL(m.ExternalURL) {
		errs = append(errs, &InvalidExternalURLError{Value: m.ExternalURL})
	}
	if len(errs) > 0 {
		return false, errs
	}
	return true, nil
}

// Error implements the error interface for InvalidLogLevelError.
func (e *InvalidLogLevelError) Error() string {
	return fmt.Sprintf("invalid log level %q (valid: debug, info, warn, error, fatal)", e.Value)
}

// Unwrap returns ErrInvalidLogLevel for errors.Is() compatibility.
func (e *InvalidLogLevelError) Unwrap() error { return ErrInvalidLogLevel }

// Error implements the error interface for InvalidExternalURLError.
func (e *InvalidExternalURLError) Error() string {
	return fmt.Sprintf("invalid external URL %q: must be an absolute http or https URL", e.Value)
}

// Unwrap returns ErrInvalidExternalURL for errors.Is() compatibility.
func (e *InvalidExternalURLError) Unwrap() error { return ErrInvalidExternalURL }

// ValidateConfig validates the whole tree against oldCfg. The main section's
// field errors come first, followed by the downloading section's result.
// Changing the log level requires a restart.
func (c *Config) ValidateConfig(oldCfg *Config) ValidationResult {
	var mainErrs []string
	if valid, fieldErrs := c.Main.IsValid(); !valid {
		for _, err := range fieldErrs {
			mainErrs = append(mainErrs, err.Error())
		}
	}
	own := NewValidationResult(mainErrs, nil)
	if oldCfg != nil && oldCfg.Main.LogLevel != c.Main.LogLevel {
		own.RestartNeeded = true
	}

	return MergeResults(own, c.Downloading.ValidateConfig(oldCfg, &c.Downloading, c))
}

// PrepareForSaving runs the section hooks that precede persistence.
func (c *Config) PrepareForSaving(oldCfg *Config) *Config {
	c.Downloading = *c.Downloading.PrepareForSaving(oldCfg)
	return c
}

// UpdateAfterLoading runs the section hooks that follow decoding.
func (c *Config) UpdateAfterLoading() *Config {
	c.Downloading = *c.Downloading.UpdateAfterLoading()
	return c
}

// InitializeNewConfig runs the section hooks for a first start.
func (c *Config) InitializeNewConfig() *Config {
	c.Downloading = *c.Downloading.InitializeNewConfig()
	return c
}
