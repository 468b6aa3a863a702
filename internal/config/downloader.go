// SPDX-License-Identifier: MPL-2.0

package config

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

const (
	// DownloaderSabnzbd is a SABnzbd instance.
	DownloaderSabnzbd DownloaderType = "sabnzbd"
	// DownloaderNzbget is an NZBGet instance.
	DownloaderNzbget DownloaderType = "nzbget"
	// DownloaderTorbox is a TorBox account.
	DownloaderTorbox DownloaderType = "torbox"

	// NzbAddingUpload uploads the NZB file content to the downloader.
	NzbAddingUpload NzbAddingType = "upload"
	// NzbAddingSendLink sends a link the downloader fetches the NZB from.
	NzbAddingSendLink NzbAddingType = "sendLink"
)

type (
	// DownloaderType names a downloader implementation.
	DownloaderType string

	// NzbAddingType selects how NZBs are handed to a downloader.
	NzbAddingType string

	// DownloaderConfig is one configured download client.
	DownloaderConfig struct {
		Name            string         `json:"name" yaml:"name" toml:"name" mapstructure:"name"`
		DownloaderType  DownloaderType `json:"downloaderType" yaml:"downloaderType" toml:"downloaderType" mapstructure:"downloaderType"`
		URL             string         `json:"url" yaml:"url" toml:"url" mapstructure:"url"`
		APIKey          string         `json:"apiKey,omitempty" yaml:"apiKey,omitempty" toml:"apiKey,omitempty" mapstructure:"apiKey"`
		Username        string         `json:"username,omitempty" yaml:"username,omitempty" toml:"username,omitempty" mapstructure:"username"`
		Password        string         `json:"password,omitempty" yaml:"password,omitempty" toml:"password,omitempty" mapstructure:"password"`
		DefaultCategory string         `json:"defaultCategory,omitempty" yaml:"defaultCategory,omitempty" toml:"defaultCategory,omitempty" mapstructure:"defaultCategory"`
		NzbAddingType   NzbAddingType  `json:"nzbAddingType" yaml:"nzbAddingType" toml:"nzbAddingType" mapstructure:"nzbAddingType"`
		Enabled         bool           `json:"enabled" yaml:"enabled" toml:"enabled" mapstructure:"enabled"`
	}

	// DownloaderValidator validates one downloader entry. Implementations are
	// registered per DownloaderType and must report problems as messages in
	// the result rather than panicking.
	DownloaderValidator interface {
		ValidateConfig(oldCfg *Config, newCfg DownloaderConfig, newFullCfg *Config) ValidationResult
	}

	// DownloaderValidatorFunc adapts a function to DownloaderValidator.
	DownloaderValidatorFunc func(oldCfg *Config, newCfg DownloaderConfig, newFullCfg *Config) ValidationResult

	sabnzbdValidator struct{}
	nzbgetValidator  struct{}
	torboxValidator  struct{}
)

var (
	validatorsMu sync.RWMutex
	validators   = map[DownloaderType]DownloaderValidator{
		DownloaderSabnzbd: sabnzbdValidator{},
		DownloaderNzbget:  nzbgetValidator{},
		DownloaderTorbox:  torboxValidator{},
	}
)

// RegisterDownloaderValidator installs v for downloaders of type t, replacing
// any previous registration.
func RegisterDownloaderValidator(t DownloaderType, v DownloaderValidator) {
	validatorsMu.Lock()
	defer validatorsMu.Unlock()
	validators[t] = v
}

func lookupDownloaderValidator(t DownloaderType) (DownloaderValidator, bool) {
	validatorsMu.RLock()
	defer validatorsMu.RUnlock()
	v, ok := validators[t]
	return v, ok
}

// ValidateConfig implements DownloaderValidator for the function type.
func (f DownloaderValidatorFunc) ValidateConfig(oldCfg *Config, newCfg DownloaderConfig, newFullCfg *Config) ValidationResult {
	return f(oldCfg, newCfg, newFullCfg)
}

// String returns the string representation of the DownloaderType.
func (t DownloaderType) String() string { return string(t) }

// String returns the string representation of the NzbAddingType.
func (t NzbAddingType) String() string { return string(t) }

// DisplayName is the name used in messages; it falls back to the URL for
// entries without a name.
func (d DownloaderConfig) DisplayName() string {
	if strings.TrimSpace(d.Name) != "" {
		return d.Name
	}
	return d.URL
}

// ValidateConfig dispatches to the validator registered for the entry's type.
func (d DownloaderConfig) ValidateConfig(oldCfg *Config, newCfg DownloaderConfig, newFullCfg *Config) ValidationResult {
	v, ok := lookupDownloaderValidator(newCfg.DownloaderType)
	if !ok {
		return NewValidationResult(
			[]string{fmt.Sprintf("Downloader %s has unknown type %q", newCfg.DisplayName(), newCfg.DownloaderType)},
			nil,
		)
	}
	return v.ValidateConfig(oldCfg, newCfg, newFullCfg)
}

func (sabnzbdValidator) ValidateConfig(_ *Config, d DownloaderConfig, newFullCfg *Config) ValidationResult {
	errs, warnings := commonDownloaderChecks(d, newFullCfg)
	if strings.TrimSpace(d.APIKey) == "" {
		warnings = append(warnings, fmt.Sprintf("Downloader %s has no API key; SABnzbd will probably reject requests", d.DisplayName()))
	}
	return NewValidationResult(errs, warnings)
}

func (nzbgetValidator) ValidateConfig(_ *Config, d DownloaderConfig, newFullCfg *Config) ValidationResult {
	errs, warnings := commonDownloaderChecks(d, newFullCfg)
	if strings.TrimSpace(d.Username) == "" || d.Password == "" {
		warnings = append(warnings, fmt.Sprintf("Downloader %s has no username or password; NZBGet usually requires both", d.DisplayName()))
	}
	return NewValidationResult(errs, warnings)
}

func (torboxValidator) ValidateConfig(_ *Config, d DownloaderConfig, newFullCfg *Config) ValidationResult {
	errs, warnings := commonDownloaderChecks(d, newFullCfg)
	if strings.TrimSpace(d.APIKey) == "" {
		errs = append(errs, fmt.Sprintf("Downloader %s requires an API key", d.DisplayName()))
	}
	return NewValidationResult(errs, warnings)
}

// commonDownloaderChecks holds the checks shared by all built-in types.
func commonDownloaderChecks(d DownloaderConfig, newFullCfg *Config) (errs, warnings []string) {
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, fmt.Sprintf("Downloader with URL %s has no name", d.URL))
	}
	if !isHTTPURL(d.URL) {
		errs = append(errs, fmt.Sprintf("Downloader %s: URL %q is invalid", d.DisplayName(), d.URL))
	}
	switch d.NzbAddingType {
	case "", NzbAddingUpload:
	case NzbAddingSendLink:
		if newFullCfg != nil && strings.TrimSpace(newFullCfg.Main.ExternalURL) == "" {
			warnings = append(warnings, fmt.Sprintf("Downloader %s sends links but no external URL is set; the downloader may not be able to reach them", d.DisplayName()))
		}
	default:
		errs = append(errs, fmt.Sprintf("Downloader %s has unknown NZB adding type %q", d.DisplayName(), d.NzbAddingType))
	}
	if !d.Enabled {
		warnings = append(warnings, fmt.Sprintf("Downloader %s is disabled", d.DisplayName()))
	}
	return errs, warnings
}

// isHTTPURL reports whether raw is an absolute http or https URL with a host.
func isHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
