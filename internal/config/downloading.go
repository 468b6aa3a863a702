// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
)

// blackHoleDirPerm is the mode used when validation creates the torrent
// black-hole folder.
const blackHoleDirPerm = 0o755

// DownloadingConfig is the `downloading` section: the configured downloaders
// plus the global downloading options.
//
// The two black-hole paths are unexported so that every reader goes through
// SaveTorrentsTo or SaveNzbsTo, which decide what "not set" means.
type DownloadingConfig struct {
	// Downloaders are the configured download clients, in the user's order.
	Downloaders []DownloaderConfig
	// SendMagnetLinks prefers magnet links over torrent files.
	SendMagnetLinks bool
	// UpdateStatuses enables polling downloaders for download status.
	UpdateStatuses bool
	// ShowDownloaderStatus shows the downloader status footer in the UI.
	ShowDownloaderStatus bool

	saveTorrentsTo *string
	saveNzbsTo     *string
}

// NewDownloadingConfig returns the section with its default values.
func NewDownloadingConfig() *DownloadingConfig {
	return &DownloadingConfig{
		Downloaders:          []DownloaderConfig{},
		SendMagnetLinks:      false,
		UpdateStatuses:       false,
		ShowDownloaderStatus: true,
	}
}

// SaveTorrentsTo returns the torrent black-hole folder. It reports false when
// the value was never set, is empty, or contains only whitespace.
func (c *DownloadingConfig) SaveTorrentsTo() (string, bool) {
	if c.saveTorrentsTo == nil || strings.TrimSpace(*c.saveTorrentsTo) == "" {
		return "", false
	}
	return *c.saveTorrentsTo, true
}

// SaveNzbsTo returns the NZB black-hole folder. Unlike SaveTorrentsTo, only a
// value that was never set counts as absent: an empty string is returned with
// true.
func (c *DownloadingConfig) SaveNzbsTo() (string, bool) {
	if c.saveNzbsTo == nil {
		return "", false
	}
	return *c.saveNzbsTo, true
}

// SetSaveTorrentsTo sets the torrent black-hole folder.
func (c *DownloadingConfig) SetSaveTorrentsTo(path string) {
	c.saveTorrentsTo = &path
}

// UnsetSaveTorrentsTo clears the torrent black-hole folder.
func (c *DownloadingConfig) UnsetSaveTorrentsTo() {
	c.saveTorrentsTo = nil
}

// SetSaveNzbsTo sets the NZB black-hole folder.
func (c *DownloadingConfig) SetSaveNzbsTo(path string) {
	c.saveNzbsTo = &path
}

// UnsetSaveNzbsTo clears the NZB black-hole folder.
func (c *DownloadingConfig) UnsetSaveNzbsTo() {
	c.saveNzbsTo = nil
}

// Clone returns a deep copy of the section.
func (c *DownloadingConfig) Clone() *DownloadingConfig {
	out := *c
	out.Downloaders = append([]DownloaderConfig{}, c.Downloaders...)
	out.saveTorrentsTo = cloneString(c.saveTorrentsTo)
	out.saveNzbsTo = cloneString(c.saveNzbsTo)
	return &out
}

// ValidateConfig validates the section and every downloader in it.
//
// The torrent black-hole folder is checked on the receiver. When it does not
// exist yet, ValidateConfig creates it (one level, mode 0755). This is the
// only side effect of validation. Creation failures are reported as error
// messages and never returned or raised.
//
// Each downloader is validated with (oldCfg, entry, newFullCfg). Their errors
// follow the section's own errors and their warnings form the warning list,
// both in downloader order. The section itself never produces warnings and
// the result never asks for a restart.
func (c *DownloadingConfig) ValidateConfig(oldCfg *Config, newCfg *DownloadingConfig, newFullCfg *Config) ValidationResult {
	errs := []string{}

	if path, ok := c.SaveTorrentsTo(); ok {
		errs = append(errs, validateBlackHoleFolder("Torrent", path)...)
	}

	results := make([]ValidationResult, 0, len(c.Downloaders))
	for _, downloader := range c.Downloaders {
		results = append(results, downloader.ValidateConfig(oldCfg, downloader, newFullCfg))
	}

	warnings := []string{}
	for _, result := range results {
		errs = append(errs, result.ErrorMessages...)
	}
	for _, result := range results {
		warnings = append(warnings, result.WarningMessages...)
	}

	return NewValidationResult(errs, warnings)
}

// PrepareForSaving returns the section unchanged.
func (c *DownloadingConfig) PrepareForSaving(_ *Config) *DownloadingConfig {
	return c
}

// UpdateAfterLoading returns the section unchanged.
func (c *DownloadingConfig) UpdateAfterLoading() *DownloadingConfig {
	return c
}

// InitializeNewConfig returns the section unchanged.
func (c *DownloadingConfig) InitializeNewConfig() *DownloadingConfig {
	return c
}

// validateBlackHoleFolder checks a black-hole folder and creates it when it
// is missing. A relative path is reported without touching the filesystem,
// so nothing is ever created relative to the working directory.
func validateBlackHoleFolder(kind, path string) []string {
	if !filepath.IsAbs(path) {
		return []string{kind + " black hole folder " + path + " is not absolute"}
	}

	absPath := filepath.Clean(path)
	info, err := os.Stat(absPath)
	switch {
	case err == nil && !info.IsDir():
		return []string{kind + " black hole folder " + absPath + " is a file"}
	case err == nil:
		return nil
	case !errors.Is(err, fs.ErrNotExist):
		log.Debug("black hole folder not accessible", "path", absPath, "err", err)
		return []string{kind + " black hole folder " + absPath + " could not be created"}
	}

	if err := os.Mkdir(absPath, blackHoleDirPerm); err != nil {
		log.Debug("black hole folder creation failed", "path", absPath, "err", err)
		return []string{kind + " black hole folder " + absPath + " could not be created"}
	}
	log.Debug("created black hole folder", "path", absPath)
	return nil
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
