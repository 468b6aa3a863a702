// SPDX-License-Identifier: MPL-2.0

package config

// Section is the contract every validated configuration section implements.
// The loader and Save call the hooks; callers decide whether to accept a new
// configuration from the result of ValidateConfig.
//
// T is the section's own pointer type, so each hook can hand back a
// replacement value.
type Section[T any] interface {
	// ValidateConfig checks newCfg, which is the section the method is called
	// on, against the previous full tree and the new full tree.
	ValidateConfig(oldCfg *Config, newCfg T, newFullCfg *Config) ValidationResult
	// PrepareForSaving runs right before the section is persisted.
	PrepareForSaving(oldFullCfg *Config) T
	// UpdateAfterLoading runs right after the section was decoded.
	UpdateAfterLoading() T
	// InitializeNewConfig runs when no persisted configuration exists yet.
	InitializeNewConfig() T
}

var _ Section[*DownloadingConfig] = (*DownloadingConfig)(nil)
