// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"slices"
	"testing"
)

func TestMainConfig_IsValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     MainConfig
		wantErr error
	}{
		{name: "defaults", cfg: DefaultConfig().Main},
		{name: "debug with url", cfg: MainConfig{LogLevel: "debug", ExternalURL: "https://hydra.example.com"}},
		{name: "bad level", cfg: MainConfig{LogLevel: "verbose"}, wantErr: ErrInvalidLogLevel},
		{name: "bad url", cfg: MainConfig{LogLevel: "info", ExternalURL: "hydra.example.com"}, wantErr: ErrInvalidExternalURL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			valid, errs := tt.cfg.IsValid()
			if tt.wantErr == nil {
				if !valid || len(errs) != 0 {
					t.Errorf("IsValid() = %v, %v; want valid", valid, errs)
				}
				return
			}
			if valid {
				t.Fatal("IsValid() should report invalid")
			}
			if !errors.Is(errors.Join(errs...), tt.wantErr) {
				t.Errorf("errors %v should include %v", errs, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Main.LogLevel = "loud"
	cfg.Downloading.Downloaders = []DownloaderConfig{{Name: "A", DownloaderType: testTypeErrAndWarn}}

	result := cfg.ValidateConfig(DefaultConfig())

	want := []string{
		`invalid log level "loud" (valid: debug, info, warn, error, fatal)`,
		"A error",
	}
	if !slices.Equal(result.ErrorMessages, want) {
		t.Errorf("ErrorMessages = %q, want %q", result.ErrorMessages, want)
	}
	if !result.RestartNeeded {
		t.Error("changing the log level should need a restart")
	}
	if result.OK {
		t.Error("OK should be false")
	}
}

func TestConfig_ValidateConfig_DefaultsAreOK(t *testing.T) {
	t.Parallel()

	result := DefaultConfig().ValidateConfig(nil)
	if !result.OK || result.RestartNeeded || result.HasWarnings() {
		t.Errorf("default config result = %+v, want clean OK", result)
	}
}

func TestConfig_ValidateConfig_PassesFullTreeToDownloaders(t *testing.T) {
	t.Parallel()

	const typ DownloaderType = "test-sees-full-tree"
	var seenURL string
	RegisterDownloaderValidator(typ, DownloaderValidatorFunc(func(_ *Config, _ DownloaderConfig, full *Config) ValidationResult {
		seenURL = full.Main.ExternalURL
		return NewValidationResult(nil, nil)
	}))

	cfg := DefaultConfig()
	cfg.Main.ExternalURL = "https://hydra.example.com"
	cfg.Downloading.Downloaders = []DownloaderConfig{{Name: "x", DownloaderType: typ}}
	cfg.ValidateConfig(nil)

	if seenURL != "https://hydra.example.com" {
		t.Errorf("downloader saw external URL %q", seenURL)
	}
}

func TestConfig_Clone(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Downloading.SetSaveNzbsTo("/nzbs")
	clone := cfg.Clone()
	clone.Main.LogLevel = "debug"
	clone.Downloading.SetSaveNzbsTo("/other")

	if cfg.Main.LogLevel != DefaultLogLevel {
		t.Error("Clone() shares Main")
	}
	if got, _ := cfg.Downloading.SaveNzbsTo(); got != "/nzbs" {
		t.Errorf("Clone() shares Downloading, original now %q", got)
	}
}

func TestConfig_HooksCascade(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Downloading.SetSaveTorrentsTo("/torrents")
	before := cfg.Clone()

	for _, got := range []*Config{cfg.PrepareForSaving(before), cfg.UpdateAfterLoading(), cfg.InitializeNewConfig()} {
		if got != cfg {
			t.Error("hooks should return the receiver")
		}
		if p, _ := got.Downloading.SaveTorrentsTo(); p != "/torrents" {
			t.Errorf("hook changed saveTorrentsTo to %q", p)
		}
	}
}
