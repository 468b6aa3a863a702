// SPDX-License-Identifier: MPL-2.0

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dlconfig/dlconfig/internal/issue"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	// FormatCUE is the default, schema-checked format.
	FormatCUE Format = "cue"
	// FormatYAML is YAML (.yaml or .yml).
	FormatYAML Format = "yaml"
	// FormatTOML is TOML.
	FormatTOML Format = "toml"
	// FormatJSON is JSON.
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for file extensions or format names
// dlconfig cannot read or write.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Format is a configuration file format.
type Format string

// String returns the string representation of the Format.
func (f Format) String() string { return string(f) }

// ParseFormat parses a format name as given on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "cue":
		return FormatCUE, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: cue, yaml, toml, json)", ErrUnsupportedFormat, s)
	}
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnsupportedFormat, path)
	}
	return ParseFormat(ext)
}

// Encode renders cfg in the given format.
func Encode(cfg *Config, format Format) ([]byte, error) {
	doc := NewDocument(cfg)

	switch format {
	case FormatCUE:
		return []byte(GenerateCUE(cfg)), nil
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatTOML:
		return toml.Marshal(doc)
	case FormatJSON:
		data, err := json.MarshalIndent(doc, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Save runs the PrepareForSaving hooks on cfg and writes it to path, picking
// the format from the extension. An empty path means DefaultConfigPath.
func Save(cfg, oldCfg *Config, path string) error {
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	cfg = cfg.PrepareForSaving(oldCfg)

	data, err := Encode(cfg, format)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return issue.NewErrorContext().
			WithOperation("save configuration").
			WithResource(filepath.Dir(path)).
			WithSuggestion("Check that the config directory is writable").
			Wrap(err).
			BuildError()
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return issue.NewErrorContext().
			WithOperation("save configuration").
			WithResource(path).
			WithSuggestion("Check that the config file is writable").
			Wrap(err).
			BuildError()
	}

	log.Debug("configuration saved", "path", path, "format", format)
	return nil
}

// Apply validates newCfg against oldCfg and saves it to path only when the
// result is OK. The result is returned in both cases.
func Apply(oldCfg, newCfg *Config, path string) (ValidationResult, error) {
	result := newCfg.ValidateConfig(oldCfg)
	if !result.OK {
		log.Debug("configuration rejected", "errors", len(result.ErrorMessages))
		return result, nil
	}
	return result, Save(newCfg, oldCfg, path)
}

// CreateDefaultConfig writes a default configuration to DefaultConfigPath
// unless a file already exists there. It returns the path.
func CreateDefaultConfig() (string, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	cfg := DefaultConfig().InitializeNewConfig()
	if err := Save(cfg, nil, path); err != nil {
		return "", fmt.Errorf("failed to create config: %w", err)
	}
	return path, nil
}

// GenerateCUE generates a CUE representation of the configuration.
func GenerateCUE(cfg *Config) string {
	var sb strings.Builder

	sb.WriteString("// dlconfig configuration file\n\n")

	sb.WriteString("main: {\n")
	if cfg.Main.ExternalURL != "" {
		sb.WriteString(fmt.Sprintf("\texternalUrl: %q\n", cfg.Main.ExternalURL))
	}
	sb.WriteString(fmt.Sprintf("\tlogLevel: %q\n", cfg.Main.LogLevel))
	sb.WriteString("}\n")

	d := &cfg.Downloading
	sb.WriteString("\ndownloading: {\n")
	if len(d.Downloaders) == 0 {
		sb.WriteString("\tdownloaders: []\n")
	} else {
		sb.WriteString("\tdownloaders: [\n")
		for _, dl := range d.Downloaders {
			writeDownloaderCUE(&sb, dl)
		}
		sb.WriteString("\t]\n")
	}
	if d.saveTorrentsTo != nil {
		sb.WriteString(fmt.Sprintf("\tsaveTorrentsTo: %q\n", *d.saveTorrentsTo))
	}
	if d.saveNzbsTo != nil {
		sb.WriteString(fmt.Sprintf("\tsaveNzbsTo: %q\n", *d.saveNzbsTo))
	}
	sb.WriteString(fmt.Sprintf("\tsendMagnetLinks: %v\n", d.SendMagnetLinks))
	sb.WriteString(fmt.Sprintf("\tupdateStatuses: %v\n", d.UpdateStatuses))
	sb.WriteString(fmt.Sprintf("\tshowDownloaderStatus: %v\n", d.ShowDownloaderStatus))
	sb.WriteString("}\n")

	return sb.String()
}

func writeDownloaderCUE(sb *strings.Builder, dl DownloaderConfig) {
	sb.WriteString("\t\t{\n")
	sb.WriteString(fmt.Sprintf("\t\t\tname: %q\n", dl.Name))
	sb.WriteString(fmt.Sprintf("\t\t\tdownloaderType: %q\n", dl.DownloaderType))
	sb.WriteString(fmt.Sprintf("\t\t\turl: %q\n", dl.URL))
	optional := []struct{ key, value string }{
		{"apiKey", dl.APIKey},
		{"username", dl.Username},
		{"password", dl.Password},
		{"defaultCategory", dl.DefaultCategory},
	}
	for _, field := range optional {
		if field.value != "" {
			sb.WriteString(fmt.Sprintf("\t\t\t%s: %q\n", field.key, field.value))
		}
	}
	if dl.NzbAddingType != "" {
		sb.WriteString(fmt.Sprintf("\t\t\tnzbAddingType: %q\n", dl.NzbAddingType))
	}
	sb.WriteString(fmt.Sprintf("\t\t\tenabled: %v\n", dl.Enabled))
	sb.WriteString("\t\t},\n")
}
