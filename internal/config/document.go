// SPDX-License-Identifier: MPL-2.0

package config

type (
	// Document is the persisted form of Config. Its field names are the
	// on-disk schema and are shared by every supported file format.
	Document struct {
		Main        MainConfig          `json:"main" yaml:"main" toml:"main" mapstructure:"main"`
		Downloading DownloadingDocument `json:"downloading" yaml:"downloading" toml:"downloading" mapstructure:"downloading"`
	}

	// DownloadingDocument is the persisted form of DownloadingConfig. The
	// black-hole paths are pointers so that "not set" and "set to empty"
	// survive a save/load cycle.
	DownloadingDocument struct {
		Downloaders          []DownloaderConfig `json:"downloaders" yaml:"downloaders" toml:"downloaders" mapstructure:"downloaders"`
		SaveTorrentsTo       *string            `json:"saveTorrentsTo,omitempty" yaml:"saveTorrentsTo,omitempty" toml:"saveTorrentsTo,omitempty" mapstructure:"saveTorrentsTo"`
		SaveNzbsTo           *string            `json:"saveNzbsTo,omitempty" yaml:"saveNzbsTo,omitempty" toml:"saveNzbsTo,omitempty" mapstructure:"saveNzbsTo"`
		SendMagnetLinks      bool               `json:"sendMagnetLinks" yaml:"sendMagnetLinks" toml:"sendMagnetLinks" mapstructure:"sendMagnetLinks"`
		UpdateStatuses       bool               `json:"updateStatuses" yaml:"updateStatuses" toml:"updateStatuses" mapstructure:"updateStatuses"`
		ShowDownloaderStatus bool               `json:"showDownloaderStatus" yaml:"showDownloaderStatus" toml:"showDownloaderStatus" mapstructure:"showDownloaderStatus"`
	}
)

// NewDocument converts cfg to its persisted form. The document shares no
// memory with cfg.
func NewDocument(cfg *Config) Document {
	d := cfg.Downloading
	return Document{
		Main: cfg.Main,
		Downloading: DownloadingDocument{
			Downloaders:          append([]DownloaderConfig{}, d.Downloaders...),
			SaveTorrentsTo:       cloneString(d.saveTorrentsTo),
			SaveNzbsTo:           cloneString(d.saveNzbsTo),
			SendMagnetLinks:      d.SendMagnetLinks,
			UpdateStatuses:       d.UpdateStatuses,
			ShowDownloaderStatus: d.ShowDownloaderStatus,
		},
	}
}

// Config converts the document back to a Config. A missing downloader list
// becomes an empty one.
func (doc Document) Config() *Config {
	dd := doc.Downloading
	downloaders := append([]DownloaderConfig{}, dd.Downloaders...)
	return &Config{
		Main: doc.Main,
		Downloading: DownloadingConfig{
			Downloaders:          downloaders,
			SendMagnetLinks:      dd.SendMagnetLinks,
			UpdateStatuses:       dd.UpdateStatuses,
			ShowDownloaderStatus: dd.ShowDownloaderStatus,
			saveTorrentsTo:       cloneString(dd.SaveTorrentsTo),
			saveNzbsTo:           cloneString(dd.SaveNzbsTo),
		},
	}
}
