// Package config loads and validates tagbox's TOML configuration, the
// immutable value threaded through every public entry point.
package config

// Config is the complete tagbox configuration, loaded from a TOML file on
// disk and validated before use.
type Config struct {
	Database DatabaseConfig `toml:"database"`
	Import   ImportConfig   `toml:"import"`
	Search   SearchConfig   `toml:"search"`
	Hash     HashConfig     `toml:"hash"`
}

// DatabaseConfig configures the catalog's SQLite connection.
type DatabaseConfig struct {
	Path        string `toml:"path"`
	JournalMode string `toml:"journal_mode"` // DELETE|WAL|...
	SyncMode    string `toml:"sync_mode"`    // OFF|NORMAL|FULL|EXTRA
}

// ImportPathsConfig controls where files land and how they are named.
type ImportPathsConfig struct {
	StorageDir       string `toml:"storage_dir"`
	RenameTemplate   string `toml:"rename_template"`   // must contain {title}
	ClassifyTemplate string `toml:"classify_template"` // must contain {filename}
}

// ImportMetadataConfig controls metadata-extraction priority and fallbacks.
type ImportMetadataConfig struct {
	PreferJSON      bool   `toml:"prefer_json"`
	FallbackPDF     bool   `toml:"fallback_pdf"`
	DefaultCategory string `toml:"default_category"`
}

// ImportConfig groups the import.* configuration keys.
type ImportConfig struct {
	Paths    ImportPathsConfig    `toml:"paths"`
	Metadata ImportMetadataConfig `toml:"metadata"`
}

// SearchConfig controls default pagination and the FTS tokenizer.
type SearchConfig struct {
	DefaultLimit int    `toml:"default_limit"`
	EnableFTS    bool   `toml:"enable_fts"`
	FTSLanguage  string `toml:"fts_language"` // simple|unicode61|porter|custom-cjk
}

// HashConfig controls the content-hash algorithm used at import time.
type HashConfig struct {
	Algorithm      string `toml:"algorithm"` // sha256|blake2b|blake3|xxh3_64|xxh3_128|md5|sha512
	VerifyOnImport bool   `toml:"verify_on_import"`
}

// Default returns a configuration with sensible defaults, so an empty
// config file still produces a working library.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "tagbox.db",
			JournalMode: "WAL",
			SyncMode:    "NORMAL",
		},
		Import: ImportConfig{
			Paths: ImportPathsConfig{
				StorageDir:       "files",
				RenameTemplate:   "{title}_{authors}_{year}",
				ClassifyTemplate: "{category1}/{filename}",
			},
			Metadata: ImportMetadataConfig{
				PreferJSON:      true,
				FallbackPDF:     true,
				DefaultCategory: "uncategorized",
			},
		},
		Search: SearchConfig{
			DefaultLimit: 20,
			EnableFTS:    true,
			FTSLanguage:  "simple",
		},
		Hash: HashConfig{
			Algorithm:      "blake2b",
			VerifyOnImport: true,
		},
	}
}
