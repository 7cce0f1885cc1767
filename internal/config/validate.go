package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingPlaceholder indicates a template is missing a required {var}.
	ErrMissingPlaceholder = errors.New("template missing required placeholder")

	// ErrInvalidJournalMode indicates an unrecognized SQLite journal mode.
	ErrInvalidJournalMode = errors.New("invalid journal mode")

	// ErrInvalidSyncMode indicates an unrecognized SQLite synchronous mode.
	ErrInvalidSyncMode = errors.New("invalid sync mode")

	// ErrInvalidHashAlgorithm indicates an unsupported hash algorithm.
	ErrInvalidHashAlgorithm = errors.New("invalid hash algorithm")

	// ErrInvalidFTSLanguage indicates an unsupported FTS tokenizer selector.
	ErrInvalidFTSLanguage = errors.New("invalid fts language")

	// ErrEmptyStorageDir indicates import.paths.storage_dir was not set.
	ErrEmptyStorageDir = errors.New("empty storage_dir")

	// ErrInvalidLimit indicates a non-positive default page size.
	ErrInvalidLimit = errors.New("invalid default_limit")
)

// Validate checks that the configuration is valid and complete. Validation rejects templates missing required placeholders.
func Validate(cfg *Config) error {
	var errs []error

	if err := validateDatabase(&cfg.Database); err != nil {
		errs = append(errs, err)
	}
	if err := validateImportPaths(&cfg.Import.Paths); err != nil {
		errs = append(errs, err)
	}
	if err := validateSearch(&cfg.Search); err != nil {
		errs = append(errs, err)
	}
	if err := validateHash(&cfg.Hash); err != nil {
		errs = append(errs, err)
	}

	return joinErrors(errs)
}

func validateDatabase(cfg *DatabaseConfig) error {
	var errs []error

	validJournal := map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	if !validJournal[strings.ToUpper(cfg.JournalMode)] {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidJournalMode, cfg.JournalMode))
	}

	validSync := map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
	if !validSync[strings.ToUpper(cfg.SyncMode)] {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidSyncMode, cfg.SyncMode))
	}

	return joinErrors(errs)
}

func validateImportPaths(cfg *ImportPathsConfig) error {
	var errs []error

	if strings.TrimSpace(cfg.StorageDir) == "" {
		errs = append(errs, ErrEmptyStorageDir)
	}
	if !strings.Contains(cfg.RenameTemplate, "{title}") {
		errs = append(errs, fmt.Errorf("%w: rename_template must contain {title}, got %q", ErrMissingPlaceholder, cfg.RenameTemplate))
	}
	if !strings.Contains(cfg.ClassifyTemplate, "{filename}") {
		errs = append(errs, fmt.Errorf("%w: classify_template must contain {filename}, got %q", ErrMissingPlaceholder, cfg.ClassifyTemplate))
	}

	return joinErrors(errs)
}

func validateSearch(cfg *SearchConfig) error {
	var errs []error

	if cfg.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidLimit, cfg.DefaultLimit))
	}

	validLang := map[string]bool{"simple": true, "unicode61": true, "porter": true, "custom-cjk": true}
	if !validLang[cfg.FTSLanguage] {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidFTSLanguage, cfg.FTSLanguage))
	}

	return joinErrors(errs)
}

func validateHash(cfg *HashConfig) error {
	validAlgo := map[string]bool{
		"sha256": true, "blake2b": true, "blake3": true,
		"xxh3_64": true, "xxh3_128": true, "md5": true, "sha512": true,
	}
	if !validAlgo[cfg.Algorithm] {
		return fmt.Errorf("%w: %q", ErrInvalidHashAlgorithm, cfg.Algorithm)
	}
	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	var msgs []string
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}

	return fmt.Errorf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}
