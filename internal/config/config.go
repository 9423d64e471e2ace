package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jdefrancesco/dskSwap/internal/dmatch"
	"github.com/jdefrancesco/dskSwap/internal/dwalk"
	"github.com/jdefrancesco/dskSwap/pkg/utils"

	"gopkg.in/yaml.v3"
)

// DefaultExtension is used when no extension filter is configured.
const DefaultExtension = ".tsv"

type Config struct {
	// Root directory to search.
	Path string `yaml:"path"`
	// File suffixes to include, e.g. ".csv". A missing leading dot is added.
	Extensions []string `yaml:"extensions"`
	// Descend into subdirectories.
	Recursive bool `yaml:"recursive"`
	// SkipHidden controls whether hidden dotfiles and directories are skipped.
	SkipHidden bool `yaml:"skip_hidden"`
	// Glob patterns of paths to leave alone.
	Exclude []string `yaml:"exclude"`
	// Files above this size are ignored, e.g. "10M". Empty means no limit.
	MaxFileSize string `yaml:"max_file_size"`

	// Regular expression to search for.
	Search string `yaml:"search"`
	// Replacement text. Nil means search only.
	Replacement *string `yaml:"replacement"`
	MatchCase   bool    `yaml:"match_case"`
	// Write <stem>_REPLACED<ext> instead of overwriting.
	Duplicate       bool `yaml:"duplicate"`
	RenameFilenames bool `yaml:"rename_filenames"`
	// Skip the confirmation dialog before overwriting files.
	AssumeYes bool `yaml:"assume_yes"`

	LogFile    string `yaml:"log_file"`
	LogLevel   string `yaml:"log_level"`
	JSONReport string `yaml:"json_report"`
	CSVReport  string `yaml:"csv_report"`

	// Filled in by Validate.
	maxFileSizeBytes uint64
}

// DefaultConfig returns a Config with sensible default values
func DefaultConfig() *Config {
	return &Config{
		Path:       ".",
		Extensions: []string{DefaultExtension},
		LogFile:    "dskswap.log",
		LogLevel:   "info",

		RenameFilenames: true,
	}
}

// Load reads a YAML config file on top of DefaultConfig. Unknown keys are
// rejected.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	// #nosec G304 -- user supplied config path
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// ReplaceMode reports whether a replacement was configured.
func (c *Config) ReplaceMode() bool {
	return c.Replacement != nil
}

// SetExtensions parses a comma separated extension list.
func (c *Config) SetExtensions(list string) {
	c.Extensions = strings.Split(list, ",")
}

// Validate normalizes the config and checks it can drive a job.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Path) == "" {
		return errors.New("path is required")
	}
	if c.Search == "" {
		return errors.New("search pattern is required")
	}

	c.Extensions = dwalk.NormalizeSuffixes(c.Extensions)
	if len(c.Extensions) == 0 {
		return dwalk.ErrNoSuffixes
	}

	c.maxFileSizeBytes = 0
	if s := strings.TrimSpace(c.MaxFileSize); s != "" {
		size, err := utils.ParseSize(s)
		if err != nil {
			return fmt.Errorf("invalid max_file_size: %w", err)
		}
		c.maxFileSizeBytes = size
	}

	if _, err := dmatch.Compile(c.Search, c.MatchCase); err != nil {
		return err
	}
	if c.ReplaceMode() {
		return dmatch.CheckReplacement(c.Search, c.MatchCase, *c.Replacement)
	}
	return nil
}

// LocateOptions converts the filter settings for dwalk.Locate.
func (c *Config) LocateOptions() dwalk.Options {
	return dwalk.Options{
		Suffixes:    c.Extensions,
		Recursive:   c.Recursive,
		SkipHidden:  c.SkipHidden,
		Exclude:     c.Exclude,
		MaxFileSize: c.maxFileSizeBytes,
	}
}

// MatchJob builds a search job over files.
func (c *Config) MatchJob(files []string) dmatch.MatchJob {
	return dmatch.MatchJob{
		Files:         files,
		Pattern:       c.Search,
		CaseSensitive: c.MatchCase,
	}
}

// ReplaceJob builds a replace job over files. It panics when no replacement
// is configured; check ReplaceMode first.
func (c *Config) ReplaceJob(files []string) dmatch.ReplaceJob {
	if c.Replacement == nil {
		panic("config: ReplaceJob called without a replacement")
	}
	return dmatch.ReplaceJob{
		MatchJob:        c.MatchJob(files),
		Replacement:     *c.Replacement,
		Duplicate:       c.Duplicate,
		RenameFilenames: c.RenameFilenames,
	}
}
