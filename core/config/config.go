// Package config loads htmd settings from a YAML file. Command-line flags
// override whatever the file sets.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gaurav-prasanna/htmd/core/markdown"
	"github.com/gaurav-prasanna/htmd/core/node"
)

// Formats lists the supported output formats.
var Formats = []string{"markdown", "json", "pdf", "html"}

var (
	ErrFormatInvalid   = errors.New("config: format must be one of markdown, json, pdf, html")
	ErrParallelInvalid = errors.New("config: parallel must be at least 1")
	ErrIgnoreInvalid   = errors.New("config: invalid node kind in ignore")
	ErrFetchInvalid    = errors.New("config: fetch timeout and max_bytes must not be negative")
	ErrCrawlInvalid    = errors.New("config: crawl max_pages must be at least 1")
	ErrChunkInvalid    = errors.New("config: chunk_size must not be negative")
)

// Config holds all settings.
type Config struct {
	Ignore      []string      `yaml:"ignore"`
	Format      string        `yaml:"format"`
	OutputDir   string        `yaml:"output_dir"`
	Mirror      bool          `yaml:"mirror"`
	FrontMatter bool          `yaml:"front_matter"`
	Fallback    bool          `yaml:"fallback"`
	Parallel    int           `yaml:"parallel"`
	ChunkSize   int           `yaml:"chunk_size"`
	Extract     ExtractConfig `yaml:"extract"`
	Fetch       FetchConfig   `yaml:"fetch"`
	Crawl       CrawlConfig   `yaml:"crawl"`
}

// ExtractConfig controls main-content extraction. Empty selector lists
// keep the extractor's defaults.
type ExtractConfig struct {
	Enabled    bool     `yaml:"enabled"`
	Containers []string `yaml:"containers"`
	Noise      []string `yaml:"noise"`
}

// FetchConfig controls HTTP fetching of URL inputs.
type FetchConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	MaxBytes  int64         `yaml:"max_bytes"`
}

// CrawlConfig controls site discovery from URL inputs.
type CrawlConfig struct {
	Enabled  bool `yaml:"enabled"`
	MaxPages int  `yaml:"max_pages"`
	Scoped   bool `yaml:"scoped"`
}

// Default returns the settings used when no file is given.
func Default() Config {
	return Config{
		Format:   "markdown",
		Parallel: 4,
		Fetch: FetchConfig{
			Timeout:  30 * time.Second,
			MaxBytes: 10 << 20,
		},
		Crawl: CrawlConfig{MaxPages: 100},
	}
}

// Load reads path over the defaults and validates the result. Unknown keys
// are rejected.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	if !slices.Contains(Formats, c.Format) {
		return fmt.Errorf("%w: %q", ErrFormatInvalid, c.Format)
	}
	if c.Parallel < 1 {
		return ErrParallelInvalid
	}
	if c.Fetch.Timeout < 0 || c.Fetch.MaxBytes < 0 {
		return ErrFetchInvalid
	}
	if c.Crawl.MaxPages < 1 {
		return ErrCrawlInvalid
	}
	if c.ChunkSize < 0 {
		return ErrChunkInvalid
	}
	if _, err := c.RenderConfig(); err != nil {
		return err
	}
	return nil
}

// RenderConfig converts the ignore list into a renderer configuration.
func (c Config) RenderConfig() (markdown.Config, error) {
	var cfg markdown.Config
	for _, name := range c.Ignore {
		kind, err := node.ParseKind(name)
		if err != nil {
			return cfg, fmt.Errorf("%w: %v", ErrIgnoreInvalid, err)
		}
		cfg.IgnoreRendering = append(cfg.IgnoreRendering, kind)
	}
	return cfg, nil
}
