// Package config handles loading toolchain configuration from files.
//
// Configuration is a TOML file named glslkit.toml or .glslkit.toml. The
// config file is searched for in the input's directory and its parents.
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/HugoDaniel/glslkit/internal/codegen"
	"github.com/HugoDaniel/glslkit/internal/pipeline"
)

// Config represents the configuration file structure.
// All fields are optional and will use default values if not specified.
type Config struct {
	// Pipeline is the pass list, e.g. ["simplify", "differentiate", "js"]
	Pipeline []string `toml:"pipeline"`

	// Param is the parameter to differentiate with respect to
	Param string `toml:"param"`

	// Dialect selects the code generator target
	Dialect string `toml:"dialect"`

	// LogLevel is the commonlog verbosity
	LogLevel *int `toml:"log-level"`

	// Diff prints a diff against the input instead of the output
	Diff *bool `toml:"diff"`

	// Minify renders GLSL output without optional whitespace
	Minify *bool `toml:"minify"`

	// MinifyIdentifiers renders GLSL output with short parameter and local names
	MinifyIdentifiers *bool `toml:"minify-identifiers"`

	// KeepNames lists locals that are never renamed
	KeepNames []string `toml:"keep-names"`
}

// ConfigFileNames are the names searched for config files, in order of preference.
var ConfigFileNames = []string{
	"glslkit.toml",
	".glslkit.toml",
}

// Load searches for a config file starting from the given directory
// and walking up to parent directories. Returns nil if no config file is found.
func Load(startDir string) (*Config, string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, "", errors.Wrapf(err, "cannot resolve path %s", startDir)
	}
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse error in %s", path)
	}

	return &cfg, nil
}

// ToOptions converts a Config to pipeline.Options, using defaults for unset fields.
func (c *Config) ToOptions() (pipeline.Options, error) {
	opts := pipeline.DefaultOptions()
	if c == nil {
		return opts, nil
	}

	for _, name := range c.Pipeline {
		passes, err := pipeline.ParsePasses(name)
		if err != nil {
			return opts, err
		}
		opts.Passes = append(opts.Passes, passes...)
	}
	opts.Param = c.Param
	if c.Dialect != "" {
		d, err := codegen.ParseDialect(c.Dialect)
		if err != nil {
			return opts, errors.WithStack(err)
		}
		opts.Dialect = d
	}
	if c.Minify != nil {
		opts.MinifyWhitespace = *c.Minify
	}
	if c.MinifyIdentifiers != nil {
		opts.MinifyIdentifiers = *c.MinifyIdentifiers
	}
	opts.KeepNames = c.KeepNames
	return opts, nil
}

// MergeOptions holds CLI flags (nil or empty means not specified on CLI).
type MergeOptions struct {
	Pipeline          *string
	Param             *string
	Dialect           *string
	Minify            *bool
	MinifyIdentifiers *bool
	KeepNames         []string
}

// Merge merges CLI options with config file options.
// CLI options override config file options when specified.
func (c *Config) Merge(cli MergeOptions) (pipeline.Options, error) {
	opts, err := c.ToOptions()
	if err != nil {
		return opts, err
	}

	if cli.Pipeline != nil {
		passes, err := pipeline.ParsePasses(*cli.Pipeline)
		if err != nil {
			return opts, err
		}
		opts.Passes = passes
	}
	if cli.Param != nil {
		opts.Param = *cli.Param
	}
	if cli.Dialect != nil {
		d, err := codegen.ParseDialect(*cli.Dialect)
		if err != nil {
			return opts, errors.WithStack(err)
		}
		opts.Dialect = d
	}
	if cli.Minify != nil {
		opts.MinifyWhitespace = *cli.Minify
	}
	if cli.MinifyIdentifiers != nil {
		opts.MinifyIdentifiers = *cli.MinifyIdentifiers
	}
	if cli.KeepNames != nil {
		opts.KeepNames = cli.KeepNames
	}

	return opts, opts.Validate()
}

// Verbosity returns the configured log level, or def when unset.
func (c *Config) Verbosity(def int) int {
	if c == nil || c.LogLevel == nil {
		return def
	}
	return *c.LogLevel
}

// ShowDiff reports whether the config asks for diff output.
func (c *Config) ShowDiff() bool {
	return c != nil && c.Diff != nil && *c.Diff
}
