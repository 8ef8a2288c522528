package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gork-labs/enumcmp/internal/generator"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when --config is not given.
const DefaultConfigFile = ".enumcmp.yml"

// GenerateConfig holds the settings shared by generate and inspect.
type GenerateConfig struct {
	ConfigPath  string
	Prefix      string
	FuncSuffix  string
	FileSuffix  string
	Excludes    []string
	Concurrency int
	Stdout      bool
	Watch       bool
}

func bindConfigFlags(cmd *cobra.Command, config *GenerateConfig) {
	defaults := generator.DefaultOptions()

	cmd.Flags().StringVar(&config.ConfigPath, "config", "", "Path to .enumcmp.yml config file")
	cmd.Flags().StringVar(&config.Prefix, "prefix", defaults.Naming.Prefix, "Prefix of the generated shadow tag type")
	cmd.Flags().StringVar(&config.FuncSuffix, "func-suffix", defaults.Naming.FuncSuffix, "Suffix of the generated comparison function")
	cmd.Flags().StringVar(&config.FileSuffix, "suffix", defaults.FileSuffix, "Suffix of generated files")
	cmd.Flags().StringArrayVar(&config.Excludes, "exclude", nil, "Glob of directories to skip (repeatable)")
	cmd.Flags().IntVar(&config.Concurrency, "concurrency", 0, "Packages processed in parallel (0 means GOMAXPROCS)")
}

// fileConfig mirrors the enumcmp section of .enumcmp.yml.
type fileConfig struct {
	Enumcmp struct {
		Prefix      string   `yaml:"prefix"`
		FuncSuffix  string   `yaml:"func_suffix"`
		FileSuffix  string   `yaml:"file_suffix"`
		Exclude     []string `yaml:"exclude"`
		Concurrency *int     `yaml:"concurrency"`
	} `yaml:"enumcmp"`
}

// loadConfigFile applies the config file to every setting whose flag was not
// set explicitly. A missing default config file is not an error.
func loadConfigFile(config *GenerateConfig, changed func(flag string) bool) error {
	path := config.ConfigPath
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if config.ConfigPath == "" && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if !changed("prefix") && cfg.Enumcmp.Prefix != "" {
		config.Prefix = cfg.Enumcmp.Prefix
	}
	if !changed("func-suffix") && cfg.Enumcmp.FuncSuffix != "" {
		config.FuncSuffix = cfg.Enumcmp.FuncSuffix
	}
	if !changed("suffix") && cfg.Enumcmp.FileSuffix != "" {
		config.FileSuffix = cfg.Enumcmp.FileSuffix
	}
	if !changed("exclude") && len(cfg.Enumcmp.Exclude) > 0 {
		config.Excludes = cfg.Enumcmp.Exclude
	}
	if !changed("concurrency") && cfg.Enumcmp.Concurrency != nil {
		config.Concurrency = *cfg.Enumcmp.Concurrency
	}
	return nil
}

// Options converts the settings into generator options.
func (c *GenerateConfig) Options() generator.Options {
	opts := generator.DefaultOptions()
	opts.Naming = generator.Naming{Prefix: c.Prefix, FuncSuffix: c.FuncSuffix}
	opts.FileSuffix = c.FileSuffix
	opts.Excludes = c.Excludes
	opts.Concurrency = c.Concurrency
	opts.DryRun = c.Stdout
	return opts
}
