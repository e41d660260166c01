/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package config

import (
	"encoding/json"
	"fmt"
	iofs "io/fs"
	"path/filepath"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"bennypowers.dev/cjsresolve/fs"
)

// ConfigFileName is the base name of the config file without extension.
const ConfigFileName = "cjsresolve"

// ConfigDir is the directory where config files are stored.
const ConfigDir = ".config"

// configExtensions are the supported config file extensions in priority order.
var configExtensions = []string{".yaml", ".yml", ".json", ".toml"}

// File is the on-disk configuration.
type File struct {
	// Roots are search roots, relative to the project directory.
	Roots []string `yaml:"roots" json:"roots"`

	// Alias maps requests to a replacement string or false.
	Alias map[string]Alias `yaml:"alias" json:"alias"`

	Extensions        []string `yaml:"extensions" json:"extensions"`
	PackageMains      []string `yaml:"packageMains" json:"packageMains"`
	ModuleDirectories []string `yaml:"moduleDirectories" json:"moduleDirectories"`

	// Files are glob patterns of sources checked by `cjsresolve check`.
	Files []string `yaml:"files" json:"files"`
}

// tomlFile mirrors File for go-toml, which cannot decode the string-or-false
// alias form directly.
type tomlFile struct {
	Roots             []string       `toml:"roots"`
	Alias             map[string]any `toml:"alias"`
	Extensions        []string       `toml:"extensions"`
	PackageMains      []string       `toml:"packageMains"`
	ModuleDirectories []string       `toml:"moduleDirectories"`
	Files             []string       `toml:"files"`
}

// UnmarshalYAML accepts a string target or the boolean false.
func (a *Alias) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("alias must be a string or false (line %d)", node.Line)
	}
	if node.Tag == "!!bool" {
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		return a.fromValue(b)
	}
	a.Target = node.Value
	return nil
}

// UnmarshalJSON accepts a string target or the boolean false.
func (a *Alias) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	return a.fromValue(v)
}

func (a *Alias) fromValue(v any) error {
	switch value := v.(type) {
	case string:
		*a = AliasTo(value)
		return nil
	case bool:
		if !value {
			*a = AliasEmpty()
			return nil
		}
	}
	return fmt.Errorf("alias must be a string or false, got %v", v)
}

// Load searches for .config/cjsresolve.{yaml,yml,json,toml} in rootDir.
// Returns nil if no config found (not an error).
func Load(filesystem fs.FileSystem, rootDir string) (*File, error) {
	for _, ext := range configExtensions {
		configPath := filepath.Join(rootDir, ConfigDir, ConfigFileName+ext)
		if !fs.IsFile(filesystem, configPath) {
			continue
		}

		data, err := filesystem.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		cfg, err := parseFile(data, ext)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", configPath, err)
		}
		return cfg, nil
	}

	return nil, nil
}

func parseFile(data []byte, ext string) (*File, error) {
	cfg := &File{}
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(jsonc.ToJSON(data), cfg); err != nil {
			return nil, err
		}
	case ".toml":
		var raw tomlFile
		if err := toml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
		cfg.Roots = raw.Roots
		cfg.Extensions = raw.Extensions
		cfg.PackageMains = raw.PackageMains
		cfg.ModuleDirectories = raw.ModuleDirectories
		cfg.Files = raw.Files
		if raw.Alias != nil {
			cfg.Alias = make(map[string]Alias, len(raw.Alias))
			for key, value := range raw.Alias {
				var alias Alias
				if err := alias.fromValue(value); err != nil {
					return nil, fmt.Errorf("alias %q: %w", key, err)
				}
				cfg.Alias[key] = alias
			}
		}
	}
	return cfg, nil
}

// Options converts the file into resolution Options. Relative roots are
// resolved against rootDir.
func (f *File) Options(rootDir string) *Options {
	opts := &Options{
		Extensions:        slices.Clone(f.Extensions),
		PackageMains:      slices.Clone(f.PackageMains),
		ModuleDirectories: slices.Clone(f.ModuleDirectories),
	}
	for _, root := range f.Roots {
		if !filepath.IsAbs(root) {
			root = filepath.Join(rootDir, root)
		}
		opts.Roots = append(opts.Roots, root)
	}
	if len(f.Alias) > 0 {
		opts.Alias = make(map[string]Alias, len(f.Alias))
		for key, value := range f.Alias {
			opts.Alias[key] = value
		}
	}
	return opts
}

// ExpandFiles matches slash-separated glob patterns against fsys and returns
// the sorted, de-duplicated list of matching files. Patterns without glob
// characters are returned as-is when they name a file.
func ExpandFiles(fsys iofs.FS, patterns []string) ([]string, error) {
	seen := make(map[string]struct{})
	var result []string

	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid glob pattern: %s", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", pattern, err)
		}
		for _, match := range matches {
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			result = append(result, match)
		}
	}

	slices.Sort(result)
	return result, nil
}
