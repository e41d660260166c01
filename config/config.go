/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package config normalizes user-supplied resolution options.
package config

import (
	"maps"
	"os"
	"path/filepath"
	"slices"

	"bennypowers.dev/cjsresolve/fs"
	"bennypowers.dev/cjsresolve/manifest"
)

// EmptyModule is the default stand-in path returned when a request is mapped
// to false, either by an alias or by a package's browser field.
const EmptyModule = "\x00cjsresolve:empty"

// DefaultMaxDepth bounds how many directory and entry-point hops a single
// resolution may take.
const DefaultMaxDepth = 32

// Defaults applied by Normalize.
var (
	DefaultExtensions        = []string{".js", ".json"}
	DefaultPackageMains      = []string{"browser", "main"}
	DefaultModuleDirectories = []string{"node_modules"}
)

// Alias is the replacement for an aliased request.
type Alias struct {
	// Target replaces the request and is then classified as usual.
	Target string

	// Empty maps the request to the empty module. It is the "false" form.
	Empty bool
}

// AliasTo returns an Alias that substitutes target.
func AliasTo(target string) Alias {
	return Alias{Target: target}
}

// AliasEmpty returns an Alias that maps to the empty module.
func AliasEmpty() Alias {
	return Alias{Empty: true}
}

// Options is the partial, user-supplied configuration.
// Zero values select defaults.
type Options struct {
	// Root is a single search root. It is appended after Roots.
	Root string

	// Roots are the fallback search bases for bare requests.
	Roots []string

	// Alias maps exact request strings to replacements.
	Alias map[string]Alias

	// Extensions are tried in order when probing a path as a file.
	Extensions []string

	// PackageMains are the manifest fields consulted for a package entry point.
	PackageMains []string

	// ModuleDirectories are directory names (or absolute paths) searched for
	// bare requests.
	ModuleDirectories []string

	// FS is the filesystem. Defaults to the OS filesystem.
	FS fs.FileSystem

	// Stat overrides FS.Stat only.
	Stat fs.StatFunc

	// ReadFile overrides FS.ReadFile only.
	ReadFile fs.ReadFileFunc

	// Processor selects package entry points. Defaults to PackageMains.
	Processor manifest.Processor

	// EmptyModule is returned for requests mapped to false.
	EmptyModule string

	// MaxDepth bounds chained directory and entry-point resolution.
	MaxDepth int
}

// Config is a fully populated configuration. It is not modified after
// Normalize returns and may be shared between concurrent resolutions.
type Config struct {
	Roots             []string
	Alias             map[string]Alias
	Extensions        []string
	PackageMains      []string
	ModuleDirectories []string
	FS                fs.FileSystem
	Processor         manifest.Processor
	EmptyModule       string
	MaxDepth          int
}

// Normalize applies defaults to opts. It never fails: any field that is unset
// or unusable falls back to its default. Slices and maps are copied so later
// changes by the caller do not affect resolutions in progress.
func Normalize(opts *Options) *Config {
	if opts == nil {
		opts = &Options{}
	}

	cfg := &Config{
		Roots:             normalizeRoots(opts.Roots, opts.Root),
		Alias:             map[string]Alias{},
		Extensions:        copyOr(opts.Extensions, DefaultExtensions),
		PackageMains:      copyOr(opts.PackageMains, DefaultPackageMains),
		ModuleDirectories: copyOr(opts.ModuleDirectories, DefaultModuleDirectories),
		FS:                normalizeFS(opts),
		Processor:         opts.Processor,
		EmptyModule:       opts.EmptyModule,
		MaxDepth:          opts.MaxDepth,
	}

	if opts.Alias != nil {
		cfg.Alias = maps.Clone(opts.Alias)
	}
	if cfg.Processor == nil {
		cfg.Processor = manifest.MainFields(cfg.PackageMains)
	}
	if cfg.EmptyModule == "" {
		cfg.EmptyModule = EmptyModule
	}
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}

	return cfg
}

// IsModuleDirectory reports whether name is one of the configured module
// directory names.
func (c *Config) IsModuleDirectory(name string) bool {
	return slices.Contains(c.ModuleDirectories, name)
}

func copyOr(value, fallback []string) []string {
	if value == nil {
		return slices.Clone(fallback)
	}
	return slices.Clone(value)
}

func normalizeRoots(roots []string, root string) []string {
	var result []string
	for _, r := range roots {
		if r != "" {
			result = append(result, absolute(r))
		}
	}
	if root != "" {
		result = append(result, absolute(root))
	}
	if len(result) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			cwd = string(filepath.Separator)
		}
		result = []string{cwd}
	}
	return result
}

func absolute(p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return filepath.Clean(p)
	}
	return abs
}

func normalizeFS(opts *Options) fs.FileSystem {
	base := opts.FS
	if base == nil {
		base = fs.NewOSFileSystem()
	}
	if opts.Stat == nil && opts.ReadFile == nil {
		return base
	}
	return &fs.Overlay{
		Base:         base,
		StatFunc:     opts.Stat,
		ReadFileFunc: opts.ReadFile,
	}
}
