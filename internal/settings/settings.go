/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package settings merges the config file, environment and command-line flags
// into resolution options for the CLI commands.
package settings

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bennypowers.dev/cjsresolve/config"
	"bennypowers.dev/cjsresolve/fs"
	"bennypowers.dev/cjsresolve/internal/logger"
)

// EnvPrefix prefixes environment variables, e.g. CJSRESOLVE_MODULE_DIR.
const EnvPrefix = "CJSRESOLVE"

// Flag names shared by the commands that resolve requests.
const (
	FlagDir       = "dir"
	FlagRoot      = "root"
	FlagExt       = "ext"
	FlagMain      = "main"
	FlagModuleDir = "module-dir"
	FlagAlias     = "alias"
	FlagVerbose   = "verbose"
)

// Settings is the merged configuration for one command invocation.
type Settings struct {
	// Dir is the absolute project directory the config file was loaded from.
	Dir string

	// File is the loaded config file, or an empty File.
	File *config.File

	// Options are the resolution options: flags and environment override
	// the config file.
	Options *config.Options
}

// AddFlags registers the resolution flags on cmd.
func AddFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.String(FlagDir, ".", "Project directory containing .config/cjsresolve.*")
	flags.StringSlice(FlagRoot, nil, "Search root for bare requests (repeatable)")
	flags.StringSlice(FlagExt, nil, "File extension to try, in order (repeatable)")
	flags.StringSlice(FlagMain, nil, "package.json entry-point field, in order (repeatable)")
	flags.StringSlice(FlagModuleDir, nil, "Module directory name or absolute path (repeatable)")
	flags.StringSlice(FlagAlias, nil, "Alias as request=target, or request=false (repeatable)")
}

// Load reads the config file for the --dir flag and applies environment and
// flag overrides on top of it.
func Load(cmd *cobra.Command) (*Settings, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, fmt.Errorf("error binding flags: %w", err)
	}
	if flag := cmd.Flag(FlagVerbose); flag != nil {
		if err := v.BindPFlag(FlagVerbose, flag); err != nil {
			return nil, fmt.Errorf("error binding verbose flag: %w", err)
		}
	}
	logger.SetVerbose(v.GetBool(FlagVerbose))

	dir := v.GetString(FlagDir)
	if dir == "" {
		dir = "."
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("error resolving project directory: %w", err)
	}

	file, err := config.Load(fs.NewOSFileSystem(), dir)
	if err != nil {
		return nil, err
	}
	if file == nil {
		file = &config.File{}
	}

	opts := file.Options(dir)
	if v.IsSet(FlagRoot) {
		opts.Roots = nil
		for _, root := range v.GetStringSlice(FlagRoot) {
			if !filepath.IsAbs(root) {
				root = filepath.Join(dir, root)
			}
			opts.Roots = append(opts.Roots, root)
		}
	}
	if len(opts.Roots) == 0 {
		opts.Root = dir
	}
	if v.IsSet(FlagExt) {
		opts.Extensions = v.GetStringSlice(FlagExt)
	}
	if v.IsSet(FlagMain) {
		opts.PackageMains = v.GetStringSlice(FlagMain)
	}
	if v.IsSet(FlagModuleDir) {
		opts.ModuleDirectories = v.GetStringSlice(FlagModuleDir)
	}
	if v.IsSet(FlagAlias) {
		aliases, err := ParseAliases(v.GetStringSlice(FlagAlias))
		if err != nil {
			return nil, err
		}
		if opts.Alias == nil {
			opts.Alias = make(map[string]config.Alias, len(aliases))
		}
		for key, alias := range aliases {
			opts.Alias[key] = alias
		}
	}

	return &Settings{Dir: dir, File: file, Options: opts}, nil
}

// ParseAliases parses request=target pairs. A target of "false" maps the
// request to the empty module.
func ParseAliases(pairs []string) (map[string]config.Alias, error) {
	aliases := make(map[string]config.Alias, len(pairs))
	for _, pair := range pairs {
		request, target, ok := strings.Cut(pair, "=")
		request = strings.TrimSpace(request)
		target = strings.TrimSpace(target)
		if !ok || request == "" || target == "" {
			return nil, fmt.Errorf("invalid alias %q: expected request=target", pair)
		}
		if target == "false" {
			aliases[request] = config.AliasEmpty()
			continue
		}
		aliases[request] = config.AliasTo(target)
	}
	return aliases, nil
}
