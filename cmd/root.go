/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package cmd provides CLI commands for cjsresolve.
package cmd

import (
	"github.com/spf13/cobra"

	"bennypowers.dev/cjsresolve/cmd/check"
	"bennypowers.dev/cjsresolve/cmd/mcp"
	"bennypowers.dev/cjsresolve/cmd/resolve"
	"bennypowers.dev/cjsresolve/cmd/version"
	"bennypowers.dev/cjsresolve/internal/settings"
)

var rootCmd = &cobra.Command{
	Use:   "cjsresolve",
	Short: "Resolve CommonJS require() requests",
	Long: `cjsresolve resolves require() requests to files using the Node.js algorithm:
extensions, index files, package.json entry points, module directories,
browser-field remapping and aliases.

Settings are read from .config/cjsresolve.{yaml,yml,json,toml} in the project
directory, then from CJSRESOLVE_* environment variables, then from flags.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolP(settings.FlagVerbose, "v", false, "Log every filesystem probe")

	rootCmd.AddCommand(resolve.Cmd)
	rootCmd.AddCommand(check.Cmd)
	rootCmd.AddCommand(mcp.Cmd)
	rootCmd.AddCommand(version.Cmd)
}
