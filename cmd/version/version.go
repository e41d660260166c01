/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package version provides the version command for cjsresolve.
package version

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"bennypowers.dev/cjsresolve/config"
	"bennypowers.dev/cjsresolve/internal/version"
)

// Cmd is the version cobra command.
var Cmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long: `Print the cjsresolve version, build information and the resolution
defaults this build applies when no option or config file overrides them.`,
	Args: cobra.NoArgs,
	RunE: run,
}

func init() {
	Cmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	Cmd.Flags().Bool("short", false, "Print the version number only")
}

// Defaults are the resolution settings used when none are configured.
type Defaults struct {
	Extensions        []string `json:"extensions"`
	PackageMains      []string `json:"packageMains"`
	ModuleDirectories []string `json:"moduleDirectories"`
	MaxDepth          int      `json:"maxDepth"`
}

// Report is the JSON output of the version command.
type Report struct {
	version.BuildInfo
	Defaults Defaults `json:"defaults"`
}

func newReport() Report {
	return Report{
		BuildInfo: version.Info(),
		Defaults: Defaults{
			Extensions:        config.DefaultExtensions,
			PackageMains:      config.DefaultPackageMains,
			ModuleDirectories: config.DefaultModuleDirectories,
			MaxDepth:          config.DefaultMaxDepth,
		},
	}
}

func run(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")
	short, _ := cmd.Flags().GetBool("short")

	out := cmd.OutOrStdout()
	if short {
		_, err := fmt.Fprintln(out, version.Get())
		return err
	}

	report := newReport()
	switch format {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "text":
		return writeText(out, report)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func writeText(w io.Writer, r Report) error {
	fmt.Fprintf(w, "cjsresolve %s (%s, %s)\n", r.Version, r.GoVersion, r.Platform)
	fmt.Fprintf(w, "  extensions:   %s\n", strings.Join(r.Defaults.Extensions, " "))
	fmt.Fprintf(w, "  main fields:  %s\n", strings.Join(r.Defaults.PackageMains, " "))
	fmt.Fprintf(w, "  module dirs:  %s\n", strings.Join(r.Defaults.ModuleDirectories, " "))
	_, err := fmt.Fprintf(w, "  max depth:    %d\n", r.Defaults.MaxDepth)
	return err
}
