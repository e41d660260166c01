/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package resolve provides the resolve command for cjsresolve.
package resolve

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"bennypowers.dev/cjsresolve/internal/settings"
	"bennypowers.dev/cjsresolve/resolver"
)

// Cmd is the resolve cobra command.
var Cmd = &cobra.Command{
	Use:   "resolve <request>",
	Short: "Resolve a require() request to a file",
	Long: `Resolve a require() request the way Node.js does, starting from the requesting file.

Examples:
  # Resolve a package from the project root
  cjsresolve resolve lodash

  # Resolve a relative request from a specific file
  cjsresolve resolve ./util --from src/index.js

  # Resolve with browser-field remapping disabled
  cjsresolve resolve ws --main main

  # Show the kind and every probed path
  cjsresolve resolve ./missing --explain`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	settings.AddFlags(Cmd)
	Cmd.Flags().String("from", "", "Requesting file, relative to --dir (default: <dir>/index.js)")
	Cmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	Cmd.Flags().Bool("explain", false, "Print the request kind and probed paths")
}

// Result is the outcome of one resolution.
type Result struct {
	Request string   `json:"request"`
	Parent  string   `json:"parent"`
	Kind    string   `json:"kind"`
	Path    string   `json:"path,omitempty"`
	Empty   bool     `json:"empty,omitempty"`
	Error   string   `json:"error,omitempty"`
	Probed  []string `json:"probed,omitempty"`
}

func run(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	from, _ := cmd.Flags().GetString("from")
	explain, _ := cmd.Flags().GetBool("explain")

	s, err := settings.Load(cmd)
	if err != nil {
		return err
	}

	from = Parent(s.Dir, from)

	r := resolver.New(s.Options)
	result, resolveErr := Resolve(cmd.Context(), r, args[0], from)

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		if err := writeJSON(out, result); err != nil {
			return err
		}
	default:
		if resolveErr == nil || explain {
			if err := writeText(out, result, explain); err != nil {
				return err
			}
		}
	}
	return resolveErr
}

// Parent returns the requesting file for from. An empty from is dir/index.js
// and a relative one is taken from dir.
func Parent(dir, from string) string {
	switch {
	case from == "":
		return filepath.Join(dir, "index.js")
	case filepath.IsAbs(from):
		return filepath.Clean(from)
	default:
		return filepath.Join(dir, from)
	}
}

// Resolve resolves request from the parent file and describes the outcome.
func Resolve(ctx context.Context, r *resolver.Resolver, request, parent string) (Result, error) {
	result := Result{
		Request: request,
		Parent:  parent,
		Kind:    r.Classify(request).Kind.String(),
	}

	path, err := r.Resolve(ctx, request, parent)
	if err != nil {
		result.Error = err.Error()
		var notFound *resolver.NotFoundError
		if errors.As(err, &notFound) {
			result.Probed = notFound.Probed
		}
		return result, err
	}

	if path == r.Config().EmptyModule {
		result.Empty = true
		return result, nil
	}
	result.Path = path
	return result, nil
}

func writeJSON(w io.Writer, result Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func writeText(w io.Writer, result Result, explain bool) error {
	path := result.Path
	if result.Empty {
		path = "(empty module)"
	}
	if !explain {
		_, err := fmt.Fprintln(w, path)
		return err
	}

	title := cases.Title(language.English)
	fmt.Fprintf(w, "%-8s %s\n", "Request:", result.Request)
	fmt.Fprintf(w, "%-8s %s\n", "Parent:", result.Parent)
	fmt.Fprintf(w, "%-8s %s\n", "Kind:", title.String(result.Kind))
	if result.Error != "" {
		fmt.Fprintf(w, "%-8s %s\n", "Error:", result.Error)
	} else {
		fmt.Fprintf(w, "%-8s %s\n", "Path:", path)
	}
	for _, probe := range result.Probed {
		fmt.Fprintf(w, "  probed %s\n", probe)
	}
	return nil
}
