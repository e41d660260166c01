/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package check provides the check command for cjsresolve.
package check

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"bennypowers.dev/cjsresolve/config"
	"bennypowers.dev/cjsresolve/internal/logger"
	"bennypowers.dev/cjsresolve/internal/settings"
	"bennypowers.dev/cjsresolve/resolver"
	"bennypowers.dev/cjsresolve/scan"
)

// ErrUnresolved is returned when at least one request could not be resolved.
var ErrUnresolved = errors.New("unresolved requests")

// Cmd is the check cobra command.
var Cmd = &cobra.Command{
	Use:   "check [globs...]",
	Short: "Check that every require() in a set of files resolves",
	Long: `Scan JavaScript files for require() calls with string arguments and resolve each one.

Globs are relative to --dir and support ** (doublestar syntax). Without
arguments, the "files" list from .config/cjsresolve.* is used.

Examples:
  cjsresolve check 'src/**/*.js'
  cjsresolve check --format json lib/*.cjs`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	settings.AddFlags(Cmd)
	Cmd.Flags().IntP("jobs", "j", runtime.NumCPU(), "Maximum concurrent resolutions")
	Cmd.Flags().StringP("format", "f", "text", "Output format: text, json")
	Cmd.Flags().Bool("all", false, "Report resolved requests too")
}

// Finding is the outcome of resolving one require() call site.
type Finding struct {
	File    string `json:"file"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Request string `json:"request"`
	Path    string `json:"path,omitempty"`
	Empty   bool   `json:"empty,omitempty"`
	Error   string `json:"error,omitempty"`
}

// OK reports whether the request resolved.
func (f Finding) OK() bool {
	return f.Error == ""
}

func run(cmd *cobra.Command, args []string) error {
	jobs, _ := cmd.Flags().GetInt("jobs")
	format, _ := cmd.Flags().GetString("format")
	all, _ := cmd.Flags().GetBool("all")

	s, err := settings.Load(cmd)
	if err != nil {
		return err
	}

	patterns := args
	if len(patterns) == 0 {
		patterns = s.File.Files
	}
	if len(patterns) == 0 {
		return fmt.Errorf("no files to check: pass globs or set \"files\" in %s", filepath.Join(config.ConfigDir, config.ConfigFileName+".yaml"))
	}

	files, err := config.ExpandFiles(os.DirFS(s.Dir), patterns)
	if err != nil {
		return err
	}
	logger.Info("checking %d files in %s", len(files), s.Dir)

	findings, err := Check(cmd.Context(), resolver.New(s.Options), s.Dir, files, jobs)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		err = writeJSON(out, findings, all)
	default:
		err = writeText(out, findings, all, len(files))
	}
	if err != nil {
		return err
	}

	if n := countUnresolved(findings); n > 0 {
		return fmt.Errorf("%w: %d", ErrUnresolved, n)
	}
	return nil
}

// Check scans files (slash-separated, relative to dir) and resolves every
// request found, at most jobs at a time. Findings are in file order, then
// source order. Resolution failures become findings; only cancellation and
// unreadable files are returned as errors.
func Check(ctx context.Context, r *resolver.Resolver, dir string, files []string, jobs int) ([]Finding, error) {
	scanner := scan.New()

	var findings []Finding
	for _, file := range files {
		path := filepath.Join(dir, filepath.FromSlash(file))
		src, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading %s: %w", file, err)
		}
		requires, err := scanner.Scan(src)
		if err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", file, err)
		}
		for _, req := range requires {
			findings = append(findings, Finding{
				File:    path,
				Line:    req.Line,
				Column:  req.Column,
				Request: req.Request,
			})
		}
	}

	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i := range findings {
		g.Go(func() error {
			f := &findings[i]
			resolved, err := r.Resolve(ctx, f.Request, f.File)
			switch {
			case err == nil && resolved == r.Config().EmptyModule:
				f.Empty = true
			case err == nil:
				f.Path = resolved
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return err
			default:
				f.Error = err.Error()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return findings, nil
}

func countUnresolved(findings []Finding) int {
	n := 0
	for _, f := range findings {
		if !f.OK() {
			n++
		}
	}
	return n
}

func writeText(w io.Writer, findings []Finding, all bool, files int) error {
	for _, f := range findings {
		switch {
		case !f.OK():
			fmt.Fprintf(w, "%s:%d:%d: %s\n", f.File, f.Line, f.Column, f.Error)
		case all && f.Empty:
			fmt.Fprintf(w, "%s:%d:%d: %s -> (empty module)\n", f.File, f.Line, f.Column, f.Request)
		case all:
			fmt.Fprintf(w, "%s:%d:%d: %s -> %s\n", f.File, f.Line, f.Column, f.Request, f.Path)
		}
	}
	_, err := fmt.Fprintf(w, "checked %d requests in %d files, %d unresolved\n",
		len(findings), files, countUnresolved(findings))
	return err
}

func writeJSON(w io.Writer, findings []Finding, all bool) error {
	output := make([]Finding, 0, len(findings))
	for _, f := range findings {
		if all || !f.OK() {
			output = append(output, f)
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}
