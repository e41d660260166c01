/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package mcp provides the mcp command, which serves resolution as a Model
// Context Protocol tool over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"bennypowers.dev/cjsresolve/cmd/resolve"
	"bennypowers.dev/cjsresolve/internal/logger"
	"bennypowers.dev/cjsresolve/internal/settings"
	"bennypowers.dev/cjsresolve/internal/version"
	"bennypowers.dev/cjsresolve/resolver"
)

// ToolName is the name of the resolution tool.
const ToolName = "resolve"

// Cmd is the mcp cobra command.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve require() resolution over the Model Context Protocol",
	Long: `Run an MCP server on stdin/stdout exposing a "resolve" tool.

The resolution flags and the config file in --dir apply to every call.`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	settings.AddFlags(Cmd)
}

// Input is the argument of the resolve tool.
type Input struct {
	Request string `json:"request" jsonschema:"the require() request, e.g. lodash/fp or ./util"`
	From    string `json:"from,omitempty" jsonschema:"the requesting file; relative paths are taken from the project directory"`
}

// Output is the result of the resolve tool.
type Output struct {
	Path  string `json:"path,omitempty" jsonschema:"absolute path of the resolved file, or the built-in module name"`
	Kind  string `json:"kind" jsonschema:"request kind: bare, builtin, absolute or local"`
	Empty bool   `json:"empty,omitempty" jsonschema:"true when the request is mapped to an empty module"`
}

func run(cmd *cobra.Command, _ []string) error {
	s, err := settings.Load(cmd)
	if err != nil {
		return err
	}
	server := NewServer(resolver.New(s.Options), s.Dir)
	logger.Info("serving MCP on stdio for %s", s.Dir)
	return server.Run(cmd.Context(), &mcp.StdioTransport{})
}

// NewServer creates an MCP server whose resolve tool uses r. Relative
// requesting files are joined to dir.
func NewServer(r *resolver.Resolver, dir string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "cjsresolve",
		Version: version.Get(),
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolName,
		Description: "Resolve a CommonJS require() request to a file using Node.js resolution rules",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in Input) (*mcp.CallToolResult, Output, error) {
		return handle(ctx, r, dir, in)
	})

	return server
}

func handle(ctx context.Context, r *resolver.Resolver, dir string, in Input) (*mcp.CallToolResult, Output, error) {
	if in.Request == "" {
		return nil, Output{}, errors.New("request is required")
	}
	from := resolve.Parent(dir, in.From)

	out := Output{Kind: r.Classify(in.Request).Kind.String()}
	path, err := r.Resolve(ctx, in.Request, from)
	if err != nil {
		var notFound *resolver.NotFoundError
		if errors.As(err, &notFound) {
			return nil, Output{}, fmt.Errorf("%w (probed %d paths)", err, len(notFound.Probed))
		}
		return nil, Output{}, err
	}
	if path == r.Config().EmptyModule {
		out.Empty = true
		return nil, out, nil
	}
	out.Path = path
	return nil, out, nil
}
