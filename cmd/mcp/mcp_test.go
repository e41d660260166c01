/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/cjsresolve/config"
	"bennypowers.dev/cjsresolve/resolver"
	"bennypowers.dev/cjsresolve/testutil"
)

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	mfs := testutil.NewFixtureFS(t, "fixtures/resolve/browser", "/app")
	r := resolver.New(&config.Options{FS: mfs, Roots: []string{"/app"}})
	server := NewServer(r, "/app")

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callResolve(t *testing.T, session *mcp.ClientSession, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolName,
		Arguments: args,
	})
	require.NoError(t, err)
	return result
}

func structured(t *testing.T, result *mcp.CallToolResult) Output {
	t.Helper()
	data, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out Output
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestResolveTool(t *testing.T) {
	session := connect(t)

	tests := []struct {
		name string
		args map[string]any
		want Output
	}{
		{"relative from", map[string]any{"request": "./lib/server", "from": "index.js"}, Output{Path: filepath.FromSlash("/app/lib/client.js"), Kind: "local"}},
		{"default from", map[string]any{"request": "request"}, Output{Path: filepath.FromSlash("/app/node_modules/xhr/index.js"), Kind: "bare"}},
		{"built-in", map[string]any{"request": "events"}, Output{Path: "events", Kind: "builtin"}},
		{"empty module", map[string]any{"request": "ws", "from": "/app/index.js"}, Output{Kind: "bare", Empty: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := callResolve(t, session, tt.args)
			require.False(t, result.IsError)
			assert.Equal(t, tt.want, structured(t, result))
		})
	}
}

func TestResolveTool_NotFound(t *testing.T) {
	session := connect(t)

	result := callResolve(t, session, map[string]any{"request": "left-pad"})
	assert.True(t, result.IsError)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	assert.Contains(t, text.Text, "cannot find module 'left-pad'")
}

func TestTools(t *testing.T) {
	session := connect(t)

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, ToolName, tools.Tools[0].Name)
}
