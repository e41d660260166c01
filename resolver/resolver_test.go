/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver_test

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bennypowers.dev/cjsresolve/config"
	"bennypowers.dev/cjsresolve/internal/mapfs"
	"bennypowers.dev/cjsresolve/manifest"
	"bennypowers.dev/cjsresolve/resolver"
	"bennypowers.dev/cjsresolve/specifier"
	"bennypowers.dev/cjsresolve/testutil"
)

func basicFS(t *testing.T) *mapfs.MapFileSystem {
	t.Helper()
	return testutil.NewFixtureFS(t, "fixtures/resolve/basic", "/proj")
}

func basicOptions(mfs *mapfs.MapFileSystem) *config.Options {
	return &config.Options{FS: mfs, Roots: []string{"/proj"}}
}

func TestResolve(t *testing.T) {
	mfs := basicFS(t)
	r := resolver.New(basicOptions(mfs))

	tests := []struct {
		name    string
		request string
		parent  string
		want    string
	}{
		{"sibling file", "./sibling", "/proj/src/main.js", "/proj/src/sibling.js"},
		{"parent-relative file", "../request", "/proj/src/main.js", "/proj/request.js"},
		{"existing absolute file", "/proj/src/sibling.js", "/elsewhere/index.js", "/proj/src/sibling.js"},
		{"extension before directory", "./magic", "/proj/index.js", "/proj/magic.js"},
		{"trailing slash selects directory", "./magic/", "/proj/index.js", "/proj/magic/index.js"},
		{"extension precedence", "./request", "/proj/index.js", "/proj/request.js"},
		{"bare module index.json", "cool_module", "/proj/index.js", "/proj/node_modules/cool_module/index.json"},
		{"main with extension appended", "/proj/pkg-main", "/proj/index.js", "/proj/pkg-main/lib/foo.js"},
		{"main of dot", "/proj/pkg-dot", "/proj/index.js", "/proj/pkg-dot/index.js"},
		{"no manifest", "./no-manifest", "/proj/index.js", "/proj/no-manifest/index.js"},
		{"manifest without main", "./manifest-no-main", "/proj/index.js", "/proj/manifest-no-main/index.js"},
		{"missing first main falls through", "./fallthrough", "/proj/index.js", "/proj/fallthrough/real.js"},
		{"main pointing at another package", "./hop", "/proj/index.js", "/proj/pkg-main/lib/foo.js"},
		{"directory request of current dir", ".", "/proj/magic/other.js", "/proj/magic/index.js"},
		{"directory request of parent dir", "..", "/proj/pkg-main/lib/foo.js", "/proj/pkg-main/lib/foo.js"},
		{"built-in", "fs", "/proj/index.js", "fs"},
		{"prefixed built-in", "node:path", "/proj/index.js", "node:path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.request, tt.parent)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolve_BuiltInsDoNotProbe(t *testing.T) {
	mfs := basicFS(t)
	r := resolver.New(basicOptions(mfs))

	for _, name := range []string{"fs", "http", "fs/promises", "node:fs", "child_process"} {
		got, err := r.Resolve(context.Background(), name, "/proj/index.js")
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
	assert.Zero(t, mfs.Probes(), "built-ins must not touch the filesystem")
}

func TestResolve_Idempotent(t *testing.T) {
	mfs := basicFS(t)
	configs := []*config.Options{
		{FS: mfs, Roots: []string{"/proj"}},
		{FS: mfs, Roots: []string{"/proj"}, Extensions: []string{".ts"}},
		{FS: mfs, Roots: []string{"/proj"}, PackageMains: []string{"module"}},
		{FS: mfs, Roots: []string{"/proj"}, Extensions: []string{}, PackageMains: []string{}},
	}
	files := []string{
		"/proj/request.json",
		"/proj/pkg-main/lib/foo.js",
		"/proj/node_modules/cool_module/index.json",
	}

	for _, opts := range configs {
		for _, file := range files {
			got, err := resolver.Resolve(context.Background(), file, "/anywhere/index.js", opts)
			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(file), got)

			again, err := resolver.Resolve(context.Background(), got, "/anywhere/index.js", opts)
			require.NoError(t, err)
			assert.Equal(t, got, again)
		}
	}
}

func TestResolve_ExtensionOrder(t *testing.T) {
	mfs := basicFS(t)
	opts := basicOptions(mfs)
	opts.Extensions = []string{".json", ".js"}

	got, err := resolver.Resolve(context.Background(), "./request", "/proj/index.js", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/proj/request.json"), got)
}

func TestResolve_TrailingSeparatorRequiresDirectory(t *testing.T) {
	mfs := basicFS(t)
	r := resolver.New(basicOptions(mfs))

	for _, request := range []string{"./src/sibling.js/", "./request/", "/proj/magic.js/"} {
		t.Run(request, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), request, "/proj/index.js")
			require.Error(t, err)
			assert.ErrorIs(t, err, resolver.ErrModuleNotFound)
		})
	}
}

func TestResolve_NotFound(t *testing.T) {
	mfs := basicFS(t)
	r := resolver.New(basicOptions(mfs))

	_, err := r.Resolve(context.Background(), "missing-module/lib", "/proj/index.js")
	require.Error(t, err)
	assert.ErrorIs(t, err, resolver.ErrModuleNotFound)
	assert.EqualError(t, err, "cannot find module 'missing-module/lib'")

	var notFound *resolver.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "missing-module/lib", notFound.Request)
	assert.Equal(t, "/proj/index.js", notFound.Parent)
	assert.Equal(t, resolver.NotFoundCode, notFound.Code())
	assert.Contains(t, notFound.Probed, filepath.FromSlash("/proj/node_modules/missing-module"))
}

func TestResolve_NotFoundKeepsOriginalRequest(t *testing.T) {
	mfs := basicFS(t)
	opts := basicOptions(mfs)
	opts.Alias = map[string]config.Alias{"pretty": config.AliasTo("./does/not/exist")}

	_, err := resolver.Resolve(context.Background(), "pretty", "/proj/index.js", opts)

	var notFound *resolver.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "pretty", notFound.Request)
	assert.Contains(t, notFound.Probed, filepath.FromSlash("/proj/does/not/exist.js"))
}

func TestResolve_Alias(t *testing.T) {
	mfs := basicFS(t)
	opts := basicOptions(mfs)
	opts.Alias = map[string]config.Alias{
		"fs":      config.AliasTo("http"),
		"sibling": config.AliasTo("./src/sibling"),
		"cool":    config.AliasTo("cool_module"),
		"ws":      config.AliasEmpty(),
		"http":    config.AliasTo("./never-applied"),
	}
	r := resolver.New(opts)

	tests := []struct {
		request string
		want    string
	}{
		{"fs", "http"},
		{"http", "/proj/never-applied"},
		{"sibling", "/proj/src/sibling.js"},
		{"cool", "/proj/node_modules/cool_module/index.json"},
		{"ws", resolver.EmptyModule},
	}

	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			got, err := r.Resolve(context.Background(), tt.request, "/proj/index.js")
			if tt.request == "http" {
				// aliased to a local path that does not exist
				assert.ErrorIs(t, err, resolver.ErrModuleNotFound)
				return
			}
			require.NoError(t, err)
			if tt.want == resolver.EmptyModule || !filepath.IsAbs(tt.want) {
				assert.Equal(t, tt.want, got)
				return
			}
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}

func TestResolve_CustomEmptyModule(t *testing.T) {
	mfs := basicFS(t)
	opts := basicOptions(mfs)
	opts.Alias = map[string]config.Alias{"ws": config.AliasEmpty()}
	opts.EmptyModule = "/proj/empty.js"

	got, err := resolver.Resolve(context.Background(), "ws", "/proj/index.js", opts)
	require.NoError(t, err)
	assert.Equal(t, "/proj/empty.js", got)
	assert.Zero(t, mfs.Probes())
}

func TestResolve_Processor(t *testing.T) {
	mfs := basicFS(t)

	t.Run("default uses main", func(t *testing.T) {
		got, err := resolver.Resolve(context.Background(), "./pkg-process", "/proj/index.js", basicOptions(mfs))
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/proj/pkg-process/cjs.js"), got)
	})

	t.Run("package mains", func(t *testing.T) {
		opts := basicOptions(mfs)
		opts.PackageMains = []string{"module", "main"}
		got, err := resolver.Resolve(context.Background(), "./pkg-process", "/proj/index.js", opts)
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/proj/pkg-process/esm.js"), got)
	})

	t.Run("custom processor", func(t *testing.T) {
		var dirs []string
		opts := basicOptions(mfs)
		opts.Processor = manifest.ProcessorFunc(func(m manifest.Manifest, dir string) []string {
			dirs = append(dirs, dir)
			if name, ok := m.String("name"); ok && name == "pkg-process" {
				return []string{"./esm"}
			}
			return nil
		})
		got, err := resolver.Resolve(context.Background(), "./pkg-process", "/proj/index.js", opts)
		require.NoError(t, err)
		assert.Equal(t, filepath.FromSlash("/proj/pkg-process/esm.js"), got)
		assert.Equal(t, []string{filepath.FromSlash("/proj/pkg-process")}, dirs)
	})
}

func TestResolve_MaxDepth(t *testing.T) {
	mfs := basicFS(t)
	opts := basicOptions(mfs)
	opts.MaxDepth = 1

	_, err := resolver.Resolve(context.Background(), "./hop", "/proj/index.js", opts)
	assert.ErrorIs(t, err, resolver.ErrModuleNotFound)

	got, err := resolver.Resolve(context.Background(), "./pkg-main", "/proj/index.js", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/proj/pkg-main/lib/foo.js"), got)
}

func TestResolve_ManifestCycle(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "fixtures/resolve/cycle", "/proj")
	r := resolver.New(&config.Options{FS: mfs, Roots: []string{"/proj"}})

	for _, request := range []string{"./ping", "./pong", "./self"} {
		t.Run(request, func(t *testing.T) {
			_, err := r.Resolve(context.Background(), request, "/proj/index.js")
			assert.ErrorIs(t, err, resolver.ErrModuleNotFound)
		})
	}
}

func TestResolve_CorruptManifest(t *testing.T) {
	mfs := testutil.NewFixtureFS(t, "fixtures/resolve/corrupt", "/proj")
	r := resolver.New(&config.Options{FS: mfs, Roots: []string{"/proj"}})

	_, err := r.Resolve(context.Background(), "broken", "/proj/index.js")
	require.Error(t, err)
	assert.ErrorIs(t, err, resolver.ErrCorruptManifest)
	assert.NotErrorIs(t, err, resolver.ErrModuleNotFound)

	var corrupt *resolver.CorruptManifestError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, filepath.FromSlash("/proj/node_modules/broken/package.json"), corrupt.Path)
}

func TestResolve_UnreadableManifestIsAbsent(t *testing.T) {
	mfs := basicFS(t)
	opts := basicOptions(mfs)
	opts.ReadFile = func(name string) ([]byte, error) {
		return nil, &fs.PathError{Op: "read", Path: name, Err: fs.ErrPermission}
	}

	got, err := resolver.Resolve(context.Background(), "./pkg-main", "/proj/index.js", opts)
	require.Error(t, err, "pkg-main has no index file, so an unreadable manifest leaves nothing to resolve")
	assert.ErrorIs(t, err, resolver.ErrModuleNotFound)
	assert.Empty(t, got)

	got, err = resolver.Resolve(context.Background(), "./manifest-no-main", "/proj/index.js", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/proj/manifest-no-main/index.js"), got)
}

func TestResolve_StatOverride(t *testing.T) {
	mfs := basicFS(t)
	var stats int
	opts := basicOptions(mfs)
	opts.Stat = func(name string) (fs.FileInfo, error) {
		stats++
		return mfs.Stat(name)
	}

	got, err := resolver.Resolve(context.Background(), "./src/sibling", "/proj/index.js", opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.FromSlash("/proj/src/sibling.js"), got)
	assert.Positive(t, stats)
}

func TestResolve_ContextCanceled(t *testing.T) {
	mfs := basicFS(t)
	r := resolver.New(basicOptions(mfs))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Resolve(ctx, "./src/sibling", "/proj/index.js")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.Is(err, resolver.ErrModuleNotFound))
	assert.Zero(t, mfs.Probes())

	got, err := r.Resolve(ctx, "fs", "/proj/index.js")
	require.NoError(t, err, "built-ins never reach the filesystem boundary")
	assert.Equal(t, "fs", got)
}

func TestClassify(t *testing.T) {
	r := resolver.New(&config.Options{
		FS:    mapfs.New(),
		Alias: map[string]config.Alias{"fs": config.AliasTo("./fs-shim"), "ws": config.AliasEmpty()},
	})

	tests := []struct {
		request string
		kind    specifier.Kind
		pkg     string
	}{
		{"fs", specifier.KindLocal, ""},
		{"http", specifier.KindBuiltIn, ""},
		{"/abs/file.js", specifier.KindAbsolute, ""},
		{"lodash/fp", specifier.KindBare, "lodash"},
		{"ws", specifier.KindAbsolute, ""},
	}
	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			spec := r.Classify(tt.request)
			assert.Equal(t, tt.kind, spec.Kind)
			assert.Equal(t, tt.pkg, spec.Package)
		})
	}
}

func TestResolve_OSFileSystem(t *testing.T) {
	dir := testutil.FixturePath(t, "fixtures/resolve/basic")
	opts := &config.Options{Root: dir}
	parent := filepath.Join(dir, "index.js")

	tests := []struct {
		request string
		want    string
	}{
		{"./src/sibling", filepath.Join(dir, "src", "sibling.js")},
		{"cool_module", filepath.Join(dir, "node_modules", "cool_module", "index.json")},
		{"./pkg-main", filepath.Join(dir, "pkg-main", "lib", "foo.js")},
		{"./magic/", filepath.Join(dir, "magic", "index.js")},
	}
	for _, tt := range tests {
		t.Run(tt.request, func(t *testing.T) {
			got, err := resolver.Resolve(context.Background(), tt.request, parent, opts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsLocalAndIsBuiltIn(t *testing.T) {
	assert.True(t, resolver.IsLocal("./x"))
	assert.False(t, resolver.IsLocal("motion-fs/."))
	assert.True(t, resolver.IsBuiltIn("fs"))
	assert.False(t, resolver.IsBuiltIn("lodash"))
}
