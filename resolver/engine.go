/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"

	"bennypowers.dev/cjsresolve/config"
	"bennypowers.dev/cjsresolve/internal/logger"
	"bennypowers.dev/cjsresolve/manifest"
	"bennypowers.dev/cjsresolve/specifier"
)

// run is the state of a single top-level resolution. Probes are issued one
// at a time because each decision depends on the previous result.
type run struct {
	ctx     context.Context
	cfg     *config.Config
	request string
	parent  string
	probed  []string

	// anchor and bare seed the first browser-field lookup of a bare request:
	// the requesting package's manifest directory and the request itself.
	anchor string
	bare   string

	// remapped is set once a browser-field substitution has happened.
	remapped bool

	// visiting holds the directories on the current entry-point chain.
	visiting map[string]bool
}

func newRun(ctx context.Context, cfg *config.Config, request, parent string) *run {
	return &run{
		ctx:      ctx,
		cfg:      cfg,
		request:  request,
		parent:   parent,
		visiting: make(map[string]bool),
	}
}

// stat probes path. It returns a nil FileInfo when the path does not exist;
// the only error is the context's.
func (r *run) stat(path string) (iofs.FileInfo, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	r.probed = append(r.probed, path)
	info, err := r.cfg.FS.Stat(path)
	if err != nil {
		logger.Debug("stat %s: not found", path)
		return nil, nil
	}
	logger.Debug("stat %s: dir=%t", path, info.IsDir())
	return info, nil
}

func (r *run) isFile(path string) (bool, error) {
	info, err := r.stat(path)
	return info != nil && !info.IsDir(), err
}

func (r *run) isDir(path string) (bool, error) {
	info, err := r.stat(path)
	return info != nil && info.IsDir(), err
}

// readManifest reads dir/package.json. A missing or unreadable manifest is
// (nil, nil); a manifest that does not parse is a *CorruptManifestError.
func (r *run) readManifest(dir string) (manifest.Manifest, error) {
	if err := r.ctx.Err(); err != nil {
		return nil, err
	}
	r.probed = append(r.probed, filepath.Join(dir, manifest.FileName))
	return manifest.Read(r.cfg.FS, dir)
}

// resolveFile resolves candidate as a file, then as a directory. When dirOnly
// is set the candidate must be a directory.
func (r *run) resolveFile(candidate string, dirOnly bool, depth int) (string, error) {
	if depth > r.cfg.MaxDepth {
		logger.Warn("giving up on '%s' after %d hops at %s", r.request, depth, candidate)
		return "", errNotFound
	}

	candidate, err := r.remap(candidate)
	if err != nil {
		return "", err
	}
	if candidate == r.cfg.EmptyModule {
		return candidate, nil
	}

	info, err := r.stat(candidate)
	if err != nil {
		return "", err
	}
	if info != nil && !info.IsDir() {
		if dirOnly {
			return "", errNotFound
		}
		return candidate, nil
	}

	if !dirOnly {
		resolved, err := r.resolveExtensions(candidate)
		if !errors.Is(err, errNotFound) {
			return resolved, err
		}
	}

	if info != nil && info.IsDir() {
		return r.resolveDirectory(candidate, depth)
	}
	return "", errNotFound
}

// resolveExtensions appends each configured extension to candidate in order
// and returns the first that names a file.
func (r *run) resolveExtensions(candidate string) (string, error) {
	for _, ext := range r.cfg.Extensions {
		if ext == "" {
			// the bare candidate was already probed
			continue
		}
		path := candidate + ext
		ok, err := r.isFile(path)
		if err != nil {
			return "", err
		}
		if ok {
			return path, nil
		}
	}
	return "", errNotFound
}

// resolveDirectory resolves dir through its manifest entry points, then
// through dir/index. Each entry point that fails falls through to the next.
func (r *run) resolveDirectory(dir string, depth int) (string, error) {
	if r.visiting[dir] {
		logger.Debug("skipping %s: already on the entry-point chain", dir)
		return "", errNotFound
	}
	r.visiting[dir] = true
	defer delete(r.visiting, dir)

	m, err := r.readManifest(dir)
	if err != nil {
		return "", err
	}

	if m != nil {
		for _, entry := range r.cfg.Processor.EntryPoints(m, dir) {
			entry = manifest.NormalizeEntry(entry)
			resolved, err := r.resolveFile(join(dir, entry), specifier.IsDirectoryRequest(entry), depth+1)
			if !errors.Is(err, errNotFound) {
				return resolved, err
			}
			logger.Debug("entry point %q of %s did not resolve", entry, dir)
		}
	}

	return r.resolveFile(filepath.Join(dir, "index"), false, depth+1)
}

// resolveBare locates the package directory of a bare request and resolves
// the request's subpath inside it.
func (r *run) resolveBare(spec *specifier.Specifier, fromDir string, dirOnly bool) (string, error) {
	if spec.Package == "" {
		return "", errNotFound
	}

	dir, err := r.locateModuleDirectory(spec.Package, fromDir)
	if err != nil {
		return "", err
	}

	anchor, err := r.manifestRoot(fromDir)
	if err != nil {
		return "", err
	}
	r.anchor = anchor
	r.bare = spec.Raw

	candidate := dir
	if spec.Subpath != "" {
		candidate = filepath.Join(dir, filepath.FromSlash(spec.Subpath))
	}
	return r.resolveFile(candidate, dirOnly, 0)
}

// join resolves p against dir. Absolute values of p are used as-is.
func join(dir, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(dir, filepath.FromSlash(p))
}
