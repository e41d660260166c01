/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package resolver implements Node.js require() resolution: file extensions,
// directory index files, package.json entry points, module directory lookup,
// browser-field remapping and user aliases.
package resolver

import (
	"context"
	"errors"
	"path/filepath"

	"bennypowers.dev/cjsresolve/config"
	"bennypowers.dev/cjsresolve/internal/logger"
	"bennypowers.dev/cjsresolve/specifier"
)

// EmptyModule is the default path returned for requests mapped to false.
const EmptyModule = config.EmptyModule

// Resolver resolves requests against a normalized configuration.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	cfg *config.Config
}

// New creates a Resolver. A nil opts selects every default.
func New(opts *config.Options) *Resolver {
	return &Resolver{cfg: config.Normalize(opts)}
}

// Config returns the normalized configuration. Callers must not modify it.
func (r *Resolver) Config() *config.Config {
	return r.cfg
}

// Resolve is a convenience for New(opts).Resolve(ctx, request, parentFile).
func Resolve(ctx context.Context, request, parentFile string, opts *config.Options) (string, error) {
	return New(opts).Resolve(ctx, request, parentFile)
}

// IsLocal reports whether request is relative to the requesting file.
func IsLocal(request string) bool {
	return specifier.IsLocal(request)
}

// IsBuiltIn reports whether request names a platform module.
func IsBuiltIn(request string) bool {
	return specifier.IsBuiltIn(request)
}

// Classify applies aliasing and classifies the resulting request.
// A request aliased to false classifies as the empty module path.
func (r *Resolver) Classify(request string) *specifier.Specifier {
	target, empty := r.alias(request)
	if empty {
		return &specifier.Specifier{Kind: specifier.KindAbsolute, Raw: r.cfg.EmptyModule}
	}
	return specifier.Parse(target)
}

// Resolve returns the file that request refers to when issued from
// parentFile. Built-in modules are returned unchanged without touching the
// filesystem. A request aliased or browser-mapped to false returns the
// configured EmptyModule, which is the one result that need not name an
// existing file. Failures are a *NotFoundError, a *CorruptManifestError, or the
// context's error.
func (r *Resolver) Resolve(ctx context.Context, request, parentFile string) (string, error) {
	target, empty := r.alias(request)
	if empty {
		return r.cfg.EmptyModule, nil
	}

	spec := specifier.Parse(target)
	if spec.Kind == specifier.KindBuiltIn {
		return target, nil
	}

	run := newRun(ctx, r.cfg, request, parentFile)
	dirOnly := specifier.IsDirectoryRequest(target)
	parentDir := absolute(filepath.Dir(parentFile))

	var resolved string
	var err error
	switch spec.Kind {
	case specifier.KindAbsolute:
		resolved, err = run.resolveFile(filepath.Clean(target), dirOnly, 0)
	case specifier.KindLocal:
		resolved, err = run.resolveFile(filepath.Join(parentDir, target), dirOnly, 0)
	default:
		resolved, err = run.resolveBare(spec, parentDir, dirOnly)
	}

	if err != nil {
		if errors.Is(err, errNotFound) {
			logger.Debug("cannot find module '%s' from %s", request, parentFile)
			return "", newNotFoundError(request, parentFile, run.probed)
		}
		return "", err
	}
	logger.Debug("resolved '%s' to %s", request, resolved)
	return resolved, nil
}

// alias applies a single alias substitution. Alias targets are not
// themselves re-aliased.
func (r *Resolver) alias(request string) (target string, empty bool) {
	alias, ok := r.cfg.Alias[request]
	if !ok {
		return request, false
	}
	if alias.Empty {
		return "", true
	}
	return alias.Target, false
}

func absolute(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return p
	}
	return abs
}
