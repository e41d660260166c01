/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"path/filepath"
	"slices"
	"strings"

	"bennypowers.dev/cjsresolve/manifest"
)

// maxManifestSearchDepth bounds the upward walk for a package's manifest.
const maxManifestSearchDepth = 16

// locateModuleDirectory finds the directory of package name. Absolute module
// directories are searched first. Then, for every search base (the package
// roots enclosing fromDir, innermost first, followed by the configured
// roots), each relative module directory is tried in order.
func (r *run) locateModuleDirectory(name, fromDir string) (string, error) {
	for _, moduleDir := range r.cfg.ModuleDirectories {
		if !filepath.IsAbs(moduleDir) {
			continue
		}
		candidate := filepath.Join(moduleDir, filepath.FromSlash(name))
		ok, err := r.isDir(candidate)
		if err != nil {
			return "", err
		}
		if ok {
			return candidate, nil
		}
	}

	for _, base := range r.searchBases(fromDir) {
		for _, moduleDir := range r.cfg.ModuleDirectories {
			if filepath.IsAbs(moduleDir) {
				continue
			}
			candidate := filepath.Join(base, moduleDir, filepath.FromSlash(name))
			ok, err := r.isDir(candidate)
			if err != nil {
				return "", err
			}
			if ok {
				return candidate, nil
			}
		}
	}

	return "", errNotFound
}

// searchBases lists the package roots enclosing dir, each followed by the
// directory that owns its module directory, then the configured roots.
// For /p/node_modules/a/node_modules/b/lib that is
// /p/node_modules/a/node_modules/b, /p/node_modules/a, /p, then the roots.
func (r *run) searchBases(dir string) []string {
	var bases []string
	add := func(p string) {
		if p != "" && !slices.Contains(bases, p) {
			bases = append(bases, p)
		}
	}

	for current := dir; ; {
		root, _ := PackageRoot(current, r.cfg.ModuleDirectories)
		if root == "" {
			break
		}
		add(root)
		owner := ownerOf(root, r.cfg.ModuleDirectories)
		if owner == "" || owner == current {
			break
		}
		add(owner)
		current = owner
	}

	for _, root := range r.cfg.Roots {
		add(root)
	}
	return bases
}

// PackageRoot returns the root directory and name of the package containing
// path: the path up through the last module directory segment plus the
// package name that follows it (two segments for @scope/name). It returns
// empty strings when path is not inside a module directory.
func PackageRoot(path string, moduleDirectories []string) (root, name string) {
	path = filepath.Clean(path)

	for _, moduleDir := range moduleDirectories {
		if !filepath.IsAbs(moduleDir) {
			continue
		}
		rel, err := filepath.Rel(filepath.Clean(moduleDir), path)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		segments := strings.Split(filepath.ToSlash(rel), "/")
		n := packageNameLength(segments)
		if n == 0 {
			continue
		}
		name = strings.Join(segments[:n], "/")
		return filepath.Join(moduleDir, filepath.FromSlash(name)), name
	}

	segments := strings.Split(filepath.ToSlash(path), "/")
	for i := len(segments) - 2; i >= 0; i-- {
		if !slices.Contains(moduleDirectories, segments[i]) {
			continue
		}
		n := packageNameLength(segments[i+1:])
		if n == 0 {
			return "", ""
		}
		end := i + 1 + n
		root = strings.Join(segments[:end], "/")
		if root == "" {
			root = "/"
		}
		return filepath.FromSlash(root), strings.Join(segments[i+1:end], "/")
	}
	return "", ""
}

// packageNameLength returns how many leading segments form a package name.
func packageNameLength(segments []string) int {
	if len(segments) == 0 || segments[0] == "" {
		return 0
	}
	if strings.HasPrefix(segments[0], "@") && len(segments) > 1 {
		return 2
	}
	return 1
}

// ownerOf returns the directory containing the module directory that holds
// the package rooted at root.
func ownerOf(root string, moduleDirectories []string) string {
	dir := filepath.Dir(root)
	if strings.HasPrefix(filepath.Base(dir), "@") {
		dir = filepath.Dir(dir)
	}
	if !slices.Contains(moduleDirectories, filepath.Base(dir)) {
		return ""
	}
	return filepath.Dir(dir)
}

// manifestRoot walks upward from dir for the nearest directory that holds a
// package.json or a module directory. It stops at a module directory
// boundary and after maxManifestSearchDepth levels, returning "".
func (r *run) manifestRoot(dir string) (string, error) {
	for range maxManifestSearchDepth {
		if r.cfg.IsModuleDirectory(filepath.Base(dir)) {
			return "", nil
		}

		ok, err := r.isFile(filepath.Join(dir, manifest.FileName))
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}

		for _, moduleDir := range r.cfg.ModuleDirectories {
			if filepath.IsAbs(moduleDir) {
				continue
			}
			ok, err := r.isDir(filepath.Join(dir, moduleDir))
			if err != nil {
				return "", err
			}
			if ok {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", nil
}
