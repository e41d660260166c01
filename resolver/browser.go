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

	"bennypowers.dev/cjsresolve/internal/logger"
	"bennypowers.dev/cjsresolve/manifest"
	"bennypowers.dev/cjsresolve/specifier"
)

// remap applies the browser-field replacement for candidate, if any. The
// mapping objects are the object-valued PackageMains fields of a manifest.
// When the candidate lies in the same package as that manifest, its own
// files are remapped by path; otherwise the candidate is a dependency and is
// remapped by request or package name.
//
// A bare request is first looked up in the requesting package's manifest.
// When that finds nothing, the candidate's nearest manifest is consulted, so
// a dependency's map also applies to subpaths required from outside it.
//
// At most one substitution happens per resolution.
func (r *run) remap(candidate string) (string, error) {
	anchor, bare := r.anchor, r.bare
	r.anchor, r.bare = "", ""
	if r.remapped {
		return candidate, nil
	}

	if anchor != "" {
		replaced, ok, err := r.remapFrom(anchor, candidate, bare)
		if err != nil || ok {
			return replaced, err
		}
	}

	root, err := r.manifestRoot(filepath.Dir(candidate))
	if err != nil || root == "" || root == anchor {
		return candidate, err
	}
	replaced, _, err := r.remapFrom(root, candidate, "")
	return replaced, err
}

// remapFrom looks candidate up in the manifest at root. It returns the
// candidate unchanged and false when no substitution applies.
func (r *run) remapFrom(root, candidate, bare string) (string, bool, error) {
	m, err := r.readManifest(root)
	if err != nil || m == nil {
		return candidate, false, err
	}
	mappings := manifest.Mappings(m, r.cfg.PackageMains)
	if len(mappings) == 0 {
		return candidate, false, nil
	}

	var value any
	var found bool
	pkgRoot, pkgName := PackageRoot(candidate, r.cfg.ModuleDirectories)
	if pkgRoot == "" || pkgRoot == root {
		value, found = r.fileMapping(mappings, root, candidate)
	} else {
		value, found = packageMapping(mappings, bare, pkgName)
	}
	if !found {
		return candidate, false, nil
	}

	replacement, ok, err := r.replacement(value, root)
	if err != nil || !ok {
		return candidate, false, err
	}
	r.remapped = true
	logger.Debug("browser field in %s maps %s to %s", root, candidate, replacement)
	return replacement, true, nil
}

// fileMapping finds the mapping for one of the package's own files. Keys
// must start with "./", "../" or "/" and are resolved against root. An exact
// match wins over a match that differs by a configured extension.
func (r *run) fileMapping(mappings []map[string]any, root, candidate string) (any, bool) {
	type entry struct {
		path  string
		value any
	}
	var entries []entry
	for _, mapping := range mappings {
		keys := make([]string, 0, len(mapping))
		for key := range mapping {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		for _, key := range keys {
			if !isFileKey(key) {
				continue
			}
			entries = append(entries, entry{path: join(root, key), value: mapping[key]})
		}
	}

	for _, e := range entries {
		if e.path == candidate {
			return e.value, true
		}
	}
	for _, e := range entries {
		for _, ext := range r.cfg.Extensions {
			if ext == "" {
				continue
			}
			if e.path == candidate+ext || e.path+ext == candidate {
				return e.value, true
			}
		}
	}
	return nil, false
}

// packageMapping finds the mapping for a dependency, keyed first by the full
// request and then by its package name.
func packageMapping(mappings []map[string]any, request, pkgName string) (any, bool) {
	var keys []string
	for _, key := range []string{request, pkgName} {
		if key != "" && !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	for _, mapping := range mappings {
		for _, key := range keys {
			if value, ok := mapping[key]; ok {
				return value, true
			}
		}
	}
	return nil, false
}

// replacement turns a mapping value into the next candidate. False selects
// the empty module; strings are joined to root, or located as a module when
// bare. Any other value is ignored.
func (r *run) replacement(value any, root string) (string, bool, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return "", false, nil
		}
		return r.cfg.EmptyModule, true, nil
	case string:
		if v == "" {
			return "", false, nil
		}
		spec := specifier.Parse(v)
		switch spec.Kind {
		case specifier.KindAbsolute:
			return filepath.Clean(v), true, nil
		case specifier.KindLocal:
			return join(root, v), true, nil
		case specifier.KindBuiltIn:
			// built-in targets have no file to substitute
			return "", false, nil
		}
		dir, err := r.locateModuleDirectory(spec.Package, root)
		if err != nil {
			return "", false, err
		}
		if spec.Subpath != "" {
			dir = filepath.Join(dir, filepath.FromSlash(spec.Subpath))
		}
		return dir, true, nil
	default:
		return "", false, nil
	}
}

func isFileKey(key string) bool {
	return strings.HasPrefix(key, "./") || strings.HasPrefix(key, "../") || strings.HasPrefix(key, "/")
}
