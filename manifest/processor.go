/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package manifest

// Processor selects the entry points a package declares, in priority order.
// Each entry is a path relative to the package directory. The resolver tries
// them in order and falls back to "./index" when none resolves.
type Processor interface {
	EntryPoints(m Manifest, dir string) []string
}

// ProcessorFunc adapts a function to the Processor interface.
type ProcessorFunc func(m Manifest, dir string) []string

// EntryPoints calls f.
func (f ProcessorFunc) EntryPoints(m Manifest, dir string) []string {
	return f(m, dir)
}

// MainFields is the default Processor. It returns the string value of each
// listed field that is present, in order. Non-string values (such as an
// object-valued "browser" field) are skipped.
type MainFields []string

// EntryPoints implements Processor.
func (fields MainFields) EntryPoints(m Manifest, _ string) []string {
	var entries []string
	for _, field := range fields {
		value, ok := m.String(field)
		if !ok || value == "" {
			continue
		}
		entries = append(entries, NormalizeEntry(value))
	}
	return entries
}

// Mappings returns the object-valued fields among fields, in order. These
// hold browser-style per-file or per-package replacements.
func Mappings(m Manifest, fields []string) []map[string]any {
	var maps []map[string]any
	for _, field := range fields {
		if obj, ok := m.Object(field); ok {
			maps = append(maps, obj)
		}
	}
	return maps
}

// NormalizeEntry maps the "." and "./" entry points to "./index".
func NormalizeEntry(entry string) string {
	if entry == "." || entry == "./" {
		return "./index"
	}
	return entry
}
