/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package manifest reads package.json files and selects package entry points.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"bennypowers.dev/cjsresolve/fs"
)

// FileName is the manifest file looked up in every package directory.
const FileName = "package.json"

// ErrCorrupt indicates a manifest exists but is not a JSON object.
var ErrCorrupt = errors.New("corrupt manifest")

// Manifest is a parsed package.json. Manifests are untrusted input, so fields
// are read through the typed accessors rather than a fixed schema.
type Manifest map[string]any

// String returns the value of key when it is present and a string.
func (m Manifest) String(key string) (string, bool) {
	s, ok := m[key].(string)
	return s, ok
}

// Object returns the value of key when it is present and a JSON object.
func (m Manifest) Object(key string) (map[string]any, bool) {
	obj, ok := m[key].(map[string]any)
	return obj, ok
}

// CorruptError reports a manifest that was read but failed to parse.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("error reading manifest file at %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying parse error.
func (e *CorruptError) Unwrap() error { return e.Err }

// Is matches ErrCorrupt.
func (e *CorruptError) Is(target error) bool { return target == ErrCorrupt }

// Parse decodes manifest bytes. A document that is not a JSON object is corrupt.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errors.New("manifest is not a JSON object")
	}
	return m, nil
}

// Read loads the manifest in dir. It returns (nil, nil) when the file cannot
// be read, and a *CorruptError when it is read but does not parse.
func Read(filesystem fs.FileSystem, dir string) (Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := filesystem.ReadFile(path)
	if err != nil {
		return nil, nil
	}
	m, err := Parse(data)
	if err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return m, nil
}
