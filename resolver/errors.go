/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

package resolver

import (
	"errors"
	"fmt"
	"slices"

	"bennypowers.dev/cjsresolve/manifest"
)

// Sentinel errors for resolution.
var (
	// ErrModuleNotFound indicates the search space was exhausted.
	ErrModuleNotFound = errors.New("module not found")

	// ErrCorruptManifest indicates a package.json exists but does not parse.
	ErrCorruptManifest = manifest.ErrCorrupt
)

// CorruptManifestError names the manifest that failed to parse.
type CorruptManifestError = manifest.CorruptError

// NotFoundCode is the code Node.js reports for unresolvable requests.
const NotFoundCode = "MODULE_NOT_FOUND"

// errNotFound marks an exhausted branch inside the engine. It never escapes
// Resolve; callers see a *NotFoundError instead.
var errNotFound = errors.New("not found")

// NotFoundError reports a request that could not be resolved.
type NotFoundError struct {
	// Request is the request as the caller wrote it, before aliasing or
	// any rewriting of intermediate candidates.
	Request string

	// Parent is the file that issued the request.
	Parent string

	// Probed lists every path passed to the filesystem, in order.
	Probed []string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("cannot find module '%s'", e.Request)
}

// Is matches ErrModuleNotFound.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrModuleNotFound
}

// Code returns NotFoundCode.
func (e *NotFoundError) Code() string {
	return NotFoundCode
}

func newNotFoundError(request, parent string, probed []string) *NotFoundError {
	return &NotFoundError{
		Request: request,
		Parent:  parent,
		Probed:  slices.Clone(probed),
	}
}
