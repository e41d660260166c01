/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package specifier classifies CommonJS require() requests.
package specifier

import (
	"path/filepath"
	"strings"
)

// Kind indicates the type of request.
type Kind int

const (
	// KindBare is a module name resolved through module directories.
	KindBare Kind = iota
	// KindBuiltIn is a platform module resolved by identity.
	KindBuiltIn
	// KindAbsolute is an absolute filesystem path.
	KindAbsolute
	// KindLocal is a path relative to the requesting file.
	KindLocal
)

// String returns the lower-case name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBuiltIn:
		return "builtin"
	case KindAbsolute:
		return "absolute"
	case KindLocal:
		return "local"
	default:
		return "bare"
	}
}

// Specifier represents a classified request.
type Specifier struct {
	// Kind is the type of request.
	Kind Kind

	// Package is the leading module name of a bare request
	// (e.g., "lodash" or "@scope/pkg"). Empty for other kinds.
	Package string

	// Subpath is the remainder of a bare request after Package, slash-joined.
	Subpath string

	// Raw is the original request string.
	Raw string
}

// Parse classifies a request. Aliasing is the caller's concern and must be
// applied before calling Parse.
func Parse(request string) *Specifier {
	s := &Specifier{Kind: KindBare, Raw: request}
	switch {
	case IsBuiltIn(request):
		s.Kind = KindBuiltIn
	case IsAbsolute(request):
		s.Kind = KindAbsolute
	case IsLocal(request):
		s.Kind = KindLocal
	default:
		s.Package, s.Subpath = splitPackage(Split(request))
	}
	return s
}

// IsLocal returns true if the request starts with "." or ".." followed by a
// path separator or the end of the string.
func IsLocal(request string) bool {
	rest, ok := strings.CutPrefix(request, ".")
	if !ok {
		return false
	}
	rest = strings.TrimPrefix(rest, ".")
	return rest == "" || isSeparator(rest[0])
}

// IsAbsolute returns true if the request begins with the platform root marker.
func IsAbsolute(request string) bool {
	return filepath.IsAbs(request) || strings.HasPrefix(request, "/")
}

// Split splits a request on forward or backward slashes, dropping empty segments.
func Split(request string) []string {
	return strings.FieldsFunc(request, func(r rune) bool {
		return r == '/' || r == '\\'
	})
}

// IsDirectoryRequest reports whether the request can only name a directory:
// it ends in a separator, or is ".", "..", or ends in "/." or "/..".
func IsDirectoryRequest(request string) bool {
	if request == "" {
		return false
	}
	if isSeparator(request[len(request)-1]) {
		return true
	}
	segments := strings.FieldsFunc(request, func(r rune) bool {
		return r == '/' || r == '\\'
	})
	if len(segments) == 0 {
		return false
	}
	last := segments[len(segments)-1]
	return last == "." || last == ".."
}

func splitPackage(segments []string) (string, string) {
	if len(segments) == 0 {
		return "", ""
	}
	n := 1
	if strings.HasPrefix(segments[0], "@") && len(segments) > 1 {
		n = 2
	}
	return strings.Join(segments[:n], "/"), strings.Join(segments[n:], "/")
}

func isSeparator(c byte) bool {
	return c == '/' || c == '\\'
}
