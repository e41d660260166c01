/*
Copyright 2026 Benny Powers. All rights reserved.
Use of this source code is governed by the GPLv3
license that can be found in the LICENSE file.
*/

// Package fs provides the filesystem boundary used during module resolution.
package fs

import (
	"io/fs"
	"os"
)

// FileSystem is the only I/O surface the resolver touches.
// Implementations must report a missing path as an error from Stat.
type FileSystem interface {
	// Stat returns file information for the named path.
	Stat(name string) (fs.FileInfo, error)

	// ReadFile reads the entire contents of a file.
	ReadFile(name string) ([]byte, error)
}

// StatFunc is the signature of FileSystem.Stat.
type StatFunc func(name string) (fs.FileInfo, error)

// ReadFileFunc is the signature of FileSystem.ReadFile.
type ReadFileFunc func(name string) ([]byte, error)

// OSFileSystem implements FileSystem using the standard os package.
type OSFileSystem struct{}

// NewOSFileSystem creates a new filesystem that uses the standard os package.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file information for the named file.
func (f *OSFileSystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

// ReadFile reads the entire contents of a file.
func (f *OSFileSystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// Overlay replaces individual operations of a base FileSystem.
// A nil func falls through to Base.
type Overlay struct {
	Base         FileSystem
	StatFunc     StatFunc
	ReadFileFunc ReadFileFunc
}

// Stat implements FileSystem.
func (o *Overlay) Stat(name string) (fs.FileInfo, error) {
	if o.StatFunc != nil {
		return o.StatFunc(name)
	}
	return o.Base.Stat(name)
}

// ReadFile implements FileSystem.
func (o *Overlay) ReadFile(name string) ([]byte, error) {
	if o.ReadFileFunc != nil {
		return o.ReadFileFunc(name)
	}
	return o.Base.ReadFile(name)
}

// IsFile reports whether name exists and is not a directory.
func IsFile(filesystem FileSystem, name string) bool {
	info, err := filesystem.Stat(name)
	return err == nil && !info.IsDir()
}

// IsDir reports whether name exists and is a directory.
func IsDir(filesystem FileSystem, name string) bool {
	info, err := filesystem.Stat(name)
	return err == nil && info.IsDir()
}
