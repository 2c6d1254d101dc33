// Package storage defines the file-system access used by the build:
// reading the content tree and writing the output tree.
package storage

import "io/fs"

// Provider is the interface for tree file operations. Paths are relative
// to the provider root and slash separated.
type Provider interface {
	// ReadDir returns the direct entries of dir, sorted by name.
	ReadDir(dir string) ([]fs.DirEntry, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path, creating parent directories.
	Write(path string, content []byte) error
	// MkdirAll creates dir and any missing parents.
	MkdirAll(dir string) error
}
