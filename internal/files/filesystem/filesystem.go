package filesystem

import (
	"io/fs"
)

// FileInfo is an alias for fs.FileInfo, keeping a stable local name for
// the abstraction layer.
type FileInfo = fs.FileInfo

// File is an individual file with its metadata and content accessor.
type File interface {
	// Path returns the absolute path to the file.
	Path() string

	// RelativePath returns the path relative to the walked root.
	RelativePath() string

	// Info returns file metadata.
	Info() FileInfo

	// ReadContent returns the file's content.
	ReadContent() ([]byte, error)
}

// Directory is a directory that can be traversed to discover files.
type Directory interface {
	// Path returns the absolute path to the directory.
	Path() string

	// Walk traverses the directory tree in deterministic order, calling
	// fn for each file and directory. A non-nil return stops the walk.
	Walk(fn func(File, error) error) error
}

// Provider is a factory for Directory instances plus direct file access.
type Provider interface {
	// Open opens a directory at the given path.
	Open(path string) (Directory, error)

	// ReadFile reads a specific file.
	ReadFile(path string) ([]byte, error)

	// Stat returns file information for the given path.
	Stat(path string) (FileInfo, error)
}
