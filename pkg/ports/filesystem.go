package ports

// FileSystem is where extracted frames, contact sheets and reports are
// written. Paths use the host separator.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)

	// WriteFile replaces path with data, creating parent directories. A
	// reader never observes a partially written file.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Exists reports whether a file or directory exists at path.
	Exists(path string) (bool, error)

	// Remove deletes a file or empty directory.
	Remove(path string) error
}
