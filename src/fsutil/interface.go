package fsutil

// FileStore provides an interface for file system operations
type FileStore interface {
	// ReadFile reads a file and returns its contents
	ReadFile(path string) ([]byte, error)

	// WriteFileAtomic writes data to path so that readers never observe a
	// partially written file. The write goes to a temporary file in the
	// same directory which is then renamed over the target.
	WriteFileAtomic(path string, data []byte) error

	// Exists reports whether path exists
	Exists(path string) (bool, error)

	// IsDir reports whether path exists and is a directory
	IsDir(path string) (bool, error)

	// ListFiles returns the names of regular files in dir whose lowercased
	// name ends with ext, in lexical order
	ListFiles(dir string, ext string) ([]string, error)

	// MakeDirectory creates a new directory and all necessary parents
	MakeDirectory(path string) error

	// RemoveAll removes a path and any children it contains
	RemoveAll(path string) error
}
