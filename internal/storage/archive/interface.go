// internal/storage/archive/interface.go
package archive

import "context"

// Storage defines the interface for report storage backends
type Storage interface {
	// Name identifies the backend in logs
	Name() string

	// Write stores data at the given path, replacing any existing object
	Write(ctx context.Context, path string, data []byte) error

	// Read retrieves data from the given path
	Read(ctx context.Context, path string) ([]byte, error)

	// Exists checks if data exists at the given path
	Exists(ctx context.Context, path string) (bool, error)
}
