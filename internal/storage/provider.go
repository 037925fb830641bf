// Package storage defines the chart library file-system abstraction.
package storage

import "github.com/starford/srtbspeeds/internal/models"

// Provider is the interface for chart library file operations.
type Provider interface {
	// List returns metadata for every .srtb file under dir (relative to library root).
	List(dir string) ([]models.ChartMetadata, error)
	// Read returns the raw bytes of the file at path (relative to library root).
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (relative to library root).
	Write(path string, content []byte) error
	// Root returns the absolute library directory.
	Root() string
	// Rel converts an absolute path under the root to a library-relative,
	// slash-separated path.
	Rel(abs string) (string, error)
	// Update reads path, passes its content to fn, and atomically writes the
	// result back while holding the library lock. If fn returns an error or
	// nil content, nothing is written.
	Update(path string, fn func(content []byte) ([]byte, error)) error
}
