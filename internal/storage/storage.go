// internal/storage/storage.go
package storage

import (
	"context"

	"github.com/ThePyrotechnic/openscoreboard/internal/match"
)

// Backend is the interface all storage implementations must satisfy
type Backend interface {
	// Lifecycle
	Init() error
	Close() error

	// StoreMatch persists one finished decode run
	StoreMatch(ctx context.Context, rec *match.Record) error
}

// Exporter is an optional interface for storage backends that produce a
// result file.
type Exporter interface {
	ExportedFilePath() string
}
