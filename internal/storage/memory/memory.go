// internal/storage/memory/memory.go
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	"github.com/ThePyrotechnic/openscoreboard/internal/match"
)

// Backend keeps finished matches in memory and exports each to JSON
type Backend struct {
	cfg    config.MemoryConfig
	logger *slog.Logger

	records        []*match.Record
	lastExportPath string
	mu             sync.RWMutex
}

// New creates a new memory backend
func New(cfg config.MemoryConfig, logger *slog.Logger) *Backend {
	return &Backend{
		cfg:    cfg,
		logger: logger,
	}
}

// Init creates the output directory
func (b *Backend) Init() error {
	if err := os.MkdirAll(b.cfg.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// Close cleans up resources
func (b *Backend) Close() error {
	return nil
}

// StoreMatch keeps the record and writes its export file
func (b *Backend) StoreMatch(ctx context.Context, rec *match.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.records = append(b.records, rec)
	if err := b.exportJSON(rec); err != nil {
		return err
	}
	b.logger.Info("Match exported", "path", b.lastExportPath)
	return nil
}

// Records returns the matches stored so far
func (b *Backend) Records() []*match.Record {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*match.Record(nil), b.records...)
}

// ExportedFilePath returns the path of the last export
func (b *Backend) ExportedFilePath() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastExportPath
}
