// Package sqlitestorage implements the storage.Backend interface using a
// SQLite database file. It wraps the GORM backend via composition; the
// only SQLite-specific concern is opening the file.
package sqlitestorage

import (
	"fmt"
	"log/slog"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	"github.com/ThePyrotechnic/openscoreboard/internal/database"
	gormstorage "github.com/ThePyrotechnic/openscoreboard/internal/storage/gorm"
)

// Backend wraps the GORM backend for SQLite-specific behavior.
type Backend struct {
	*gormstorage.Backend
	cfg config.SQLiteConfig
}

// New opens the database at cfg.Path. An empty path keeps the database in
// memory for the lifetime of the process.
func New(cfg config.SQLiteConfig, logger *slog.Logger) (*Backend, error) {
	db, err := database.GetSqliteDB(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite DB: %w", err)
	}
	logger.Info("Using local SQLite DB", "path", cfg.Path)

	return &Backend{
		Backend: gormstorage.New(db, logger),
		cfg:     cfg,
	}, nil
}

// Path returns the database file.
func (b *Backend) Path() string {
	return b.cfg.Path
}
