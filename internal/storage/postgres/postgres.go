// Package postgres implements the storage.Backend interface using
// GORM/PostgreSQL. The connection is made in Init.
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	"github.com/ThePyrotechnic/openscoreboard/internal/database"
	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	gormstorage "github.com/ThePyrotechnic/openscoreboard/internal/storage/gorm"
)

// Backend connects to Postgres and delegates writes to the GORM backend.
type Backend struct {
	cfg    config.DBConfig
	logger *slog.Logger
	gorm   *gormstorage.Backend
}

// New creates a new Postgres storage backend.
func New(cfg config.DBConfig, logger *slog.Logger) *Backend {
	return &Backend{
		cfg:    cfg,
		logger: logger,
	}
}

// Init connects and migrates the schema.
func (b *Backend) Init() error {
	b.logger.Debug("Connecting to Postgres DB", "host", b.cfg.Host, "port", b.cfg.Port, "database", b.cfg.Database)
	db, err := database.GetPostgresDB(b.cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	b.logger.Info("Connected to database", "host", b.cfg.Host)

	b.gorm = gormstorage.New(db, b.logger)
	return b.gorm.Init()
}

// Close closes the connection if Init opened one.
func (b *Backend) Close() error {
	if b.gorm == nil {
		return nil
	}
	return b.gorm.Close()
}

// StoreMatch inserts the match.
func (b *Backend) StoreMatch(ctx context.Context, rec *match.Record) error {
	if b.gorm == nil {
		return gormstorage.ErrNotReady
	}
	return b.gorm.StoreMatch(ctx, rec)
}
