// Package gormstorage implements the storage.Backend interface on top of
// any GORM dialect. The sqlite and postgres backends wrap it and only
// differ in how they open the connection.
package gormstorage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ThePyrotechnic/openscoreboard/internal/database"
	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	"github.com/ThePyrotechnic/openscoreboard/internal/model"
	"github.com/ThePyrotechnic/openscoreboard/internal/model/convert"
	"gorm.io/gorm"
)

// ErrNotReady is returned when a match is stored before Init succeeded.
var ErrNotReady = errors.New("database is not ready")

// Backend writes every stored match with its rounds in one transaction.
type Backend struct {
	db      *gorm.DB
	logger  *slog.Logger
	dbReady bool
}

// New creates a new GORM storage backend.
func New(db *gorm.DB, logger *slog.Logger) *Backend {
	return &Backend{
		db:     db,
		logger: logger,
	}
}

// DB returns the underlying connection.
func (b *Backend) DB() *gorm.DB {
	return b.db
}

// Init migrates the schema.
func (b *Backend) Init() error {
	if b.db == nil {
		return ErrNotReady
	}
	if err := database.Setup(b.db, b.logger); err != nil {
		return fmt.Errorf("failed to setup DB: %w", err)
	}
	b.dbReady = true
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	if b.db == nil {
		return nil
	}
	b.dbReady = false
	return database.Close(b.db)
}

// StoreMatch inserts the match, its rounds and all per-round rows.
func (b *Backend) StoreMatch(ctx context.Context, rec *match.Record) error {
	if !b.dbReady {
		return ErrNotReady
	}

	m := convert.RecordToMatch(rec)
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(&m).Error
	})
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}

	b.logger.Info("Match stored",
		"matchId", m.ID,
		"rounds", len(m.Rounds),
		"dialect", b.db.Dialector.Name())
	return nil
}

// LoadMatch reads a stored match back with all its rounds.
func (b *Backend) LoadMatch(ctx context.Context, id uint) (*model.Match, error) {
	var m model.Match
	err := b.db.WithContext(ctx).
		Preload("Rounds", func(db *gorm.DB) *gorm.DB { return db.Order("number") }).
		Preload("Rounds.Players").
		Preload("Rounds.Shots").
		Preload("Rounds.Hits").
		Preload("Rounds.Kills").
		Preload("Rounds.Defusals").
		Preload("Rounds.BombCarries").
		Preload("Rounds.Orientations").
		First(&m, id).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load match %d: %w", id, err)
	}
	return &m, nil
}
