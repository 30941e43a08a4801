// internal/storage/factory.go
package storage

import (
	"fmt"
	"log/slog"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	influxstorage "github.com/ThePyrotechnic/openscoreboard/internal/storage/influx"
	"github.com/ThePyrotechnic/openscoreboard/internal/storage/memory"
	"github.com/ThePyrotechnic/openscoreboard/internal/storage/postgres"
	sqlitestorage "github.com/ThePyrotechnic/openscoreboard/internal/storage/sqlite"
)

// Storage type names accepted by NewBackend.
const (
	TypeMemory   = "memory"
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
	TypeInflux   = "influx"
)

// Types lists the storage types in the order they are documented.
var Types = []string{TypeMemory, TypeSQLite, TypePostgres, TypeInflux}

// Dependencies are the settings of the backends that do not live under
// the storage key.
type Dependencies struct {
	DB     config.DBConfig
	Influx config.InfluxConfig
	Logger *slog.Logger
}

// NewBackend creates a storage backend based on configuration
func NewBackend(cfg config.StorageConfig, deps Dependencies) (Backend, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("storage", cfg.Type)

	switch cfg.Type {
	case TypePostgres:
		return postgres.New(deps.DB, logger), nil
	case TypeSQLite:
		b, err := sqlitestorage.New(cfg.SQLite, logger)
		if err != nil {
			return nil, err
		}
		return b, nil
	case TypeInflux:
		return influxstorage.New(deps.Influx, logger), nil
	case TypeMemory:
		return memory.New(cfg.Memory, logger), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
