package postgres

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	gormstorage "github.com/ThePyrotechnic/openscoreboard/internal/storage/gorm"
	"github.com/stretchr/testify/assert"
)

func newTestBackend() *Backend {
	return New(config.DBConfig{
		Host:     "127.0.0.1",
		Port:     "1",
		Username: "postgres",
		Password: "postgres",
		Database: "openscore",
		SSLMode:  "disable",
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestStoreMatch_BeforeInit(t *testing.T) {
	b := newTestBackend()
	err := b.StoreMatch(context.Background(), &match.Record{})
	assert.ErrorIs(t, err, gormstorage.ErrNotReady)
}

func TestClose_BeforeInit(t *testing.T) {
	assert.NoError(t, newTestBackend().Close())
}

func TestInit_Unreachable(t *testing.T) {
	b := newTestBackend()
	err := b.Init()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to postgres")
}
