package sqlitestorage

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	"github.com/ThePyrotechnic/openscoreboard/internal/model"
	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "scores.db")

	b, err := New(config.SQLiteConfig{Path: path}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	require.NoError(t, b.Init())
	assert.Equal(t, path, b.Path())

	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestStoreMatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scores.db")
	b, err := New(config.SQLiteConfig{Path: path}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })
	require.NoError(t, b.Init())

	rec := &match.Record{
		Meta: match.Meta{DemoPath: "a.dem", DemoType: "esea", TickRate: 128, StartedAt: time.Now()},
		State: &match.State{
			Phase:  match.Concluded,
			Score:  map[core.Side]int{core.SideT: 16, core.SideCT: 3},
			Rounds: []*match.Round{{Number: 1, Players: map[int]*match.Player{}}},
		},
	}
	require.NoError(t, b.StoreMatch(context.Background(), rec))

	var m model.Match
	require.NoError(t, b.DB().Preload("Rounds").First(&m).Error)
	assert.Equal(t, 16, m.ScoreT)
	assert.Equal(t, "concluded", m.Phase)
	assert.Len(t, m.Rounds, 1)
}
