// internal/storage/memory/memory_test.go
package memory

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/config"
	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleRecord(path string) *match.Record {
	winner := core.SideCT
	end := 900
	victim := &core.Actor{Username: "bob", SteamID64: "76561198000000003", PlayerID: 3}
	killer := &core.Actor{Username: "alice", SteamID64: "76561198000000002", PlayerID: 2}
	death := &match.Death{Victim: victim, Attacker: killer, Weapon: "m4a1", Headshot: true, Tick: 400}

	round := &match.Round{
		Number:    1,
		StartTick: 100,
		EndTick:   &end,
		Winner:    &winner,
		Players:   make(map[int]*match.Player),
		Score:     map[core.Side]int{core.SideT: 0, core.SideCT: 1},
	}
	round.Player(2).Kills = []*match.Death{death}
	round.Player(3).Deaths = []*match.Death{death}

	return &match.Record{
		Meta: match.Meta{
			DemoPath:  path,
			DemoType:  "esea",
			TickRate:  128,
			StartedAt: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC),
		},
		State: &match.State{
			Phase:       match.Live,
			RoundNumber: 1,
			Score:       map[core.Side]int{core.SideT: 0, core.SideCT: 1},
			Rounds:      []*match.Round{round},
		},
	}
}

func TestNew(t *testing.T) {
	cfg := config.MemoryConfig{
		OutputDir:      "/tmp/test",
		CompressOutput: true,
	}
	b := New(cfg, testLogger())

	if b == nil {
		t.Fatal("New returned nil")
	}
	if b.cfg.OutputDir != "/tmp/test" {
		t.Errorf("expected OutputDir=/tmp/test, got %s", b.cfg.OutputDir)
	}
	if !b.cfg.CompressOutput {
		t.Error("expected CompressOutput=true")
	}
	if b.ExportedFilePath() != "" {
		t.Errorf("expected no export yet, got %s", b.ExportedFilePath())
	}
}

func TestInitAndClose(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	b := New(config.MemoryConfig{OutputDir: dir}, testLogger())

	if err := b.Init(); err != nil {
		t.Errorf("Init failed: %v", err)
	}
	if err := b.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
}

func TestStoreMatch(t *testing.T) {
	dir := t.TempDir()
	b := New(config.MemoryConfig{OutputDir: dir}, testLogger())
	if err := b.Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	rec := sampleRecord("/demos/inferno.dem")
	if err := b.StoreMatch(context.Background(), rec); err != nil {
		t.Fatalf("StoreMatch failed: %v", err)
	}

	records := b.Records()
	if len(records) != 1 || records[0] != rec {
		t.Errorf("expected the stored record back, got %v", records)
	}

	want := filepath.Join(dir, "inferno_20240115_103000.json")
	if b.ExportedFilePath() != want {
		t.Errorf("expected export at %s, got %s", want, b.ExportedFilePath())
	}
}

func TestStoreMatch_CancelledContext(t *testing.T) {
	b := New(config.MemoryConfig{OutputDir: t.TempDir()}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := b.StoreMatch(ctx, sampleRecord("a.dem")); err == nil {
		t.Error("expected an error for a cancelled context")
	}
	if len(b.Records()) != 0 {
		t.Error("nothing should be stored")
	}
}
