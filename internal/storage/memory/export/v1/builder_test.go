package v1

import (
	"database/sql"
	"testing"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestBoolToInt(t *testing.T) {
	assert.Equal(t, 1, boolToInt(true))
	assert.Equal(t, 0, boolToInt(false))
}

func TestPlayerOrNone(t *testing.T) {
	assert.Equal(t, -1, playerOrNone(sql.NullInt32{}))
	assert.Equal(t, 0, playerOrNone(sql.NullInt32{Int32: 0, Valid: true}))
	assert.Equal(t, 7, playerOrNone(sql.NullInt32{Int32: 7, Valid: true}))
}

func sampleMatch() model.Match {
	return model.Match{
		DemoPath:            "/demos/inferno.dem",
		DemoType:            "esea",
		TickRate:            128,
		StartedAt:           time.Date(2024, 1, 15, 10, 30, 0, 0, time.FixedZone("EST", -5*3600)),
		Phase:               "concluded",
		ScoreT:              19,
		ScoreCT:             17,
		InOvertime:          true,
		OvertimeIndex:       1,
		OvertimeScoreTarget: 19,
		UnknownFields:       datatypes.JSON(`{"round_end.legacy2": 3}`),
		Rounds: []model.Round{
			{
				Number:        1,
				StartTick:     100,
				EndTick:       sql.NullInt64{Int64: 900, Valid: true},
				EndReason:     sql.NullInt16{Int16: 7, Valid: true},
				EndReasonName: "Bomb Defused",
				Winner:        "ct",
				Score:         datatypes.JSON(`{"t": 0, "ct": 1}`),
				Players: []model.PlayerRound{
					{PlayerID: 2, Username: "alice", Kills: 2, DamageGiven: 200, ShotCount: 9},
					{PlayerID: 3, Username: "bob", Deaths: 1, StartedWithBomb: true, BombPlantedTick: sql.NullInt64{Int64: 600, Valid: true}},
				},
				Kills: []model.Kill{
					{Tick: 300, VictimID: sql.NullInt32{Int32: 3, Valid: true}, AttackerID: sql.NullInt32{Int32: 2, Valid: true}, Weapon: "m4a1", Headshot: true},
					{Tick: 400, VictimID: sql.NullInt32{Int32: 4, Valid: true}, Weapon: "world"},
				},
				Defusals: []model.Defusal{
					{PlayerID: 2, StartTick: 700, EndTick: sql.NullInt64{Int64: 830, Valid: true}, HasKit: true, Success: true},
				},
				BombCarries: []model.BombCarry{
					{PlayerID: 3, StartTick: 100, EndTick: 600},
				},
			},
			{
				Number:    2,
				StartTick: 1000,
				Score:     datatypes.JSON("null"),
			},
		},
	}
}

func TestBuild(t *testing.T) {
	export := Build(sampleMatch())

	assert.Equal(t, Version, export.Version)
	assert.Equal(t, "/demos/inferno.dem", export.Demo.Path)
	assert.Equal(t, "2024-01-15T15:30:00Z", export.Demo.StartedAt)
	assert.Equal(t, Score{T: 19, CT: 17}, export.Score)
	require.NotNil(t, export.Overtime)
	assert.Equal(t, OT{Index: 1, Target: 19}, *export.Overtime)
	assert.Equal(t, map[string]int{"round_end.legacy2": 3}, export.UnknownFields)
	require.Len(t, export.Rounds, 2)
}

func TestBuild_Round(t *testing.T) {
	r := Build(sampleMatch()).Rounds[0]

	require.NotNil(t, r.EndTick)
	assert.Equal(t, int64(900), *r.EndTick)
	require.NotNil(t, r.Reason)
	assert.Equal(t, int16(7), *r.Reason)
	assert.Equal(t, "ct", r.Winner)
	require.NotNil(t, r.Score)
	assert.Equal(t, Score{T: 0, CT: 1}, *r.Score)

	require.Len(t, r.Players, 2)
	alice, bob := r.Players[0], r.Players[1]
	assert.Equal(t, 1, alice.Headshots)
	assert.Equal(t, 200, alice.Damage)
	assert.Equal(t, 9, alice.Shots)
	assert.Nil(t, alice.BombCarries)
	assert.Equal(t, [][2]int{{100, 600}}, bob.BombCarries)
	require.NotNil(t, bob.BombPlantedTick)
	assert.Equal(t, int64(600), *bob.BombPlantedTick)

	assert.Equal(t, [][]any{
		{300, 3, 2, -1, "m4a1", 1},
		{400, 4, -1, -1, "world", 0},
	}, r.Kills)
	assert.Equal(t, [][]any{{2, 700, int64(830), 1, 1}}, r.Defusals)
}

func TestBuild_OpenRound(t *testing.T) {
	r := Build(sampleMatch()).Rounds[1]

	assert.Nil(t, r.EndTick)
	assert.Nil(t, r.Reason)
	assert.Nil(t, r.Score)
	assert.Empty(t, r.Players)
	assert.NotNil(t, r.Kills, "empty rounds still export an empty kill list")
}

func TestBuild_Regulation(t *testing.T) {
	m := sampleMatch()
	m.InOvertime = false
	m.UnknownFields = datatypes.JSON("{}")

	export := Build(m)
	assert.Nil(t, export.Overtime)
	assert.Nil(t, export.UnknownFields)
}
