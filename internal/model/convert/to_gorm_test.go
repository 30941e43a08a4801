package convert

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func actor(id int, name string) *core.Actor {
	return &core.Actor{Username: name, SteamID64: "7656119800000000" + string(rune('0'+id)), PlayerID: id}
}

// sampleRound builds a round where player 2 kills player 3 with an
// assist from player 4 after a hit, while player 3 carried the bomb.
func sampleRound() *match.Round {
	killer, victim, assister := actor(2, "killer"), actor(3, "victim"), actor(4, "assister")

	hit := &match.Hit{
		Victim:    victim,
		Attacker:  killer,
		Health:    60,
		Armor:     80,
		Weapon:    "ak47",
		DmgHealth: 40,
		DmgArmor:  20,
		Hitgroup:  1,
		Tick:      1300,
	}
	death := &match.Death{
		Victim:        victim,
		Attacker:      killer,
		Assister:      assister,
		AssistedFlash: true,
		Weapon:        "ak47",
		WeaponItemID:  "5",
		Headshot:      true,
		Tick:          1400,
	}

	r := &match.Round{
		Number:    1,
		StartTick: 1000,
		EndTick:   ptr(2000),
		EndReason: ptr(core.RoundEndReason(9)),
		Winner:    ptr(core.SideT),
		Players:   make(map[int]*match.Player),
		Score:     map[core.Side]int{core.SideT: 1, core.SideCT: 0},
	}

	k := r.Player(2)
	k.Shots = []*match.Shot{
		{Actor: killer, Weapon: "ak47", Tick: 1350},
		{Actor: killer, Weapon: "ak47", Tick: 1290},
	}
	k.HitsGiven = []*match.Hit{hit}
	k.Kills = []*match.Death{death}
	k.OrientationHistory = []match.Orientation{
		{Position: &core.Position{X: 1, Y: 2, Z: 3}, Facing: &core.Facing{Pitch: 4, Yaw: 5}, Tick: 1300},
	}

	v := r.Player(3)
	v.HitsTaken = []*match.Hit{hit}
	v.Deaths = []*match.Death{death}
	v.StartedWithBomb = true
	v.BombCarryIntervals = []match.CarryInterval{{Start: 1000, End: 1400}}
	v.Footsteps = 12
	v.OrientationHistory = []match.Orientation{
		{Facing: &core.Facing{Pitch: -1, Yaw: 90}, Tick: 1200},
	}

	a := r.Player(4)
	a.Assists = []*match.Death{death}
	a.Defusals = []*match.Defusal{{Actor: assister, HasKit: true, StartTick: 1500, EndTick: ptr(1800), Success: true}}

	return r
}

func TestRoundToModel(t *testing.T) {
	r := RoundToModel(sampleRound())

	assert.Equal(t, 1, r.Number)
	assert.Equal(t, 1000, r.StartTick)
	assert.True(t, r.EndTick.Valid)
	assert.Equal(t, int64(2000), r.EndTick.Int64)
	assert.Equal(t, int16(9), r.EndReason.Int16)
	assert.Equal(t, "Terrorists Win", r.EndReasonName)
	assert.Equal(t, "t", r.Winner)
	assert.JSONEq(t, `{"t": 1, "ct": 0}`, string(r.Score))

	require.Len(t, r.Players, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{r.Players[0].PlayerID, r.Players[1].PlayerID, r.Players[2].PlayerID})

	killer := r.Players[0]
	assert.Equal(t, "killer", killer.Username)
	assert.Equal(t, 2, killer.ShotCount)
	assert.Equal(t, 1, killer.Kills)
	assert.Equal(t, 40, killer.DamageGiven)

	victim := r.Players[1]
	assert.Equal(t, 1, victim.Deaths)
	assert.Equal(t, 1, victim.HitsTaken)
	assert.Equal(t, 12, victim.Footsteps)
	assert.True(t, victim.StartedWithBomb)
	assert.False(t, victim.BombPlantedTick.Valid)

	require.Len(t, r.Shots, 2)
	assert.Equal(t, 1290, r.Shots[0].Tick, "shots are ordered by tick")

	require.Len(t, r.Hits, 1, "a hit shared by attacker and victim is one row")
	assert.Equal(t, 3, r.Hits[0].VictimID)
	assert.Equal(t, int32(2), r.Hits[0].AttackerID.Int32)
	assert.Equal(t, "Head", r.Hits[0].HitgroupName)

	require.Len(t, r.Kills, 1, "a death shared by three players is one row")
	assert.Equal(t, int32(3), r.Kills[0].VictimID.Int32)
	assert.Equal(t, int32(4), r.Kills[0].AssisterID.Int32)
	assert.True(t, r.Kills[0].Headshot)

	require.Len(t, r.Defusals, 1)
	assert.Equal(t, 4, r.Defusals[0].PlayerID)
	assert.Equal(t, int64(1800), r.Defusals[0].EndTick.Int64)

	require.Len(t, r.BombCarries, 1)
	assert.Equal(t, 1400, r.BombCarries[0].EndTick)

	require.Len(t, r.Orientations, 2)
	facingOnly := r.Orientations[0]
	assert.Equal(t, 1200, facingOnly.Tick)
	assert.True(t, facingOnly.Position.IsEmpty())
	assert.Equal(t, 90.0, facingOnly.Yaw.Float64)

	full := r.Orientations[1]
	coords, ok := full.Position.Coordinates()
	require.True(t, ok)
	assert.Equal(t, 1.0, coords.X)
	assert.Equal(t, 3.0, coords.Z)
}

func TestRoundToModel_OpenRound(t *testing.T) {
	r := RoundToModel(&match.Round{Number: 7, StartTick: 5, Players: map[int]*match.Player{}})

	assert.False(t, r.EndTick.Valid)
	assert.False(t, r.EndReason.Valid)
	assert.Equal(t, "", r.Winner)
	assert.Equal(t, "null", string(r.Score))
	assert.Empty(t, r.Players)
}

func TestDeathToModel_NoAttacker(t *testing.T) {
	k := DeathToModel(&match.Death{Victim: actor(3, "victim"), Weapon: "world", Tick: 9})

	assert.True(t, k.VictimID.Valid)
	assert.False(t, k.AttackerID.Valid)
	assert.False(t, k.AssisterID.Valid)
}

func TestRecordToMatch(t *testing.T) {
	started := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &match.Record{
		Meta: match.Meta{DemoPath: "/demos/a.dem", DemoType: "esea", TickRate: 128, StartedAt: started},
		State: &match.State{
			Phase:               match.Concluded,
			RoundNumber:         1,
			Score:               map[core.Side]int{core.SideT: 16, core.SideCT: 14},
			Rounds:              []*match.Round{sampleRound()},
			InOvertime:          true,
			OvertimeIndex:       1,
			OvertimeScoreTarget: 19,
		},
		UnknownFields: map[string]int{"item_equip.bogus": 2},
	}

	m := RecordToMatch(rec)

	assert.Equal(t, "/demos/a.dem", m.DemoPath)
	assert.Equal(t, "esea", m.DemoType)
	assert.Equal(t, 128, m.TickRate)
	assert.Equal(t, started, m.StartedAt)
	assert.Equal(t, "concluded", m.Phase)
	assert.Equal(t, 16, m.ScoreT)
	assert.Equal(t, 14, m.ScoreCT)
	assert.Equal(t, 1, m.RoundCount)
	assert.True(t, m.InOvertime)
	assert.Equal(t, 19, m.OvertimeScoreTarget)
	require.Len(t, m.Rounds, 1)

	var unknown map[string]int
	require.NoError(t, json.Unmarshal(m.UnknownFields, &unknown))
	assert.Equal(t, 2, unknown["item_equip.bogus"])
}

func TestRecordToMatch_NoUnknownFields(t *testing.T) {
	rec := &match.Record{State: &match.State{Score: map[core.Side]int{}}}
	assert.Equal(t, "{}", string(RecordToMatch(rec).UnknownFields))
}
