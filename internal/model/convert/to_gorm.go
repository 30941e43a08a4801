// Package convert turns reconstructed match state into GORM models.
package convert

import (
	"database/sql"
	"encoding/json"
	"sort"

	"github.com/ThePyrotechnic/openscoreboard/internal/match"
	"github.com/ThePyrotechnic/openscoreboard/internal/model"
	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
)

// positionToPoint converts a core.Position to a 3D geom.Point. A nil
// position gives the empty point.
func positionToPoint(p *core.Position) geom.Point {
	if p == nil {
		return geom.Point{}
	}
	coords := geom.Coordinates{XY: geom.XY{X: p.X, Y: p.Y}, Z: p.Z, Type: geom.DimXYZ}
	return geom.NewPoint(coords)
}

// scoreToJSON converts a side score map to datatypes.JSON for DB storage.
func scoreToJSON(score map[core.Side]int) datatypes.JSON {
	if score == nil {
		return datatypes.JSON("null")
	}
	data, _ := json.Marshal(map[string]int{
		string(core.SideT):  score[core.SideT],
		string(core.SideCT): score[core.SideCT],
	})
	return datatypes.JSON(data)
}

func countsToJSON(counts map[string]int) datatypes.JSON {
	if len(counts) == 0 {
		return datatypes.JSON("{}")
	}
	data, _ := json.Marshal(counts)
	return datatypes.JSON(data)
}

func actorID(a *core.Actor) sql.NullInt32 {
	if a == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(a.PlayerID), Valid: true}
}

func nullTick(tick *int) sql.NullInt64 {
	if tick == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*tick), Valid: true}
}

// RecordToMatch converts a finished decode run to a GORM model.Match with
// all rounds and their rows attached, ready for a single Create.
func RecordToMatch(rec *match.Record) model.Match {
	s := rec.State
	t, ct := rec.FinalScore()

	result := model.Match{
		DemoPath:            rec.Meta.DemoPath,
		DemoType:            rec.Meta.DemoType,
		TickRate:            rec.Meta.TickRate,
		StartedAt:           rec.Meta.StartedAt,
		Phase:               s.Phase.String(),
		RoundCount:          len(s.Rounds),
		ScoreT:              t,
		ScoreCT:             ct,
		InOvertime:          s.InOvertime,
		OvertimeIndex:       s.OvertimeIndex,
		OvertimeScoreTarget: s.OvertimeScoreTarget,
		UnknownFields:       countsToJSON(rec.UnknownFields),
		Rounds:              make([]model.Round, 0, len(s.Rounds)),
	}
	for _, r := range s.Rounds {
		result.Rounds = append(result.Rounds, RoundToModel(r))
	}
	return result
}

// RoundToModel converts one round. Hits and deaths are shared between
// players in the state and become a single row each. Event rows are
// ordered by tick.
func RoundToModel(r *match.Round) model.Round {
	result := model.Round{
		Number:    r.Number,
		StartTick: r.StartTick,
		EndTick:   nullTick(r.EndTick),
		Overtime:  r.Overtime,
		Score:     scoreToJSON(r.Score),
	}
	if r.EndReason != nil {
		result.EndReason = sql.NullInt16{Int16: int16(*r.EndReason), Valid: true}
		result.EndReasonName = r.EndReason.String()
	}
	if r.Winner != nil {
		result.Winner = string(*r.Winner)
	}

	actors := identities(r)
	hits := make(map[*match.Hit]bool)
	deaths := make(map[*match.Death]bool)

	for _, id := range playerIDs(r) {
		p := r.Players[id]
		result.Players = append(result.Players, PlayerToModel(p, actors[id]))

		for _, shot := range p.Shots {
			result.Shots = append(result.Shots, model.Shot{
				PlayerID: id,
				Tick:     shot.Tick,
				Weapon:   shot.Weapon,
				Silenced: shot.Silenced,
			})
		}
		for _, list := range [][]*match.Hit{p.HitsGiven, p.HitsTaken} {
			for _, h := range list {
				if hits[h] {
					continue
				}
				hits[h] = true
				result.Hits = append(result.Hits, HitToModel(h))
			}
		}
		for _, list := range [][]*match.Death{p.Deaths, p.Kills, p.Assists} {
			for _, d := range list {
				if deaths[d] {
					continue
				}
				deaths[d] = true
				result.Kills = append(result.Kills, DeathToModel(d))
			}
		}
		for _, d := range p.Defusals {
			result.Defusals = append(result.Defusals, model.Defusal{
				PlayerID:  id,
				HasKit:    d.HasKit,
				StartTick: d.StartTick,
				EndTick:   nullTick(d.EndTick),
				Success:   d.Success,
			})
		}
		for _, c := range p.BombCarryIntervals {
			result.BombCarries = append(result.BombCarries, model.BombCarry{
				PlayerID:  id,
				StartTick: c.Start,
				EndTick:   c.End,
			})
		}
		for _, o := range p.OrientationHistory {
			result.Orientations = append(result.Orientations, OrientationToModel(id, o))
		}
	}

	sort.SliceStable(result.Shots, func(i, j int) bool { return result.Shots[i].Tick < result.Shots[j].Tick })
	sort.SliceStable(result.Hits, func(i, j int) bool { return result.Hits[i].Tick < result.Hits[j].Tick })
	sort.SliceStable(result.Kills, func(i, j int) bool { return result.Kills[i].Tick < result.Kills[j].Tick })
	sort.SliceStable(result.Orientations, func(i, j int) bool {
		return result.Orientations[i].Tick < result.Orientations[j].Tick
	})

	return result
}

// PlayerToModel converts the per-round counters of one player. actor may
// be nil when the player only appeared in events without an identity.
func PlayerToModel(p *match.Player, actor *core.Actor) model.PlayerRound {
	result := model.PlayerRound{
		PlayerID:        p.ID,
		ShotCount:       len(p.Shots),
		HitsGiven:       len(p.HitsGiven),
		HitsTaken:       len(p.HitsTaken),
		Kills:           len(p.Kills),
		Deaths:          len(p.Deaths),
		Assists:         len(p.Assists),
		Footsteps:       p.Footsteps,
		StartedWithBomb: p.StartedWithBomb,
		BombPlantedTick: nullTick(p.BombPlantedTick),
	}
	for _, h := range p.HitsGiven {
		result.DamageGiven += h.DmgHealth
	}
	if actor != nil {
		result.Username = actor.Username
		result.SteamID64 = actor.SteamID64
	}
	return result
}

// HitToModel converts a core hit to a GORM model.Hit.
func HitToModel(h *match.Hit) model.Hit {
	return model.Hit{
		Tick:         h.Tick,
		VictimID:     h.Victim.PlayerID,
		AttackerID:   actorID(h.Attacker),
		Health:       h.Health,
		Armor:        h.Armor,
		Weapon:       h.Weapon,
		DmgHealth:    h.DmgHealth,
		DmgArmor:     h.DmgArmor,
		Hitgroup:     int(h.Hitgroup),
		HitgroupName: h.Hitgroup.String(),
	}
}

// DeathToModel converts a death to a GORM model.Kill.
func DeathToModel(d *match.Death) model.Kill {
	return model.Kill{
		Tick:          d.Tick,
		VictimID:      actorID(d.Victim),
		AttackerID:    actorID(d.Attacker),
		AssisterID:    actorID(d.Assister),
		AssistedFlash: d.AssistedFlash,
		Weapon:        d.Weapon,
		WeaponItemID:  d.WeaponItemID,
		Headshot:      d.Headshot,
		Penetrated:    d.Penetrated,
	}
}

// OrientationToModel converts one orientation sample of playerID.
func OrientationToModel(playerID int, o match.Orientation) model.Orientation {
	result := model.Orientation{
		PlayerID: playerID,
		Tick:     o.Tick,
		Position: positionToPoint(o.Position),
	}
	if o.Facing != nil {
		result.Pitch = sql.NullFloat64{Float64: o.Facing.Pitch, Valid: true}
		result.Yaw = sql.NullFloat64{Float64: o.Facing.Yaw, Valid: true}
	}
	return result
}

func playerIDs(r *match.Round) []int {
	ids := make([]int, 0, len(r.Players))
	for id := range r.Players {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// identities collects the actor reference of every player seen in the
// round's events.
func identities(r *match.Round) map[int]*core.Actor {
	actors := make(map[int]*core.Actor)
	remember := func(a *core.Actor) {
		if a != nil && a.SteamID64 != "" {
			actors[a.PlayerID] = a
		}
	}
	for _, p := range r.Players {
		for _, s := range p.Shots {
			remember(s.Actor)
		}
		for _, h := range p.HitsTaken {
			remember(h.Victim)
			remember(h.Attacker)
		}
		for _, d := range p.Deaths {
			remember(d.Victim)
			remember(d.Attacker)
			remember(d.Assister)
		}
		for _, d := range p.Defusals {
			remember(d.Actor)
		}
	}
	return actors
}
