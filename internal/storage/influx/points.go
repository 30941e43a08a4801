package influxstorage

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/model"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementRound       = "round"
	MeasurementPlayerRound = "player_round"
	MeasurementKill        = "kill"
)

// tickTime places a tick on the wall clock, counting from the demo start.
func tickTime(m model.Match, tick int) time.Time {
	if m.TickRate <= 0 {
		return m.StartedAt
	}
	return m.StartedAt.Add(time.Duration(tick) * time.Second / time.Duration(m.TickRate))
}

// Points converts a match into round, player_round and kill points. Every
// point is tagged with the demo name and round number.
func Points(m model.Match) []*influxdb2_write.Point {
	demo := filepath.Base(m.DemoPath)
	var points []*influxdb2_write.Point

	for _, r := range m.Rounds {
		round := strconv.Itoa(r.Number)
		ts := tickTime(m, r.StartTick)

		rp := influxdb2_write.NewPointWithMeasurement(MeasurementRound).
			AddTag("demo", demo).
			AddTag("demo_type", m.DemoType).
			AddTag("round", round).
			AddTag("overtime", strconv.FormatBool(r.Overtime)).
			AddField("start_tick", r.StartTick).
			SetTime(ts)
		if r.Winner != "" {
			rp.AddTag("winner", r.Winner)
		}
		if r.EndTick.Valid {
			rp.AddField("end_tick", r.EndTick.Int64)
		}
		if r.EndReason.Valid {
			rp.AddField("end_reason", int64(r.EndReason.Int16))
		}
		var score map[string]int
		if err := json.Unmarshal(r.Score, &score); err == nil && score != nil {
			rp.AddField("score_t", score["t"])
			rp.AddField("score_ct", score["ct"])
		}
		points = append(points, rp)

		for _, p := range r.Players {
			pp := influxdb2_write.NewPointWithMeasurement(MeasurementPlayerRound).
				AddTag("demo", demo).
				AddTag("round", round).
				AddTag("player_id", strconv.Itoa(p.PlayerID)).
				AddField("kills", p.Kills).
				AddField("deaths", p.Deaths).
				AddField("assists", p.Assists).
				AddField("shots", p.ShotCount).
				AddField("hits_given", p.HitsGiven).
				AddField("hits_taken", p.HitsTaken).
				AddField("damage", p.DamageGiven).
				AddField("footsteps", p.Footsteps).
				AddField("started_with_bomb", p.StartedWithBomb).
				SetTime(ts)
			if p.SteamID64 != "" {
				pp.AddTag("steamid64", p.SteamID64)
			}
			if p.Username != "" {
				pp.AddField("username", p.Username)
			}
			points = append(points, pp)
		}

		for _, k := range r.Kills {
			kp := influxdb2_write.NewPointWithMeasurement(MeasurementKill).
				AddTag("demo", demo).
				AddTag("round", round).
				AddTag("weapon", k.Weapon).
				AddField("tick", k.Tick).
				AddField("headshot", k.Headshot).
				AddField("penetrated", k.Penetrated).
				AddField("assisted_flash", k.AssistedFlash).
				SetTime(tickTime(m, k.Tick))
			if k.VictimID.Valid {
				kp.AddField("victim_id", int64(k.VictimID.Int32))
			}
			if k.AttackerID.Valid {
				kp.AddField("attacker_id", int64(k.AttackerID.Int32))
			}
			if k.AssisterID.Valid {
				kp.AddField("assister_id", int64(k.AssisterID.Int32))
			}
			points = append(points, kp)
		}
	}

	return points
}
