package v1

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/ThePyrotechnic/openscoreboard/internal/model"
)

// Build creates a v1 export from a converted match
func Build(m model.Match) Export {
	export := Export{
		Version: Version,
		Demo: Demo{
			Path:      m.DemoPath,
			Type:      m.DemoType,
			TickRate:  m.TickRate,
			StartedAt: m.StartedAt.UTC().Format(time.RFC3339),
		},
		Phase:  m.Phase,
		Score:  Score{T: m.ScoreT, CT: m.ScoreCT},
		Rounds: make([]Round, 0, len(m.Rounds)),
	}
	if m.InOvertime {
		export.Overtime = &OT{Index: m.OvertimeIndex, Target: m.OvertimeScoreTarget}
	}
	if len(m.UnknownFields) > 0 {
		var unknown map[string]int
		if err := json.Unmarshal(m.UnknownFields, &unknown); err == nil && len(unknown) > 0 {
			export.UnknownFields = unknown
		}
	}

	for _, r := range m.Rounds {
		export.Rounds = append(export.Rounds, buildRound(r))
	}
	return export
}

func buildRound(r model.Round) Round {
	round := Round{
		Number:     r.Number,
		StartTick:  r.StartTick,
		EndTick:    nullInt64(r.EndTick),
		Winner:     r.Winner,
		ReasonName: r.EndReasonName,
		Overtime:   r.Overtime,
		Players:    make([]Player, 0, len(r.Players)),
		Kills:      make([][]any, 0, len(r.Kills)),
		Defusals:   make([][]any, 0, len(r.Defusals)),
	}
	if r.EndReason.Valid {
		reason := r.EndReason.Int16
		round.Reason = &reason
	}
	if len(r.Score) > 0 && string(r.Score) != "null" {
		var score Score
		if err := json.Unmarshal(r.Score, &score); err == nil {
			round.Score = &score
		}
	}

	headshots := make(map[int]int)
	for _, k := range r.Kills {
		if k.Headshot && k.AttackerID.Valid {
			headshots[int(k.AttackerID.Int32)]++
		}
		round.Kills = append(round.Kills, []any{
			k.Tick,
			playerOrNone(k.VictimID),
			playerOrNone(k.AttackerID),
			playerOrNone(k.AssisterID),
			k.Weapon,
			boolToInt(k.Headshot),
		})
	}

	carries := make(map[int][][2]int)
	for _, c := range r.BombCarries {
		carries[c.PlayerID] = append(carries[c.PlayerID], [2]int{c.StartTick, c.EndTick})
	}

	for _, p := range r.Players {
		round.Players = append(round.Players, Player{
			ID:              p.PlayerID,
			Name:            p.Username,
			SteamID64:       p.SteamID64,
			Kills:           p.Kills,
			Deaths:          p.Deaths,
			Assists:         p.Assists,
			Shots:           p.ShotCount,
			HitsGiven:       p.HitsGiven,
			HitsTaken:       p.HitsTaken,
			Damage:          p.DamageGiven,
			Headshots:       headshots[p.PlayerID],
			Footsteps:       p.Footsteps,
			StartedWithBomb: p.StartedWithBomb,
			BombPlantedTick: nullInt64(p.BombPlantedTick),
			BombCarries:     carries[p.PlayerID],
		})
	}

	for _, d := range r.Defusals {
		var end any
		if d.EndTick.Valid {
			end = d.EndTick.Int64
		}
		round.Defusals = append(round.Defusals, []any{
			d.PlayerID,
			d.StartTick,
			end,
			boolToInt(d.HasKit),
			boolToInt(d.Success),
		})
	}

	return round
}

func nullInt64(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	return &v.Int64
}

func playerOrNone(id sql.NullInt32) int {
	if !id.Valid {
		return -1
	}
	return int(id.Int32)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
