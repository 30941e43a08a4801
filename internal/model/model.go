package model

import (
	"database/sql"
	"time"

	geom "github.com/peterstace/simplefeatures/geom"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Match{},
	&Round{},
	&PlayerRound{},
	&Shot{},
	&Hit{},
	&Kill{},
	&Defusal{},
	&BombCarry{},
	&Orientation{},
}

// Match is one reconstructed demo.
type Match struct {
	gorm.Model
	DemoPath  string    `json:"demoPath" gorm:"size:512"`
	DemoType  string    `json:"demoType" gorm:"size:32;index:idx_match_demo_type"`
	TickRate  int       `json:"tickRate"`
	StartedAt time.Time `json:"startedAt" gorm:"type:timestamptz;index:idx_match_started_at"`

	Phase               string `json:"phase" gorm:"size:16"`
	RoundCount          int    `json:"roundCount"`
	ScoreT              int    `json:"scoreT"`
	ScoreCT             int    `json:"scoreCt"`
	InOvertime          bool   `json:"inOvertime"`
	OvertimeIndex       int    `json:"overtimeIndex"`
	OvertimeScoreTarget int    `json:"overtimeScoreTarget"`

	// UnknownFields is a JSON object of "event.field" -> occurrences
	UnknownFields datatypes.JSON `json:"unknownFields"`

	Rounds []Round `json:"rounds" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Match) TableName() string {
	return "matches"
}

// Round is one round of a match.
type Round struct {
	ID      uint `json:"id" gorm:"primarykey;autoIncrement;"`
	MatchID uint `json:"matchId" gorm:"index:idx_round_match_id"`

	Number    int           `json:"number" gorm:"index:idx_round_number"`
	StartTick int           `json:"startTick"`
	EndTick   sql.NullInt64 `json:"endTick" gorm:"default:NULL"`

	// EndReason is the numeric code, EndReasonName its label
	EndReason     sql.NullInt16 `json:"endReason" gorm:"default:NULL"`
	EndReasonName string        `json:"endReasonName" gorm:"size:64"`
	Winner        string        `json:"winner" gorm:"size:4"` // t, ct, or empty for a stalemate
	Overtime      bool          `json:"overtime"`

	// Score is a JSON object {"t": n, "ct": n} taken when the round ended
	Score datatypes.JSON `json:"score"`

	Players      []PlayerRound `json:"players" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Shots        []Shot        `json:"shots" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Hits         []Hit         `json:"hits" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Kills        []Kill        `json:"kills" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Defusals     []Defusal     `json:"defusals" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	BombCarries  []BombCarry   `json:"bombCarries" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Orientations []Orientation `json:"orientations" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (*Round) TableName() string {
	return "rounds"
}

// PlayerRound holds the per-round counters of one player.
type PlayerRound struct {
	ID       uint `json:"id" gorm:"primarykey;autoIncrement;"`
	RoundID  uint `json:"roundId" gorm:"index:idx_playerround_round_id"`
	PlayerID int  `json:"playerId" gorm:"index:idx_playerround_player_id"`

	Username  string `json:"username" gorm:"size:64"`
	SteamID64 string `json:"steamId64" gorm:"size:20;index:idx_playerround_steamid"`

	ShotCount       int           `json:"shotCount"`
	HitsGiven       int           `json:"hitsGiven"`
	HitsTaken       int           `json:"hitsTaken"`
	DamageGiven     int           `json:"damageGiven"`
	Kills           int           `json:"kills"`
	Deaths          int           `json:"deaths"`
	Assists         int           `json:"assists"`
	Footsteps       int           `json:"footsteps"`
	StartedWithBomb bool          `json:"startedWithBomb"`
	BombPlantedTick sql.NullInt64 `json:"bombPlantedTick" gorm:"default:NULL"`
}

func (*PlayerRound) TableName() string {
	return "player_rounds"
}

// Shot is one weapon_fire.
type Shot struct {
	ID       uint   `json:"id" gorm:"primarykey;autoIncrement;"`
	RoundID  uint   `json:"roundId" gorm:"index:idx_shot_round_id"`
	PlayerID int    `json:"playerId"`
	Tick     int    `json:"tick"`
	Weapon   string `json:"weapon" gorm:"size:64"`
	Silenced bool   `json:"silenced"`
}

func (*Shot) TableName() string {
	return "shots"
}

// Hit is one player_hurt.
type Hit struct {
	ID         uint          `json:"id" gorm:"primarykey;autoIncrement;"`
	RoundID    uint          `json:"roundId" gorm:"index:idx_hit_round_id"`
	Tick       int           `json:"tick"`
	VictimID   int           `json:"victimId" gorm:"index:idx_hit_victim_id"`
	AttackerID sql.NullInt32 `json:"attackerId" gorm:"index:idx_hit_attacker_id;default:NULL"`

	Health       int    `json:"health"`
	Armor        int    `json:"armor"`
	Weapon       string `json:"weapon" gorm:"size:64"`
	DmgHealth    int    `json:"dmgHealth"`
	DmgArmor     int    `json:"dmgArmor"`
	Hitgroup     int    `json:"hitgroup"`
	HitgroupName string `json:"hitgroupName" gorm:"size:16"`
}

func (*Hit) TableName() string {
	return "hits"
}

// Kill is one player_death. Attacker and assister are NULL when absent.
type Kill struct {
	ID         uint          `json:"id" gorm:"primarykey;autoIncrement;"`
	RoundID    uint          `json:"roundId" gorm:"index:idx_kill_round_id"`
	Tick       int           `json:"tick"`
	VictimID   sql.NullInt32 `json:"victimId" gorm:"index:idx_kill_victim_id;default:NULL"`
	AttackerID sql.NullInt32 `json:"attackerId" gorm:"index:idx_kill_attacker_id;default:NULL"`
	AssisterID sql.NullInt32 `json:"assisterId" gorm:"default:NULL"`

	AssistedFlash bool   `json:"assistedFlash"`
	Weapon        string `json:"weapon" gorm:"size:64"`
	WeaponItemID  string `json:"weaponItemId" gorm:"size:32"`
	Headshot      bool   `json:"headshot"`
	Penetrated    int    `json:"penetrated"`
}

func (*Kill) TableName() string {
	return "kills"
}

// Defusal is one defuse attempt.
type Defusal struct {
	ID        uint          `json:"id" gorm:"primarykey;autoIncrement;"`
	RoundID   uint          `json:"roundId" gorm:"index:idx_defusal_round_id"`
	PlayerID  int           `json:"playerId"`
	HasKit    bool          `json:"hasKit"`
	StartTick int           `json:"startTick"`
	EndTick   sql.NullInt64 `json:"endTick" gorm:"default:NULL"`
	Success   bool          `json:"success"`
}

func (*Defusal) TableName() string {
	return "defusals"
}

// BombCarry is a closed tick interval during which a player held the bomb.
type BombCarry struct {
	ID        uint `json:"id" gorm:"primarykey;autoIncrement;"`
	RoundID   uint `json:"roundId" gorm:"index:idx_bombcarry_round_id"`
	PlayerID  int  `json:"playerId"`
	StartTick int  `json:"startTick"`
	EndTick   int  `json:"endTick"`
}

func (*BombCarry) TableName() string {
	return "bomb_carries"
}

// Orientation is a position and view angle sample. Position is an empty
// point when the sample only carried a facing.
type Orientation struct {
	ID       uint            `json:"id" gorm:"primarykey;autoIncrement;"`
	RoundID  uint            `json:"roundId" gorm:"index:idx_orientation_round_id"`
	PlayerID int             `json:"playerId" gorm:"index:idx_orientation_player_id"`
	Tick     int             `json:"tick"`
	Position geom.Point      `json:"position"`
	Pitch    sql.NullFloat64 `json:"pitch" gorm:"default:NULL"`
	Yaw      sql.NullFloat64 `json:"yaw" gorm:"default:NULL"`
}

func (*Orientation) TableName() string {
	return "orientations"
}
