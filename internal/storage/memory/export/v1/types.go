// Package v1 contains the v1 JSON scoreboard export format.
package v1

// Version is written into every export.
const Version = "1"

// Export is the root JSON structure for v1 format
type Export struct {
	Version  string  `json:"version"`
	Demo     Demo    `json:"demo"`
	Phase    string  `json:"phase"`
	Score    Score   `json:"score"`
	Overtime *OT     `json:"overtime,omitempty"`
	Rounds   []Round `json:"rounds"`

	// UnknownFields maps "event.field" to occurrences
	UnknownFields map[string]int `json:"unknownFields,omitempty"`
}

// Demo identifies the source demo
type Demo struct {
	Path      string `json:"path"`
	Type      string `json:"type"`
	TickRate  int    `json:"tickRate"`
	StartedAt string `json:"startedAt"`
}

// Score is a t/ct pair
type Score struct {
	T  int `json:"t"`
	CT int `json:"ct"`
}

// OT describes the overtime state at the end of the demo
type OT struct {
	Index  int `json:"index"`
	Target int `json:"target"`
}

// Round is one round with its players and kill feed
type Round struct {
	Number     int      `json:"number"`
	StartTick  int      `json:"startTick"`
	EndTick    *int64   `json:"endTick"`
	Winner     string   `json:"winner,omitempty"`
	Reason     *int16   `json:"reason,omitempty"`
	ReasonName string   `json:"reasonName,omitempty"`
	Overtime   bool     `json:"overtime"`
	Score      *Score   `json:"score,omitempty"`
	Players    []Player `json:"players"`

	// Kills rows are [tick, victim, attacker, assister, weapon, headshot]
	// with -1 for a missing player
	Kills [][]any `json:"kills"`
	// Defusals rows are [player, startTick, endTick, hasKit, success]
	Defusals [][]any `json:"defusals"`
}

// Player is one player's round summary
type Player struct {
	ID              int      `json:"id"`
	Name            string   `json:"name,omitempty"`
	SteamID64       string   `json:"steamId64,omitempty"`
	Kills           int      `json:"kills"`
	Deaths          int      `json:"deaths"`
	Assists         int      `json:"assists"`
	Shots           int      `json:"shots"`
	HitsGiven       int      `json:"hitsGiven"`
	HitsTaken       int      `json:"hitsTaken"`
	Damage          int      `json:"damage"`
	Headshots       int      `json:"headshots"`
	Footsteps       int      `json:"footsteps"`
	StartedWithBomb bool     `json:"startedWithBomb"`
	BombPlantedTick *int64   `json:"bombPlantedTick,omitempty"`
	BombCarries     [][2]int `json:"bombCarries,omitempty"`
}
