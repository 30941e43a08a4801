// Package match replays typed events into round-by-round match state.
package match

import (
	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
)

// Phase is where the match is in its lifecycle.
type Phase int

const (
	Warmup Phase = iota
	Live
	Concluded
)

func (p Phase) String() string {
	switch p {
	case Warmup:
		return "warmup"
	case Live:
		return "live"
	case Concluded:
		return "concluded"
	default:
		return "unknown"
	}
}

// State is the authoritative match state for one decode run. It is owned
// by a single Reconstructor and is not safe for concurrent use.
type State struct {
	Phase       Phase
	RoundNumber int
	Score       map[core.Side]int
	Rounds      []*Round

	CanBuy              bool
	InOvertime          bool
	OvertimeIndex       int
	OvertimeScoreTarget int
}

func newState() *State {
	return &State{
		Phase: Warmup,
		Score: map[core.Side]int{core.SideT: 0, core.SideCT: 0},
	}
}

// MatchIsLive reports whether events currently count.
func (s *State) MatchIsLive() bool {
	return s.Phase == Live
}

// CurrentRound returns the last round, or nil before the match went live.
func (s *State) CurrentRound() *Round {
	if len(s.Rounds) == 0 {
		return nil
	}
	return s.Rounds[len(s.Rounds)-1]
}

func (s *State) startRound(tick int) *Round {
	s.RoundNumber++
	round := &Round{
		Number:    s.RoundNumber,
		StartTick: tick,
		Overtime:  s.InOvertime,
		Players:   make(map[int]*Player),
	}
	s.Rounds = append(s.Rounds, round)
	s.CanBuy = true
	return round
}

// Round is one play segment from freeze time to its resolution.
type Round struct {
	Number    int
	StartTick int
	EndTick   *int
	EndReason *core.RoundEndReason
	Winner    *core.Side
	Overtime  bool
	Players   map[int]*Player

	// Score is the running score once the round ended, before any side
	// switch. Nil while the round is open.
	Score map[core.Side]int
}

// Player returns the stats of the given player in this round, creating
// them on first reference.
func (r *Round) Player(id int) *Player {
	p, ok := r.Players[id]
	if !ok {
		p = &Player{ID: id}
		r.Players[id] = p
	}
	return p
}

// Player holds one player's statistics within a single round.
type Player struct {
	ID int

	Shots     []*Shot
	HitsGiven []*Hit
	HitsTaken []*Hit
	Kills     []*Death
	Deaths    []*Death
	Assists   []*Death
	Defusals  []*Defusal

	LastOrientation    *Orientation
	OrientationHistory []Orientation

	Footsteps          int
	StartedWithBomb    bool
	BombCarryIntervals []CarryInterval
	BombPlantedTick    *int

	bombCarryStart *int
	openDefusal    *Defusal
}

// CarryingBomb reports whether a bomb carry interval is open.
func (p *Player) CarryingBomb() bool {
	return p.bombCarryStart != nil
}

// OpenDefusal returns the unresolved defusal attempt, if any.
func (p *Player) OpenDefusal() *Defusal {
	return p.openDefusal
}

func (p *Player) updateOrientation(actor *core.Actor, tick int) {
	o := Orientation{Position: actor.Position, Facing: actor.Facing, Tick: tick}
	p.OrientationHistory = append(p.OrientationHistory, o)
	p.LastOrientation = &p.OrientationHistory[len(p.OrientationHistory)-1]
}

// Orientation is a known position and view angle at a tick.
type Orientation struct {
	Position *core.Position
	Facing   *core.Facing
	Tick     int
}

// CarryInterval is the tick range a player held the bomb.
type CarryInterval struct {
	Start int
	End   int
}

// Shot is one weapon_fire.
type Shot struct {
	Actor    *core.Actor
	Weapon   string
	Silenced bool
	Tick     int
}

// Hit is one player_hurt, shared between the victim's HitsTaken and the
// attacker's HitsGiven.
type Hit struct {
	Victim    *core.Actor
	Attacker  *core.Actor
	Health    int
	Armor     int
	Weapon    string
	DmgHealth int
	DmgArmor  int
	Hitgroup  core.Hitgroup
	Tick      int
}

// Death is one player_death, shared between the victim's Deaths, the
// killer's Kills and the assister's Assists.
type Death struct {
	Victim        *core.Actor
	Attacker      *core.Actor
	Assister      *core.Actor
	AssistedFlash bool
	Weapon        string
	WeaponItemID  string
	Headshot      bool
	Penetrated    int
	Tick          int
}

// Defusal is one defuse attempt. It is resolved in place when the
// matching bomb_defused arrives.
type Defusal struct {
	Actor     *core.Actor
	HasKit    bool
	StartTick int
	Success   bool
	EndTick   *int
}
