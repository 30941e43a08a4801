package match

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"github.com/ThePyrotechnic/openscoreboard/internal/matchtype"
	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
)

// ErrInconsistentState is returned when an event needs an entity the
// state does not have open, such as a drop with no carry in progress.
var ErrInconsistentState = errors.New("inconsistent match state")

// Reconstructor folds events into a State under one demo-format policy.
type Reconstructor struct {
	policy matchtype.Policy
	logger *slog.Logger
	state  *State

	unknownTypes map[string]struct{}
}

// New creates a reconstructor in warmup.
func New(policy matchtype.Policy, logger *slog.Logger) *Reconstructor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconstructor{
		policy:       policy,
		logger:       logger,
		state:        newState(),
		unknownTypes: make(map[string]struct{}),
	}
}

// State returns the live state. Callers must not mutate it while events
// are still being applied.
func (r *Reconstructor) State() *State {
	return r.state
}

// Concluded reports whether a side has won. Further events are ignored.
func (r *Reconstructor) Concluded() bool {
	return r.state.Phase == Concluded
}

// LogAttrs describes the current position in the match. It is meant to be
// used as a logging.ContextProvider.
func (r *Reconstructor) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("phase", r.state.Phase.String()),
		slog.Int("round", r.state.RoundNumber),
	}
}

// Run applies events until the sequence ends, the match concludes or ctx
// is cancelled. Stopping at conclusion leaves the rest of the input
// unread.
func (r *Reconstructor) Run(ctx context.Context, events iter.Seq2[core.Event, error]) (*State, error) {
	for event, err := range events {
		if err != nil {
			return r.state, err
		}
		if err := ctx.Err(); err != nil {
			return r.state, err
		}
		if err := r.Apply(event); err != nil {
			return r.state, err
		}
		if r.Concluded() {
			r.logger.Info("Match concluded",
				"line", event.EventHeader().Line,
				"t", r.state.Score[core.SideT],
				"ct", r.state.Score[core.SideCT])
			break
		}
	}
	return r.state, nil
}

// Apply folds a single event into the state.
func (r *Reconstructor) Apply(event core.Event) error {
	s := r.state
	h := event.EventHeader()

	switch s.Phase {
	case Concluded:
		return nil
	case Warmup:
		if r.policy.ConfirmLive(event) {
			s.Phase = Live
			s.startRound(h.Tick)
			r.logger.Info("Match is live", "line", h.Line, "tick", h.Tick, "round", s.RoundNumber)
		}
		return nil
	}

	round := s.CurrentRound()

	r.trackOrientation(round, h)

	if s.CanBuy {
		elapsed := matchtype.TicksToSeconds(r.policy, h.Tick-round.StartTick)
		if elapsed > r.policy.BuyDuration()+r.policy.FreezeDuration() {
			s.CanBuy = false
		}
	}

	switch e := event.(type) {
	case *core.RoundPrestart:
		round = s.startRound(h.Tick)
		r.logger.Debug("Round started", "round", round.Number, "tick", h.Tick)

	case *core.RoundEnd:
		r.endRound(round, e)

	case *core.BombPickup:
		if h.Player == nil {
			return inconsistent(h, "no player")
		}
		p := round.Player(h.Player.PlayerID)
		if p.bombCarryStart != nil {
			r.logger.Warn("Bomb picked up while already carrying, restarting carry",
				"line", h.Line, "player", p.ID, "carry_start", *p.bombCarryStart)
		}
		tick := h.Tick
		p.bombCarryStart = &tick
		if h.Tick == round.StartTick {
			p.StartedWithBomb = true
		}

	case *core.BombDropped:
		if _, err := r.closeCarry(round, h); err != nil {
			return err
		}

	case *core.BombPlanted:
		p, err := r.closeCarry(round, h)
		if err != nil {
			return err
		}
		tick := h.Tick
		p.BombPlantedTick = &tick

	case *core.BombBeginDefuse:
		if h.Player == nil {
			return inconsistent(h, "no player")
		}
		p := round.Player(h.Player.PlayerID)
		d := &Defusal{Actor: h.Player, HasKit: e.HasKit, StartTick: h.Tick}
		p.Defusals = append(p.Defusals, d)
		p.openDefusal = d

	case *core.BombDefused:
		if h.Player == nil {
			return inconsistent(h, "no player")
		}
		p := round.Player(h.Player.PlayerID)
		if p.openDefusal == nil {
			return inconsistent(h, fmt.Sprintf("player %d has no defusal in progress", p.ID))
		}
		tick := h.Tick
		p.openDefusal.Success = true
		p.openDefusal.EndTick = &tick
		p.openDefusal = nil

	case *core.PlayerFootstep:
		if h.Player != nil {
			round.Player(h.Player.PlayerID).Footsteps++
		}

	case *core.WeaponFire:
		if h.Player == nil {
			return inconsistent(h, "no player")
		}
		p := round.Player(h.Player.PlayerID)
		p.Shots = append(p.Shots, &Shot{
			Actor:    h.Player,
			Weapon:   e.Weapon,
			Silenced: e.Silenced,
			Tick:     h.Tick,
		})

	case *core.PlayerDeath:
		d := &Death{
			Victim:        h.Player,
			Attacker:      h.Attacker,
			Assister:      h.Assister,
			AssistedFlash: e.AssistedFlash,
			Weapon:        e.Weapon,
			WeaponItemID:  e.WeaponItemID,
			Headshot:      e.Headshot,
			Penetrated:    e.Penetrated,
			Tick:          h.Tick,
		}
		if h.Player != nil {
			p := round.Player(h.Player.PlayerID)
			p.Deaths = append(p.Deaths, d)
		}
		if h.Attacker != nil {
			p := round.Player(h.Attacker.PlayerID)
			p.Kills = append(p.Kills, d)
		}
		if h.Assister != nil {
			p := round.Player(h.Assister.PlayerID)
			p.Assists = append(p.Assists, d)
		}

	case *core.PlayerHurt:
		if h.Player == nil || h.Player.PlayerID == 0 {
			return nil
		}
		hit := &Hit{
			Victim:    h.Player,
			Attacker:  h.Attacker,
			Health:    e.Health,
			Armor:     e.Armor,
			Weapon:    e.Weapon,
			DmgHealth: e.DmgHealth,
			DmgArmor:  e.DmgArmor,
			Hitgroup:  e.Hitgroup,
			Tick:      h.Tick,
		}
		victim := round.Player(h.Player.PlayerID)
		victim.HitsTaken = append(victim.HitsTaken, hit)
		if h.Attacker != nil {
			attacker := round.Player(h.Attacker.PlayerID)
			attacker.HitsGiven = append(attacker.HitsGiven, hit)
		}

	case *core.BeginNewMatch:
		r.logger.Debug("Ignoring restart while live", "line", h.Line)

	default:
		if _, seen := r.unknownTypes[h.Type]; !seen {
			r.unknownTypes[h.Type] = struct{}{}
			r.logger.Info("Ignoring unhandled event type", "type", h.Type, "line", h.Line)
		}
	}
	return nil
}

// trackOrientation records the player's orientation, then the attacker's
// and the assister's. Each link is only followed if the previous one was
// present.
func (r *Reconstructor) trackOrientation(round *Round, h *core.Header) {
	if h.Player == nil {
		return
	}
	r.orient(round, h.Player, h.Tick)
	if h.Attacker == nil {
		return
	}
	r.orient(round, h.Attacker, h.Tick)
	if h.Assister == nil {
		return
	}
	r.orient(round, h.Assister, h.Tick)
}

func (r *Reconstructor) orient(round *Round, actor *core.Actor, tick int) {
	if actor.IsWorld() {
		return
	}
	if actor.Position == nil && actor.Facing == nil {
		return
	}
	round.Player(actor.PlayerID).updateOrientation(actor, tick)
}

func (r *Reconstructor) closeCarry(round *Round, h *core.Header) (*Player, error) {
	if h.Player == nil {
		return nil, inconsistent(h, "no player")
	}
	p := round.Player(h.Player.PlayerID)
	if p.bombCarryStart == nil {
		return nil, inconsistent(h, fmt.Sprintf("player %d is not carrying the bomb", p.ID))
	}
	p.BombCarryIntervals = append(p.BombCarryIntervals, CarryInterval{Start: *p.bombCarryStart, End: h.Tick})
	p.bombCarryStart = nil
	return p, nil
}

func (r *Reconstructor) endRound(round *Round, e *core.RoundEnd) {
	s := r.state
	rules := r.policy.Rules()

	tick := e.Tick
	round.EndTick = &tick
	round.EndReason = e.Reason
	if e.Reason != nil && !e.Reason.Known() {
		r.logger.Warn("Unknown round end reason", "round", round.Number, "reason", int(*e.Reason), "line", e.Line)
	}

	side, ok := e.Winner.Side()
	if ok {
		s.Score[side]++
		round.Winner = &side
	}
	t, ct := s.Score[core.SideT], s.Score[core.SideCT]
	round.Score = map[core.Side]int{core.SideT: t, core.SideCT: ct}
	r.logger.Info("Round ended",
		"round", round.Number,
		"winner", e.Winner.String(),
		"t", t,
		"ct", ct,
		"overtime", s.InOvertime)

	if s.InOvertime {
		if t >= s.OvertimeScoreTarget || ct >= s.OvertimeScoreTarget {
			s.Phase = Concluded
			return
		}
		if t == s.OvertimeScoreTarget-1 && ct == s.OvertimeScoreTarget-1 {
			s.OvertimeScoreTarget += rules.OvertimeStep
			s.OvertimeIndex++
			r.logger.Info("Overtime extended", "index", s.OvertimeIndex, "target", s.OvertimeScoreTarget)
		}
	} else {
		if t >= rules.RegulationTarget || ct >= rules.RegulationTarget {
			s.Phase = Concluded
			return
		}
		if t == rules.RegulationTarget-1 && ct == rules.RegulationTarget-1 {
			s.InOvertime = true
			s.OvertimeIndex = 1
			s.OvertimeScoreTarget = rules.OvertimeStartTarget
			r.logger.Info("Overtime started", "target", s.OvertimeScoreTarget)
		}
	}

	if s.RoundNumber == rules.SwitchRound {
		s.Score[core.SideT], s.Score[core.SideCT] = ct, t
		r.logger.Info("Sides switched", "t", ct, "ct", t)
		if rules.RearmOnSwitch {
			s.Phase = Warmup
			r.policy.Rearm()
		}
	}
}

func inconsistent(h *core.Header, detail string) error {
	return fmt.Errorf("%w: %s on line %d: %s", ErrInconsistentState, h.Type, h.Line, detail)
}
