package matchtype

import "github.com/ThePyrotechnic/openscoreboard/pkg/core"

// ESEA is the restart-confirmed format.
const ESEA = "esea"

// eseaRestarts is how many begin_new_match events precede the real start.
// The first ones come from the warmup and knife rounds.
const eseaRestarts = 4

// RestartConfirmed goes live after a fixed number of match restarts.
type RestartConfirmed struct {
	name     string
	tickRate int
	buy      int
	freeze   int
	restarts int
	rules    Rules

	seen int
}

// NewESEA returns the policy for ESEA demos.
func NewESEA() *RestartConfirmed {
	rules := DefaultRules
	rules.RearmOnSwitch = true
	return &RestartConfirmed{
		name:     ESEA,
		tickRate: 128,
		buy:      15,
		freeze:   15,
		restarts: eseaRestarts,
		rules:    rules,
	}
}

func (p *RestartConfirmed) Name() string        { return p.name }
func (p *RestartConfirmed) TickRate() int       { return p.tickRate }
func (p *RestartConfirmed) BuyDuration() int    { return p.buy }
func (p *RestartConfirmed) FreezeDuration() int { return p.freeze }
func (p *RestartConfirmed) Rules() Rules        { return p.rules }

// ConfirmLive counts restarts and fires on the configured one. Other
// warmup events are ignored.
func (p *RestartConfirmed) ConfirmLive(event core.Event) bool {
	if event.EventHeader().Type != core.TypeBeginNewMatch {
		return false
	}
	p.seen++
	if p.seen < p.restarts {
		return false
	}
	p.seen = 0
	return true
}

// Rearm clears the restart count.
func (p *RestartConfirmed) Rearm() {
	p.seen = 0
}
