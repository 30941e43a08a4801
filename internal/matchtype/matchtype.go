// Package matchtype holds the per demo-format rules the reconstructor is
// parameterised with: timing, live detection and scoring.
package matchtype

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
)

var (
	// ErrUnsupported is returned for a demo format that is recognised but
	// whose rules are not modelled.
	ErrUnsupported = errors.New("demo type is not supported")

	// ErrUnknown is returned for a demo format name nobody registered.
	ErrUnknown = errors.New("unknown demo type")
)

// Rules are the scoring, overtime and side switch parameters.
type Rules struct {
	// RegulationTarget is the score that wins outside overtime.
	RegulationTarget int
	// OvertimeStartTarget is the score that wins the first overtime.
	OvertimeStartTarget int
	// OvertimeStep is added to the target for every further tied overtime.
	OvertimeStep int
	// SwitchRound is the round after which the sides swap.
	SwitchRound int
	// RearmOnSwitch drops the match back to warmup at the side switch so
	// live detection has to confirm the second half.
	RearmOnSwitch bool
}

// DefaultRules are MR15 rules with MR3 overtimes.
var DefaultRules = Rules{
	RegulationTarget:    16,
	OvertimeStartTarget: 19,
	OvertimeStep:        3,
	SwitchRound:         15,
}

// Policy parameterises match reconstruction for one demo format.
type Policy interface {
	Name() string
	// TickRate is ticks per second.
	TickRate() int
	// BuyDuration and FreezeDuration are in seconds.
	BuyDuration() int
	FreezeDuration() int
	// ConfirmLive observes an event while the match is in warmup and
	// reports whether the match went live on it.
	ConfirmLive(event core.Event) bool
	// Rearm resets live detection after the match drops back to warmup.
	Rearm()
	Rules() Rules
}

// Factory builds a fresh policy. Policies carry live-detection state, so
// each decode run gets its own.
type Factory func() (Policy, error)

var registry = map[string]Factory{
	ESEA:  func() (Policy, error) { return NewESEA(), nil },
	Valve: newValve,
}

// Get returns a new policy for the named demo format.
func Get(name string) (Policy, error) {
	factory, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", ErrUnknown, name, strings.Join(Names(), ", "))
	}
	return factory()
}

// Names lists the registered demo formats.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TicksToSeconds converts a tick count to whole seconds, rounding up.
func TicksToSeconds(p Policy, ticks int) int {
	return int(math.Ceil(float64(ticks) / float64(p.TickRate())))
}
