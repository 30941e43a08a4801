package match

import (
	"time"

	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
)

// Meta describes the demo a State was reconstructed from.
type Meta struct {
	DemoPath  string
	DemoType  string
	TickRate  int
	StartedAt time.Time
}

// Record is the finished result of one decode run, handed to a storage
// backend.
type Record struct {
	Meta  Meta
	State *State

	// UnknownFields counts field names the typing tables did not know,
	// keyed by "event.field".
	UnknownFields map[string]int
}

// FinalScore returns the score as t, ct.
func (r *Record) FinalScore() (t, ct int) {
	return r.State.Score[core.SideT], r.State.Score[core.SideCT]
}
