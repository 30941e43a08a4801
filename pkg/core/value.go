// Package core holds the typed vocabulary shared between the event parser,
// the match reconstructor and the storage backends.
package core

import "fmt"

// Kind tags the type carried by a Value.
type Kind uint8

const (
	KindEmpty Kind = iota // numeric or flag field present with no text
	KindBool
	KindInt
	KindFloat
	KindString
	KindActor
	KindPosition
	KindFacing
	KindUnknown // field name outside the typing tables, raw text kept in Str
)

var kindNames = map[Kind]string{
	KindEmpty:    "empty",
	KindBool:     "bool",
	KindInt:      "int",
	KindFloat:    "float",
	KindString:   "string",
	KindActor:    "actor",
	KindPosition: "position",
	KindFacing:   "facing",
	KindUnknown:  "unknown",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Value is one typed field value decoded from the event log.
// Exactly one payload member is meaningful, selected by Kind.
type Value struct {
	Kind     Kind
	Bool     bool
	Int      int64
	Float    float64
	Str      string
	Actor    *Actor
	Position *Position
	Facing   *Facing
}

// Position is a world position in engine units.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Facing is a view angle in degrees.
type Facing struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Actor references a player inside an event. PlayerID is stable for the
// whole match. Position, Facing and Team come from the nested lines the
// decoder prints under the actor when extra info is enabled.
type Actor struct {
	Username  string    `json:"username"`
	SteamID64 string    `json:"steamid64"`
	PlayerID  int       `json:"player_id"`
	Position  *Position `json:"position,omitempty"`
	Facing    *Facing   `json:"facing,omitempty"`
	Team      string    `json:"team,omitempty"`
}

// IsWorld reports whether the actor is the world/console sentinel, which
// carries an empty or all-zero steamid.
func (a *Actor) IsWorld() bool {
	if a == nil {
		return true
	}
	for _, r := range a.SteamID64 {
		if r != '0' {
			return false
		}
	}
	return true
}
