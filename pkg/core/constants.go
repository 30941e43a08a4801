package core

import "fmt"

// Side is one of the two competing teams.
type Side string

const (
	SideT  Side = "t"
	SideCT Side = "ct"
)

// Winner is the numeric winner code carried by round_end events.
type Winner int

const (
	WinnerStalemate         Winner = 1
	WinnerTerrorists        Winner = 2
	WinnerCounterTerrorists Winner = 3
)

var winnerNames = map[Winner]string{
	WinnerStalemate:         "Stalemate",
	WinnerTerrorists:        "Terrorists",
	WinnerCounterTerrorists: "Counter-Terrorists",
}

func (w Winner) String() string {
	if name, ok := winnerNames[w]; ok {
		return name
	}
	return fmt.Sprintf("Winner(%d)", int(w))
}

// Side maps the winner to a scoring side. ok is false for stalemates and
// unknown codes, which add no score.
func (w Winner) Side() (side Side, ok bool) {
	switch w {
	case WinnerTerrorists:
		return SideT, true
	case WinnerCounterTerrorists:
		return SideCT, true
	default:
		return "", false
	}
}

// RoundEndReason is the numeric reason code carried by round_end events.
type RoundEndReason int

var roundEndReasons = map[RoundEndReason]string{
	1:  "Target Bombed",
	2:  "VIP Escaped",
	3:  "VIP Killed",
	4:  "Terrorists Escaped",
	5:  "CTs Stopped Escape",
	6:  "Terrorists Stopped",
	7:  "Bomb Defused",
	8:  "CTs Win",
	9:  "Terrorists Win",
	10: "Draw",
	11: "Hostages Rescued",
	12: "Target Saved",
	13: "Hostages Were Not Rescued",
	14: "Terrorists Have Not Escaped",
	15: "VIP Has Not Escaped",
	16: "Game is Starting",
	17: "Terrorists Surrendered",
	18: "CTs Surrendered",
	19: "Terrorists Have Planted the Bomb",
	20: "CTs Have Reached the Hostage",
}

func (r RoundEndReason) String() string {
	if name, ok := roundEndReasons[r]; ok {
		return name
	}
	return fmt.Sprintf("RoundEndReason(%d)", int(r))
}

// Known reports whether the code is part of the round end vocabulary.
func (r RoundEndReason) Known() bool {
	_, ok := roundEndReasons[r]
	return ok
}

// Hitgroup is the body part code carried by player_hurt events.
type Hitgroup int

var hitgroupNames = map[Hitgroup]string{
	0: "Generic",
	1: "Head",
	2: "Chest",
	3: "Stomach",
	4: "Left Arm",
	5: "Right Arm",
	6: "Left Leg",
	7: "Right Leg",
}

func (h Hitgroup) String() string {
	if name, ok := hitgroupNames[h]; ok {
		return name
	}
	return fmt.Sprintf("Hitgroup(%d)", int(h))
}
