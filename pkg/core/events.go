package core

// Event type tags as printed by the decoder.
const (
	TypeBeginNewMatch   = "begin_new_match"
	TypeRoundPrestart   = "round_prestart"
	TypeRoundEnd        = "round_end"
	TypeBombPickup      = "bomb_pickup"
	TypeBombDropped     = "bomb_dropped"
	TypeBombPlanted     = "bomb_planted"
	TypeBombBeginDefuse = "bomb_begindefuse"
	TypeBombDefused     = "bomb_defused"
	TypePlayerFootstep  = "player_footstep"
	TypeWeaponFire      = "weapon_fire"
	TypePlayerDeath     = "player_death"
	TypePlayerHurt      = "player_hurt"
)

// Event is one decoded block of the log. Concrete types are the structs
// below; anything the decoder prints that is not modelled arrives as
// *Generic.
type Event interface {
	EventHeader() *Header
}

// Header carries the fields every event may have.
type Header struct {
	Type string
	Line int
	Tick int

	// Player is the acting player ("userid"). Attacker and Assister are
	// only set when the block carries them.
	Player   *Actor
	Attacker *Actor
	Assister *Actor
}

// EventHeader implements Event.
func (h *Header) EventHeader() *Header { return h }

// BeginNewMatch is emitted on every match restart.
type BeginNewMatch struct {
	Header
}

// RoundPrestart fires on the first tick of a round, when players respawn.
type RoundPrestart struct {
	Header
}

// RoundEnd closes a round.
type RoundEnd struct {
	Header
	Winner  Winner
	Reason  *RoundEndReason
	Message string
}

// BombPickup is the acting player picking the bomb up.
type BombPickup struct {
	Header
}

// BombDropped is the acting player dropping the bomb.
type BombDropped struct {
	Header
}

// BombPlanted is the acting player planting the bomb.
type BombPlanted struct {
	Header
	Site *int
}

// BombBeginDefuse is the acting player starting a defuse.
type BombBeginDefuse struct {
	Header
	HasKit bool
}

// BombDefused is the acting player completing a defuse.
type BombDefused struct {
	Header
	Site *int
}

// PlayerFootstep is one audible footstep.
type PlayerFootstep struct {
	Header
}

// WeaponFire is one shot.
type WeaponFire struct {
	Header
	Weapon   string
	Silenced bool
}

// PlayerDeath names the victim in Player, the killer in Attacker and the
// optional assister in Assister.
type PlayerDeath struct {
	Header
	Weapon        string
	WeaponItemID  string
	Headshot      bool
	Penetrated    int
	AssistedFlash bool
	NoScope       bool
	ThruSmoke     bool
	AttackerBlind bool
	Dominated     bool
	Revenge       bool
}

// PlayerHurt names the victim in Player and the shooter in Attacker.
type PlayerHurt struct {
	Header
	Health    int
	Armor     int
	Weapon    string
	DmgHealth int
	DmgArmor  int
	Hitgroup  Hitgroup
}

// Generic is any event type the reconstructor does not model. Only the
// header is kept.
type Generic struct {
	Header
}
