package parser

import (
	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
)

// Decode turns a raw block into its typed event. Event types the
// reconstructor does not model become *core.Generic. Typing already
// happened during tokenization, so decoding cannot fail; absent fields
// keep their zero value.
func (p *Parser) Decode(raw *RawEvent) core.Event {
	f := fields(raw.Fields)

	h := core.Header{
		Type:     raw.Type,
		Line:     raw.Line,
		Tick:     int(f.int("tick")),
		Player:   f.actor("userid"),
		Attacker: f.actor("attacker"),
		Assister: f.actor("assister"),
	}

	switch raw.Type {
	case core.TypeBeginNewMatch:
		return &core.BeginNewMatch{Header: h}
	case core.TypeRoundPrestart:
		return &core.RoundPrestart{Header: h}
	case core.TypeRoundEnd:
		e := &core.RoundEnd{
			Header:  h,
			Winner:  core.Winner(f.int("winner")),
			Message: f.str("message"),
		}
		if v, ok := f.value("reason"); ok && v.Kind == core.KindInt {
			reason := core.RoundEndReason(v.Int)
			e.Reason = &reason
		}
		return e
	case core.TypeBombPickup:
		return &core.BombPickup{Header: h}
	case core.TypeBombDropped:
		return &core.BombDropped{Header: h}
	case core.TypeBombPlanted:
		return &core.BombPlanted{Header: h, Site: f.optInt("site")}
	case core.TypeBombBeginDefuse:
		return &core.BombBeginDefuse{Header: h, HasKit: f.bool("haskit")}
	case core.TypeBombDefused:
		return &core.BombDefused{Header: h, Site: f.optInt("site")}
	case core.TypePlayerFootstep:
		return &core.PlayerFootstep{Header: h}
	case core.TypeWeaponFire:
		return &core.WeaponFire{
			Header:   h,
			Weapon:   f.str("weapon"),
			Silenced: f.bool("silenced"),
		}
	case core.TypePlayerDeath:
		return &core.PlayerDeath{
			Header:        h,
			Weapon:        f.str("weapon"),
			WeaponItemID:  f.str("weapon_itemid"),
			Headshot:      f.bool("headshot"),
			Penetrated:    int(f.int("penetrated")),
			AssistedFlash: f.bool("assistedflash"),
			NoScope:       f.bool("noscope"),
			ThruSmoke:     f.bool("thrusmoke"),
			AttackerBlind: f.bool("attackerblind"),
			Dominated:     f.bool("dominated"),
			Revenge:       f.bool("revenge"),
		}
	case core.TypePlayerHurt:
		return &core.PlayerHurt{
			Header:    h,
			Health:    int(f.int("health")),
			Armor:     int(f.int("armor")),
			Weapon:    f.str("weapon"),
			DmgHealth: int(f.int("dmg_health")),
			DmgArmor:  int(f.int("dmg_armor")),
			Hitgroup:  core.Hitgroup(f.int("hitgroup")),
		}
	default:
		return &core.Generic{Header: h}
	}
}

// fields reads typed values out of a block by name.
type fields map[string]*Field

func (f fields) value(key string) (core.Value, bool) {
	field, ok := f[key]
	if !ok {
		return core.Value{}, false
	}
	return field.Value, true
}

func (f fields) int(key string) int64 {
	v, _ := f.value(key)
	return v.Int
}

func (f fields) optInt(key string) *int {
	v, ok := f.value(key)
	if !ok || v.Kind != core.KindInt {
		return nil
	}
	i := int(v.Int)
	return &i
}

func (f fields) bool(key string) bool {
	v, _ := f.value(key)
	return v.Bool
}

func (f fields) str(key string) string {
	v, _ := f.value(key)
	return v.Str
}

// actor returns the actor under key with its nested orientation and team
// attached.
func (f fields) actor(key string) *core.Actor {
	field, ok := f[key]
	if !ok || field.Value.Kind != core.KindActor {
		return nil
	}
	actor := field.Value.Actor
	if v, ok := field.Nested["position"]; ok && v.Kind == core.KindPosition {
		actor.Position = v.Position
	}
	if v, ok := field.Nested["facing"]; ok && v.Kind == core.KindFacing {
		actor.Facing = v.Facing
	}
	if v, ok := field.Nested["team"]; ok {
		actor.Team = v.Str
	}
	return actor
}
