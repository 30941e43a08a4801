package parser

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
)

// fieldKinds is the fixed typing table. Field names not listed here are
// kept as raw text and reported as diagnostics.
var fieldKinds = map[string]core.Kind{
	// actor references
	"userid":   core.KindActor,
	"attacker": core.KindActor,
	"assister": core.KindActor,

	// orientation, printed under an actor
	"position": core.KindPosition,
	"facing":   core.KindFacing,

	// flags, printed as 0/1
	"silenced":      core.KindBool,
	"headshot":      core.KindBool,
	"haskit":        core.KindBool,
	"assistedflash": core.KindBool,
	"noscope":       core.KindBool,
	"thrusmoke":     core.KindBool,
	"attackerblind": core.KindBool,
	"dominated":     core.KindBool,
	"revenge":       core.KindBool,
	"wipe":          core.KindBool,
	"inair":         core.KindBool,

	"tick":         core.KindInt,
	"health":       core.KindInt,
	"armor":        core.KindInt,
	"dmg_health":   core.KindInt,
	"dmg_armor":    core.KindInt,
	"hitgroup":     core.KindInt,
	"winner":       core.KindInt,
	"reason":       core.KindInt,
	"site":         core.KindInt,
	"penetrated":   core.KindInt,
	"entindex":     core.KindInt,
	"player_count": core.KindInt,
	"round":        core.KindInt,
	"defindex":     core.KindInt,
	"legacy":       core.KindInt,
	"nomusic":      core.KindInt,
	"timelimit":    core.KindInt,
	"fraglimit":    core.KindInt,

	"x":              core.KindFloat,
	"y":              core.KindFloat,
	"z":              core.KindFloat,
	"distance":       core.KindFloat,
	"blind_duration": core.KindFloat,

	"weapon":                    core.KindString,
	"weapon_itemid":             core.KindString,
	"weapon_fauxitemid":         core.KindString,
	"weapon_originalowner_xuid": core.KindString,
	"team":                      core.KindString,
	"message":                   core.KindString,
	"objective":                 core.KindString,
	"item":                      core.KindString,
	"text":                      core.KindString,
	"name":                      core.KindString,
	"networkid":                 core.KindString,
	"msgtype":                   core.KindString,
	"address":                   core.KindString,
	"mapname":                   core.KindString,
}

func isActorKey(key string) bool {
	return fieldKinds[key] == core.KindActor
}

// textFallback lists numeric fields that some events fill with free text.
// round_end prints a reason code, player_disconnect a sentence such as
// "Kicked by Console".
var textFallback = map[string]bool{
	"reason": true,
}

var errActorTooFewTokens = errors.New("actor reference needs a steamid and a player id")

// typeValue coerces the text of one field according to the typing table.
func (t *Tokenizer) typeValue(key, value string) (core.Value, error) {
	kind, known := fieldKinds[key]
	if !known {
		t.diagnostics = append(t.diagnostics, Diagnostic{Line: t.lineNo, Event: t.current.Type, Field: key})
		t.parser.logger.Warn("Unknown key", "key", key, "event", t.current.Type, "line", t.lineNo)
		return core.Value{Kind: core.KindUnknown, Str: value}, nil
	}

	switch kind {
	case core.KindActor:
		actor, err := decodeActor(value)
		if err != nil {
			if !isPlayerNotFound(t.prevLine) {
				return core.Value{}, fmt.Errorf("%w: field %s: %v", ErrMalformedLine, key, err)
			}
			id, convErr := strconv.Atoi(value)
			if convErr != nil {
				return core.Value{}, fmt.Errorf("%w: field %s: %v", ErrMalformedLine, key, convErr)
			}
			t.parser.logger.Debug("Using bare player id for missing player", "key", key, "playerId", id, "line", t.lineNo)
			actor = &core.Actor{PlayerID: id}
		}
		return core.Value{Kind: core.KindActor, Actor: actor}, nil

	case core.KindPosition:
		pos, err := decodePosition(value)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: field %s: %v", ErrMalformedLine, key, err)
		}
		return core.Value{Kind: core.KindPosition, Position: pos}, nil

	case core.KindFacing:
		facing, err := decodeFacing(value)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: field %s: %v", ErrMalformedLine, key, err)
		}
		return core.Value{Kind: core.KindFacing, Facing: facing}, nil

	case core.KindString:
		return core.Value{Kind: core.KindString, Str: value}, nil
	}

	if value == "" {
		return core.Value{Kind: core.KindEmpty}, nil
	}

	switch kind {
	case core.KindBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: field %s: %v", ErrMalformedLine, key, err)
		}
		return core.Value{Kind: core.KindBool, Bool: b}, nil
	case core.KindInt:
		i, err := parseIntFromFloat(value)
		if err != nil {
			if textFallback[key] {
				return core.Value{Kind: core.KindString, Str: value}, nil
			}
			return core.Value{}, fmt.Errorf("%w: field %s: %v", ErrMalformedLine, key, err)
		}
		return core.Value{Kind: core.KindInt, Int: i}, nil
	default:
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return core.Value{}, fmt.Errorf("%w: field %s: %v", ErrMalformedLine, key, err)
		}
		return core.Value{Kind: core.KindFloat, Float: f}, nil
	}
}

// parseIntFromFloat parses a string that may be an integer ("32") or float ("32.00") into int64.
// The decoder prints a few counters with a fractional part.
func parseIntFromFloat(s string) (int64, error) {
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int64(f)) {
		return 0, fmt.Errorf("parseIntFromFloat: %q is not a valid int64", s)
	}
	return int64(f), nil
}

// decodeActor splits "<username...> <steamid64> (id:<n>)". Usernames may
// contain spaces.
func decodeActor(value string) (*core.Actor, error) {
	tokens := strings.Fields(value)
	if len(tokens) < 2 {
		return nil, errActorTooFewTokens
	}

	n := len(tokens)
	idText := strings.TrimFunc(tokens[n-1], func(r rune) bool { return !unicode.IsDigit(r) })
	id, err := strconv.Atoi(idText)
	if err != nil {
		return nil, fmt.Errorf("invalid player id %q", tokens[n-1])
	}

	return &core.Actor{
		Username:  strings.Join(tokens[:n-2], " "),
		SteamID64: tokens[n-2],
		PlayerID:  id,
	}, nil
}

// isPlayerNotFound reports whether the decoder said it could not resolve a
// player on the given line, in which case it prints a bare id.
func isPlayerNotFound(line string) bool {
	lower := strings.ToLower(line)
	return strings.Contains(lower, "player") &&
		(strings.Contains(lower, "not found") || strings.Contains(lower, "cannot find"))
}

// decodePosition parses "x, y, z".
func decodePosition(value string) (*core.Position, error) {
	parts := strings.Split(value, ",")
	if len(parts) != 3 {
		return nil, fmt.Errorf("position needs 3 components, got %d", len(parts))
	}
	var xyz [3]float64
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("position component %d: %w", i, err)
		}
		xyz[i] = f
	}
	return &core.Position{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

// decodeFacing parses "pitch:<p>, yaw:<y>".
func decodeFacing(value string) (*core.Facing, error) {
	pitchText, yawText, found := strings.Cut(value, ",")
	if !found {
		return nil, fmt.Errorf("facing needs pitch and yaw")
	}
	pitch, err := strconv.ParseFloat(afterColon(pitchText), 64)
	if err != nil {
		return nil, fmt.Errorf("facing pitch: %w", err)
	}
	yaw, err := strconv.ParseFloat(afterColon(yawText), 64)
	if err != nil {
		return nil, fmt.Errorf("facing yaw: %w", err)
	}
	return &core.Facing{Pitch: pitch, Yaw: yaw}, nil
}

func afterColon(s string) string {
	if i := strings.LastIndex(s, ":"); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(s)
}
