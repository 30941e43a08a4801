package parser

import (
	"testing"

	"github.com/ThePyrotechnic/openscoreboard/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeActor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *core.Actor
		wantErr bool
	}{
		{
			name:  "simple",
			input: "Alice 76561198000000001 (id:2)",
			want:  &core.Actor{Username: "Alice", SteamID64: "76561198000000001", PlayerID: 2},
		},
		{
			name:  "username with spaces",
			input: "The Big  Cheese 76561198000000009 (id:14)",
			want:  &core.Actor{Username: "The Big Cheese", SteamID64: "76561198000000009", PlayerID: 14},
		},
		{
			name:  "no username",
			input: "0 (id:0)",
			want:  &core.Actor{SteamID64: "0", PlayerID: 0},
		},
		{name: "single token", input: "17", wantErr: true},
		{name: "empty", input: "", wantErr: true},
		{name: "no digits in id", input: "Alice 7656 (id:)", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeActor(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodePosition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *core.Position
		wantErr bool
	}{
		{"integers", "1, 2, 3", &core.Position{X: 1, Y: 2, Z: 3}, false},
		{"floats", "-1021.5,  44.25, 0.03125", &core.Position{X: -1021.5, Y: 44.25, Z: 0.03125}, false},
		{"two components", "1, 2", nil, true},
		{"four components", "1, 2, 3, 4", nil, true},
		{"non-numeric", "1, b, 3", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodePosition(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeFacing(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *core.Facing
		wantErr bool
	}{
		{"labelled", "pitch:10.5, yaw:-90", &core.Facing{Pitch: 10.5, Yaw: -90}, false},
		{"spaced labels", "pitch: 0, yaw: 359.9", &core.Facing{Pitch: 0, Yaw: 359.9}, false},
		{"unlabelled", "3, 4", &core.Facing{Pitch: 3, Yaw: 4}, false},
		{"missing yaw", "pitch:1", nil, true},
		{"bad pitch", "pitch:up, yaw:1", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeFacing(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsPlayerNotFound(t *testing.T) {
	assert.True(t, isPlayerNotFound("Cannot find player 4"))
	assert.True(t, isPlayerNotFound("player 4 not found"))
	assert.False(t, isPlayerNotFound("Cannot find entity 4"))
	assert.False(t, isPlayerNotFound(""))
}

func TestTypeValue(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		check   func(t *testing.T, v core.Value)
		wantErr bool
	}{
		{
			name:  "bool",
			key:   "headshot",
			value: "1",
			check: func(t *testing.T, v core.Value) {
				assert.Equal(t, core.KindBool, v.Kind)
				assert.True(t, v.Bool)
			},
		},
		{
			name:  "int from float text",
			key:   "health",
			value: "100.00",
			check: func(t *testing.T, v core.Value) {
				assert.Equal(t, core.KindInt, v.Kind)
				assert.Equal(t, int64(100), v.Int)
			},
		},
		{
			name:  "float",
			key:   "distance",
			value: "12.75",
			check: func(t *testing.T, v core.Value) {
				assert.Equal(t, core.KindFloat, v.Kind)
				assert.InDelta(t, 12.75, v.Float, 1e-9)
			},
		},
		{
			name:  "string keeps digits",
			key:   "weapon_itemid",
			value: "0042",
			check: func(t *testing.T, v core.Value) {
				assert.Equal(t, core.KindString, v.Kind)
				assert.Equal(t, "0042", v.Str)
			},
		},
		{
			name:  "empty int",
			key:   "site",
			value: "",
			check: func(t *testing.T, v core.Value) {
				assert.Equal(t, core.KindEmpty, v.Kind)
			},
		},
		{
			name:  "unknown key",
			key:   "mystery",
			value: "x y",
			check: func(t *testing.T, v core.Value) {
				assert.Equal(t, core.KindUnknown, v.Kind)
				assert.Equal(t, "x y", v.Str)
			},
		},
		{
			name:  "reason code",
			key:   "reason",
			value: "9",
			check: func(t *testing.T, v core.Value) {
				assert.Equal(t, core.KindInt, v.Kind)
				assert.Equal(t, int64(9), v.Int)
			},
		},
		{
			name:  "reason text",
			key:   "reason",
			value: "Kicked by Console",
			check: func(t *testing.T, v core.Value) {
				assert.Equal(t, core.KindString, v.Kind)
				assert.Equal(t, "Kicked by Console", v.Str)
			},
		},
		{name: "bad int", key: "health", value: "full", wantErr: true},
		{name: "bad bool", key: "silenced", value: "maybe", wantErr: true},
		{name: "bad float", key: "x", value: "far", wantErr: true},
		{name: "bad position", key: "position", value: "1,2", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := newTestParser().Tokenize(nil)
			tok.current = &RawEvent{Type: "test_event", Fields: map[string]*Field{}}

			got, err := tok.typeValue(tt.key, tt.value)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedLine)
				return
			}
			require.NoError(t, err)
			tt.check(t, got)
		})
	}
}

func TestParseIntFromFloat(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{"integer", "32", 32, false},
		{"zero", "0", 0, false},
		{"negative integer", "-1", -1, false},
		{"float with decimals", "32.00", 32, false},
		{"negative float", "-1.00", -1, false},
		{"large integer", "65535", 65535, false},
		{"fractional rejects", "10.99", 0, true},
		{"empty string", "", 0, true},
		{"non-numeric", "abc", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseIntFromFloat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
		})
	}
}
