package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActionKind(t *testing.T) {
	tests := []struct {
		in   string
		want ActionKind
	}{
		{"direct_thrust", DirectThrust},
		{"Direct Thrust", DirectThrust},
		{"one-two", OneTwo},
		{"One-Two-Three", OneTwoThree},
		{"  point in line ", PointInLine},
	}
	for _, tt := range tests {
		got, err := ParseActionKind(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseActionKind("fleche")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseDistanceBand(t *testing.T) {
	for in, want := range map[string]DistanceBand{
		"medium":          Medium,
		"MEDIUM":          Medium,
		"Lunge Distance":  Lunge,
		"OUT_OF_DISTANCE": OutOfDistance,
		"infighting":      Infighting,
	} {
		got, err := ParseDistanceBand(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseDistanceBand("touching")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestParseDefenseAndBlade(t *testing.T) {
	d, err := ParseDefenseKind("counter_of_sixte")
	require.NoError(t, err)
	assert.Equal(t, CounterSixte, d)

	p, err := ParseBladePosition("QUARTE")
	require.NoError(t, err)
	assert.Equal(t, BladeQuarte, p)

	_, err = ParseBladePosition("nonte")
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestSlugRoundTrip(t *testing.T) {
	for _, k := range AllActionKinds() {
		got, err := ParseActionKind(k.Slug())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
	for _, k := range AllDefenseKinds() {
		got, err := ParseDefenseKind(k.Slug())
		require.NoError(t, err)
		assert.Equal(t, k, got)
	}
}

func TestTextMarshaling(t *testing.T) {
	b, err := json.Marshal(map[string]any{"kind": CutOver, "band": Short})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"cut_over","band":"short"}`, string(b))

	var v struct {
		Kind ActionKind   `json:"kind"`
		Band DistanceBand `json:"band"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"kind":"Cut Over","band":"SHORT"}`), &v))
	assert.Equal(t, CutOver, v.Kind)
	assert.Equal(t, Short, v.Band)

	_, err = json.Marshal(ActionKind(0))
	assert.Error(t, err)
}

func TestInvalidStrings(t *testing.T) {
	assert.Equal(t, "ActionKind(0)", ActionKind(0).String())
	assert.Equal(t, "DistanceBand(9)", DistanceBand(9).String())
	assert.False(t, BladePosition(0).Valid())
}
