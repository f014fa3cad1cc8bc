package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexBool_Scan(t *testing.T) {
	tests := []struct {
		name string
		src  interface{}
		want bool
	}{
		{"nil", nil, false},
		{"native true", true, true},
		{"native false", false, false},
		{"int one", int64(1), true},
		{"int zero", int64(0), false},
		{"float one", 1.0, true},
		{"string one", "1", true},
		{"string zero", "0", false},
		{"string true", "true", true},
		{"string false", "false", false},
		{"string padded", " true ", true},
		{"bytes", []byte("1"), true},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f FlexBool
			require.NoError(t, f.Scan(tt.src))
			assert.Equal(t, tt.want, f.Bool())
		})
	}
}

func TestFlexBool_ScanRejectsGarbage(t *testing.T) {
	var f FlexBool
	assert.Error(t, f.Scan("maybe"))
	assert.Error(t, f.Scan(struct{}{}))
}

func TestFlexBool_JSONRoundTrip(t *testing.T) {
	var f FlexBool
	require.NoError(t, json.Unmarshal([]byte(`"1"`), &f))
	assert.True(t, f.Bool())

	require.NoError(t, json.Unmarshal([]byte(`0`), &f))
	assert.False(t, f.Bool())

	out, err := json.Marshal(FlexBool(true))
	require.NoError(t, err)
	assert.Equal(t, "true", string(out))
}

func TestFlexBool_Value(t *testing.T) {
	v, err := FlexBool(true).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)

	v, err = FlexBool(false).Value()
	require.NoError(t, err)
	assert.Equal(t, int64(0), v)
}

func TestJSONText_MalformedIsAbsent(t *testing.T) {
	j := JSONText(`{not valid`)
	assert.False(t, j.Present())
	assert.Nil(t, j.Map())
	assert.Nil(t, j.List())
}

func TestJSONText_Decode(t *testing.T) {
	j := JSONText(`{"regime":"trending","score":0.82}`)
	require.True(t, j.Present())

	m := j.Map()
	require.NotNil(t, m)
	assert.Equal(t, "trending", m["regime"])

	var empty JSONText
	assert.False(t, empty.Present())
	assert.False(t, empty.Decode(&struct{}{}))
}

func TestJSONText_List(t *testing.T) {
	j := JSONText(`[{"event":"retrigger"},{"event":"retrigger"}]`)
	assert.Len(t, j.List(), 2)
}

func TestRawSignal_HitSL(t *testing.T) {
	sig := RawSignal{}
	assert.False(t, sig.HitSL())

	sig.SL15Hit = true
	assert.True(t, sig.HitSL())
}

func TestRawSignal_SLHitAt_EarliestAmongHitTiers(t *testing.T) {
	at := func(v int64) *int64 { return &v }

	sig := RawSignal{
		SL1Hit:    true,
		SL1HitAt:  at(2000),
		SL15Hit:   true,
		SL15HitAt: at(1500),
		SL2Hit:    false,
		SL2HitAt:  at(100), // flag not set, timestamp ignored
	}
	got := sig.SLHitAt()
	require.NotNil(t, got)
	assert.Equal(t, int64(1500), *got)
}

func TestRawSignal_SLHitAt_NilWithoutTimestamps(t *testing.T) {
	sig := RawSignal{SL1Hit: true}
	assert.Nil(t, sig.SLHitAt())
}

func TestRawSignal_RetriggerCount(t *testing.T) {
	sig := RawSignal{SignalLog: JSONText(`[{"e":1},{"e":2},{"e":3}]`)}
	assert.Equal(t, 3, sig.RetriggerCount())

	sig.SignalLog = JSONText(`broken`)
	assert.Equal(t, 0, sig.RetriggerCount())

	sig.SignalLog = nil
	assert.Equal(t, 0, sig.RetriggerCount())
}
