package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonicalBasic(t *testing.T) {
	tests := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", IRString("hello"), `"hello"`},
		{"empty string", IRString(""), `""`},
		{"int", IRInt(42), "42"},
		{"negative int", IRInt(-100), "-100"},
		{"bool", IRBool(true), "true"},
		{"empty array", IRArray{}, "[]"},
		{"empty object", IRObject{}, "{}"},
		{"go string", "x", `"x"`},
		{"go int", 7, "7"},
		{"nested", IRObject{"a": IRArray{IRInt(1), IRBool(false)}}, `{"a":[1,false]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := MarshalCanonical(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalCanonicalSortedKeys(t *testing.T) {
	obj := IRObject{
		"zebra": IRInt(1),
		"alpha": IRInt(2),
		"beta":  IRObject{"d": IRInt(4), "c": IRInt(3)},
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":{"c":3,"d":4},"zebra":1}`, string(result))
}

func TestMarshalCanonicalUTF16Ordering(t *testing.T) {
	// U+10000 encodes as a surrogate pair (0xD800...) and sorts before U+E000.
	obj := IRObject{
		"\uE000":     IRInt(1),
		"\U00010000": IRInt(2),
	}

	result, err := MarshalCanonical(obj)
	require.NoError(t, err)
	assert.Equal(t, "{\"\U00010000\":2,\"\uE000\":1}", string(result))
}

func TestMarshalCanonicalNoHTMLEscape(t *testing.T) {
	result, err := MarshalCanonical(IRString("<b>a & b</b>"))
	require.NoError(t, err)
	assert.Equal(t, `"<b>a & b</b>"`, string(result))
	assert.NotContains(t, string(result), `\u003c`)
}

func TestMarshalCanonicalRejectsFloatsAndNull(t *testing.T) {
	for _, in := range []any{3.14, float32(1.5), nil} {
		_, err := MarshalCanonical(in)
		require.Error(t, err)
	}

	_, err := MarshalCanonical(IRObject{"progress": IRArray{IRString("x")}, "f": IRArray{IRInt(1)}})
	require.NoError(t, err)
}

func TestMarshalCanonicalNFCNormalization(t *testing.T) {
	composed, err := MarshalCanonical(IRString("caf\u00E9"))
	require.NoError(t, err)
	decomposed, err := MarshalCanonical(IRString("cafe\u0301"))
	require.NoError(t, err)
	assert.Equal(t, composed, decomposed)
}

func TestMarshalCanonicalLineSeparators(t *testing.T) {
	result, err := MarshalCanonical(IRString("a\u2028b\u2029c"))
	require.NoError(t, err)
	assert.Equal(t, "\"a\u2028b\u2029c\"", string(result))

	// A literal backslash followed by the text u2028 stays escaped.
	result, err = MarshalCanonical(IRString(`a\u2028`))
	require.NoError(t, err)
	assert.Equal(t, `"a\\u2028"`, string(result))
}

func TestMarshalTrace(t *testing.T) {
	events := []FrameEvent{
		{Frame: 1, Timeline: "fade", Event: "start", Status: "playing", ProgressMicro: 0},
		{Frame: 2, Timeline: "fade", Event: "complete", Status: "completed", ProgressMicro: 1_000_000, CompletedLoops: 1},
	}

	data, err := MarshalTrace(events)
	require.NoError(t, err)
	assert.Equal(t,
		`[{"completed_loops":0,"event":"start","frame":1,"progress_micro":0,"status":"playing","timeline":"fade"},`+
			`{"completed_loops":1,"event":"complete","frame":2,"progress_micro":1000000,"status":"completed","timeline":"fade"}]`,
		string(data))
}

func TestMicroAndDecimal(t *testing.T) {
	assert.Equal(t, IRInt(500000), Micro(0.5))
	assert.Equal(t, IRInt(-1), Micro(-0.0000009))
	assert.Equal(t, 0.25, FromMicro(ToMicro(0.25)))
	assert.Equal(t, IRString("0.1"), Decimal(0.1))
	assert.Equal(t, IRString("1e-07"), Decimal(1e-7))
}
