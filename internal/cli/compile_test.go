package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tempo/internal/compiler"
	"github.com/roach88/tempo/internal/ir"
)

const pulseCUE = `package timelines

timeline: pulse: {
	duration:  0.5
	loops:     -1
	loop_type: "yoyo"
	ease:      "in_out_sine"
	from:      [0, 0]
	to:        [1, 2]
}
`

func TestCompileValidTimelines(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"fade.cue": fadeCUE, "pulse.cue": pulseCUE})

	output, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)

	assert.Contains(t, output, "✓ Compiled 2 timeline(s), 1 looping")
	assert.Contains(t, output, "fade: float, 1s, linear ease, once")
	assert.Contains(t, output, "pulse: vector, 0.5s, in_out_sine ease, forever")
}

func TestCompileValidTimelinesJSON(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"fade.cue": fadeCUE})

	output, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var result CompilationResult
	resp := decodeData(t, output, &result)
	assert.Equal(t, "ok", resp.Status)
	require.Len(t, result.Timelines, 1)
	assert.Equal(t, "fade", result.Timelines[0].Name)

	want, err := ir.SpecHash(result.Timelines[0])
	require.NoError(t, err)
	assert.Equal(t, want, result.SpecHashes["fade"])
}

func TestCompileOutputToFile(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"fade.cue": fadeCUE, "blink.cue": blinkCUE})
	outputFile := filepath.Join(t.TempDir(), "compiled.json")

	output, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), "--output", outputFile, dir)
	require.NoError(t, err)
	assert.Contains(t, output, "Wrote compiled timelines to")

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result CompilationResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Len(t, result.Timelines, 2)
	assert.Len(t, result.SpecHashes, 2)
}

func TestCompileNonExistentDirectory(t *testing.T) {
	output, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), "/nonexistent/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, ErrCodeNotFound)
}

func TestCompileEmptyDirectory(t *testing.T) {
	dir := writeTimelines(t, nil)

	output, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, output, ErrCodeNoFiles)
	assert.Contains(t, output, "no CUE files found")
}

func TestCompileInvalidTimeline(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"bad.cue": `package timelines

timeline: wobble: {
	duration: 1
	ease:     "wobbly"
}
`})

	output, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, "✗ Compilation failed")
	assert.Contains(t, output, compiler.ErrUnknownEase)
}

func TestCompileInvalidTimelineJSON(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"bad.cue": `package timelines

timeline: a: duration: -1
timeline: b: {
	duration:       1
	playback_speed: 0
}
`})

	output, err := execute(NewCompileCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var errs []CLIError
	resp := decodeData(t, output, &errs)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)

	codes := make([]string, len(errs))
	for i, e := range errs {
		codes[i] = e.Code
	}
	assert.Contains(t, codes, compiler.ErrNegativeDuration)
	assert.Contains(t, codes, compiler.ErrBadPlaybackSpeed)
}

func TestCompileCUESyntaxError(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"broken.cue": "package timelines\n\ntimeline: fade: {\n"})

	output, err := execute(NewCompileCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Contains(t, output, ErrCodeLoadFailed)
}

func TestCompileVerboseOutput(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"fade.cue": fadeCUE})

	stdout, stderr, err := executeSplit(NewCompileCommand(&RootOptions{Format: "json", Verbose: true}), dir)
	require.NoError(t, err)

	assert.Contains(t, stderr, "Found 1 CUE file(s)")
	assert.Contains(t, stderr, "Compiled timeline: fade")
	// JSON on stdout stays parseable.
	decodeData(t, stdout, nil)
}

func TestMapFieldToErrorCode(t *testing.T) {
	tests := []struct {
		field    string
		expected string
	}{
		{"duration", compiler.ErrNegativeDuration},
		{"delay", compiler.ErrNegativeDuration},
		{"ease", compiler.ErrUnknownEase},
		{"loop_type", compiler.ErrUnknownMode},
		{"invert_mode", compiler.ErrUnknownMode},
		{"playback_speed", compiler.ErrBadPlaybackSpeed},
		{"curve", compiler.ErrCurveArity},
		{"strength", compiler.ErrInvalidValue},
		{"cue", ErrCodeBuildFailed},
		{"unknown", ErrCodeGeneric},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapFieldToErrorCode(tt.field))
		})
	}
}

func TestCalculateStats(t *testing.T) {
	forever, twice, once := -1, 2, 1
	result := &CompilationResult{
		Timelines: []ir.TimelineSpec{
			{Name: "a", Loops: &forever},
			{Name: "b", Loops: &twice, Value: ir.ValueSpec{Kind: ir.ValueFloat}},
			{Name: "c", Loops: &once, Value: ir.ValueSpec{Kind: ir.ValueFloat}},
		},
	}

	stats := calculateStats(result)
	assert.Equal(t, 3, stats.TimelineCount)
	assert.Equal(t, 2, stats.Looping)
	assert.Equal(t, map[string]int{ir.ValueUnit: 1, ir.ValueFloat: 2}, stats.ByKind)
}
