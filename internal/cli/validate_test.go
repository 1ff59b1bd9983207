package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tempo/internal/compiler"
)

const invalidCUE = `package timelines

timeline: slow: {
	duration:  1
	loop_type: "pingpong"
}

timeline: bent: {
	duration: 1
	ease:     "custom"
	curve:    [0.1, 0.2]
}
`

func TestValidateValidTimelines(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"fade.cue": fadeCUE, "blink.cue": blinkCUE})

	output, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, output, "✓ All 2 timeline(s) valid")
}

func TestValidateValidTimelinesJSON(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"fade.cue": fadeCUE})

	output, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var result ValidationResult
	resp := decodeData(t, output, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, result.Valid)
	assert.Equal(t, 1, result.Timelines)
}

func TestValidateNonExistentDirectory(t *testing.T) {
	output, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/path")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, ErrCodeNotFound)
}

func TestValidateEmptyDirectory(t *testing.T) {
	dir := writeTimelines(t, nil)

	output, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, output, ErrCodeNoFiles)
}

func TestValidateReportsEveryError(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"bad.cue": invalidCUE})

	output, err := execute(NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, output, "✗ Validation failed")
	assert.Contains(t, output, compiler.ErrUnknownMode)
	assert.Contains(t, output, compiler.ErrCurveArity)
	assert.Contains(t, err.Error(), "2 error(s)")
}

func TestValidateInvalidTimelinesJSON(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"bad.cue": invalidCUE})

	output, err := execute(NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)

	var result ValidationResult
	resp := decodeData(t, output, &result)
	assert.Equal(t, "error", resp.Status)
	assert.False(t, result.Valid)
	assert.Len(t, result.Errors, 2)
	require.NotNil(t, resp.Error)
	assert.Equal(t, result.Errors[0].Code, resp.Error.Code)
}

func TestValidateConflictingFiles(t *testing.T) {
	dir := writeTimelines(t, map[string]string{
		"a.cue": "package timelines\n\ntimeline: fade: duration: 1\n",
		"b.cue": "package timelines\n\ntimeline: fade: duration: 2\n",
	})

	// CUE unifies both files, so the conflicting durations fail to load.
	_, err := ValidateTimelinesDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrCodeLoadFailed)
}

func TestValidateVerboseOutput(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"fade.cue": fadeCUE})

	_, stderr, err := executeSplit(NewValidateCommand(&RootOptions{Format: "text", Verbose: true}), dir)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Validated 1 timeline(s)")
}

func TestValidateTimelinesDir(t *testing.T) {
	dir := writeTimelines(t, map[string]string{"bad.cue": invalidCUE})

	result, err := ValidateTimelinesDir(dir)
	require.NoError(t, err)
	assert.False(t, result.Valid)
	assert.Equal(t, 2, result.Timelines)

	_, err = ValidateTimelinesDir("/nonexistent/path")
	assert.Error(t, err)
}
