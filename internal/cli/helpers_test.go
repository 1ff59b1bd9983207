package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tempo/internal/testutil"
)

const fadeCUE = `package timelines

timeline: fade: {
	duration: 1
	ease:     "linear"
	from:     0
	to:       1
}
`

const blinkCUE = `package timelines

timeline: blink: {
	duration: 0.5
	loops:    -1
}
`

// fadeTraceHash is the hash of fade run for three frames of 0.5s.
const fadeTraceHash = "015da59f82bf02ae9adb4d79440ccc30ca003c3b5155bfc78a5c9158b882edcc"

// writeTimelines creates a directory holding the given CUE files.
func writeTimelines(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "timelines")
	require.NoError(t, os.MkdirAll(dir, 0755))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

// execute runs cmd with args and returns its combined output.
func execute(cmd *cobra.Command, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

// executeSplit runs cmd with args, keeping stdout and stderr apart.
func executeSplit(cmd *cobra.Command, args ...string) (string, string, error) {
	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// decodeData unmarshals the data field of a JSON CLIResponse.
func decodeData(t *testing.T, out string, data any) CLIResponse {
	t.Helper()
	var raw struct {
		CLIResponse
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &raw), "output: %s", out)
	if data != nil {
		require.NoError(t, json.Unmarshal(raw.Data, data))
	}
	return raw.CLIResponse
}

// recordRun records the timelines in dir under runID and returns the
// run summary.
func recordRun(t *testing.T, dbPath, dir, runID string, args ...string) RunSummary {
	t.Helper()
	opts := &RunOptions{
		RootOptions:    &RootOptions{Format: "json"},
		RunIDGenerator: testutil.NewFixedRunIDGenerator(runID),
	}
	stdout, _, err := executeSplit(newRunCommand(opts), append(append([]string{"--db", dbPath}, args...), dir)...)
	require.NoError(t, err)

	var summary RunSummary
	decodeData(t, stdout, &summary)
	return summary
}
