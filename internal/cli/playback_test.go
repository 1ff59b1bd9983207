package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
)

// flakyTracer rejects its failAt-th frame.
type flakyTracer struct {
	failAt int
	calls  int
}

func (f *flakyTracer) RecordFrame(context.Context, ir.Frame, []ir.FrameEvent) error {
	f.calls++
	if f.calls == f.failAt {
		return errors.New("disk full")
	}
	return nil
}

func TestDrive_StopsWhenTracerFails(t *testing.T) {
	eng := engine.New(
		engine.WithTracer(&flakyTracer{failAt: 2}),
		engine.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	_, err := spawnAll(eng, []ir.TimelineSpec{{
		Name:     "fade",
		Duration: 1,
		Ease:     "linear",
		Value:    ir.ValueSpec{Kind: ir.ValueFloat, From: []float64{0}, To: []float64{1}},
	}})
	require.NoError(t, err)

	_, err = drive(context.Background(), eng, uniformDeltas(5, 0.25), 0)
	require.Error(t, err)
	assert.True(t, engine.IsTraceFailed(err))
	assert.False(t, isCancellation(err))
	assert.Equal(t, int64(2), eng.Frame(), "frames stop at the one the tracer rejected")
}
