// Package tween builds timelines: validated engine.Params from injected
// defaults plus per-timeline options, and the bindings that turn progress
// into values.
package tween

import (
	"github.com/roach88/tempo/internal/ease"
	"github.com/roach88/tempo/internal/ir"
)

// Settings are the process-wide defaults every factory starts from.
// They are passed to NewFactory explicitly; nothing reads them from
// package state.
type Settings struct {
	AutoPlay        bool
	AutoKill        bool
	IgnoreTimeScale bool
	Ease            ease.Kind
	LoopType        ir.LoopType
}

// DefaultSettings returns autoPlay and autoKill on, OutQuad easing and
// Restart loops.
func DefaultSettings() Settings {
	return Settings{
		AutoPlay: true,
		AutoKill: true,
		Ease:     ease.OutQuad,
		LoopType: ir.LoopRestart,
	}
}
