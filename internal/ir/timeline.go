package ir

import "strings"

// Status is the lifecycle state of one timeline.
//
// Invalid and Killed are absorbing; every other state is transient.
type Status uint8

const (
	StatusInvalid Status = iota
	StatusWaitingForStart
	StatusDelayed
	StatusPlaying
	StatusCompleted
	StatusRewindCompleted
	StatusKilled
)

var statusNames = [...]string{
	StatusInvalid:         "invalid",
	StatusWaitingForStart: "waiting_for_start",
	StatusDelayed:         "delayed",
	StatusPlaying:         "playing",
	StatusCompleted:       "completed",
	StatusRewindCompleted: "rewind_completed",
	StatusKilled:          "killed",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "unknown"
}

// ParseStatus maps a snake_case status name back to its Status.
func ParseStatus(name string) (Status, bool) {
	for i, n := range statusNames {
		if n == name {
			return Status(i), true
		}
	}
	return StatusInvalid, false
}

// LoopType selects how progress is shaped across loops.
type LoopType uint8

const (
	LoopRestart LoopType = iota
	LoopYoyo
	LoopIncremental
)

var loopTypeNames = [...]string{
	LoopRestart:     "restart",
	LoopYoyo:        "yoyo",
	LoopIncremental: "incremental",
}

func (l LoopType) String() string {
	if int(l) < len(loopTypeNames) {
		return loopTypeNames[l]
	}
	return "unknown"
}

// ParseLoopType accepts "restart", "yoyo" or "incremental" (case-insensitive).
func ParseLoopType(name string) (LoopType, bool) {
	name = strings.ToLower(name)
	for i, n := range loopTypeNames {
		if n == name {
			return LoopType(i), true
		}
	}
	return LoopRestart, false
}

// InvertMode is the policy for swapping start and end values.
type InvertMode uint8

const (
	InvertNone InvertMode = iota
	InvertImmediate
	InvertAfterDelay
)

var invertModeNames = [...]string{
	InvertNone:       "none",
	InvertImmediate:  "immediate",
	InvertAfterDelay: "after_delay",
}

func (m InvertMode) String() string {
	if int(m) < len(invertModeNames) {
		return invertModeNames[m]
	}
	return "unknown"
}

// ParseInvertMode accepts "none", "immediate" or "after_delay".
func ParseInvertMode(name string) (InvertMode, bool) {
	name = strings.ToLower(name)
	for i, n := range invertModeNames {
		if n == name {
			return InvertMode(i), true
		}
	}
	return InvertNone, false
}

// CallbackFlags is the per-evaluation event bitmask.
//
// The flags describe events raised by the most recent evaluation only.
// They are cleared at the start of every evaluation and never accumulate.
type CallbackFlags uint16

const (
	OnPlay CallbackFlags = 1 << iota
	OnStartUp
	OnStart
	OnUpdate
	OnStepComplete
	OnComplete
	OnRewind
	OnKill
)

// CallbackOrder is the fixed order in which the apply pass dispatches
// listeners. OnStartUp is absent: it only drives the Getter capture.
var CallbackOrder = []CallbackFlags{
	OnPlay,
	OnStart,
	OnRewind,
	OnUpdate,
	OnStepComplete,
	OnComplete,
	OnKill,
}

// Has reports whether every bit of f is set.
func (c CallbackFlags) Has(f CallbackFlags) bool {
	return c&f == f
}

var eventNames = map[CallbackFlags]string{
	OnPlay:         "play",
	OnStartUp:      "start_up",
	OnStart:        "start",
	OnUpdate:       "update",
	OnStepComplete: "step_complete",
	OnComplete:     "complete",
	OnRewind:       "rewind",
	OnKill:         "kill",
}

// EventName returns the trace name of a single event bit.
func EventName(f CallbackFlags) string {
	if n, ok := eventNames[f]; ok {
		return n
	}
	return "unknown"
}

// ParseEvent maps a trace event name to its flag.
func ParseEvent(name string) (CallbackFlags, bool) {
	for f, n := range eventNames {
		if n == name {
			return f, true
		}
	}
	return 0, false
}

// Names lists the set bits in dispatch order, with start_up first when set.
func (c CallbackFlags) Names() []string {
	var names []string
	if c.Has(OnStartUp) {
		names = append(names, EventName(OnStartUp))
	}
	for _, f := range CallbackOrder {
		if c.Has(f) {
			names = append(names, EventName(f))
		}
	}
	return names
}

// AccessorFlags tells the apply pass which property I/O to perform.
type AccessorFlags uint8

const (
	// AccessorGetter re-captures the bound property as the start value.
	AccessorGetter AccessorFlags = 1 << iota
	// AccessorSetter writes the computed value back to the property.
	AccessorSetter
)

// Has reports whether every bit of f is set.
func (a AccessorFlags) Has(f AccessorFlags) bool {
	return a&f == f
}
