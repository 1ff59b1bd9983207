package ir

// Value kinds a timeline can animate.
const (
	ValueFloat  = "float"
	ValueVector = "vector"
	ValuePunch  = "punch"
	ValueShake  = "shake"
	ValuePath   = "path"
	ValueString = "string"
	ValueUnit   = "unit"
)

// ValidValueKinds defines the allowed ValueSpec kinds.
var ValidValueKinds = map[string]bool{
	ValueFloat:  true,
	ValueVector: true,
	ValuePunch:  true,
	ValueShake:  true,
	ValuePath:   true,
	ValueString: true,
	ValueUnit:   true,
}

// TimelineSpec is a compiled timeline definition.
//
// Optional fields are pointers so the construction layer can tell "unset"
// (take the injected default) from an explicit zero.
type TimelineSpec struct {
	Name            string    `json:"name" yaml:"name"`
	Duration        float64   `json:"duration" yaml:"duration"`
	Delay           float64   `json:"delay,omitempty" yaml:"delay"`
	Loops           *int      `json:"loops,omitempty" yaml:"loops"`
	LoopType        string    `json:"loop_type,omitempty" yaml:"loop_type"`
	Ease            string    `json:"ease,omitempty" yaml:"ease"`
	Curve           []float64 `json:"curve,omitempty" yaml:"curve"`
	PlaybackSpeed   *float64  `json:"playback_speed,omitempty" yaml:"playback_speed"`
	AutoPlay        *bool     `json:"auto_play,omitempty" yaml:"auto_play"`
	AutoKill        *bool     `json:"auto_kill,omitempty" yaml:"auto_kill"`
	IgnoreTimeScale bool      `json:"ignore_time_scale,omitempty" yaml:"ignore_time_scale"`
	Relative        bool      `json:"relative,omitempty" yaml:"relative"`
	InvertMode      string    `json:"invert_mode,omitempty" yaml:"invert_mode"`
	Value           ValueSpec `json:"value" yaml:"value"`
}

// ValueSpec describes what a timeline animates.
//
// Which fields apply depends on Kind:
//   - float, vector: From (optional, captured from the target when empty), To
//   - punch, shake: Strength, Frequency, Damping (shake also Seed)
//   - path: Points
//   - string: FromText, ToText
//   - unit: nothing
type ValueSpec struct {
	Kind      string      `json:"kind" yaml:"kind"`
	From      []float64   `json:"from,omitempty" yaml:"from"`
	To        []float64   `json:"to,omitempty" yaml:"to"`
	Strength  []float64   `json:"strength,omitempty" yaml:"strength"`
	Frequency int         `json:"frequency,omitempty" yaml:"frequency"`
	Damping   *float64    `json:"damping,omitempty" yaml:"damping"`
	Seed      uint64      `json:"seed,omitempty" yaml:"seed"`
	Points    [][]float64 `json:"points,omitempty" yaml:"points"`
	FromText  string      `json:"from_text,omitempty" yaml:"from_text"`
	ToText    string      `json:"to_text,omitempty" yaml:"to_text"`
}

// Run is one recorded engine run.
type Run struct {
	ID        string         `json:"id"`
	Label     string         `json:"label"`
	Workers   int            `json:"workers"`
	TimeScale float64        `json:"time_scale"`
	Specs     []TimelineSpec `json:"specs"`
	TraceHash string         `json:"trace_hash,omitempty"`
	Seq       int64          `json:"seq"`
}

// Frame is one recorded tick of a run.
type Frame struct {
	RunID string  `json:"run_id"`
	Seq   int64   `json:"seq"`
	Delta float64 `json:"delta"`
}

// FrameEvent is one event a timeline raised during a frame.
//
// Progress is stored in micro-units so traces stay float-free.
type FrameEvent struct {
	Frame          int64  `json:"frame"`
	Timeline       string `json:"timeline"`
	Event          string `json:"event"`
	Status         string `json:"status"`
	ProgressMicro  int64  `json:"progress_micro"`
	CompletedLoops int64  `json:"completed_loops"`
}
