package compiler

import (
	"fmt"
	"math"

	"github.com/roach88/tempo/internal/ease"
	"github.com/roach88/tempo/internal/ir"
)

// Validation error codes (E100-E199)
const (
	// General validation errors (E100)
	ErrUnsupportedIRType = "E100" // unsupported IR type for validation

	// TimelineSpec errors (E101-E109)
	ErrNegativeDuration = "E101" // duration < 0 or not finite
	ErrUnknownEase      = "E102" // ease not in the catalog
	ErrUnknownMode      = "E103" // unknown loop type or invert mode
	ErrBadPlaybackSpeed = "E104" // playback speed <= 0 or NaN
	ErrCurveArity       = "E105" // curve needs exactly 4 control values
	ErrDuplicateName    = "E106" // two timelines share a name
	ErrInvalidValue     = "E107" // value section inconsistent with its kind
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
	Line    int    `json:"line,omitempty"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("[%s] line %d: %s: %s", e.Code, e.Line, e.Field, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate validates compiled IR against schema rules.
// Returns all errors found (does not fail-fast).
// Supports a single TimelineSpec or a slice of them; only a slice can be
// checked for duplicate names.
func Validate(v any) []ValidationError {
	switch spec := v.(type) {
	case *ir.TimelineSpec:
		return validateTimeline(spec, "")
	case ir.TimelineSpec:
		return validateTimeline(&spec, "")
	case []ir.TimelineSpec:
		return validateTimelines(spec)
	default:
		return []ValidationError{{
			Field:   "type",
			Message: fmt.Sprintf("unsupported IR type: %T", v),
			Code:    ErrUnsupportedIRType,
		}}
	}
}

func validateTimelines(specs []ir.TimelineSpec) []ValidationError {
	var errs []ValidationError
	names := make(map[string]bool)
	for i := range specs {
		prefix := fmt.Sprintf("timelines[%d].", i)

		// E106: duplicate name
		if names[specs[i].Name] {
			errs = append(errs, ValidationError{
				Field:   prefix + "name",
				Message: fmt.Sprintf("duplicate timeline name: %q", specs[i].Name),
				Code:    ErrDuplicateName,
			})
		}
		names[specs[i].Name] = true

		errs = append(errs, validateTimeline(&specs[i], prefix)...)
	}
	return errs
}

// validateTimeline validates one timeline. prefix qualifies field names.
func validateTimeline(spec *ir.TimelineSpec, prefix string) []ValidationError {
	var errs []ValidationError
	add := func(field, code, format string, args ...any) {
		errs = append(errs, ValidationError{
			Field:   prefix + field,
			Message: fmt.Sprintf(format, args...),
			Code:    code,
		})
	}

	// E101: duration must be a finite non-negative number
	if spec.Duration < 0 || math.IsNaN(spec.Duration) || math.IsInf(spec.Duration, 0) {
		add("duration", ErrNegativeDuration, "duration must be finite and >= 0, got %v", spec.Duration)
	}

	// E102: ease must be in the catalog
	if spec.Ease != "" {
		if _, ok := ease.Parse(spec.Ease); !ok {
			add("ease", ErrUnknownEase, "unknown ease %q", spec.Ease)
		}
	}

	// E103: loop type and invert mode
	if spec.LoopType != "" {
		if _, ok := ir.ParseLoopType(spec.LoopType); !ok {
			add("loop_type", ErrUnknownMode, "unknown loop type %q, must be \"restart\", \"yoyo\" or \"incremental\"", spec.LoopType)
		}
	}
	if spec.InvertMode != "" {
		if _, ok := ir.ParseInvertMode(spec.InvertMode); !ok {
			add("invert_mode", ErrUnknownMode, "unknown invert mode %q, must be \"none\", \"immediate\" or \"after_delay\"", spec.InvertMode)
		}
	}

	// E104: a zero speed would never advance
	if s := spec.PlaybackSpeed; s != nil && (*s <= 0 || math.IsNaN(*s)) {
		add("playback_speed", ErrBadPlaybackSpeed, "playback speed must be > 0, got %v", *s)
	}

	// E105: custom curve arity
	if len(spec.Curve) > 0 && len(spec.Curve) != 4 {
		add("curve", ErrCurveArity, "curve needs 4 control values [x1, y1, x2, y2], got %d", len(spec.Curve))
	}
	if k, ok := ease.Parse(spec.Ease); ok && k == ease.Custom && len(spec.Curve) == 0 {
		add("curve", ErrCurveArity, "ease %q requires a curve", spec.Ease)
	}

	errs = append(errs, validateValue(spec.Value, prefix)...)
	return errs
}

// validateValue checks the value section against its kind (E107).
func validateValue(v ir.ValueSpec, prefix string) []ValidationError {
	var msgs []string
	switch v.Kind {
	case ir.ValueFloat:
		if len(v.To) != 1 {
			msgs = append(msgs, "float needs exactly one to value")
		}
		if len(v.From) > 1 {
			msgs = append(msgs, "float takes at most one from value")
		}
	case ir.ValueVector:
		if len(v.To) == 0 {
			msgs = append(msgs, "vector needs a non-empty to list")
		}
		if len(v.From) > 0 && len(v.From) != len(v.To) {
			msgs = append(msgs, fmt.Sprintf("from has %d components, to has %d", len(v.From), len(v.To)))
		}
	case ir.ValuePunch, ir.ValueShake:
		if len(v.Strength) == 0 {
			msgs = append(msgs, v.Kind+" needs a strength")
		}
		if v.Frequency < 0 {
			msgs = append(msgs, "frequency must be >= 0")
		}
		if v.Damping != nil && *v.Damping < 0 {
			msgs = append(msgs, "damping must be >= 0")
		}
	case ir.ValuePath:
		if len(v.Points) < 2 {
			msgs = append(msgs, fmt.Sprintf("path needs at least 2 points, got %d", len(v.Points)))
		}
		for i, p := range v.Points {
			if len(p) != len(v.Points[0]) {
				msgs = append(msgs, fmt.Sprintf("path point %d has %d components, want %d", i, len(p), len(v.Points[0])))
			}
		}
	case ir.ValueString, ir.ValueUnit:
	default:
		if !ir.ValidValueKinds[v.Kind] {
			msgs = append(msgs, fmt.Sprintf("unknown value kind %q", v.Kind))
		}
	}

	errs := make([]ValidationError, 0, len(msgs))
	for _, m := range msgs {
		errs = append(errs, ValidationError{Field: prefix + "value", Message: m, Code: ErrInvalidValue})
	}
	return errs
}
