package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/tempo/internal/ir"
)

// CompileTimeline parses a CUE value into a TimelineSpec.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the timeline struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`timeline: fade: { duration: 1, to: 1 }`)
//	spec, err := CompileTimeline(v.LookupPath(cue.ParsePath("timeline.fade")))
//
// Exactly one value section may be present: from/to, punch, shake, path or
// text. A timeline without one animates nothing and only drives callbacks.
func CompileTimeline(v cue.Value) (*ir.TimelineSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.TimelineSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	durVal := v.LookupPath(cue.ParsePath("duration"))
	if !durVal.Exists() {
		return nil, &CompileError{
			Field:   "duration",
			Message: "duration is required",
			Pos:     v.Pos(),
		}
	}
	d, err := number(durVal, "duration")
	if err != nil {
		return nil, err
	}
	spec.Duration = d

	if spec.Delay, _, err = optionalNumber(v, "delay"); err != nil {
		return nil, err
	}
	if n, ok, err := optionalInt(v, "loops"); err != nil {
		return nil, err
	} else if ok {
		spec.Loops = &n
	}
	if spec.LoopType, err = optionalString(v, "loop_type"); err != nil {
		return nil, err
	}
	if spec.Ease, err = optionalString(v, "ease"); err != nil {
		return nil, err
	}
	if spec.InvertMode, err = optionalString(v, "invert_mode"); err != nil {
		return nil, err
	}
	if curveVal := v.LookupPath(cue.ParsePath("curve")); curveVal.Exists() {
		if spec.Curve, err = numberList(curveVal, "curve"); err != nil {
			return nil, err
		}
	}
	if s, ok, err := optionalNumber(v, "playback_speed"); err != nil {
		return nil, err
	} else if ok {
		spec.PlaybackSpeed = &s
	}
	if b, ok, err := optionalBool(v, "auto_play"); err != nil {
		return nil, err
	} else if ok {
		spec.AutoPlay = &b
	}
	if b, ok, err := optionalBool(v, "auto_kill"); err != nil {
		return nil, err
	} else if ok {
		spec.AutoKill = &b
	}
	if spec.IgnoreTimeScale, _, err = optionalBool(v, "ignore_time_scale"); err != nil {
		return nil, err
	}
	if spec.Relative, _, err = optionalBool(v, "relative"); err != nil {
		return nil, err
	}

	spec.Value, err = parseValue(v)
	if err != nil {
		return nil, err
	}
	return spec, nil
}

// CompileTimelines compiles every field of a `timeline:` struct in
// declaration order. Errors are collected, not fail-fast; each names the
// timeline it came from.
func CompileTimelines(v cue.Value) ([]ir.TimelineSpec, []error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, []error{formatCUEError(err)}
	}
	var (
		specs []ir.TimelineSpec
		errs  []error
	)
	for iter.Next() {
		spec, err := CompileTimeline(iter.Value())
		if err != nil {
			errs = append(errs, fmt.Errorf("timeline.%s: %w", iter.Label(), err))
			continue
		}
		specs = append(specs, *spec)
	}
	return specs, errs
}

// parseValue reads the single value section of a timeline.
func parseValue(v cue.Value) (ir.ValueSpec, error) {
	var (
		val   ir.ValueSpec
		found []string
	)

	toVal := v.LookupPath(cue.ParsePath("to"))
	fromVal := v.LookupPath(cue.ParsePath("from"))
	if toVal.Exists() {
		found = append(found, "to")
		to, scalar, err := numberOrList(toVal, "to")
		if err != nil {
			return val, err
		}
		val.To = to
		val.Kind = ir.ValueVector
		if scalar {
			val.Kind = ir.ValueFloat
		}
		if fromVal.Exists() {
			from, _, err := numberOrList(fromVal, "from")
			if err != nil {
				return val, err
			}
			val.From = from
		}
	} else if fromVal.Exists() {
		return val, &CompileError{Field: "from", Message: "from requires to", Pos: fromVal.Pos()}
	}

	for _, kind := range []string{"punch", "shake"} {
		sv := v.LookupPath(cue.ParsePath(kind))
		if !sv.Exists() {
			continue
		}
		found = append(found, kind)
		if err := parseVibration(sv, kind, &val); err != nil {
			return val, err
		}
	}

	if pv := v.LookupPath(cue.ParsePath("path")); pv.Exists() {
		found = append(found, "path")
		iter, err := pv.List()
		if err != nil {
			return val, formatCUEError(err)
		}
		for i := 0; iter.Next(); i++ {
			p, err := numberList(iter.Value(), fmt.Sprintf("path[%d]", i))
			if err != nil {
				return val, err
			}
			val.Points = append(val.Points, p)
		}
		val.Kind = ir.ValuePath
	}

	if tv := v.LookupPath(cue.ParsePath("text")); tv.Exists() {
		found = append(found, "text")
		var err error
		if val.FromText, err = optionalString(tv, "from"); err != nil {
			return val, err
		}
		if val.ToText, err = optionalString(tv, "to"); err != nil {
			return val, err
		}
		val.Kind = ir.ValueString
	}

	switch len(found) {
	case 0:
		val.Kind = ir.ValueUnit
	case 1:
	default:
		return val, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("only one value section allowed, found %v", found),
			Pos:     v.Pos(),
		}
	}
	return val, nil
}

func parseVibration(v cue.Value, kind string, val *ir.ValueSpec) error {
	strVal := v.LookupPath(cue.ParsePath("strength"))
	if !strVal.Exists() {
		return &CompileError{Field: kind + ".strength", Message: "strength is required", Pos: v.Pos()}
	}
	strength, _, err := numberOrList(strVal, kind+".strength")
	if err != nil {
		return err
	}
	val.Strength = strength
	val.Kind = kind

	if n, ok, err := optionalInt(v, "frequency"); err != nil {
		return err
	} else if ok {
		val.Frequency = n
	}
	if d, ok, err := optionalNumber(v, "damping"); err != nil {
		return err
	} else if ok {
		val.Damping = &d
	}
	if kind == ir.ValueShake {
		seedVal := v.LookupPath(cue.ParsePath("seed"))
		if seedVal.Exists() {
			seed, err := seedVal.Uint64()
			if err != nil {
				return &CompileError{Field: "shake.seed", Message: "seed must be a non-negative integer", Pos: seedVal.Pos()}
			}
			val.Seed = seed
		}
	}
	return nil
}

func number(v cue.Value, field string) (float64, error) {
	switch v.IncompleteKind() {
	case cue.IntKind, cue.FloatKind, cue.NumberKind:
	default:
		return 0, &CompileError{
			Field:   field,
			Message: fmt.Sprintf("must be a number, got %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
	f, err := v.Float64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return f, nil
}

// numberOrList accepts a single number or a list of numbers. scalar
// reports which form was used.
func numberOrList(v cue.Value, field string) (vals []float64, scalar bool, err error) {
	if v.IncompleteKind() == cue.ListKind {
		vals, err = numberList(v, field)
		return vals, false, err
	}
	f, err := number(v, field)
	if err != nil {
		return nil, false, err
	}
	return []float64{f}, true, nil
}

func numberList(v cue.Value, field string) ([]float64, error) {
	iter, err := v.List()
	if err != nil {
		return nil, &CompileError{Field: field, Message: "must be a list of numbers", Pos: v.Pos()}
	}
	var out []float64
	for i := 0; iter.Next(); i++ {
		f, err := number(iter.Value(), fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func optionalNumber(v cue.Value, field string) (float64, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, false, nil
	}
	f, err := number(fv, field)
	return f, err == nil, err
}

func optionalInt(v cue.Value, field string) (int, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return 0, false, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, false, &CompileError{Field: field, Message: "must be an integer", Pos: fv.Pos()}
	}
	return int(n), true, nil
}

func optionalString(v cue.Value, field string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &CompileError{Field: field, Message: "must be a string", Pos: fv.Pos()}
	}
	return s, nil
}

func optionalBool(v cue.Value, field string) (bool, bool, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return false, false, nil
	}
	b, err := fv.Bool()
	if err != nil {
		return false, false, &CompileError{Field: field, Message: "must be a bool", Pos: fv.Pos()}
	}
	return b, true, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
