package harness

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/roach88/tempo/internal/ir"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string          // Assertion type for categorization
	Expected string          // Human-readable expected outcome
	Actual   string          // Human-readable actual outcome
	Trace    []ir.FrameEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] frame %d %s.%s %s progress=%d loops=%d\n",
				i+1, ev.Frame, ev.Timeline, ev.Event, ev.Status, ev.ProgressMicro, ev.CompletedLoops)
		}
	}

	return buf.String()
}

func frameLabel(frame int) string {
	if frame == 0 {
		return "final"
	}
	return fmt.Sprintf("frame %d", frame)
}

func tolerance(a Assertion) float64 {
	if a.Tolerance > 0 {
		return a.Tolerance
	}
	return DefaultTolerance
}

func lookupState(result *Result, a Assertion) (TimelineState, error) {
	state, ok := result.StateAt(a.Timeline, a.Frame)
	if !ok {
		return TimelineState{}, &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("timeline %s at %s", a.Timeline, frameLabel(a.Frame)),
			Actual:   "no such timeline",
		}
	}
	return state, nil
}

// assertStatus checks a timeline's lifecycle state after a frame.
func assertStatus(result *Result, a Assertion) error {
	state, err := lookupState(result, a)
	if err != nil {
		return err
	}
	if state.Status != a.Status {
		return &AssertionError{
			Type:     AssertStatus,
			Expected: fmt.Sprintf("%s is %s at %s", a.Timeline, a.Status, frameLabel(a.Frame)),
			Actual:   state.Status,
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertProgress checks eased progress within tolerance.
func assertProgress(result *Result, a Assertion) error {
	state, err := lookupState(result, a)
	if err != nil {
		return err
	}
	got := ir.FromMicro(state.ProgressMicro)
	if math.Abs(got-*a.Progress) > tolerance(a) {
		return &AssertionError{
			Type:     AssertProgress,
			Expected: fmt.Sprintf("%s progress %g (±%g) at %s", a.Timeline, *a.Progress, tolerance(a), frameLabel(a.Frame)),
			Actual:   fmt.Sprintf("%g", got),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertValue checks the animated property written by the timeline.
func assertValue(result *Result, a Assertion) error {
	state, err := lookupState(result, a)
	if err != nil {
		return err
	}
	if a.Text != nil && state.Text != *a.Text {
		return &AssertionError{
			Type:     AssertValue,
			Expected: fmt.Sprintf("%s text %q at %s", a.Timeline, *a.Text, frameLabel(a.Frame)),
			Actual:   fmt.Sprintf("%q", state.Text),
		}
	}
	if a.Values == nil {
		return nil
	}

	mismatch := len(state.Values) != len(a.Values)
	for i := 0; !mismatch && i < len(a.Values); i++ {
		mismatch = math.Abs(state.Values[i]-a.Values[i]) > tolerance(a)
	}
	if mismatch {
		return &AssertionError{
			Type:     AssertValue,
			Expected: fmt.Sprintf("%s values %v (±%g) at %s", a.Timeline, a.Values, tolerance(a), frameLabel(a.Frame)),
			Actual:   fmt.Sprintf("%v", state.Values),
		}
	}
	return nil
}

// assertEventCount checks that an event appears exactly Count times,
// optionally restricted to one timeline.
func assertEventCount(result *Result, a Assertion) error {
	count := 0
	for _, ev := range result.Trace {
		if ev.Event == a.Event && (a.Timeline == "" || ev.Timeline == a.Timeline) {
			count++
		}
	}

	if count != *a.Count {
		subject := a.Event
		if a.Timeline != "" {
			subject = a.Timeline + "." + a.Event
		}
		return &AssertionError{
			Type:     AssertEventCount,
			Expected: fmt.Sprintf("%s raised %d times", subject, *a.Count),
			Actual:   fmt.Sprintf("%d times", count),
			Trace:    result.Trace,
		}
	}
	return nil
}

// assertEventOrder checks that the first occurrence of each
// "timeline.event" entry appears in the listed order.
func assertEventOrder(result *Result, a Assertion) error {
	// Step 1: Find first position of each expected event
	positions := make(map[string]int)
	for i, ev := range result.Trace {
		key := ev.Timeline + "." + ev.Event
		if slices.Contains(a.Events, key) && positions[key] == 0 {
			positions[key] = i + 1 // 1-indexed for readability
		}
	}

	// Step 2: Verify all events found
	for _, key := range a.Events {
		if positions[key] == 0 {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("all events present: %v", a.Events),
				Actual:   fmt.Sprintf("missing event: %s", key),
				Trace:    result.Trace,
			}
		}
	}

	// Step 3: Verify order
	for i := 1; i < len(a.Events); i++ {
		prev, curr := a.Events[i-1], a.Events[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertEventOrder,
				Expected: fmt.Sprintf("events in order: %v", a.Events),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: result.Trace,
			}
		}
	}

	return nil
}

// assertLaws checks the evaluator laws against the timeline's resolved
// parameters.
func assertLaws(result *Result, a Assertion) error {
	p, ok := result.params[a.Timeline]
	if !ok {
		return &AssertionError{
			Type:     AssertLaws,
			Expected: fmt.Sprintf("timeline %s", a.Timeline),
			Actual:   "no such timeline",
		}
	}

	violations, err := CheckLaws(a.Timeline, p, a.Laws)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		msgs := make([]string, len(violations))
		for i, v := range violations {
			msgs[i] = v.String()
		}
		return &AssertionError{
			Type:     AssertLaws,
			Expected: fmt.Sprintf("laws hold for %s", a.Timeline),
			Actual:   strings.Join(msgs, "; "),
		}
	}
	return nil
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertStatus:
			err = assertStatus(result, assertion)
		case AssertProgress:
			err = assertProgress(result, assertion)
		case AssertValue:
			err = assertValue(result, assertion)
		case AssertEventCount:
			err = assertEventCount(result, assertion)
		case AssertEventOrder:
			err = assertEventOrder(result, assertion)
		case AssertLaws:
			err = assertLaws(result, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
