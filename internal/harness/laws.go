package harness

import (
	"fmt"
	"math"
	"slices"

	"github.com/roach88/tempo/internal/ease"
	"github.com/roach88/tempo/internal/engine"
	"github.com/roach88/tempo/internal/ir"
)

// Laws the evaluator must satisfy for a timeline's parameters.
const (
	// LawCompleteOnce: a finite timeline driven forward raises complete
	// exactly once and then stays completed at a stable progress.
	LawCompleteOnce = "complete_once"
	// LawYoyoMirror: in yoyo mode, loop k+1 mirrors loop k, so progress at
	// offset x of an odd loop is 1 minus progress at x of the even loop.
	LawYoyoMirror = "yoyo_mirror"
	// LawIncremental: in incremental mode, one loop later adds ease(1), and
	// progress never decreases when the ease itself is monotone.
	LawIncremental = "incremental"
	// LawIdempotent: evaluating twice at the same position changes no
	// state and repeats at most the update event.
	LawIdempotent = "idempotent"
)

var allLaws = []string{LawCompleteOnce, LawYoyoMirror, LawIncremental, LawIdempotent}

func knownLaw(name string) bool {
	return slices.Contains(allLaws, name)
}

const lawTolerance = 1e-9

// LawViolation describes one position at which a law failed.
type LawViolation struct {
	Law      string
	Timeline string
	Position float64
	Message  string
}

func (v LawViolation) String() string {
	return fmt.Sprintf("law %s violated for %s at position %g: %s", v.Law, v.Timeline, v.Position, v.Message)
}

// ApplicableLaws lists the laws that constrain timelines with parameters p.
func ApplicableLaws(p engine.Params) []string {
	var laws []string
	if p.Loops >= 0 {
		laws = append(laws, LawCompleteOnce)
	}
	if p.LoopType == ir.LoopYoyo && p.Duration > 0 && (p.Loops < 0 || p.Loops >= 2) {
		laws = append(laws, LawYoyoMirror)
	}
	if p.LoopType == ir.LoopIncremental && p.Duration > 0 {
		laws = append(laws, LawIncremental)
	}
	return append(laws, LawIdempotent)
}

// CheckLaws evaluates fresh records built from p and reports every
// violation. An empty laws list checks every applicable law; naming a law
// that does not apply to p is an error.
func CheckLaws(timeline string, p engine.Params, laws []string) ([]LawViolation, error) {
	applicable := ApplicableLaws(p)
	if len(laws) == 0 {
		laws = applicable
	}
	for _, law := range laws {
		if !knownLaw(law) {
			return nil, fmt.Errorf("unknown law %q", law)
		}
		if !slices.Contains(applicable, law) {
			return nil, fmt.Errorf("law %s does not apply to timeline %s (loop type %s, loops %d)",
				law, timeline, p.LoopType, p.Loops)
		}
	}

	// Killing would end every probe early; laws concern evaluation only.
	p.AutoKill = false
	c := lawChecker{timeline: timeline, p: p}
	for _, law := range laws {
		switch law {
		case LawCompleteOnce:
			c.completeOnce()
		case LawYoyoMirror:
			c.yoyoMirror()
		case LawIncremental:
			c.incremental()
		case LawIdempotent:
			c.idempotent()
		}
	}
	return c.violations, nil
}

type lawChecker struct {
	timeline   string
	p          engine.Params
	violations []LawViolation
}

func (c *lawChecker) fail(law string, pos float64, format string, args ...any) {
	c.violations = append(c.violations, LawViolation{
		Law:      law,
		Timeline: c.timeline,
		Position: pos,
		Message:  fmt.Sprintf(format, args...),
	})
}

// span is the playhead range worth probing: the whole timeline for finite
// loops, four loops otherwise.
func (c *lawChecker) span() float64 {
	loops := c.p.Loops
	if loops < 0 {
		loops = 4
	}
	s := c.p.Delay + c.p.Duration*float64(loops)
	if s <= 0 {
		s = 1
	}
	return s
}

// samples returns n evenly spaced positive positions covering the span
// and a margin past it.
func (c *lawChecker) samples(n int) []float64 {
	end := c.span() * 1.25
	out := make([]float64, n)
	for i := range out {
		out[i] = end * float64(i+1) / float64(n)
	}
	return out
}

// fresh returns a record evaluated once at pos, as if it had been played
// and jumped straight there.
func (c *lawChecker) fresh(pos float64) engine.Record {
	r := engine.NewRecord(0, c.p)
	r.PlayRequested = true
	engine.Evaluate(&r, pos, nil)
	return r
}

func (c *lawChecker) easeAt(t float64) float64 {
	return ease.Evaluate(c.p.Ease, c.p.Curve, t)
}

func (c *lawChecker) completeOnce() {
	r := engine.NewRecord(0, c.p)
	r.PlayRequested = true

	completes := 0
	var settled float64
	for _, pos := range c.samples(64) {
		engine.Evaluate(&r, pos, nil)
		if r.Callbacks.Has(ir.OnComplete) {
			completes++
			settled = r.Progress
			if completes > 1 {
				c.fail(LawCompleteOnce, pos, "complete raised %d times", completes)
				return
			}
			continue
		}
		if completes == 1 {
			if r.Status != ir.StatusCompleted {
				c.fail(LawCompleteOnce, pos, "status %s after completion", r.Status)
				return
			}
			if math.Abs(r.Progress-settled) > lawTolerance {
				c.fail(LawCompleteOnce, pos, "progress moved from %g to %g after completion", settled, r.Progress)
				return
			}
		}
	}
	if completes == 0 {
		c.fail(LawCompleteOnce, c.span()*1.25, "never completed")
	}
}

func (c *lawChecker) yoyoMirror() {
	d := c.p.Duration
	pairs := 2
	if c.p.Loops >= 0 {
		pairs = c.p.Loops / 2
	}
	for k := 0; k < pairs; k++ {
		for _, frac := range []float64{0.1, 0.25, 0.5, 0.7, 0.9} {
			base := c.p.Delay + float64(2*k)*d + frac*d
			even := c.fresh(base)
			odd := c.fresh(base + d)
			if math.Abs(odd.Progress-(1-even.Progress)) > lawTolerance {
				c.fail(LawYoyoMirror, base+d, "progress %g, want %g", odd.Progress, 1-even.Progress)
				return
			}
		}
	}
}

func (c *lawChecker) incremental() {
	d := c.p.Duration
	step := c.easeAt(1)

	// Shift: stay one loop short of completion so both probes are playing.
	shifts := 3
	if c.p.Loops >= 0 {
		shifts = c.p.Loops - 1
	}
	for k := 0; k < shifts; k++ {
		for _, frac := range []float64{0.1, 0.5, 0.9} {
			pos := c.p.Delay + float64(k)*d + frac*d
			a, b := c.fresh(pos), c.fresh(pos+d)
			if math.Abs(b.Progress-(a.Progress+step)) > lawTolerance {
				c.fail(LawIncremental, pos+d, "progress %g, want %g one loop after %g", b.Progress, a.Progress+step, a.Progress)
				return
			}
		}
	}

	if !c.easeMonotone() {
		return
	}
	prev := math.Inf(-1)
	for _, pos := range c.samples(128) {
		r := c.fresh(pos)
		if r.Progress < prev-lawTolerance {
			c.fail(LawIncremental, pos, "progress fell from %g to %g", prev, r.Progress)
			return
		}
		prev = r.Progress
	}
}

// easeMonotone samples the timeline's ease; overshooting and bouncing
// eases are exempt from the monotone half of the incremental law.
func (c *lawChecker) easeMonotone() bool {
	const n = 256
	prev := c.easeAt(0)
	for i := 1; i <= n; i++ {
		v := c.easeAt(float64(i) / n)
		if v < prev-lawTolerance {
			return false
		}
		prev = v
	}
	return true
}

func (c *lawChecker) idempotent() {
	for _, pos := range c.samples(32) {
		r := c.fresh(pos)
		before := r
		engine.Evaluate(&r, pos, nil)

		switch {
		case r.Status != before.Status:
			c.fail(LawIdempotent, pos, "status %s became %s", before.Status, r.Status)
		case math.Abs(r.Progress-before.Progress) > lawTolerance:
			c.fail(LawIdempotent, pos, "progress %g became %g", before.Progress, r.Progress)
		case r.CompletedLoops != before.CompletedLoops:
			c.fail(LawIdempotent, pos, "completed loops %d became %d", before.CompletedLoops, r.CompletedLoops)
		case r.Callbacks&^ir.OnUpdate != 0:
			c.fail(LawIdempotent, pos, "repeat raised %v", r.Callbacks.Names())
		default:
			continue
		}
		return
	}
}
