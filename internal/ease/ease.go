// Package ease maps linear progress in [0, 1] to eased progress.
//
// The closed-form catalog delegates to github.com/fogleman/ease. Overshoot
// kinds (back, elastic) may leave [0, 1]. Kind Custom marks a timeline whose
// easing comes from a per-timeline Curve instead of the catalog.
package ease

import (
	"strings"

	"github.com/fogleman/ease"
)

// Kind selects an easing function.
type Kind uint8

const (
	Linear Kind = iota
	InQuad
	OutQuad
	InOutQuad
	InCubic
	OutCubic
	InOutCubic
	InQuart
	OutQuart
	InOutQuart
	InQuint
	OutQuint
	InOutQuint
	InSine
	OutSine
	InOutSine
	InExpo
	OutExpo
	InOutExpo
	InCirc
	OutCirc
	InOutCirc
	InElastic
	OutElastic
	InOutElastic
	InBack
	OutBack
	InOutBack
	InBounce
	OutBounce
	InOutBounce
	Custom
)

type entry struct {
	name string
	fn   ease.Function
}

var catalog = [...]entry{
	Linear:       {"linear", ease.Linear},
	InQuad:       {"in_quad", ease.InQuad},
	OutQuad:      {"out_quad", ease.OutQuad},
	InOutQuad:    {"in_out_quad", ease.InOutQuad},
	InCubic:      {"in_cubic", ease.InCubic},
	OutCubic:     {"out_cubic", ease.OutCubic},
	InOutCubic:   {"in_out_cubic", ease.InOutCubic},
	InQuart:      {"in_quart", ease.InQuart},
	OutQuart:     {"out_quart", ease.OutQuart},
	InOutQuart:   {"in_out_quart", ease.InOutQuart},
	InQuint:      {"in_quint", ease.InQuint},
	OutQuint:     {"out_quint", ease.OutQuint},
	InOutQuint:   {"in_out_quint", ease.InOutQuint},
	InSine:       {"in_sine", ease.InSine},
	OutSine:      {"out_sine", ease.OutSine},
	InOutSine:    {"in_out_sine", ease.InOutSine},
	InExpo:       {"in_expo", ease.InExpo},
	OutExpo:      {"out_expo", ease.OutExpo},
	InOutExpo:    {"in_out_expo", ease.InOutExpo},
	InCirc:       {"in_circ", ease.InCirc},
	OutCirc:      {"out_circ", ease.OutCirc},
	InOutCirc:    {"in_out_circ", ease.InOutCirc},
	InElastic:    {"in_elastic", ease.InElastic},
	OutElastic:   {"out_elastic", ease.OutElastic},
	InOutElastic: {"in_out_elastic", ease.InOutElastic},
	InBack:       {"in_back", ease.InBack},
	OutBack:      {"out_back", ease.OutBack},
	InOutBack:    {"in_out_back", ease.InOutBack},
	InBounce:     {"in_bounce", ease.InBounce},
	OutBounce:    {"out_bounce", ease.OutBounce},
	InOutBounce:  {"in_out_bounce", ease.InOutBounce},
	Custom:       {"custom", nil},
}

func (k Kind) String() string {
	if int(k) < len(catalog) {
		return catalog[k].name
	}
	return "unknown"
}

// Parse resolves a snake_case name such as "in_out_quad". Names are
// case-insensitive and may use '-' instead of '_'.
func Parse(name string) (Kind, bool) {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i, e := range catalog {
		if e.name == name {
			return Kind(i), true
		}
	}
	return Linear, false
}

// Names lists every catalog name in Kind order, including "custom".
func Names() []string {
	names := make([]string, len(catalog))
	for i, e := range catalog {
		names[i] = e.name
	}
	return names
}

// Func returns the catalog function for k. Custom and unknown kinds
// fall back to Linear; a custom timeline evaluates its Curve instead.
func Func(k Kind) ease.Function {
	if int(k) < len(catalog) && catalog[k].fn != nil {
		return catalog[k].fn
	}
	return ease.Linear
}

// Evaluate applies the easing selected by k to t. When k is Custom the
// curve is used; a nil curve eases linearly.
func Evaluate(k Kind, curve *Curve, t float64) float64 {
	if k == Custom {
		if curve == nil {
			return t
		}
		return curve.Evaluate(t)
	}
	return Func(k)(t)
}
