package tween

import (
	"math"

	"golang.org/x/text/unicode/norm"
)

// textBinding reveals the end text over the start text one rune at a time.
// Both texts are NFC-normalized first so a precomposed and a decomposed
// accent count as the same single rune.
type textBinding struct {
	set      func(string)
	from, to []rune
}

func newTextBinding(set func(string), from, to string) *textBinding {
	return &textBinding{
		set:  set,
		from: []rune(norm.NFC.String(from)),
		to:   []rune(norm.NFC.String(to)),
	}
}

func (b *textBinding) Capture() {}

// Apply shows the first k runes of the end text followed by the start
// text's remainder. Relative appends the end text to the start text.
func (b *textBinding) Apply(progress float64, inverted, relative bool) {
	from, to := b.from, b.to
	if relative {
		to = append(append([]rune(nil), from...), to...)
	}
	if inverted {
		from, to = to, from
	}
	n := max(len(from), len(to))
	k := int(math.Round(clamp01(progress) * float64(n)))

	out := make([]rune, 0, n)
	out = append(out, to[:min(k, len(to))]...)
	if k < len(from) {
		out = append(out, from[k:]...)
	}
	b.set(string(out))
}
