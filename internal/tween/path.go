package tween

import (
	"fmt"
	"math"
	"sort"
)

// pathBinding moves along a polyline at constant speed: progress is the
// fraction of total arc length covered.
type pathBinding struct {
	get    func() []float64
	set    func([]float64)
	points [][]float64
	// cum[i] is the arc length from points[0] to points[i].
	cum    []float64
	origin []float64
	out    []float64
}

func newPathBinding(get func() []float64, set func([]float64), points [][]float64) (*pathBinding, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: path needs at least 2 points, got %d", ErrInvalidParams, len(points))
	}
	dim := len(points[0])
	cum := make([]float64, len(points))
	pts := make([][]float64, len(points))
	for i, p := range points {
		if len(p) != dim {
			return nil, fmt.Errorf("%w: path point %d has %d components, want %d", ErrInvalidParams, i, len(p), dim)
		}
		pts[i] = append([]float64(nil), p...)
		if i > 0 {
			cum[i] = cum[i-1] + distance(pts[i-1], pts[i])
		}
	}
	return &pathBinding{
		get:    get,
		set:    set,
		points: pts,
		cum:    cum,
		origin: make([]float64, dim),
		out:    make([]float64, dim),
	}, nil
}

// Capture records the target's position; relative paths are offset by it.
func (b *pathBinding) Capture() {
	if b.get == nil {
		return
	}
	clear(b.origin)
	copy(b.origin, b.get())
}

func (b *pathBinding) Apply(progress float64, inverted, relative bool) {
	if inverted {
		progress = 1 - progress
	}
	b.at(clamp01(progress))
	if relative {
		for i := range b.out {
			b.out[i] += b.origin[i]
		}
	}
	b.set(b.out)
}

// at writes the point at fraction p of the path into b.out.
func (b *pathBinding) at(p float64) {
	total := b.cum[len(b.cum)-1]
	last := len(b.points) - 1
	if total == 0 || p >= 1 {
		copy(b.out, b.points[last])
		return
	}
	target := p * total
	// First point whose cumulative length exceeds target ends the segment.
	seg := sort.SearchFloat64s(b.cum, target)
	if seg == 0 {
		copy(b.out, b.points[0])
		return
	}
	if seg > last {
		seg = last
	}
	a, c := b.points[seg-1], b.points[seg]
	length := b.cum[seg] - b.cum[seg-1]
	t := 0.0
	if length > 0 {
		t = (target - b.cum[seg-1]) / length
	}
	for i := range b.out {
		b.out[i] = lerp(a[i], c[i], t)
	}
}

func distance(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := b[i] - a[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
