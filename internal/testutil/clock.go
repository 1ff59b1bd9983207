package testutil

import "sync"

// FrameClock is a fixed-step host clock for tests.
//
// Each Next() returns the same delta, and Elapsed() is computed as
// frames*step rather than by summing deltas, so the elapsed time of frame
// n is exact and independent of how the frames were grouped.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FrameClock struct {
	mu     sync.Mutex
	step   float64
	frames int64
}

// NewFrameClock creates a clock that advances by step each frame.
//
// The first call to Next() returns step and Frames() becomes 1.
func NewFrameClock(step float64) *FrameClock {
	return &FrameClock{step: step}
}

// Next counts one frame and returns its delta.
func (c *FrameClock) Next() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames++
	return c.step
}

// Deltas returns the next n deltas, advancing the clock n frames.
func (c *FrameClock) Deltas(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = c.Next()
	}
	return out
}

// Frames returns how many frames have been counted.
func (c *FrameClock) Frames() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// Elapsed returns the host time covered by the counted frames.
func (c *FrameClock) Elapsed() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return float64(c.frames) * c.step
}

// Reset rewinds the clock to frame 0.
//
// Used for test reuse. After Reset(), the clock replays the same deltas.
func (c *FrameClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = 0
}
