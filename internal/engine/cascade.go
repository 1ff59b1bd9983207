package engine

import (
	"errors"
	"fmt"
)

// DefaultMaxCascade bounds kill-collector drain rounds per frame.
const DefaultMaxCascade = 64

// cascadeQuota counts kill-collector drain rounds within one frame.
//
// An OnKill listener may kill other timelines, and a listener that spawns
// and kills a fresh timeline from every OnKill would otherwise keep the
// apply pass draining forever. Once the quota is spent the remaining
// handles stay queued and are reclaimed at the end of the next frame.
type cascadeQuota struct {
	maxRounds int
	current   int
}

func newCascadeQuota(maxRounds int) *cascadeQuota {
	return &cascadeQuota{maxRounds: maxRounds}
}

// Check counts one round and fails once the quota is exceeded.
func (q *cascadeQuota) Check(frame int64, pending int) error {
	q.current++
	if q.current > q.maxRounds {
		return &CascadeExceededError{
			Frame:   frame,
			Rounds:  q.current,
			Limit:   q.maxRounds,
			Pending: pending,
		}
	}
	return nil
}

// CascadeExceededError reports a frame whose kill cascade was cut short.
type CascadeExceededError struct {
	Frame   int64 // Frame that hit the limit
	Rounds  int   // Rounds attempted
	Limit   int   // Maximum allowed rounds
	Pending int   // Handles left in the collector
}

// Error implements the error interface.
func (e *CascadeExceededError) Error() string {
	return fmt.Sprintf("frame %d exceeded kill cascade quota: %d rounds > %d limit (%d handles deferred)",
		e.Frame, e.Rounds, e.Limit, e.Pending)
}

// IsCascadeExceeded returns true if the error is a CascadeExceededError.
// Uses errors.As to handle wrapped errors.
func IsCascadeExceeded(err error) bool {
	var ce *CascadeExceededError
	return errors.As(err, &ce)
}
