package engine

import "fmt"

// Handle identifies one timeline: a slot index plus the generation the slot
// had when the timeline was created. Reclaiming a slot bumps its generation,
// so a handle that outlives its timeline never aliases the slot's next
// occupant.
//
// The zero Handle is never issued.
type Handle uint64

const indexBits = 32

func makeHandle(index, gen uint32) Handle {
	return Handle(uint64(gen)<<indexBits | uint64(index))
}

// Index returns the slot index.
func (h Handle) Index() uint32 {
	return uint32(h)
}

// Generation returns the slot generation the handle was issued for.
func (h Handle) Generation() uint32 {
	return uint32(uint64(h) >> indexBits)
}

// Valid reports whether h could have been issued by an Engine.
// Generations start at 1.
func (h Handle) Valid() bool {
	return h.Generation() > 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d.%d", h.Index(), h.Generation())
}
