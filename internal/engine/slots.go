package engine

import "github.com/roach88/tempo/internal/ir"

// slot holds one timeline and everything the apply pass needs for it.
//
// Slots are reused: release bumps gen and pushes the index onto the free
// list, so a Handle issued for the previous occupant no longer resolves.
type slot struct {
	rec       Record
	gen       uint32
	live      bool
	name      string
	binding   Binding
	listeners map[ir.CallbackFlags][]func()

	// pending is set when the record raised events that the apply pass has
	// not dispatched yet.
	pending bool
}

// slotTable is a generational arena of timeline slots.
type slotTable struct {
	slots []slot
	free  []uint32
	live  int
}

// alloc claims a slot, reusing the most recently freed index first.
func (t *slotTable) alloc() (uint32, Handle) {
	var idx uint32
	if n := len(t.free); n > 0 {
		idx = t.free[n-1]
		t.free = t.free[:n-1]
	} else {
		idx = uint32(len(t.slots))
		t.slots = append(t.slots, slot{})
	}
	s := &t.slots[idx]
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true
	t.live++
	return idx, makeHandle(idx, s.gen)
}

// lookup resolves h to its slot index, or reports a stale handle.
func (t *slotTable) lookup(h Handle) (uint32, error) {
	idx := h.Index()
	if !h.Valid() || int(idx) >= len(t.slots) {
		return 0, NewStaleHandleError(h)
	}
	s := &t.slots[idx]
	if !s.live || s.gen != h.Generation() {
		return 0, NewStaleHandleError(h)
	}
	return idx, nil
}

// release frees a slot and bumps its generation. Any custom curve the
// record still owns is released here if Kill did not already do it.
func (t *slotTable) release(idx uint32) {
	s := &t.slots[idx]
	if c := s.rec.Curve; c != nil && !c.Released() {
		_ = c.Release()
	}
	gen := s.gen + 1
	if gen == 0 {
		gen = 1
	}
	*s = slot{gen: gen}
	t.free = append(t.free, idx)
	t.live--
}

// indices returns the live slot indices in ascending order. When active is
// true, killed and invalid records are skipped.
func (t *slotTable) indices(active bool) []uint32 {
	out := make([]uint32, 0, t.live)
	for i := range t.slots {
		s := &t.slots[i]
		if !s.live {
			continue
		}
		if active && !s.rec.Active() {
			continue
		}
		out = append(out, uint32(i))
	}
	return out
}

// label returns the name used for a slot in traces and errors.
func (s *slot) label() string {
	if s.name != "" {
		return s.name
	}
	return s.rec.Handle.String()
}
