package engine

import (
	"slices"
	"sync/atomic"
)

// KillCollector gathers handles of killed timelines during a frame.
//
// Thread-safety:
//   - Push: lock-free CAS, any number of concurrent producers
//   - Drain: single consumer (the apply pass)
//
// The collector is an intrusive Treiber stack. Drain detaches the whole
// stack with one atomic swap, so it never observes a partially linked
// node.
type KillCollector struct {
	head atomic.Pointer[killNode]
	size atomic.Int64
}

type killNode struct {
	handle Handle
	next   *killNode
}

// NewKillCollector creates an empty collector.
func NewKillCollector() *KillCollector {
	return &KillCollector{}
}

// Push appends a handle. Safe for concurrent producers.
func (k *KillCollector) Push(h Handle) {
	node := &killNode{handle: h}
	for {
		old := k.head.Load()
		node.next = old
		if k.head.CompareAndSwap(old, node) {
			k.size.Add(1)
			return
		}
	}
}

// Drain removes every pending handle and returns them ordered by slot
// index. Push order across workers is scheduling-dependent; sorting keeps
// reclamation (and therefore slot reuse) deterministic.
func (k *KillCollector) Drain() []Handle {
	top := k.head.Swap(nil)
	if top == nil {
		return nil
	}
	var out []Handle
	for n := top; n != nil; n = n.next {
		out = append(out, n.handle)
	}
	k.size.Add(-int64(len(out)))
	slices.SortFunc(out, func(a, b Handle) int {
		return int(a.Index()) - int(b.Index())
	})
	return out
}

// Len returns the approximate number of pending handles.
func (k *KillCollector) Len() int {
	return int(k.size.Load())
}
