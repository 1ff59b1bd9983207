package engine

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKillCollector_DrainSortsByIndex(t *testing.T) {
	k := NewKillCollector()
	k.Push(makeHandle(7, 1))
	k.Push(makeHandle(2, 3))
	k.Push(makeHandle(5, 1))

	assert.Equal(t, 3, k.Len())
	got := k.Drain()
	assert.Equal(t, []Handle{makeHandle(2, 3), makeHandle(5, 1), makeHandle(7, 1)}, got)
	assert.Equal(t, 0, k.Len())
	assert.Nil(t, k.Drain(), "drained collector is empty")
}

func TestKillCollector_ConcurrentPush(t *testing.T) {
	k := NewKillCollector()
	const producers = 16
	const perProducer = 250

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				k.Push(makeHandle(uint32(p*perProducer+i), 1))
			}
		}(p)
	}
	wg.Wait()

	got := k.Drain()
	require.Len(t, got, producers*perProducer)
	for i, h := range got {
		assert.Equal(t, uint32(i), h.Index(), "no handle lost or duplicated")
	}
}
