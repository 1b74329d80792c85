package model

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSequenceNewItemDefaults(t *testing.T) {
	var seq Sequence

	it := seq.NewItem("Socks", false)
	require.Equal(t, int64(1), it.ID)
	require.Equal(t, "Socks", it.Title)
	require.False(t, it.Packed)

	packed := seq.NewItem("Hoodie", true)
	require.Equal(t, int64(2), packed.ID)
	require.True(t, packed.Packed)
}

func TestSequenceUniqueUnderConcurrency(t *testing.T) {
	var seq Sequence
	const workers, perWorker = 8, 500

	ids := make(chan int64, workers*perWorker)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ids <- seq.Next()
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[int64]bool, workers*perWorker)
	for id := range ids {
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	require.Len(t, seen, workers*perWorker)
}

func TestSequenceObserve(t *testing.T) {
	var seq Sequence
	seq.Observe(41)
	require.Equal(t, int64(42), seq.Next())

	// lower ids never move the sequence backwards
	seq.Observe(3)
	require.Equal(t, int64(43), seq.Next())
}
