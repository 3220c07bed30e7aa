package bufferpool

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srfbd/pagevault/src/pkg/common"
)

func TestLRUReplacerVictimOrder(t *testing.T) {
	r := NewLRUReplacer(7)

	for i := 1; i <= 6; i++ {
		r.Unpin(common.FrameID(i))
	}

	// re-unpinning an evictable frame leaves its recency unchanged
	r.Unpin(1)

	assert.Equal(t, uint64(6), r.Size())

	victim, err := r.Victim()
	require.NoError(t, err)
	assert.Equal(t, common.FrameID(1), victim)

	r.Pin(3)
	r.Pin(4)

	assert.Equal(t, uint64(3), r.Size())

	for _, want := range []common.FrameID{2, 5, 6} {
		victim, err := r.Victim()
		require.NoError(t, err)
		assert.Equal(t, want, victim)
	}

	assert.Equal(t, uint64(0), r.Size())
}

func TestLRUReplacerVictimEmpty(t *testing.T) {
	r := NewLRUReplacer(4)

	_, err := r.Victim()
	assert.ErrorIs(t, err, ErrNoVictim)
}

func TestLRUReplacerPinAbsent(t *testing.T) {
	r := NewLRUReplacer(4)

	r.Unpin(1)
	r.Pin(2)

	assert.Equal(t, uint64(1), r.Size())
}

func TestLRUReplacerCapacityGuard(t *testing.T) {
	r := NewLRUReplacer(2)

	r.Unpin(1)
	r.Unpin(2)
	r.Unpin(3)

	assert.Equal(t, uint64(2), r.Size())

	v1, err := r.Victim()
	require.NoError(t, err)
	v2, err := r.Victim()
	require.NoError(t, err)

	assert.ElementsMatch(t, []common.FrameID{1, 2}, []common.FrameID{v1, v2})
}

func TestLRUReplacerRepinResetsRecency(t *testing.T) {
	r := NewLRUReplacer(4)

	r.Unpin(1)
	r.Unpin(2)

	// a pin/unpin cycle makes frame 1 the most recent again
	r.Pin(1)
	r.Unpin(1)

	victim, err := r.Victim()
	require.NoError(t, err)
	assert.Equal(t, common.FrameID(2), victim)
}

func TestLRUReplacerConcurrentUnpin(t *testing.T) {
	const numFrames = 200

	r := NewLRUReplacer(numFrames)

	var wg sync.WaitGroup
	wg.Add(numFrames)
	for i := 0; i < numFrames; i++ {
		i := i
		go func() {
			defer wg.Done()
			r.Unpin(common.FrameID(i))
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(numFrames), r.Size())

	victims := make([]common.FrameID, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		v, err := r.Victim()
		require.NoError(t, err)
		victims = append(victims, v)
	}

	expected := make([]common.FrameID, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		expected = append(expected, common.FrameID(i))
	}
	assert.ElementsMatch(t, expected, victims)
	assert.Equal(t, uint64(0), r.Size())
}

func TestLRUReplacerConcurrentPinAndUnpin(t *testing.T) {
	const initial = 150
	const added = 100

	r := NewLRUReplacer(initial + added)

	for i := 0; i < initial; i++ {
		r.Unpin(common.FrameID(i))
	}
	assert.Equal(t, uint64(initial), r.Size())

	var wg sync.WaitGroup
	wg.Add(initial)
	for i := 0; i < initial; i++ {
		i := i
		go func() {
			defer wg.Done()
			r.Pin(common.FrameID(i))
		}()
	}

	wg.Add(added)
	for i := initial; i < initial+added; i++ {
		i := i
		go func() {
			defer wg.Done()
			r.Unpin(common.FrameID(i))
		}()
	}

	wg.Wait()

	assert.Equal(t, uint64(added), r.Size())

	victims := make([]common.FrameID, 0, added)
	for i := 0; i < added; i++ {
		v, err := r.Victim()
		require.NoError(t, err)
		victims = append(victims, v)
	}

	expected := make([]common.FrameID, 0, added)
	for i := initial; i < initial+added; i++ {
		expected = append(expected, common.FrameID(i))
	}
	assert.ElementsMatch(t, expected, victims)
}

func TestLRUReplacerParallelVictim(t *testing.T) {
	const numFrames = 128

	r := NewLRUReplacer(numFrames)
	for i := 0; i < numFrames; i++ {
		r.Unpin(common.FrameID(i))
	}

	var wg sync.WaitGroup
	victimsCh := make(chan common.FrameID, numFrames)

	wg.Add(numFrames)
	for i := 0; i < numFrames; i++ {
		go func() {
			defer wg.Done()
			v, err := r.Victim()
			if err != nil {
				return
			}
			victimsCh <- v
		}()
	}

	wg.Wait()
	close(victimsCh)

	victims := make([]common.FrameID, 0, numFrames)
	for v := range victimsCh {
		victims = append(victims, v)
	}

	expected := make([]common.FrameID, 0, numFrames)
	for i := 0; i < numFrames; i++ {
		expected = append(expected, common.FrameID(i))
	}
	assert.ElementsMatch(t, expected, victims)
	assert.Equal(t, uint64(0), r.Size())
}
