package bufferpool

import "github.com/srfbd/pagevault/src/pkg/common"

// Replacer manages which frames may be reused once their pages are no longer
// pinned. Implementations are internally thread-safe.
type Replacer interface {
	// Victim removes and returns the next frame to evict, or ErrNoVictim
	// when the evictable set is empty.
	Victim() (common.FrameID, error)

	// Pin marks the frame in-use, removing it from the evictable set.
	Pin(frameID common.FrameID)

	// Unpin marks the frame idle, inserting it into the evictable set.
	Unpin(frameID common.FrameID)

	// Size returns the number of frames currently evictable.
	Size() uint64
}
