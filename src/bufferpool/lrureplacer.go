package bufferpool

import (
	"container/list"
	"sync"

	"github.com/srfbd/pagevault/src/pkg/common"
)

// LRUReplacer orders evictable frames by their last Unpin time: front of the
// list is the most recently unpinned frame, back is the next victim.
type LRUReplacer struct {
	mu       sync.Mutex
	capacity uint64
	lru      *list.List
	frames   map[common.FrameID]*list.Element
}

var (
	_ Replacer = &LRUReplacer{}
)

func NewLRUReplacer(capacity uint64) *LRUReplacer {
	return &LRUReplacer{
		capacity: capacity,
		lru:      list.New(),
		frames:   make(map[common.FrameID]*list.Element),
	}
}

func (l *LRUReplacer) Victim() (common.FrameID, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	elem := l.lru.Back()
	if elem == nil {
		return 0, ErrNoVictim
	}

	frameID := elem.Value.(common.FrameID)

	l.lru.Remove(elem)
	delete(l.frames, frameID)

	return frameID, nil
}

func (l *LRUReplacer) Pin(frameID common.FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if elem, ok := l.frames[frameID]; ok {
		l.lru.Remove(elem)
		delete(l.frames, frameID)
	}
}

func (l *LRUReplacer) Unpin(frameID common.FrameID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, exists := l.frames[frameID]; exists {
		// already evictable, recency unchanged
		return
	}

	// unreachable when capacity equals the pool size, kept for standalone use
	if uint64(l.lru.Len()) >= l.capacity {
		return
	}

	elem := l.lru.PushFront(frameID)
	l.frames[frameID] = elem
}

func (l *LRUReplacer) Size() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	return uint64(len(l.frames))
}
