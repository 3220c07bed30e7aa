package bufferpool

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/srfbd/pagevault/src/pkg/assert"
	"github.com/srfbd/pagevault/src/pkg/common"
)

// CacheReplacer is an alternative eviction policy backed by hashicorp's LRU
// cache. Unlike LRUReplacer, a repeated Unpin refreshes recency; eviction
// order under that policy is approximate LRU over unpin calls.
type CacheReplacer struct {
	cache *lru.Cache
}

var (
	_ Replacer = &CacheReplacer{}
)

func NewCacheReplacer(capacity uint64) *CacheReplacer {
	cache, err := lru.New(int(capacity))
	assert.NoError(err)

	return &CacheReplacer{cache: cache}
}

func (c *CacheReplacer) Victim() (common.FrameID, error) {
	key, _, ok := c.cache.RemoveOldest()
	if !ok {
		return 0, ErrNoVictim
	}

	return key.(common.FrameID), nil
}

func (c *CacheReplacer) Pin(frameID common.FrameID) {
	c.cache.Remove(frameID)
}

func (c *CacheReplacer) Unpin(frameID common.FrameID) {
	c.cache.Add(frameID, struct{}{})
}

func (c *CacheReplacer) Size() uint64 {
	return uint64(c.cache.Len())
}
