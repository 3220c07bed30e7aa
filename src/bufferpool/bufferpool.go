package bufferpool

import (
	"sync"

	"github.com/go-faster/errors"

	"github.com/srfbd/pagevault/src/pkg/assert"
	"github.com/srfbd/pagevault/src/pkg/common"
	"github.com/srfbd/pagevault/src/recovery"
	"github.com/srfbd/pagevault/src/storage/page"
)

const noFrame = ^common.FrameID(0)

// DiskManager is the block I/O primitive the pool delegates to.
type DiskManager interface {
	ReadPage(pageID common.PageID, buf []byte) error
	WritePage(pageID common.PageID, buf []byte) error
	DeallocatePage(pageID common.PageID)
}

// BufferPool mediates all page I/O between access methods and the disk.
// Pages returned by NewPage and FetchPage stay resident until the matching
// UnpinPage.
type BufferPool interface {
	NewPage() (*page.Page, error)
	FetchPage(pageID common.PageID) (*page.Page, error)
	UnpinPage(pageID common.PageID, isDirty bool) error
	FlushPage(pageID common.PageID) error
	FlushAllPages()
	DeletePage(pageID common.PageID) error
	PoolSize() uint64
}

// frame couples one resident page image with the pool's bookkeeping for it.
// Metadata is only touched under the pool latch.
type frame struct {
	page     *page.Page
	pinCount int
	dirty    bool
}

// Manager is one buffer pool instance. In a striped multi-instance pool it
// owns the page ids congruent to instanceIndex modulo numInstances.
type Manager struct {
	poolSize      uint64
	numInstances  uint32
	instanceIndex uint32

	latch      sync.Mutex
	nextPageID common.PageID
	frames     []frame
	pageTable  map[common.PageID]common.FrameID
	freeList   []common.FrameID

	replacer Replacer
	disk     DiskManager
	logMgr   *recovery.LogManager

	log     Logger
	metrics *poolMetrics
}

var (
	_ BufferPool = &Manager{}
)

// New builds a single-instance pool.
func New(
	poolSize uint64,
	replacer Replacer,
	disk DiskManager,
	logMgr *recovery.LogManager,
) *Manager {
	return NewSharded(poolSize, 1, 0, replacer, disk, logMgr)
}

// NewSharded builds one instance of a striped pool. The instance allocates
// page ids instanceIndex, instanceIndex+numInstances, and so on.
func NewSharded(
	poolSize uint64,
	numInstances uint32,
	instanceIndex uint32,
	replacer Replacer,
	disk DiskManager,
	logMgr *recovery.LogManager,
) *Manager {
	assert.Assert(poolSize > 0, "pool size must be greater than zero")
	assert.Assert(numInstances > 0, "a pool has at least one instance")
	assert.Assert(
		instanceIndex < numInstances,
		"instance index %d out of range for %d instances",
		instanceIndex,
		numInstances,
	)

	frames := make([]frame, poolSize)
	freeList := make([]common.FrameID, poolSize)
	for i := range frames {
		frames[i].page = page.New()
		freeList[i] = common.FrameID(i)
	}

	return &Manager{
		poolSize:      poolSize,
		numInstances:  numInstances,
		instanceIndex: instanceIndex,
		nextPageID:    common.PageID(instanceIndex),
		frames:        frames,
		pageTable:     make(map[common.PageID]common.FrameID),
		freeList:      freeList,
		replacer:      replacer,
		disk:          disk,
		logMgr:        logMgr,
		log:           noopLogger{},
		metrics:       newPoolMetrics(),
	}
}

// SetLogger replaces the pool's logger. Call before sharing the pool across
// goroutines.
func (m *Manager) SetLogger(log Logger) {
	m.log = log
}

func (m *Manager) PoolSize() uint64 {
	return m.poolSize
}

// NewPage allocates a fresh page id, binds it to a frame and returns the
// pinned page. The id counter advances even when no frame is available,
// keeping the stripe arithmetic monotone.
func (m *Manager) NewPage() (*page.Page, error) {
	m.latch.Lock()
	defer m.latch.Unlock()

	newPID := m.allocatePage()

	frameID, err := m.acquireFrame()
	if err != nil {
		m.log.Debugf("no frame for new page %d: %v", newPID, err)
		return nil, err
	}

	f := &m.frames[frameID]
	f.page.Reset()
	f.page.SetID(newPID)
	f.dirty = false
	f.pinCount = 1

	m.pageTable[newPID] = frameID
	m.replacer.Pin(frameID)

	m.log.Debugf("bound new page %d to frame %d", newPID, frameID)

	return f.page, nil
}

// FetchPage returns the resident page for pageID, reading it from disk if
// necessary. The caller must release it with UnpinPage.
func (m *Manager) FetchPage(pageID common.PageID) (*page.Page, error) {
	m.latch.Lock()
	defer m.latch.Unlock()

	if frameID, ok := m.pageTable[pageID]; ok {
		f := &m.frames[frameID]
		f.pinCount++
		m.replacer.Pin(frameID)
		m.metrics.hit()

		return f.page, nil
	}

	m.metrics.miss()

	frameID, err := m.acquireFrame()
	if err != nil {
		m.log.Debugf("no frame to fetch page %d: %v", pageID, err)
		return nil, err
	}

	f := &m.frames[frameID]
	f.page.Reset()
	f.page.SetID(pageID)
	f.dirty = false
	f.pinCount = 1

	if err := m.disk.ReadPage(pageID, f.page.Data()); err != nil {
		f.page.Reset()
		f.pinCount = 0
		m.freeList = append(m.freeList, frameID)

		return nil, errors.Wrapf(err, "read page %d", pageID)
	}

	m.pageTable[pageID] = frameID
	m.replacer.Pin(frameID)

	m.log.Debugf("fetched page %d into frame %d", pageID, frameID)

	return f.page, nil
}

// UnpinPage releases one pin on pageID. Dirtiness accumulates until the next
// flush or eviction: a clean unpin never clears an earlier dirty one.
func (m *Manager) UnpinPage(pageID common.PageID, isDirty bool) error {
	m.latch.Lock()
	defer m.latch.Unlock()

	frameID, ok := m.pageTable[pageID]
	if !ok {
		return ErrPageNotResident
	}

	f := &m.frames[frameID]
	f.dirty = f.dirty || isDirty

	if f.pinCount <= 0 {
		return ErrOverUnpin
	}

	f.pinCount--
	if f.pinCount == 0 {
		m.replacer.Unpin(frameID)
	}

	return nil
}

// FlushPage writes the resident image of pageID to disk and clears its dirty
// bit. Pin state and residency are unchanged.
func (m *Manager) FlushPage(pageID common.PageID) error {
	m.latch.Lock()
	defer m.latch.Unlock()

	frameID, ok := m.pageTable[pageID]
	if !ok {
		return ErrPageNotResident
	}

	f := &m.frames[frameID]
	if err := m.disk.WritePage(pageID, f.page.Data()); err != nil {
		return errors.Wrapf(err, "flush page %d", pageID)
	}

	f.dirty = false
	m.metrics.writeBack()

	m.log.Debugf("flushed page %d from frame %d", pageID, frameID)

	return nil
}

// FlushAllPages writes every resident page to disk, dirty or not. Write
// failures are logged and do not stop the sweep.
func (m *Manager) FlushAllPages() {
	m.latch.Lock()
	defer m.latch.Unlock()

	for pageID, frameID := range m.pageTable {
		f := &m.frames[frameID]
		if err := m.disk.WritePage(pageID, f.page.Data()); err != nil {
			m.log.Errorf("flush of page %d failed: %v", pageID, err)
			continue
		}

		f.dirty = false
		m.metrics.writeBack()
	}
}

// DeletePage drops pageID from the pool and returns its frame to the free
// list. Deleting an absent page succeeds; deleting a pinned page fails with
// ErrPagePinned.
func (m *Manager) DeletePage(pageID common.PageID) error {
	m.latch.Lock()
	defer m.latch.Unlock()

	frameID, ok := m.pageTable[pageID]
	if !ok {
		m.disk.DeallocatePage(pageID)
		return nil
	}

	f := &m.frames[frameID]
	if f.pinCount != 0 {
		return ErrPagePinned
	}

	if f.dirty {
		if err := m.disk.WritePage(pageID, f.page.Data()); err != nil {
			return errors.Wrapf(err, "write back page %d before delete", pageID)
		}

		m.metrics.writeBack()
	}

	// the frame leaves the evictable set and joins the free list
	m.replacer.Pin(frameID)

	f.page.Reset()
	f.dirty = false
	f.pinCount = 0

	delete(m.pageTable, pageID)
	m.freeList = append(m.freeList, frameID)
	m.disk.DeallocatePage(pageID)

	m.log.Debugf("deleted page %d, frame %d freed", pageID, frameID)

	return nil
}

// acquireFrame implements the victim discipline shared by NewPage and
// FetchPage: free list first, then an all-pinned short-circuit, then the
// replacer. A victim's prior tenant is written back if dirty and dropped
// from the page table. Caller holds the latch.
func (m *Manager) acquireFrame() (common.FrameID, error) {
	if len(m.freeList) > 0 {
		frameID := m.freeList[0]
		m.freeList = m.freeList[1:]

		return frameID, nil
	}

	allPinned := true
	for i := range m.frames {
		if m.frames[i].pinCount == 0 {
			allPinned = false
			break
		}
	}
	if allPinned {
		return noFrame, ErrNoFrameAvailable
	}

	victimID, err := m.replacer.Victim()
	if err != nil {
		return noFrame, ErrNoFrameAvailable
	}

	victim := &m.frames[victimID]
	oldPID := victim.page.ID()

	if victim.dirty {
		if err := m.disk.WritePage(oldPID, victim.page.Data()); err != nil {
			m.replacer.Unpin(victimID)
			return noFrame, errors.Wrapf(err, "write back page %d", oldPID)
		}

		victim.dirty = false
		m.metrics.writeBack()
	}

	delete(m.pageTable, oldPID)
	m.metrics.eviction()

	m.log.Debugf("evicted page %d from frame %d", oldPID, victimID)

	return victimID, nil
}

// allocatePage hands out the next page id of this instance's stripe.
func (m *Manager) allocatePage() common.PageID {
	pid := m.nextPageID
	m.nextPageID += common.PageID(m.numInstances)
	m.validatePageID(pid)

	return pid
}

func (m *Manager) validatePageID(pid common.PageID) {
	assert.Assert(
		pid%common.PageID(m.numInstances) == common.PageID(m.instanceIndex),
		"page id %d does not belong to instance %d of %d",
		pid,
		m.instanceIndex,
		m.numInstances,
	)
}
