package page

import (
	"sync"

	"github.com/srfbd/pagevault/src/pkg/common"
)

const PageSize = 4096

// Page is the in-memory image of one disk page. The buffer pool owns the
// identity and residency metadata; callers holding a pin may read and write
// the payload under the page latch.
type Page struct {
	latch sync.RWMutex

	id   common.PageID
	data [PageSize]byte
}

func New() *Page {
	return &Page{id: common.InvalidPageID}
}

func (p *Page) ID() common.PageID {
	return p.id
}

// SetID rebinds the page to a new identity. Only the buffer pool calls this.
func (p *Page) SetID(id common.PageID) {
	p.id = id
}

// Data returns the full payload slice. Callers must hold a pin; writers must
// hold the latch.
func (p *Page) Data() []byte {
	return p.data[:]
}

func (p *Page) SetData(d []byte) {
	copy(p.data[:], d)
}

// Reset zeroes the payload and unbinds the identity.
func (p *Page) Reset() {
	p.id = common.InvalidPageID
	p.data = [PageSize]byte{}
}

func (p *Page) Lock()    { p.latch.Lock() }
func (p *Page) Unlock()  { p.latch.Unlock() }
func (p *Page) RLock()   { p.latch.RLock() }
func (p *Page) RUnlock() { p.latch.RUnlock() }
