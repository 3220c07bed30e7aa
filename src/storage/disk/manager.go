package disk

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-faster/errors"
	"github.com/spf13/afero"

	"github.com/srfbd/pagevault/src/pkg/common"
	"github.com/srfbd/pagevault/src/storage/page"
)

const fileFlags = os.O_CREATE | os.O_RDWR

// Manager performs synchronous page-granular I/O against a single data file.
// Page p lives at byte offset p * page.PageSize.
type Manager struct {
	mu   sync.Mutex
	fs   afero.Fs
	file afero.File

	deallocated map[common.PageID]struct{}
}

func New(fs afero.Fs, path string) (*Manager, error) {
	file, err := fs.OpenFile(filepath.Clean(path), fileFlags, 0o600)
	if err != nil {
		return nil, errors.Wrapf(err, "open data file %q", path)
	}

	return &Manager{
		fs:          fs,
		file:        file,
		deallocated: make(map[common.PageID]struct{}),
	}, nil
}

// ReadPage fills buf with the persisted bytes of pageID. A page that was
// never written reads back as zeroes.
func (m *Manager) ReadPage(pageID common.PageID, buf []byte) error {
	if len(buf) != page.PageSize {
		return errors.Errorf("read buffer must be %d bytes, got %d", page.PageSize, len(buf))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.file.ReadAt(buf, offsetOf(pageID))
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return errors.Wrapf(err, "read page %d", pageID)
	}

	// the tail of a page at or past EOF reads back as zeroes
	for i := n; i < len(buf); i++ {
		buf[i] = 0
	}

	return nil
}

// WritePage durably writes buf as the contents of pageID.
func (m *Manager) WritePage(pageID common.PageID, buf []byte) error {
	if len(buf) != page.PageSize {
		return errors.Errorf("write buffer must be %d bytes, got %d", page.PageSize, len(buf))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := m.file.WriteAt(buf, offsetOf(pageID)); err != nil {
		return errors.Wrapf(err, "write page %d", pageID)
	}

	if err := m.file.Sync(); err != nil {
		return errors.Wrap(err, "sync data file")
	}

	return nil
}

// DeallocatePage records that pageID was retired by the caller. The extent is
// not reclaimed; the record exists so a future allocator can reuse ids.
func (m *Manager) DeallocatePage(pageID common.PageID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.deallocated[pageID] = struct{}{}
}

func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.file.Close(); err != nil {
		return errors.Wrap(err, "close data file")
	}

	return nil
}

func offsetOf(pageID common.PageID) int64 {
	return int64(pageID) * page.PageSize
}
