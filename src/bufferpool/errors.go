package bufferpool

import "errors"

var (
	// ErrNoFrameAvailable is returned by NewPage and FetchPage when every
	// frame is pinned or the replacer has no candidate.
	ErrNoFrameAvailable = errors.New("no frame available")

	// ErrPageNotResident is returned when the requested page id is not in
	// the page table.
	ErrPageNotResident = errors.New("page not resident")

	// ErrPagePinned is returned by DeletePage while callers still hold pins.
	ErrPagePinned = errors.New("page is pinned")

	// ErrOverUnpin is returned by UnpinPage when the pin count is already
	// zero. It indicates a caller bug.
	ErrOverUnpin = errors.New("unpin without matching pin")

	// ErrNoVictim is returned by a Replacer whose evictable set is empty.
	ErrNoVictim = errors.New("no victim available")
)
