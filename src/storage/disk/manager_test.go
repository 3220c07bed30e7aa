package disk

import (
	"bytes"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srfbd/pagevault/src/storage/page"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()

	m, err := New(afero.NewMemMapFs(), "data.db")
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })

	return m
}

func TestWriteReadRoundTrip(t *testing.T) {
	m := newTestManager(t)

	out := make([]byte, page.PageSize)
	copy(out, "round trip payload")

	require.NoError(t, m.WritePage(3, out))

	in := make([]byte, page.PageSize)
	require.NoError(t, m.ReadPage(3, in))

	assert.Equal(t, out, in)
}

func TestReadNeverWrittenPageIsZeroed(t *testing.T) {
	m := newTestManager(t)

	buf := make([]byte, page.PageSize)
	for i := range buf {
		buf[i] = 0xff
	}

	require.NoError(t, m.ReadPage(9, buf))

	assert.True(t, bytes.Equal(buf, make([]byte, page.PageSize)))
}

func TestReadTailBeyondEOFIsZeroed(t *testing.T) {
	m := newTestManager(t)

	out := make([]byte, page.PageSize)
	copy(out, "first page")
	require.NoError(t, m.WritePage(0, out))

	// page 1 starts at EOF
	buf := make([]byte, page.PageSize)
	for i := range buf {
		buf[i] = 0xff
	}
	require.NoError(t, m.ReadPage(1, buf))

	assert.True(t, bytes.Equal(buf, make([]byte, page.PageSize)))
}

func TestRejectsShortBuffers(t *testing.T) {
	m := newTestManager(t)

	short := make([]byte, 16)

	assert.Error(t, m.ReadPage(0, short))
	assert.Error(t, m.WritePage(0, short))
}

func TestPagesDoNotOverlap(t *testing.T) {
	m := newTestManager(t)

	first := make([]byte, page.PageSize)
	second := make([]byte, page.PageSize)
	copy(first, "first")
	copy(second, "second")

	require.NoError(t, m.WritePage(0, first))
	require.NoError(t, m.WritePage(1, second))

	in := make([]byte, page.PageSize)
	require.NoError(t, m.ReadPage(0, in))
	assert.Equal(t, first, in)

	require.NoError(t, m.ReadPage(1, in))
	assert.Equal(t, second, in)
}
