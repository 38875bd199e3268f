package process_blob

import (
	"testing"

	"memscan/process"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSnapshot(t *testing.T, options ...Option) *Snapshot {
	t.Helper()
	s := New(options...)
	require.NoError(t, s.AddRegion(0x1000, "r-xp", "/bin/demo", make([]byte, 0x100)))
	require.NoError(t, s.AddRegion(0x3000, "rw-p", "[heap]", []byte{1, 2, 3, 4, 5, 6, 7, 8}))
	return s
}

func TestSnapshot_QueryMemory(t *testing.T) {
	s := newTestSnapshot(t)

	item, next, err := s.QueryMemory(0)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x1000), item.Address)
	assert.Equal(t, process.ProcessMemoryAddress(0x1100), next)

	item, next, err = s.QueryMemory(0x1100)
	require.NoError(t, err)
	assert.Equal(t, "[heap]", item.Path)
	assert.Equal(t, process.ProcessMemoryAddress(0x3008), next)

	_, _, err = s.QueryMemory(0x3008)
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)
}

func TestSnapshot_RawRead(t *testing.T) {
	s := newTestSnapshot(t)

	data, err := s.RawRead(0x3002, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{3, 4, 5, 6}, data)

	// callers own the returned slice
	data[0] = 0xFF
	again, err := s.RawRead(0x3002, 1)
	require.NoError(t, err)
	assert.Equal(t, []byte{3}, again)

	_, err = s.RawRead(0x3006, 4)
	assert.ErrorIs(t, err, process.ErrPartialRead)

	_, err = s.RawRead(0x2000, 1)
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)
}

func TestSnapshot_RawWrite(t *testing.T) {
	s := newTestSnapshot(t)

	require.NoError(t, s.RawWrite(0x3000, []byte{9, 9}))
	data, err := s.RawRead(0x3000, 3)
	require.NoError(t, err)
	assert.Equal(t, []byte{9, 9, 3}, data)

	err = s.RawWrite(0x1000, []byte{1})
	assert.ErrorIs(t, err, process.ErrNotWritable)

	err = s.RawWrite(0x5000, []byte{1})
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)
}

func TestSnapshot_AddRegionRejectsOverlap(t *testing.T) {
	s := newTestSnapshot(t)

	assert.Error(t, s.AddRegion(0x10F0, "rw-p", "", make([]byte, 0x20)))
	assert.Error(t, s.AddRegion(0x2000, "rw-p", "", nil))
	assert.NoError(t, s.AddRegion(0x1100, "rw-p", "", make([]byte, 0x10)))
}

func TestSnapshot_MainModuleBounds(t *testing.T) {
	s := newTestSnapshot(t, WithProcessInfo(process.ProcessInfo{PID: 7, Name: "demo", Exe: "/bin/demo"}))
	require.NoError(t, s.AddRegion(0x1100, "r--p", "/bin/demo", make([]byte, 0x40)))

	start, end, err := s.GetMainModuleBounds()
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x1000), start)
	assert.Equal(t, process.ProcessMemoryAddress(0x1140), end)

	fixed := New(WithMainModule(0x400000, 0x500000))
	start, end, err = fixed.GetMainModuleBounds()
	require.NoError(t, err)
	assert.Equal(t, process.ProcessMemoryAddress(0x400000), start)
	assert.Equal(t, process.ProcessMemoryAddress(0x500000), end)

	_, _, err = New().GetMainModuleBounds()
	assert.ErrorIs(t, err, process.ErrAddressNotMapped)
}

func TestSnapshot_Properties(t *testing.T) {
	s := New(WithBigEndian(), WithPointerSize(4), WithClock(133000000000000000, 4242))

	assert.False(t, s.IsLittleEndian())
	assert.Equal(t, process.ProcessMemorySize(4), s.PointerSize())
	assert.Equal(t, uint64(133000000000000000), s.GetFileTime64())
	assert.Equal(t, uint32(4242), s.GetTickTime32())
	assert.ErrorIs(t, s.Attach(1), ErrAttachNotSupported)
}

func TestSnapshot_Close(t *testing.T) {
	s := newTestSnapshot(t)
	assert.True(t, s.IsAttached())

	require.NoError(t, s.Close())
	assert.False(t, s.IsAttached())

	_, err := s.RawRead(0x3000, 1)
	assert.ErrorIs(t, err, process.ErrProcessNotOpen)

	_, _, err = s.QueryMemory(0)
	assert.ErrorIs(t, err, process.ErrProcessNotOpen)

	assert.ErrorIs(t, s.AddRegion(0x9000, "rw-p", "", []byte{1}), process.ErrProcessNotOpen)
}
