// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package sys

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func simKey(v uint32) []byte {
	b := make([]byte, 4)
	binary.NativeEndian.PutUint32(b, v)
	return b
}

func simNew(t *testing.T, maxEntries uint32) (*SimGateway, RawFD) {
	t.Helper()
	s := NewSimGateway()
	return s, s.CreateMap(4, 4, maxEntries)
}

func TestSimRoundTrip(t *testing.T) {
	s, fd := simNew(t, 16)

	_, err := s.UpdateElem(fd, simKey(1), simKey(100), 0)
	require.NoError(t, err)

	out := make([]byte, 4)
	code, err := s.LookupElem(fd, simKey(1), out, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, simKey(100), out)

	// The stored value is a copy, not an alias of the caller's buffer.
	v := simKey(200)
	_, err = s.UpdateElem(fd, simKey(2), v, 0)
	require.NoError(t, err)
	binary.NativeEndian.PutUint32(v, 999)
	_, err = s.LookupElem(fd, simKey(2), out, 0)
	require.NoError(t, err)
	assert.Equal(t, simKey(200), out)

	_, err = s.DeleteElem(fd, simKey(1))
	require.NoError(t, err)

	code, err = s.LookupElem(fd, simKey(1), out, 0)
	assert.Equal(t, -1, code)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestSimBadFD(t *testing.T) {
	s := NewSimGateway()
	out := make([]byte, 4)

	_, err := s.LookupElem(99, simKey(1), out, 0)
	assert.ErrorIs(t, err, unix.EBADF)
	_, err = s.UpdateElem(99, simKey(1), simKey(1), 0)
	assert.ErrorIs(t, err, unix.EBADF)
	_, err = s.DeleteElem(99, simKey(1))
	assert.ErrorIs(t, err, unix.EBADF)
	_, err = s.GetNextKey(99, nil, out)
	assert.ErrorIs(t, err, unix.EBADF)
}

func TestSimSizeMismatch(t *testing.T) {
	s, fd := simNew(t, 16)

	out := make([]byte, 4)
	_, err := s.LookupElem(fd, []byte{1}, out, 0)
	assert.ErrorIs(t, err, unix.EINVAL)

	_, err = s.UpdateElem(fd, simKey(1), []byte{1}, 0)
	assert.ErrorIs(t, err, unix.EINVAL)

	_, err = s.GetNextKey(fd, nil, make([]byte, 2))
	assert.ErrorIs(t, err, unix.EINVAL)
}

func TestSimUpdateFlags(t *testing.T) {
	s, fd := simNew(t, 16)

	// BPF_EXIST on a missing key.
	_, err := s.UpdateElem(fd, simKey(1), simKey(100), 2)
	assert.ErrorIs(t, err, unix.ENOENT)

	// BPF_NOEXIST creates, then refuses the duplicate.
	_, err = s.UpdateElem(fd, simKey(1), simKey(100), 1)
	require.NoError(t, err)
	_, err = s.UpdateElem(fd, simKey(1), simKey(101), 1)
	assert.ErrorIs(t, err, unix.EEXIST)

	// BPF_EXIST now overwrites.
	_, err = s.UpdateElem(fd, simKey(1), simKey(102), 2)
	require.NoError(t, err)

	out := make([]byte, 4)
	_, err = s.LookupElem(fd, simKey(1), out, 0)
	require.NoError(t, err)
	assert.Equal(t, simKey(102), out)
}

func TestSimCapacity(t *testing.T) {
	s, fd := simNew(t, 2)

	_, err := s.UpdateElem(fd, simKey(1), simKey(1), 0)
	require.NoError(t, err)
	_, err = s.UpdateElem(fd, simKey(2), simKey(2), 0)
	require.NoError(t, err)

	_, err = s.UpdateElem(fd, simKey(3), simKey(3), 0)
	assert.ErrorIs(t, err, unix.E2BIG)

	// Overwriting an existing key does not count against capacity.
	_, err = s.UpdateElem(fd, simKey(2), simKey(20), 0)
	require.NoError(t, err)

	// Freeing a slot admits a new key.
	_, err = s.DeleteElem(fd, simKey(1))
	require.NoError(t, err)
	_, err = s.UpdateElem(fd, simKey(3), simKey(3), 0)
	require.NoError(t, err)
}

func TestSimDeleteMissing(t *testing.T) {
	s, fd := simNew(t, 16)
	_, err := s.DeleteElem(fd, simKey(1))
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestSimTraversalOrder(t *testing.T) {
	s, fd := simNew(t, 16)
	for _, k := range []uint32{10, 20, 30} {
		_, err := s.UpdateElem(fd, simKey(k), simKey(k*10), 0)
		require.NoError(t, err)
	}

	walk := func(from []byte) []uint32 {
		var keys []uint32
		prev := from
		for {
			next := make([]byte, 4)
			_, err := s.GetNextKey(fd, prev, next)
			if err != nil {
				require.ErrorIs(t, err, unix.ENOENT)
				return keys
			}
			keys = append(keys, binary.NativeEndian.Uint32(next))
			prev = next
		}
	}

	assert.Equal(t, []uint32{10, 20, 30}, walk(nil))

	// Overwriting does not change traversal position.
	_, err := s.UpdateElem(fd, simKey(10), simKey(111), 0)
	require.NoError(t, err)
	assert.Equal(t, []uint32{10, 20, 30}, walk(nil))

	// A deleted cursor key restarts traversal from the beginning, as the
	// kernel hash map does.
	_, err = s.DeleteElem(fd, simKey(20))
	require.NoError(t, err)
	assert.Equal(t, []uint32{10, 30}, walk(simKey(20)))

	// Stepping from the last key signals end of map.
	next := make([]byte, 4)
	_, err = s.GetNextKey(fd, simKey(30), next)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestSimEmptyTraversal(t *testing.T) {
	s, fd := simNew(t, 16)
	next := make([]byte, 4)
	_, err := s.GetNextKey(fd, nil, next)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestSimEntries(t *testing.T) {
	s, fd := simNew(t, 16)
	assert.Equal(t, 0, s.Entries(fd))

	_, err := s.UpdateElem(fd, simKey(1), simKey(1), 0)
	require.NoError(t, err)
	_, err = s.UpdateElem(fd, simKey(2), simKey(2), 0)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Entries(fd))

	assert.Equal(t, 0, s.Entries(99))
}

func TestSimIndependentMaps(t *testing.T) {
	s := NewSimGateway()
	fd1 := s.CreateMap(4, 4, 16)
	fd2 := s.CreateMap(4, 4, 16)
	require.NotEqual(t, fd1, fd2)

	_, err := s.UpdateElem(fd1, simKey(1), simKey(100), 0)
	require.NoError(t, err)

	out := make([]byte, 4)
	_, err = s.LookupElem(fd2, simKey(1), out, 0)
	assert.ErrorIs(t, err, unix.ENOENT)
}

func TestIsNotExist(t *testing.T) {
	assert.True(t, IsNotExist(unix.ENOENT))
	assert.False(t, IsNotExist(unix.EFAULT))
	assert.False(t, IsNotExist(nil))
}
