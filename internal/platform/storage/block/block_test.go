package block

import (
	"os"
	"path/filepath"
	"testing"

	"MiniBase/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, blockSize int) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "blocks.dat"), blockSize)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestReadBlockPastEndIsZeroFilled(t *testing.T) {
	s := openStore(t, 16)

	buf, err := s.ReadBlock(3)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), buf)

	n, err := s.NumBlocks()
	require.NoError(t, err)
	assert.Equal(t, int32(0), n)
}

func TestWriteAndReadBlock(t *testing.T) {
	s := openStore(t, 8)

	require.NoError(t, s.WriteBlock(1, []byte("abcdefgh")))
	require.NoError(t, s.WriteBlock(0, []byte("xy")))

	b1, err := s.ReadBlock(1)
	require.NoError(t, err)
	assert.Equal(t, "abcdefgh", string(b1))

	b0, err := s.ReadBlock(0)
	require.NoError(t, err)
	assert.Equal(t, []byte{'x', 'y', 0, 0, 0, 0, 0, 0}, b0)

	n, err := s.NumBlocks()
	require.NoError(t, err)
	assert.Equal(t, int32(2), n)
}

func TestWriteBlockRejectsOversizedPayload(t *testing.T) {
	s := openStore(t, 4)
	err := s.WriteBlock(0, []byte("too long"))
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestWriteAtAndReadAll(t *testing.T) {
	s := openStore(t, 8)

	require.NoError(t, s.WriteAt(10, []byte("hi")))
	all, err := s.ReadAll()
	require.NoError(t, err)
	assert.Len(t, all, 12)
	assert.Equal(t, "hi", string(all[10:]))

	n, err := s.NumBlocks()
	require.NoError(t, err)
	assert.Equal(t, int32(2), n)
}

func TestTruncate(t *testing.T) {
	s := openStore(t, 4)
	require.NoError(t, s.WriteBlock(2, []byte("abcd")))
	require.NoError(t, s.Truncate(1))

	size, err := s.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(4), size)
}

func TestCloseIsIdempotent(t *testing.T) {
	s := openStore(t, 4)
	assert.NoError(t, s.Close())
	assert.NoError(t, s.Close())

	_, err := s.ReadBlock(0)
	assert.ErrorIs(t, err, domain.ErrIO)
	assert.ErrorIs(t, err, os.ErrClosed)
}

func TestRemoveDeletesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gone.dat")
	s, err := Open(path, 4)
	require.NoError(t, err)
	require.NoError(t, s.WriteBlock(0, []byte("data")))

	require.NoError(t, s.Remove())
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestOpenFailureIsIOError(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing", "x.dat"), 4)
	assert.ErrorIs(t, err, domain.ErrIO)
}
