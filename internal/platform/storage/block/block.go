package block

import (
	"errors"
	"io"
	"os"
	"sync"

	"MiniBase/internal/domain"
)

// Store gives fixed-size block and byte-level access to a single file.
type Store struct {
	mu        sync.Mutex
	fd        *os.File
	path      string
	blockSize int
}

func Open(path string, blockSize int) (*Store, error) {
	if blockSize <= 0 {
		return nil, domain.ValidationError("block size must be positive, got %d", blockSize)
	}
	fd, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, domain.IOError("open "+path, err)
	}
	return &Store{fd: fd, path: path, blockSize: blockSize}, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) BlockSize() int {
	return s.blockSize
}

func (s *Store) Size() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size()
}

func (s *Store) size() (int64, error) {
	if s.fd == nil {
		return 0, domain.IOError("stat "+s.path, os.ErrClosed)
	}
	info, err := s.fd.Stat()
	if err != nil {
		return 0, domain.IOError("stat "+s.path, err)
	}
	return info.Size(), nil
}

// NumBlocks counts blocks, including a trailing partial one.
func (s *Store) NumBlocks() (int32, error) {
	size, err := s.Size()
	if err != nil {
		return 0, err
	}
	bs := int64(s.blockSize)
	return int32((size + bs - 1) / bs), nil
}

// ReadBlock returns a full block. Bytes past the end of the file read as zero.
func (s *Store) ReadBlock(id int32) ([]byte, error) {
	buf := make([]byte, s.blockSize)
	if err := s.ReadAt(int64(id)*int64(s.blockSize), buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (s *Store) ReadAt(off int64, buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd == nil {
		return domain.IOError("read "+s.path, os.ErrClosed)
	}
	n, err := s.fd.ReadAt(buf, off)
	if err != nil && !errors.Is(err, io.EOF) {
		return domain.IOError("read "+s.path, err)
	}
	clear(buf[n:])
	return nil
}

// WriteBlock writes buf at the start of block id. buf may be shorter than a block.
func (s *Store) WriteBlock(id int32, buf []byte) error {
	if len(buf) > s.blockSize {
		return domain.ValidationError("block payload of %d bytes exceeds block size %d", len(buf), s.blockSize)
	}
	return s.WriteAt(int64(id)*int64(s.blockSize), buf)
}

func (s *Store) WriteAt(off int64, buf []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd == nil {
		return domain.IOError("write "+s.path, os.ErrClosed)
	}
	if _, err := s.fd.WriteAt(buf, off); err != nil {
		return domain.IOError("write "+s.path, err)
	}
	return nil
}

func (s *Store) ReadAll() ([]byte, error) {
	size, err := s.Size()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	if err := s.ReadAt(0, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Truncate cuts the file to n whole blocks.
func (s *Store) Truncate(n int32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd == nil {
		return domain.IOError("truncate "+s.path, os.ErrClosed)
	}
	if err := s.fd.Truncate(int64(n) * int64(s.blockSize)); err != nil {
		return domain.IOError("truncate "+s.path, err)
	}
	return nil
}

func (s *Store) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fd == nil {
		return domain.IOError("sync "+s.path, os.ErrClosed)
	}
	if err := s.fd.Sync(); err != nil {
		return domain.IOError("sync "+s.path, err)
	}
	return nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.close()
}

func (s *Store) close() error {
	// s.fd will be nil if close is already called
	if s.fd != nil {
		if err := s.fd.Close(); err != nil {
			return domain.IOError("close "+s.path, err)
		}
		s.fd = nil
	}
	return nil
}

// Remove closes the store and deletes its file.
func (s *Store) Remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.close(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.IOError("remove "+s.path, err)
	}
	return nil
}
