package wal

import (
	"sync"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/storage/block"
	"MiniBase/internal/platform/utils"
)

const (
	FileNameSize    = 50
	ImageHeaderSize = FileNameSize + 4 + 4 + 8 + 4
	imageReserve    = 100
	logHeaderSize   = 8
)

// MaxImageData is how many payload bytes an image entry keeps for a given block size.
func MaxImageData(blockSize int) int {
	return blockSize - imageReserve
}

// ImageLog is an append-only file of block images, one entry per block-sized slot after the header block.
type ImageLog struct {
	mu    sync.Mutex
	store *block.Store
	count int32
}

func OpenImageLog(path string, blockSize int) (*ImageLog, error) {
	if blockSize <= imageReserve {
		return nil, domain.ValidationError("log block size must exceed %d bytes, got %d", imageReserve, blockSize)
	}
	store, err := block.Open(path, blockSize)
	if err != nil {
		return nil, err
	}
	count, err := readHeader(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	l := &ImageLog{store: store, count: count}
	if err := l.writeHeader(); err != nil {
		store.Close()
		return nil, err
	}
	if err := padHeaderBlock(store); err != nil {
		store.Close()
		return nil, err
	}
	return l, nil
}

func readHeader(store *block.Store) (int32, error) {
	size, err := store.Size()
	if err != nil || size == 0 {
		return 0, err
	}
	header := make([]byte, logHeaderSize)
	if err := store.ReadAt(0, header); err != nil {
		return 0, err
	}
	count := utils.Int32(header, 4)
	if count < 0 {
		return 0, domain.StructuralError("%s declares %d entries", store.Path(), count)
	}
	return count, nil
}

// padHeaderBlock grows a fresh log to one full header block.
func padHeaderBlock(store *block.Store) error {
	size, err := store.Size()
	if err != nil {
		return err
	}
	if size < int64(store.BlockSize()) {
		return store.Truncate(1)
	}
	return nil
}

func (l *ImageLog) writeHeader() error {
	header := make([]byte, logHeaderSize)
	utils.PutInt32(header, 0, l.count+1)
	utils.PutInt32(header, 4, l.count)
	return l.store.WriteAt(0, header)
}

func (l *ImageLog) Path() string {
	return l.store.Path()
}

func (l *ImageLog) Count() int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Append writes entry into the next slot. Data beyond MaxImageData is dropped.
func (l *ImageLog) Append(entry domain.ImageEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	bs := l.store.BlockSize()
	data := entry.Data
	if limit := MaxImageData(bs); len(data) > limit {
		data = data[:limit]
	}
	buf := make([]byte, bs)
	utils.PutPadded(buf, 0, FileNameSize, entry.FileName, 0)
	utils.PutInt32(buf, FileNameSize, entry.TransId)
	utils.PutInt32(buf, FileNameSize+4, entry.BlockId)
	utils.PutFloat64(buf, FileNameSize+8, entry.Timestamp)
	utils.PutInt32(buf, FileNameSize+16, int32(len(data)))
	copy(buf[ImageHeaderSize:], data)

	if err := l.store.WriteBlock(l.count+1, buf); err != nil {
		return err
	}
	l.count++
	return l.writeHeader()
}

// Entries decodes every logged image in append order.
func (l *ImageLog) Entries() ([]domain.ImageEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entries := make([]domain.ImageEntry, 0, l.count)
	for i := int32(0); i < l.count; i++ {
		buf, err := l.store.ReadBlock(i + 1)
		if err != nil {
			return nil, err
		}
		n := utils.Int32(buf, FileNameSize+16)
		if n < 0 || ImageHeaderSize+int(n) > len(buf) {
			return nil, domain.StructuralError("%s entry %d declares %d data bytes", l.store.Path(), i, n)
		}
		data := make([]byte, n)
		copy(data, buf[ImageHeaderSize:ImageHeaderSize+int(n)])
		entries = append(entries, domain.ImageEntry{
			FileName:  utils.CString(buf, 0, FileNameSize),
			TransId:   utils.Int32(buf, FileNameSize),
			BlockId:   utils.Int32(buf, FileNameSize+4),
			Timestamp: utils.Float64(buf, FileNameSize+8),
			Data:      data,
		})
	}
	return entries, nil
}

func (l *ImageLog) Sync() error {
	return l.store.Sync()
}

func (l *ImageLog) Close() error {
	return l.store.Close()
}
