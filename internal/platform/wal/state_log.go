package wal

import (
	"sync"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/storage/block"
	"MiniBase/internal/platform/utils"
)

const StateEntrySize = 16

// StateLog holds fixed 16-byte transaction state records after a header block.
type StateLog struct {
	mu    sync.Mutex
	store *block.Store
	count int32
}

func OpenStateLog(path string, blockSize int) (*StateLog, error) {
	store, err := block.Open(path, blockSize)
	if err != nil {
		return nil, err
	}
	count, err := readHeader(store)
	if err != nil {
		store.Close()
		return nil, err
	}
	l := &StateLog{store: store, count: count}
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

func (l *StateLog) writeHeader() error {
	header := make([]byte, logHeaderSize)
	utils.PutInt32(header, 4, l.count)
	return l.store.WriteAt(0, header)
}

func (l *StateLog) offset(i int32) int64 {
	return int64(l.store.BlockSize()) + int64(i)*StateEntrySize
}

func (l *StateLog) Count() int32 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

func (l *StateLog) Append(entry domain.StateEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	buf := make([]byte, StateEntrySize)
	utils.PutInt32(buf, 0, entry.TransId)
	utils.PutInt32(buf, 4, int32(entry.Type))
	utils.PutFloat64(buf, 8, entry.Timestamp)
	if err := l.store.WriteAt(l.offset(l.count), buf); err != nil {
		return err
	}
	l.count++
	return l.writeHeader()
}

func (l *StateLog) Entries() ([]domain.StateEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.entries()
}

func (l *StateLog) entries() ([]domain.StateEntry, error) {
	if l.count == 0 {
		return nil, nil
	}
	buf := make([]byte, int(l.count)*StateEntrySize)
	if err := l.store.ReadAt(l.offset(0), buf); err != nil {
		return nil, err
	}
	entries := make([]domain.StateEntry, l.count)
	for i := range entries {
		off := i * StateEntrySize
		entries[i] = domain.StateEntry{
			TransId:   utils.Int32(buf, off),
			Type:      domain.LogType(utils.Int32(buf, off+4)),
			Timestamp: utils.Float64(buf, off+8),
		}
	}
	return entries, nil
}

// LastTransactionId is the highest id in the log, or 0 when it is empty.
func (l *StateLog) LastTransactionId() (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entries, err := l.entries()
	if err != nil {
		return 0, err
	}
	var last int32
	for _, e := range entries {
		last = max(last, e.TransId)
	}
	return last, nil
}

func (l *StateLog) Sync() error {
	return l.store.Sync()
}

func (l *StateLog) Close() error {
	return l.store.Close()
}
