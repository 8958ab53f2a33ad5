package wal

import (
	"errors"
	"os"
	"path/filepath"

	"MiniBase/internal/domain"

	"github.com/phuslu/log"
)

const (
	BeforeImagesFile = "before_images.log"
	AfterImagesFile  = "after_images.log"
	TransactionFile  = "transaction.log"
)

// Log is the write-ahead log: before-images, after-images and transaction states.
type Log struct {
	Before *ImageLog
	After  *ImageLog
	States *StateLog
	logger log.Logger
}

func Open(dir string, blockSize int, logger log.Logger) (*Log, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, domain.IOError("create "+dir, err)
	}
	before, err := OpenImageLog(filepath.Join(dir, BeforeImagesFile), blockSize)
	if err != nil {
		return nil, err
	}
	after, err := OpenImageLog(filepath.Join(dir, AfterImagesFile), blockSize)
	if err != nil {
		before.Close()
		return nil, err
	}
	states, err := OpenStateLog(filepath.Join(dir, TransactionFile), blockSize)
	if err != nil {
		before.Close()
		after.Close()
		return nil, err
	}
	logger.Info().Str("directory", dir).
		Int32("before_images", before.Count()).
		Int32("after_images", after.Count()).
		Int32("states", states.Count()).
		Msg("write-ahead log opened")
	return &Log{Before: before, After: after, States: states, logger: logger}, nil
}

func (l *Log) AppendState(entry domain.StateEntry) error {
	return l.States.Append(entry)
}

func (l *Log) AppendBeforeImage(entry domain.ImageEntry) error {
	return l.Before.Append(entry)
}

func (l *Log) AppendAfterImage(entry domain.ImageEntry) error {
	return l.After.Append(entry)
}

func (l *Log) SyncAfterImages() error {
	return l.After.Sync()
}

func (l *Log) LastTransactionId() (int32, error) {
	return l.States.LastTransactionId()
}

func (l *Log) Close() error {
	return errors.Join(l.Before.Close(), l.After.Close(), l.States.Close())
}
