package domain

import (
	"fmt"
	"time"
)

type TransactionState int32

const (
	TransactionActive    TransactionState = 1
	TransactionCommitted TransactionState = 2
	TransactionAborted   TransactionState = 3
)

func (s TransactionState) String() string {
	switch s {
	case TransactionActive:
		return "ACTIVE"
	case TransactionCommitted:
		return "COMMITTED"
	case TransactionAborted:
		return "ABORTED"
	}
	return fmt.Sprintf("TransactionState(%d)", int32(s))
}

type LogType int32

const (
	LogBegin       LogType = 1
	LogBeforeImage LogType = 2
	LogAfterImage  LogType = 3
	LogCommit      LogType = 4
	LogAbort       LogType = 5
)

func (l LogType) String() string {
	switch l {
	case LogBegin:
		return "BEGIN"
	case LogBeforeImage:
		return "BEFORE"
	case LogAfterImage:
		return "AFTER"
	case LogCommit:
		return "COMMIT"
	case LogAbort:
		return "ABORT"
	}
	return fmt.Sprintf("LogType(%d)", int32(l))
}

type Operation struct {
	Type      LogType
	FileName  string
	BlockId   int32
	Timestamp float64
}

type Transaction struct {
	Id         int32
	State      TransactionState
	StartTime  time.Time
	Operations []Operation
	imaged     map[imageKey]struct{}
}

type imageKey struct {
	file  string
	block int32
}

func newTransaction(id int32, start time.Time) *Transaction {
	return &Transaction{
		Id:        id,
		State:     TransactionActive,
		StartTime: start,
		imaged:    make(map[imageKey]struct{}),
	}
}

func (t *Transaction) copy() Transaction {
	ops := make([]Operation, len(t.Operations))
	copy(ops, t.Operations)
	return Transaction{
		Id:         t.Id,
		State:      t.State,
		StartTime:  t.StartTime,
		Operations: ops,
	}
}

// ImageEntry is one before- or after-image as stored in an image log.
type ImageEntry struct {
	TransId   int32
	FileName  string
	BlockId   int32
	Timestamp float64
	Data      []byte
}

// StateEntry is one record of the transaction state log.
type StateEntry struct {
	TransId   int32
	Type      LogType
	Timestamp float64
}

type TransactionEvent struct {
	TransId   int32
	Type      LogType
	Timestamp float64
}

// Timestamp converts t to fractional seconds since the epoch, the log time format.
func Timestamp(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
