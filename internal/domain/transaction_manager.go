package domain

import (
	"sort"
	"sync"
	"time"

	"github.com/phuslu/log"
)

type TransactionManager struct {
	log       TransactionLog
	publisher TransactionEventPublisher
	logger    log.Logger
	nextId    int32
	active    map[int32]*Transaction
	committed map[int32]*Transaction
	now       func() time.Time
	mu        sync.Mutex
}

func NewTransactionManager(txLog TransactionLog, publisher TransactionEventPublisher, logger log.Logger) (*TransactionManager, error) {
	last, err := txLog.LastTransactionId()
	if err != nil {
		return nil, err
	}
	if publisher == nil {
		publisher = NoopEventPublisher{}
	}
	return &TransactionManager{
		log:       txLog,
		publisher: publisher,
		logger:    logger,
		nextId:    last + 1,
		active:    make(map[int32]*Transaction),
		committed: make(map[int32]*Transaction),
		now:       time.Now,
	}, nil
}

// Begin starts a transaction and records BEGIN in the state log.
func (tm *TransactionManager) Begin() (int32, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	start := tm.now()
	id := tm.nextId
	entry := StateEntry{TransId: id, Type: LogBegin, Timestamp: Timestamp(start)}
	if err := tm.log.AppendState(entry); err != nil {
		return 0, err
	}
	tm.nextId++
	tm.active[id] = newTransaction(id, start)
	tm.logger.Debug().Int32("transaction", id).Msg("transaction started")
	tm.publish(TransactionEvent{TransId: id, Type: LogBegin, Timestamp: entry.Timestamp})
	return id, nil
}

func (tm *TransactionManager) LogBeforeImage(id int32, fileName string, blockId int32, data []byte) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	t, err := tm.activeTransaction(id)
	if err != nil {
		return err
	}
	ts := Timestamp(tm.now())
	err = tm.log.AppendBeforeImage(ImageEntry{TransId: id, FileName: fileName, BlockId: blockId, Timestamp: ts, Data: data})
	if err != nil {
		return err
	}
	if err := tm.log.AppendState(StateEntry{TransId: id, Type: LogBeforeImage, Timestamp: ts}); err != nil {
		return err
	}
	t.imaged[imageKey{file: fileName, block: blockId}] = struct{}{}
	t.Operations = append(t.Operations, Operation{Type: LogBeforeImage, FileName: fileName, BlockId: blockId, Timestamp: ts})
	return nil
}

// LogAfterImage requires a before-image of the same block by the same transaction.
func (tm *TransactionManager) LogAfterImage(id int32, fileName string, blockId int32, data []byte) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	t, err := tm.activeTransaction(id)
	if err != nil {
		return err
	}
	if _, ok := t.imaged[imageKey{file: fileName, block: blockId}]; !ok {
		return TransactionStateError("transaction %d has no before-image for %s block %d", id, fileName, blockId)
	}
	ts := Timestamp(tm.now())
	err = tm.log.AppendAfterImage(ImageEntry{TransId: id, FileName: fileName, BlockId: blockId, Timestamp: ts, Data: data})
	if err != nil {
		return err
	}
	if err := tm.log.AppendState(StateEntry{TransId: id, Type: LogAfterImage, Timestamp: ts}); err != nil {
		return err
	}
	t.Operations = append(t.Operations, Operation{Type: LogAfterImage, FileName: fileName, BlockId: blockId, Timestamp: ts})
	return nil
}

// Commit forces the after-image log to disk before writing COMMIT.
func (tm *TransactionManager) Commit(id int32) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	t, err := tm.activeTransaction(id)
	if err != nil {
		return err
	}
	if err := tm.log.SyncAfterImages(); err != nil {
		return err
	}
	ts := Timestamp(tm.now())
	if err := tm.log.AppendState(StateEntry{TransId: id, Type: LogCommit, Timestamp: ts}); err != nil {
		return err
	}
	delete(tm.active, id)
	t.State = TransactionCommitted
	tm.committed[id] = t
	tm.logger.Debug().Int32("transaction", id).Int("operations", len(t.Operations)).Msg("transaction committed")
	tm.publish(TransactionEvent{TransId: id, Type: LogCommit, Timestamp: ts})
	return nil
}

// Abort records ABORT and forgets the transaction. Block contents are not restored.
func (tm *TransactionManager) Abort(id int32) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	t, err := tm.activeTransaction(id)
	if err != nil {
		return err
	}
	ts := Timestamp(tm.now())
	if err := tm.log.AppendState(StateEntry{TransId: id, Type: LogAbort, Timestamp: ts}); err != nil {
		return err
	}
	delete(tm.active, id)
	t.State = TransactionAborted
	tm.logger.Debug().Int32("transaction", id).Msg("transaction aborted")
	tm.publish(TransactionEvent{TransId: id, Type: LogAbort, Timestamp: ts})
	return nil
}

func (tm *TransactionManager) IsActive(id int32) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	_, ok := tm.active[id]
	return ok
}

func (tm *TransactionManager) IsCommitted(id int32) bool {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	_, ok := tm.committed[id]
	return ok
}

// Get returns a snapshot of an active or committed transaction.
func (tm *TransactionManager) Get(id int32) (Transaction, bool) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	if t, ok := tm.active[id]; ok {
		return t.copy(), true
	}
	if t, ok := tm.committed[id]; ok {
		return t.copy(), true
	}
	return Transaction{}, false
}

func (tm *TransactionManager) ActiveTransactions() []Transaction {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return snapshot(tm.active)
}

func (tm *TransactionManager) CommittedTransactions() []Transaction {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	return snapshot(tm.committed)
}

func (tm *TransactionManager) activeTransaction(id int32) (*Transaction, error) {
	t, ok := tm.active[id]
	if !ok {
		return nil, TransactionStateError("transaction %d is not active", id)
	}
	return t, nil
}

func (tm *TransactionManager) publish(event TransactionEvent) {
	if err := tm.publisher.Publish(event); err != nil {
		tm.logger.Warn().Err(err).Int32("transaction", event.TransId).Str("type", event.Type.String()).Msg("failed to publish transaction event")
	}
}

func snapshot(m map[int32]*Transaction) []Transaction {
	res := make([]Transaction, 0, len(m))
	for _, t := range m {
		res = append(res, t.copy())
	}
	sort.Slice(res, func(i, j int) bool { return res[i].Id < res[j].Id })
	return res
}
