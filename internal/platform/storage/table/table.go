package table

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/storage"
	"MiniBase/internal/platform/storage/block"
	"MiniBase/internal/platform/storage/codec"
	"MiniBase/internal/platform/utils"

	"github.com/phuslu/log"
)

// Table is an open table file together with its decoded record cache.
type Table struct {
	mu         sync.Mutex
	env        *storage.Env
	name       string
	store      *block.Store
	fields     []domain.Field
	records    []domain.Record
	locations  []domain.Location
	blockCount int32
	capacity   int
	txId       int32
	closed     bool
	logger     log.Logger
	now        func() time.Time
}

func Open(env *storage.Env, name string, prompt SchemaPrompt) (*Table, error) {
	if env.Transactions == nil {
		return nil, domain.TransactionStateError("no transaction manager configured")
	}
	path := env.Path(name, storage.TableExt)
	info, err := os.Stat(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, domain.IOError("stat "+path, err)
	}
	exists := err == nil && info.Size() > 0

	var fields []domain.Field
	if !exists {
		if fields, err = prompt(name); err != nil {
			return nil, err
		}
		fields = codec.NormalizeFields(fields)
		if err := codec.ValidateSchema(env.BlockSize, fields); err != nil {
			return nil, err
		}
	}

	store, err := block.Open(path, env.BlockSize)
	if err != nil {
		return nil, err
	}
	t := &Table{
		env:    env,
		name:   name,
		store:  store,
		logger: env.Logger,
		now:    time.Now,
	}
	if exists {
		err = t.load()
	} else {
		err = t.create(fields)
	}
	if err != nil {
		store.Close()
		return nil, err
	}
	t.capacity = codec.MaxRecordsPerBlock(env.BlockSize, t.fields)
	return t, nil
}

func (t *Table) create(fields []domain.Field) error {
	buf, err := codec.DirectoryBlock{Fields: fields}.Encode(t.env.BlockSize)
	if err != nil {
		return err
	}
	if err := t.store.WriteBlock(0, buf); err != nil {
		return err
	}
	t.fields = fields
	t.logger.Info().Str("table", t.name).Int("fields", len(fields)).Msg("table created")
	return nil
}

func (t *Table) load() error {
	dir, err := t.store.ReadBlock(0)
	if err != nil {
		return err
	}
	d, err := codec.DecodeDirectoryBlock(dir)
	if err != nil {
		return err
	}
	if err := codec.ValidateSchema(t.env.BlockSize, d.Fields); err != nil {
		return domain.StructuralError("table %q has an invalid schema: %v", t.name, err)
	}
	t.fields = d.Fields
	t.blockCount = d.BlockCount

	recLen := codec.RecordLength(t.fields)
	for id := int32(1); id <= d.BlockCount; id++ {
		buf, err := t.store.ReadBlock(id)
		if err != nil {
			return err
		}
		h, err := codec.DecodeDataBlockHeader(buf)
		if err != nil {
			return err
		}
		if h.RecordCount < 0 || codec.SlotPosition(int(h.RecordCount)) > len(buf) {
			return domain.StructuralError("block %d of table %q declares %d records", id, t.name, h.RecordCount)
		}
		for slot := 0; slot < int(h.RecordCount); slot++ {
			off := int(codec.SlotOffset(buf, slot))
			if off < codec.DataHeaderSize || off+recLen > len(buf) {
				return domain.StructuralError("block %d of table %q has slot %d at offset %d", id, t.name, slot, off)
			}
			rec, err := codec.DecodeRecord(t.fields, buf[off:off+recLen])
			if err != nil {
				return err
			}
			t.records = append(t.records, rec)
			t.locations = append(t.locations, domain.Location{BlockId: id, Offset: int32(slot)})
		}
	}
	t.logger.Info().Str("table", t.name).Int32("blocks", t.blockCount).Int("records", len(t.records)).Msg("table loaded")
	return nil
}

func (t *Table) Name() string {
	return t.name
}

func (t *Table) fileName() string {
	return filepath.Base(t.store.Path())
}

// Fields returns the schema in declaration order.
func (t *Table) Fields() []domain.Field {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Field, len(t.fields))
	copy(out, t.fields)
	return out
}

// Records returns the cached records in slot order.
func (t *Table) Records() []domain.Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Record, len(t.records))
	for i, r := range t.records {
		out[i] = r.Copy()
	}
	return out
}

// Locations is parallel to Records.
func (t *Table) Locations() []domain.Location {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]domain.Location, len(t.locations))
	copy(out, t.locations)
	return out
}

func (t *Table) BlockCount() int32 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.blockCount
}

func (t *Table) Capacity() int {
	return t.capacity
}

func (t *Table) checkOpen() error {
	if t.closed {
		return domain.IOError("table "+t.name, os.ErrClosed)
	}
	return nil
}

// Begin binds an explicit transaction to the handle. Later mutations join it until Commit or Abort.
func (t *Table) Begin() (int32, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	if t.txId != 0 {
		return 0, domain.TransactionStateError("table %q already runs transaction %d", t.name, t.txId)
	}
	id, err := t.env.Transactions.Begin()
	if err != nil {
		return 0, err
	}
	t.txId = id
	return id, nil
}

func (t *Table) Commit() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.txId == 0 {
		return domain.TransactionStateError("table %q has no transaction", t.name)
	}
	if err := t.env.Transactions.Commit(t.txId); err != nil {
		return err
	}
	t.txId = 0
	return nil
}

// Abort ends the explicit transaction. Changes already written stay in place.
func (t *Table) Abort() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.txId == 0 {
		return domain.TransactionStateError("table %q has no transaction", t.name)
	}
	if err := t.env.Transactions.Abort(t.txId); err != nil {
		return err
	}
	t.txId = 0
	return nil
}

// TransactionId reports the explicit transaction, if any.
func (t *Table) TransactionId() (int32, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.txId, t.txId != 0
}

// begin returns the explicit transaction or starts an implicit one.
func (t *Table) begin() (int32, bool, error) {
	if t.txId != 0 {
		return t.txId, false, nil
	}
	id, err := t.env.Transactions.Begin()
	return id, true, err
}

func (t *Table) finish(id int32, implicit bool, opErr error) error {
	if !implicit {
		return opErr
	}
	if opErr != nil {
		if err := t.env.Transactions.Abort(id); err != nil {
			t.logger.Error().Err(err).Int32("tx_id", id).Str("table", t.name).Msg("abort failed")
		}
		return opErr
	}
	return t.env.Transactions.Commit(id)
}

// Insert validates values, appends the record to the last data block and logs the block images.
func (t *Table) Insert(values []string) (domain.Location, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return domain.Location{}, err
	}
	rec, err := codec.ParseRecord(t.fields, values)
	if err != nil {
		return domain.Location{}, err
	}
	payload, err := codec.EncodeRecord(t.fields, rec, t.now())
	if err != nil {
		return domain.Location{}, err
	}

	prevCount := t.blockCount
	loc := t.nextLocation()
	t.records = append(t.records, rec)
	t.locations = append(t.locations, loc)
	if loc.BlockId > t.blockCount {
		t.blockCount = loc.BlockId
	}

	id, implicit, err := t.begin()
	if err == nil {
		err = t.finish(id, implicit, t.writeRecord(id, loc, payload))
	}
	if err != nil {
		t.records = t.records[:len(t.records)-1]
		t.locations = t.locations[:len(t.locations)-1]
		t.blockCount = prevCount
		return domain.Location{}, err
	}
	t.logger.Debug().Str("table", t.name).Int32("block_id", loc.BlockId).Int32("slot", loc.Offset).Msg("record inserted")
	return loc, nil
}

func (t *Table) nextLocation() domain.Location {
	if len(t.locations) == 0 {
		return domain.Location{BlockId: 1, Offset: 0}
	}
	last := t.locations[len(t.locations)-1]
	if int(last.Offset) >= t.capacity-1 {
		return domain.Location{BlockId: last.BlockId + 1, Offset: 0}
	}
	return domain.Location{BlockId: last.BlockId, Offset: last.Offset + 1}
}

func (t *Table) writeRecord(id int32, loc domain.Location, payload []byte) error {
	bs := int64(t.env.BlockSize)
	base := int64(loc.BlockId) * bs
	slot := int(loc.Offset)

	before, err := t.store.ReadBlock(loc.BlockId)
	if err != nil {
		return err
	}
	if err := t.env.Transactions.LogBeforeImage(id, t.fileName(), loc.BlockId, before); err != nil {
		return err
	}

	header := make([]byte, codec.DataHeaderSize)
	codec.PutBlockCount(header, t.blockCount)
	if err := t.store.WriteAt(0, header); err != nil {
		return err
	}
	codec.DataBlockHeader{BlockId: loc.BlockId, RecordCount: int32(slot + 1)}.Put(header)
	if err := t.store.WriteAt(base, header); err != nil {
		return err
	}
	recOff := codec.RecordOffset(t.env.BlockSize, len(payload), slot)
	offset := make([]byte, codec.SlotSize)
	utils.PutInt32(offset, 0, int32(recOff))
	if err := t.store.WriteAt(base+int64(codec.SlotPosition(slot)), offset); err != nil {
		return err
	}
	if err := t.store.WriteAt(base+int64(recOff), payload); err != nil {
		return err
	}

	after, err := t.store.ReadBlock(loc.BlockId)
	if err != nil {
		return err
	}
	return t.env.Transactions.LogAfterImage(id, t.fileName(), loc.BlockId, after)
}

// Update sets field to newValue on every record whose field equals oldValue.
func (t *Table) Update(field, oldValue, newValue string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	idx, err := domain.FieldIndex(t.fields, field)
	if err != nil {
		return 0, err
	}
	from, err := codec.ParseValue(t.fields[idx], oldValue)
	if err != nil {
		return 0, err
	}
	to, err := codec.ParseValue(t.fields[idx], newValue)
	if err != nil {
		return 0, err
	}

	updated := make([]domain.Record, len(t.records))
	matched := 0
	for i, rec := range t.records {
		updated[i] = rec
		if rec[idx].Equal(from) {
			updated[i] = rec.Copy()
			updated[i][idx] = to
			matched++
		}
	}
	if matched == 0 {
		return 0, nil
	}
	if err := t.rewrite(updated); err != nil {
		return 0, err
	}
	t.logger.Debug().Str("table", t.name).Str("field", field).Int("records", matched).Msg("records updated")
	return matched, nil
}

// Delete removes every record whose field equals value.
func (t *Table) Delete(field, value string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if err := t.checkOpen(); err != nil {
		return 0, err
	}
	idx, err := domain.FieldIndex(t.fields, field)
	if err != nil {
		return 0, err
	}
	target, err := codec.ParseValue(t.fields[idx], value)
	if err != nil {
		return 0, err
	}

	kept := make([]domain.Record, 0, len(t.records))
	for _, rec := range t.records {
		if !rec[idx].Equal(target) {
			kept = append(kept, rec)
		}
	}
	removed := len(t.records) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	if err := t.rewrite(kept); err != nil {
		return 0, err
	}
	t.logger.Debug().Str("table", t.name).Str("field", field).Int("records", removed).Msg("records deleted")
	return removed, nil
}

// rewrite repacks records into the minimal number of data blocks, logging whole-file images as block 0.
func (t *Table) rewrite(records []domain.Record) error {
	blocks, locations, err := t.pack(records)
	if err != nil {
		return err
	}
	id, implicit, err := t.begin()
	if err != nil {
		return err
	}
	err = t.finish(id, implicit, t.writeAll(id, blocks))
	if err != nil {
		return err
	}
	t.records = records
	t.locations = locations
	t.blockCount = int32(len(blocks))
	return nil
}

func (t *Table) pack(records []domain.Record) ([][]byte, []domain.Location, error) {
	bs := t.env.BlockSize
	recLen := codec.RecordLength(t.fields)
	at := t.now()

	var blocks [][]byte
	locations := make([]domain.Location, len(records))
	for i, rec := range records {
		slot := i % t.capacity
		if slot == 0 {
			blocks = append(blocks, make([]byte, bs))
		}
		id := int32(len(blocks))
		buf := blocks[id-1]
		payload, err := codec.EncodeRecord(t.fields, rec, at)
		if err != nil {
			return nil, nil, err
		}
		off := codec.RecordOffset(bs, recLen, slot)
		codec.DataBlockHeader{BlockId: id, RecordCount: int32(slot + 1)}.Put(buf)
		codec.PutSlotOffset(buf, slot, int32(off))
		copy(buf[off:], payload)
		locations[i] = domain.Location{BlockId: id, Offset: int32(slot)}
	}
	return blocks, locations, nil
}

func (t *Table) writeAll(id int32, blocks [][]byte) error {
	before, err := t.store.ReadAll()
	if err != nil {
		return err
	}
	if err := t.env.Transactions.LogBeforeImage(id, t.fileName(), 0, before); err != nil {
		return err
	}

	header := make([]byte, codec.DataHeaderSize)
	codec.PutBlockCount(header, int32(len(blocks)))
	if err := t.store.WriteAt(0, header); err != nil {
		return err
	}
	for i, buf := range blocks {
		if err := t.store.WriteBlock(int32(i+1), buf); err != nil {
			return err
		}
	}
	if err := t.store.Truncate(int32(len(blocks) + 1)); err != nil {
		return err
	}

	after, err := t.store.ReadAll()
	if err != nil {
		return err
	}
	return t.env.Transactions.LogAfterImage(id, t.fileName(), 0, after)
}

// Drop closes the handle and deletes the table file.
func (t *Table) Drop() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.abortPending()
	t.closed = true
	if err := t.store.Remove(); err != nil {
		return err
	}
	t.logger.Info().Str("table", t.name).Msg("table dropped")
	return nil
}

// Close persists the block count and releases the file. Safe to call more than once.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.abortPending()
	t.closed = true
	header := make([]byte, codec.DataHeaderSize)
	codec.PutBlockCount(header, t.blockCount)
	err := t.store.WriteAt(0, header)
	return errors.Join(err, t.store.Close())
}

func (t *Table) abortPending() {
	if t.txId == 0 {
		return
	}
	t.logger.Warn().Str("table", t.name).Int32("tx_id", t.txId).Msg("aborting open transaction on close")
	if err := t.env.Transactions.Abort(t.txId); err != nil {
		t.logger.Error().Err(err).Int32("tx_id", t.txId).Msg("abort failed")
	}
	t.txId = 0
}
