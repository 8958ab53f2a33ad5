package table

import (
	"os"
	"path/filepath"
	"testing"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/logging"
	"MiniBase/internal/platform/storage"
	"MiniBase/internal/platform/storage/codec"
	"MiniBase/internal/platform/wal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var people = []domain.Field{
	domain.NewField("name", domain.StringField, 10),
	domain.NewField("age", domain.IntField, 3),
}

func newEnv(t *testing.T, blockSize int) (*storage.Env, *wal.Log) {
	t.Helper()
	dir := t.TempDir()
	txLog, err := wal.Open(filepath.Join(dir, "wal"), blockSize, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { txLog.Close() })
	tm, err := domain.NewTransactionManager(txLog, nil, logging.Discard())
	require.NoError(t, err)
	return &storage.Env{
		DataDirectory: dir,
		BlockSize:     blockSize,
		Transactions:  tm,
		Logger:        logging.Discard(),
	}, txLog
}

func openPeople(t *testing.T, env *storage.Env) *Table {
	t.Helper()
	tbl, err := Open(env, "people", StaticSchema(people))
	require.NoError(t, err)
	t.Cleanup(func() { tbl.Close() })
	return tbl
}

func mustInsert(t *testing.T, tbl *Table, values ...string) domain.Location {
	t.Helper()
	loc, err := tbl.Insert(values)
	require.NoError(t, err)
	return loc
}

func insertErr(tbl *Table, values []string) error {
	_, err := tbl.Insert(values)
	return err
}

func stateTypes(t *testing.T, txLog *wal.Log) []domain.LogType {
	t.Helper()
	entries, err := txLog.States.Entries()
	require.NoError(t, err)
	types := make([]domain.LogType, len(entries))
	for i, e := range entries {
		types[i] = e.Type
	}
	return types
}

func TestOpenCreatesDirectoryBlock(t *testing.T) {
	env, _ := newEnv(t, 4096)
	tbl := openPeople(t, env)

	assert.Equal(t, people, tbl.Fields())
	assert.Empty(t, tbl.Records())
	assert.Equal(t, int32(0), tbl.BlockCount())

	raw, err := os.ReadFile(env.Path("people", storage.TableExt))
	require.NoError(t, err)
	d, err := codec.DecodeDirectoryBlock(raw)
	require.NoError(t, err)
	assert.Equal(t, people, d.Fields)
}

func TestOpenMissingTableWithoutSchema(t *testing.T) {
	env, _ := newEnv(t, 4096)

	_, err := Open(env, "ghost", NoSchema)
	assert.ErrorIs(t, err, domain.ErrSchema)
	_, statErr := os.Stat(env.Path("ghost", storage.TableExt))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOpenRejectsInvalidSchema(t *testing.T) {
	env, _ := newEnv(t, 128)

	_, err := Open(env, "wide", StaticSchema([]domain.Field{domain.NewField("blob", domain.StringField, 120)}))
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestInsertAndReadBack(t *testing.T) {
	env, _ := newEnv(t, 4096)
	tbl := openPeople(t, env)

	assert.Equal(t, domain.Location{BlockId: 1, Offset: 0}, mustInsert(t, tbl, "alice", "30"))
	assert.Equal(t, domain.Location{BlockId: 1, Offset: 1}, mustInsert(t, tbl, " bob ", "25"))

	assert.Equal(t, []domain.Record{
		{domain.StringValue("alice"), domain.IntValue(30)},
		{domain.StringValue("bob"), domain.IntValue(25)},
	}, tbl.Records())
	assert.Equal(t, []domain.Location{{BlockId: 1, Offset: 0}, {BlockId: 1, Offset: 1}}, tbl.Locations())
	assert.Equal(t, int32(1), tbl.BlockCount())
}

func TestInsertWritesBlockLayout(t *testing.T) {
	env, _ := newEnv(t, 4096)
	tbl := openPeople(t, env)
	mustInsert(t, tbl, "alice", "30")
	mustInsert(t, tbl, "bob", "25")
	require.NoError(t, tbl.Close())

	raw, err := os.ReadFile(env.Path("people", storage.TableExt))
	require.NoError(t, err)
	require.Len(t, raw, 2*4096)

	blk := raw[4096:]
	h, err := codec.DecodeDataBlockHeader(blk)
	require.NoError(t, err)
	assert.Equal(t, codec.DataBlockHeader{BlockId: 1, RecordCount: 2}, h)

	recLen := codec.RecordLength(people)
	assert.Equal(t, int32(4096-recLen), codec.SlotOffset(blk, 0))
	assert.Equal(t, int32(4096-2*recLen), codec.SlotOffset(blk, 1))
	assert.Equal(t, "bob       25 ", string(blk[4096-2*recLen+codec.RecordHeaderSize:4096-recLen]))
}

func TestInsertValidationFailureWritesNothing(t *testing.T) {
	env, txLog := newEnv(t, 4096)
	tbl := openPeople(t, env)

	assert.ErrorIs(t, insertErr(tbl, []string{"alice", "thirty"}), domain.ErrValidation)
	assert.ErrorIs(t, insertErr(tbl, []string{"a-very-long-name", "1"}), domain.ErrValidation)
	assert.ErrorIs(t, insertErr(tbl, []string{"alice"}), domain.ErrValidation)

	assert.Empty(t, tbl.Records())
	assert.Empty(t, stateTypes(t, txLog))
}

func TestInsertAllocatesNewBlockWhenFull(t *testing.T) {
	env, _ := newEnv(t, 128)
	tbl := openPeople(t, env)
	require.Equal(t, 3, tbl.Capacity())

	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		mustInsert(t, tbl, name, "1")
	}

	assert.Equal(t, int32(3), tbl.BlockCount())
	locs := tbl.Locations()
	assert.Equal(t, domain.Location{BlockId: 1, Offset: 2}, locs[2])
	assert.Equal(t, domain.Location{BlockId: 2, Offset: 0}, locs[3])
	assert.Equal(t, domain.Location{BlockId: 3, Offset: 0}, locs[6])
}

func TestInsertRunsInImplicitTransaction(t *testing.T) {
	env, txLog := newEnv(t, 4096)
	tbl := openPeople(t, env)

	mustInsert(t, tbl, "alice", "30")

	assert.Equal(t, []domain.LogType{domain.LogBegin, domain.LogBeforeImage, domain.LogAfterImage, domain.LogCommit}, stateTypes(t, txLog))
	before, err := txLog.Before.Entries()
	require.NoError(t, err)
	after, err := txLog.After.Entries()
	require.NoError(t, err)
	require.Len(t, before, 1)
	require.Len(t, after, 1)
	assert.Equal(t, "people.dat", before[0].FileName)
	assert.Equal(t, int32(1), before[0].BlockId)
	assert.Equal(t, int32(1), after[0].BlockId)
	assert.NotEqual(t, before[0].Data, after[0].Data)
	assert.True(t, env.Transactions.IsCommitted(before[0].TransId))
}

func TestUpdateScenario(t *testing.T) {
	env, _ := newEnv(t, 4096)
	tbl := openPeople(t, env)
	mustInsert(t, tbl, "alice", "30")
	mustInsert(t, tbl, "bob", "25")

	n, err := tbl.Update("age", "30", "31")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	assert.Equal(t, []domain.Record{
		{domain.StringValue("alice"), domain.IntValue(31)},
		{domain.StringValue("bob"), domain.IntValue(25)},
	}, tbl.Records())
}

func TestUpdateWithoutMatchesIsNoop(t *testing.T) {
	env, txLog := newEnv(t, 4096)
	tbl := openPeople(t, env)
	mustInsert(t, tbl, "alice", "30")
	logged := len(stateTypes(t, txLog))

	n, err := tbl.Update("age", "99", "100")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Len(t, stateTypes(t, txLog), logged)
}

func TestUpdateErrors(t *testing.T) {
	env, _ := newEnv(t, 4096)
	tbl := openPeople(t, env)
	mustInsert(t, tbl, "alice", "30")

	_, err := tbl.Update("salary", "1", "2")
	assert.ErrorIs(t, err, domain.ErrSchema)
	_, err = tbl.Update("age", "30", "old")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(30), tbl.Records()[0][1].Int)
}

func TestUpdateLogsWholeFileImages(t *testing.T) {
	env, txLog := newEnv(t, 4096)
	tbl := openPeople(t, env)
	mustInsert(t, tbl, "alice", "30")

	_, err := tbl.Update("name", "alice", "carol")
	require.NoError(t, err)

	before, err := txLog.Before.Entries()
	require.NoError(t, err)
	last := before[len(before)-1]
	assert.Equal(t, int32(0), last.BlockId)
	assert.Len(t, last.Data, wal.MaxImageData(4096))
}

func TestDeleteRepacksBlocks(t *testing.T) {
	env, _ := newEnv(t, 128)
	tbl := openPeople(t, env)
	for _, name := range []string{"a", "b", "a", "c", "a", "d", "e"} {
		mustInsert(t, tbl, name, "1")
	}
	require.Equal(t, int32(3), tbl.BlockCount())

	n, err := tbl.Delete("name", "a")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	names := []string{}
	for _, r := range tbl.Records() {
		names = append(names, r[0].Str)
	}
	assert.Equal(t, []string{"b", "c", "d", "e"}, names)
	assert.Equal(t, int32(2), tbl.BlockCount())
	assert.Equal(t, domain.Location{BlockId: 2, Offset: 0}, tbl.Locations()[3])

	info, err := os.Stat(env.Path("people", storage.TableExt))
	require.NoError(t, err)
	assert.Equal(t, int64(3*128), info.Size())
}

func TestDeleteEverything(t *testing.T) {
	env, _ := newEnv(t, 4096)
	tbl := openPeople(t, env)
	mustInsert(t, tbl, "alice", "30")

	n, err := tbl.Delete("age", "30")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Empty(t, tbl.Records())
	assert.Equal(t, int32(0), tbl.BlockCount())

	mustInsert(t, tbl, "bob", "25")
	assert.Equal(t, []domain.Location{{BlockId: 1, Offset: 0}}, tbl.Locations())
}

func TestReopenRestoresRecords(t *testing.T) {
	env, _ := newEnv(t, 128)
	tbl, err := Open(env, "people", StaticSchema(people))
	require.NoError(t, err)
	for _, name := range []string{"a", "b", "c", "d"} {
		mustInsert(t, tbl, name, "7")
	}
	_, err = tbl.Update("name", "c", "z")
	require.NoError(t, err)
	want := tbl.Records()
	wantLocs := tbl.Locations()
	require.NoError(t, tbl.Close())
	require.NoError(t, tbl.Close())

	reopened, err := Open(env, "people", NoSchema)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, people, reopened.Fields())
	assert.Equal(t, want, reopened.Records())
	assert.Equal(t, wantLocs, reopened.Locations())
	assert.Equal(t, int32(2), reopened.BlockCount())
}

func TestAbortKeepsInsertedRecord(t *testing.T) {
	env, txLog := newEnv(t, 4096)
	tbl := openPeople(t, env)

	id, err := tbl.Begin()
	require.NoError(t, err)
	mustInsert(t, tbl, "alice", "30")
	require.NoError(t, tbl.Abort())

	assert.Len(t, tbl.Records(), 1)
	assert.False(t, env.Transactions.IsActive(id))
	assert.False(t, env.Transactions.IsCommitted(id))
	assert.Equal(t, []domain.LogType{domain.LogBegin, domain.LogBeforeImage, domain.LogAfterImage, domain.LogAbort}, stateTypes(t, txLog))
	require.NoError(t, tbl.Close())

	reopened, err := Open(env, "people", NoSchema)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Len(t, reopened.Records(), 1)
}

func TestExplicitTransactionSpansOperations(t *testing.T) {
	env, txLog := newEnv(t, 4096)
	tbl := openPeople(t, env)

	id, err := tbl.Begin()
	require.NoError(t, err)
	_, err = tbl.Begin()
	assert.ErrorIs(t, err, domain.ErrTransactionState)

	mustInsert(t, tbl, "alice", "30")
	_, err = tbl.Update("age", "30", "31")
	require.NoError(t, err)
	require.NoError(t, tbl.Commit())

	assert.True(t, env.Transactions.IsCommitted(id))
	entries, err := txLog.States.Entries()
	require.NoError(t, err)
	for _, e := range entries {
		assert.Equal(t, id, e.TransId)
	}
	assert.ErrorIs(t, tbl.Commit(), domain.ErrTransactionState)
	assert.ErrorIs(t, tbl.Abort(), domain.ErrTransactionState)
}

func TestBeforeImageAlwaysPrecedesAfterImage(t *testing.T) {
	env, txLog := newEnv(t, 128)
	tbl := openPeople(t, env)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		mustInsert(t, tbl, name, "1")
	}
	_, err := tbl.Delete("name", "b")
	require.NoError(t, err)

	type key struct {
		tx    int32
		block int32
	}
	before, err := txLog.Before.Entries()
	require.NoError(t, err)
	after, err := txLog.After.Entries()
	require.NoError(t, err)
	seen := map[key]float64{}
	for _, e := range before {
		seen[key{e.TransId, e.BlockId}] = e.Timestamp
	}
	for _, e := range after {
		ts, ok := seen[key{e.TransId, e.BlockId}]
		require.True(t, ok, "after-image without before-image: %+v", e)
		assert.LessOrEqual(t, ts, e.Timestamp)
	}
}

func TestDropRemovesFile(t *testing.T) {
	env, _ := newEnv(t, 4096)
	tbl := openPeople(t, env)
	mustInsert(t, tbl, "alice", "30")

	require.NoError(t, tbl.Drop())
	_, err := os.Stat(env.Path("people", storage.TableExt))
	assert.True(t, os.IsNotExist(err))
	assert.ErrorIs(t, insertErr(tbl, []string{"bob", "1"}), domain.ErrIO)
	assert.NoError(t, tbl.Close())
}

func TestSpacedFieldNamesMatchStoredSchema(t *testing.T) {
	env, _ := newEnv(t, 256)
	fields := []domain.Field{
		domain.NewField(" name", domain.StringField, 10),
		domain.NewField("age ", domain.IntField, 3),
	}
	tbl, err := Open(env, "people", StaticSchema(fields))
	require.NoError(t, err)
	assert.Equal(t, people, tbl.Fields())

	mustInsert(t, tbl, "ann", "30")
	n, err := tbl.Update("age", "30", "31")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	require.NoError(t, tbl.Close())

	reopened, err := Open(env, "people", NoSchema)
	require.NoError(t, err)
	defer reopened.Close()
	assert.Equal(t, people, reopened.Fields())

	n, err = reopened.Update("age", "31", "32")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"ann", "32"}, reopened.Records()[0].Strings())
}
