package repository

import (
	"os"
	"path/filepath"
	"testing"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/logging"
	"MiniBase/internal/platform/storage"
	"MiniBase/internal/platform/wal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var people = []domain.Field{
	domain.NewField("name", domain.StringField, 10),
	domain.NewField("age", domain.IntField, 3),
}

func newCatalog(t *testing.T) (*Catalog, *storage.Env) {
	t.Helper()
	dir := t.TempDir()
	txLog, err := wal.Open(dir, 256, logging.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { txLog.Close() })
	tm, err := domain.NewTransactionManager(txLog, nil, logging.Discard())
	require.NoError(t, err)
	env := &storage.Env{
		DataDirectory: filepath.Join(dir, "tables"),
		BlockSize:     256,
		Transactions:  tm,
		Logger:        logging.Discard(),
	}
	c, err := NewCatalog(env)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, env
}

func TestCreateAndList(t *testing.T) {
	c, _ := newCatalog(t)

	_, err := c.Create("people", people)
	require.NoError(t, err)
	_, err = c.Create("orders", []domain.Field{domain.NewField("id", domain.IntField, 6)})
	require.NoError(t, err)

	names, err := c.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "people"}, names)

	_, err = c.Create("people", people)
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestInvalidTableNames(t *testing.T) {
	c, _ := newCatalog(t)

	for _, name := range []string{"", "../etc", "has space", "9lives"} {
		_, err := c.Create(name, people)
		assert.ErrorIs(t, err, domain.ErrSchema, name)
	}
}

func TestTableReturnsSameHandle(t *testing.T) {
	c, _ := newCatalog(t)
	created, err := c.Create("people", people)
	require.NoError(t, err)

	again, err := c.Table("people")
	require.NoError(t, err)
	assert.Same(t, created, again)

	_, err = c.Table("missing")
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestTableReopensAfterClose(t *testing.T) {
	c, env := newCatalog(t)
	tbl, err := c.Create("people", people)
	require.NoError(t, err)
	_, err = tbl.Insert([]string{"alice", "30"})
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c2, err := NewCatalog(env)
	require.NoError(t, err)
	defer c2.Close()
	reopened, err := c2.Table("people")
	require.NoError(t, err)
	assert.Len(t, reopened.Records(), 1)
}

func TestDropRemovesTableAndIndex(t *testing.T) {
	c, env := newCatalog(t)
	tbl, err := c.Create("people", people)
	require.NoError(t, err)
	_, err = tbl.Insert([]string{"alice", "30"})
	require.NoError(t, err)
	_, err = c.CreateIndex("people", "name")
	require.NoError(t, err)

	require.NoError(t, c.Drop("people"))

	for _, ext := range []string{storage.TableExt, storage.IndexExt} {
		_, err := os.Stat(env.Path("people", ext))
		assert.True(t, os.IsNotExist(err), ext)
	}
	names, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, names)
	assert.ErrorIs(t, c.Drop("people"), domain.ErrSchema)
}

func TestCreateIndexAndLookup(t *testing.T) {
	c, _ := newCatalog(t)
	tbl, err := c.Create("people", people)
	require.NoError(t, err)
	for _, v := range [][]string{{"alice", "30"}, {"bob", "25"}, {"carol", "30"}} {
		_, err := tbl.Insert(v)
		require.NoError(t, err)
	}

	_, err = c.Index("people")
	assert.ErrorIs(t, err, domain.ErrSchema)

	created, err := c.CreateIndex("people", "age")
	require.NoError(t, err)
	ix, err := c.Index("people")
	require.NoError(t, err)
	assert.Same(t, created, ix)

	res, err := ix.Search("30")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.Location{{BlockId: 1, Offset: 0}, {BlockId: 1, Offset: 2}}, res)

	_, err = c.CreateIndex("people", "salary")
	assert.ErrorIs(t, err, domain.ErrSchema)
}

func TestIndexReopensFromDisk(t *testing.T) {
	c, env := newCatalog(t)
	tbl, err := c.Create("people", people)
	require.NoError(t, err)
	_, err = tbl.Insert([]string{"alice", "30"})
	require.NoError(t, err)
	_, err = c.CreateIndex("people", "name")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	c2, err := NewCatalog(env)
	require.NoError(t, err)
	defer c2.Close()
	ix, err := c2.Index("people")
	require.NoError(t, err)
	assert.Equal(t, "name", ix.Field())
}

func TestDropAllRemovesEveryTable(t *testing.T) {
	c, env := newCatalog(t)
	tbl, err := c.Create("people", people)
	require.NoError(t, err)
	_, err = tbl.Insert([]string{"alice", "30"})
	require.NoError(t, err)
	_, err = c.CreateIndex("people", "age")
	require.NoError(t, err)
	_, err = c.Create("orders", []domain.Field{domain.NewField("id", domain.IntField, 6)})
	require.NoError(t, err)

	dropped, err := c.DropAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"orders", "people"}, dropped)

	names, err := c.List()
	require.NoError(t, err)
	assert.Empty(t, names)
	_, err = os.Stat(env.Path("people", storage.IndexExt))
	assert.True(t, os.IsNotExist(err))

	dropped, err = c.DropAll()
	require.NoError(t, err)
	assert.Empty(t, dropped)
}
