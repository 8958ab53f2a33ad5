package repository

import (
	"errors"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/storage"
	"MiniBase/internal/platform/storage/btree"
	"MiniBase/internal/platform/storage/table"

	"github.com/phuslu/log"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,31}$`)

// Catalog keeps one open handle per table and per index in the data directory.
type Catalog struct {
	env     *storage.Env
	tables  map[string]*table.Table
	indexes map[string]*btree.Index
	logger  log.Logger
	mu      sync.Mutex
}

func NewCatalog(env *storage.Env) (*Catalog, error) {
	if err := os.MkdirAll(env.DataDirectory, 0755); err != nil {
		return nil, domain.IOError("create "+env.DataDirectory, err)
	}
	return &Catalog{
		env:     env,
		tables:  make(map[string]*table.Table),
		indexes: make(map[string]*btree.Index),
		logger:  env.Logger,
	}, nil
}

func ValidateTableName(name string) error {
	if !tableName.MatchString(name) {
		return domain.SchemaError("invalid table name %q", name)
	}
	return nil
}

func (c *Catalog) exists(name string) bool {
	info, err := os.Stat(c.env.Path(name, storage.TableExt))
	return err == nil && info.Size() > 0
}

// List returns the names of all tables on disk.
func (c *Catalog) List() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list()
}

func (c *Catalog) list() ([]string, error) {
	entries, err := os.ReadDir(c.env.DataDirectory)
	if err != nil {
		return nil, domain.IOError("list "+c.env.DataDirectory, err)
	}
	names := []string{}
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), storage.TableExt)
		if ok && !e.IsDir() && tableName.MatchString(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (c *Catalog) Create(name string, fields []domain.Field) (*table.Table, error) {
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, open := c.tables[name]; open || c.exists(name) {
		return nil, domain.SchemaError("table %q already exists", name)
	}
	t, err := table.Open(c.env, name, table.StaticSchema(fields))
	if err != nil {
		return nil, err
	}
	c.tables[name] = t
	return t, nil
}

// Table returns the open handle of an existing table.
func (c *Catalog) Table(name string) (*table.Table, error) {
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.table(name)
}

func (c *Catalog) table(name string) (*table.Table, error) {
	if t, ok := c.tables[name]; ok {
		return t, nil
	}
	t, err := table.Open(c.env, name, table.NoSchema)
	if err != nil {
		return nil, err
	}
	c.tables[name] = t
	return t, nil
}

// Drop deletes the table file and its index file.
func (c *Catalog) Drop(name string) error {
	if err := ValidateTableName(name); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.drop(name)
}

func (c *Catalog) drop(name string) error {
	t, err := c.table(name)
	if err != nil {
		return err
	}
	delete(c.tables, name)
	if err := t.Drop(); err != nil {
		return err
	}
	return c.dropIndex(name)
}

// DropAll deletes every table with its index and returns the dropped names.
func (c *Catalog) DropAll() ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	names, err := c.list()
	if err != nil {
		return nil, err
	}
	dropped := []string{}
	for _, name := range names {
		if err := c.drop(name); err != nil {
			return dropped, err
		}
		dropped = append(dropped, name)
	}
	c.logger.Info().Int("tables", len(dropped)).Str("directory", c.env.DataDirectory).Msg("all tables dropped")
	return dropped, nil
}

func (c *Catalog) dropIndex(name string) error {
	if ix, ok := c.indexes[name]; ok {
		delete(c.indexes, name)
		return ix.Remove()
	}
	path := c.env.Path(name, storage.IndexExt)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return domain.IOError("remove "+path, err)
	}
	return nil
}

// CreateIndex rebuilds the index of a table on field from its current records.
func (c *Catalog) CreateIndex(name, field string) (*btree.Index, error) {
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	t, err := c.table(name)
	if err != nil {
		return nil, err
	}
	if _, err := domain.FieldIndex(t.Fields(), field); err != nil {
		return nil, err
	}
	if ix, ok := c.indexes[name]; ok {
		delete(c.indexes, name)
		if err := ix.Close(); err != nil {
			return nil, err
		}
	}
	ix, err := btree.CreateIndex(c.env, t, field)
	if err != nil {
		return nil, err
	}
	c.indexes[name] = ix
	return ix, nil
}

// Index returns the existing index of a table.
func (c *Catalog) Index(name string) (*btree.Index, error) {
	if err := ValidateTableName(name); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if ix, ok := c.indexes[name]; ok {
		return ix, nil
	}
	if _, err := os.Stat(c.env.Path(name, storage.IndexExt)); err != nil {
		return nil, domain.NotFoundError("index of table %q", name)
	}
	ix, err := btree.Open(c.env, name, "")
	if err != nil {
		return nil, err
	}
	c.indexes[name] = ix
	return ix, nil
}

func (c *Catalog) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var errs []error
	for name, t := range c.tables {
		errs = append(errs, t.Close())
		delete(c.tables, name)
	}
	for name, ix := range c.indexes {
		errs = append(errs, ix.Close())
		delete(c.indexes, name)
	}
	c.logger.Info().Str("directory", c.env.DataDirectory).Msg("catalog closed")
	return errors.Join(errs...)
}
