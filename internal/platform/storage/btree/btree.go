package btree

import (
	"bytes"
	"errors"
	"os"
	"sort"
	"sync"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/storage"
	"MiniBase/internal/platform/storage/block"
	"MiniBase/internal/platform/storage/codec"

	"github.com/phuslu/log"
)

// RecordSource is anything that can enumerate records with their physical locations.
type RecordSource interface {
	Name() string
	Fields() []domain.Field
	Records() []domain.Record
	Locations() []domain.Location
}

type Entry struct {
	Key      string          `json:"key"`
	Location domain.Location `json:"location"`
}

// Index is a B-tree over one field of a table, stored in <table>.ind.
type Index struct {
	mu          sync.Mutex
	table       string
	store       *block.Store
	meta        Meta
	blockSize   int
	maxLeaf     int
	maxInternal int
	logger      log.Logger
	closed      bool
}

// Open opens or creates the index file of table. An empty field adopts the stored one.
func Open(env *storage.Env, table, field string) (*Index, error) {
	maxLeaf, maxInternal := MaxLeafKeys(env.BlockSize), MaxInternalKeys(env.BlockSize)
	if maxLeaf < 2 || maxInternal < 2 {
		return nil, domain.ValidationError("block size %d is too small for an index", env.BlockSize)
	}
	store, err := block.Open(env.Path(table, storage.IndexExt), env.BlockSize)
	if err != nil {
		return nil, err
	}
	ix := &Index{
		table:       table,
		store:       store,
		blockSize:   env.BlockSize,
		maxLeaf:     maxLeaf,
		maxInternal: maxInternal,
		logger:      env.Logger,
	}
	if err := ix.loadMeta(field); err != nil {
		store.Close()
		return nil, err
	}
	return ix, nil
}

func (ix *Index) loadMeta(field string) error {
	size, err := ix.store.Size()
	if err != nil {
		return err
	}
	if size < MetaSize {
		if size > 0 {
			ix.logger.Warn().Str("table", ix.table).Int64("size", size).Msg("index meta block too small, reinitializing")
		}
		ix.meta = Meta{NextFree: 1, Field: field}
		if err := ix.store.Truncate(0); err != nil {
			return err
		}
		return ix.writeMeta()
	}
	buf, err := ix.store.ReadBlock(0)
	if err != nil {
		return err
	}
	if ix.meta, err = DecodeMeta(buf); err != nil {
		return err
	}
	switch {
	case field == "":
	case ix.meta.Field == "":
		ix.meta.Field = field
		return ix.writeMeta()
	case ix.meta.Field != field:
		return domain.SchemaError("index of table %q is on field %q, not %q", ix.table, ix.meta.Field, field)
	}
	return nil
}

func (ix *Index) writeMeta() error {
	return ix.store.WriteBlock(0, ix.meta.Encode(ix.blockSize))
}

func (ix *Index) Field() string {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.meta.Field
}

func (ix *Index) Height() int32 {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	return ix.meta.Height
}

func (ix *Index) MaxLeafKeys() int {
	return ix.maxLeaf
}

func (ix *Index) MaxInternalKeys() int {
	return ix.maxInternal
}

func (ix *Index) readNode(id int32) (*Node, error) {
	if id < 1 || id >= ix.meta.NextFree {
		return nil, domain.StructuralError("node %d is outside the index of table %q", id, ix.table)
	}
	buf, err := ix.store.ReadBlock(id)
	if err != nil {
		return nil, err
	}
	n, err := DecodeNode(buf)
	if err != nil {
		return nil, err
	}
	if n.Id != id {
		return nil, domain.StructuralError("block %d holds node %d", id, n.Id)
	}
	return n, nil
}

func (ix *Index) writeNode(n *Node) error {
	buf, err := n.Encode(ix.blockSize)
	if err != nil {
		return err
	}
	return ix.store.WriteBlock(n.Id, buf)
}

// allocate hands out the next block id. Ids are never reused.
func (ix *Index) allocate() int32 {
	id := ix.meta.NextFree
	ix.meta.NextFree++
	return id
}

func (ix *Index) checkOpen() error {
	if ix.closed {
		return domain.IOError("index "+ix.table, os.ErrClosed)
	}
	return nil
}

// upperBound counts keys <= key; the insert descent follows that child.
func upperBound(keys [][]byte, key []byte) int {
	return sort.Search(len(keys), func(i int) bool { return bytes.Compare(keys[i], key) > 0 })
}

// lowerBound counts keys < key.
func lowerBound(keys [][]byte, key []byte) int {
	return sort.Search(len(keys), func(i int) bool { return bytes.Compare(keys[i], key) >= 0 })
}

func insertAt[T any](s []T, i int, v T) []T {
	s = append(s, v)
	copy(s[i+1:], s[i:])
	s[i] = v
	return s
}

// Insert adds key with the record location (dataBlockId, dataOffset).
func (ix *Index) Insert(key string, dataBlockId, dataOffset int32) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.checkOpen(); err != nil {
		return err
	}
	k := codec.FormatKey(key)
	loc := domain.Location{BlockId: dataBlockId, Offset: dataOffset}

	if !ix.meta.HasRoot {
		leaf := &Node{Id: ix.allocate(), Leaf: true, Keys: [][]byte{k}, Locations: []domain.Location{loc}, Next: NoSibling}
		if err := ix.writeNode(leaf); err != nil {
			return err
		}
		ix.meta.HasRoot = true
		ix.meta.Root = leaf.Id
		ix.meta.Height = 1
		return ix.writeMeta()
	}

	var path []*Node
	n, err := ix.readNode(ix.meta.Root)
	if err != nil {
		return err
	}
	for !n.Leaf {
		path = append(path, n)
		if n, err = ix.readNode(n.Children[upperBound(n.Keys, k)]); err != nil {
			return err
		}
	}

	pos := lowerBound(n.Keys, k)
	n.Keys = insertAt(n.Keys, pos, k)
	n.Locations = insertAt(n.Locations, pos, loc)
	if len(n.Keys) <= ix.maxLeaf {
		return ix.writeNode(n)
	}
	if err := ix.splitLeaf(n, path); err != nil {
		return err
	}
	return ix.writeMeta()
}

// splitLeaf keeps the lower half in n, moves the upper half to a new right sibling
// and promotes the sibling's first key.
func (ix *Index) splitLeaf(n *Node, path []*Node) error {
	keep := (len(n.Keys) + 1) / 2
	right := &Node{
		Id:        ix.allocate(),
		Leaf:      true,
		Keys:      append([][]byte(nil), n.Keys[keep:]...),
		Locations: append([]domain.Location(nil), n.Locations[keep:]...),
		Next:      n.Next,
	}
	n.Keys = n.Keys[:keep]
	n.Locations = n.Locations[:keep]
	n.Next = right.Id
	if err := ix.writeNode(right); err != nil {
		return err
	}
	if err := ix.writeNode(n); err != nil {
		return err
	}
	ix.logger.Debug().Str("table", ix.table).Int32("block_id", n.Id).Int32("sibling", right.Id).Msg("leaf split")
	return ix.promote(path, n.Id, right.Keys[0], right.Id)
}

// promote inserts (key, right) into the parent of left, right after left's pointer.
func (ix *Index) promote(path []*Node, left int32, key []byte, right int32) error {
	if len(path) == 0 {
		root := &Node{Id: ix.allocate(), Keys: [][]byte{key}, Children: []int32{left, right}}
		if err := ix.writeNode(root); err != nil {
			return err
		}
		ix.meta.Root = root.Id
		ix.meta.Height++
		ix.logger.Debug().Str("table", ix.table).Int32("root", root.Id).Int32("height", ix.meta.Height).Msg("root split")
		return nil
	}

	parent := path[len(path)-1]
	path = path[:len(path)-1]
	idx := -1
	for i, c := range parent.Children {
		if c == left {
			idx = i
			break
		}
	}
	if idx < 0 {
		return domain.StructuralError("node %d is not a child of %d", left, parent.Id)
	}
	parent.Keys = insertAt(parent.Keys, idx, key)
	parent.Children = insertAt(parent.Children, idx+1, right)
	if len(parent.Keys) <= ix.maxInternal {
		return ix.writeNode(parent)
	}

	m := len(parent.Keys) / 2
	up := parent.Keys[m]
	sibling := &Node{
		Id:       ix.allocate(),
		Keys:     append([][]byte(nil), parent.Keys[m+1:]...),
		Children: append([]int32(nil), parent.Children[m+1:]...),
	}
	parent.Keys = parent.Keys[:m]
	parent.Children = parent.Children[:m+1]
	if err := ix.writeNode(sibling); err != nil {
		return err
	}
	if err := ix.writeNode(parent); err != nil {
		return err
	}
	return ix.promote(path, parent.Id, up, sibling.Id)
}

// Search returns the locations stored under key in leaf order.
func (ix *Index) Search(key string) ([]domain.Location, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.checkOpen(); err != nil {
		return nil, err
	}
	res := []domain.Location{}
	if !ix.meta.HasRoot {
		return res, nil
	}
	k := codec.FormatKey(key)

	// Equal keys may sit left of an equal separator, so descend to the leftmost candidate.
	n, err := ix.readNode(ix.meta.Root)
	if err != nil {
		return nil, err
	}
	for !n.Leaf {
		if n, err = ix.readNode(n.Children[lowerBound(n.Keys, k)]); err != nil {
			return nil, err
		}
	}

	for visited := int32(0); ; visited++ {
		if visited >= ix.meta.NextFree {
			return nil, domain.StructuralError("leaf chain of table %q loops", ix.table)
		}
		for i := lowerBound(n.Keys, k); i < len(n.Keys); i++ {
			if !bytes.Equal(n.Keys[i], k) {
				return res, nil
			}
			res = append(res, n.Locations[i])
		}
		if n.Next == NoSibling {
			return res, nil
		}
		if n, err = ix.readNode(n.Next); err != nil {
			return nil, err
		}
	}
}

// Entries walks the leaf chain from the leftmost leaf.
func (ix *Index) Entries() ([]Entry, error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if err := ix.checkOpen(); err != nil {
		return nil, err
	}
	res := []Entry{}
	if !ix.meta.HasRoot {
		return res, nil
	}
	n, err := ix.readNode(ix.meta.Root)
	if err != nil {
		return nil, err
	}
	for !n.Leaf {
		if n, err = ix.readNode(n.Children[0]); err != nil {
			return nil, err
		}
	}
	for visited := int32(0); ; visited++ {
		if visited >= ix.meta.NextFree {
			return nil, domain.StructuralError("leaf chain of table %q loops", ix.table)
		}
		for i, k := range n.Keys {
			res = append(res, Entry{Key: string(bytes.TrimRight(k, "\x00")), Location: n.Locations[i]})
		}
		if n.Next == NoSibling {
			return res, nil
		}
		if n, err = ix.readNode(n.Next); err != nil {
			return nil, err
		}
	}
}

// Build inserts every record of source under the index field.
func (ix *Index) Build(source RecordSource) error {
	field := ix.Field()
	idx, err := domain.FieldIndex(source.Fields(), field)
	if err != nil {
		return err
	}
	records, locations := source.Records(), source.Locations()
	for i, rec := range records {
		if err := ix.Insert(rec[idx].String(), locations[i].BlockId, locations[i].Offset); err != nil {
			return err
		}
	}
	ix.logger.Info().Str("table", source.Name()).Str("field", field).Int("entries", len(records)).Int32("height", ix.Height()).Msg("index built")
	return nil
}

// CreateIndex builds a fresh index of source on field, replacing any existing index file.
func CreateIndex(env *storage.Env, source RecordSource, field string) (*Index, error) {
	if _, err := domain.FieldIndex(source.Fields(), field); err != nil {
		return nil, err
	}
	path := env.Path(source.Name(), storage.IndexExt)
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, domain.IOError("remove "+path, err)
	}
	ix, err := Open(env, source.Name(), field)
	if err != nil {
		return nil, err
	}
	if err := ix.Build(source); err != nil {
		ix.Close()
		return nil, err
	}
	return ix, nil
}

func (ix *Index) Close() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.closed {
		return nil
	}
	ix.closed = true
	return ix.store.Close()
}

// Remove closes the index and deletes its file.
func (ix *Index) Remove() error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.closed = true
	return ix.store.Remove()
}
