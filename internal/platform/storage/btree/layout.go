package btree

import (
	"bytes"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/storage/codec"
	"MiniBase/internal/platform/utils"
)

const (
	KeySize          = codec.KeySize
	MetaSize         = 4 + 1 + 4 + 4 + 4
	metaFieldSize    = codec.NameSize
	NodeHeaderSize   = 12
	LeafEntrySize    = KeySize + 8
	InternalItemSize = KeySize + 4
	siblingSize      = 4
	// NoSibling terminates the leaf chain.
	NoSibling int32 = -1
)

const (
	internalNode int32 = 0
	leafNode     int32 = 1
)

func MaxLeafKeys(blockSize int) int {
	return (blockSize - NodeHeaderSize - siblingSize) / LeafEntrySize
}

func MaxInternalKeys(blockSize int) int {
	return (blockSize - NodeHeaderSize - 4) / InternalItemSize
}

// Meta is block 0 of an index file. The indexed field name follows the fixed part.
type Meta struct {
	HasRoot  bool
	Height   int32
	Root     int32
	NextFree int32
	Field    string
}

func (m Meta) Encode(blockSize int) []byte {
	buf := make([]byte, blockSize)
	utils.PutInt32(buf, 0, 0)
	utils.PutBool(buf, 4, m.HasRoot)
	utils.PutInt32(buf, 5, m.Height)
	utils.PutInt32(buf, 9, m.Root)
	utils.PutInt32(buf, 13, m.NextFree)
	if blockSize >= MetaSize+metaFieldSize {
		utils.PutPadded(buf, MetaSize, metaFieldSize, m.Field, 0)
	}
	return buf
}

func DecodeMeta(buf []byte) (Meta, error) {
	if len(buf) < MetaSize {
		return Meta{}, domain.StructuralError("index meta block of %d bytes is too small", len(buf))
	}
	m := Meta{
		HasRoot:  utils.Bool(buf, 4),
		Height:   utils.Int32(buf, 5),
		Root:     utils.Int32(buf, 9),
		NextFree: utils.Int32(buf, 13),
	}
	if len(buf) >= MetaSize+metaFieldSize {
		m.Field = utils.CString(buf, MetaSize, metaFieldSize)
	}
	if m.NextFree < 1 || m.Height < 0 || (m.HasRoot && (m.Root < 1 || m.Root >= m.NextFree)) {
		return Meta{}, domain.StructuralError("index meta is inconsistent: %+v", m)
	}
	return m, nil
}

// Node is a decoded tree block. Leaves use Locations and Next; internal nodes use Children.
type Node struct {
	Id        int32
	Leaf      bool
	Keys      [][]byte
	Locations []domain.Location
	Children  []int32
	Next      int32
}

func (n *Node) Encode(blockSize int) ([]byte, error) {
	buf := make([]byte, blockSize)
	utils.PutInt32(buf, 0, n.Id)
	utils.PutInt32(buf, 8, int32(len(n.Keys)))
	if n.Leaf {
		if len(n.Keys) > MaxLeafKeys(blockSize) || len(n.Locations) != len(n.Keys) {
			return nil, domain.StructuralError("leaf %d holds %d keys", n.Id, len(n.Keys))
		}
		utils.PutInt32(buf, 4, leafNode)
		for i, k := range n.Keys {
			off := NodeHeaderSize + i*LeafEntrySize
			copy(buf[off:off+KeySize], k)
			utils.PutInt32(buf, off+KeySize, n.Locations[i].BlockId)
			utils.PutInt32(buf, off+KeySize+4, n.Locations[i].Offset)
		}
		utils.PutInt32(buf, blockSize-siblingSize, n.Next)
		return buf, nil
	}
	if len(n.Keys) > MaxInternalKeys(blockSize) || len(n.Children) != len(n.Keys)+1 {
		return nil, domain.StructuralError("internal node %d holds %d keys and %d children", n.Id, len(n.Keys), len(n.Children))
	}
	utils.PutInt32(buf, 4, internalNode)
	utils.PutInt32(buf, NodeHeaderSize, n.Children[0])
	for i, k := range n.Keys {
		off := NodeHeaderSize + 4 + i*InternalItemSize
		copy(buf[off:off+KeySize], k)
		utils.PutInt32(buf, off+KeySize, n.Children[i+1])
	}
	return buf, nil
}

func DecodeNode(buf []byte) (*Node, error) {
	if len(buf) < NodeHeaderSize+siblingSize {
		return nil, domain.StructuralError("node block of %d bytes is too small", len(buf))
	}
	n := &Node{Id: utils.Int32(buf, 0)}
	count := int(utils.Int32(buf, 8))
	switch utils.Int32(buf, 4) {
	case leafNode:
		if count < 0 || count > MaxLeafKeys(len(buf)) {
			return nil, domain.StructuralError("leaf %d declares %d keys", n.Id, count)
		}
		n.Leaf = true
		n.Keys = make([][]byte, count)
		n.Locations = make([]domain.Location, count)
		for i := 0; i < count; i++ {
			off := NodeHeaderSize + i*LeafEntrySize
			n.Keys[i] = bytes.Clone(buf[off : off+KeySize])
			n.Locations[i] = domain.Location{
				BlockId: utils.Int32(buf, off+KeySize),
				Offset:  utils.Int32(buf, off+KeySize+4),
			}
		}
		n.Next = utils.Int32(buf, len(buf)-siblingSize)
	case internalNode:
		if count < 1 || count > MaxInternalKeys(len(buf)) {
			return nil, domain.StructuralError("internal node %d declares %d keys", n.Id, count)
		}
		n.Keys = make([][]byte, count)
		n.Children = make([]int32, count+1)
		n.Children[0] = utils.Int32(buf, NodeHeaderSize)
		for i := 0; i < count; i++ {
			off := NodeHeaderSize + 4 + i*InternalItemSize
			n.Keys[i] = bytes.Clone(buf[off : off+KeySize])
			n.Children[i+1] = utils.Int32(buf, off+KeySize)
		}
	default:
		return nil, domain.StructuralError("node %d has unknown type %d", n.Id, utils.Int32(buf, 4))
	}
	return n, nil
}
