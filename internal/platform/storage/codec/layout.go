package codec

import (
	"MiniBase/internal/domain"
	"MiniBase/internal/platform/utils"
)

const (
	NameSize            = 10
	DateSize            = 10
	DateLayout          = "2006-01-02"
	DirectoryHeaderSize = 12
	FieldDescriptorSize = NameSize + 8
	DataHeaderSize      = 8
	SlotSize            = 4
	RecordHeaderSize    = 8 + DateSize
	// SchemaPointer is the offset of the first field descriptor in block 0.
	SchemaPointer = DirectoryHeaderSize
)

// DirectoryBlock is block 0 of a table file.
type DirectoryBlock struct {
	BlockCount int32
	Fields     []domain.Field
}

func (d DirectoryBlock) Size() int {
	return DirectoryHeaderSize + len(d.Fields)*FieldDescriptorSize
}

func (d DirectoryBlock) Encode(blockSize int) ([]byte, error) {
	if d.Size() > blockSize {
		return nil, domain.SchemaError("%d fields do not fit a %d byte directory block", len(d.Fields), blockSize)
	}
	buf := make([]byte, blockSize)
	utils.PutInt32(buf, 0, 0)
	utils.PutInt32(buf, 4, d.BlockCount)
	utils.PutInt32(buf, 8, int32(len(d.Fields)))
	for i, f := range d.Fields {
		off := DirectoryHeaderSize + i*FieldDescriptorSize
		utils.PutRightAligned(buf, off, NameSize, f.Name)
		utils.PutInt32(buf, off+NameSize, int32(f.Type))
		utils.PutInt32(buf, off+NameSize+4, f.Length)
	}
	return buf, nil
}

func DecodeDirectoryBlock(buf []byte) (DirectoryBlock, error) {
	if len(buf) < DirectoryHeaderSize {
		return DirectoryBlock{}, domain.StructuralError("directory block of %d bytes is too small", len(buf))
	}
	count := utils.Int32(buf, 8)
	if count < 0 || DirectoryHeaderSize+int(count)*FieldDescriptorSize > len(buf) {
		return DirectoryBlock{}, domain.StructuralError("directory block declares %d fields", count)
	}
	d := DirectoryBlock{BlockCount: utils.Int32(buf, 4), Fields: make([]domain.Field, count)}
	for i := range d.Fields {
		off := DirectoryHeaderSize + i*FieldDescriptorSize
		d.Fields[i] = domain.NewField(
			utils.Text(buf, off, NameSize),
			domain.FieldType(utils.Int32(buf, off+NameSize)),
			utils.Int32(buf, off+NameSize+4),
		)
	}
	return d, nil
}

// PutBlockCount rewrites only the header of a directory block.
func PutBlockCount(buf []byte, count int32) {
	utils.PutInt32(buf, 0, 0)
	utils.PutInt32(buf, 4, count)
}

type DataBlockHeader struct {
	BlockId     int32
	RecordCount int32
}

func (h DataBlockHeader) Put(buf []byte) {
	utils.PutInt32(buf, 0, h.BlockId)
	utils.PutInt32(buf, 4, h.RecordCount)
}

func DecodeDataBlockHeader(buf []byte) (DataBlockHeader, error) {
	if len(buf) < DataHeaderSize {
		return DataBlockHeader{}, domain.StructuralError("data block of %d bytes is too small", len(buf))
	}
	return DataBlockHeader{BlockId: utils.Int32(buf, 0), RecordCount: utils.Int32(buf, 4)}, nil
}

// SlotPosition is the byte offset of slot i's entry in the offset directory.
func SlotPosition(slot int) int {
	return DataHeaderSize + slot*SlotSize
}

func PutSlotOffset(buf []byte, slot int, offset int32) {
	utils.PutInt32(buf, SlotPosition(slot), offset)
}

func SlotOffset(buf []byte, slot int) int32 {
	return utils.Int32(buf, SlotPosition(slot))
}

// RecordOffset is where slot's record starts; records are packed from the block tail.
func RecordOffset(blockSize, recordLength, slot int) int {
	return blockSize - (slot+1)*recordLength
}

type RecordHeader struct {
	SchemaPtr     int32
	ContentLength int32
	Date          string
}

func (h RecordHeader) Put(buf []byte) {
	utils.PutInt32(buf, 0, h.SchemaPtr)
	utils.PutInt32(buf, 4, h.ContentLength)
	utils.PutPadded(buf, 8, DateSize, h.Date, ' ')
}

func DecodeRecordHeader(buf []byte) (RecordHeader, error) {
	if len(buf) < RecordHeaderSize {
		return RecordHeader{}, domain.StructuralError("record of %d bytes is too small", len(buf))
	}
	return RecordHeader{
		SchemaPtr:     utils.Int32(buf, 0),
		ContentLength: utils.Int32(buf, 4),
		Date:          utils.Text(buf, 8, DateSize),
	}, nil
}
