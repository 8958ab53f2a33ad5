package codec

import (
	"strconv"
	"strings"
	"time"

	"MiniBase/internal/domain"
	"MiniBase/internal/platform/utils"
)

const KeySize = 10

func ContentLength(fields []domain.Field) int {
	n := 0
	for _, f := range fields {
		n += int(f.Length)
	}
	return n
}

func RecordLength(fields []domain.Field) int {
	return RecordHeaderSize + ContentLength(fields)
}

func MaxRecordsPerBlock(blockSize int, fields []domain.Field) int {
	return (blockSize - DataHeaderSize) / (RecordLength(fields) + SlotSize)
}

// NormalizeFields returns a copy of fields with names as the directory block stores them.
func NormalizeFields(fields []domain.Field) []domain.Field {
	out := make([]domain.Field, len(fields))
	for i, f := range fields {
		f.Name = strings.TrimSpace(f.Name)
		out[i] = f
	}
	return out
}

// ValidateSchema checks a schema before it is written to a new table.
func ValidateSchema(blockSize int, fields []domain.Field) error {
	if len(fields) == 0 {
		return domain.SchemaError("a table needs at least one field")
	}
	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		name := strings.TrimSpace(f.Name)
		if name == "" || len(name) > NameSize {
			return domain.SchemaError("field name %q must have 1 to %d characters", f.Name, NameSize)
		}
		if _, dup := seen[name]; dup {
			return domain.SchemaError("duplicate field %q", name)
		}
		seen[name] = struct{}{}
		if !f.Type.Valid() {
			return domain.SchemaError("field %q has unknown type %d", name, int32(f.Type))
		}
		if f.Length <= 0 {
			return domain.SchemaError("field %q must have a positive length", name)
		}
	}
	if DirectoryHeaderSize+len(fields)*FieldDescriptorSize > blockSize {
		return domain.SchemaError("%d fields do not fit a %d byte directory block", len(fields), blockSize)
	}
	if MaxRecordsPerBlock(blockSize, fields) < 1 {
		return domain.SchemaError("a %d byte record does not fit a %d byte block", RecordLength(fields), blockSize)
	}
	return nil
}

// ParseValue converts user input to a typed value for field.
func ParseValue(field domain.Field, raw string) (domain.Value, error) {
	raw = strings.TrimSpace(raw)
	switch field.Type {
	case domain.StringField, domain.VarStringField:
		if len(raw) > int(field.Length) {
			return domain.Value{}, domain.ValidationError("value %q exceeds length %d of field %q", raw, field.Length, field.Name)
		}
		return domain.Value{Type: field.Type, Str: raw}, nil
	case domain.IntField:
		i, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Value{}, domain.ValidationError("value %q of field %q is not an integer", raw, field.Name)
		}
		if len(strconv.FormatInt(i, 10)) > int(field.Length) {
			return domain.Value{}, domain.ValidationError("value %d exceeds length %d of field %q", i, field.Length, field.Name)
		}
		return domain.IntValue(i), nil
	case domain.BoolField:
		switch strings.ToLower(raw) {
		case "true", "1", "yes", "t":
			return domain.BoolValue(true), nil
		case "false", "0", "no", "f":
			return domain.BoolValue(false), nil
		}
		return domain.Value{}, domain.ValidationError("value %q of field %q is not a boolean", raw, field.Name)
	}
	return domain.Value{}, domain.SchemaError("field %q has unknown type %d", field.Name, int32(field.Type))
}

// ParseRecord validates one raw value per field. Nothing is returned unless every value is valid.
func ParseRecord(fields []domain.Field, raw []string) (domain.Record, error) {
	if len(raw) != len(fields) {
		return nil, domain.ValidationError("expected %d values, got %d", len(fields), len(raw))
	}
	rec := make(domain.Record, len(fields))
	for i, f := range fields {
		v, err := ParseValue(f, raw[i])
		if err != nil {
			return nil, err
		}
		rec[i] = v
	}
	return rec, nil
}

// EncodeRecord renders a full record, header included, stamped with the date of at.
func EncodeRecord(fields []domain.Field, rec domain.Record, at time.Time) ([]byte, error) {
	if len(rec) != len(fields) {
		return nil, domain.ValidationError("expected %d values, got %d", len(fields), len(rec))
	}
	content := ContentLength(fields)
	buf := make([]byte, RecordHeaderSize+content)
	RecordHeader{
		SchemaPtr:     SchemaPointer,
		ContentLength: int32(content),
		Date:          at.Format(DateLayout),
	}.Put(buf)
	off := RecordHeaderSize
	for i, f := range fields {
		text := rec[i].String()
		if f.Type != domain.BoolField && len(text) > int(f.Length) {
			return nil, domain.ValidationError("value %q exceeds length %d of field %q", text, f.Length, f.Name)
		}
		utils.PutPadded(buf, off, int(f.Length), text, ' ')
		off += int(f.Length)
	}
	return buf, nil
}

// DecodeRecord reads a record from buf, which starts at the record header.
func DecodeRecord(fields []domain.Field, buf []byte) (domain.Record, error) {
	if _, err := DecodeRecordHeader(buf); err != nil {
		return nil, err
	}
	if len(buf) < RecordLength(fields) {
		return nil, domain.StructuralError("record of %d bytes is shorter than %d", len(buf), RecordLength(fields))
	}
	rec := make(domain.Record, len(fields))
	off := RecordHeaderSize
	for i, f := range fields {
		text := utils.Text(buf, off, int(f.Length))
		off += int(f.Length)
		switch f.Type {
		case domain.IntField:
			n, err := strconv.ParseInt(text, 10, 64)
			if err != nil {
				return nil, domain.StructuralError("field %q holds non-integer %q", f.Name, text)
			}
			rec[i] = domain.IntValue(n)
		case domain.BoolField:
			rec[i] = domain.BoolValue(decodeBool(text))
		default:
			rec[i] = domain.Value{Type: f.Type, Str: text}
		}
	}
	return rec, nil
}

// decodeBool also accepts "true" cut short by a narrow field.
func decodeBool(text string) bool {
	text = strings.ToLower(text)
	switch text {
	case "true", "1", "yes", "t":
		return true
	case "":
		return false
	}
	return strings.HasPrefix("true", text)
}

// FormatKey renders an index key: truncated to KeySize or NUL padded.
func FormatKey(text string) []byte {
	key := make([]byte, KeySize)
	utils.PutPadded(key, 0, KeySize, text, 0)
	return key
}
