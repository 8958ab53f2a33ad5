package domain

import (
	"strconv"
	"strings"
)

type Value struct {
	Type FieldType
	Str  string
	Int  int64
	Bool bool
}

func StringValue(s string) Value {
	return Value{Type: StringField, Str: s}
}

func VarStringValue(s string) Value {
	return Value{Type: VarStringField, Str: s}
}

func IntValue(i int64) Value {
	return Value{Type: IntField, Int: i}
}

func BoolValue(b bool) Value {
	return Value{Type: BoolField, Bool: b}
}

// String renders the value the way it is stored inside a record.
func (v Value) String() string {
	switch v.Type {
	case IntField:
		return strconv.FormatInt(v.Int, 10)
	case BoolField:
		return strconv.FormatBool(v.Bool)
	default:
		return v.Str
	}
}

// Equal compares decoded values. string and varstring compare by content.
func (v Value) Equal(other Value) bool {
	if v.Type.IsText() && other.Type.IsText() {
		return strings.TrimSpace(v.Str) == strings.TrimSpace(other.Str)
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case IntField:
		return v.Int == other.Int
	case BoolField:
		return v.Bool == other.Bool
	}
	return false
}

func (v Value) Interface() any {
	switch v.Type {
	case IntField:
		return v.Int
	case BoolField:
		return v.Bool
	default:
		return v.Str
	}
}

type Record []Value

func (r Record) Copy() Record {
	out := make(Record, len(r))
	copy(out, r)
	return out
}

func (r Record) Strings() []string {
	out := make([]string, len(r))
	for i, v := range r {
		out[i] = v.String()
	}
	return out
}

// Location is the physical position of a record: its data block and slot.
type Location struct {
	BlockId int32 `json:"block_id"`
	Offset  int32 `json:"offset"`
}
