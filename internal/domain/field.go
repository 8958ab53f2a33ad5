package domain

import (
	"fmt"
	"strconv"
	"strings"
)

type FieldType int32

const (
	StringField FieldType = iota
	VarStringField
	IntField
	BoolField
)

var fieldTypeNames = map[FieldType]string{
	StringField:    "string",
	VarStringField: "varstring",
	IntField:       "int",
	BoolField:      "bool",
}

func (t FieldType) String() string {
	if name, ok := fieldTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("FieldType(%d)", int32(t))
}

func (t FieldType) Valid() bool {
	_, ok := fieldTypeNames[t]
	return ok
}

func (t FieldType) IsText() bool {
	return t == StringField || t == VarStringField
}

// ParseFieldType accepts either the type name or its numeric code.
func ParseFieldType(s string) (FieldType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t, name := range fieldTypeNames {
		if name == s {
			return t, nil
		}
	}
	code, err := strconv.Atoi(s)
	if err == nil && FieldType(code).Valid() {
		return FieldType(code), nil
	}
	return 0, SchemaError("unknown field type %q", s)
}

type Field struct {
	Name   string    `json:"name"`
	Type   FieldType `json:"type"`
	Length int32     `json:"length"`
}

func NewField(name string, fieldType FieldType, length int32) Field {
	return Field{
		Name:   name,
		Type:   fieldType,
		Length: length,
	}
}

// FieldIndex returns the position of the named field, or a schema error.
func FieldIndex(fields []Field, name string) (int, error) {
	name = strings.TrimSpace(name)
	for i, f := range fields {
		if f.Name == name {
			return i, nil
		}
	}
	return -1, NotFoundError("field %q", name)
}
