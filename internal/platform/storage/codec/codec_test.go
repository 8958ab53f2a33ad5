package codec

import (
	"testing"
	"time"

	"MiniBase/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var people = []domain.Field{
	domain.NewField("name", domain.StringField, 10),
	domain.NewField("age", domain.IntField, 3),
	domain.NewField("admin", domain.BoolField, 5),
	domain.NewField("note", domain.VarStringField, 6),
}

func TestRecordLengthAndCapacity(t *testing.T) {
	assert.Equal(t, 24, ContentLength(people))
	assert.Equal(t, 42, RecordLength(people))
	// (4096 - 8) / (42 + 4)
	assert.Equal(t, 88, MaxRecordsPerBlock(4096, people))
}

func TestValidateSchema(t *testing.T) {
	assert.NoError(t, ValidateSchema(4096, people))

	cases := map[string][]domain.Field{
		"empty":        nil,
		"long name":    {domain.NewField("averyverylongname", domain.IntField, 4)},
		"duplicate":    {domain.NewField("a", domain.IntField, 4), domain.NewField("a", domain.IntField, 4)},
		"bad type":     {domain.NewField("a", domain.FieldType(7), 4)},
		"zero length":  {domain.NewField("a", domain.StringField, 0)},
		"record large": {domain.NewField("a", domain.StringField, 5000)},
	}
	for name, fields := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateSchema(4096, fields), domain.ErrSchema)
		})
	}
}

func TestParseValue(t *testing.T) {
	v, err := ParseValue(people[0], "  alice ")
	require.NoError(t, err)
	assert.Equal(t, domain.StringValue("alice"), v)

	v, err = ParseValue(people[1], "42")
	require.NoError(t, err)
	assert.Equal(t, domain.IntValue(42), v)

	v, err = ParseValue(people[2], "Yes")
	require.NoError(t, err)
	assert.Equal(t, domain.BoolValue(true), v)

	v, err = ParseValue(people[2], "f")
	require.NoError(t, err)
	assert.Equal(t, domain.BoolValue(false), v)
}

func TestParseValueRejectsInvalidInput(t *testing.T) {
	invalid := []struct {
		field domain.Field
		raw   string
	}{
		{people[0], "abcdefghijk"},
		{people[1], "twelve"},
		{people[1], "1000"},
		{people[2], "maybe"},
		{people[3], "toolong"},
	}
	for _, c := range invalid {
		_, err := ParseValue(c.field, c.raw)
		assert.ErrorIs(t, err, domain.ErrValidation, "%s=%q", c.field.Name, c.raw)
	}
}

func TestParseRecordArity(t *testing.T) {
	_, err := ParseRecord(people, []string{"bob"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestEncodeDecodeRecord(t *testing.T) {
	rec, err := ParseRecord(people, []string{"bob", "25", "true", "hi"})
	require.NoError(t, err)

	at := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)
	buf, err := EncodeRecord(people, rec, at)
	require.NoError(t, err)
	require.Len(t, buf, RecordLength(people))

	assert.Equal(t, []byte{0, 0, 0, 12, 0, 0, 0, 24}, buf[:8])
	assert.Equal(t, "2024-03-09", string(buf[8:18]))
	assert.Equal(t, "bob       25 true hi    ", string(buf[18:]))

	decoded, err := DecodeRecord(people, buf)
	require.NoError(t, err)
	assert.Equal(t, rec, decoded)
}

func TestBooleanTruncatedToFieldLength(t *testing.T) {
	fields := []domain.Field{domain.NewField("ok", domain.BoolField, 2)}
	buf, err := EncodeRecord(fields, domain.Record{domain.BoolValue(true)}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, "tr", string(buf[RecordHeaderSize:]))

	decoded, err := DecodeRecord(fields, buf)
	require.NoError(t, err)
	assert.True(t, decoded[0].Bool)

	buf, err = EncodeRecord(fields, domain.Record{domain.BoolValue(false)}, time.Now())
	require.NoError(t, err)
	decoded, err = DecodeRecord(fields, buf)
	require.NoError(t, err)
	assert.False(t, decoded[0].Bool)
}

func TestDecodeRecordRejectsCorruptInteger(t *testing.T) {
	fields := []domain.Field{domain.NewField("n", domain.IntField, 3)}
	buf := make([]byte, RecordLength(fields))
	copy(buf[RecordHeaderSize:], "x1 ")

	_, err := DecodeRecord(fields, buf)
	assert.ErrorIs(t, err, domain.ErrStructural)
}

func TestFormatKey(t *testing.T) {
	assert.Equal(t, []byte{'a', 'b', 0, 0, 0, 0, 0, 0, 0, 0}, FormatKey("ab"))
	assert.Equal(t, "0123456789", string(FormatKey("0123456789abc")))
}

func TestNormalizeFields(t *testing.T) {
	fields := []domain.Field{domain.NewField(" age ", domain.IntField, 3), domain.NewField("name", domain.StringField, 4)}
	normalized := NormalizeFields(fields)

	assert.Equal(t, "age", normalized[0].Name)
	assert.Equal(t, "name", normalized[1].Name)
	assert.Equal(t, " age ", fields[0].Name)
}
