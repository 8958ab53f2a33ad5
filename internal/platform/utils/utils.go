package utils

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"
)

// Fixed-width big-endian helpers shared by every on-disk layout.

const (
	Int32Size   = 4
	Float64Size = 8
	BoolSize    = 1
)

func PutInt32(buf []byte, off int, v int32) {
	binary.BigEndian.PutUint32(buf[off:off+Int32Size], uint32(v))
}

func Int32(buf []byte, off int) int32 {
	return int32(binary.BigEndian.Uint32(buf[off : off+Int32Size]))
}

func PutFloat64(buf []byte, off int, v float64) {
	binary.BigEndian.PutUint64(buf[off:off+Float64Size], math.Float64bits(v))
}

func Float64(buf []byte, off int) float64 {
	return math.Float64frombits(binary.BigEndian.Uint64(buf[off : off+Float64Size]))
}

func PutBool(buf []byte, off int, v bool) {
	buf[off] = 0
	if v {
		buf[off] = 1
	}
}

func Bool(buf []byte, off int) bool {
	return buf[off] != 0
}

// PutPadded writes s into width bytes, truncated if longer and filled with pad if shorter.
func PutPadded(buf []byte, off, width int, s string, pad byte) {
	dst := buf[off : off+width]
	n := copy(dst, s)
	for i := n; i < width; i++ {
		dst[i] = pad
	}
}

// PutRightAligned writes s into width bytes, space padded on the left.
func PutRightAligned(buf []byte, off, width int, s string) {
	if len(s) > width {
		s = s[:width]
	}
	dst := buf[off : off+width]
	lead := width - len(s)
	for i := 0; i < lead; i++ {
		dst[i] = ' '
	}
	copy(dst[lead:], s)
}

// Text reads width bytes and trims spaces and NULs on both sides.
func Text(buf []byte, off, width int) string {
	return strings.Trim(string(buf[off:off+width]), " \x00")
}

// CString reads width bytes up to the first NUL.
func CString(buf []byte, off, width int) string {
	raw := buf[off : off+width]
	if i := bytes.IndexByte(raw, 0); i >= 0 {
		raw = raw[:i]
	}
	return string(raw)
}
