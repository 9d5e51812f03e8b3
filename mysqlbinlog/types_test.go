package mysqlbinlog

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValueReader(data []byte) *reader {
	return &reader{rd: bytes.NewReader(data), limit: -1}
}

func TestColumn_decodeValue(t *testing.T) {
	testCases := []struct {
		name string
		col  Column
		data []byte
		want interface{}
	}{
		{
			name: "tiny signed",
			col:  Column{Type: TypeTiny},
			data: []byte{0xe8}, // -24
			want: int8(-24),
		},
		{
			name: "tiny unsigned",
			col:  Column{Type: TypeTiny, Unsigned: true},
			data: []byte{0xe8},
			want: byte(0xe8),
		},
		{
			name: "short signed",
			col:  Column{Type: TypeShort},
			data: []byte{0xd0, 0xff}, // -48
			want: int16(-48),
		},
		{
			name: "long unsigned",
			col:  Column{Type: TypeLong, Unsigned: true},
			data: []byte{0x2a, 0x00, 0x00, 0x00},
			want: uint32(42),
		},
		{
			name: "varchar short meta",
			col:  Column{Type: TypeVarchar, Meta: 8},
			data: []byte{5, 'h', 'e', 'l', 'l', 'o'},
			want: "hello",
		},
		{
			name: "enum one byte",
			col:  Column{Type: TypeEnum, Meta: 1, Values: []string{"a", "b", "c"}},
			data: []byte{2},
			want: Enum{2, []string{"a", "b", "c"}},
		},
		{
			name: "set bitmask",
			col:  Column{Type: TypeSet, Meta: 1, Values: []string{"x", "y", "z"}},
			data: []byte{0b101},
			want: Set{0b101, []string{"x", "y", "z"}},
		},
		{
			name: "year zero",
			col:  Column{Type: TypeYear},
			data: []byte{0},
			want: 0,
		},
		{
			name: "year offset",
			col:  Column{Type: TypeYear},
			data: []byte{121}, // 1900+121
			want: 2021,
		},
		{
			name: "date",
			col:  Column{Type: TypeDate},
			data: []byte{0x4e, 0xca, 0x0f}, // (year*16*32 + month*32 + day), little endian 3 bytes
			want: time.Date(2021, time.February, 14, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := newValueReader(tc.data)
			v, err := tc.col.decodeValue(r)
			require.NoError(t, err)
			assert.Equal(t, tc.want, v)
		})
	}
}

func TestDecodeDecimal(t *testing.T) {
	// 123.456 as NEWDECIMAL(6,3): one compressed integral byte pair, one
	// compressed fractional byte pair, sign bit set in the high byte.
	buf := []byte{0x80, 0x7b, 0x01, 0xc8}
	got, err := decodeDecimal(buf, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, Decimal("123.456"), got)
}

func TestDecodeDecimal_Negative(t *testing.T) {
	buf := []byte{0x7f, 0x84, 0xfe, 0x37}
	got, err := decodeDecimal(buf, 6, 3)
	require.NoError(t, err)
	assert.Equal(t, Decimal("-123.456"), got)
}

func TestBitSlice(t *testing.T) {
	// pack year=2021, month=2, day=14, hour=20, min=37, sec=12 per DATETIME2 layout.
	ym := uint64(2021*13 + 2)
	v := ym<<(40-18) | uint64(14)<<(40-23) | uint64(20)<<(40-28) | uint64(37)<<(40-34) | uint64(12)
	assert.Equal(t, int(ym), bitSlice(v, 40, 1, 17))
	assert.Equal(t, 14, bitSlice(v, 40, 18, 5))
	assert.Equal(t, 20, bitSlice(v, 40, 23, 5))
	assert.Equal(t, 37, bitSlice(v, 40, 28, 6))
	assert.Equal(t, 12, bitSlice(v, 40, 34, 6))
}

func TestBigEndian(t *testing.T) {
	assert.Equal(t, uint64(0x0102), bigEndian([]byte{0x01, 0x02}))
	assert.Equal(t, uint64(0), bigEndian(nil))
}
