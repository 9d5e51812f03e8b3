package avro

import (
	"bytes"
	"io"
)

// RecordDecoder reads Avro primitive values sequentially from a single
// block's payload, tracking how many bytes of buf it has consumed so a
// caller can locate the start of the next record. Used by the "parse
// records one at a time against the schema" access mode (spec.md §4.3
// option (b), as opposed to returning the raw block for native Avro
// streaming).
type RecordDecoder struct {
	r *bytes.Reader
}

// NewRecordDecoder wraps buf for sequential decoding.
func NewRecordDecoder(buf []byte) *RecordDecoder {
	return &RecordDecoder{r: bytes.NewReader(buf)}
}

// Remaining reports whether unconsumed bytes remain, i.e. whether
// another record follows in this block.
func (d *RecordDecoder) Remaining() bool {
	return d.r.Len() > 0
}

// Long decodes an Avro `long`/`int`.
func (d *RecordDecoder) Long() (int64, error) {
	return decodeLong(d.r)
}

// String decodes an Avro `string`.
func (d *RecordDecoder) String() (string, error) {
	b, err := d.ByteString()
	return string(b), err
}

// ByteString decodes an Avro `bytes` value.
func (d *RecordDecoder) ByteString() ([]byte, error) {
	n, err := decodeLong(d.r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(d.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// Float decodes an Avro `float`.
func (d *RecordDecoder) Float() (float32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return decodeFloatBits(buf), nil
}

// Double decodes an Avro `double`.
func (d *RecordDecoder) Double() (float64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(d.r, buf[:]); err != nil {
		return 0, err
	}
	return decodeDoubleBits(buf), nil
}

// UnionIsNull peeks the union branch index (0 = null, 1 = the other
// branch of a `["null", T]` union) by decoding it; it must always be
// consumed before the branch's value.
func (d *RecordDecoder) UnionIsNull() (bool, error) {
	idx, err := decodeLong(d.r)
	if err != nil {
		return false, err
	}
	return idx == 0, nil
}
