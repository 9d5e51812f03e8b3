package avro

// RecordEncoder accumulates the bytes of a single Avro datum field by
// field, in schema order. Exported so callers outside this package
// (the schema/convert packages, which know the record's field types)
// can build records without reimplementing the primitive codec.
type RecordEncoder struct {
	buf []byte
}

// NewRecordEncoder returns an empty encoder.
func NewRecordEncoder() *RecordEncoder {
	return &RecordEncoder{}
}

// Bytes returns the encoded record so far.
func (e *RecordEncoder) Bytes() []byte { return e.buf }

// Long appends an Avro `long`.
func (e *RecordEncoder) Long(v int64) *RecordEncoder {
	e.buf = append(e.buf, encodeLong(v)...)
	return e
}

// Int appends an Avro `int`, encoded identically to `long`.
func (e *RecordEncoder) Int(v int32) *RecordEncoder {
	return e.Long(int64(v))
}

// String appends an Avro `string`.
func (e *RecordEncoder) String(v string) *RecordEncoder {
	e.buf = append(e.buf, encodeString(v)...)
	return e
}

// ByteString appends an Avro `bytes` value.
func (e *RecordEncoder) ByteString(v []byte) *RecordEncoder {
	e.buf = append(e.buf, encodeBytes(v)...)
	return e
}

// Float appends an Avro `float`.
func (e *RecordEncoder) Float(v float32) *RecordEncoder {
	e.buf = append(e.buf, encodeFloat(v)...)
	return e
}

// Double appends an Avro `double`.
func (e *RecordEncoder) Double(v float64) *RecordEncoder {
	e.buf = append(e.buf, encodeDouble(v)...)
	return e
}

// EnumIndex appends an Avro enum's zero-based symbol index.
func (e *RecordEncoder) EnumIndex(i int) *RecordEncoder {
	return e.Long(int64(i))
}

// Null appends the `null` branch (index 0) of a `["null", T]` union.
func (e *RecordEncoder) Null() *RecordEncoder {
	return e.Long(0)
}

// UnionString appends the non-null branch (index 1) of a `["null",
// "string"]` union followed by the string value.
func (e *RecordEncoder) UnionString(v string) *RecordEncoder {
	e.Long(1)
	return e.String(v)
}

// UnionLong appends the non-null branch of a `["null", "long"/"int"]`
// union followed by the value.
func (e *RecordEncoder) UnionLong(v int64) *RecordEncoder {
	e.Long(1)
	return e.Long(v)
}

// UnionFloat appends the non-null branch of a `["null", "float"]`
// union followed by the value.
func (e *RecordEncoder) UnionFloat(v float32) *RecordEncoder {
	e.Long(1)
	return e.Float(v)
}

// UnionDouble appends the non-null branch of a `["null", "double"]`
// union followed by the value.
func (e *RecordEncoder) UnionDouble(v float64) *RecordEncoder {
	e.Long(1)
	return e.Double(v)
}

// UnionBytes appends the non-null branch of a `["null", "bytes"]`
// union followed by the value.
func (e *RecordEncoder) UnionBytes(v []byte) *RecordEncoder {
	e.Long(1)
	return e.ByteString(v)
}
