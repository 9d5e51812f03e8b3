package avro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordEncoderDecoder_RoundTrip(t *testing.T) {
	enc := NewRecordEncoder().
		String("1-2-3:0").
		Int(1690000000).
		EnumIndex(0).
		UnionLong(42).
		UnionString("hello").
		Null()

	dec := NewRecordDecoder(enc.Bytes())

	gtid, err := dec.String()
	require.NoError(t, err)
	assert.Equal(t, "1-2-3:0", gtid)

	ts, err := dec.Long()
	require.NoError(t, err)
	assert.EqualValues(t, 1690000000, ts)

	evt, err := dec.Long()
	require.NoError(t, err)
	assert.EqualValues(t, 0, evt)

	isNull, err := dec.UnionIsNull()
	require.NoError(t, err)
	require.False(t, isNull)
	a, err := dec.Long()
	require.NoError(t, err)
	assert.EqualValues(t, 42, a)

	isNull, err = dec.UnionIsNull()
	require.NoError(t, err)
	require.False(t, isNull)
	b, err := dec.String()
	require.NoError(t, err)
	assert.Equal(t, "hello", b)

	isNull, err = dec.UnionIsNull()
	require.NoError(t, err)
	assert.True(t, isNull)
	assert.False(t, dec.Remaining())
}

func TestRecordEncoder_FloatDouble(t *testing.T) {
	enc := NewRecordEncoder().Float(1.5).Double(2.25)
	dec := NewRecordDecoder(enc.Bytes())
	f, err := dec.Float()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)
	d, err := dec.Double()
	require.NoError(t, err)
	assert.Equal(t, 2.25, d)
}
