package schema

import (
	"testing"

	"github.com/cdcstream/binlogavro/avro"
	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRecord_RoundTrip(t *testing.T) {
	tr := NewTracker()
	tc, err := tr.CreateTable("db", "CREATE TABLE t (a INT, b VARCHAR(8))", mysqlbinlog.GTID{Domain: 1, ServerID: 2, Sequence: 3})
	require.NoError(t, err)

	data, err := EncodeRecord(tc, tc.GTID, 1690000000, EventInsert, []interface{}{int32(42), "hello"})
	require.NoError(t, err)

	dec := avro.NewRecordDecoder(data)
	rec, err := DecodeRecord(dec, tc)
	require.NoError(t, err)
	assert.Equal(t, "1-2-3", rec["GTID"])
	assert.EqualValues(t, 1690000000, rec["timestamp"])
	assert.Equal(t, "insert", rec["event_type"])
	assert.EqualValues(t, 42, rec["a"])
	assert.Equal(t, "hello", rec["b"])
}

func TestEncodeRecord_NullColumn(t *testing.T) {
	tr := NewTracker()
	tc, err := tr.CreateTable("db", "CREATE TABLE t (a INT, b VARCHAR(8))", mysqlbinlog.GTID{})
	require.NoError(t, err)

	data, err := EncodeRecord(tc, tc.GTID, 1, EventUpdateAfter, []interface{}{int32(1), nil})
	require.NoError(t, err)

	dec := avro.NewRecordDecoder(data)
	rec, err := DecodeRecord(dec, tc)
	require.NoError(t, err)
	assert.Nil(t, rec["b"])
	assert.Equal(t, "update_after", rec["event_type"])
}

func TestEncodeRecord_WrongValueCount(t *testing.T) {
	tr := NewTracker()
	tc, err := tr.CreateTable("db", "CREATE TABLE t (a INT)", mysqlbinlog.GTID{})
	require.NoError(t, err)
	_, err = EncodeRecord(tc, tc.GTID, 1, EventInsert, []interface{}{})
	assert.Error(t, err)
}
