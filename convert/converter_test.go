package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cdcstream/binlogavro/control"
	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/cdcstream/binlogavro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestConverter builds a Converter against a throwaway binlog
// directory holding one minimally-valid (header-only) binlog file, so
// tests can exercise Converter's bookkeeping methods without decoding
// real events.
func newTestConverter(t *testing.T) (*Converter, string) {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "binlog.index"), []byte("mybinlog.000001\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mybinlog.000001"), []byte{0xfe, 'b', 'i', 'n'}, 0o644))

	outDir := filepath.Join(dir, "out")
	statePath := filepath.Join(dir, "state")
	c, err := NewConverter(dir, outDir, statePath, 5, 5, nil)
	require.NoError(t, err)
	return c, statePath
}

func TestResult_String(t *testing.T) {
	assert.Equal(t, "OK", ResultOK.String())
	assert.Equal(t, "LAST_FILE", ResultLastFile.String())
	assert.Equal(t, "OPEN_TRANSACTION", ResultOpenTransaction.String())
	assert.Equal(t, "BINLOG_ERROR", ResultBinlogError.String())
}

func TestShouldCheckpoint_XIDAlwaysCheckpoints(t *testing.T) {
	c, _ := newTestConverter(t)
	e := mysqlbinlog.Event{Header: mysqlbinlog.EventHeader{EventType: mysqlbinlog.XID_EVENT}}
	assert.True(t, c.shouldCheckpoint(e))
}

func TestShouldCheckpoint_RowAndTrxTargets(t *testing.T) {
	c, _ := newTestConverter(t)
	e := mysqlbinlog.Event{Header: mysqlbinlog.EventHeader{EventType: mysqlbinlog.WRITE_ROWS_EVENTv2}}

	assert.False(t, c.shouldCheckpoint(e))

	c.rowCount = c.RowTarget
	assert.True(t, c.shouldCheckpoint(e))

	c.rowCount = 0
	c.trxCount = c.TrxTarget
	assert.True(t, c.shouldCheckpoint(e))
}

func TestShouldCheckpoint_SuppressedWhileReplaying(t *testing.T) {
	c, _ := newTestConverter(t)
	c.replaying = true
	e := mysqlbinlog.Event{Header: mysqlbinlog.EventHeader{EventType: mysqlbinlog.XID_EVENT}}
	assert.False(t, c.shouldCheckpoint(e))
}

func TestAtEOF_PendingTransactionVsLastFile(t *testing.T) {
	c, _ := newTestConverter(t)

	res, checkpointed, err := c.atEOF()
	require.NoError(t, err)
	assert.False(t, checkpointed)
	assert.Equal(t, ResultLastFile, res)

	c.pending = true
	res, _, err = c.atEOF()
	require.NoError(t, err)
	assert.Equal(t, ResultOpenTransaction, res)
}

type fakeNotifier struct {
	snapshots []control.ConverterStateSnapshot
}

func (f *fakeNotifier) NotifyCheckpoint(s control.ConverterStateSnapshot) {
	f.snapshots = append(f.snapshots, s)
}

func TestCheckpoint_NotifiesFlushesAndPersistsState(t *testing.T) {
	c, statePath := newTestConverter(t)
	notifier := &fakeNotifier{}
	c.Notifier = notifier

	tc, err := c.tracker.CreateTable("shop", "CREATE TABLE orders (id INT)", mysqlbinlog.GTID{Domain: 1, ServerID: 2, Sequence: 3})
	require.NoError(t, err)
	at, err := c.avroTableFor(tc)
	require.NoError(t, err)
	rec, err := schema.EncodeRecord(tc, tc.GTID, 1, schema.EventInsert, []interface{}{int32(7)})
	require.NoError(t, err)
	at.WriteRecord(rec)

	c.state.BinlogFile = "mybinlog.000001"
	c.state.Position = 42
	c.rowCount, c.trxCount = 3, 1

	require.NoError(t, c.checkpoint())

	require.Len(t, notifier.snapshots, 1)
	assert.Equal(t, uint32(42), notifier.snapshots[0].Position)
	assert.Equal(t, 0, c.rowCount)
	assert.Equal(t, 0, c.trxCount)

	loaded, err := LoadConverterState(statePath)
	require.NoError(t, err)
	assert.Equal(t, c.state, loaded)

	require.NoError(t, c.Close())
}

func TestAvroTableFor_ReopensOnVersionChange(t *testing.T) {
	c, _ := newTestConverter(t)
	tc, err := c.tracker.CreateTable("shop", "CREATE TABLE orders (id INT)", mysqlbinlog.GTID{})
	require.NoError(t, err)

	at1, err := c.avroTableFor(tc)
	require.NoError(t, err)
	path1 := at1.Path

	_, err = c.tracker.AlterTable("shop", "ALTER TABLE orders ADD COLUMN total INT", mysqlbinlog.GTID{})
	require.NoError(t, err)
	tc2 := c.tracker.Lookup("shop", "orders")

	at2, err := c.avroTableFor(tc2)
	require.NoError(t, err)
	assert.NotEqual(t, path1, at2.Path)
	assert.Len(t, c.tables, 1)

	require.NoError(t, c.Close())
}

func TestPersistDDL_AppendsToSidecarList(t *testing.T) {
	c, statePath := newTestConverter(t)
	tc, err := c.tracker.CreateTable("shop", "CREATE TABLE orders (id INT)", mysqlbinlog.GTID{})
	require.NoError(t, err)

	require.NoError(t, c.persistDDL("CREATE TABLE orders (id INT)", tc))
	assert.True(t, tc.WasPersisted)

	data, err := os.ReadFile(ddlListPath(statePath))
	require.NoError(t, err)
	assert.Equal(t, "CREATE TABLE orders (id INT)\n", string(data))
}
