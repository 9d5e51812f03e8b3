package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cdcstream/binlogavro/avro"
	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/cdcstream/binlogavro/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTableCreate() *schema.TableCreate {
	tr := schema.NewTracker()
	tc, err := tr.CreateTable("shop", "CREATE TABLE orders (id INT, total DOUBLE)", mysqlbinlog.GTID{Domain: 1, ServerID: 1, Sequence: 1})
	if err != nil {
		panic(err)
	}
	return tc
}

func TestDataFileName_SidecarName(t *testing.T) {
	assert.Equal(t, "shop.orders.000001.avro", dataFileName("shop", "orders", 1))
	assert.Equal(t, "shop.orders.avsc", sidecarName("shop", "orders"))
}

func TestOpenAvroTable_CreatesFileAndSidecar(t *testing.T) {
	dir := t.TempDir()
	tc := sampleTableCreate()

	at, err := OpenAvroTable(dir, tc)
	require.NoError(t, err)
	defer at.Close()

	assert.Equal(t, "shop", at.Database)
	assert.Equal(t, "orders", at.Table)
	assert.EqualValues(t, 1, at.Version)

	sidecar, err := os.ReadFile(filepath.Join(dir, "shop.orders.avsc"))
	require.NoError(t, err)
	assert.Contains(t, string(sidecar), "\"orders\"")

	_, err = os.Stat(filepath.Join(dir, "shop.orders.000001.avro"))
	require.NoError(t, err)
}

func TestOpenAvroTable_ReopensExistingFileForAppend(t *testing.T) {
	dir := t.TempDir()
	tc := sampleTableCreate()

	at, err := OpenAvroTable(dir, tc)
	require.NoError(t, err)
	rec, err := schema.EncodeRecord(tc, tc.GTID, 1, schema.EventInsert, []interface{}{int32(1), 9.5})
	require.NoError(t, err)
	at.WriteRecord(rec)
	require.NoError(t, at.Flush())
	require.NoError(t, at.Close())

	at2, err := OpenAvroTable(dir, tc)
	require.NoError(t, err)
	defer at2.Close()

	r, err := avro.Open(at2.Path)
	require.NoError(t, err)
	defer r.Close()
	assert.EqualValues(t, 1, r.RecordsInBlock())
}
