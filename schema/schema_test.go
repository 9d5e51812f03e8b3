package schema

import (
	"testing"

	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCreateTable(t *testing.T) {
	table, cols, err := ParseCreateTable("CREATE TABLE t (a INT, b VARCHAR(8) NOT NULL, PRIMARY KEY (a))")
	require.NoError(t, err)
	assert.Equal(t, "t", table)
	require.Len(t, cols, 2)
	assert.Equal(t, ColumnDef{Name: "a", Type: mysqlbinlog.TypeLong, Nullable: true}, cols[0])
	assert.Equal(t, ColumnDef{Name: "b", Type: mysqlbinlog.TypeVarchar, Nullable: false}, cols[1])
}

func TestParseCreateTable_IfNotExists(t *testing.T) {
	table, cols, err := ParseCreateTable("CREATE TABLE IF NOT EXISTS `orders` (`id` BIGINT NOT NULL, `status` ENUM('a','b') NULL)")
	require.NoError(t, err)
	assert.Equal(t, "orders", table)
	require.Len(t, cols, 2)
	assert.Equal(t, "id", cols[0].Name)
	assert.Equal(t, mysqlbinlog.TypeLongLong, cols[0].Type)
	assert.Equal(t, mysqlbinlog.TypeEnum, cols[1].Type)
}

func TestParseAlterTable_AddDropModify(t *testing.T) {
	table, clauses, err := ParseAlterTable("ALTER TABLE t ADD COLUMN c VARCHAR(10), DROP COLUMN a, MODIFY COLUMN b INT NOT NULL")
	require.NoError(t, err)
	assert.Equal(t, "t", table)
	require.Len(t, clauses, 3)
	assert.Equal(t, AlterAddColumn, clauses[0].Kind)
	assert.Equal(t, "c", clauses[0].Column.Name)
	assert.Equal(t, AlterDropColumn, clauses[1].Kind)
	assert.Equal(t, "a", clauses[1].Name)
	assert.Equal(t, AlterModifyColumn, clauses[2].Kind)
	assert.Equal(t, mysqlbinlog.TypeLong, clauses[2].Column.Type)
	assert.False(t, clauses[2].Column.Nullable)
}

func TestTracker_CreateThenAlter(t *testing.T) {
	tr := NewTracker()
	gtid1 := mysqlbinlog.GTID{Domain: 0, ServerID: 1, Sequence: 1}
	tc, err := tr.CreateTable("db", "CREATE TABLE t (a INT, b VARCHAR(8))", gtid1)
	require.NoError(t, err)
	assert.EqualValues(t, 1, tc.Version)
	assert.Equal(t, []string{"a", "b"}, tc.ColumnNames())

	gtid2 := mysqlbinlog.GTID{Domain: 0, ServerID: 1, Sequence: 2}
	tc2, err := tr.AlterTable("db", "ALTER TABLE t ADD COLUMN c INT", gtid2)
	require.NoError(t, err)
	assert.Same(t, tc, tc2)
	assert.EqualValues(t, 2, tc.Version)
	assert.Equal(t, []string{"a", "b", "c"}, tc.ColumnNames())

	gtid3 := mysqlbinlog.GTID{Domain: 0, ServerID: 1, Sequence: 3}
	_, err = tr.AlterTable("db", "ALTER TABLE t DROP COLUMN b", gtid3)
	require.NoError(t, err)
	assert.EqualValues(t, 3, tc.Version)
	assert.Equal(t, []string{"a", "c"}, tc.ColumnNames())
}

func TestTracker_AlterUnknownColumn(t *testing.T) {
	tr := NewTracker()
	_, err := tr.CreateTable("db", "CREATE TABLE t (a INT)", mysqlbinlog.GTID{})
	require.NoError(t, err)
	_, err = tr.AlterTable("db", "ALTER TABLE t DROP COLUMN nope", mysqlbinlog.GTID{})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestTracker_AlterWithoutCreate(t *testing.T) {
	tr := NewTracker()
	_, err := tr.AlterTable("db", "ALTER TABLE t ADD COLUMN a INT", mysqlbinlog.GTID{})
	assert.Error(t, err)
}

func TestRecordSchema(t *testing.T) {
	tr := NewTracker()
	tc, err := tr.CreateTable("db", "CREATE TABLE t (a INT, b VARCHAR(8))", mysqlbinlog.GTID{})
	require.NoError(t, err)

	js, err := RecordSchema(tc)
	require.NoError(t, err)
	assert.Contains(t, js, `"name":"GTID","type":"string"`)
	assert.Contains(t, js, `"name":"timestamp","type":"int"`)
	assert.Contains(t, js, `"name":"a","type":["null","int"]`)
	assert.Contains(t, js, `"name":"b","type":["null","string"]`)
}
