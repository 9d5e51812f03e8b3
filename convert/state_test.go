package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConverterState_SaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	st := ConverterState{
		BinlogFile: "binlog.000002",
		Position:   4512,
		GTID:       mysqlbinlog.GTID{Domain: 0, ServerID: 1, Sequence: 99, EventNum: 3},
	}
	require.NoError(t, st.Save(path))

	got, err := LoadConverterState(path)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	// the rename must have left no .tmp file behind
	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestLoadConverterState_MissingFileIsFreshStart(t *testing.T) {
	st, err := LoadConverterState(filepath.Join(t.TempDir(), "does-not-exist"))
	require.NoError(t, err)
	assert.Equal(t, ConverterState{}, st)
}

func TestLoadConverterState_UnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state")
	require.NoError(t, os.WriteFile(path, []byte("[avro-conversion]\nposition = 1\nbogus = x\n"), 0o644))
	_, err := LoadConverterState(path)
	assert.ErrorIs(t, err, ErrUnknownStateKey)
}

func TestParseGTID(t *testing.T) {
	g, err := parseGTID("2-10-500:7")
	require.NoError(t, err)
	assert.Equal(t, mysqlbinlog.GTID{Domain: 2, ServerID: 10, Sequence: 500, EventNum: 7}, g)

	g2, err := parseGTID("0-0-0:0")
	require.NoError(t, err)
	assert.Equal(t, mysqlbinlog.GTID{}, g2)
}
