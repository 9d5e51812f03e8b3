package mysqlbinlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGTID_String(t *testing.T) {
	g := GTID{Domain: 0, ServerID: 1, Sequence: 42}
	assert.Equal(t, "0-1-42", g.String())
	g.EventNum = 3
	assert.Equal(t, "0-1-42:3", g.String())
}

func TestGTID_Less(t *testing.T) {
	a := GTID{Domain: 1, ServerID: 1, Sequence: 5}
	b := GTID{Domain: 1, ServerID: 1, Sequence: 6}
	assert.True(t, a.Less(b))
	assert.False(t, b.Less(a))

	c := GTID{Domain: 2, ServerID: 1, Sequence: 1}
	assert.False(t, a.Less(c))
}

func TestMariaDBGTIDEvent_Decode(t *testing.T) {
	// seq=7 domain=1 flags=standalone(0x01), no commit id.
	data := []byte{
		7, 0, 0, 0, 0, 0, 0, 0, // sequence uint64 LE
		1, 0, 0, 0, // domain uint32 LE
		0x01, // flags
	}
	r := newValueReader(data)
	var e MariaDBGTIDEvent
	require.NoError(t, e.decode(r))
	assert.Equal(t, uint64(7), e.GTID.Sequence)
	assert.Equal(t, uint32(1), e.GTID.Domain)
	assert.True(t, e.IsStandalone())
	assert.False(t, e.IsDDL())
	assert.Equal(t, uint64(0), e.CommitID)
}

func TestMariaDBGTIDEvent_DecodeWithCommitID(t *testing.T) {
	data := []byte{
		9, 0, 0, 0, 0, 0, 0, 0,
		2, 0, 0, 0,
		0x02,                   // group-commit flag
		99, 0, 0, 0, 0, 0, 0, 0, // commit id uint64 LE
	}
	r := newValueReader(data)
	var e MariaDBGTIDEvent
	require.NoError(t, e.decode(r))
	assert.Equal(t, uint64(99), e.CommitID)
}

func TestMariaDBGTIDListEvent_Decode(t *testing.T) {
	data := []byte{
		2, 0, 0, 0, // count=2, flags=0 in high 4 bits
		1, 0, 0, 0, 10, 0, 0, 0, 5, 0, 0, 0, 0, 0, 0, 0, // domain=1 server=10 seq=5
		2, 0, 0, 0, 20, 0, 0, 0, 9, 0, 0, 0, 0, 0, 0, 0, // domain=2 server=20 seq=9
	}
	r := newValueReader(data)
	var e MariaDBGTIDListEvent
	require.NoError(t, e.decode(r))
	require.Len(t, e.GTIDs, 2)
	assert.Equal(t, GTID{Domain: 1, ServerID: 10, Sequence: 5}, e.GTIDs[0])
	assert.Equal(t, GTID{Domain: 2, ServerID: 20, Sequence: 9}, e.GTIDs[1])
}
