package mysqlbinlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryEvent_Classify(t *testing.T) {
	testCases := []struct {
		query string
		want  DDLKind
	}{
		{"CREATE TABLE t (a INT)", DDLCreateTable},
		{"  create   table  IF NOT EXISTS t (a int) ", DDLCreateTable},
		{"/* comment */ CREATE TABLE t(a INT)", DDLCreateTable},
		{"ALTER TABLE t ADD COLUMN b VARCHAR(8)", DDLAlterTable},
		{"BEGIN", DDLBegin},
		{"START TRANSACTION", DDLBegin},
		{"COMMIT", DDLCommit},
		{"DROP TABLE t", DDLOther},
		{"INSERT INTO t VALUES (1)", DDLOther},
	}
	for _, tc := range testCases {
		t.Run(tc.query, func(t *testing.T) {
			e := QueryEvent{Query: tc.query}
			assert.Equal(t, tc.want, e.Classify())
		})
	}
}

func TestNormalize(t *testing.T) {
	in := "CREATE   TABLE t ( -- trailing comment\n  a INT /* inline */, b VARCHAR(8) # hash comment\n)"
	want := "CREATE TABLE t ( a INT , b VARCHAR(8) )"
	assert.Equal(t, want, Normalize(in))
}
