package schema

import (
	"fmt"
	"strings"

	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/pkg/errors"
)

// avroType returns the Avro primitive type name a MySQL column type
// maps to, per spec.md §4.4's row-image decoding table.
func avroType(t mysqlbinlog.ColumnType) (string, error) {
	switch t {
	case mysqlbinlog.TypeTiny, mysqlbinlog.TypeShort, mysqlbinlog.TypeInt24, mysqlbinlog.TypeLong:
		return "int", nil
	case mysqlbinlog.TypeLongLong:
		return "long", nil
	case mysqlbinlog.TypeFloat:
		return "float", nil
	case mysqlbinlog.TypeDouble:
		return "double", nil
	case mysqlbinlog.TypeYear, mysqlbinlog.TypeDate, mysqlbinlog.TypeTime, mysqlbinlog.TypeTime2,
		mysqlbinlog.TypeTimestamp, mysqlbinlog.TypeTimestamp2, mysqlbinlog.TypeDateTime2,
		mysqlbinlog.TypeEnum, mysqlbinlog.TypeSet, mysqlbinlog.TypeString,
		mysqlbinlog.TypeVarchar, mysqlbinlog.TypeVarString, mysqlbinlog.TypeDecimal,
		mysqlbinlog.TypeNewDecimal, mysqlbinlog.TypeBit, mysqlbinlog.TypeGeometry:
		return "string", nil
	case mysqlbinlog.TypeTinyBlob, mysqlbinlog.TypeMediumBlob, mysqlbinlog.TypeLongBlob, mysqlbinlog.TypeBlob:
		return "bytes", nil
	case mysqlbinlog.TypeJSON:
		return "string", nil
	default:
		return "", errors.Errorf("schema: no Avro mapping for column type %s", t)
	}
}

// RecordSchema emits the Avro record schema (JSON text) for tc, per
// spec.md §4.5: GTID, timestamp, event_type, then one nullable field
// per table column named exactly as in the DDL.
func RecordSchema(tc *TableCreate) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, `{"type":"record","name":%q,"namespace":%q,"fields":[`,
		recordName(tc.Table), tc.Database)
	fmt.Fprintf(&b, `{"name":"GTID","type":"string"},`)
	fmt.Fprintf(&b, `{"name":"timestamp","type":"int"},`)
	b.WriteString(`{"name":"event_type","type":{"type":"enum","name":"EventType","symbols":["insert","update_before","update_after","delete"]}}`)

	for _, c := range tc.Columns {
		at, err := avroType(c.Type)
		if err != nil {
			return "", errors.Wrapf(err, "table %s", tc.Stem())
		}
		b.WriteString(",")
		fmt.Fprintf(&b, `{"name":%q,"type":["null",%q]}`, c.Name, at)
	}
	b.WriteString(`]}`)
	return b.String(), nil
}

// recordName derives a valid Avro record name from a SQL table name
// (Avro names must match [A-Za-z_][A-Za-z0-9_]*).
func recordName(table string) string {
	var b strings.Builder
	for i, r := range table {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
			b.WriteRune(r)
		case r >= '0' && r <= '9':
			if i == 0 {
				b.WriteRune('_')
			}
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
