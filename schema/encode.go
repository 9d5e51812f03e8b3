package schema

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/cdcstream/binlogavro/avro"
	"github.com/cdcstream/binlogavro/mysqlbinlog"
	"github.com/pkg/errors"
)

// EncodeRecord builds the Avro record bytes for one row event against
// tc's current schema: GTID, timestamp, event_type, then one nullable
// field per column in declaration order (spec.md §4.5). values must be
// in the same order as tc.Columns, with a nil entry for NULL columns;
// it is the row-image decoder's per-row output
// (mysqlbinlog.RowsEvent/nextRow).
func EncodeRecord(tc *TableCreate, gtid mysqlbinlog.GTID, timestamp int32, kind EventKind, values []interface{}) ([]byte, error) {
	if len(values) != len(tc.Columns) {
		return nil, errors.Errorf("schema.EncodeRecord: %s: got %d values, want %d columns", tc.Stem(), len(values), len(tc.Columns))
	}
	enc := avro.NewRecordEncoder().
		String(gtid.String()).
		Int(timestamp).
		EnumIndex(int(kind))

	for i, col := range tc.Columns {
		v := values[i]
		if v == nil {
			enc.Null()
			continue
		}
		if err := encodeColumnValue(enc, col.Type, v); err != nil {
			return nil, errors.Wrapf(err, "schema.EncodeRecord: %s.%s", tc.Stem(), col.Name)
		}
	}
	return enc.Bytes(), nil
}

func encodeColumnValue(enc *avro.RecordEncoder, ct mysqlbinlog.ColumnType, v interface{}) error {
	switch ct {
	case mysqlbinlog.TypeTiny, mysqlbinlog.TypeShort, mysqlbinlog.TypeInt24, mysqlbinlog.TypeLong:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		enc.UnionLong(n)
	case mysqlbinlog.TypeLongLong:
		n, err := toInt64(v)
		if err != nil {
			return err
		}
		enc.UnionLong(n)
	case mysqlbinlog.TypeFloat:
		f, ok := v.(float32)
		if !ok {
			return errors.Errorf("expected float32, got %T", v)
		}
		enc.UnionFloat(f)
	case mysqlbinlog.TypeDouble:
		f, ok := v.(float64)
		if !ok {
			return errors.Errorf("expected float64, got %T", v)
		}
		enc.UnionDouble(f)
	case mysqlbinlog.TypeTinyBlob, mysqlbinlog.TypeMediumBlob, mysqlbinlog.TypeLongBlob, mysqlbinlog.TypeBlob:
		b, err := toBytes(v)
		if err != nil {
			return err
		}
		enc.UnionBytes(b)
	default:
		s, err := formatString(ct, v)
		if err != nil {
			return err
		}
		enc.UnionString(s)
	}
	return nil
}

func toInt64(v interface{}) (int64, error) {
	switch n := v.(type) {
	case int8:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint64:
		return int64(n), nil
	case int:
		return int64(n), nil
	default:
		return 0, errors.Errorf("expected an integer type, got %T", v)
	}
}

func toBytes(v interface{}) ([]byte, error) {
	switch b := v.(type) {
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	default:
		return nil, errors.Errorf("expected []byte or string, got %T", v)
	}
}

// formatString renders the remaining column types (YEAR, DATE, TIME,
// TIMESTAMP[2], DATETIME2, ENUM/SET, STRING/VARCHAR/VAR_STRING,
// DECIMAL/NEWDECIMAL, BIT, GEOMETRY, JSON) to the string literal
// spec.md §4.4's table calls for.
func formatString(ct mysqlbinlog.ColumnType, v interface{}) (string, error) {
	switch ct {
	case mysqlbinlog.TypeYear:
		n, err := toInt64(v)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%04d", n), nil
	case mysqlbinlog.TypeDate:
		t, ok := v.(time.Time)
		if !ok {
			return "", errors.Errorf("expected time.Time, got %T", v)
		}
		return t.Format("2006-01-02"), nil
	case mysqlbinlog.TypeTime, mysqlbinlog.TypeTime2:
		switch t := v.(type) {
		case time.Duration:
			total := int(t.Seconds())
			return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total/60)%60, total%60), nil
		case time.Time:
			return t.Format("15:04:05"), nil
		default:
			return "", errors.Errorf("expected time.Duration or time.Time, got %T", v)
		}
	case mysqlbinlog.TypeTimestamp, mysqlbinlog.TypeTimestamp2, mysqlbinlog.TypeDateTime, mysqlbinlog.TypeDateTime2:
		t, ok := v.(time.Time)
		if !ok {
			return "", errors.Errorf("expected time.Time, got %T", v)
		}
		return t.Format("2006-01-02 15:04:05"), nil
	case mysqlbinlog.TypeEnum:
		e, ok := v.(mysqlbinlog.Enum)
		if !ok {
			return "", errors.Errorf("expected mysqlbinlog.Enum, got %T", v)
		}
		return e.String(), nil
	case mysqlbinlog.TypeSet:
		s, ok := v.(mysqlbinlog.Set)
		if !ok {
			return "", errors.Errorf("expected mysqlbinlog.Set, got %T", v)
		}
		return s.String(), nil
	case mysqlbinlog.TypeNewDecimal, mysqlbinlog.TypeDecimal:
		d, ok := v.(mysqlbinlog.Decimal)
		if !ok {
			return "", errors.Errorf("expected mysqlbinlog.Decimal, got %T", v)
		}
		return d.String(), nil
	case mysqlbinlog.TypeBit:
		n, err := toInt64(v)
		if err != nil {
			return "", errors.Errorf("expected an integer BIT value, got %T", v)
		}
		return fmt.Sprintf("%d", n), nil
	case mysqlbinlog.TypeJSON:
		j, ok := v.(mysqlbinlog.JSON)
		if !ok {
			return "", errors.Errorf("expected mysqlbinlog.JSON, got %T", v)
		}
		b, err := json.Marshal(j.Val)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case mysqlbinlog.TypeString, mysqlbinlog.TypeVarchar, mysqlbinlog.TypeVarString, mysqlbinlog.TypeGeometry:
		switch s := v.(type) {
		case string:
			return s, nil
		case []byte:
			return string(s), nil
		default:
			return "", errors.Errorf("expected string or []byte, got %T", v)
		}
	default:
		return "", errors.Errorf("no string formatting for column type %s", ct)
	}
}
