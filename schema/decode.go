package schema

import (
	"github.com/cdcstream/binlogavro/avro"
	"github.com/pkg/errors"
)

// DecodeRecord parses one record off dec (positioned at a record
// boundary) against tc's column list, matching EncodeRecord's field
// layout. It backs the JSON-streaming record access mode of spec.md
// §4.3 option (b): every column comes back as its formatted string (or
// numeric/[]byte for the types the schema keeps unformatted), ready for
// json.Marshal by the caller.
func DecodeRecord(dec *avro.RecordDecoder, tc *TableCreate) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(tc.Columns)+3)

	gtid, err := dec.String()
	if err != nil {
		return nil, errors.Wrap(err, "schema.DecodeRecord: GTID")
	}
	out["GTID"] = gtid

	ts, err := dec.Long()
	if err != nil {
		return nil, errors.Wrap(err, "schema.DecodeRecord: timestamp")
	}
	out["timestamp"] = ts

	evt, err := dec.Long()
	if err != nil {
		return nil, errors.Wrap(err, "schema.DecodeRecord: event_type")
	}
	out["event_type"] = EventKind(evt).String()

	for _, col := range tc.Columns {
		isNull, err := dec.UnionIsNull()
		if err != nil {
			return nil, errors.Wrapf(err, "schema.DecodeRecord: %s", col.Name)
		}
		if isNull {
			out[col.Name] = nil
			continue
		}
		at, err := avroType(col.Type)
		if err != nil {
			return nil, err
		}
		var val interface{}
		switch at {
		case "int":
			v, err := dec.Long()
			if err != nil {
				return nil, errors.Wrapf(err, "schema.DecodeRecord: %s", col.Name)
			}
			val = int32(v)
		case "long":
			val, err = dec.Long()
		case "float":
			val, err = dec.Float()
		case "double":
			val, err = dec.Double()
		case "bytes":
			val, err = dec.ByteString()
		case "string":
			val, err = dec.String()
		}
		if err != nil {
			return nil, errors.Wrapf(err, "schema.DecodeRecord: %s", col.Name)
		}
		out[col.Name] = val
	}
	return out, nil
}
