package convert

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cdcstream/binlogavro/avro"
	"github.com/cdcstream/binlogavro/schema"
	"github.com/pkg/errors"
)

// AvroTable is the open writer for one (database, table, version),
// spec.md §3's AvroTable entity: it owns its file handle and block
// buffer exclusively. Created lazily on the first row written for a
// table-version; flushed at checkpoints; closed on a schema version
// change or conversion stop.
type AvroTable struct {
	Database string
	Table    string
	Version  uint32
	Path     string

	w *avro.Writer
}

// dataFileName is "<db>.<table>.<version, zero-padded to 6 digits>.avro"
// per spec.md §6.4.
func dataFileName(database, table string, version uint32) string {
	return fmt.Sprintf("%s.%s.%06d.avro", database, table, version)
}

// sidecarName is "<db>.<table>.avsc", holding the current version's
// Avro JSON schema.
func sidecarName(database, table string) string {
	return fmt.Sprintf("%s.%s.avsc", database, table)
}

// OpenAvroTable opens (creating if necessary) the data file for tc's
// current version under dir, and (re)writes its schema sidecar.
func OpenAvroTable(dir string, tc *schema.TableCreate) (*AvroTable, error) {
	recordSchema, err := schema.RecordSchema(tc)
	if err != nil {
		return nil, errors.Wrap(err, "convert.OpenAvroTable")
	}

	path := filepath.Join(dir, dataFileName(tc.Database, tc.Table, tc.Version))
	var w *avro.Writer
	if _, statErr := os.Stat(path); statErr == nil {
		w, err = avro.OpenAppend(path)
	} else {
		w, err = avro.Create(path, recordSchema)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "convert.OpenAvroTable: %s", path)
	}

	sidecarPath := filepath.Join(dir, sidecarName(tc.Database, tc.Table))
	if err := os.WriteFile(sidecarPath, []byte(recordSchema), 0o644); err != nil {
		w.Close()
		return nil, errors.Wrap(err, "convert.OpenAvroTable: writing schema sidecar")
	}

	return &AvroTable{
		Database: tc.Database,
		Table:    tc.Table,
		Version:  tc.Version,
		Path:     path,
		w:        w,
	}, nil
}

// WriteRecord appends a pre-encoded Avro record to the table's current
// block; it is not durable until Flush.
func (t *AvroTable) WriteRecord(data []byte) {
	t.w.WriteRecord(data)
}

// Flush finalizes the current in-memory block to disk.
func (t *AvroTable) Flush() error {
	return t.w.Flush()
}

// Close flushes and closes the underlying file.
func (t *AvroTable) Close() error {
	return t.w.Close()
}
