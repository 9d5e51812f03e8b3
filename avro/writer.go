package avro

import (
	"bytes"
	"crypto/rand"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Writer appends records to an Avro object container file, one block at
// a time. Records are pre-serialized by the caller (see the schema
// package's record encoder); Writer only owns block framing: count,
// byte size, payload, trailing sync marker.
//
// Grounded on original_source/avro/maxavro_datablock.c: a failed block
// write truncates the file back to the position it held before the
// write began, so a reader never observes a half-written block.
type Writer struct {
	f       *os.File
	sync    [syncMarkerSize]byte
	buf     bytes.Buffer
	records int64
}

// Create creates a new Avro container file at path with the given
// (already JSON-encoded) schema, and writes the magic, header and a
// fresh random sync marker.
func Create(path string, schemaJSON string) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrap(err, "avro.Create")
	}
	w := &Writer{f: f}
	if _, err := rand.Read(w.sync[:]); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "avro.Create: generating sync marker")
	}
	if _, err := f.Write(magicBytes); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "avro.Create: writing magic")
	}
	pairs := [][2]string{
		{"avro.schema", schemaJSON},
		{"avro.codec", "null"},
	}
	if _, err := writeMetadata(f, pairs); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "avro.Create: writing header")
	}
	if _, err := f.Write(w.sync[:]); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "avro.Create: writing sync marker")
	}
	return w, nil
}

// OpenAppend reopens an existing Avro container file for appending new
// blocks, reusing its existing sync marker (required so every block in
// the file, old and new, validates against the same marker).
func OpenAppend(path string) (*Writer, error) {
	r, err := Open(path)
	if err != nil {
		return nil, err
	}
	sync := r.sync
	if err := r.Close(); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrap(err, "avro.OpenAppend")
	}
	if _, err := f.Seek(0, io.SeekEnd); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "avro.OpenAppend: seeking to end")
	}
	return &Writer{f: f, sync: sync}, nil
}

// WriteRecord appends the pre-encoded bytes of one Avro datum to the
// current in-memory block. It does not touch the file until Flush.
func (w *Writer) WriteRecord(data []byte) {
	w.buf.Write(data)
	w.records++
}

// Flush writes the buffered records as one data block and resets the
// buffer. A no-op when no records are buffered. On any write failure
// the file is truncated back to its pre-block length, so a concurrent
// or subsequent reader never observes a partial block.
func (w *Writer) Flush() error {
	if w.records == 0 {
		return nil
	}
	pos, err := w.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return errors.Wrap(err, "avro.Writer.Flush: seek")
	}
	if err := w.writeBlock(); err != nil {
		if terr := w.f.Truncate(pos); terr != nil {
			return errors.Wrap(terr, "avro.Writer.Flush: truncate after failed write")
		}
		if _, serr := w.f.Seek(0, io.SeekEnd); serr != nil {
			return errors.Wrap(serr, "avro.Writer.Flush: seek after truncate")
		}
		return errors.Wrap(err, "avro.Writer.Flush: block write failed, rolled back")
	}
	w.buf.Reset()
	w.records = 0
	return nil
}

func (w *Writer) writeBlock() error {
	if _, err := w.f.Write(encodeLong(w.records)); err != nil {
		return err
	}
	if _, err := w.f.Write(encodeLong(int64(w.buf.Len()))); err != nil {
		return err
	}
	if _, err := w.f.Write(w.buf.Bytes()); err != nil {
		return err
	}
	if _, err := w.f.Write(w.sync[:]); err != nil {
		return err
	}
	return w.f.Sync()
}

// Close flushes any buffered records and closes the underlying file.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	return w.f.Close()
}
