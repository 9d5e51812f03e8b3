package avro

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Reader reads an Avro object container file block by block. It does
// not resolve the schema against records; Schema is the raw JSON text
// from the avro.schema header value, and RawBlock returns each block's
// undecoded payload bytes for the caller (the schema package) to split
// into individual records.
//
// Grounded on original_source/avro/maxavro_file.c: maxavro_file_open
// reads the magic, the header metadata map and the sync marker, then
// positions at the first block; maxavro_read_datablock_start reads a
// block's record count and byte size and validates the trailing sync
// marker against the one read from the header.
type Reader struct {
	f      *os.File
	br     *bufio.Reader
	sync   [syncMarkerSize]byte
	Schema string
	Codec  string

	blockStart  int64 // file offset of the current block's count prefix
	blockBytes  int64 // byte size of the current block's payload
	blockCount  int64 // records declared by the current block's header
	blockRead   bool  // RawBlock returned the last block and no further block header was read
	lastErr     error
	lastErrKind ErrKind
}

// Open opens path, validates its magic and header, and positions the
// reader at the first data block.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "avro.Open")
	}
	r := &Reader{f: f, br: bufio.NewReader(f)}

	magic := make([]byte, len(magicBytes))
	if _, err := io.ReadFull(r.br, magic); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "avro.Open: reading magic")
	}
	if !bytes.Equal(magic, magicBytes) {
		f.Close()
		return nil, ErrBadMagic
	}

	meta, err := readMetadata(r.br)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "avro.Open: reading header")
	}
	schema, ok := meta["avro.schema"]
	if !ok {
		f.Close()
		return nil, ErrNoSchema
	}
	r.Schema = string(schema)
	r.Codec = string(meta["avro.codec"])

	if _, err := io.ReadFull(r.br, r.sync[:]); err != nil {
		f.Close()
		return nil, errors.Wrap(err, "avro.Open: reading sync marker")
	}

	if err := r.startBlock(); err != nil && err != io.EOF {
		f.Close()
		return nil, err
	}
	return r, nil
}

func readMetadata(r io.Reader) (map[string][]byte, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = bufio.NewReader(r)
	}
	count, err := decodeLong(br)
	if err != nil {
		return nil, err
	}
	meta := make(map[string][]byte)
	for count != 0 {
		n := count
		if n < 0 {
			n = -n
			if _, err := decodeLong(br); err != nil { // block byte-count, unused
				return nil, err
			}
		}
		for i := int64(0); i < n; i++ {
			key, err := readAvroString(r, br)
			if err != nil {
				return nil, err
			}
			val, err := readAvroBytes(r, br)
			if err != nil {
				return nil, err
			}
			meta[key] = val
		}
		count, err = decodeLong(br)
		if err != nil {
			return nil, err
		}
	}
	return meta, nil
}

func readAvroString(r io.Reader, br io.ByteReader) (string, error) {
	b, err := readAvroBytes(r, br)
	return string(b), err
}

func readAvroBytes(r io.Reader, br io.ByteReader) ([]byte, error) {
	n, err := decodeLong(br)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// startBlock reads the (count, byte-size) prefix of the block the
// reader is currently positioned at. Returns io.EOF when no further
// block follows.
func (r *Reader) startBlock() error {
	r.blockStart = r.pos()
	count, err := decodeLong(r.br)
	if err == io.EOF {
		return io.EOF
	}
	if err != nil {
		r.setErr(err)
		return err
	}
	size, err := decodeLong(r.br)
	if err != nil {
		r.setErr(err)
		return err
	}
	r.blockCount = count
	r.blockBytes = size
	r.blockRead = false
	return nil
}

func (r *Reader) pos() int64 {
	p, _ := r.f.Seek(0, io.SeekCurrent)
	return p - int64(r.br.Buffered())
}

func (r *Reader) setErr(err error) {
	r.lastErr = err
	if err == ErrValueOverflow {
		r.lastErrKind = ErrVal
	} else {
		r.lastErrKind = ErrIO
	}
}

// LastError returns the last error observed reading the file, or nil.
func (r *Reader) LastError() error { return r.lastErr }

// LastErrorKind classifies LastError, mirroring the avrorouter's
// maxavro_get_error enum.
func (r *Reader) LastErrorKind() ErrKind { return r.lastErrKind }

// RecordsInBlock reports the number of records declared by the current
// block's header.
func (r *Reader) RecordsInBlock() int64 { return r.blockCount }

// RawBlock returns the current block's undecoded payload bytes and
// advances to the next block, verifying the trailing sync marker.
// Returns io.EOF once no block remains.
func (r *Reader) RawBlock() ([]byte, error) {
	if r.blockRead {
		if r.lastErr != nil {
			return nil, r.lastErr
		}
		return nil, io.EOF
	}
	buf := make([]byte, r.blockBytes)
	if _, err := io.ReadFull(r.br, buf); err != nil {
		r.setErr(err)
		return nil, err
	}
	var sync [syncMarkerSize]byte
	if _, err := io.ReadFull(r.br, sync[:]); err != nil {
		r.setErr(err)
		return nil, err
	}
	if !bytes.Equal(sync[:], r.sync[:]) {
		r.setErr(ErrSyncMismatch)
		return nil, ErrSyncMismatch
	}
	r.blockRead = true
	// startBlock clears blockRead when a next block header is read.
	r.startBlock()
	return buf, nil
}

// Close closes the underlying file.
func (r *Reader) Close() error {
	return r.f.Close()
}
