package avro

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSchema = `{"type":"record","name":"Row","fields":[{"name":"id","type":"long"}]}`

func recordBytes(id int64) []byte {
	return encodeLong(id)
}

func TestWriter_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.avro")

	w, err := Create(path, testSchema)
	require.NoError(t, err)
	w.WriteRecord(recordBytes(1))
	w.WriteRecord(recordBytes(2))
	require.NoError(t, w.Flush())
	w.WriteRecord(recordBytes(3))
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, testSchema, r.Schema)
	assert.Equal(t, "null", r.Codec)

	assert.EqualValues(t, 2, r.RecordsInBlock())
	block1, err := r.RawBlock()
	require.NoError(t, err)
	assert.Equal(t, append(recordBytes(1), recordBytes(2)...), block1)

	assert.EqualValues(t, 1, r.RecordsInBlock())
	block2, err := r.RawBlock()
	require.NoError(t, err)
	assert.Equal(t, recordBytes(3), block2)

	_, err = r.RawBlock()
	assert.Equal(t, io.EOF, err)
}

func TestWriter_OpenAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.avro")

	w, err := Create(path, testSchema)
	require.NoError(t, err)
	w.WriteRecord(recordBytes(1))
	require.NoError(t, w.Close())

	w2, err := OpenAppend(path)
	require.NoError(t, err)
	w2.WriteRecord(recordBytes(2))
	require.NoError(t, w2.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	block1, err := r.RawBlock()
	require.NoError(t, err)
	assert.Equal(t, recordBytes(1), block1)

	block2, err := r.RawBlock()
	require.NoError(t, err)
	assert.Equal(t, recordBytes(2), block2)
}

func TestWriter_Flush_NoRecordsIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.avro")
	w, err := Create(path, testSchema)
	require.NoError(t, err)
	require.NoError(t, w.Flush())
	require.NoError(t, w.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.RawBlock()
	assert.Equal(t, io.EOF, err)
}

// TestReader_TruncatedBlockRecovery simulates a crash mid-block: the file
// is cut off after the record-count/byte-size prefix but before the full
// payload and sync marker are written. The reader must surface an error
// on the partial block rather than returning corrupt data, and the first
// good block read before it must still come back intact.
func TestReader_TruncatedBlockRecovery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.avro")

	w, err := Create(path, testSchema)
	require.NoError(t, err)
	w.WriteRecord(recordBytes(1))
	require.NoError(t, w.Flush())
	require.NoError(t, w.f.Close())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, fi.Size()+5))

	f, err := os.OpenFile(path, os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteAt(encodeLong(3), fi.Size())
	require.NoError(t, err)
	require.NoError(t, f.Close())

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()

	block1, err := r.RawBlock()
	require.NoError(t, err)
	assert.Equal(t, recordBytes(1), block1)

	_, err = r.RawBlock()
	assert.Error(t, err)
}

func TestOpen_BadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.avro")
	require.NoError(t, os.WriteFile(path, []byte("not avro"), 0o644))
	_, err := Open(path)
	assert.Equal(t, ErrBadMagic, err)
}
