package avro

import "github.com/pkg/errors"

// ErrKind classifies the last error observed by a Reader, mirroring the
// maxavro_error enum of the original MaxScale avrorouter.
type ErrKind int

const (
	ErrNone ErrKind = iota
	ErrIO
	ErrMemory
	ErrVal // value overflow decoding a varint
)

func (k ErrKind) String() string {
	switch k {
	case ErrNone:
		return "MAXAVRO_ERR_NONE"
	case ErrIO:
		return "MAXAVRO_ERR_IO"
	case ErrMemory:
		return "MAXAVRO_ERR_MEMORY"
	case ErrVal:
		return "MAXAVRO_ERR_VALUE_OVERFLOW"
	default:
		return "UNKNOWN ERROR"
	}
}

var (
	// ErrValueOverflow is returned decoding a varint longer than 64 bits.
	ErrValueOverflow = errors.New("avro: varint value overflow")
	// ErrSyncMismatch is returned when a data block's trailing sync
	// marker does not match the file's header sync marker.
	ErrSyncMismatch = errors.New("avro: sync marker mismatch")
	// ErrBadMagic is returned opening a file that doesn't start with the
	// Avro object container magic bytes.
	ErrBadMagic = errors.New("avro: invalid magic bytes")
	// ErrNoSchema is returned opening a file whose header map has no
	// avro.schema key.
	ErrNoSchema = errors.New("avro: no schema found in header")
)
