// Package avro implements a minimal Avro 1.x object-container file reader
// and writer: the zig-zag varint primitive codec, block framing with a
// sync marker, and atomic truncate-on-partial-write semantics. It does not
// implement Avro schema resolution/evolution; the schema is carried
// opaquely as the `avro.schema` header value and reproduced verbatim.
package avro

import (
	"encoding/binary"
	"io"
	"math"
)

// encodeLong zig-zag/varint encodes v, matching Avro's `long` wire format.
func encodeLong(v int64) []byte {
	u := uint64((v << 1) ^ (v >> 63))
	var buf [10]byte
	n := 0
	for u >= 0x80 {
		buf[n] = byte(u) | 0x80
		u >>= 7
		n++
	}
	buf[n] = byte(u)
	n++
	return buf[:n]
}

// decodeLong reads a zig-zag/varint-encoded `long` from r.
func decodeLong(r io.ByteReader) (int64, error) {
	var u uint64
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		u |= uint64(b&0x7f) << shift
		if b&0x80 == 0 {
			break
		}
		shift += 7
		if shift >= 64 {
			return 0, ErrValueOverflow
		}
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// encodeString encodes s as an Avro `string`: a `long` byte-length prefix
// followed by the UTF-8 bytes.
func encodeString(s string) []byte {
	lenBuf := encodeLong(int64(len(s)))
	buf := make([]byte, 0, len(lenBuf)+len(s))
	buf = append(buf, lenBuf...)
	buf = append(buf, s...)
	return buf
}

// encodeBytes encodes b as an Avro `bytes` value; identical wire shape to
// encodeString.
func encodeBytes(b []byte) []byte {
	lenBuf := encodeLong(int64(len(b)))
	buf := make([]byte, 0, len(lenBuf)+len(b))
	buf = append(buf, lenBuf...)
	buf = append(buf, b...)
	return buf
}

func encodeFloat(v float32) []byte {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], math.Float32bits(v))
	return buf[:]
}

func encodeDouble(v float64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
	return buf[:]
}

func decodeFloatBits(buf [4]byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[:]))
}

func decodeDoubleBits(buf [8]byte) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(buf[:]))
}
