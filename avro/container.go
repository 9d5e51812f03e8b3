package avro

// Avro object container constants, per the Avro 1.x object container
// file spec and original_source/avro/maxavro_file.c (AVRO_MAGIC_SIZE,
// SYNC_MARKER_SIZE).
const (
	syncMarkerSize = 16
)

var magicBytes = []byte{'O', 'b', 'j', 1}

func writeMetadata(w byteWriter, pairs [][2]string) (int, error) {
	n := 0
	nn, err := w.Write(encodeLong(int64(len(pairs))))
	n += nn
	if err != nil {
		return n, err
	}
	for _, kv := range pairs {
		nn, err = w.Write(encodeString(kv[0]))
		n += nn
		if err != nil {
			return n, err
		}
		nn, err = w.Write(encodeBytes([]byte(kv[1])))
		n += nn
		if err != nil {
			return n, err
		}
	}
	nn, err = w.Write(encodeLong(0))
	n += nn
	return n, err
}

type byteWriter interface {
	Write(p []byte) (int, error)
}
