package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode packs an embedding into a BLOB suitable for storage. The encoding is
// a plain little-endian sequence of IEEE 754 float32 values; the dimension is
// recovered from the BLOB size on decode. A nil or empty embedding encodes to
// an empty BLOB.
func Encode(vec []float32) []byte {
	if len(vec) == 0 {
		return nil
	}
	b := make([]byte, len(vec)*4)
	for i, v := range vec {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(v))
	}
	return b
}

// Decode unpacks a BLOB produced by Encode. The round trip is exact: every
// float32 bit pattern, including negative zero and NaN payloads, survives.
func Decode(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("vector: invalid embedding blob length %d (not multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}
