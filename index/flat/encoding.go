package flat

import (
	"encoding/binary"
	"errors"
	"math"
)

// The serialized layout is shared by every index implementation in this
// module so persisted blobs stay interchangeable:
//
//	dim(uint32) n(uint32) { idLen(uint32) id vec(float32[dim]) }*n
//
// All integers and floats are little-endian.

// Marshal serializes parallel id/vector slices into the shared index format.
func Marshal(ids []string, vecs [][]float32, dim int) ([]byte, error) {
	if len(ids) == 0 {
		buf := make([]byte, 8)
		return buf, nil
	}
	size := 8
	for _, id := range ids {
		size += 4 + len(id) + 4*dim
	}
	out := make([]byte, 0, size)
	out = binary.LittleEndian.AppendUint32(out, uint32(dim))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(ids)))
	for n, id := range ids {
		out = binary.LittleEndian.AppendUint32(out, uint32(len(id)))
		out = append(out, id...)
		for _, v := range vecs[n] {
			out = binary.LittleEndian.AppendUint32(out, math.Float32bits(v))
		}
	}
	return out, nil
}

// Unmarshal decodes the shared index format back into parallel slices.
func Unmarshal(data []byte) ([]string, [][]float32, error) {
	if len(data) < 8 {
		return nil, nil, errors.New("flat: invalid index data")
	}
	off := 0
	getU32 := func() uint32 {
		v := binary.LittleEndian.Uint32(data[off : off+4])
		off += 4
		return v
	}
	dim := int(getU32())
	n := int(getU32())
	ids := make([]string, 0, n)
	vecs := make([][]float32, 0, n)
	for idx := 0; idx < n; idx++ {
		if off+4 > len(data) {
			return nil, nil, errors.New("flat: truncated index data")
		}
		idLen := int(getU32())
		if off+idLen+4*dim > len(data) {
			return nil, nil, errors.New("flat: truncated index entry")
		}
		id := string(data[off : off+idLen])
		off += idLen
		vec := make([]float32, dim)
		for j := 0; j < dim; j++ {
			vec[j] = math.Float32frombits(getU32())
		}
		ids = append(ids, id)
		vecs = append(vecs, vec)
	}
	return ids, vecs, nil
}
