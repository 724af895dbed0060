package vector

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Encode packs a float32 vector into the catalog's BLOB representation:
// a little-endian sequence of IEEE 754 float32 values with no length
// prefix. The dimension is recovered on decode from the byte count.
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

// Decode unpacks a BLOB produced by Encode.
func Decode(b []byte) ([]float32, error) {
	if len(b) == 0 {
		return nil, nil
	}
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("invalid embedding blob length %d (not a multiple of 4)", len(b))
	}
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return vec, nil
}

// Dim returns the dimension encoded in a BLOB, without decoding it.
func Dim(b []byte) int { return len(b) / 4 }

// Cosine computes the cosine similarity of two equal-length vectors,
// accumulating in float64. When either vector has zero magnitude the
// result is defined as 0.0 rather than dividing by zero.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine dimension mismatch: %d vs %d", len(a), len(b))
	}
	var dot, na, nb float64
	for i := range a {
		va, vb := float64(a[i]), float64(b[i])
		dot += va * vb
		na += va * va
		nb += vb * vb
	}
	if na == 0 || nb == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb)), nil
}
