package embedding

import (
	"encoding/binary"
	"math"
	"strings"
)

// buildHashFields flattens a vector and its metadata into hash fields.
func buildHashFields(vector []float32, meta map[string]string) map[string]string {
	fields := make(map[string]string, 1+len(meta))
	fields["__vector"] = vectorToBytes(vector)
	for k, v := range meta {
		fields[k] = sanitizeValue(v)
	}
	return fields
}

// sanitizeValue strips control characters that break flat hash fields:
// NUL and CR are removed, LF collapses to a single space, and the
// result is trimmed.
func sanitizeValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch r {
		case 0, '\r':
			// dropped
		case '\n':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// vectorToBytes serializes []float32 to a binary string (4 bytes per float, little-endian).
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

// bytesToVector deserializes a binary string back to []float32.
func bytesToVector(s string) []float32 {
	b := []byte(s)
	if len(b)%4 != 0 {
		return nil
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
