package domain

import (
	"errors"
	"math"
)

// NormTolerance is the accepted deviation of an embedding's norm from 1.
const NormTolerance = 1e-5

// ErrZeroVector signals a vector that cannot be normalized.
var ErrZeroVector = errors.New("zero-length embedding vector")

// Norm returns the Euclidean norm of the vector.
func Norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// IsUnitNorm reports whether the vector's norm is 1 within NormTolerance.
func IsUnitNorm(v []float32) bool {
	return math.Abs(Norm(v)-1) <= NormTolerance
}

// Normalize scales the vector to unit length. Vectors already within
// tolerance are returned unchanged; the zero vector is rejected.
func Normalize(v []float32) ([]float32, error) {
	if len(v) == 0 {
		return nil, ErrZeroVector
	}
	n := Norm(v)
	if n == 0 {
		return nil, ErrZeroVector
	}
	if math.Abs(n-1) <= NormTolerance {
		return v, nil
	}
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(float64(x) / n)
	}
	return out, nil
}

// Similarity maps a cosine distance in [0,2] to a similarity in [0,1]:
// 1 for identical vectors, 0.5 for orthogonal, 0 for opposite. Downstream
// thresholds are calibrated against this exact mapping.
func Similarity(distance float64) float64 {
	return 1 - distance/2
}
