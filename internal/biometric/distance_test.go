package biometric

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func randomVector(r *rand.Rand, n int) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = r.Float64()*2 - 1
	}
	return v
}

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float64
		expected float64
	}{
		{"Simple", []float64{0, 0}, []float64{3, 4}, 5},
		{"Identical", []float64{1, 2, 3}, []float64{1, 2, 3}, 0},
		{"Negative", []float64{-1, -1}, []float64{2, 3}, 5},
		{"LengthMismatch", []float64{1, 2, 3}, []float64{1, 2}, MaxDistance},
		{"Empty", []float64{}, []float64{}, MaxDistance},
		{"Nil", nil, []float64{1}, MaxDistance},
		{"NaN", []float64{math.NaN(), 0}, []float64{0, 0}, MaxDistance},
		{"Inf", []float64{0, 0}, []float64{math.Inf(-1), 0}, MaxDistance},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Euclidean(tt.a, tt.b))
		})
	}
}

func TestEuclidean_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(7))

	for i := 0; i < 200; i++ {
		a := randomVector(r, DescriptorSize)
		b := randomVector(r, DescriptorSize)
		c := randomVector(r, DescriptorSize)

		assert.Zero(t, Euclidean(a, a), "identity")
		assert.Equal(t, Euclidean(a, b), Euclidean(b, a), "symmetry")
		assert.LessOrEqual(t, Euclidean(a, b), Euclidean(a, c)+Euclidean(c, b)+1e-12, "triangle inequality")
	}
}

func TestEuclidean_Deterministic(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	a := randomVector(r, DescriptorSize)
	b := randomVector(r, DescriptorSize)

	first := Euclidean(a, b)
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Euclidean(a, b))
	}
}

func TestMaxDistanceNeverPassesThreshold(t *testing.T) {
	assert.False(t, MaxDistance < Threshold)
}
