package biometric

import "math"

// MaxDistance — сигнальное «максимальное» расстояние. Гарантированно не проходит порог.
var MaxDistance = math.Inf(1)

// Euclidean возвращает евклидово расстояние между a и b.
// Для векторов разной длины, пустых векторов и векторов с NaN/Inf возвращает MaxDistance.
func Euclidean(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return MaxDistance
	}

	var sum float64
	for i := range a {
		if !isFinite(a[i]) || !isFinite(b[i]) {
			return MaxDistance
		}
		d := a[i] - b[i]
		sum += d * d
	}

	return math.Sqrt(sum)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
