package systems

import (
	"math"
	"math/rand"
)

// clamp clamps v between minVal and maxVal.
func clamp(v, minVal, maxVal float64) float64 {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// lerp interpolates between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// randRange returns a uniform value in [a, b).
func randRange(rng *rand.Rand, a, b float64) float64 {
	return lerp(a, b, rng.Float64())
}

// randPow skews toward a: u^p with p > 1 yields mostly small values and
// a thin tail toward b.
func randPow(rng *rand.Rand, a, b, p float64) float64 {
	return a + (b-a)*math.Pow(rng.Float64(), p)
}
