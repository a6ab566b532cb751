package surface

import (
	"image"
	"image/color"
	"math"
)

// GradientAlpha evaluates a stop list at offset t in [0, 1], interpolating
// linearly between neighboring stops. Offsets outside the stop range take
// the nearest stop's alpha.
func GradientAlpha(stops []GradientStop, t float64) float64 {
	if len(stops) == 0 {
		return 0
	}
	if t <= stops[0].Offset {
		return stops[0].Alpha
	}
	for i := 1; i < len(stops); i++ {
		a, b := stops[i-1], stops[i]
		if t > b.Offset {
			continue
		}
		span := b.Offset - a.Offset
		if span <= 0 {
			return b.Alpha
		}
		k := (t - a.Offset) / span
		return a.Alpha + (b.Alpha-a.Alpha)*k
	}
	return stops[len(stops)-1].Alpha
}

// StopsEqual reports whether two stop lists are identical.
func StopsEqual(a, b []GradientStop) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// GradientImage rasterizes a white radial gradient into a size×size sprite.
// Backends without native gradients scale and tint this sprite instead.
func GradientImage(size int, stops []GradientStop) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - c
			dy := float64(y) + 0.5 - c
			d := math.Sqrt(dx*dx+dy*dy) / c
			if d > 1 {
				continue
			}
			a := GradientAlpha(stops, d)
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(math.Round(clamp01(a) * 255))})
		}
	}
	return img
}

// DiscImage rasterizes a white anti-aliased disc into a size×size sprite.
func DiscImage(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	c := float64(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - c
			dy := float64(y) + 0.5 - c
			// One pixel of edge coverage
			a := clamp01(c - math.Sqrt(dx*dx+dy*dy) + 0.5)
			if a == 0 {
				continue
			}
			img.SetNRGBA(x, y, color.NRGBA{R: 255, G: 255, B: 255, A: uint8(math.Round(a * 255))})
		}
	}
	return img
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
