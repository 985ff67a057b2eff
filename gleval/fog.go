package gleval

import (
	math "github.com/chewxy/math32"
	"github.com/soypat/geometry/ms3"
)

// HDRMax is the largest color value an encoded RGB10 target holds.
const HDRMax = 4.0

// FogData holds the scene fog parameters packed into the fogData uniform.
type FogData struct {
	Density       float32
	DensityOffset float32
	HeightFalloff float32
}

// SceneFog returns the fraction of the color that survives the fog between
// eye and pos, saturated.
func SceneFog(eye, pos ms3.Vec, fog FogData) float32 {
	f := ms3.Norm(ms3.Sub(eye, pos)) - fog.DensityOffset
	h := 1 - pos.Z*fog.HeightFalloff
	return Saturate(math.Exp(-fog.Density * f * h))
}

// Fog blends the color of c towards fogColor by 1-amount. Alpha is kept.
func Fog(c, fogColor Color, amount float32) Color {
	return fogColor.lerpRGB(c, amount).withAlpha(c.A)
}

// FogSpan evaluates fog over a row of world positions seen from eye.
func FogSpan(dst []Color, eye ms3.Vec, pos []ms3.Vec, fogColor Color, fog FogData) error {
	if len(dst) != len(pos) {
		return errMismatchBufferLength
	} else if len(dst) == 0 {
		return errEmptyBuffers
	}
	for i, p := range pos {
		dst[i] = Fog(dst[i], fogColor, SceneFog(eye, p, fog))
	}
	return nil
}

// HDREncode scales the color channels into an RGB10 target range.
func HDREncode(c Color) Color {
	return Color{R: c.R / HDRMax, G: c.G / HDRMax, B: c.B / HDRMax, A: c.A}
}

// HDRDecode reverts [HDREncode].
func HDRDecode(c Color) Color {
	return Color{R: c.R * HDRMax, G: c.G * HDRMax, B: c.B * HDRMax, A: c.A}
}

func (c Color) withAlpha(a float32) Color {
	c.A = a
	return c
}
